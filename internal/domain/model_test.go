package domain

import (
	"errors"
	"testing"
)

func TestTrainedModelValidate(t *testing.T) {
	t.Parallel()

	valid := func() *TrainedModel {
		return &TrainedModel{
			Name:        "demand",
			Version:     1,
			BloodGroups: []BloodGroup{BloodGroupOPos},
			Components:  []ComponentType{ComponentWholeBlood},
			FeatureNames: []string{
				"intercept", "blood_group=O+", "component=WHOLE_BLOOD",
				"day_of_week", "month", "day_of_month",
			},
			Coefficients: []float64{1.5, 0.2, 0.1, 0.3, 0.4, 0.5},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Expected valid model, got %v", err)
	}
	if got := valid().FeatureWidth(); got != 6 {
		t.Errorf("Expected feature width 6, got %d", got)
	}

	tests := []struct {
		name   string
		mutate func(m *TrainedModel)
		want   error
	}{
		{"blank name", func(m *TrainedModel) { m.Name = " " }, ErrModelNameEmpty},
		{"too few coefficients", func(m *TrainedModel) { m.Coefficients = m.Coefficients[:5] }, ErrModelShapeMismatch},
		{"no components", func(m *TrainedModel) { m.Components = nil }, ErrModelShapeMismatch},
		{"old layout without calendar features", func(m *TrainedModel) {
			m.FeatureNames = m.FeatureNames[:3]
			m.Coefficients = m.Coefficients[:3]
		}, ErrModelShapeMismatch},
		{"feature names out of step", func(m *TrainedModel) { m.FeatureNames = m.FeatureNames[:5] }, ErrModelShapeMismatch},
		{"repeated blood group", func(m *TrainedModel) {
			m.BloodGroups = []BloodGroup{BloodGroupOPos, BloodGroupOPos}
			m.FeatureNames = append(m.FeatureNames, "blood_group=O+")
			m.Coefficients = append(m.Coefficients, 0)
		}, ErrModelVocabularyInvalid},
		{"unknown component", func(m *TrainedModel) { m.Components = []ComponentType{"SERUM"} }, ErrModelVocabularyInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			if err := m.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTrainedModelCodes(t *testing.T) {
	t.Parallel()

	m := &TrainedModel{
		BloodGroups: []BloodGroup{BloodGroupANeg, BloodGroupOPos},
		Components:  []ComponentType{ComponentPlasma},
	}

	if code, ok := m.BloodGroupCode(BloodGroupOPos); !ok || code != 1 {
		t.Errorf("Expected code 1, got %d (%v)", code, ok)
	}
	if _, ok := m.BloodGroupCode(BloodGroupABPos); ok {
		t.Error("Expected unseen blood group to be unknown")
	}
	if _, ok := m.ComponentCode(ComponentRBC); ok {
		t.Error("Expected unseen component to be unknown")
	}
}
