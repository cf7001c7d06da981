package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TrainedModel validation errors
var (
	// ErrModelNameEmpty is returned when a model has no name.
	ErrModelNameEmpty = errors.New("model name cannot be empty")

	// ErrModelShapeMismatch is returned when the coefficients do not match the encoders.
	ErrModelShapeMismatch = errors.New("model coefficients do not match feature layout")

	// ErrModelVocabularyInvalid is returned when an encoder vocabulary holds an
	// unknown or repeated entry.
	ErrModelVocabularyInvalid = errors.New("model encoder vocabulary is invalid")
)

// ModelCalendarFeatures is the number of calendar features (day of week,
// month, day of month) that follow the one-hot columns.
const ModelCalendarFeatures = 3

// TrainedModel is the persisted artifact of a trainable demand forecaster.
// The encoder vocabularies and the regression coefficients always travel
// together; a model is replaced wholesale, never patched.
type TrainedModel struct {
	Name         string          `json:"name"`
	Version      int             `json:"version"`
	TrainedAt    time.Time       `json:"trained_at"`
	BloodGroups  []BloodGroup    `json:"blood_groups"`
	Components   []ComponentType `json:"components"`
	FeatureNames []string        `json:"feature_names"`
	Coefficients []float64       `json:"coefficients"`
	Lambda       float64         `json:"lambda"`
	TrainingRows int             `json:"training_rows"`
}

// Validate checks that the artifact is internally consistent.
func (m *TrainedModel) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrModelNameEmpty
	}
	if len(m.BloodGroups) == 0 || len(m.Components) == 0 {
		return ErrModelShapeMismatch
	}
	if err := checkVocabulary(m.BloodGroups); err != nil {
		return err
	}
	if err := checkVocabulary(m.Components); err != nil {
		return err
	}
	width := m.FeatureWidth()
	if len(m.Coefficients) != width || len(m.FeatureNames) != width {
		return fmt.Errorf("%w: %d coefficients and %d feature names, layout needs %d",
			ErrModelShapeMismatch, len(m.Coefficients), len(m.FeatureNames), width)
	}
	return nil
}

// FeatureWidth is the length of the feature vector the encoders produce:
// an intercept, one column per vocabulary entry, then the calendar features.
func (m *TrainedModel) FeatureWidth() int {
	return 1 + len(m.BloodGroups) + len(m.Components) + ModelCalendarFeatures
}

func checkVocabulary[T interface {
	~string
	Validate() error
}](vocab []T) error {
	seen := make(map[T]bool, len(vocab))
	for _, v := range vocab {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %q", ErrModelVocabularyInvalid, string(v))
		}
		if seen[v] {
			return fmt.Errorf("%w: %q repeated", ErrModelVocabularyInvalid, string(v))
		}
		seen[v] = true
	}
	return nil
}

// BloodGroupCode returns the encoder index of g.
func (m *TrainedModel) BloodGroupCode(g BloodGroup) (int, bool) {
	for i, known := range m.BloodGroups {
		if known == g {
			return i, true
		}
	}
	return 0, false
}

// ComponentCode returns the encoder index of c.
func (m *TrainedModel) ComponentCode(c ComponentType) (int, bool) {
	for i, known := range m.Components {
		if known == c {
			return i, true
		}
	}
	return 0, false
}
