package forecast

import (
	"fmt"
	"sort"
	"time"

	"github.com/phrazzld/lifeline-api/internal/domain"
)

// Calendar features are scaled to [0,1].
const (
	featureIntercept  = "intercept"
	featureDayOfWeek  = "day_of_week"
	featureMonth      = "month"
	featureDayOfMonth = "day_of_month"
)

// encoder maps a training row to a feature vector. Its vocabularies are
// fixed when it is built and travel with the model artifact.
type encoder struct {
	groups     []domain.BloodGroup
	components []domain.ComponentType
}

func newEncoder(rows []domain.ForecastRecord) encoder {
	groupSet := make(map[domain.BloodGroup]struct{})
	componentSet := make(map[domain.ComponentType]struct{})
	for _, r := range rows {
		groupSet[r.BloodGroup] = struct{}{}
		componentSet[r.ComponentType] = struct{}{}
	}

	var e encoder
	for g := range groupSet {
		e.groups = append(e.groups, g)
	}
	for c := range componentSet {
		e.components = append(e.components, c)
	}
	sort.Slice(e.groups, func(i, j int) bool { return e.groups[i] < e.groups[j] })
	sort.Slice(e.components, func(i, j int) bool { return e.components[i] < e.components[j] })
	return e
}

func encoderFromModel(m *domain.TrainedModel) encoder {
	return encoder{groups: m.BloodGroups, components: m.Components}
}

func (e encoder) width() int {
	return 1 + len(e.groups) + len(e.components) + domain.ModelCalendarFeatures
}

func (e encoder) featureNames() []string {
	names := make([]string, 0, e.width())
	names = append(names, featureIntercept)
	for _, g := range e.groups {
		names = append(names, "blood_group="+string(g))
	}
	for _, c := range e.components {
		names = append(names, "component="+string(c))
	}
	return append(names, featureDayOfWeek, featureMonth, featureDayOfMonth)
}

// encode writes the feature vector for one (group, component, day) into dst.
func (e encoder) encode(dst []float64, g domain.BloodGroup, c domain.ComponentType, day time.Time) error {
	gi, ok := indexOf(e.groups, g)
	if !ok {
		return fmt.Errorf("%w: blood group %s", domain.ErrUnknownCategory, g)
	}
	ci, ok := indexOf(e.components, c)
	if !ok {
		return fmt.Errorf("%w: component type %s", domain.ErrUnknownCategory, c)
	}

	for i := range dst {
		dst[i] = 0
	}
	dst[0] = 1
	dst[1+gi] = 1
	dst[1+len(e.groups)+ci] = 1

	calendar := dst[1+len(e.groups)+len(e.components):]
	calendar[0] = float64(day.Weekday()) / 6
	calendar[1] = float64(day.Month()-1) / 11
	calendar[2] = float64(day.Day()-1) / 30
	return nil
}

func indexOf[T comparable](vocab []T, v T) (int, bool) {
	for i, known := range vocab {
		if known == v {
			return i, true
		}
	}
	return 0, false
}
