// Package forecast predicts near-term blood demand. Two strategies share the
// Forecaster interface: a moving-average heuristic over recent request history
// and a trainable ridge regression whose artifact is versioned and persisted.
package forecast

import (
	"context"

	"github.com/phrazzld/lifeline-api/internal/domain"
)

// MaxDaysAhead is the longest horizon a caller may ask for.
const MaxDaysAhead = 30

// Strategy names accepted in configuration.
const (
	StrategyHeuristic = "heuristic"
	StrategyTrained   = "trained"
)

// Query asks for the demand of one blood group and component over the next
// DaysAhead days. City scopes the heuristic history; the trained model is
// shared across cities.
type Query struct {
	BloodGroup    domain.BloodGroup
	ComponentType domain.ComponentType
	City          string
	DaysAhead     int
}

// Validate checks the query before any store or model access.
func (q Query) Validate() error {
	if err := q.BloodGroup.Validate(); err != nil {
		return err
	}
	if err := q.ComponentType.Validate(); err != nil {
		return err
	}
	if q.DaysAhead < 1 || q.DaysAhead > MaxDaysAhead {
		return domain.NewInputError("days_ahead", "must be between 1 and 30")
	}
	return nil
}

// Prediction is a non-negative whole-unit demand estimate.
type Prediction struct {
	PredictedDemand int     `json:"predicted_demand"`
	Confidence      float64 `json:"confidence"`
	SampleSize      int     `json:"sample_size"`
}

// Forecaster is implemented by every demand forecasting strategy.
type Forecaster interface {
	Forecast(ctx context.Context, q Query) (Prediction, error)
	Strategy() string
}

// confidenceFor scales confidence with the amount of evidence, capped at 0.95.
func confidenceFor(samples int) float64 {
	c := float64(samples) / 100
	if c > 0.95 {
		return 0.95
	}
	return c
}
