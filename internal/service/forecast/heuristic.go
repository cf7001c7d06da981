package forecast

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/service"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// HeuristicOptions tunes the moving-average forecaster.
type HeuristicOptions struct {
	// WindowDays is the trailing history window. Defaults to 90.
	WindowDays int
	// MinSamples is the fewest requests needed for a non-zero forecast. Defaults to 10.
	MinSamples int
	// Now replaces the wall clock, for tests.
	Now func() time.Time
}

// HeuristicForecaster averages daily demand over recent request history.
type HeuristicForecaster struct {
	requests   store.RequestStore
	windowDays int
	minSamples int
	now        func() time.Time
	logger     *slog.Logger
}

var _ Forecaster = (*HeuristicForecaster)(nil)

// NewHeuristicForecaster creates a HeuristicForecaster. It returns an error if requests is nil.
func NewHeuristicForecaster(
	requests store.RequestStore,
	opts HeuristicOptions,
	logger *slog.Logger,
) (*HeuristicForecaster, error) {
	if requests == nil {
		return nil, &service.ServiceError{
			Service:   "heuristic_forecaster",
			Operation: "create_service",
			Message:   "request store cannot be nil",
		}
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 90
	}
	if opts.MinSamples <= 0 {
		opts.MinSamples = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HeuristicForecaster{
		requests:   requests,
		windowDays: opts.WindowDays,
		minSamples: opts.MinSamples,
		now:        opts.Now,
		logger:     logger.With(slog.String("component", "heuristic_forecaster")),
	}, nil
}

// Strategy implements Forecaster.
func (f *HeuristicForecaster) Strategy() string { return StrategyHeuristic }

// Forecast implements Forecaster. With fewer than MinSamples matching requests
// it returns a zero prediction carrying the observed sample size. Store
// failures are returned, never turned into a default prediction.
func (f *HeuristicForecaster) Forecast(ctx context.Context, q Query) (Prediction, error) {
	log := logger.FromContextOrDefault(ctx, f.logger)

	if err := q.Validate(); err != nil {
		return Prediction{}, err
	}

	now := f.now()
	records, err := f.requests.FindHistory(ctx, store.RequestQuery{
		City:          q.City,
		BloodGroup:    q.BloodGroup,
		ComponentType: q.ComponentType,
		Since:         now.AddDate(0, 0, -f.windowDays),
		Until:         now,
	})
	if err != nil {
		log.Error("failed to load request history", slog.Any("error", err))
		return Prediction{}, service.NewServiceError("heuristic_forecaster", "forecast",
			"failed to load request history", err)
	}

	sampleSize := len(records)
	if sampleSize < f.minSamples {
		log.Debug("not enough history for a forecast",
			slog.Int("sample_size", sampleSize),
			slog.Int("min_samples", f.minSamples))
		return Prediction{SampleSize: sampleSize}, nil
	}

	daily := make(map[time.Time]int)
	for _, r := range records {
		daily[domain.StartOfDay(r.Date)] += r.Quantity
	}
	total := 0
	for _, qty := range daily {
		total += qty
	}
	dailyAverage := float64(total) / float64(len(daily))

	return Prediction{
		PredictedDemand: clampRound(dailyAverage * float64(q.DaysAhead)),
		Confidence:      confidenceFor(sampleSize),
		SampleSize:      sampleSize,
	}, nil
}

func clampRound(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}
