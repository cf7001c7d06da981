package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/service"
	"github.com/phrazzld/lifeline-api/internal/store"
	"gonum.org/v1/gonum/mat"
)

// MinTrainingRows is the fewest history rows a training run accepts.
const MinTrainingRows = 10

// minLambda keeps the normal equations solvable when one-hot columns are
// collinear with the intercept.
const minLambda = 1e-6

// TrainableOptions tunes the trainable forecaster.
type TrainableOptions struct {
	// ModelName keys the persisted artifact. Defaults to "demand".
	ModelName string
	// Lambda is the ridge penalty applied to every coefficient except the intercept.
	Lambda float64
	// Now replaces the wall clock, for tests.
	Now func() time.Time
}

// TrainableForecaster predicts demand with a ridge regression over encoded
// blood group, component and calendar features. The published model is
// swapped atomically, so predictions always see a matching encoder and
// coefficient pair. Training runs are serialised.
type TrainableForecaster struct {
	requests store.RequestStore
	models   store.ModelStore
	name     string
	lambda   float64
	now      func() time.Time
	logger   *slog.Logger

	trainMu sync.Mutex
	model   atomic.Pointer[domain.TrainedModel]
}

var _ Forecaster = (*TrainableForecaster)(nil)

// NewTrainableForecaster creates an untrained forecaster. requests is only
// needed for TrainFromHistory and models only for persistence; either may be nil.
func NewTrainableForecaster(
	requests store.RequestStore,
	models store.ModelStore,
	opts TrainableOptions,
	logger *slog.Logger,
) *TrainableForecaster {
	if opts.ModelName == "" {
		opts.ModelName = "demand"
	}
	if opts.Lambda < minLambda {
		opts.Lambda = minLambda
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TrainableForecaster{
		requests: requests,
		models:   models,
		name:     opts.ModelName,
		lambda:   opts.Lambda,
		now:      opts.Now,
		logger: logger.With(
			slog.String("component", "trainable_forecaster"),
			slog.String("model_name", opts.ModelName),
		),
	}
}

// Strategy implements Forecaster.
func (f *TrainableForecaster) Strategy() string { return StrategyTrained }

// Model returns the currently published artifact, or nil when untrained.
func (f *TrainableForecaster) Model() *domain.TrainedModel {
	return f.model.Load()
}

// Load publishes the latest persisted artifact unless the published model is
// already at that version or newer. A missing artifact is not an error: the
// forecaster simply stays untrained and loaded is false. An artifact whose
// coefficients do not fit its encoders is rejected.
func (f *TrainableForecaster) Load(ctx context.Context) (loaded bool, err error) {
	if f.models == nil {
		return false, nil
	}

	f.trainMu.Lock()
	defer f.trainMu.Unlock()

	m, err := f.models.Load(ctx, f.name)
	if errors.Is(err, store.ErrModelNotFound) {
		logger.FromContextOrDefault(ctx, f.logger).Info("no persisted forecast model, staying untrained")
		return false, nil
	}
	if err != nil {
		return false, service.NewServiceError("trainable_forecaster", "load", "failed to load model", err)
	}
	if err := m.Validate(); err != nil {
		return false, fmt.Errorf("persisted forecast model is corrupt: %w", err)
	}

	if current := f.model.Load(); current != nil && current.Version >= m.Version {
		return true, nil
	}
	f.model.Store(m)
	return true, nil
}

// TrainFromHistory trains on fulfilled requests created at or after since.
func (f *TrainableForecaster) TrainFromHistory(ctx context.Context, since time.Time) (*domain.TrainedModel, error) {
	if f.requests == nil {
		return nil, errors.New("trainable forecaster has no request store")
	}
	rows, err := f.requests.FindHistory(ctx, store.RequestQuery{
		Statuses: []domain.RequestStatus{domain.RequestFulfilled},
		Since:    since,
	})
	if err != nil {
		return nil, service.NewServiceError("trainable_forecaster", "train", "failed to load training history", err)
	}
	return f.Train(ctx, rows)
}

// Train fits a new model on rows and publishes it. With fewer than
// MinTrainingRows usable rows it returns domain.ErrInsufficientData and the
// current model is left untouched. When a model store is configured the
// artifact is persisted before it is published.
func (f *TrainableForecaster) Train(ctx context.Context, rows []domain.ForecastRecord) (*domain.TrainedModel, error) {
	log := logger.FromContextOrDefault(ctx, f.logger)

	f.trainMu.Lock()
	defer f.trainMu.Unlock()

	usable := make([]domain.ForecastRecord, 0, len(rows))
	for _, r := range rows {
		if r.BloodGroup.Validate() != nil || r.ComponentType.Validate() != nil || r.Quantity < 0 {
			log.Warn("skipping malformed training row",
				slog.String("blood_group", string(r.BloodGroup)),
				slog.String("component_type", string(r.ComponentType)))
			continue
		}
		usable = append(usable, r)
	}
	if len(usable) < MinTrainingRows {
		return nil, fmt.Errorf("%w: got %d rows, need at least %d",
			domain.ErrInsufficientData, len(usable), MinTrainingRows)
	}

	version, err := f.nextVersion(ctx)
	if err != nil {
		return nil, &TrainingError{Stage: "persist", Rows: len(usable), Err: err}
	}

	enc := newEncoder(usable)
	coefficients, err := fitRidge(enc, usable, f.lambda)
	if err != nil {
		return nil, &TrainingError{Stage: "fit", Rows: len(usable), Err: err}
	}

	m := &domain.TrainedModel{
		Name:         f.name,
		Version:      version,
		TrainedAt:    f.now().UTC(),
		BloodGroups:  enc.groups,
		Components:   enc.components,
		FeatureNames: enc.featureNames(),
		Coefficients: coefficients,
		Lambda:       f.lambda,
		TrainingRows: len(usable),
	}

	if f.models != nil {
		if err := f.models.Save(ctx, m); err != nil {
			return nil, &TrainingError{Stage: "persist", Rows: len(usable), Err: err}
		}
	}
	f.model.Store(m)

	log.Info("forecast model trained",
		slog.Int("version", m.Version),
		slog.Int("rows", m.TrainingRows),
		slog.Int("features", len(m.FeatureNames)))
	return m, nil
}

// nextVersion numbers a new artifact after both the published model and the
// latest persisted one. Callers hold trainMu.
func (f *TrainableForecaster) nextVersion(ctx context.Context) (int, error) {
	version := 1
	if current := f.model.Load(); current != nil {
		version = current.Version + 1
	}
	if f.models == nil {
		return version, nil
	}

	persisted, err := f.models.Load(ctx, f.name)
	switch {
	case errors.Is(err, store.ErrModelNotFound):
		return version, nil
	case err != nil:
		return 0, fmt.Errorf("failed to read latest model version: %w", err)
	}
	if persisted.Version >= version {
		version = persisted.Version + 1
	}
	return version, nil
}

// Forecast implements Forecaster by summing per-day predictions for the
// next DaysAhead days.
func (f *TrainableForecaster) Forecast(ctx context.Context, q Query) (Prediction, error) {
	if err := q.Validate(); err != nil {
		return Prediction{}, err
	}

	m := f.model.Load()
	if m == nil {
		return Prediction{}, domain.ErrNotTrained
	}

	if _, ok := m.BloodGroupCode(q.BloodGroup); !ok {
		return Prediction{}, fmt.Errorf("%w: blood group %s was not seen in training", domain.ErrUnknownCategory, q.BloodGroup)
	}
	if _, ok := m.ComponentCode(q.ComponentType); !ok {
		return Prediction{}, fmt.Errorf("%w: component type %s was not seen in training", domain.ErrUnknownCategory, q.ComponentType)
	}

	enc := encoderFromModel(m)
	x := make([]float64, enc.width())
	coef := mat.NewVecDense(len(m.Coefficients), m.Coefficients)
	today := domain.StartOfDay(f.now())

	var total float64
	for d := 1; d <= q.DaysAhead; d++ {
		if err := enc.encode(x, q.BloodGroup, q.ComponentType, today.AddDate(0, 0, d)); err != nil {
			return Prediction{}, err
		}
		day := mat.Dot(coef, mat.NewVecDense(len(x), x))
		if day > 0 {
			total += day
		}
	}

	return Prediction{
		PredictedDemand: clampRound(total),
		Confidence:      confidenceFor(m.TrainingRows),
		SampleSize:      m.TrainingRows,
	}, nil
}

// fitRidge aggregates rows into daily totals per (group, component) and
// solves (XᵀX + λI)β = Xᵀy, leaving the intercept unpenalised.
func fitRidge(enc encoder, rows []domain.ForecastRecord, lambda float64) ([]float64, error) {
	type key struct {
		day time.Time
		g   domain.BloodGroup
		c   domain.ComponentType
	}
	totals := make(map[key]float64)
	order := make([]key, 0, len(rows))
	for _, r := range rows {
		k := key{day: domain.StartOfDay(r.Date), g: r.BloodGroup, c: r.ComponentType}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += float64(r.Quantity)
	}

	n, p := len(order), enc.width()
	X := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	row := make([]float64, p)
	for i, k := range order {
		if err := enc.encode(row, k.g, k.c, k.day); err != nil {
			return nil, err
		}
		X.SetRow(i, row)
		y.SetVec(i, totals[k])
	}

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	for j := 1; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+lambda)
	}
	var xty mat.VecDense
	xty.MulVec(X.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		// An ill-conditioned system still yields a solution.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("solve normal equations: %w", err)
		}
	}
	return mat.Col(nil, 0, &beta), nil
}
