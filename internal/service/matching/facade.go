// Package matching is the single boundary in front of supply search, donor
// matching, expiry classification and demand forecasting. It sequences calls
// and shapes results; it never scores anything itself.
package matching

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
	"github.com/phrazzld/lifeline-api/internal/domain/rules"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/redact"
	"github.com/phrazzld/lifeline-api/internal/service"
	"github.com/phrazzld/lifeline-api/internal/service/donor"
	"github.com/phrazzld/lifeline-api/internal/service/forecast"
	"github.com/phrazzld/lifeline-api/internal/service/supply"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// Operation names, used for logging and metrics labels.
const (
	OpPredictDemand     = "predict_demand"
	OpFindNearestSupply = "find_nearest_supply"
	OpMatchDonors       = "match_donors"
	OpClassifyExpiry    = "classify_expiry"
	OpRetrainForecaster = "retrain_forecaster"
	OpSearchBlood       = "search_blood"
)

// SupplySearcher ranks inventory for a request.
type SupplySearcher interface {
	Search(ctx context.Context, q supply.Query) ([]supply.Candidate, error)
}

// DonorMatcher ranks eligible donors for a request.
type DonorMatcher interface {
	Match(ctx context.Context, q donor.Query) ([]donor.Match, error)
}

// Trainer retrains a forecaster from stored request history.
type Trainer interface {
	TrainFromHistory(ctx context.Context, since time.Time) (*domain.TrainedModel, error)
}

// OutcomeOK is the outcome recorded for successful operations; failures are
// recorded with their FailureKind.
const OutcomeOK = "ok"

// Recorder observes the outcome of every facade operation.
type Recorder interface {
	ObserveOperation(op, outcome string, elapsed time.Duration)
	SetModelVersion(name string, version int)
}

// Deps are the collaborators of a Facade. Trainer is optional.
type Deps struct {
	Supply     SupplySearcher
	Donors     DonorMatcher
	Forecaster forecast.Forecaster
	Inventory  store.InventoryStore
	Trainer    Trainer
}

// Facade is the entry point to the matching core.
type Facade struct {
	supply     SupplySearcher
	donors     DonorMatcher
	forecaster forecast.Forecaster
	inventory  store.InventoryStore
	trainer    Trainer

	historyDays int
	now         func() time.Time
	recorder    Recorder
	logger      *slog.Logger
}

// Option configures a Facade.
type Option func(*Facade)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(f *Facade) {
		if now != nil {
			f.now = now
		}
	}
}

// WithHistoryDays sets how far back RetrainForecaster reads request history.
func WithHistoryDays(days int) Option {
	return func(f *Facade) {
		if days > 0 {
			f.historyDays = days
		}
	}
}

// WithRecorder attaches an operation recorder.
func WithRecorder(r Recorder) Option {
	return func(f *Facade) {
		f.recorder = r
	}
}

// NewFacade creates a Facade. Every dependency except Trainer is required.
func NewFacade(deps Deps, logger *slog.Logger, opts ...Option) (*Facade, error) {
	missing := ""
	switch {
	case deps.Supply == nil:
		missing = "supply searcher"
	case deps.Donors == nil:
		missing = "donor matcher"
	case deps.Forecaster == nil:
		missing = "forecaster"
	case deps.Inventory == nil:
		missing = "inventory store"
	}
	if missing != "" {
		return nil, &service.ServiceError{
			Service:   "matching_facade",
			Operation: "create_service",
			Message:   missing + " cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Facade{
		supply:      deps.Supply,
		donors:      deps.Donors,
		forecaster:  deps.Forecaster,
		inventory:   deps.Inventory,
		trainer:     deps.Trainer,
		historyDays: 365,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "matching_facade")),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// SupplyRequest asks for the nearest inventory matching a request.
type SupplyRequest struct {
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	BloodGroup    string  `json:"blood_group"`
	ComponentType string  `json:"component_type"`
	MinQuantity   int     `json:"min_quantity"`
}

// DonorRequest asks for donors near a hospital. The coordinate is optional.
type DonorRequest struct {
	BloodGroup   string   `json:"blood_group"`
	HospitalCity string   `json:"hospital_city"`
	HospitalLat  *float64 `json:"hospital_lat"`
	HospitalLon  *float64 `json:"hospital_lon"`
}

// DemandRequest asks for the expected demand over the next DaysAhead days.
type DemandRequest struct {
	BloodGroup    string `json:"blood_group"`
	ComponentType string `json:"component_type"`
	Location      string `json:"location"`
	DaysAhead     int    `json:"days_ahead"`
}

// SearchRequest combines a supply request with the city used for the donor fallback.
type SearchRequest struct {
	SupplyRequest
	City string `json:"city"`
}

// SearchResult carries the supply ranking, or the donor ranking when no
// inventory qualified.
type SearchResult struct {
	Supply []supply.Candidate `json:"supply"`
	Donors []donor.Match      `json:"donors"`
}

// ModelSummary describes a freshly trained forecast model.
type ModelSummary struct {
	Name         string    `json:"name"`
	Version      int       `json:"version"`
	TrainedAt    time.Time `json:"trained_at"`
	TrainingRows int       `json:"training_rows"`
}

// FindNearestSupply ranks the nearest qualifying inventory units.
func (f *Facade) FindNearestSupply(ctx context.Context, req SupplyRequest) Response[[]supply.Candidate] {
	start := f.now()
	q, err := supplyQuery(req)
	if err == nil {
		var candidates []supply.Candidate
		if candidates, err = f.supply.Search(ctx, q); err == nil {
			f.observe(ctx, OpFindNearestSupply, nil, start)
			return ok(candidates)
		}
	}
	return failed[[]supply.Candidate](f.fail(ctx, OpFindNearestSupply, err, start))
}

// MatchDonors ranks eligible donors in the hospital's city.
func (f *Facade) MatchDonors(ctx context.Context, req DonorRequest) Response[[]donor.Match] {
	start := f.now()
	q, err := donorQuery(req)
	if err == nil {
		var matches []donor.Match
		if matches, err = f.donors.Match(ctx, q); err == nil {
			f.observe(ctx, OpMatchDonors, nil, start)
			return ok(matches)
		}
	}
	return failed[[]donor.Match](f.fail(ctx, OpMatchDonors, err, start))
}

// PredictDemand forecasts demand with the configured strategy.
func (f *Facade) PredictDemand(ctx context.Context, req DemandRequest) Response[forecast.Prediction] {
	start := f.now()
	q, err := demandQuery(req)
	if err == nil {
		var p forecast.Prediction
		if p, err = f.forecaster.Forecast(ctx, q); err == nil {
			f.observe(ctx, OpPredictDemand, nil, start)
			return ok(p)
		}
	}
	return failed[forecast.Prediction](f.fail(ctx, OpPredictDemand, err, start))
}

// ClassifyExpiry assesses the remaining shelf life of unit as of today.
func (f *Facade) ClassifyExpiry(ctx context.Context, unit *domain.InventoryUnit) Response[rules.Assessment] {
	start := f.now()
	if unit == nil {
		err := domain.NewInputError("unit", "cannot be empty")
		return failed[rules.Assessment](f.fail(ctx, OpClassifyExpiry, err, start))
	}
	a := rules.ClassifyExpiry(unit.DaysUntilExpiry(domain.StartOfDay(start)))
	f.observe(ctx, OpClassifyExpiry, nil, start)
	return ok(a)
}

// ClassifyExpiryByID loads a unit and classifies it.
func (f *Facade) ClassifyExpiryByID(ctx context.Context, id uuid.UUID) Response[rules.Assessment] {
	start := f.now()
	if id == uuid.Nil {
		err := domain.NewInputError("unit_id", "cannot be empty")
		return failed[rules.Assessment](f.fail(ctx, OpClassifyExpiry, err, start))
	}
	unit, err := f.inventory.GetByID(ctx, id)
	if err != nil {
		return failed[rules.Assessment](f.fail(ctx, OpClassifyExpiry, err, start))
	}
	return f.ClassifyExpiry(ctx, unit)
}

// CanRetrain reports whether the configured forecaster supports retraining.
func (f *Facade) CanRetrain() bool {
	return f.trainer != nil
}

// RetrainForecaster retrains the forecaster on recent fulfilled requests.
func (f *Facade) RetrainForecaster(ctx context.Context) Response[ModelSummary] {
	return f.RetrainForecasterWindow(ctx, f.historyDays)
}

// RetrainForecasterWindow retrains on the trailing days of history. A
// non-positive days falls back to the configured window.
func (f *Facade) RetrainForecasterWindow(ctx context.Context, days int) Response[ModelSummary] {
	start := f.now()
	if days <= 0 {
		days = f.historyDays
	}
	if f.trainer == nil {
		return failed[ModelSummary](f.fail(ctx, OpRetrainForecaster, &Failure{
			Kind:    KindNotTrained,
			Message: "the " + f.forecaster.Strategy() + " forecaster cannot be trained",
		}, start))
	}

	m, err := f.trainer.TrainFromHistory(ctx, start.AddDate(0, 0, -days))
	if err != nil {
		return failed[ModelSummary](f.fail(ctx, OpRetrainForecaster, err, start))
	}
	if f.recorder != nil {
		f.recorder.SetModelVersion(m.Name, m.Version)
	}
	f.observe(ctx, OpRetrainForecaster, nil, start)
	return ok(ModelSummary{
		Name:         m.Name,
		Version:      m.Version,
		TrainedAt:    m.TrainedAt,
		TrainingRows: m.TrainingRows,
	})
}

// SearchBlood looks for inventory first and falls back to donor matching in
// City only when no unit qualifies.
func (f *Facade) SearchBlood(ctx context.Context, req SearchRequest) Response[SearchResult] {
	start := f.now()

	sq, err := supplyQuery(req.SupplyRequest)
	if err != nil {
		return failed[SearchResult](f.fail(ctx, OpSearchBlood, err, start))
	}
	candidates, err := f.supply.Search(ctx, sq)
	if err != nil {
		return failed[SearchResult](f.fail(ctx, OpSearchBlood, err, start))
	}

	result := SearchResult{Supply: candidates, Donors: []donor.Match{}}
	if len(candidates) == 0 && req.City != "" {
		origin := sq.Origin
		matches, err := f.donors.Match(ctx, donor.Query{
			BloodGroup: sq.BloodGroup,
			City:       req.City,
			Facility:   &origin,
		})
		if err != nil {
			return failed[SearchResult](f.fail(ctx, OpSearchBlood, err, start))
		}
		result.Donors = matches
	}

	f.observe(ctx, OpSearchBlood, nil, start)
	return ok(result)
}

func (f *Facade) fail(ctx context.Context, op string, err error, start time.Time) *Failure {
	failure := Classify(err)
	log := logger.FromContextOrDefault(ctx, f.logger)
	if failure.Kind == KindUpstreamUnavailable {
		log.Error("operation failed",
			slog.String("operation", op),
			slog.String("error", redact.Error(err)))
	} else {
		log.Debug("operation rejected",
			slog.String("operation", op),
			slog.String("kind", string(failure.Kind)),
			slog.String("field", failure.Field))
	}
	f.observe(ctx, op, failure, start)
	return failure
}

func (f *Facade) observe(ctx context.Context, op string, failure *Failure, start time.Time) {
	if f.recorder == nil {
		return
	}
	outcome := OutcomeOK
	if failure != nil {
		outcome = string(failure.Kind)
	}
	f.recorder.ObserveOperation(op, outcome, f.now().Sub(start))
}

func supplyQuery(req SupplyRequest) (supply.Query, error) {
	origin, err := geo.NewPoint(req.Lat, req.Lon)
	if err != nil {
		return supply.Query{}, err
	}
	group, err := domain.ParseBloodGroup(req.BloodGroup)
	if err != nil {
		return supply.Query{}, err
	}
	component, err := domain.ParseComponentType(req.ComponentType)
	if err != nil {
		return supply.Query{}, err
	}
	return supply.Query{
		Origin:        origin,
		BloodGroup:    group,
		ComponentType: component,
		MinQuantity:   req.MinQuantity,
	}, nil
}

func donorQuery(req DonorRequest) (donor.Query, error) {
	group, err := domain.ParseBloodGroup(req.BloodGroup)
	if err != nil {
		return donor.Query{}, err
	}
	q := donor.Query{BloodGroup: group, City: req.HospitalCity}

	switch {
	case req.HospitalLat != nil && req.HospitalLon != nil:
		p, err := geo.NewPoint(*req.HospitalLat, *req.HospitalLon)
		if err != nil {
			return donor.Query{}, err
		}
		q.Facility = &p
	case req.HospitalLat != nil || req.HospitalLon != nil:
		return donor.Query{}, domain.NewInputError("hospital_lat", "latitude and longitude must be given together")
	}
	return q, nil
}

func demandQuery(req DemandRequest) (forecast.Query, error) {
	group, err := domain.ParseBloodGroup(req.BloodGroup)
	if err != nil {
		return forecast.Query{}, err
	}
	component, err := domain.ParseComponentType(req.ComponentType)
	if err != nil {
		return forecast.Query{}, err
	}
	q := forecast.Query{
		BloodGroup:    group,
		ComponentType: component,
		City:          req.Location,
		DaysAhead:     req.DaysAhead,
	}
	return q, q.Validate()
}
