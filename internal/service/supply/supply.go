// Package supply finds and ranks inventory units that can serve a blood request.
package supply

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
	"github.com/phrazzld/lifeline-api/internal/domain/scoring"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/service"
	"github.com/phrazzld/lifeline-api/internal/store"
	"golang.org/x/sync/errgroup"
)

const serviceName = "supply_search"

// DefaultWorkers bounds the distance fan-out.
const DefaultWorkers = 4

// Query describes what a requester needs and where.
type Query struct {
	Origin        geo.Point
	BloodGroup    domain.BloodGroup
	ComponentType domain.ComponentType
	MinQuantity   int
}

// Validate checks the query before any store access.
func (q Query) Validate() error {
	if err := q.Origin.Validate(); err != nil {
		return err
	}
	if err := q.BloodGroup.Validate(); err != nil {
		return err
	}
	if err := q.ComponentType.Validate(); err != nil {
		return err
	}
	if q.MinQuantity < 1 {
		return domain.NewInputError("min_quantity", "must be at least 1")
	}
	return nil
}

// Candidate is a ranked inventory unit.
type Candidate struct {
	UnitID          uuid.UUID `json:"unit_id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	OwnerName       string    `json:"owner_name"`
	Quantity        int       `json:"quantity"`
	DistanceKm      float64   `json:"distance_km"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	PriorityScore   float64   `json:"priority_score"`
}

// Searcher ranks the nearest qualifying inventory for a request.
type Searcher struct {
	inventory store.InventoryStore
	params    *scoring.Params
	workers   int
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithWorkers sets the distance fan-out limit.
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSearcher creates a Searcher. It returns an error if inventory is nil.
func NewSearcher(
	inventory store.InventoryStore,
	params *scoring.Params,
	logger *slog.Logger,
	opts ...Option,
) (*Searcher, error) {
	if inventory == nil {
		return nil, &service.ServiceError{
			Service:   serviceName,
			Operation: "create_service",
			Message:   "inventory store cannot be nil",
		}
	}
	if params == nil {
		params = scoring.NewDefaultParams()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Searcher{
		inventory: inventory,
		params:    params,
		workers:   DefaultWorkers,
		now:       time.Now,
		logger:    logger.With(slog.String("component", serviceName)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type located struct {
	unit       *domain.InventoryUnit
	distanceKm float64
	days       int
	skip       bool
}

// Search returns up to PoolSize candidates ranked by descending priority.
// An empty slice means nothing qualifies; store failures are returned as errors.
func (s *Searcher) Search(ctx context.Context, q Query) ([]Candidate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := q.Validate(); err != nil {
		return nil, err
	}

	today := domain.StartOfDay(s.now())
	units, err := s.inventory.FindAvailable(ctx, store.InventoryQuery{
		BloodGroup:    q.BloodGroup,
		ComponentType: q.ComponentType,
		Status:        domain.InventoryAvailable,
		MinQuantity:   q.MinQuantity,
		ExpiryAfter:   today,
	})
	if err != nil {
		log.Error("failed to query inventory",
			slog.String("blood_group", string(q.BloodGroup)),
			slog.String("component_type", string(q.ComponentType)),
			slog.Any("error", err))
		return nil, service.NewServiceError(serviceName, "search", "failed to query inventory", err)
	}

	pool := make([]located, 0, len(units))
	for _, u := range units {
		if !qualifies(u, q, today) {
			continue
		}
		pool = append(pool, located{unit: u, days: u.DaysUntilExpiry(today)})
	}
	if len(pool) == 0 {
		return []Candidate{}, nil
	}

	if err := s.measure(ctx, q.Origin, pool); err != nil {
		return nil, err
	}

	measured := pool[:0]
	for _, c := range pool {
		if c.skip {
			log.Warn("skipping unit with invalid facility coordinate",
				slog.String("unit_id", c.unit.ID.String()))
			continue
		}
		measured = append(measured, c)
	}

	sort.SliceStable(measured, func(i, j int) bool {
		return measured[i].distanceKm < measured[j].distanceKm
	})
	if k := s.params.SupplyCandidatePool; len(measured) > k {
		measured = measured[:k]
	}

	candidates := make([]Candidate, 0, len(measured))
	for _, c := range measured {
		candidates = append(candidates, Candidate{
			UnitID:          c.unit.ID,
			OwnerID:         c.unit.OwnerID,
			OwnerName:       c.unit.OwnerName,
			Quantity:        c.unit.Quantity,
			DistanceKm:      c.distanceKm,
			DaysUntilExpiry: c.days,
			PriorityScore:   s.params.SupplyPriority(c.distanceKm, c.days, c.unit.Quantity),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PriorityScore > candidates[j].PriorityScore
	})

	log.Debug("supply search complete",
		slog.Int("store_rows", len(units)),
		slog.Int("candidates", len(candidates)))
	return candidates, nil
}

// measure fills in distances concurrently. Ranking starts only after every
// goroutine has finished.
func (s *Searcher) measure(ctx context.Context, origin geo.Point, pool []located) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range pool {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := geo.Distance(origin, *pool[i].unit.Facility)
			if err != nil {
				pool[i].skip = true
				return nil
			}
			pool[i].distanceKm = geo.RoundKm(d)
			return nil
		})
	}
	return g.Wait()
}

// qualifies re-applies the store filter so a lax store cannot leak
// unusable units into the ranking.
func qualifies(u *domain.InventoryUnit, q Query, today time.Time) bool {
	return u.Status == domain.InventoryAvailable &&
		u.BloodGroup == q.BloodGroup &&
		u.ComponentType == q.ComponentType &&
		u.Quantity >= q.MinQuantity &&
		u.DaysUntilExpiry(today) > 0 &&
		u.Facility != nil
}
