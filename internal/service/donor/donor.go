// Package donor selects and ranks donors who could give blood for a request.
package donor

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
	"github.com/phrazzld/lifeline-api/internal/domain/rules"
	"github.com/phrazzld/lifeline-api/internal/domain/scoring"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/service"
	"github.com/phrazzld/lifeline-api/internal/store"
	"golang.org/x/sync/errgroup"
)

const serviceName = "donor_matcher"

// Query identifies the requesting facility.
type Query struct {
	BloodGroup domain.BloodGroup
	City       string
	// Facility is optional; without it no donor gets a distance.
	Facility *geo.Point
}

// Validate checks the query before any store access.
func (q Query) Validate() error {
	if err := q.BloodGroup.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(q.City) == "" {
		return domain.NewInputError("hospital_city", "cannot be empty")
	}
	if q.Facility != nil {
		if err := q.Facility.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Match is a ranked donor. DistanceKm is nil when either side lacks a coordinate.
type Match struct {
	DonorID           uuid.UUID  `json:"donor_id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	Email             string     `json:"email"`
	DistanceKm        *float64   `json:"distance_km"`
	LastDonationDate  *time.Time `json:"last_donation_date"`
	AvailabilityScore float64    `json:"availability_score"`
}

// Matcher ranks eligible donors for a request.
type Matcher struct {
	donors  store.DonorStore
	params  *scoring.Params
	workers int
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWorkers sets the distance fan-out limit.
func WithWorkers(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMatcher creates a Matcher. It returns an error if donors is nil.
func NewMatcher(donors store.DonorStore, params *scoring.Params, logger *slog.Logger, opts ...Option) (*Matcher, error) {
	if donors == nil {
		return nil, &service.ServiceError{
			Service:   serviceName,
			Operation: "create_service",
			Message:   "donor store cannot be nil",
		}
	}
	if params == nil {
		params = scoring.NewDefaultParams()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Matcher{
		donors:  donors,
		params:  params,
		workers: 4,
		now:     time.Now,
		logger:  logger.With(slog.String("component", serviceName)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Match returns at most DonorResultLimit donors whose availability score
// strictly exceeds the threshold, best first. Donors still inside the
// whole-blood donation interval are excluded outright.
func (m *Matcher) Match(ctx context.Context, q Query) ([]Match, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if err := q.Validate(); err != nil {
		return nil, err
	}

	donors, err := m.donors.FindCandidates(ctx, store.DonorQuery{
		BloodGroup:    q.BloodGroup,
		City:          q.City,
		AvailableOnly: true,
		VerifiedOnly:  true,
	})
	if err != nil {
		log.Error("failed to query donors",
			slog.String("blood_group", string(q.BloodGroup)),
			slog.Any("error", err))
		return nil, service.NewServiceError(serviceName, "match", "failed to query donors", err)
	}

	today := domain.StartOfDay(m.now())
	pool := make([]*domain.Donor, 0, len(donors))
	for _, d := range donors {
		if !inPool(d, q) {
			continue
		}
		if !rules.IsDonationEligible(d.LastDonationDate, domain.ComponentWholeBlood, today) {
			continue
		}
		pool = append(pool, d)
	}

	distances, err := m.measure(ctx, q.Facility, pool)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(pool))
	for i, d := range pool {
		factors := scoring.DonorFactors{
			DistanceKm:    distances[i],
			Verified:      d.Verified,
			HasHealthInfo: d.HasHealthInfo,
		}
		if d.LastDonationDate != nil {
			days := domain.DaysBetween(*d.LastDonationDate, today)
			factors.DaysSinceDonation = &days
		}

		score := m.params.DonorAvailability(factors)
		if !m.params.PassesDonorThreshold(score) {
			continue
		}
		matches = append(matches, Match{
			DonorID:           d.ID,
			Name:              d.FullName(),
			Phone:             d.Phone,
			Email:             d.Email,
			DistanceKm:        distances[i],
			LastDonationDate:  d.LastDonationDate,
			AvailabilityScore: score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].AvailabilityScore > matches[j].AvailabilityScore
	})
	if limit := m.params.DonorResultLimit; len(matches) > limit {
		matches = matches[:limit]
	}

	log.Debug("donor matching complete",
		slog.Int("store_rows", len(donors)),
		slog.Int("eligible", len(pool)),
		slog.Int("matches", len(matches)))
	return matches, nil
}

// measure returns one distance per donor, nil where undefined.
func (m *Matcher) measure(ctx context.Context, facility *geo.Point, pool []*domain.Donor) ([]*float64, error) {
	distances := make([]*float64, len(pool))
	if facility == nil {
		return distances, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, d := range pool {
		i, d := i, d
		if d.Location == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			km, err := geo.Distance(*facility, *d.Location)
			if err != nil {
				// A malformed stored coordinate leaves the distance undefined.
				return nil
			}
			km = geo.RoundKm(km)
			distances[i] = &km
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return distances, nil
}

func inPool(d *domain.Donor, q Query) bool {
	return d.BloodGroup == q.BloodGroup && d.Available && d.Verified && d.City == q.City
}
