package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// namespace derives stable IDs from seed keys so that re-applying a seed
// reports duplicates instead of inserting copies.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://lifeline.local/seed"))

// Stores bundles the stores a Seeder writes through.
type Stores struct {
	Facilities store.FacilityStore
	Donors     store.DonorStore
	Inventory  store.InventoryStore
	Requests   store.RequestStore
}

// Summary counts what a seed run created and skipped.
type Summary struct {
	Facilities int
	Donors     int
	Inventory  int
	Requests   int
	Skipped    int
}

// Seeder applies a Seed.
type Seeder struct {
	stores Stores
	logger *slog.Logger
	now    func() time.Time
}

// NewSeeder creates a Seeder. now defaults to time.Now.
func NewSeeder(stores Stores, logger *slog.Logger, now func() time.Time) (*Seeder, error) {
	switch {
	case stores.Facilities == nil:
		return nil, errors.New("facility store cannot be nil")
	case stores.Donors == nil:
		return nil, errors.New("donor store cannot be nil")
	case stores.Inventory == nil:
		return nil, errors.New("inventory store cannot be nil")
	case stores.Requests == nil:
		return nil, errors.New("request store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Seeder{
		stores: stores,
		logger: logger.With(slog.String("component", "seeder")),
		now:    now,
	}, nil
}

// Apply writes every entry of seed in dependency order: facilities, donors,
// inventory, then requests. Entries that already exist are skipped.
func (s *Seeder) Apply(ctx context.Context, seed *Seed) (Summary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	today := domain.StartOfDay(s.now())
	var sum Summary

	facilities := make(map[string]uuid.UUID, len(seed.Facilities))
	for _, fs := range seed.Facilities {
		f, err := fs.facility()
		if err != nil {
			return sum, fmt.Errorf("facility %q: %w", fs.Key, err)
		}
		facilities[fs.Key] = f.ID
		created, err := s.create(ctx, "facility", fs.Key, func() error {
			return s.stores.Facilities.Create(ctx, f)
		})
		if err != nil {
			return sum, err
		}
		sum.count(created, &sum.Facilities)
	}

	for _, ds := range seed.Donors {
		d, err := ds.donor(today)
		if err != nil {
			return sum, fmt.Errorf("donor %q: %w", ds.Key, err)
		}
		created, err := s.create(ctx, "donor", ds.Key, func() error {
			return s.stores.Donors.Create(ctx, d)
		})
		if err != nil {
			return sum, err
		}
		sum.count(created, &sum.Donors)
	}

	for _, is := range seed.Inventory {
		u, err := is.unit(facilities[is.Owner], today)
		if err != nil {
			return sum, fmt.Errorf("inventory %q: %w", is.Key, err)
		}
		created, err := s.create(ctx, "inventory", is.Key, func() error {
			return s.stores.Inventory.Create(ctx, u)
		})
		if err != nil {
			return sum, err
		}
		sum.count(created, &sum.Inventory)
	}

	cities := make(map[string]string, len(seed.Facilities))
	for _, fs := range seed.Facilities {
		cities[fs.Key] = fs.City
	}

	requests := make([]*domain.DonationRequest, 0, len(seed.Requests))
	for _, rs := range seed.Requests {
		r, err := rs.request(facilities[rs.Hospital], cities[rs.Hospital], today)
		if err != nil {
			return sum, fmt.Errorf("request %q: %w", rs.Key, err)
		}
		requests = append(requests, r)
	}
	for i, hs := range seed.History {
		rs, err := hs.requests(i, facilities[hs.Hospital], cities[hs.Hospital], today)
		if err != nil {
			return sum, fmt.Errorf("history[%d]: %w", i, err)
		}
		requests = append(requests, rs...)
	}
	for _, r := range requests {
		created, err := s.create(ctx, "request", r.ID.String(), func() error {
			return s.stores.Requests.Create(ctx, r)
		})
		if err != nil {
			return sum, err
		}
		sum.count(created, &sum.Requests)
	}

	log.Info("seed applied",
		slog.Int("facilities", sum.Facilities),
		slog.Int("donors", sum.Donors),
		slog.Int("inventory", sum.Inventory),
		slog.Int("requests", sum.Requests),
		slog.Int("skipped", sum.Skipped))
	return sum, nil
}

func (s *Seeder) create(ctx context.Context, entity, key string, fn func() error) (bool, error) {
	err := fn()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrDuplicate):
		logger.FromContextOrDefault(ctx, s.logger).Debug("seed entry already exists",
			slog.String("entity", entity),
			slog.String("key", key))
		return false, nil
	default:
		return false, fmt.Errorf("seed %s %q: %w", entity, key, err)
	}
}

func (sum *Summary) count(created bool, field *int) {
	if created {
		*field++
		return
	}
	sum.Skipped++
}

func seedID(kind, key string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(kind+"/"+key))
}

func (c *Coordinate) point() (*geo.Point, error) {
	if c == nil {
		return nil, nil
	}
	p, err := geo.NewPoint(c.Lat.InexactFloat64(), c.Lon.InexactFloat64())
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (fs FacilitySeed) facility() (*domain.Facility, error) {
	loc, err := fs.Location.point()
	if err != nil {
		return nil, err
	}
	f := &domain.Facility{
		ID:       seedID("facility", fs.Key),
		Name:     fs.Name,
		Kind:     domain.FacilityKind(fs.Kind),
		Email:    fs.Email,
		Phone:    fs.Phone,
		City:     fs.City,
		Location: loc,
		Verified: fs.Verified,
	}
	return f, f.Validate()
}

func (ds DonorSeed) donor(today time.Time) (*domain.Donor, error) {
	group, err := domain.ParseBloodGroup(ds.BloodGroup)
	if err != nil {
		return nil, err
	}
	loc, err := ds.Location.point()
	if err != nil {
		return nil, err
	}
	d := &domain.Donor{
		ID:            seedID("donor", ds.Key),
		FirstName:     ds.FirstName,
		LastName:      ds.LastName,
		Phone:         ds.Phone,
		Email:         ds.Email,
		BloodGroup:    group,
		City:          ds.City,
		Location:      loc,
		Available:     ds.Available,
		Verified:      ds.Verified,
		HasHealthInfo: ds.HealthInfo,
	}
	if ds.LastDonatedDaysAgo != nil {
		last := today.AddDate(0, 0, -*ds.LastDonatedDaysAgo)
		d.LastDonationDate = &last
	}
	return d, nil
}

func (is InventorySeed) unit(owner uuid.UUID, today time.Time) (*domain.InventoryUnit, error) {
	group, err := domain.ParseBloodGroup(is.BloodGroup)
	if err != nil {
		return nil, err
	}
	component, err := domain.ParseComponentType(is.ComponentType)
	if err != nil {
		return nil, err
	}
	status := domain.InventoryAvailable
	if is.Status != "" {
		status = domain.InventoryStatus(is.Status)
	}

	collected := today.AddDate(0, 0, -is.CollectedDaysAgo)
	expiry := domain.DefaultExpiry(collected, component)
	if is.ExpiresInDays != nil {
		expiry = today.AddDate(0, 0, *is.ExpiresInDays)
	}

	now := today.UTC()
	u := &domain.InventoryUnit{
		ID:              seedID("inventory", is.Key),
		OwnerID:         owner,
		BloodGroup:      group,
		ComponentType:   component,
		Quantity:        is.Quantity,
		CollectionDate:  collected,
		ExpiryDate:      expiry,
		StorageLocation: is.StorageLocation,
		BatchNumber:     is.BatchNumber,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return u, u.Validate()
}

func (rs RequestSeed) request(hospital uuid.UUID, city string, today time.Time) (*domain.DonationRequest, error) {
	group, err := domain.ParseBloodGroup(rs.BloodGroup)
	if err != nil {
		return nil, err
	}
	component, err := domain.ParseComponentType(rs.ComponentType)
	if err != nil {
		return nil, err
	}
	status := domain.RequestPending
	if rs.Status != "" {
		status = domain.RequestStatus(rs.Status)
	}

	created := today.AddDate(0, 0, -rs.CreatedDaysAgo)
	r := &domain.DonationRequest{
		ID:               seedID("request", rs.Key),
		HospitalID:       hospital,
		BloodGroup:       group,
		ComponentType:    component,
		QuantityRequired: rs.QuantityRequired,
		Urgency:          domain.Urgency(rs.Urgency),
		City:             city,
		RequiredBy:       today.AddDate(0, 0, rs.RequiredInDays),
		Status:           status,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	return r, r.Validate()
}

func (hs HistorySeed) requests(
	index int,
	hospital uuid.UUID,
	city string,
	today time.Time,
) ([]*domain.DonationRequest, error) {
	group, err := domain.ParseBloodGroup(hs.BloodGroup)
	if err != nil {
		return nil, err
	}
	component, err := domain.ParseComponentType(hs.ComponentType)
	if err != nil {
		return nil, err
	}
	status := domain.RequestFulfilled
	if hs.Status != "" {
		status = domain.RequestStatus(hs.Status)
	}

	out := make([]*domain.DonationRequest, 0, hs.Days)
	for day := 1; day <= hs.Days; day++ {
		created := today.AddDate(0, 0, -day)
		qty := hs.Quantity
		if wd := created.Weekday(); hs.WeekendQuantity > 0 && (wd == time.Saturday || wd == time.Sunday) {
			qty = hs.WeekendQuantity
		}
		r := &domain.DonationRequest{
			ID:               seedID("history", fmt.Sprintf("%d/%d", index, day)),
			HospitalID:       hospital,
			BloodGroup:       group,
			ComponentType:    component,
			QuantityRequired: qty,
			Urgency:          domain.UrgencyMedium,
			City:             city,
			RequiredBy:       created.AddDate(0, 0, 1),
			Status:           status,
			CreatedAt:        created,
			UpdatedAt:        created,
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
