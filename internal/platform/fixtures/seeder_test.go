package fixtures_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/mocks"
	"github.com/phrazzld/lifeline-api/internal/platform/fixtures"
	"github.com/phrazzld/lifeline-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A Wednesday.
var fixedNow = time.Date(2025, 7, 2, 15, 30, 0, 0, time.UTC)

type seedStores struct {
	facilities *mocks.MockFacilityStore
	donors     *mocks.MockDonorStore
	inventory  *mocks.MockInventoryStore
	requests   *mocks.MockRequestStore
}

func newSeeder(t *testing.T) (*fixtures.Seeder, *seedStores) {
	t.Helper()
	st := &seedStores{
		facilities: &mocks.MockFacilityStore{},
		donors:     &mocks.MockDonorStore{},
		inventory:  &mocks.MockInventoryStore{},
		requests:   &mocks.MockRequestStore{},
	}
	s, err := fixtures.NewSeeder(fixtures.Stores{
		Facilities: st.facilities,
		Donors:     st.donors,
		Inventory:  st.inventory,
		Requests:   st.requests,
	}, nil, func() time.Time { return fixedNow })
	require.NoError(t, err)
	return s, st
}

func loadSample(t *testing.T) *fixtures.Seed {
	t.Helper()
	seed, err := fixtures.LoadFile("testdata/seed.yaml")
	require.NoError(t, err)
	return seed
}

func TestApplySampleSeed(t *testing.T) {
	s, st := newSeeder(t)

	sum, err := s.Apply(context.Background(), loadSample(t))
	require.NoError(t, err)

	assert.Equal(t, fixtures.Summary{
		Facilities: 4,
		Donors:     3,
		Inventory:  5,
		Requests:   3 + 60 + 60,
	}, sum)
	assert.Len(t, st.facilities.Facilities, 4)
	assert.Len(t, st.donors.Donors, 3)
	assert.Len(t, st.inventory.Units, 5)
	assert.Len(t, st.requests.Requests, 123)
}

func TestApplyResolvesReferencesAndDates(t *testing.T) {
	s, st := newSeeder(t)
	_, err := s.Apply(context.Background(), loadSample(t))
	require.NoError(t, err)

	today := domain.StartOfDay(fixedNow)
	bank := st.facilities.Facilities[0]
	assert.Equal(t, domain.FacilityBloodBank, bank.Kind)
	require.NotNil(t, bank.Location)
	assert.InDelta(t, 19.0760, bank.Location.Lat, 1e-9)

	john := st.donors.Donors[0]
	assert.Equal(t, domain.BloodGroup("O+"), john.BloodGroup)
	require.NotNil(t, john.LastDonationDate)
	assert.Equal(t, today.AddDate(0, 0, -80), *john.LastDonationDate)
	assert.Nil(t, st.donors.Donors[2].LastDonationDate)

	unit := st.inventory.Units[0]
	assert.Equal(t, bank.ID, unit.OwnerID)
	assert.Equal(t, domain.InventoryAvailable, unit.Status)
	assert.Equal(t, 10, unit.DaysUntilExpiry(today))
	assert.Equal(t, domain.InventoryTesting, st.inventory.Units[2].Status)

	var pending, fulfilled int
	for _, r := range st.requests.Requests {
		switch r.Status {
		case domain.RequestPending:
			pending++
		case domain.RequestFulfilled:
			fulfilled++
		}
	}
	assert.Equal(t, 3, pending)
	assert.Equal(t, 120, fulfilled)
}

func TestApplyHistoryWeekendQuantity(t *testing.T) {
	s, st := newSeeder(t)
	seed, err := fixtures.Load(strings.NewReader(`
facilities:
  - {key: h, name: H, kind: HOSPITAL, email: h@example.com, city: Pune}
history:
  - {hospital: h, blood_group: A+, component_type: PLASMA, days: 7, quantity: 3, weekend_quantity: 9}
`))
	require.NoError(t, err)

	_, err = s.Apply(context.Background(), seed)
	require.NoError(t, err)

	require.Len(t, st.requests.Requests, 7)
	for _, r := range st.requests.Requests {
		want := 3
		if wd := r.CreatedAt.Weekday(); wd == time.Saturday || wd == time.Sunday {
			want = 9
		}
		assert.Equal(t, want, r.QuantityRequired, r.CreatedAt.Weekday().String())
		assert.Equal(t, "Pune", r.City)
		assert.True(t, r.CreatedAt.Before(domain.StartOfDay(fixedNow)))
	}
}

func TestApplyIsStable(t *testing.T) {
	first, st1 := newSeeder(t)
	second, st2 := newSeeder(t)
	seed := loadSample(t)

	_, err := first.Apply(context.Background(), seed)
	require.NoError(t, err)
	_, err = second.Apply(context.Background(), seed)
	require.NoError(t, err)

	assert.Equal(t, st1.facilities.Facilities[0].ID, st2.facilities.Facilities[0].ID)
	assert.Equal(t, st1.inventory.Units[4].ID, st2.inventory.Units[4].ID)
}

func TestApplySkipsExistingEntries(t *testing.T) {
	s, st := newSeeder(t)
	st.facilities.CreateFn = func(_ context.Context, f *domain.Facility) error {
		if f.Kind == domain.FacilityHospital {
			return fmt.Errorf("%w: facility email already registered", store.ErrDuplicate)
		}
		return nil
	}

	sum, err := s.Apply(context.Background(), loadSample(t))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Facilities)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 123, sum.Requests)
}

func TestApplyStopsOnStoreFailure(t *testing.T) {
	s, st := newSeeder(t)
	boom := errors.New("connection reset")
	st.inventory.CreateFn = func(context.Context, *domain.InventoryUnit) error {
		return boom
	}

	sum, err := s.Apply(context.Background(), loadSample(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `seed inventory "bb001-opn-001"`)
	assert.Equal(t, 4, sum.Facilities)
	assert.Zero(t, sum.Requests)
}

func TestApplyRejectsInvalidEntries(t *testing.T) {
	s, _ := newSeeder(t)
	seed, err := fixtures.Load(strings.NewReader(`
donors:
  - {key: d, first_name: D, email: d@example.com, blood_group: Z+, city: Pune}
`))
	require.NoError(t, err)

	_, err = s.Apply(context.Background(), seed)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), `donor "d"`)
}

func TestNewSeederRequiresStores(t *testing.T) {
	_, err := fixtures.NewSeeder(fixtures.Stores{}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "facility store cannot be nil")
}
