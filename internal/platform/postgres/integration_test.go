//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/config"
	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
	"github.com/phrazzld/lifeline-api/internal/platform/postgres"
	"github.com/phrazzld/lifeline-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("LIFELINE_DATABASE_URL")
	if url == "" {
		t.Skip("LIFELINE_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 5, MaxIdleConns: 2}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db, "up", nil))
	return db
}

// withTx runs fn inside a transaction that is always rolled back.
func withTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	fn(tx)
}

func TestIntegration_InventoryLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	withTx(t, db, func(tx *sql.Tx) {
		bank := &domain.Facility{
			ID:       uuid.New(),
			Name:     "Ruby Hall Blood Bank",
			Kind:     domain.FacilityBloodBank,
			Email:    uuid.NewString() + "@example.org",
			City:     "Pune",
			Location: &geo.Point{Lat: 18.533, Lon: 73.877},
		}
		require.NoError(t, postgres.NewPostgresFacilityStore(tx, nil).Create(ctx, bank))

		now := time.Now().UTC().Truncate(time.Microsecond)
		unit := &domain.InventoryUnit{
			ID:             uuid.New(),
			OwnerID:        bank.ID,
			BloodGroup:     domain.BloodGroupOPos,
			ComponentType:  domain.ComponentWholeBlood,
			Quantity:       2,
			CollectionDate: now,
			ExpiryDate:     domain.DefaultExpiry(now, domain.ComponentWholeBlood),
			Status:         domain.InventoryAvailable,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		inventory := postgres.NewPostgresInventoryStore(tx, nil)
		require.NoError(t, inventory.Create(ctx, unit))

		units, err := inventory.FindAvailable(ctx, store.InventoryQuery{
			BloodGroup:    domain.BloodGroupOPos,
			ComponentType: domain.ComponentWholeBlood,
			MinQuantity:   1,
			ExpiryAfter:   now,
			OwnerID:       &bank.ID,
		})
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, "Ruby Hall Blood Bank", units[0].OwnerName)
		require.NotNil(t, units[0].Facility)
		assert.InDelta(t, 18.533, units[0].Facility.Lat, 1e-6)

		consumed, err := inventory.Consume(ctx, unit.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.InventoryUsed, consumed.Status)

		_, err = inventory.Consume(ctx, unit.ID, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestIntegration_RequestHistoryAndModels(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	withTx(t, db, func(tx *sql.Tx) {
		hospital := &domain.Facility{
			ID:    uuid.New(),
			Name:  "Sassoon General",
			Kind:  domain.FacilityHospital,
			Email: uuid.NewString() + "@example.org",
			City:  "Pune",
		}
		require.NoError(t, postgres.NewPostgresFacilityStore(tx, nil).Create(ctx, hospital))

		requests := postgres.NewPostgresRequestStore(tx, nil)
		req, err := domain.NewDonationRequest(hospital.ID, domain.BloodGroupABNeg, domain.ComponentPlasma,
			3, domain.UrgencyHigh, "Pune", time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		require.NoError(t, requests.Create(ctx, req))
		require.NoError(t, requests.UpdateStatus(ctx, req.ID, domain.RequestFulfilled))

		history, err := requests.FindHistory(ctx, store.RequestQuery{
			City:       "Pune",
			BloodGroup: domain.BloodGroupABNeg,
			Statuses:   []domain.RequestStatus{domain.RequestFulfilled},
		})
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 3, history[0].Quantity)

		models := postgres.NewPostgresModelStore(tx, nil)
		require.NoError(t, models.Save(ctx, sampleModel(1)))
		require.NoError(t, models.Save(ctx, sampleModel(2)))

		latest, err := models.Load(ctx, "demand")
		require.NoError(t, err)
		assert.Equal(t, 2, latest.Version)

		// Last: the failed insert aborts the transaction.
		assert.ErrorIs(t, models.Save(ctx, sampleModel(2)), store.ErrModelVersionExists)
	})
}
