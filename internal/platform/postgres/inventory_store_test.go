package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/platform/postgres"
	"github.com/phrazzld/lifeline-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inventoryRowColumns = []string{
	"id", "owner_id", "organization_name", "blood_group", "component_type",
	"quantity", "collection_date", "expiry_date", "storage_location",
	"batch_number", "status", "created_at", "updated_at", "latitude", "longitude",
}

var (
	collected = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	expires   = collected.AddDate(0, 0, 35)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func inventoryRow(rows *sqlmock.Rows, id, owner uuid.UUID, qty int, status string, lat, lon any) *sqlmock.Rows {
	return rows.AddRow(
		id.String(), owner.String(), "City Blood Bank", "O+", "WHOLE_BLOOD",
		qty, collected, expires, "Fridge 2", "B-42", status, collected, collected, lat, lon,
	)
}

func TestInventoryStore_FindAvailable(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresInventoryStore(db, nil)

	withCoord, withoutCoord, owner := uuid.New(), uuid.New(), uuid.New()
	rows := sqlmock.NewRows(inventoryRowColumns)
	inventoryRow(rows, withCoord, owner, 4, "AVAILABLE", "18.520430", "73.856744")
	inventoryRow(rows, withoutCoord, owner, 2, "AVAILABLE", nil, nil)

	after := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE i.status = $1 AND i.blood_group = $2 AND i.component_type = $3 AND i.quantity >= $4 AND i.expiry_date > $5\n\tORDER BY i.id")).
		WithArgs("AVAILABLE", "O+", "WHOLE_BLOOD", 2, after).
		WillReturnRows(rows)

	units, err := s.FindAvailable(context.Background(), store.InventoryQuery{
		BloodGroup:    domain.BloodGroupOPos,
		ComponentType: domain.ComponentWholeBlood,
		MinQuantity:   2,
		ExpiryAfter:   after,
	})
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, withCoord, units[0].ID)
	assert.Equal(t, "City Blood Bank", units[0].OwnerName)
	assert.Equal(t, domain.InventoryAvailable, units[0].Status)
	require.NotNil(t, units[0].Facility)
	assert.InDelta(t, 18.520430, units[0].Facility.Lat, 1e-9)
	assert.InDelta(t, 73.856744, units[0].Facility.Lon, 1e-9)
	assert.Nil(t, units[1].Facility)
}

func TestInventoryStore_FindAvailableByOwner(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresInventoryStore(db, nil)
	owner := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE i.status = $1 AND i.owner_id = $2")).
		WithArgs("RESERVED", owner).
		WillReturnRows(sqlmock.NewRows(inventoryRowColumns))

	units, err := s.FindAvailable(context.Background(), store.InventoryQuery{
		Status:  domain.InventoryReserved,
		OwnerID: &owner,
	})
	require.NoError(t, err)
	assert.NotNil(t, units)
	assert.Empty(t, units)
}

func TestInventoryStore_FindAvailableQueryFailure(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresInventoryStore(db, nil)

	mock.ExpectQuery("SELECT").WillReturnError(newPgError("08006"))

	units, err := s.FindAvailable(context.Background(), store.InventoryQuery{})
	assert.Nil(t, units)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "find_available", storeErr.Operation)
}

func TestInventoryStore_GetByIDNotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresInventoryStore(db, nil)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE i.id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(inventoryRowColumns))

	_, err := s.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrInventoryUnitNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInventoryStore_ConsumeToZeroMarksUsed(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresInventoryStore(db, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE i.id = $1 FOR UPDATE OF i")).
		WithArgs(id).
		WillReturnRows(inventoryRow(sqlmock.NewRows(inventoryRowColumns), id, uuid.New(), 3, "AVAILABLE", nil, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE inventory_units SET quantity = $2, status = $3")).
		WithArgs(id, 0, "USED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	unit, err := s.Consume(context.Background(), id, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, unit.Quantity)
	assert.Equal(t, domain.InventoryUsed, unit.Status)
}

func TestInventoryStore_ConsumeInsufficientRollsBack(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresInventoryStore(db, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF i")).
		WithArgs(id).
		WillReturnRows(inventoryRow(sqlmock.NewRows(inventoryRowColumns), id, uuid.New(), 1, "AVAILABLE", nil, nil))
	mock.ExpectRollback()

	_, err := s.Consume(context.Background(), id, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
}

func TestInventoryStore_CreateValidatesFirst(t *testing.T) {
	t.Parallel()

	db, _ := newMock(t)
	s := postgres.NewPostgresInventoryStore(db, nil)

	err := s.Create(context.Background(), &domain.InventoryUnit{})
	assert.Error(t, err)
}

func TestInventoryStore_CreateUnknownOwner(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresInventoryStore(db, nil)
	unit := &domain.InventoryUnit{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		BloodGroup:     domain.BloodGroupANeg,
		ComponentType:  domain.ComponentPlasma,
		Quantity:       2,
		CollectionDate: collected,
		ExpiryDate:     expires,
		Status:         domain.InventoryAvailable,
	}

	mock.ExpectExec("INSERT INTO inventory_units").WillReturnError(newPgError("23503"))

	err := s.Create(context.Background(), unit)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}
