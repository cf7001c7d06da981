package postgres_test

import (
	"context"
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

var requestRowColumns = []string{
	"id", "hospital_id", "blood_group", "component_type", "quantity_required", "urgency",
	"city", "latitude", "longitude", "required_by", "status", "created_at", "updated_at",
}

func TestRequestStore_FindHistory(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresRequestStore(db, nil)

	since := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	until := since.AddDate(0, 0, 90)
	day := since.AddDate(0, 0, 3)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM blood_requests WHERE city = $1 AND blood_group = $2 AND component_type = $3 " +
			"AND created_at >= $4 AND created_at < $5 AND status IN ($6, $7) ORDER BY created_at, id")).
		WithArgs("Pune", "B-", "PLATELETS", since, until, "FULFILLED", "APPROVED").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "blood_group", "component_type", "quantity_required", "city"}).
			AddRow(day, "B-", "PLATELETS", 3, "Pune").
			AddRow(day.Add(time.Hour), "B-", "PLATELETS", 1, "Pune"))

	records, err := s.FindHistory(context.Background(), store.RequestQuery{
		City:          "Pune",
		BloodGroup:    domain.BloodGroupBNeg,
		ComponentType: domain.ComponentPlatelets,
		Statuses:      []domain.RequestStatus{domain.RequestFulfilled, domain.RequestApproved},
		Since:         since,
		Until:         until,
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.ForecastRecord{
		{Date: day, BloodGroup: domain.BloodGroupBNeg, ComponentType: domain.ComponentPlatelets, Quantity: 3, City: "Pune"},
		{Date: day.Add(time.Hour), BloodGroup: domain.BloodGroupBNeg, ComponentType: domain.ComponentPlatelets, Quantity: 1, City: "Pune"},
	}, records)
}

func TestRequestStore_FindHistoryUnfiltered(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresRequestStore(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM blood_requests ORDER BY created_at, id")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "blood_group", "component_type", "quantity_required", "city"}))

	records, err := s.FindHistory(context.Background(), store.RequestQuery{})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRequestStore_FindHistoryFailureIsNotEmpty(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresRequestStore(db, nil)

	mock.ExpectQuery("FROM blood_requests").WillReturnError(newPgError("57P01"))

	records, err := s.FindHistory(context.Background(), store.RequestQuery{City: "Pune"})
	assert.Nil(t, records)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func requestRow(id uuid.UUID, status string) *sqlmock.Rows {
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(requestRowColumns).AddRow(
		id.String(), uuid.NewString(), "A+", "RBC", 2, "HIGH",
		"Pune", "18.5", "73.8", at.Add(48*time.Hour), status, at, at,
	)
}

func TestRequestStore_GetByID(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresRequestStore(db, nil)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).WithArgs(id).WillReturnRows(requestRow(id, "PENDING"))

	req, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, req.ID)
	assert.Equal(t, domain.UrgencyHigh, req.Urgency)
	assert.Equal(t, domain.RequestPending, req.Status)
	require.NotNil(t, req.Location)
	assert.InDelta(t, 18.5, req.Location.Lat, 1e-9)
}

func TestRequestStore_UpdateStatus(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresRequestStore(db, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).WithArgs(id).WillReturnRows(requestRow(id, "PENDING"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE blood_requests SET status = $2")).
		WithArgs(id, "FULFILLED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.UpdateStatus(context.Background(), id, domain.RequestFulfilled))
}

func TestRequestStore_UpdateStatusTerminal(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := postgres.NewPostgresRequestStore(db, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(id).WillReturnRows(requestRow(id, "CANCELLED"))
	mock.ExpectRollback()

	err := s.UpdateStatus(context.Background(), id, domain.RequestApproved)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRequestStore_UpdateStatusUnknown(t *testing.T) {
	t.Parallel()

	db, _ := newMock(t)
	s := postgres.NewPostgresRequestStore(db, nil)

	err := s.UpdateStatus(context.Background(), uuid.New(), "ARCHIVED")
	assert.True(t, domain.IsInvalidInput(err))
}
