package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/lifeline-api/internal/config"
	"github.com/phrazzld/lifeline-api/internal/platform/filestore"
	"github.com/phrazzld/lifeline-api/internal/platform/postgres"
	"github.com/phrazzld/lifeline-api/internal/store"
	"github.com/phrazzld/lifeline-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{URL: "postgres://localhost/lifeline", MaxOpenConns: 1},
		Matching: config.MatchingConfig{
			SupplyPoolSize:   5,
			DonorResultLimit: 10,
			DonorThreshold:   0.3,
			DistanceWorkers:  2,
		},
		Forecast: config.ForecastConfig{
			Strategy:          "heuristic",
			ModelName:         "demand",
			ModelStore:        "postgres",
			HistoryWindowDays: 90,
			MinSamples:        10,
			RidgeLambda:       1,
		},
		Tasks: config.TaskConfig{WorkerCount: 1, QueueSize: 4, Timeout: time.Minute, Store: "memory"},
	}
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestScoringParams(t *testing.T) {
	p := scoringParams(config.MatchingConfig{SupplyPoolSize: 8, DonorResultLimit: 3, DonorThreshold: 0.5})
	assert.Equal(t, 8, p.SupplyCandidatePool)
	assert.Equal(t, 3, p.DonorResultLimit)
	assert.InDelta(t, 0.5, p.DonorThreshold, 1e-9)
	assert.InDelta(t, 0.4, p.SupplyDistanceWeight, 1e-9)

	defaults := scoringParams(config.MatchingConfig{DonorThreshold: 0.3})
	assert.Equal(t, 5, defaults.SupplyCandidatePool)
	assert.Equal(t, 10, defaults.DonorResultLimit)
}

func TestNewModelStore(t *testing.T) {
	db, _ := newMockDB(t)

	s, err := newModelStore(config.ForecastConfig{ModelStore: "postgres"}, db, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &postgres.PostgresModelStore{}, s)

	s, err = newModelStore(config.ForecastConfig{ModelStore: "file", ModelDir: t.TempDir()}, db, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &filestore.ModelStore{}, s)

	_, err = newModelStore(config.ForecastConfig{ModelStore: "s3"}, db, discardLogger())
	assert.Error(t, err)
}

func TestNewTaskStore(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()

	s, err := newTaskStore(ctx, config.TaskConfig{Store: "memory"}, db, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &task.MemoryStore{}, s)

	mock.ExpectExec(regexp.QuoteMeta("WHERE status IN")).WillReturnResult(sqlmock.NewResult(0, 2))
	s, err = newTaskStore(ctx, config.TaskConfig{Store: "postgres"}, db, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &postgres.PostgresTaskStore{}, s)
}

func TestNewApplicationHeuristic(t *testing.T) {
	db, _ := newMockDB(t)

	app, err := newApplication(context.Background(), testConfig(), discardLogger(), db)
	require.NoError(t, err)
	assert.Nil(t, app.trainable)
	assert.False(t, app.facade.CanRetrain())

	app.start()
	t.Cleanup(func() { _ = app.stop(context.Background()) })

	h := app.router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/forecast/train", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNewApplicationTrainedWithoutModel(t *testing.T) {
	db, mock := newMockDB(t)
	cfg := testConfig()
	cfg.Forecast.Strategy = "trained"

	mock.ExpectQuery(regexp.QuoteMeta("FROM forecast_models")).
		WithArgs("demand").
		WillReturnError(sql.ErrNoRows)

	app, err := newApplication(context.Background(), cfg, discardLogger(), db)
	require.NoError(t, err)
	require.NotNil(t, app.trainable)
	assert.Nil(t, app.trainable.Model())
	assert.True(t, app.facade.CanRetrain())
}

func TestNewApplicationModelStoreFailure(t *testing.T) {
	db, mock := newMockDB(t)
	cfg := testConfig()
	cfg.Forecast.Strategy = "trained"

	mock.ExpectQuery("FROM forecast_models").WillReturnError(sql.ErrConnDone)

	_, err := newApplication(context.Background(), cfg, discardLogger(), db)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrModelNotFound)
	assert.Contains(t, err.Error(), "failed to load forecast model")
}
