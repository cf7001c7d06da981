package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// PostgresModelStore implements store.ModelStore. Each version is one row
// holding the whole artifact as JSONB.
type PostgresModelStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ModelStore = (*PostgresModelStore)(nil)

// NewPostgresModelStore creates a model store over db.
func NewPostgresModelStore(db store.DBTX, logger *slog.Logger) *PostgresModelStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresModelStore{
		db:     db,
		logger: logger.With(slog.String("component", "model_store")),
	}
}

// Save implements store.ModelStore.
func (s *PostgresModelStore) Save(ctx context.Context, m *domain.TrainedModel) error {
	if err := m.Validate(); err != nil {
		return err
	}
	artifact, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO forecast_models (name, version, trained_at, artifact) VALUES ($1, $2, $3, $4)`,
		m.Name, m.Version, m.TrainedAt, artifact)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s v%d", store.ErrModelVersionExists, m.Name, m.Version)
		}
		return store.NewStoreError("forecast_model", "save", "insert failed", MapError(err))
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("forecast model saved",
		slog.String("model_name", m.Name),
		slog.Int("version", m.Version))
	return nil
}

// Load implements store.ModelStore.
func (s *PostgresModelStore) Load(ctx context.Context, name string) (*domain.TrainedModel, error) {
	var artifact []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT artifact FROM forecast_models WHERE name = $1 ORDER BY version DESC LIMIT 1`,
		name).Scan(&artifact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrModelNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("forecast_model", "load", "query failed", MapError(err))
	}

	var m domain.TrainedModel
	if err := json.Unmarshal(artifact, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	return &m, nil
}
