package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/redact"
	"github.com/phrazzld/lifeline-api/internal/store"
	"github.com/shopspring/decimal"
)

// PostgresRequestStore implements store.RequestStore over the blood_requests table.
type PostgresRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.RequestStore = (*PostgresRequestStore)(nil)

// NewPostgresRequestStore creates a request store over db.
func NewPostgresRequestStore(db store.DBTX, logger *slog.Logger) *PostgresRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "request_store")),
	}
}

// WithTx implements store.RequestStore.
func (s *PostgresRequestStore) WithTx(tx *sql.Tx) store.RequestStore {
	return &PostgresRequestStore{db: tx, logger: s.logger}
}

// FindHistory implements store.RequestStore.
func (s *PostgresRequestStore) FindHistory(ctx context.Context, q store.RequestQuery) ([]domain.ForecastRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.City != "" {
		add("city = $%d", q.City)
	}
	if q.BloodGroup != "" {
		add("blood_group = $%d", q.BloodGroup)
	}
	if q.ComponentType != "" {
		add("component_type = $%d", q.ComponentType)
	}
	if !q.Since.IsZero() {
		add("created_at >= $%d", q.Since)
	}
	if !q.Until.IsZero() {
		add("created_at < $%d", q.Until)
	}
	if len(q.Statuses) > 0 {
		placeholders := make([]string, len(q.Statuses))
		for i, st := range q.Statuses {
			args = append(args, st)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT created_at, blood_group, component_type, quantity_required, city FROM blood_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query request history", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("blood_request", "find_history", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	records := []domain.ForecastRecord{}
	for rows.Next() {
		var (
			r           domain.ForecastRecord
			group, comp string
		)
		if err := rows.Scan(&r.Date, &group, &comp, &r.Quantity, &r.City); err != nil {
			return nil, store.NewStoreError("blood_request", "find_history", "scan failed", err)
		}
		r.BloodGroup = domain.BloodGroup(group)
		r.ComponentType = domain.ComponentType(comp)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("blood_request", "find_history", "iteration failed", MapError(err))
	}
	return records, nil
}

// GetByID implements store.RequestStore.
func (s *PostgresRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DonationRequest, error) {
	return s.get(ctx, id, "")
}

func (s *PostgresRequestStore) get(ctx context.Context, id uuid.UUID, suffix string) (*domain.DonationRequest, error) {
	var (
		r                    domain.DonationRequest
		group, comp, urg, st string
		lat, lon             decimal.NullDecimal
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, hospital_id, blood_group, component_type, quantity_required, urgency,
		       city, latitude, longitude, required_by, status, created_at, updated_at
		FROM blood_requests
		WHERE id = $1`+suffix, id).Scan(
		&r.ID, &r.HospitalID, &group, &comp, &r.QuantityRequired, &urg,
		&r.City, &lat, &lon, &r.RequiredBy, &st, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRequestNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("blood_request", "get", "query failed", MapError(err))
	}

	r.BloodGroup = domain.BloodGroup(group)
	r.ComponentType = domain.ComponentType(comp)
	r.Urgency = domain.Urgency(urg)
	r.Status = domain.RequestStatus(st)
	r.Location = pointFromColumns(lat, lon)
	return &r, nil
}

// Create implements store.RequestStore.
func (s *PostgresRequestStore) Create(ctx context.Context, req *domain.DonationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	lat, lon := columnsFromPoint(req.Location)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blood_requests (
			id, hospital_id, blood_group, component_type, quantity_required, urgency,
			city, latitude, longitude, required_by, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		req.ID, req.HospitalID, req.BloodGroup, req.ComponentType, req.QuantityRequired,
		req.Urgency, req.City, lat, lon, req.RequiredBy, req.Status, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: hospital %s not found", store.ErrInvalidEntity, req.HospitalID)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create request",
			slog.String("request_id", req.ID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("blood_request", "create", "insert failed", MapError(err))
	}
	return nil
}

// UpdateStatus implements store.RequestStore. The lifecycle check and the
// write happen under a row lock.
func (s *PostgresRequestStore) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.RequestStatus) error {
	if err := next.Validate(); err != nil {
		return err
	}

	beginner, ok := s.db.(store.TxBeginner)
	if !ok {
		return s.updateStatus(ctx, id, next)
	}
	return store.RunInTransaction(ctx, beginner, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).(*PostgresRequestStore).updateStatus(ctx, id, next)
	})
}

func (s *PostgresRequestStore) updateStatus(ctx context.Context, id uuid.UUID, next domain.RequestStatus) error {
	req, err := s.get(ctx, id, " FOR UPDATE")
	if err != nil {
		return err
	}
	if err := req.TransitionTo(next, time.Now()); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE blood_requests SET status = $2, updated_at = $3 WHERE id = $1`,
		req.ID, req.Status, req.UpdatedAt)
	if err != nil {
		return store.NewStoreError("blood_request", "update_status", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrRequestNotFound)
}
