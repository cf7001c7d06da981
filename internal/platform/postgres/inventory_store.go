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

// inventoryColumns selects a unit together with its owner's name and coordinate.
const inventoryColumns = `
	i.id, i.owner_id, u.organization_name, i.blood_group, i.component_type,
	i.quantity, i.collection_date, i.expiry_date, i.storage_location,
	i.batch_number, i.status, i.created_at, i.updated_at, u.latitude, u.longitude`

const inventoryFrom = `
	FROM inventory_units i
	JOIN users u ON u.id = i.owner_id`

// PostgresInventoryStore implements store.InventoryStore.
type PostgresInventoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.InventoryStore = (*PostgresInventoryStore)(nil)

// NewPostgresInventoryStore creates an inventory store over db, which may be
// a *sql.DB or a *sql.Tx.
func NewPostgresInventoryStore(db store.DBTX, logger *slog.Logger) *PostgresInventoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresInventoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "inventory_store")),
	}
}

// WithTx implements store.InventoryStore.
func (s *PostgresInventoryStore) WithTx(tx *sql.Tx) store.InventoryStore {
	return &PostgresInventoryStore{db: tx, logger: s.logger}
}

// FindAvailable implements store.InventoryStore. The status filter defaults
// to AVAILABLE.
func (s *PostgresInventoryStore) FindAvailable(
	ctx context.Context,
	q store.InventoryQuery,
) ([]*domain.InventoryUnit, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	status := q.Status
	if status == "" {
		status = domain.InventoryAvailable
	}

	var (
		where = []string{"i.status = $1"}
		args  = []any{status}
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.BloodGroup != "" {
		add("i.blood_group = $%d", q.BloodGroup)
	}
	if q.ComponentType != "" {
		add("i.component_type = $%d", q.ComponentType)
	}
	if q.MinQuantity > 0 {
		add("i.quantity >= $%d", q.MinQuantity)
	}
	if !q.ExpiryAfter.IsZero() {
		add("i.expiry_date > $%d", q.ExpiryAfter)
	}
	if q.OwnerID != nil {
		add("i.owner_id = $%d", *q.OwnerID)
	}

	query := "SELECT" + inventoryColumns + inventoryFrom +
		"\n\tWHERE " + strings.Join(where, " AND ") + "\n\tORDER BY i.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query inventory", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("inventory_unit", "find_available", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	units := []*domain.InventoryUnit{}
	for rows.Next() {
		u, err := scanInventoryUnit(rows)
		if err != nil {
			return nil, store.NewStoreError("inventory_unit", "find_available", "scan failed", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("inventory_unit", "find_available", "iteration failed", MapError(err))
	}

	log.Debug("inventory query complete", slog.Int("units", len(units)))
	return units, nil
}

// GetByID implements store.InventoryStore.
func (s *PostgresInventoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.InventoryUnit, error) {
	return s.get(ctx, id, "")
}

func (s *PostgresInventoryStore) get(ctx context.Context, id uuid.UUID, suffix string) (*domain.InventoryUnit, error) {
	query := "SELECT" + inventoryColumns + inventoryFrom + "\n\tWHERE i.id = $1" + suffix
	u, err := scanInventoryUnit(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrInventoryUnitNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("inventory_unit", "get", "query failed", MapError(err))
	}
	return u, nil
}

// Create implements store.InventoryStore.
func (s *PostgresInventoryStore) Create(ctx context.Context, unit *domain.InventoryUnit) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := unit.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_units (
			id, owner_id, blood_group, component_type, quantity, collection_date,
			expiry_date, storage_location, batch_number, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		unit.ID, unit.OwnerID, unit.BloodGroup, unit.ComponentType, unit.Quantity,
		unit.CollectionDate, unit.ExpiryDate, unit.StorageLocation, unit.BatchNumber,
		unit.Status, unit.CreatedAt, unit.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner %s not found", store.ErrInvalidEntity, unit.OwnerID)
		}
		log.Error("failed to create inventory unit",
			slog.String("unit_id", unit.ID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("inventory_unit", "create", "insert failed", MapError(err))
	}

	log.Debug("inventory unit created", slog.String("unit_id", unit.ID.String()))
	return nil
}

// Consume implements store.InventoryStore. The unit row is locked for the
// duration of the update; when called outside a transaction one is opened.
func (s *PostgresInventoryStore) Consume(ctx context.Context, id uuid.UUID, qty int) (*domain.InventoryUnit, error) {
	beginner, ok := s.db.(store.TxBeginner)
	if !ok {
		return s.consume(ctx, id, qty)
	}

	var unit *domain.InventoryUnit
	err := store.RunInTransaction(ctx, beginner, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		unit, err = s.WithTx(tx).(*PostgresInventoryStore).consume(ctx, id, qty)
		return err
	})
	return unit, err
}

func (s *PostgresInventoryStore) consume(ctx context.Context, id uuid.UUID, qty int) (*domain.InventoryUnit, error) {
	unit, err := s.get(ctx, id, " FOR UPDATE OF i")
	if err != nil {
		return nil, err
	}
	if err := unit.Consume(qty, time.Now()); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE inventory_units SET quantity = $2, status = $3, updated_at = $4 WHERE id = $1`,
		unit.ID, unit.Quantity, unit.Status, unit.UpdatedAt)
	if err != nil {
		return nil, store.NewStoreError("inventory_unit", "consume", "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrInventoryUnitNotFound); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("inventory consumed",
		slog.String("unit_id", unit.ID.String()),
		slog.Int("quantity", qty),
		slog.Int("remaining", unit.Quantity),
		slog.String("status", string(unit.Status)))
	return unit, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInventoryUnit(row rowScanner) (*domain.InventoryUnit, error) {
	var (
		u        domain.InventoryUnit
		group    string
		comp     string
		status   string
		lat, lon decimal.NullDecimal
	)
	err := row.Scan(
		&u.ID, &u.OwnerID, &u.OwnerName, &group, &comp,
		&u.Quantity, &u.CollectionDate, &u.ExpiryDate, &u.StorageLocation,
		&u.BatchNumber, &status, &u.CreatedAt, &u.UpdatedAt, &lat, &lon,
	)
	if err != nil {
		return nil, err
	}
	u.BloodGroup = domain.BloodGroup(group)
	u.ComponentType = domain.ComponentType(comp)
	u.Status = domain.InventoryStatus(status)
	u.Facility = pointFromColumns(lat, lon)
	return &u, nil
}
