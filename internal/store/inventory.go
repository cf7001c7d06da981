package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain"
)

// InventoryQuery filters inventory units. Zero values disable a filter,
// except Status which defaults to AVAILABLE in implementations.
type InventoryQuery struct {
	BloodGroup    domain.BloodGroup
	ComponentType domain.ComponentType
	Status        domain.InventoryStatus
	MinQuantity   int
	// ExpiryAfter keeps only units whose expiry date is strictly after it.
	ExpiryAfter time.Time
	OwnerID     *uuid.UUID
}

// InventoryStore defines the interface for inventory persistence.
type InventoryStore interface {
	// FindAvailable returns units matching q ordered by unit ID.
	// An empty slice is not an error.
	FindAvailable(ctx context.Context, q InventoryQuery) ([]*domain.InventoryUnit, error)

	// GetByID retrieves a single unit.
	// Returns ErrInventoryUnitNotFound if the unit does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InventoryUnit, error)

	// Create inserts a new unit. The unit is validated first.
	Create(ctx context.Context, unit *domain.InventoryUnit) error

	// Consume removes qty from a unit, marking it USED when it reaches zero.
	// Returns ErrInventoryUnitNotFound, domain.ErrInsufficientQuantity or
	// domain.ErrInvalidTransition.
	Consume(ctx context.Context, id uuid.UUID, qty int) (*domain.InventoryUnit, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) InventoryStore
}
