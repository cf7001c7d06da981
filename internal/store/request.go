package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain"
)

// RequestQuery filters historical donation requests.
type RequestQuery struct {
	// City is matched exactly; empty matches every city.
	City          string
	BloodGroup    domain.BloodGroup
	ComponentType domain.ComponentType
	Statuses      []domain.RequestStatus
	// Since and Until bound the request creation time, inclusive and exclusive.
	Since time.Time
	Until time.Time
}

// RequestStore defines the interface for donation request persistence.
type RequestStore interface {
	// FindHistory returns one ForecastRecord per matching request ordered by date.
	FindHistory(ctx context.Context, q RequestQuery) ([]domain.ForecastRecord, error)

	// GetByID retrieves a single request.
	// Returns ErrRequestNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DonationRequest, error)

	// Create inserts a new request. The request is validated first.
	Create(ctx context.Context, req *domain.DonationRequest) error

	// UpdateStatus moves a request to next, enforcing the lifecycle rules.
	UpdateStatus(ctx context.Context, id uuid.UUID, next domain.RequestStatus) error

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) RequestStore
}
