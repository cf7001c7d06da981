package store

import (
	"context"

	"github.com/phrazzld/lifeline-api/internal/domain"
)

// FacilityStore persists hospitals and blood banks.
type FacilityStore interface {
	// Create registers a facility. Returns ErrDuplicate if the e-mail is taken.
	Create(ctx context.Context, f *domain.Facility) error
}
