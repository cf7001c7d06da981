package store

import (
	"context"

	"github.com/phrazzld/lifeline-api/internal/domain"
)

// DonorQuery filters registered donors.
type DonorQuery struct {
	BloodGroup    domain.BloodGroup
	City          string
	AvailableOnly bool
	VerifiedOnly  bool
}

// DonorStore defines the interface for donor lookups.
type DonorStore interface {
	// FindCandidates returns donors matching q in a stable order
	// (registration time, then ID). An empty slice is not an error.
	FindCandidates(ctx context.Context, q DonorQuery) ([]*domain.Donor, error)

	// Create registers a donor together with its profile.
	Create(ctx context.Context, donor *domain.Donor) error
}
