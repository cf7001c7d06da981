package store

import (
	"context"

	"github.com/phrazzld/lifeline-api/internal/domain"
)

// ModelStore persists trained forecast artifacts. Encoders and coefficients
// are always written and read as one unit.
type ModelStore interface {
	// Save stores m under m.Name and m.Version.
	// Returns ErrModelVersionExists if that version is already stored.
	Save(ctx context.Context, m *domain.TrainedModel) error

	// Load returns the latest version stored under name.
	// Returns ErrModelNotFound when nothing has been stored yet.
	Load(ctx context.Context, name string) (*domain.TrainedModel, error)
}
