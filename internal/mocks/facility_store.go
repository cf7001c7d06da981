package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// MockFacilityStore implements store.FacilityStore for testing.
type MockFacilityStore struct {
	CreateFn func(ctx context.Context, f *domain.Facility) error

	mu         sync.Mutex
	Facilities []*domain.Facility
}

var _ store.FacilityStore = (*MockFacilityStore)(nil)

// Create implements store.FacilityStore.
func (m *MockFacilityStore) Create(ctx context.Context, f *domain.Facility) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, f)
	}
	if err := f.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Facilities = append(m.Facilities, f)
	return nil
}
