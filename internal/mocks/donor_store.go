package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// MockDonorStore implements store.DonorStore for testing.
// FindCandidates returns Donors unfiltered unless FindCandidatesFn is set.
type MockDonorStore struct {
	FindCandidatesFn func(ctx context.Context, q store.DonorQuery) ([]*domain.Donor, error)
	CreateFn         func(ctx context.Context, donor *domain.Donor) error

	mu        sync.Mutex
	Donors    []*domain.Donor
	LastQuery store.DonorQuery
}

var _ store.DonorStore = (*MockDonorStore)(nil)

// FindCandidates implements store.DonorStore.
func (m *MockDonorStore) FindCandidates(ctx context.Context, q store.DonorQuery) ([]*domain.Donor, error) {
	m.mu.Lock()
	m.LastQuery = q
	m.mu.Unlock()

	if m.FindCandidatesFn != nil {
		return m.FindCandidatesFn(ctx, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Donor(nil), m.Donors...), nil
}

// Create implements store.DonorStore.
func (m *MockDonorStore) Create(ctx context.Context, donor *domain.Donor) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, donor)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Donors = append(m.Donors, donor)
	return nil
}
