package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// MockModelStore implements store.ModelStore in memory, keeping every version.
type MockModelStore struct {
	SaveFn func(ctx context.Context, m *domain.TrainedModel) error
	LoadFn func(ctx context.Context, name string) (*domain.TrainedModel, error)

	mu     sync.Mutex
	Models map[string][]*domain.TrainedModel
	Saves  int
}

var _ store.ModelStore = (*MockModelStore)(nil)

// Save implements store.ModelStore.
func (s *MockModelStore) Save(ctx context.Context, m *domain.TrainedModel) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Models == nil {
		s.Models = make(map[string][]*domain.TrainedModel)
	}
	for _, existing := range s.Models[m.Name] {
		if existing.Version == m.Version {
			return store.ErrModelVersionExists
		}
	}
	cp := *m
	s.Models[m.Name] = append(s.Models[m.Name], &cp)
	s.Saves++
	return nil
}

// Load implements store.ModelStore.
func (s *MockModelStore) Load(ctx context.Context, name string) (*domain.TrainedModel, error) {
	if s.LoadFn != nil {
		return s.LoadFn(ctx, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *domain.TrainedModel
	for _, m := range s.Models[name] {
		if latest == nil || m.Version > latest.Version {
			latest = m
		}
	}
	if latest == nil {
		return nil, store.ErrModelNotFound
	}
	cp := *latest
	return &cp, nil
}
