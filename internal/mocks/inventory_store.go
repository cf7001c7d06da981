package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// MockInventoryStore implements store.InventoryStore for testing.
// By default FindAvailable returns Units unfiltered so that callers'
// own filtering is exercised.
type MockInventoryStore struct {
	FindAvailableFn func(ctx context.Context, q store.InventoryQuery) ([]*domain.InventoryUnit, error)
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.InventoryUnit, error)
	CreateFn        func(ctx context.Context, unit *domain.InventoryUnit) error
	ConsumeFn       func(ctx context.Context, id uuid.UUID, qty int) (*domain.InventoryUnit, error)

	mu        sync.Mutex
	Units     []*domain.InventoryUnit
	LastQuery store.InventoryQuery
	Calls     int
}

var _ store.InventoryStore = (*MockInventoryStore)(nil)

// FindAvailable implements store.InventoryStore.
func (m *MockInventoryStore) FindAvailable(
	ctx context.Context,
	q store.InventoryQuery,
) ([]*domain.InventoryUnit, error) {
	m.mu.Lock()
	m.LastQuery = q
	m.Calls++
	m.mu.Unlock()

	if m.FindAvailableFn != nil {
		return m.FindAvailableFn(ctx, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.InventoryUnit, 0, len(m.Units))
	for _, u := range m.Units {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

// GetByID implements store.InventoryStore.
func (m *MockInventoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.InventoryUnit, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Units {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrInventoryUnitNotFound
}

// Create implements store.InventoryStore.
func (m *MockInventoryStore) Create(ctx context.Context, unit *domain.InventoryUnit) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, unit)
	}
	if err := unit.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Units = append(m.Units, unit)
	return nil
}

// Consume implements store.InventoryStore.
func (m *MockInventoryStore) Consume(ctx context.Context, id uuid.UUID, qty int) (*domain.InventoryUnit, error) {
	if m.ConsumeFn != nil {
		return m.ConsumeFn(ctx, id, qty)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Units {
		if u.ID == id {
			if err := u.Consume(qty, time.Now()); err != nil {
				return nil, err
			}
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrInventoryUnitNotFound
}

// WithTx implements store.InventoryStore; the mock ignores transactions.
func (m *MockInventoryStore) WithTx(_ *sql.Tx) store.InventoryStore {
	return m
}
