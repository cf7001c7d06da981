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

// MockRequestStore implements store.RequestStore for testing.
// FindHistory returns Records unfiltered unless FindHistoryFn is set.
type MockRequestStore struct {
	FindHistoryFn  func(ctx context.Context, q store.RequestQuery) ([]domain.ForecastRecord, error)
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.DonationRequest, error)
	CreateFn       func(ctx context.Context, req *domain.DonationRequest) error
	UpdateStatusFn func(ctx context.Context, id uuid.UUID, next domain.RequestStatus) error

	mu        sync.Mutex
	Records   []domain.ForecastRecord
	Requests  map[uuid.UUID]*domain.DonationRequest
	LastQuery store.RequestQuery
}

var _ store.RequestStore = (*MockRequestStore)(nil)

// FindHistory implements store.RequestStore.
func (m *MockRequestStore) FindHistory(ctx context.Context, q store.RequestQuery) ([]domain.ForecastRecord, error) {
	m.mu.Lock()
	m.LastQuery = q
	m.mu.Unlock()

	if m.FindHistoryFn != nil {
		return m.FindHistoryFn(ctx, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ForecastRecord(nil), m.Records...), nil
}

// GetByID implements store.RequestStore.
func (m *MockRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DonationRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if req, ok := m.Requests[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, store.ErrRequestNotFound
}

// Create implements store.RequestStore.
func (m *MockRequestStore) Create(ctx context.Context, req *domain.DonationRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Requests == nil {
		m.Requests = make(map[uuid.UUID]*domain.DonationRequest)
	}
	m.Requests[req.ID] = req
	return nil
}

// UpdateStatus implements store.RequestStore.
func (m *MockRequestStore) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.RequestStatus) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, next)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.Requests[id]
	if !ok {
		return store.ErrRequestNotFound
	}
	return req.TransitionTo(next, time.Now())
}

// WithTx implements store.RequestStore; the mock ignores transactions.
func (m *MockRequestStore) WithTx(_ *sql.Tx) store.RequestStore {
	return m
}
