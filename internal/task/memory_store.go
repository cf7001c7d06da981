package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned for task IDs the store has never seen.
var ErrTaskNotFound = errors.New("task not found")

// MemoryStore keeps task records in process memory. Finished records
// beyond the retention limit are evicted oldest first.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	order   []uuid.UUID
	retain  int
	now     func() time.Time
}

var _ TaskStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store retaining up to retain records.
// A non-positive retain keeps 1000.
func NewMemoryStore(retain int, now func() time.Time) *MemoryStore {
	if retain <= 0 {
		retain = 1000
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		records: make(map[uuid.UUID]*Record),
		retain:  retain,
		now:     now,
	}
}

// SaveTask implements TaskStore.
func (s *MemoryStore) SaveTask(_ context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[task.ID()]; exists {
		return fmt.Errorf("task %s already saved", task.ID())
	}
	ts := s.now().UTC()
	s.records[task.ID()] = &Record{
		ID:        task.ID(),
		Type:      task.Type(),
		Status:    TaskStatusPending,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.order = append(s.order, task.ID())
	s.evict()
	return nil
}

// UpdateTaskStatus implements TaskStore.
func (s *MemoryStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	rec.Status = status
	rec.Error = errorMsg
	rec.UpdatedAt = s.now().UTC()
	return nil
}

// GetTask implements TaskStore.
func (s *MemoryStore) GetTask(_ context.Context, taskID uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	cp := *rec
	return &cp, nil
}

// evict drops the oldest finished records once the store exceeds its limit.
// Pending and processing records are never evicted. Callers hold mu.
func (s *MemoryStore) evict() {
	excess := len(s.order) - s.retain
	if excess <= 0 {
		return
	}

	kept := s.order[:0]
	for _, id := range s.order {
		rec := s.records[id]
		if excess > 0 && (rec.Status == TaskStatusCompleted || rec.Status == TaskStatusFailed) {
			delete(s.records, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}
