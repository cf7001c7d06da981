package task

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// MockTask is a Task whose behaviour is set by ExecuteFn.
type MockTask struct {
	TaskID    uuid.UUID
	TaskType  string
	ExecuteFn func(ctx context.Context) error
	runs      atomic.Int32
}

func newMockTask(execFn func(ctx context.Context) error) *MockTask {
	return &MockTask{
		TaskID:    uuid.New(),
		TaskType:  "mock",
		ExecuteFn: execFn,
	}
}

func (t *MockTask) ID() uuid.UUID   { return t.TaskID }
func (t *MockTask) Type() string    { return t.TaskType }
func (t *MockTask) Payload() []byte { return []byte(`{}`) }

func (t *MockTask) Execute(ctx context.Context) error {
	t.runs.Add(1)
	if t.ExecuteFn == nil {
		return nil
	}
	return t.ExecuteFn(ctx)
}

func (t *MockTask) Runs() int {
	return int(t.runs.Load())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
