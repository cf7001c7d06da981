package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeForecastRetrain refits the trainable demand forecaster.
const TaskTypeForecastRetrain = "forecast_retrain"

// Task represents a unit of background work to be processed
type Task interface {
	ID() uuid.UUID
	Type() string
	// Payload returns the task data as JSON.
	Payload() []byte
	Execute(ctx context.Context) error
}

// Record is the stored state of a submitted task.
type Record struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Status    TaskStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskQueueReader provides read-only access to queued tasks.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter lets services enqueue tasks.
type TaskQueueWriter interface {
	// Enqueue returns ErrQueueFull or ErrQueueClosed when the task cannot be accepted.
	Enqueue(task Task) error
	Close()
}

// TaskStore records task state.
type TaskStore interface {
	// SaveTask records a new task as pending.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus moves a task to status. errorMsg is kept for failed tasks.
	// Returns ErrTaskNotFound for unknown IDs.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetTask returns the stored state of a task, or ErrTaskNotFound.
	GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error)
}
