package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/store"
	"github.com/phrazzld/lifeline-api/internal/task"
)

// interruptedMessage is recorded on tasks that a previous process left
// unfinished.
const interruptedMessage = "interrupted by server restart"

// PostgresTaskStore implements task.TaskStore using PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	now    func() time.Time
	logger *slog.Logger
}

var _ task.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		now:    time.Now,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// SaveTask records t as pending.
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID(), t.Type(), nullablePayload(t.Payload()), task.TaskStatusPending, now, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()))
		return store.NewStoreError("task", "save", "insert failed", MapError(err))
	}
	return nil
}

// UpdateTaskStatus moves a task to status. errorMsg is stored as given.
func (s *PostgresTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4`,
		status, errorMsg, s.now().UTC(), taskID)
	if err != nil {
		return store.NewStoreError("task", "update_status", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, fmt.Errorf("%w: %s", task.ErrTaskNotFound, taskID))
}

// GetTask returns the stored record of a task.
func (s *PostgresTaskStore) GetTask(ctx context.Context, taskID uuid.UUID) (*task.Record, error) {
	var rec task.Record
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, status, error_message, created_at, updated_at
		FROM tasks
		WHERE id = $1`,
		taskID).Scan(&rec.ID, &rec.Type, &status, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, taskID)
	}
	if err != nil {
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}
	rec.Status = task.TaskStatus(status)
	return &rec, nil
}

// FailInterrupted marks every pending or processing task as failed. It is
// called once at startup, before the runner accepts work, because the
// in-memory queue that held those tasks did not survive the restart.
func (s *PostgresTaskStore) FailInterrupted(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE status IN ($4, $5)`,
		task.TaskStatusFailed, interruptedMessage, s.now().UTC(),
		task.TaskStatusPending, task.TaskStatusProcessing)
	if err != nil {
		return 0, store.NewStoreError("task", "fail_interrupted", "update failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Warn("marked interrupted tasks as failed",
			slog.Int64("count", n))
	}
	return n, nil
}

func nullablePayload(p []byte) any {
	if len(p) == 0 {
		return nil
	}
	return p
}
