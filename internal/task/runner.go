package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/redact"
)

// Recorder receives task outcomes and queue depth.
type Recorder interface {
	ObserveTask(taskType, status string)
	SetQueueDepth(n int)
}

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	WorkerCount int
	QueueSize   int
	// TaskTimeout bounds a single Execute call. Zero means no limit.
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		TaskTimeout: 10 * time.Minute,
	}
}

// TaskRunner records submitted tasks, queues them and executes them on a
// worker pool.
type TaskRunner struct {
	store      TaskStore
	queue      *TaskQueue
	pool       *WorkerPool
	config     TaskRunnerConfig
	logger     *slog.Logger
	recorder   Recorder
	errHandler func(task Task, err error)
}

// RunnerOption configures a TaskRunner.
type RunnerOption func(*TaskRunner)

// WithRecorder reports task outcomes to r.
func WithRecorder(r Recorder) RunnerOption {
	return func(tr *TaskRunner) {
		tr.recorder = r
	}
}

// WithErrorHandler is called after a task fails, in addition to logging.
func WithErrorHandler(fn func(task Task, err error)) RunnerOption {
	return func(tr *TaskRunner) {
		tr.errHandler = fn
	}
}

// NewTaskRunner creates a TaskRunner. Call Start to begin processing.
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger, opts ...RunnerOption) *TaskRunner {
	if store == nil {
		panic("task store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	queue := NewTaskQueue(config.QueueSize, logger)
	r := &TaskRunner{
		store:  store,
		queue:  queue,
		pool:   NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		config: config,
		logger: logger.With(slog.String("component", "task_runner")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit records task as pending and queues it. A task that cannot be
// queued is marked failed and the queue error is returned.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.FromContextOrDefault(ctx, r.logger).Error("failed to mark rejected task",
				slog.String("task_id", task.ID().String()),
				slog.String("error", redact.Error(updateErr)))
		}
		r.observe(task, TaskStatusFailed)
		return fmt.Errorf("failed to queue task: %w", err)
	}

	if r.recorder != nil {
		r.recorder.SetQueueDepth(r.queue.Len())
	}
	return nil
}

// Status returns the stored state of a submitted task.
func (r *TaskRunner) Status(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.store.GetTask(ctx, id)
}

// Start launches the worker pool.
func (r *TaskRunner) Start() {
	r.pool.Start(r.processTask)
}

// Stop closes the queue and waits for queued tasks to finish. If ctx
// expires first, in-flight tasks are cancelled and ctx.Err is returned.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.queue.Close()

	done := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		r.pool.Abort()
		<-done
		r.logger.Warn("task runner stopped before draining the queue",
			slog.Int("abandoned", r.queue.Len()))
		return ctx.Err()
	}
}

func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	log := r.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID),
	)

	if r.recorder != nil {
		r.recorder.SetQueueDepth(r.queue.Len())
	}
	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", slog.String("error", redact.Error(err)))
		return
	}

	log.Info("processing task")
	start := time.Now()

	execCtx := logger.WithLogger(ctx, log)
	if r.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(execCtx, r.config.TaskTimeout)
		defer cancel()
	}

	// Status updates use a fresh context so that an aborted task is still recorded.
	updateCtx := context.WithoutCancel(ctx)
	if err := execute(execCtx, task); err != nil {
		log.Error("task execution failed",
			slog.String("error", redact.Error(err)),
			slog.Duration("elapsed", time.Since(start)))
		if updateErr := r.store.UpdateTaskStatus(updateCtx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed", slog.String("error", redact.Error(updateErr)))
		}
		r.observe(task, TaskStatusFailed)
		if r.errHandler != nil {
			r.errHandler(task, err)
		}
		return
	}

	log.Info("task completed successfully", slog.Duration("elapsed", time.Since(start)))
	if updateErr := r.store.UpdateTaskStatus(updateCtx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
		log.Error("failed to update task status to completed", slog.String("error", redact.Error(updateErr)))
	}
	r.observe(task, TaskStatusCompleted)
}

func (r *TaskRunner) observe(task Task, status TaskStatus) {
	if r.recorder != nil {
		r.recorder.ObserveTask(task.Type(), string(status))
	}
}

func execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return task.Execute(ctx)
}
