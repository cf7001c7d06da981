package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lifeline-api/internal/events"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/redact"
)

// Submitter accepts tasks for background execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler turns TypeForecastRetrain events into queued
// retrain tasks. The task takes the event's ID.
type TaskFactoryEventHandler struct {
	factory   *ForecastRetrainTaskFactory
	submitter Submitter
	logger    *slog.Logger
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// NewTaskFactoryEventHandler creates the handler.
func NewTaskFactoryEventHandler(
	factory *ForecastRetrainTaskFactory,
	submitter Submitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskFactoryEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With(slog.String("component", "task_factory_event_handler")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	log := logger.FromContextOrDefault(ctx, h.logger).With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))

	if event.Type != events.TypeForecastRetrain {
		log.Debug("ignoring event with unsupported type")
		return nil
	}

	var payload events.ForecastRetrainPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		log.Error("failed to unmarshal payload", slog.String("error", err.Error()))
		return err
	}

	task, err := h.factory.CreateTask(event.ID, payload)
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		log.Error("failed to submit task", slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.Info("task created and submitted",
		slog.String("task_id", task.ID().String()),
		slog.Int("history_days", payload.HistoryDays))
	return nil
}
