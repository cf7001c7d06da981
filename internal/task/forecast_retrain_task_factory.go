package task

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/events"
)

// ForecastRetrainTaskFactory builds retrain tasks bound to one Retrainer.
type ForecastRetrainTaskFactory struct {
	retrainer Retrainer
	logger    *slog.Logger
}

// NewForecastRetrainTaskFactory creates a factory.
func NewForecastRetrainTaskFactory(retrainer Retrainer, logger *slog.Logger) *ForecastRetrainTaskFactory {
	return &ForecastRetrainTaskFactory{
		retrainer: retrainer,
		logger:    logger,
	}
}

// CreateTask creates a retrain task. id is usually the ID of the event
// that requested it, so that callers can poll for the outcome.
func (f *ForecastRetrainTaskFactory) CreateTask(
	id uuid.UUID,
	payload events.ForecastRetrainPayload,
) (*ForecastRetrainTask, error) {
	return NewForecastRetrainTask(id, payload, f.retrainer, f.logger)
}
