package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/events"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/service/matching"
)

// Common errors
var (
	ErrNilRetrainer = errors.New("retrainer cannot be nil")
	ErrEmptyTaskID  = errors.New("task ID cannot be empty")
)

// Retrainer refits the demand forecaster on a trailing history window.
type Retrainer interface {
	RetrainForecasterWindow(ctx context.Context, days int) matching.Response[matching.ModelSummary]
}

// ForecastRetrainTask retrains the trainable forecaster.
type ForecastRetrainTask struct {
	id        uuid.UUID
	payload   events.ForecastRetrainPayload
	retrainer Retrainer
	logger    *slog.Logger
}

var _ Task = (*ForecastRetrainTask)(nil)

// NewForecastRetrainTask creates a retrain task with the given ID.
func NewForecastRetrainTask(
	id uuid.UUID,
	payload events.ForecastRetrainPayload,
	retrainer Retrainer,
	logger *slog.Logger,
) (*ForecastRetrainTask, error) {
	if retrainer == nil {
		return nil, ErrNilRetrainer
	}
	if id == uuid.Nil {
		return nil, ErrEmptyTaskID
	}
	if payload.HistoryDays < 0 {
		return nil, fmt.Errorf("history_days must not be negative, got %d", payload.HistoryDays)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastRetrainTask{
		id:        id,
		payload:   payload,
		retrainer: retrainer,
		logger:    logger.With(slog.String("task_type", TaskTypeForecastRetrain)),
	}, nil
}

// ID returns the task's unique identifier
func (t *ForecastRetrainTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ForecastRetrainTask) Type() string {
	return TaskTypeForecastRetrain
}

// Payload returns the retrain parameters as JSON.
func (t *ForecastRetrainTask) Payload() []byte {
	data, err := json.Marshal(t.payload)
	if err != nil {
		return nil
	}
	return data
}

// Execute retrains the forecaster. Failures carry the facade's typed
// *matching.Failure.
func (t *ForecastRetrainTask) Execute(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	resp := t.retrainer.RetrainForecasterWindow(ctx, t.payload.HistoryDays)
	if !resp.Success {
		if resp.Error != nil {
			return resp.Error
		}
		return errors.New("forecaster retrain failed")
	}

	log.Info("forecaster retrained",
		slog.String("model", resp.Data.Name),
		slog.Int("version", resp.Data.Version),
		slog.Int("training_rows", resp.Data.TrainingRows),
		slog.String("requested_by", t.payload.RequestedBy))
	return nil
}
