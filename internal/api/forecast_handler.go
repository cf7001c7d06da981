package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/api/shared"
	"github.com/phrazzld/lifeline-api/internal/events"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/redact"
	"github.com/phrazzld/lifeline-api/internal/service/forecast"
	"github.com/phrazzld/lifeline-api/internal/service/matching"
	"github.com/phrazzld/lifeline-api/internal/task"
)

// ForecastService is the part of the facade served by ForecastHandler.
type ForecastService interface {
	PredictDemand(ctx context.Context, req matching.DemandRequest) matching.Response[forecast.Prediction]
	CanRetrain() bool
}

// TaskStatusReader looks up submitted tasks.
type TaskStatusReader interface {
	Status(ctx context.Context, id uuid.UUID) (*task.Record, error)
}

var (
	_ ForecastService  = (*matching.Facade)(nil)
	_ TaskStatusReader = (*task.TaskRunner)(nil)
)

// ForecastHandler serves demand prediction and background retraining.
type ForecastHandler struct {
	service ForecastService
	emitter events.EventEmitter
	tasks   TaskStatusReader
	logger  *slog.Logger
}

// NewForecastHandler creates a ForecastHandler.
func NewForecastHandler(
	service ForecastService,
	emitter events.EventEmitter,
	tasks TaskStatusReader,
	logger *slog.Logger,
) *ForecastHandler {
	switch {
	case service == nil:
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("forecast service cannot be nil")
	case emitter == nil:
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("event emitter cannot be nil")
	case tasks == nil:
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("task status reader cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastHandler{
		service: service,
		emitter: emitter,
		tasks:   tasks,
		logger:  logger.With(slog.String("component", "forecast_handler")),
	}
}

// PredictDemand handles POST /api/forecast/demand.
func (h *ForecastHandler) PredictDemand(w http.ResponseWriter, r *http.Request) {
	var req DemandForecastRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	writeResponse(w, r, h.service.PredictDemand(r.Context(), req.toFacade()))
}

// Retrain handles POST /api/forecast/train. The body is optional. The
// retrain runs in the background and the response carries the task ID to
// poll at /api/tasks/{id}.
func (h *ForecastHandler) Retrain(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RetrainRequest
	if !decodeAndValidate(w, r, &req, true) {
		return
	}

	if !h.service.CanRetrain() {
		shared.RespondWithFailure(w, r, http.StatusConflict, &matching.Failure{
			Kind:    matching.KindNotTrained,
			Message: "the configured forecaster cannot be trained",
		})
		return
	}

	event, err := events.NewForecastRetrainEvent(events.ForecastRetrainPayload{
		HistoryDays: req.HistoryDays,
		RequestedBy: req.RequestedBy,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		log.Warn("failed to schedule forecaster retrain",
			slog.String("event_id", event.ID.String()),
			slog.String("error", redact.Error(err)))
		HandleAPIError(w, r, err)
		return
	}

	log.Info("forecaster retrain scheduled",
		slog.String("task_id", event.ID.String()),
		slog.Int("history_days", req.HistoryDays))
	shared.RespondWithJSON(w, r, http.StatusAccepted, matching.Response[TaskAcceptedResponse]{
		Success: true,
		Data: TaskAcceptedResponse{
			TaskID: event.ID.String(),
			Status: string(task.TaskStatusPending),
		},
	})
}

// TaskStatus handles GET /api/tasks/{id}.
func (h *ForecastHandler) TaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	rec, err := h.tasks.Status(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, matching.Response[*task.Record]{
		Success: true,
		Data:    rec,
	})
}
