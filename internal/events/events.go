package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types understood by the background pipeline.
const (
	// TypeForecastRetrain asks for the trainable forecaster to be refit on
	// recent request history.
	TypeForecastRetrain = "forecast_retrain"
)

// TaskRequestEvent is a request to create a background task.
type TaskRequestEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// ForecastRetrainPayload is the payload of a TypeForecastRetrain event.
// A zero HistoryDays leaves the configured training window in place.
type ForecastRetrainPayload struct {
	HistoryDays int    `json:"history_days,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// NewTaskRequestEvent creates an event of the given type with a JSON payload.
func NewTaskRequestEvent(eventType string, payload any) (*TaskRequestEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewForecastRetrainEvent creates a TypeForecastRetrain event.
func NewForecastRetrainEvent(p ForecastRetrainPayload) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TypeForecastRetrain, p)
}

// EventHandler processes events.
type EventHandler interface {
	// HandleEvent processes the given event. Handlers ignore event types
	// they do not understand.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to the registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
