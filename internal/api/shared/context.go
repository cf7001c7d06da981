package shared

import (
	"context"
	"regexp"

	"github.com/google/uuid"
)

// ContextKey is the type of the context keys set by this package.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDHeader carries the trace ID on requests and responses.
	TraceIDHeader = "X-Trace-ID"
)

// Inbound IDs (client supplied or chi's "host/prefix-000001" request IDs)
// must match this before they reach a log line.
var inboundTraceID = regexp.MustCompile(`^[A-Za-z0-9./_-]{8,128}$`)

// NewTraceID returns a random trace ID.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID adds id to the context when it is well formed, and a fresh
// trace ID otherwise.
func WithTraceID(ctx context.Context, id string) context.Context {
	if !inboundTraceID.MatchString(id) {
		id = NewTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, id)
}

// GetTraceID retrieves the trace ID from the context, or "" if none is set.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}
