package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/redact"
	"github.com/phrazzld/lifeline-api/internal/service/matching"
)

// RespondWithJSON writes data as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// RespondWithFailure writes the uniform failure envelope
// {"success":false,"data":null,"error":{...}}.
func RespondWithFailure(w http.ResponseWriter, r *http.Request, status int, failure *matching.Failure) {
	RespondWithJSON(w, r, status, matching.Response[any]{Error: failure})
}

// RespondWithFailureAndLog writes the failure envelope and logs err, redacted,
// next to it. 5xx responses log at ERROR and everything else at DEBUG.
func RespondWithFailureAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	failure *matching.Failure,
	err error,
) {
	attrs := []slog.Attr{
		slog.String("trace_id", GetTraceID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("failure_kind", string(failure.Kind)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.FromContextOrDefault(r.Context(), slog.Default()).
		LogAttrs(r.Context(), level, "API error response", attrs...)

	RespondWithFailure(w, r, status, failure)
}
