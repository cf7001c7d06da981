package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/api/shared"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
)

var (
	errMissingParam = errors.New("is required")
	errInvalidUUID  = errors.New("must be a valid UUID")
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, errMissingParam
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, errInvalidUUID
	}
	return id, nil
}

// handlePathUUID extracts a UUID path parameter, writing a 400 response
// when it is missing or malformed.
func handlePathUUID(w http.ResponseWriter, r *http.Request, paramName string) (uuid.UUID, bool) {
	id, err := getPathUUID(r, paramName)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		invalidInput(w, r, paramName, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate reads a JSON body into v and validates it, writing a
// 400 response on failure. An empty body is accepted when optional is set.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	if err := shared.DecodeJSON(w, r, v); err != nil {
		if !(optional && errors.Is(err, shared.ErrEmptyBody)) {
			log.Debug("invalid request body", slog.String("error", err.Error()))
			invalidInput(w, r, "", "Invalid request format")
			return false
		}
	}

	if err := shared.ValidateRequest(v); err != nil {
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			invalidInput(w, r, verr.Field, verr.Reason())
		} else {
			invalidInput(w, r, "", "Invalid request")
		}
		log.Debug("request validation failed", slog.String("error", err.Error()))
		return false
	}
	return true
}
