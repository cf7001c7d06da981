package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/lifeline-api/internal/api/shared"
	"github.com/phrazzld/lifeline-api/internal/service/matching"
	"github.com/phrazzld/lifeline-api/internal/task"
)

// StatusForFailure maps a facade failure kind to an HTTP status code.
func StatusForFailure(kind matching.FailureKind) int {
	switch kind {
	case matching.KindInvalidInput:
		return http.StatusBadRequest
	case matching.KindNotFound:
		return http.StatusNotFound
	case matching.KindNotTrained:
		return http.StatusConflict
	case matching.KindUnknownCategory, matching.KindInsufficientData:
		return http.StatusUnprocessableEntity
	case matching.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToStatusCode maps errors that do not come out of the facade, such
// as task pipeline errors, to HTTP status codes. Facade failures carried as
// errors keep their own mapping.
func MapErrorToStatusCode(err error) int {
	var failure *matching.Failure
	switch {
	case errors.As(err, &failure):
		return StatusForFailure(failure.Kind)
	case errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, task.ErrQueueFull), errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	var failure *matching.Failure
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.As(err, &failure):
		return failure.Message
	case errors.Is(err, task.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, task.ErrQueueFull):
		return "Too many pending tasks, try again later"
	case errors.Is(err, task.ErrQueueClosed):
		return "Server is shutting down"
	default:
		return "An unexpected error occurred"
	}
}

// failureFor turns err into the Failure written to the client.
func failureFor(err error) *matching.Failure {
	var failure *matching.Failure
	if errors.As(err, &failure) {
		return failure
	}

	kind := matching.KindUpstreamUnavailable
	if errors.Is(err, task.ErrTaskNotFound) {
		kind = matching.KindNotFound
	}
	return &matching.Failure{Kind: kind, Message: GetSafeErrorMessage(err)}
}

// HandleAPIError writes err as a failure envelope and logs the original.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithFailureAndLog(w, r, MapErrorToStatusCode(err), failureFor(err), err)
}

// writeResponse writes a facade response with the status its outcome maps to.
func writeResponse[T any](w http.ResponseWriter, r *http.Request, resp matching.Response[T]) {
	if resp.Error != nil {
		shared.RespondWithFailureAndLog(w, r, StatusForFailure(resp.Error.Kind), resp.Error, resp.Error)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// invalidInput writes a 400 failure naming field.
func invalidInput(w http.ResponseWriter, r *http.Request, field, message string) {
	shared.RespondWithFailure(w, r, http.StatusBadRequest, &matching.Failure{
		Kind:    matching.KindInvalidInput,
		Field:   field,
		Message: message,
	})
}
