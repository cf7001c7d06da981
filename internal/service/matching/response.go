package matching

import (
	"errors"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// FailureKind tells the caller what it can do about a failed operation.
type FailureKind string

// Failure kinds returned by the facade.
const (
	KindInvalidInput        FailureKind = "invalid_input"
	KindNotTrained          FailureKind = "not_trained"
	KindUnknownCategory     FailureKind = "unknown_category"
	KindInsufficientData    FailureKind = "insufficient_data"
	KindNotFound            FailureKind = "not_found"
	KindUpstreamUnavailable FailureKind = "upstream_unavailable"
)

// Failure describes why an operation did not succeed.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

// Error implements the error interface so a Failure can travel as an error.
func (f *Failure) Error() string {
	if f.Field != "" {
		return string(f.Kind) + ": " + f.Field + ": " + f.Message
	}
	return string(f.Kind) + ": " + f.Message
}

// Response is the uniform result shape of every facade operation. An empty
// Data slice with Success set is a valid "no match" answer.
type Response[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data"`
	Error   *Failure `json:"error,omitempty"`
}

func ok[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func failed[T any](f *Failure) Response[T] {
	return Response[T]{Error: f}
}

// Classify maps an error from the core or its collaborators to a Failure.
// Anything it does not recognise is an upstream failure, and its message is
// generic so storage details never reach the caller.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var f *Failure
	switch {
	case errors.As(err, &f):
		return f
	case domain.IsInvalidInput(err):
		return &Failure{Kind: KindInvalidInput, Field: domain.InvalidField(err), Message: inputReason(err)}
	case errors.Is(err, domain.ErrNotTrained):
		return &Failure{Kind: KindNotTrained, Message: "forecast model has not been trained"}
	case errors.Is(err, domain.ErrUnknownCategory):
		return &Failure{Kind: KindUnknownCategory, Message: err.Error()}
	case errors.Is(err, domain.ErrInsufficientData):
		return &Failure{Kind: KindInsufficientData, Message: err.Error()}
	case errors.Is(err, store.ErrNotFound):
		return &Failure{Kind: KindNotFound, Message: "resource not found"}
	default:
		return &Failure{Kind: KindUpstreamUnavailable, Message: "upstream dependency unavailable"}
	}
}

func inputReason(err error) string {
	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		return inputErr.Reason
	}
	return err.Error()
}
