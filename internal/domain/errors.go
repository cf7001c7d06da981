// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"

	"github.com/phrazzld/lifeline-api/internal/domain/geo"
)

// Common domain errors used across the application.
var (
	// ErrInvalidInput is returned when a caller supplies a value the engine cannot
	// act on (unknown blood group, out-of-range horizon, bad quantity).
	// It is usually wrapped in an *InputError naming the offending field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotTrained is returned when a trainable forecaster is asked for a
	// prediction before any model has been trained or loaded.
	ErrNotTrained = errors.New("forecast model not trained")

	// ErrUnknownCategory is returned when a prediction is requested for a blood
	// group or component the trained encoders have never seen.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInsufficientData is returned when training is attempted with too few rows.
	// The previously trained model, if any, stays in place.
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrInvalidTransition is returned when a request status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientQuantity is returned when more units are consumed than remain.
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// InputError identifies the field responsible for an ErrInvalidInput failure.
type InputError struct {
	Field  string
	Reason string
}

// Error implements the error interface for InputError.
func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

// Unwrap returns ErrInvalidInput to support errors.Is.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// NewInputError creates an InputError for the given field.
func NewInputError(field, reason string) *InputError {
	return &InputError{Field: field, Reason: reason}
}

// IsInvalidInput reports whether err is any kind of input validation failure,
// including coordinate range errors raised by the geo package.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, geo.ErrInvalidCoordinate)
}

// InvalidField extracts the offending field name from a validation failure.
// It returns an empty string when err carries no field information.
func InvalidField(err error) string {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr.Field
	}
	var coordErr *geo.CoordinateError
	if errors.As(err, &coordErr) {
		return coordErr.Field
	}
	return ""
}
