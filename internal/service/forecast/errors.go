package forecast

import "fmt"

// TrainingError reports a training run that failed after input validation.
// The previously published model stays in place.
type TrainingError struct {
	// Stage is "fit" or "persist"
	Stage string
	Rows  int
	Err   error
}

// Error implements the error interface for TrainingError.
func (e *TrainingError) Error() string {
	return fmt.Sprintf("forecast training failed at %s with %d rows: %v", e.Stage, e.Rows, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TrainingError) Unwrap() error {
	return e.Err
}
