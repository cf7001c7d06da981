package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/lifeline-api/internal/domain"
)

// ServiceError wraps collaborator failures with the service and operation
// that observed them. Callers still reach the root cause with errors.Is/As.
type ServiceError struct {
	// Service is the component name (e.g., "supply_search", "donor_matcher")
	Service string
	// Operation is the operation that failed (e.g., "search", "train")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with service context. Domain sentinel errors
// (invalid input, not trained, unknown category, insufficient data) are
// returned unchanged because callers act on them directly.
func NewServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func isDomainError(err error) bool {
	return domain.IsInvalidInput(err) ||
		errors.Is(err, domain.ErrNotTrained) ||
		errors.Is(err, domain.ErrUnknownCategory) ||
		errors.Is(err, domain.ErrInsufficientData)
}
