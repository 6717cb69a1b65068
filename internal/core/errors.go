package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrInvalidRate     = errors.New("invalid rate")
	ErrExternalService = errors.New("external service failed")
	ErrAlreadyPosted   = errors.New("bill already posted")
)

// ValidationError reports malformed input to a mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports a reference to an unknown customer or ledger key.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidRateError is returned when a bill is computed against a non-positive rate.
type InvalidRateError struct {
	CustomerID string
	Rate       decimal.Decimal
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("customer %q has non-positive rate %s", e.CustomerID, e.Rate)
}

func (e *InvalidRateError) Unwrap() error { return ErrInvalidRate }

// ExternalServiceError wraps a collaborator failure.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Err == nil {
		return e.Service + ": external service failed"
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExternalService}
	}
	return []error{ErrExternalService, e.Err}
}
