package apperr

import (
	"errors"
	"fmt"
)

// Kinds, for errors.Is matching.
var (
	ErrValidation   = errors.New("validation error")
	ErrEligibility  = errors.New("eligibility error")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrComputation  = errors.New("computation error")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// EligibilityError is a business-rule rejection carrying a human-readable reason.
type EligibilityError struct{ Reason string }

func (e *EligibilityError) Error() string { return e.Reason }

func (e *EligibilityError) Is(target error) bool { return target == ErrEligibility }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Entity, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidStateError means the operation is not valid for the entity's current lifecycle state.
type InvalidStateError struct {
	Entity string
	ID     string
	State  string
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %q in state %s", e.Op, e.Entity, e.ID, e.State)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// ComputationError flags numerically degenerate input.
type ComputationError struct{ Reason string }

func (e *ComputationError) Error() string { return "computation failed: " + e.Reason }

func (e *ComputationError) Is(target error) bool { return target == ErrComputation }

func Validation(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

func NotFound(entity, id string) error { return &NotFoundError{Entity: entity, ID: id} }

// Reason returns the user-facing reason of a taxonomy error, or err.Error() otherwise.
func Reason(err error) string {
	var (
		ve *ValidationError
		ee *EligibilityError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ee):
		return ee.Reason
	case errors.As(err, &ve):
		return ve.Error()
	default:
		return err.Error()
	}
}
