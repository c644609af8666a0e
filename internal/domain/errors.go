package domain

import (
	"errors"
	"fmt"
	"math"
)

// Error categories. Every error returned by a job card operation wraps exactly one of these.
var (
	// ErrValidation is returned when input is missing or out of range. Nothing is applied.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity cannot be resolved. Nothing is applied.
	ErrNotFound = errors.New("not found")

	// ErrScanMismatch is returned when a scanned code exists but belongs to a different checkpoint
	ErrScanMismatch = errors.New("scanned code does not match the selected checkpoint")

	// ErrConflict is returned when the operation is not allowed in the entity's current state
	ErrConflict = errors.New("operation not allowed in current state")

	// ErrFeatureLocked is returned when a feature area is not unlocked for the job status
	ErrFeatureLocked = errors.New("feature locked for current job status")

	// ErrForbidden is returned when the acting user lacks a required permission
	ErrForbidden = errors.New("forbidden")

	// ErrPersistence is returned when the in-memory change was applied but the write failed
	ErrPersistence = errors.New("persistence failed")
)

// Specific errors, each wrapping its category
var (
	ErrJobNotFound           = fmt.Errorf("job %w", ErrNotFound)
	ErrCheckpointNotFound    = fmt.Errorf("checkpoint %w", ErrNotFound)
	ErrTaskNotFound          = fmt.Errorf("task %w", ErrNotFound)
	ErrCodeNotFound          = fmt.Errorf("scanned code %w", ErrNotFound)
	ErrInventoryItemNotFound = fmt.Errorf("inventory item %w", ErrNotFound)
	ErrLineItemNotFound      = fmt.Errorf("line item %w", ErrNotFound)
	ErrServiceNotFound       = fmt.Errorf("service %w", ErrNotFound)
	ErrClientNotFound        = fmt.Errorf("client %w", ErrNotFound)

	ErrNoTemplate       = fmt.Errorf("service has no assessment template: %w", ErrValidation)
	ErrInvalidStatus    = fmt.Errorf("unknown job status: %w", ErrValidation)
	ErrAmbiguousScan    = fmt.Errorf("scanned area matches more than one checkpoint: %w", ErrScanMismatch)
	ErrIncompleteTasks  = fmt.Errorf("checkpoint has incomplete tasks: %w", ErrConflict)
	ErrScanNotStarted   = fmt.Errorf("checkpoint has not been scanned to start: %w", ErrConflict)
	ErrCheckpointClosed = fmt.Errorf("checkpoint already scanned to end: %w", ErrConflict)
	ErrTerminalStatus   = fmt.Errorf("job is already completed or cancelled: %w", ErrConflict)
)

// ValidationError describes a single rejected field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a new validation error for field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// CheckFinite rejects NaN and infinite values of field
func CheckFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NewValidationError(field, "must be a finite number")
	}
	return nil
}

// PersistenceError reports a write that failed after the change was applied in memory
type PersistenceError struct {
	Collection string
	ID         string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s/%s: %v", e.Collection, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// NewPersistenceError wraps a store failure for collection/id
func NewPersistenceError(collection, id string, err error) error {
	return &PersistenceError{Collection: collection, ID: id, Err: err}
}
