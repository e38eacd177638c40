package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrTransactionAborted wraps infrastructure failures inside the
	// creation transaction. Nothing written before the failure survives.
	ErrTransactionAborted = errors.New("transaction aborted")

	ErrProductNotFound = errors.New("product not found")
)

// ValidationError reports a request rejected before any write happened.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", e.Field, e.Tag)
}

// MaterialNotFoundError means an ingredient referenced a raw material that
// does not resolve inside the creation transaction (missing, wrong kind, or
// owned by another account).
type MaterialNotFoundError struct {
	MaterialID uuid.UUID
}

func (e *MaterialNotFoundError) Error() string {
	return fmt.Sprintf("raw material %s not found", e.MaterialID)
}

// InsufficientStockError aborts the whole creation; it names the first
// ingredient (in bill-of-materials order) whose stock cannot cover the
// required amount.
type InsufficientStockError struct {
	MaterialID   uuid.UUID
	MaterialName string
	Required     float64
	Available    float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (needed: %g, available: %g)",
		e.MaterialName, e.Required, e.Available)
}
