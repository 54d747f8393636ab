package order

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError marks a malformed or empty request. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError marks a referenced medicine or order that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StockShortfall describes one medicine whose stock cannot cover the
// requested quantity.
type StockShortfall struct {
	MedicineID uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Available  int       `json:"available"`
	Requested  int       `json:"requested"`
}

// InsufficientStockError carries every shortfall in the request, not just
// the first, so the caller can correct the whole cart at once.
type InsufficientStockError struct {
	Items []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d medicine(s)", len(e.Items))
}

// AuthorizationError marks a caller who is neither the owner nor an admin.
// The message never describes the order's contents.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// InvalidStateError marks an operation not permitted in the order's current
// status.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// PersistenceError wraps a transaction or storage failure. The transaction
// has already been rolled back when one of these surfaces.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence failure: " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// wrapPersistence passes taxonomy errors through untouched and wraps
// everything else as a PersistenceError.
func wrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *ValidationError, *NotFoundError, *InsufficientStockError, *AuthorizationError, *InvalidStateError, *PersistenceError:
		return err
	}
	return &PersistenceError{Err: err}
}
