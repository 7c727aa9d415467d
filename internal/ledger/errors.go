package ledger

import (
	"errors"
	"fmt"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError is the validation failure of a usage or loss whose
// magnitude exceeds the quantity on hand. errors.As also matches it as a
// *ValidationError.
type InsufficientStockError struct {
	ItemID    string
	Requested decimal.Decimal
	Available decimal.Decimal
	Unit      models.Unit
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %s %s, available %s %s",
		e.Requested.String(), e.Unit, e.Available.String(), e.Unit)
}

func (e *InsufficientStockError) Unwrap() error {
	return &ValidationError{Field: "quantity", Message: "insufficient stock"}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError means another writer got to the item first. The caller may
// retry against fresh state.
type ConflictError struct {
	ItemID string
	Reason string
	Err    error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("inventory item %s: %s", e.ItemID, e.Reason)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// PersistenceError wraps storage failures. Nothing was committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsInsufficientStock(err error) bool {
	var s *InsufficientStockError
	return errors.As(err, &s)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// isLedgerError reports whether err already belongs to the taxonomy above.
func isLedgerError(err error) bool {
	var p *PersistenceError
	return IsValidation(err) || IsNotFound(err) || IsConflict(err) || errors.As(err, &p)
}
