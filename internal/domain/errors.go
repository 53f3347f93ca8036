package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrInvalidState      = errors.New("invalid state")
	ErrForbidden         = errors.New("forbidden")
)

// InsufficientStockError carries the SKU that could not cover the requested quantity.
type InsufficientStockError struct {
	ProductID   int64
	VariationID *int64
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	if e.VariationID != nil {
		return fmt.Sprintf("insufficient stock for product %d variation %d (requested: %d, available: %d)",
			e.ProductID, *e.VariationID, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for product %d (requested: %d, available: %d)",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PaymentFailedError is returned by checkout after the order has been cancelled.
type PaymentFailedError struct {
	OrderID int64
	Reason  string
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment failed for order %d: %s", e.OrderID, e.Reason)
}

func (e *PaymentFailedError) Unwrap() error { return ErrPaymentFailed }

// StorageError wraps an unexpected persistence failure. The surrounding
// transaction is always rolled back when one is returned.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
