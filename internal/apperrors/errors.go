package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrCustomerNotFound indicates that the customer referenced by a ledger operation does not exist.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrOutOfStock indicates that a sale was attempted for a brand with no inventory record.
var ErrOutOfStock = errors.New("out of stock")

// ErrMalformedRecord indicates that a stored transaction record is missing fields
// required to process it (e.g., a reversal target without a customer id).
var ErrMalformedRecord = errors.New("malformed transaction record")

// ErrStoreConflict indicates that the ledger store exhausted its retry budget on
// conflicting concurrent commits. The operation had no effect and may be retried.
var ErrStoreConflict = errors.New("store conflict, retry the operation")

// InsufficientStockError reports a sale request that exceeds the units on hand.
// The exact quantities are part of the error so the operator knows why the sale
// was rejected.
type InsufficientStockError struct {
	Brand     string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.Brand, e.Available, e.Requested)
}

// NewInsufficientStockError creates an InsufficientStockError for the given brand and quantities.
func NewInsufficientStockError(brand string, available, requested int64) *InsufficientStockError {
	return &InsufficientStockError{Brand: brand, Available: available, Requested: requested}
}

// AppError wraps a lower-level error with an application status code and message.
// Used primarily by the repository layer.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
