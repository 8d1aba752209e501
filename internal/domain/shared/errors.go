package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context
const (
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicateReference  = "DUPLICATE_REFERENCE"
	CodeCurrencyMismatch    = "CURRENCY_MISMATCH"
	CodeTerminalState       = "TERMINAL_STATE"
	CodeOverpayment         = "OVERPAYMENT"
	CodeAlreadySettled      = "ALREADY_SETTLED"
	CodeInvalidState        = "INVALID_STATE"
	CodeExpired             = "EXPIRED"
	CodeUnsupportedCurrency = "UNSUPPORTED_CURRENCY"
	CodeStorageUnavailable  = "STORAGE_UNAVAILABLE"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeDuplicatePayment    = "DUPLICATE_PAYMENT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code.
// This lets callers match a detailed error against the package sentinels
// with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrDuplicateReference  = NewDomainError(CodeDuplicateReference, "Reference already exists for this kind")
	ErrCurrencyMismatch    = NewDomainError(CodeCurrencyMismatch, "Currencies do not match")
	ErrTerminalState       = NewDomainError(CodeTerminalState, "Entry is already paid or cancelled")
	ErrOverpayment         = NewDomainError(CodeOverpayment, "Payment exceeds outstanding balance")
	ErrAlreadySettled      = NewDomainError(CodeAlreadySettled, "Entry has payments applied")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrExpired             = NewDomainError(CodeExpired, "Validity period has elapsed")
	ErrUnsupportedCurrency = NewDomainError(CodeUnsupportedCurrency, "Currency is not supported")
	ErrStorageUnavailable  = NewDomainError(CodeStorageUnavailable, "Storage is unavailable")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrDuplicatePayment    = NewDomainError(CodeDuplicatePayment, "Payment with this idempotency key was already applied")
)

// WrapStorageError marks err as a transient storage failure.
// Domain errors pass through untouched.
func WrapStorageError(err error, op string) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return &DomainError{
		Code:    CodeStorageUnavailable,
		Message: op,
		cause:   err,
	}
}

// ErrorCode extracts the domain error code from err, or "" when err is not a DomainError
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
