package dto

import (
	"net/http"

	"github.com/flowi/backend/internal/domain/shared"
)

// Error code constants returned in the error envelope.
// Format: ERR_<DESCRIPTION>

// General error codes
const (
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeStorageUnavailable = "ERR_STORAGE_UNAVAILABLE"
)

// Request error codes
const (
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeUnsupportedCurrency = "ERR_UNSUPPORTED_CURRENCY"
	ErrCodeRequestTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeMissingOrganization = "ERR_MISSING_ORGANIZATION"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeDuplicateReference  = "ERR_DUPLICATE_REFERENCE"
	ErrCodeDuplicatePayment    = "ERR_DUPLICATE_PAYMENT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeSweepInProgress     = "ERR_SWEEP_IN_PROGRESS"
)

// Ledger and sales rule error codes
const (
	ErrCodeCurrencyMismatch = "ERR_CURRENCY_MISMATCH"
	ErrCodeOverpayment      = "ERR_OVERPAYMENT"
	ErrCodeTerminalState    = "ERR_TERMINAL_STATE"
	ErrCodeAlreadySettled   = "ERR_ALREADY_SETTLED"
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
	ErrCodeExpired          = "ERR_EXPIRED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeStorageUnavailable: http.StatusServiceUnavailable,

	// Request errors -> 400 Bad Request
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeUnsupportedCurrency: http.StatusBadRequest,
	ErrCodeMissingOrganization: http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeDuplicateReference:  http.StatusConflict,
	ErrCodeDuplicatePayment:    http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeSweepInProgress:     http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeCurrencyMismatch: http.StatusUnprocessableEntity,
	ErrCodeOverpayment:      http.StatusUnprocessableEntity,
	ErrCodeTerminalState:    http.StatusUnprocessableEntity,
	ErrCodeAlreadySettled:   http.StatusUnprocessableEntity,
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeExpired:          http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes maps domain error codes to their envelope codes
var domainCodes = map[string]string{
	shared.CodeNotFound:            ErrCodeNotFound,
	shared.CodeDuplicateReference:  ErrCodeDuplicateReference,
	shared.CodeDuplicatePayment:    ErrCodeDuplicatePayment,
	shared.CodeConcurrencyConflict: ErrCodeConcurrencyConflict,
	shared.CodeCurrencyMismatch:    ErrCodeCurrencyMismatch,
	shared.CodeTerminalState:       ErrCodeTerminalState,
	shared.CodeOverpayment:         ErrCodeOverpayment,
	shared.CodeAlreadySettled:      ErrCodeAlreadySettled,
	shared.CodeInvalidState:        ErrCodeInvalidState,
	shared.CodeExpired:             ErrCodeExpired,
	shared.CodeUnsupportedCurrency: ErrCodeUnsupportedCurrency,
	shared.CodeStorageUnavailable:  ErrCodeStorageUnavailable,
	shared.CodeInvalidInput:        ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to its envelope code.
// Codes that are already envelope codes, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if c, ok := domainCodes[code]; ok {
		return c
	}
	return code
}
