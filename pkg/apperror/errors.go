package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsServerFault reports whether the error is the server's fault (5xx).
func (e *AppError) IsServerFault() bool {
	return e.HTTPStatus >= http.StatusInternalServerError
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Business Logic (WAL) ----

// Validation returns a WAL_001 error carrying the violation detail.
func Validation(message string) *AppError {
	return New("WAL_001", message, http.StatusBadRequest)
}

// ValidationWrap is Validation with the underlying cause attached.
func ValidationWrap(message string, err error) *AppError {
	return Wrap("WAL_001", message, http.StatusBadRequest, err)
}

func ErrWalletNotFound() *AppError {
	return New("WAL_002", "Wallet Not Found", http.StatusNotFound)
}

func ErrInvalidOperationKind() *AppError {
	return New("WAL_003", "Invalid Operation Type", http.StatusBadRequest)
}

// ErrInsufficientFunds carries a fixed message; clients match on it verbatim.
func ErrInsufficientFunds() *AppError {
	return New("WAL_004", "Insufficient funds", http.StatusBadRequest)
}

func ErrRouteNotFound() *AppError {
	return New("WAL_005", "Not Found", http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

func ErrDataIntegrity(err error) *AppError {
	return Wrap("SYS_003", "Data integrity violation", http.StatusInternalServerError, err)
}

func ErrShuttingDown() *AppError {
	return New("SYS_004", "Server is shutting down", http.StatusServiceUnavailable)
}
