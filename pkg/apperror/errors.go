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

// ---- Validation (VAL) ----

func ErrInvalidAmount() *AppError {
	return New("VAL_001", "Amount must be a non-zero integer of minor units", http.StatusBadRequest)
}

func ErrInvalidReason() *AppError {
	return New("VAL_002", "A non-empty reason is required", http.StatusBadRequest)
}

func ErrInvalidCurrency(currency string) *AppError {
	return New("VAL_003", fmt.Sprintf("Unsupported currency: %s", currency), http.StatusBadRequest)
}

// Validation returns a VAL_000 error with a custom message.
func Validation(message string) *AppError {
	return New("VAL_000", message, http.StatusBadRequest)
}

// ---- Wallet lookup & state (WAL) ----

func ErrWalletNotFound() *AppError {
	return New("WAL_001", "Wallet not found", http.StatusNotFound)
}

func ErrWalletFrozen() *AppError {
	return New("WAL_002", "Wallet is frozen; debits are blocked", http.StatusConflict)
}

func ErrWalletSuspended() *AppError {
	return New("WAL_003", "Wallet is suspended", http.StatusConflict)
}

func ErrWalletNotSuspended() *AppError {
	return New("WAL_004", "Wallet is not suspended", http.StatusConflict)
}

// ---- Balance (BAL) ----

func ErrInsufficientFunds() *AppError {
	return New("BAL_001", "Insufficient funds: debit exceeds balance plus credit limit", http.StatusPaymentRequired)
}

// ---- Freeze pools (FRZ) ----

func ErrExceedsAvailableBalance() *AppError {
	return New("FRZ_001", "Freeze amount exceeds available balance", http.StatusConflict)
}

func ErrExceedsFrozenBalance() *AppError {
	return New("FRZ_002", "Unfreeze amount exceeds frozen balance", http.StatusConflict)
}

// ---- Credit limit (CRD) ----

func ErrCreditLimitBelowUsage() *AppError {
	return New("CRD_001", "Credit limit cannot be set below current usage", http.StatusConflict)
}

// ---- Concurrency (CONF) ----

func ErrConcurrentModification() *AppError {
	return New("CONF_001", "Wallet was modified concurrently; retry the operation", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
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
	return Wrap("SYS_002", "Could not lock wallet within the allowed time", http.StatusServiceUnavailable, err)
}
