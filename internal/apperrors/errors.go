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
// For ledger writes this means the reference unique constraint fired.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller may not act on the target resource.
var ErrForbidden = errors.New("forbidden")

// ErrStorage indicates the storage layer failed (begin/commit, lock wait, lost connection).
// Operations failing with it were fully rolled back and are safe to retry with the same reference.
var ErrStorage = errors.New("storage failure")

// Money movement errors.
var (
	ErrInvalidAmount             = errors.New("amount must be a positive value below 100000000000000 with at most 6 decimal places")
	ErrInvalidReference          = errors.New("reference must be between 1 and 80 characters")
	ErrWalletNotFound            = errors.New("wallet not found")
	ErrSourceWalletNotFound      = errors.New("source wallet not found")
	ErrDestinationWalletNotFound = errors.New("destination wallet not found")
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrBalanceLimitExceeded      = errors.New("resulting balance exceeds the wallet limit")
	ErrSelfTransfer              = errors.New("cannot transfer to the same wallet")
	ErrReferenceConflict         = errors.New("reference already used for a different request")
)

// Identity checks performed before onboarding.
var (
	ErrIdentityBlacklisted  = errors.New("identity is blacklisted")
	ErrBlacklistUnavailable = errors.New("identity blacklist service unavailable")
)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
