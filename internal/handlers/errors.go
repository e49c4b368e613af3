package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	"github.com/SscSPs/wallet_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// clientErrors are safe to echo back verbatim.
var clientErrors = []struct {
	err    error
	status int
}{
	{apperrors.ErrInvalidAmount, http.StatusBadRequest},
	{apperrors.ErrInvalidReference, http.StatusBadRequest},
	{apperrors.ErrSelfTransfer, http.StatusBadRequest},
	{apperrors.ErrValidation, http.StatusBadRequest},
	{apperrors.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{apperrors.ErrBalanceLimitExceeded, http.StatusUnprocessableEntity},
	{apperrors.ErrWalletNotFound, http.StatusNotFound},
	{apperrors.ErrSourceWalletNotFound, http.StatusNotFound},
	{apperrors.ErrDestinationWalletNotFound, http.StatusNotFound},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrReferenceConflict, http.StatusConflict},
	{apperrors.ErrDuplicate, http.StatusConflict},
	{apperrors.ErrIdentityBlacklisted, http.StatusForbidden},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
}

// statusFor maps an error onto an HTTP status and a client-facing message.
func statusFor(err error) (int, string) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			return ce.status, ce.err.Error()
		}
	}
	switch {
	case errors.Is(err, apperrors.ErrBlacklistUnavailable):
		return http.StatusServiceUnavailable, apperrors.ErrBlacklistUnavailable.Error()
	case errors.Is(err, apperrors.ErrStorage):
		return http.StatusServiceUnavailable, "Temporary storage failure, retry with the same reference"
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500 {
		return appErr.Code, appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}

// respondWithError writes the mapped status and logs server-side failures.
func respondWithError(c *gin.Context, err error, action string) {
	status, msg := statusFor(err)
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(action+" failed", slog.String("error", err.Error()), slog.Int("status", status))
	} else {
		logger.Info(action+" rejected", slog.String("reason", msg), slog.Int("status", status))
	}
	c.JSON(status, ErrorResponse{Error: msg})
}
