package handler

import (
	"errors"
	"net/http"
	"secure-banking-api/common"
	"secure-banking-api/service"
)

// serviceError maps service sentinel errors to API errors. Anything unrecognised
// becomes a 500 carrying fallback as its message.
func serviceError(err error, fallback string) *common.AppError {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, "Invalid credentials", err)
	case errors.Is(err, service.ErrUsernameTaken):
		return common.NewAppError(http.StatusConflict, err.Error(), err)
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrRecipientNotFound),
		errors.Is(err, service.ErrRecipientAccountNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrBalanceLimitExceeded),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrSameAccountTransfer):
		return common.NewAppError(http.StatusBadRequest, err.Error(), err)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}
