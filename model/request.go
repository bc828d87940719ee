// file: model/request.go

package model

import "github.com/shopspring/decimal"

// RegisterRequest defines the payload for creating a new user.
// Passwords are capped at 72 bytes, the most bcrypt will hash.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AmountRequest is the body of deposit and withdraw calls. The sign of the amount is
// checked by the ledger, not here, so that all callers get the same error.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest moves money from the caller's account to another user's account.
type TransferRequest struct {
	ToUsername string          `json:"toUsername" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
}
