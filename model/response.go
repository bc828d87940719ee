package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OperationResponse confirms a ledger mutation.
type OperationResponse struct {
	Message     string          `json:"message"`
	Balance     decimal.Decimal `json:"balance"`
	Transaction *Transaction    `json:"transaction"`
}
