package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
	TransactionTransfer TransactionType = "TRANSFER"
)

// Transaction is an append-only record of a single balance mutation.
// ToAccountID is set only for transfers.
type Transaction struct {
	ID            int64           `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   *int64          `json:"to_account_id,omitempty"`
	CreatedAt     time.Time       `json:"timestamp"`
}
