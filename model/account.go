package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, which is what API clients send and expect back.
	decimal.MarshalJSONWithoutQuotes = true
}

// Account holds a user's balance. Version increases by one with every balance update
// and orders cached balances.
type Account struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}
