package handler

import (
	"context"
	"secure-banking-api/model"
	"time"

	"github.com/shopspring/decimal"
)

// UserService is what the handlers need from the credential store.
type UserService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// LedgerService is what the handlers need from the account ledger.
type LedgerService interface {
	GetBalance(ctx context.Context, user *model.User) (decimal.Decimal, error)
	Deposit(ctx context.Context, user *model.User, amount decimal.Decimal) (*model.Account, *model.Transaction, error)
	Withdraw(ctx context.Context, user *model.User, amount decimal.Decimal) (*model.Account, *model.Transaction, error)
	Transfer(ctx context.Context, fromUser *model.User, toUsername string, amount decimal.Decimal) (*model.Account, *model.Transaction, error)
	ListTransactions(ctx context.Context, user *model.User) ([]*model.Transaction, error)
	ListAllAccounts(ctx context.Context) ([]*model.Account, error)
}

type TokenIssuer interface {
	Issue(username string, roles []string) (string, time.Time, error)
}

type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}
