// file: service/account_service.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"secure-banking-api/logger"
	"secure-banking-api/model"
	"secure-banking-api/repository"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// amountScale is the number of decimal places stored for balances and amounts.
const amountScale = 4

// maxAmount is the smallest value that no longer fits NUMERIC(19,4).
var maxAmount = decimal.New(1, 15)

// AccountService owns every balance mutation. Each mutation locks the affected account rows,
// writes the new balances and appends its transaction record in a single database transaction.
// The optional cache only ever holds committed balances.
type AccountService struct {
	db              *sql.DB
	accountRepo     repository.IAccountRepository
	transactionRepo repository.ITransactionRepository
	userRepo        repository.IUserRepository
	cache           ICacheClient
	cacheTTL        time.Duration
}

// NewAccountService wires the ledger. cache may be nil to disable balance caching.
func NewAccountService(
	db *sql.DB,
	accountRepo repository.IAccountRepository,
	transactionRepo repository.ITransactionRepository,
	userRepo repository.IUserRepository,
	cache ICacheClient,
	cacheTTL time.Duration,
) *AccountService {
	return &AccountService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
		cache:           cache,
		cacheTTL:        cacheTTL,
	}
}

// GetBalance returns the user's balance, using a cache-aside strategy when a cache is configured.
// A balance read from the database only enters the cache if no newer version is already there.
func (s *AccountService) GetBalance(ctx context.Context, user *model.User) (decimal.Decimal, error) {
	cacheKey := balanceCacheKey(user.ID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			if balance, ok := parseCachedBalance(cached); ok {
				return balance, nil
			}
		case !errors.Is(err, redis.Nil):
			logger.Log.WithError(err).WithField("key", cacheKey).Warn("Balance cache read failed")
		}
	}

	account, err := s.accountRepo.GetAccountByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, err
	}

	s.storeBalance(ctx, user.ID, account.Version, account.Balance)

	return account.Balance, nil
}

// Deposit adds amount to the user's balance and records a DEPOSIT.
func (s *AccountService) Deposit(ctx context.Context, user *model.User, amount decimal.Decimal) (*model.Account, *model.Transaction, error) {
	return s.applyToOwnAccount(ctx, user, amount, model.TransactionDeposit)
}

// Withdraw removes amount from the user's balance and records a WITHDRAW.
// The balance never goes below zero.
func (s *AccountService) Withdraw(ctx context.Context, user *model.User, amount decimal.Decimal) (*model.Account, *model.Transaction, error) {
	return s.applyToOwnAccount(ctx, user, amount, model.TransactionWithdraw)
}

func (s *AccountService) applyToOwnAccount(ctx context.Context, user *model.User, amount decimal.Decimal, kind model.TransactionType) (*model.Account, *model.Transaction, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"type":    kind,
		"amount":  amount.String(),
	})

	if err := validateAmount(amount); err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	accountID, err := s.accountRepo.GetAccountIDByUserID(ctx, tx, user.ID)
	if err != nil {
		return nil, nil, accountLookupError(err, ErrAccountNotFound)
	}
	account, err := s.accountRepo.GetAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, nil, accountLookupError(err, ErrAccountNotFound)
	}

	var newBalance decimal.Decimal
	if kind == model.TransactionWithdraw {
		if account.Balance.LessThan(amount) {
			log.WithField("balance", account.Balance.String()).Info("Withdrawal rejected for insufficient funds")
			return nil, nil, ErrInsufficientFunds
		}
		newBalance = account.Balance.Sub(amount)
	} else {
		newBalance = account.Balance.Add(amount)
		if newBalance.GreaterThanOrEqual(maxAmount) {
			return nil, nil, ErrBalanceLimitExceeded
		}
	}

	newVersion, err := s.accountRepo.UpdateAccountBalance(ctx, tx, account.ID, newBalance)
	if err != nil {
		return nil, nil, fmt.Errorf("could not update balance: %w", err)
	}

	transaction := &model.Transaction{
		Type:          kind,
		Amount:        amount,
		FromAccountID: account.ID,
	}
	if err := s.transactionRepo.CreateTransaction(ctx, tx, transaction); err != nil {
		return nil, nil, fmt.Errorf("could not create transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	account.Balance = newBalance
	account.Version = newVersion
	s.refreshBalance(ctx, user.ID, newVersion, newBalance)

	log.WithField("transaction_id", transaction.ID).Info("Balance updated")
	return account, transaction, nil
}

// Transfer moves amount from fromUser's account to the account of the user named toUsername.
// Both rows are locked in ascending id order, so opposing transfers cannot deadlock each other.
func (s *AccountService) Transfer(ctx context.Context, fromUser *model.User, toUsername string, amount decimal.Decimal) (*model.Account, *model.Transaction, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"from_user_id": fromUser.ID,
		"to_username":  toUsername,
		"amount":       amount.String(),
	})
	log.Info("Starting money transfer process")

	if err := validateAmount(amount); err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	fromID, err := s.accountRepo.GetAccountIDByUserID(ctx, tx, fromUser.ID)
	if err != nil {
		return nil, nil, accountLookupError(err, ErrAccountNotFound)
	}

	toUser, err := s.userRepo.GetUserByUsername(ctx, toUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrRecipientNotFound
		}
		return nil, nil, err
	}

	toID, err := s.accountRepo.GetAccountIDByUserID(ctx, tx, toUser.ID)
	if err != nil {
		return nil, nil, accountLookupError(err, ErrRecipientAccountNotFound)
	}

	if fromID == toID {
		return nil, nil, ErrSameAccountTransfer
	}

	firstID, secondID := fromID, toID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.accountRepo.GetAccountForUpdate(ctx, tx, firstID)
	if err != nil {
		return nil, nil, accountLookupError(err, ErrAccountNotFound)
	}
	second, err := s.accountRepo.GetAccountForUpdate(ctx, tx, secondID)
	if err != nil {
		return nil, nil, accountLookupError(err, ErrAccountNotFound)
	}
	fromAccount, toAccount := first, second
	if fromAccount.ID != fromID {
		fromAccount, toAccount = second, first
	}

	if fromAccount.Balance.LessThan(amount) {
		log.WithField("balance", fromAccount.Balance.String()).Info("Transfer rejected for insufficient funds")
		return nil, nil, ErrInsufficientFunds
	}

	newFromBalance := fromAccount.Balance.Sub(amount)
	newToBalance := toAccount.Balance.Add(amount)
	if newToBalance.GreaterThanOrEqual(maxAmount) {
		return nil, nil, ErrBalanceLimitExceeded
	}

	fromVersion, err := s.accountRepo.UpdateAccountBalance(ctx, tx, fromAccount.ID, newFromBalance)
	if err != nil {
		return nil, nil, fmt.Errorf("could not update sender balance: %w", err)
	}
	toVersion, err := s.accountRepo.UpdateAccountBalance(ctx, tx, toAccount.ID, newToBalance)
	if err != nil {
		return nil, nil, fmt.Errorf("could not update receiver balance: %w", err)
	}

	recipientID := toAccount.ID
	transaction := &model.Transaction{
		Type:          model.TransactionTransfer,
		Amount:        amount,
		FromAccountID: fromAccount.ID,
		ToAccountID:   &recipientID,
	}
	if err := s.transactionRepo.CreateTransaction(ctx, tx, transaction); err != nil {
		return nil, nil, fmt.Errorf("could not create transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	fromAccount.Balance = newFromBalance
	fromAccount.Version = fromVersion
	s.refreshBalance(ctx, fromUser.ID, fromVersion, newFromBalance)
	s.refreshBalance(ctx, toUser.ID, toVersion, newToBalance)

	log.WithField("transaction_id", transaction.ID).Info("Transaction completed successfully")
	return fromAccount, transaction, nil
}

// ListTransactions returns the history of the user's account, newest first.
func (s *AccountService) ListTransactions(ctx context.Context, user *model.User) ([]*model.Transaction, error) {
	account, err := s.accountRepo.GetAccountByUserID(ctx, user.ID)
	if err != nil {
		return nil, accountLookupError(err, ErrAccountNotFound)
	}
	return s.transactionRepo.GetTransactionsByAccountID(ctx, account.ID)
}

// ListAllAccounts reads every account straight from the database.
func (s *AccountService) ListAllAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.accountRepo.GetAllAccounts(ctx)
}

// validateAmount accepts positive amounts that NUMERIC(19,4) stores exactly.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Truncate(amountScale)) || amount.GreaterThanOrEqual(maxAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// storeBalance caches balance at version. Older versions never overwrite newer ones.
func (s *AccountService) storeBalance(ctx context.Context, userID, version int64, balance decimal.Decimal) error {
	if s.cache == nil {
		return nil
	}
	cacheKey := balanceCacheKey(userID)
	err := s.cache.Eval(ctx, storeBalanceScript, []string{cacheKey},
		version, balance.String(), s.cacheTTL.Milliseconds()).Err()
	if err != nil {
		logger.Log.WithError(err).WithField("key", cacheKey).Warn("Balance cache write failed")
	}
	return err
}

// refreshBalance caches a committed balance. It runs detached from the request so a client
// disconnect cannot leave the previous balance behind; if the write fails the entry is dropped.
func (s *AccountService) refreshBalance(ctx context.Context, userID, version int64, balance decimal.Decimal) {
	if s.cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if s.storeBalance(ctx, userID, version, balance) == nil {
		return
	}
	cacheKey := balanceCacheKey(userID)
	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", cacheKey).Warn("Balance cache invalidation failed")
	}
}

func accountLookupError(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}
