package repository

import (
	"context"
	"database/sql"
	"secure-banking-api/logger"
	"secure-banking-api/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// IAccountRepository defines the contract for account database operations.
// Methods taking a *sql.Tx must run inside the caller's transaction.
type IAccountRepository interface {
	CreateAccount(ctx context.Context, tx *sql.Tx, account *model.Account) error
	GetAccountByUserID(ctx context.Context, userID int64) (*model.Account, error)
	GetAccountIDByUserID(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)
	GetAccountForUpdate(ctx context.Context, tx *sql.Tx, accountID int64) (*model.Account, error)
	UpdateAccountBalance(ctx context.Context, tx *sql.Tx, accountID int64, newBalance decimal.Decimal) (int64, error)
	GetAllAccounts(ctx context.Context) ([]*model.Account, error)
}

type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

// CreateAccount adds a new zero-balance account for account.UserID.
func (r *AccountRepository) CreateAccount(ctx context.Context, tx *sql.Tx, account *model.Account) error {
	log := logger.Log.WithField("user_id", account.UserID)
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (user_id) VALUES ($1) RETURNING id, balance, version, created_at`
	err := tx.QueryRowContext(ctx, query, account.UserID).Scan(&account.ID, &account.Balance, &account.Version, &account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("User already owns an account")
			return ErrUniqueViolation
		}
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// GetAccountByUserID is a plain read outside any transaction.
func (r *AccountRepository) GetAccountByUserID(ctx context.Context, userID int64) (*model.Account, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Debug("Executing query to get account by user ID")

	query := `SELECT id, user_id, balance, version, created_at FROM accounts WHERE user_id = $1`
	account, err := scanAccount(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get account by user ID query")
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) GetAccountIDByUserID(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Debug("Executing query to get account ID by user ID")

	var id int64
	query := `SELECT id FROM accounts WHERE user_id = $1`
	if err := tx.QueryRowContext(ctx, query, userID).Scan(&id); err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get account ID query")
		}
		return 0, err
	}
	return id, nil
}

// GetAccountForUpdate reads the account and holds its row lock until tx ends.
func (r *AccountRepository) GetAccountForUpdate(ctx context.Context, tx *sql.Tx, accountID int64) (*model.Account, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to get account for update")

	query := `SELECT id, user_id, balance, version, created_at FROM accounts WHERE id = $1 FOR UPDATE`
	account, err := scanAccount(tx.QueryRowContext(ctx, query, accountID))
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Account not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get account for update query")
		}
		return nil, err
	}
	return account, nil
}

// UpdateAccountBalance writes the new balance and returns the account's bumped version.
func (r *AccountRepository) UpdateAccountBalance(ctx context.Context, tx *sql.Tx, accountID int64, newBalance decimal.Decimal) (int64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":  accountID,
		"new_balance": newBalance.String(),
	})
	log.Info("Executing query to update account balance")

	var version int64
	query := `UPDATE accounts SET balance = $1, version = version + 1 WHERE id = $2 RETURNING version`
	if err := tx.QueryRowContext(ctx, query, newBalance, accountID).Scan(&version); err != nil {
		log.WithError(err).Error("Failed to execute update account balance query")
		return 0, err
	}
	return version, nil
}

// GetAllAccounts retrieves all accounts from the database. For admin use only.
func (r *AccountRepository) GetAllAccounts(ctx context.Context) ([]*model.Account, error) {
	log := logger.Log
	log.Info("Executing query to get all accounts")

	query := `SELECT id, user_id, balance, version, created_at FROM accounts ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for all accounts")
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func scanAccount(row scanner) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Balance, &a.Version, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
