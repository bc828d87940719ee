package repository

import (
	"context"
	"database/sql"
	"secure-banking-api/logger"
	"secure-banking-api/model"

	"github.com/sirupsen/logrus"
)

// ITransactionRepository defines the contract for transaction database operations.
type ITransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *sql.Tx, transaction *model.Transaction) error
	GetTransactionsByAccountID(ctx context.Context, accountID int64) ([]*model.Transaction, error)
}

// TransactionRepository implements ITransactionRepository.
type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

func (r *TransactionRepository) CreateTransaction(ctx context.Context, tx *sql.Tx, transaction *model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"type":            transaction.Type,
		"from_account_id": transaction.FromAccountID,
		"to_account_id":   transaction.ToAccountID,
		"amount":          transaction.Amount.String(),
	})
	log.Info("Executing query to create a new transaction")

	var toAccountID sql.NullInt64
	if transaction.ToAccountID != nil {
		toAccountID = sql.NullInt64{Int64: *transaction.ToAccountID, Valid: true}
	}

	query := `INSERT INTO transactions (type, amount, from_account_id, to_account_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, transaction.Type, transaction.Amount, transaction.FromAccountID, toAccountID).
		Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create transaction query")
		return err
	}
	return nil
}

// GetTransactionsByAccountID retrieves all transactions touching an account, newest first.
func (r *TransactionRepository) GetTransactionsByAccountID(ctx context.Context, accountID int64) ([]*model.Transaction, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to get transactions by account ID")

	query := `
		SELECT id, type, amount, from_account_id, to_account_id, created_at
		FROM transactions
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for transactions by account ID")
		return nil, err
	}
	defer rows.Close()

	transactions := []*model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var toAccountID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.FromAccountID, &toAccountID, &t.CreatedAt); err != nil {
			log.WithError(err).Error("Failed to scan transaction row")
			return nil, err
		}
		if toAccountID.Valid {
			id := toAccountID.Int64
			t.ToAccountID = &id
		}
		transactions = append(transactions, &t)
	}

	return transactions, rows.Err()
}
