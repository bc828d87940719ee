package repository

import (
	"context"
	"database/sql"
	"regexp"
	"secure-banking-api/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAccount(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)
	insert := regexp.QuoteMeta(`INSERT INTO accounts (user_id) VALUES ($1) RETURNING id, balance, version, created_at`)

	t.Run("starts at zero", func(t *testing.T) {
		dbMock.ExpectBegin()
		dbMock.ExpectQuery(insert).WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "balance", "version", "created_at"}).AddRow(int64(9), "0.0000", int64(0), time.Now()))
		dbMock.ExpectCommit()

		tx, err := db.Begin()
		require.NoError(t, err)
		account := &model.Account{UserID: 4}
		require.NoError(t, repo.CreateAccount(context.Background(), tx, account))
		require.NoError(t, tx.Commit())

		assert.Equal(t, int64(9), account.ID)
		assert.True(t, account.Balance.IsZero())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("second account for the same user", func(t *testing.T) {
		dbMock.ExpectBegin()
		dbMock.ExpectQuery(insert).WithArgs(int64(4)).WillReturnError(&pq.Error{Code: "23505"})
		dbMock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		err = repo.CreateAccount(context.Background(), tx, &model.Account{UserID: 4})
		require.NoError(t, tx.Rollback())

		assert.ErrorIs(t, err, ErrUniqueViolation)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAccountRepository_LockAndUpdate(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)
	ctx := context.Background()

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, balance, version, created_at FROM accounts WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "version", "created_at"}).AddRow(int64(3), int64(1), "100.5000", int64(6), time.Now()))
	dbMock.ExpectQuery(regexp.QuoteMeta(`UPDATE accounts SET balance = $1, version = version + 1 WHERE id = $2 RETURNING version`)).
		WithArgs("70.5", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(7)))
	dbMock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	account, err := repo.GetAccountForUpdate(ctx, tx, 3)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("100.5")))
	assert.Equal(t, int64(6), account.Version)

	version, err := repo.UpdateAccountBalance(ctx, tx, 3, account.Balance.Sub(decimal.NewFromInt(30)))
	require.NoError(t, err)
	assert.Equal(t, int64(7), version)
	require.NoError(t, tx.Commit())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAccountRepository_GetAccountIDByUserID_NotFound(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM accounts WHERE user_id = $1`)).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)
	dbMock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = repo.GetAccountIDByUserID(context.Background(), tx, 42)
	require.NoError(t, tx.Rollback())

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
