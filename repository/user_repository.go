package repository

import (
	"context"
	"database/sql"
	"secure-banking-api/logger"
	"secure-banking-api/model"

	"github.com/sirupsen/logrus"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(ctx context.Context, tx *sql.Tx, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]*model.User, error)
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser inserts user inside tx and fills in its ID and creation time.
// A duplicate username yields ErrUniqueViolation.
func (r *UserRepository) CreateUser(ctx context.Context, tx *sql.Tx, user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"username": user.Username,
		"role":     user.Role,
	})
	log.Info("Executing query to create a new user")

	query := `INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("Username already taken")
			return ErrUniqueViolation
		}
		log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	return nil
}

// GetUserByUsername returns sql.ErrNoRows when no user has that name.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	log := logger.Log.WithField("username", username)
	log.Debug("Executing query to get user by username")

	query := `SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get user by username query")
		}
		return nil, err
	}
	return user, nil
}

// GetAllUsers retrieves every user. For admin use only.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*model.User, error) {
	log := logger.Log
	log.Info("Executing query to get all users")

	query := `SELECT id, username, password_hash, role, created_at FROM users ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for all users")
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan user row")
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
