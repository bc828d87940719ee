package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"secure-banking-api/logger"
	"secure-banking-api/model"
	"secure-banking-api/repository"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
)

// UserService handles registration, credential checks and user lookup.
type UserService struct {
	db          *sql.DB
	userRepo    repository.IUserRepository
	accountRepo repository.IAccountRepository
	hasher      *PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, userRepo repository.IUserRepository, accountRepo repository.IAccountRepository, hasher *PasswordHasher) *UserService {
	return &UserService{
		db:          db,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		hasher:      hasher,
	}
}

// Register creates a USER-role user together with its zero-balance account.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	return s.RegisterWithRole(ctx, username, password, model.RoleUser)
}

// RegisterWithRole creates a user with the given role. The user row and its account are written
// in one transaction, and the account is only created if the user does not already own one.
func (s *UserService) RegisterWithRole(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
	username = strings.TrimSpace(username)
	log := logger.Log.WithField("username", username)

	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, ErrInvalidUsername
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	_, err := s.userRepo.GetUserByUsername(ctx, username)
	if err == nil {
		log.Info("Registration rejected, username already exists")
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("could not check username: %w", err)
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	_, err = s.accountRepo.GetAccountIDByUserID(ctx, tx, user.ID)
	switch {
	case err == nil:
		log.Warn("User already owns an account, skipping account creation")
	case errors.Is(err, sql.ErrNoRows):
		if err := s.accountRepo.CreateAccount(ctx, tx, &model.Account{UserID: user.ID}); err != nil {
			return nil, fmt.Errorf("could not create account: %w", err)
		}
	default:
		return nil, fmt.Errorf("could not check existing account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Authenticate returns the user when password matches its stored hash.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	if !s.hasher.CheckPasswordHash(password, user.PasswordHash) {
		logger.Log.WithField("username", user.Username).Info("Password mismatch")
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByUsername resolves an authenticated identity to its stored user.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user, ordered by id.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.GetAllUsers(ctx)
}
