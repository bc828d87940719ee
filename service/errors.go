package service

import "errors"

var (
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrInvalidToken             = errors.New("invalid or expired token")
	ErrUsernameTaken            = errors.New("username already exists")
	ErrInvalidRole              = errors.New("invalid role specified")
	ErrUserNotFound             = errors.New("user not found")
	ErrAccountNotFound          = errors.New("account not found")
	ErrRecipientNotFound        = errors.New("recipient not found")
	ErrRecipientAccountNotFound = errors.New("recipient account not found")
	ErrSameAccountTransfer      = errors.New("cannot transfer money to the same account")
	ErrInvalidAmount            = errors.New("amount must be greater than zero, below 1000000000000000 and have at most 4 decimal places")
	ErrBalanceLimitExceeded     = errors.New("resulting balance exceeds the maximum account balance")
	ErrInvalidUsername          = errors.New("username must be between 3 and 50 characters")
	ErrInsufficientFunds        = errors.New("insufficient funds")
)
