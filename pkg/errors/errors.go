package errors

import "errors"

// Auth & users
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserDisabled       = errors.New("user account is disabled")
)

// Money movement
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Games
var (
	ErrGameNotFound     = errors.New("game not found")
	ErrNotYourGame      = errors.New("game belongs to another user")
	ErrInvalidGameState = errors.New("game is not in playing state")
	ErrInvalidBet       = errors.New("invalid bet")
	ErrAlreadyDrawn     = errors.New("cards already drawn")
)
