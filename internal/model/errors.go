package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrStorageFailure     = errors.New("storage unavailable")
	ErrUnauthorized       = errors.New("unauthorized")

	// Registry errors
	ErrAlreadyLoggedIn = errors.New("player is already logged in")

	// Session errors
	ErrGameInProgress  = errors.New("game is in progress")
	ErrNoActiveSession = errors.New("no game in progress")
	ErrNotParticipant  = errors.New("player is not part of the current game")
	ErrAlreadyGuessed  = errors.New("player has already guessed this game")
	ErrGuessOutOfRange = errors.New("guess out of range")
)
