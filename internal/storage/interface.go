package storage

import (
	"context"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
)

// AccountStore defines the interface for account persistence.
// Implementations enforce username uniqueness and assign IDs.
type AccountStore interface {
	// CreateAccount assigns account.ID and persists it.
	// Returns model.ErrDuplicateUsername if the username is taken.
	CreateAccount(ctx context.Context, account *model.Account) error
	// GetAccountByUsername returns model.ErrAccountNotFound if absent.
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	// ListAccounts returns all accounts ordered by ID.
	ListAccounts(ctx context.Context) ([]*model.Account, error)

	Close() error
}
