package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.AccountStoreSuite
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStore = func() storage.AccountStore {
		store, err := New(":memory:")
		s.Require().NoError(err)
		return store
	}
	suite.Run(t, s)
}

func TestAccountsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.db")

	store, err := New(path)
	require.NoError(t, err)
	account := &model.Account{Username: "player1", PasswordHash: "h", Role: model.RoleGuest}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetAccountByUsername(context.Background(), "player1")
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)

	// The sequence continues after reopening
	next := &model.Account{Username: "player2", PasswordHash: "h", Role: model.RoleGuest}
	require.NoError(t, reopened.CreateAccount(context.Background(), next))
	require.Greater(t, next.ID, account.ID)
}

func TestNewCreatesMissingDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database", "nested", "database.db")

	store, err := New(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.CreateAccount(context.Background(), &model.Account{Username: "player1", PasswordHash: "h", Role: model.RoleGuest}))
	require.FileExists(t, path)
}
