// Package storagetest holds the behavior every AccountStore must satisfy.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage"
)

// AccountStoreSuite runs the shared AccountStore tests.
// Backends embed it and set NewStore in their own SetupTest.
type AccountStoreSuite struct {
	suite.Suite
	NewStore func() storage.AccountStore

	Store storage.AccountStore
	Ctx   context.Context
}

func (s *AccountStoreSuite) SetupTest() {
	s.Require().NotNil(s.NewStore, "NewStore must be set before SetupTest")
	s.Store = s.NewStore()
	s.Ctx = context.Background()
}

func (s *AccountStoreSuite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

func (s *AccountStoreSuite) newAccount(username string) *model.Account {
	return &model.Account{
		Username:     username,
		PasswordHash: "hash-" + username,
		Role:         model.RoleGuest,
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *AccountStoreSuite) TestCreateAssignsID() {
	account := s.newAccount("player1")

	err := s.Store.CreateAccount(s.Ctx, account)
	s.Require().NoError(err)
	s.NotZero(account.ID)
}

func (s *AccountStoreSuite) TestCreateAssignsDistinctIDs() {
	a := s.newAccount("player1")
	b := s.newAccount("player2")
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, a))
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, b))

	s.NotEqual(a.ID, b.ID)
}

func (s *AccountStoreSuite) TestGetByUsernameRoundTrip() {
	account := s.newAccount("player1")
	account.Role = model.RoleAdmin
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, account))

	got, err := s.Store.GetAccountByUsername(s.Ctx, "player1")
	s.Require().NoError(err)
	s.Equal(account.ID, got.ID)
	s.Equal("player1", got.Username)
	s.Equal("hash-player1", got.PasswordHash)
	s.Equal(model.RoleAdmin, got.Role)
}

func (s *AccountStoreSuite) TestGetByUsernameNotFound() {
	_, err := s.Store.GetAccountByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *AccountStoreSuite) TestDuplicateUsernameRejected() {
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, s.newAccount("player1")))

	dup := s.newAccount("player1")
	dup.PasswordHash = "different"
	err := s.Store.CreateAccount(s.Ctx, dup)
	s.ErrorIs(err, model.ErrDuplicateUsername)

	// Original account is untouched
	got, err := s.Store.GetAccountByUsername(s.Ctx, "player1")
	s.Require().NoError(err)
	s.Equal("hash-player1", got.PasswordHash)
}

func (s *AccountStoreSuite) TestListAccountsOrderedByID() {
	for _, name := range []string{"charlie", "alpha1", "bravo1"} {
		s.Require().NoError(s.Store.CreateAccount(s.Ctx, s.newAccount(name)))
	}

	accounts, err := s.Store.ListAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 3)
	s.Equal("charlie", accounts[0].Username)
	s.Equal("alpha1", accounts[1].Username)
	s.Equal("bravo1", accounts[2].Username)
	s.Less(accounts[0].ID, accounts[1].ID)
	s.Less(accounts[1].ID, accounts[2].ID)
}

func (s *AccountStoreSuite) TestListAccountsEmpty() {
	accounts, err := s.Store.ListAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Empty(accounts)
}
