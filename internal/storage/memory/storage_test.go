package memory

import (
	"testing"

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
	s.NewStore = func() storage.AccountStore { return New() }
	suite.Run(t, s)
}

func (s *StorageSuite) TestReturnedAccountIsACopy() {
	account := &model.Account{Username: "player1", PasswordHash: "h", Role: model.RoleGuest}
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, account))

	// Mutating the caller's value must not change the stored record
	account.Role = model.RoleAdmin

	got, err := s.Store.GetAccountByUsername(s.Ctx, "player1")
	s.Require().NoError(err)
	s.Equal(model.RoleGuest, got.Role)
}
