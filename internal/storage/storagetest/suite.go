// Package storagetest holds the behaviour every AccountStorage backend must share
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/storage"
)

// AccountStorageSuite runs against whatever backend NewStorage returns
type AccountStorageSuite struct {
	suite.Suite

	// NewStorage builds a fresh, empty backend for each test
	NewStorage func() storage.AccountStorage

	storage storage.AccountStorage
	ctx     context.Context
}

func (s *AccountStorageSuite) SetupTest() {
	s.storage = s.NewStorage()
	s.ctx = context.Background()
}

func (s *AccountStorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func newAccount(name string) *model.Account {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Account{
		Username:       name,
		PasswordDigest: "DIGEST-" + name,
		Recovery: []model.RecoveryPair{
			{Question: "First pet?", Answer: "Rex"},
			{Question: "Home town?", Answer: "Springfield"},
		},
		Profile: model.Profile{
			Friends:   []string{"carol"},
			Inventory: []string{"lamp"},
			Logins:    1,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *AccountStorageSuite) TestCreateAndGetAccount() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount("Alice")))

	got, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice", got.Username)
	s.Equal("DIGEST-Alice", got.PasswordDigest)
	s.Equal([]string{"carol"}, got.Profile.Friends)
	s.Equal([]string{"lamp"}, got.Profile.Inventory)
	s.Require().Len(got.Recovery, 2)
	s.Equal("Home town?", got.Recovery[1].Question)
	s.True(got.CreatedAt.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func (s *AccountStorageSuite) TestCreateDuplicateIsCaseInsensitive() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount("Bob")))

	err := s.storage.CreateAccount(s.ctx, newAccount("bob"))
	s.ErrorIs(err, model.ErrUsernameTaken)

	got, err := s.storage.GetAccount(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal("Bob", got.Username)
}

func (s *AccountStorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *AccountStorageSuite) TestSaveAccountOverwrites() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount("Alice")))

	updated := newAccount("Alice")
	updated.PasswordDigest = "NEW"
	updated.Profile.Inventory = []string{"lamp", "key"}
	s.Require().NoError(s.storage.SaveAccount(s.ctx, updated))

	got, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("NEW", got.PasswordDigest)
	s.Equal([]string{"lamp", "key"}, got.Profile.Inventory)
}

func (s *AccountStorageSuite) TestSaveMissingAccountFails() {
	err := s.storage.SaveAccount(s.ctx, newAccount("Ghost"))
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.storage.GetAccount(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *AccountStorageSuite) TestDeleteAccount() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount("Alice")))
	s.Require().NoError(s.storage.DeleteAccount(s.ctx, "alice"))

	_, err := s.storage.GetAccount(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)

	s.NoError(s.storage.DeleteAccount(s.ctx, "alice"))

	// the name is free again
	s.NoError(s.storage.CreateAccount(s.ctx, newAccount("ALICE")))
}

func (s *AccountStorageSuite) TestListUsernames() {
	keys, err := s.storage.ListUsernames(s.ctx)
	s.Require().NoError(err)
	s.Empty(keys)

	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount("Alice")))
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount("Mary Jane")))

	keys, err = s.storage.ListUsernames(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"alice", "mary jane"}, keys)
}
