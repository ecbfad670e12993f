package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/textworld/internal/dependencies/mocks"
	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/services/account"
	"github.com/mcoot/textworld/internal/services/game"
	"github.com/mcoot/textworld/internal/services/hasher"
	"github.com/mcoot/textworld/internal/storage/memory"
	"github.com/mcoot/textworld/internal/testutil"
	"github.com/mcoot/textworld/internal/world"
)

type brokenHasher struct{}

func (brokenHasher) Digest(string) (string, error) {
	return "", errors.New("entropy exhausted")
}

type FacadeSuite struct {
	suite.Suite
	storage *memory.Storage
	game    *game.Controller
	facade  *Facade
	ctx     context.Context
}

func TestFacadeSuite(t *testing.T) {
	suite.Run(t, new(FacadeSuite))
}

func (s *FacadeSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	accounts, err := account.New(s.ctx, s.storage, clk, testutil.NopLogger())
	s.Require().NoError(err)
	graph, err := world.Default()
	s.Require().NoError(err)

	s.game = game.NewController(game.DefaultConfig(), accounts, graph, clk, mocks.NewMockIDs(), testutil.NopLogger())
	s.facade = New(hasher.SHA256{}, s.game, testutil.NopLogger())
}

func (s *FacadeSuite) TestOnlyDigestIsStored() {
	s.Equal(model.Success, s.facade.CreateAccountAndJoin(s.ctx, "Alice", "password", nil))

	stored, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("5E884898DA28047151D0E56F8DC6292773603D0D6AABBDD62A11EF721D1542D8", stored.PasswordDigest)
}

func (s *FacadeSuite) TestResponseCodes() {
	s.Equal(model.Success, s.facade.CreateAccountAndJoin(s.ctx, "Alice", "pw", nil))
	s.Equal(model.UsernameTaken, s.facade.CreateAccountAndJoin(s.ctx, "alice", "pw", nil))
	s.Equal(model.BadUsernameFormat, s.facade.CreateAccountAndJoin(s.ctx, "al!ce", "pw", nil))
	s.Equal(model.UsernameTaken, s.facade.Join(s.ctx, "Alice", "pw"))

	s.Equal(model.Success, s.facade.Leave(s.ctx, "Alice"))
	s.Equal(model.NotFound, s.facade.Leave(s.ctx, "Alice"))
	s.Equal(model.BadCredentials, s.facade.Join(s.ctx, "Alice", "nope"))
	s.Equal(model.NotFound, s.facade.Join(s.ctx, "Bob", "pw"))
	s.Equal(model.Success, s.facade.Join(s.ctx, "Alice", "pw"))

	s.Equal(model.Success, s.facade.Heartbeat(s.ctx, "Alice"))
	s.Equal(model.NotFound, s.facade.Heartbeat(s.ctx, "Bob"))
	s.Equal(model.NotFound, s.facade.AddFriend(s.ctx, "Alice", "Bob"))
	s.Equal(model.NotFound, s.facade.RemoveFriend(s.ctx, "Alice", "Bob"))
}

func (s *FacadeSuite) TestPasswordRoundTrip() {
	s.Require().Equal(model.Success, s.facade.CreateAccountAndJoin(s.ctx, "Alice", "old", nil))

	s.Equal(model.Success, s.facade.ResetPassword(s.ctx, "Alice", "new"))
	s.Equal(model.Success, s.facade.VerifyPassword(s.ctx, "Alice", "new"))
	s.Equal(model.BadCredentials, s.facade.VerifyPassword(s.ctx, "Alice", "old"))
}

func (s *FacadeSuite) TestHashFailureIsUnknownFailure() {
	s.facade = New(brokenHasher{}, s.game, testutil.NopLogger())

	s.Equal(model.UnknownFailure, s.facade.CreateAccountAndJoin(s.ctx, "Alice", "pw", nil))
	s.Equal(model.UnknownFailure, s.facade.VerifyPassword(s.ctx, "Alice", "pw"))
	s.Zero(s.game.OnlineCount())
}

func (s *FacadeSuite) TestGameplayPassesThrough() {
	s.Require().Equal(model.Success, s.facade.CreateAccountAndJoin(s.ctx, "Alice", "pw", nil))

	out, err := s.facade.Pickup(s.ctx, "Alice", "coin")
	s.Require().NoError(err)
	s.Equal("You pick up the coin.", out)

	_, err = s.facade.Look(s.ctx, "Bob")
	s.ErrorIs(err, model.ErrSessionNotFound)

	s.Equal(model.Success, s.facade.DeleteAccount(s.ctx, "Alice"))
	s.Equal(model.NotFound, s.facade.DeleteAccount(s.ctx, "Alice"))
}
