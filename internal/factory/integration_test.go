package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/textworld/internal/model"
	redisstorage "github.com/mcoot/textworld/internal/storage/redis"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: two players meet, talk and trade places through the command surface
func (s *IntegrationSuite) TestTwoPlayerSession() {
	cmd := s.app.Commands

	// Step 1: create both accounts
	s.Require().Equal(model.Success, cmd.CreateAccountAndJoin(s.ctx, "Alice", "secret", nil))
	s.Require().Equal(model.Success, cmd.CreateAccountAndJoin(s.ctx, "Bob", "hunter2", nil))
	s.Equal(2, s.app.GameController.OnlineCount())

	// Step 2: they see each other
	look, err := cmd.Look(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Contains(look, "Also here: Bob.")

	// Step 3: Alice walks north and picks up the goblet
	out, err := cmd.Move(s.ctx, "Alice", 1)
	s.Require().NoError(err)
	s.Contains(out, "The Great Hall")
	out, err = cmd.Pickup(s.ctx, "Alice", "goblet")
	s.Require().NoError(err)
	s.Equal("You pick up the goblet.", out)

	// Step 4: Alice leaves and comes back with her goblet
	s.Equal(model.Success, cmd.Leave(s.ctx, "Alice"))
	s.Equal(model.BadCredentials, cmd.Join(s.ctx, "Alice", "wrong"))
	s.Require().Equal(model.Success, cmd.Join(s.ctx, "alice", "secret"))
	inv, err := cmd.Inventory(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Equal("You are carrying: goblet.", inv)

	// Step 5: shutdown persists Bob too
	s.Require().NoError(s.app.Close(s.ctx))
	s.Zero(s.app.GameController.OnlineCount())
}

func (s *IntegrationSuite) TestNewWithEachBackend() {
	mr := miniredis.RunT(s.T())
	dir := s.T().TempDir()

	configs := map[string]Config{
		StorageTypeMemory:     {},
		StorageTypeFilesystem: {StorageType: StorageTypeFilesystem, FilesystemPath: filepath.Join(dir, "accounts")},
		StorageTypeSQLite:     {StorageType: StorageTypeSQLite, SQLitePath: filepath.Join(dir, "accounts.db")},
		StorageTypeRedis: {StorageType: StorageTypeRedis, RedisConfig: &redisstorage.Config{
			URL:       "redis://" + mr.Addr(),
			KeyPrefix: "test",
		}},
	}

	for name, cfg := range configs {
		app, err := New(s.ctx, cfg)
		s.Require().NoError(err, name)

		s.Equal(model.Success, app.Commands.CreateAccountAndJoin(s.ctx, "Alice", "pw", nil), name)
		s.Equal(model.Success, app.Commands.Leave(s.ctx, "Alice"), name)
		s.Equal(model.Success, app.Commands.VerifyPassword(s.ctx, "Alice", "pw"), name)
		s.Require().NoError(app.Close(s.ctx), name)
	}
}

func (s *IntegrationSuite) TestFilesystemAccountsSurviveRestart() {
	cfg := Config{StorageType: StorageTypeFilesystem, FilesystemPath: s.T().TempDir()}

	app, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	s.Require().Equal(model.Success, app.Commands.CreateAccountAndJoin(s.ctx, "Alice", "pw", nil))
	_, err = app.Commands.PickupAll(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Require().NoError(app.Close(s.ctx))

	app, err = New(s.ctx, cfg)
	s.Require().NoError(err)
	defer func() { _ = app.Close(s.ctx) }()

	s.True(app.Accounts.Exists("alice"))
	s.Require().Equal(model.Success, app.Commands.Join(s.ctx, "Alice", "pw"))
	inv, err := app.Commands.Inventory(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Equal("You are carrying: lamp, coin.", inv)
}

func (s *IntegrationSuite) TestNewRejectsBadConfig() {
	_, err := New(s.ctx, Config{StorageType: "floppy"})
	s.Error(err)

	_, err = New(s.ctx, Config{StorageType: StorageTypeRedis})
	s.Error(err)

	_, err = New(s.ctx, Config{HashAlgorithm: "md5"})
	s.ErrorIs(err, model.ErrUnknownAlgorithm)

	_, err = New(s.ctx, Config{WorldPath: filepath.Join(s.T().TempDir(), "missing.yaml")})
	s.Error(err)
}
