package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/textworld/internal/dependencies/mocks"
	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/storage/memory"
	"github.com/mcoot/textworld/internal/testutil"
)

// flakyStorage writes the account and then reports a failure, leaving partial state behind
type flakyStorage struct {
	*memory.Storage
	failCreate bool
	failSave   bool
}

func (f *flakyStorage) CreateAccount(ctx context.Context, a *model.Account) error {
	if err := f.Storage.CreateAccount(ctx, a); err != nil {
		return err
	}
	if f.failCreate {
		return errors.New("disk full")
	}
	return nil
}

func (f *flakyStorage) SaveAccount(ctx context.Context, a *model.Account) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.Storage.SaveAccount(ctx, a)
}

type ServiceSuite struct {
	suite.Suite
	storage *flakyStorage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = &flakyStorage{Storage: memory.New()}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	var err error
	s.service, err = New(s.ctx, s.storage, s.clock, testutil.NopLogger())
	s.Require().NoError(err)
}

var recovery = []model.RecoveryPair{
	{Question: "First pet?", Answer: "Rex"},
	{Question: "Home town?", Answer: "Springfield"},
}

// Create tests

func (s *ServiceSuite) TestCreateSucceeds() {
	acct, err := s.service.Create(s.ctx, "Alice", "D1", recovery)
	s.Require().NoError(err)

	s.Equal("Alice", acct.Username)
	s.Equal(s.clock.Now(), acct.CreatedAt)
	s.True(s.service.Exists("alice"))
	s.Equal(1, s.service.Count())

	stored, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("D1", stored.PasswordDigest)
}

func (s *ServiceSuite) TestCreateIsCaseInsensitive() {
	_, err := s.service.Create(s.ctx, "Bob", "D", nil)
	s.Require().NoError(err)

	_, err = s.service.Create(s.ctx, "bob", "D", nil)
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestCreateRejectsBadFormat() {
	for _, name := range []string{"", "bob!", "../etc", "tab\tname", "ünicode"} {
		_, err := s.service.Create(s.ctx, name, "D", nil)
		s.ErrorIs(err, model.ErrBadUsernameFormat, name)
		s.False(s.service.Exists(name))
	}

	_, err := s.service.Create(s.ctx, "Mary Jane 2", "D", nil)
	s.NoError(err)
}

func (s *ServiceSuite) TestCreateRollsBackOnStorageFailure() {
	s.storage.failCreate = true

	_, err := s.service.Create(s.ctx, "Alice", "D", nil)
	s.ErrorIs(err, model.ErrInternal)
	s.False(s.service.Exists("Alice"))

	_, err = s.storage.GetAccount(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)

	s.storage.failCreate = false
	_, err = s.service.Create(s.ctx, "Alice", "D", nil)
	s.NoError(err)
}

func (s *ServiceSuite) TestConcurrentCreateHasOneWinner() {
	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.service.Create(s.ctx, "Same", "D", nil)
		}()
	}
	wg.Wait()

	wins, taken := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, model.ErrUsernameTaken):
			taken++
		}
	}
	s.Equal(1, wins)
	s.Equal(racers-1, taken)
}

func (s *ServiceSuite) TestIndexLoadedFromStorage() {
	_, err := s.service.Create(s.ctx, "Alice", "D", nil)
	s.Require().NoError(err)

	reopened, err := New(s.ctx, s.storage, s.clock, testutil.NopLogger())
	s.Require().NoError(err)
	s.True(reopened.Exists("ALICE"))
}

// Lookup tests

func (s *ServiceSuite) TestLookupOutcomes() {
	_, err := s.service.Create(s.ctx, "Alice", "D1", nil)
	s.Require().NoError(err)

	acct, err := s.service.Lookup(s.ctx, "alice", "D1")
	s.Require().NoError(err)
	s.Equal("Alice", acct.Username)

	_, err = s.service.Lookup(s.ctx, "alice", "wrong")
	s.ErrorIs(err, model.ErrBadCredentials)

	_, err = s.service.Lookup(s.ctx, "nobody", "D1")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Delete tests

func (s *ServiceSuite) TestDelete() {
	_, err := s.service.Create(s.ctx, "Alice", "D", nil)
	s.Require().NoError(err)

	s.True(s.service.Delete(s.ctx, "ALICE"))
	s.False(s.service.Exists("alice"))
	s.False(s.service.Delete(s.ctx, "alice"))

	_, err = s.service.Lookup(s.ctx, "alice", "D")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Persist tests

func (s *ServiceSuite) TestPersistWritesSnapshot() {
	_, err := s.service.Create(s.ctx, "Alice", "D", nil)
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	s.service.PersistProfile(s.ctx, "Alice", model.Profile{Inventory: []string{"lamp"}, Logins: 2})

	stored, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal([]string{"lamp"}, stored.Profile.Inventory)
	s.Equal(2, stored.Profile.Logins)
	s.Equal("D", stored.PasswordDigest)
	s.Equal(s.clock.Now(), stored.UpdatedAt)
}

func (s *ServiceSuite) TestPersistKeepsResetPassword() {
	_, err := s.service.Create(s.ctx, "Alice", "OLD", nil)
	s.Require().NoError(err)
	s.Require().NoError(s.service.ResetPassword(s.ctx, "Alice", "NEW"))

	s.service.PersistProfile(s.ctx, "Alice", model.Profile{Logins: 1})

	s.NoError(s.service.VerifyPassword(s.ctx, "Alice", "NEW"))
}

func (s *ServiceSuite) TestPersistSwallowsFailure() {
	_, err := s.service.Create(s.ctx, "Alice", "D", nil)
	s.Require().NoError(err)

	s.storage.failSave = true
	s.NotPanics(func() { s.service.PersistProfile(s.ctx, "Alice", model.Profile{}) })
}

func (s *ServiceSuite) TestPersistDoesNotResurrectDeletedAccount() {
	_, err := s.service.Create(s.ctx, "Alice", "D", nil)
	s.Require().NoError(err)
	s.Require().True(s.service.Delete(s.ctx, "Alice"))

	s.service.PersistProfile(s.ctx, "Alice", model.Profile{Logins: 3})

	_, err = s.storage.GetAccount(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Password tests

func (s *ServiceSuite) TestResetThenVerifyRoundTrip() {
	_, err := s.service.Create(s.ctx, "Alice", "OLD", nil)
	s.Require().NoError(err)

	s.Require().NoError(s.service.ResetPassword(s.ctx, "alice", "NEW"))
	s.NoError(s.service.VerifyPassword(s.ctx, "alice", "NEW"))
	s.ErrorIs(s.service.VerifyPassword(s.ctx, "alice", "OLD"), model.ErrBadCredentials)
}

func (s *ServiceSuite) TestResetUnknownAccount() {
	err := s.service.ResetPassword(s.ctx, "nobody", "NEW")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *ServiceSuite) TestResetStorageFailureIsInternal() {
	_, err := s.service.Create(s.ctx, "Alice", "OLD", nil)
	s.Require().NoError(err)

	s.storage.failSave = true
	err = s.service.ResetPassword(s.ctx, "alice", "NEW")
	s.ErrorIs(err, model.ErrInternal)
}

// Recovery tests

func (s *ServiceSuite) TestQuestionAndAnswer() {
	_, err := s.service.Create(s.ctx, "Alice", "D", recovery)
	s.Require().NoError(err)

	q, err := s.service.Question(s.ctx, "alice", 2)
	s.Require().NoError(err)
	s.Equal("Home town?", q)

	a, err := s.service.Answer(s.ctx, "alice", 1)
	s.Require().NoError(err)
	s.Equal("Rex", a)

	_, err = s.service.Question(s.ctx, "alice", 3)
	s.ErrorIs(err, model.ErrRecoveryNotFound)
	_, err = s.service.Answer(s.ctx, "alice", 0)
	s.ErrorIs(err, model.ErrRecoveryNotFound)
	_, err = s.service.Question(s.ctx, "bob", 1)
	s.ErrorIs(err, model.ErrAccountNotFound)
}
