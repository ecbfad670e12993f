package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sync"

	"github.com/mcoot/textworld/internal/dependencies/clock"
	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/storage"
)

var validUsername = regexp.MustCompile(`^[a-zA-Z 0-9]+$`)

// ValidUsername reports whether name is letters, digits and spaces only
func ValidUsername(name string) bool {
	return validUsername.MatchString(name)
}

// Service is the account store: it owns the username index and serialises
// every mutation of persisted accounts
type Service struct {
	storage storage.AccountStorage
	clock   clock.Clock
	logger  *slog.Logger

	// mu serialises create, delete, persist and password resets
	mu sync.Mutex

	// index maps folded username to struct{}; reads never take mu
	index sync.Map
}

// New creates the account service and loads the username index from storage
func New(ctx context.Context, storage storage.AccountStorage, clock clock.Clock, logger *slog.Logger) (*Service, error) {
	keys, err := storage.ListUsernames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load username index: %w", err)
	}

	s := &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "accounts")),
	}
	for _, k := range keys {
		s.index.Store(k, struct{}{})
	}
	s.logger.Info("account index loaded", slog.Int("accounts", len(keys)))
	return s, nil
}

// Exists reports whether an account with this username exists
func (s *Service) Exists(username string) bool {
	_, ok := s.index.Load(model.FoldUsername(username))
	return ok
}

// Count returns the number of indexed accounts
func (s *Service) Count() int {
	n := 0
	s.index.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Create registers a new account
// Errors: ErrBadUsernameFormat, ErrUsernameTaken, ErrInternal
func (s *Service) Create(ctx context.Context, username, digest string, recovery []model.RecoveryPair) (*model.Account, error) {
	if !ValidUsername(username) {
		return nil, model.ErrBadUsernameFormat
	}
	key := model.FoldUsername(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.index.LoadOrStore(key, struct{}{}); taken {
		return nil, model.ErrUsernameTaken
	}

	now := s.clock.Now()
	acct := &model.Account{
		Username:       username,
		PasswordDigest: digest,
		Recovery:       recovery,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.storage.CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			// storage knew about it even though the index didn't; keep the entry
			s.logger.Warn("username index was stale", slog.String("username", username))
			return nil, model.ErrUsernameTaken
		}
		s.index.Delete(key)
		if rbErr := s.storage.DeleteAccount(ctx, key); rbErr != nil {
			s.logger.Error("rollback of failed account creation failed",
				slog.String("username", username),
				slog.String("error", rbErr.Error()),
			)
		}
		s.logger.Error("failed to create account",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", model.ErrInternal, err)
	}

	s.logger.Info("account created", slog.String("username", username))
	return acct.Clone(), nil
}

// Lookup loads an account and checks the digest
// Errors: ErrAccountNotFound, ErrBadCredentials, ErrInternal
func (s *Service) Lookup(ctx context.Context, username, digest string) (*model.Account, error) {
	acct, err := s.get(ctx, username)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(acct.PasswordDigest), []byte(digest)) != 1 {
		return nil, model.ErrBadCredentials
	}
	return acct, nil
}

// Delete removes an account, reporting whether one was removed
func (s *Service) Delete(ctx context.Context, username string) bool {
	key := model.FoldUsername(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index.Load(key); !ok {
		return false
	}
	if err := s.storage.DeleteAccount(ctx, key); err != nil {
		s.logger.Error("failed to delete account",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return false
	}
	s.index.Delete(key)
	s.logger.Info("account deleted", slog.String("username", username))
	return true
}

// PersistProfile writes the profile snapshot of an account; failures are logged, never returned
// The stored digest and recovery pairs are left untouched
func (s *Service) PersistProfile(ctx context.Context, username string, profile model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a deleted account must not be resurrected by a late snapshot
	acct, err := s.get(ctx, username)
	if err != nil {
		if !errors.Is(err, model.ErrAccountNotFound) {
			s.logger.Warn("failed to load account for snapshot",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	acct.Profile = model.Profile{
		Friends:   slices.Clone(profile.Friends),
		Inventory: slices.Clone(profile.Inventory),
		LastLogin: profile.LastLogin,
		Logins:    profile.Logins,
	}
	acct.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveAccount(ctx, acct); err != nil {
		s.logger.Warn("failed to persist account",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	}
}

// ResetPassword replaces the stored digest
func (s *Service) ResetPassword(ctx context.Context, username, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, err := s.get(ctx, username)
	if err != nil {
		return err
	}
	acct.PasswordDigest = digest
	acct.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveAccount(ctx, acct); err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", model.ErrInternal, err)
	}
	s.logger.Info("password reset", slog.String("username", acct.Username))
	return nil
}

// VerifyPassword checks a digest without returning the account
func (s *Service) VerifyPassword(ctx context.Context, username, digest string) error {
	_, err := s.Lookup(ctx, username, digest)
	return err
}

// Question returns the n-th (1-based) recovery question
func (s *Service) Question(ctx context.Context, username string, n int) (string, error) {
	pair, err := s.recovery(ctx, username, n)
	if err != nil {
		return "", err
	}
	return pair.Question, nil
}

// Answer returns the n-th (1-based) recovery answer
func (s *Service) Answer(ctx context.Context, username string, n int) (string, error) {
	pair, err := s.recovery(ctx, username, n)
	if err != nil {
		return "", err
	}
	return pair.Answer, nil
}

func (s *Service) recovery(ctx context.Context, username string, n int) (model.RecoveryPair, error) {
	acct, err := s.get(ctx, username)
	if err != nil {
		return model.RecoveryPair{}, err
	}
	if n < 1 || n > len(acct.Recovery) {
		return model.RecoveryPair{}, model.ErrRecoveryNotFound
	}
	return acct.Recovery[n-1], nil
}

func (s *Service) get(ctx context.Context, username string) (*model.Account, error) {
	key := model.FoldUsername(username)
	if _, ok := s.index.Load(key); !ok {
		return nil, model.ErrAccountNotFound
	}
	acct, err := s.storage.GetAccount(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, err
		}
		s.logger.Error("failed to read account",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", model.ErrInternal, err)
	}
	return acct, nil
}
