package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts: make(map[string]*model.Account),
	}
}

// Ensure Storage implements the interface
var _ storage.AccountStorage = (*Storage)(nil)

func (s *Storage) ListUsernames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.accounts))
	for k := range s.accounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := account.Key()
	if _, ok := s.accounts[key]; ok {
		return model.ErrUsernameTaken
	}
	s.accounts[key] = account.Clone()
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, key string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[key]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := account.Key()
	if _, ok := s.accounts[key]; !ok {
		return model.ErrAccountNotFound
	}
	s.accounts[key] = account.Clone()
	return nil
}

func (s *Storage) DeleteAccount(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, key)
	return nil
}

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}
