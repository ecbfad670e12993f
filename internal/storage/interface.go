package storage

import (
	"context"

	"github.com/mcoot/textworld/internal/model"
)

// AccountStorage persists accounts keyed by their folded username
// Backends are not expected to serialise mutations; the account service does that
type AccountStorage interface {
	// ListUsernames returns the folded key of every stored account
	ListUsernames(ctx context.Context) ([]string, error)

	// CreateAccount stores a new account, failing with model.ErrUsernameTaken if the key exists
	CreateAccount(ctx context.Context, account *model.Account) error

	// GetAccount returns the account for key or model.ErrAccountNotFound
	GetAccount(ctx context.Context, key string) (*model.Account, error)

	// SaveAccount overwrites an existing account, failing with model.ErrAccountNotFound if absent
	SaveAccount(ctx context.Context, account *model.Account) error

	// DeleteAccount removes the account and any partial state; deleting a missing key is not an error
	DeleteAccount(ctx context.Context, key string) error

	Close() error
}
