package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.AccountStorage = (*Storage)(nil)

func (s *Storage) ListUsernames(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, accountIndexKey(s.cfg.KeyPrefix)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	key := account.Key()

	// SETNX decides the race; the index add is idempotent either way
	pipe := s.client.TxPipeline()
	created := pipe.SetNX(ctx, accountKey(s.cfg.KeyPrefix, key), data, 0)
	pipe.SAdd(ctx, accountIndexKey(s.cfg.KeyPrefix), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if !created.Val() {
		return model.ErrUsernameTaken
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, key string) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(s.cfg.KeyPrefix, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	ok, err := s.client.SetXX(ctx, accountKey(s.cfg.KeyPrefix, account.Key()), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *Storage) DeleteAccount(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, accountKey(s.cfg.KeyPrefix, key))
	pipe.SRem(ctx, accountIndexKey(s.cfg.KeyPrefix), key)
	_, err := pipe.Exec(ctx)
	return err
}
