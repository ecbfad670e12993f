package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	username_key    TEXT PRIMARY KEY,
	username        TEXT NOT NULL,
	password_digest TEXT NOT NULL,
	recovery        TEXT NOT NULL,
	profile         TEXT NOT NULL,
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL
);
`

// Storage keeps accounts in a single SQLite table
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.AccountStorage = (*Storage)(nil)

// New opens (or creates) the database at path and applies the schema
// Use ":memory:" for a throwaway database
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single writer connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username_key FROM accounts ORDER BY username_key`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan account key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	recovery, profile, err := encode(account)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (username_key, username, password_digest, recovery, profile, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (username_key) DO NOTHING
	`, account.Key(), account.Username, account.PasswordDigest, recovery, profile,
		account.CreatedAt.UnixMicro(), account.UpdatedAt.UnixMicro())
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrUsernameTaken
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, key string) (*model.Account, error) {
	var (
		account            model.Account
		recovery, profile  string
		createdAt, updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password_digest, recovery, profile, created_at, updated_at
		FROM accounts
		WHERE username_key = ?
	`, key).Scan(&account.Username, &account.PasswordDigest, &recovery, &profile, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}

	if err := json.Unmarshal([]byte(recovery), &account.Recovery); err != nil {
		return nil, fmt.Errorf("decode recovery: %w", err)
	}
	if err := json.Unmarshal([]byte(profile), &account.Profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	account.CreatedAt = time.UnixMicro(createdAt).UTC()
	account.UpdatedAt = time.UnixMicro(updated).UTC()
	return &account, nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	recovery, profile, err := encode(account)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET username = ?, password_digest = ?, recovery = ?, profile = ?, updated_at = ?
		WHERE username_key = ?
	`, account.Username, account.PasswordDigest, recovery, profile, account.UpdatedAt.UnixMicro(), account.Key())
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *Storage) DeleteAccount(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE username_key = ?`, key); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func encode(account *model.Account) (string, string, error) {
	recovery := account.Recovery
	if recovery == nil {
		recovery = []model.RecoveryPair{}
	}
	r, err := json.Marshal(recovery)
	if err != nil {
		return "", "", fmt.Errorf("encode recovery: %w", err)
	}
	p, err := json.Marshal(account.Profile)
	if err != nil {
		return "", "", fmt.Errorf("encode profile: %w", err)
	}
	return string(r), string(p), nil
}
