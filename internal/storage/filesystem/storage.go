package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/storage"
)

// File names inside each account directory
const (
	DigestFile  = "pass.txt"
	ProfileFile = "data.json"
)

// snapshot is the on-disk form of everything except the digest
type snapshot struct {
	Username  string               `json:"username"`
	Recovery  []model.RecoveryPair `json:"recovery,omitempty"`
	Profile   model.Profile        `json:"profile"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Storage keeps one directory per account under a root folder
// Directory presence is the existence check
type Storage struct {
	root string
}

// Ensure Storage implements the interface
var _ storage.AccountStorage = (*Storage)(nil)

// New opens the account folder at root, creating it if needed
func New(root string) (*Storage, error) {
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("create account folder: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat account folder: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("account folder %s is not a directory", root)
	}
	return &Storage{root: root}, nil
}

// Root returns the account folder
func (s *Storage) Root() string {
	return s.root
}

func (s *Storage) dir(key string) (string, bool) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", false
	}
	return filepath.Join(s.root, key), true
}

// find returns the directory holding key
// Folders made by hand may not be folded, so an exact miss falls back to a folded scan.
func (s *Storage) find(key string) (string, error) {
	dir, ok := s.dir(key)
	if !ok {
		return "", model.ErrAccountNotFound
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return dir, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("stat account directory: %w", err)
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return "", fmt.Errorf("read account folder: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && model.FoldUsername(e.Name()) == key {
			return filepath.Join(s.root, e.Name()), nil
		}
	}
	return "", model.ErrAccountNotFound
}

func (s *Storage) ListUsernames(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read account folder: %w", err)
	}
	seen := make(map[string]struct{}, len(entries))
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		key := model.FoldUsername(e.Name())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	dir, ok := s.dir(account.Key())
	if !ok {
		return model.ErrBadUsernameFormat
	}
	if _, err := s.find(account.Key()); err == nil {
		return model.ErrUsernameTaken
	} else if !errors.Is(err, model.ErrAccountNotFound) {
		return err
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return model.ErrUsernameTaken
		}
		return fmt.Errorf("create account directory: %w", err)
	}
	if err := s.write(dir, account); err != nil {
		_ = os.RemoveAll(dir)
		return err
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, key string) (*model.Account, error) {
	dir, err := s.find(key)
	if err != nil {
		return nil, err
	}
	// the directory is the existence check, so a missing file is damage rather than absence
	digest, err := os.ReadFile(filepath.Join(dir, DigestFile))
	if err != nil {
		return nil, fmt.Errorf("read digest of %s: %w", key, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ProfileFile))
	if err != nil {
		return nil, fmt.Errorf("read profile of %s: %w", key, err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &model.Account{
		Username:       snap.Username,
		PasswordDigest: string(bytes.TrimSpace(digest)),
		Recovery:       snap.Recovery,
		Profile:        snap.Profile,
		CreatedAt:      snap.CreatedAt,
		UpdatedAt:      snap.UpdatedAt,
	}, nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	dir, err := s.find(account.Key())
	if err != nil {
		return err
	}
	return s.write(dir, account)
}

func (s *Storage) DeleteAccount(ctx context.Context, key string) error {
	dir, err := s.find(key)
	if errors.Is(err, model.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove account directory: %w", err)
	}
	return nil
}

// Close is a no-op; files are closed after every write
func (s *Storage) Close() error {
	return nil
}

func (s *Storage) write(dir string, account *model.Account) error {
	if err := writeAtomic(dir, DigestFile, []byte(account.PasswordDigest)); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot{
		Username:  account.Username,
		Recovery:  account.Recovery,
		Profile:   account.Profile,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return writeAtomic(dir, ProfileFile, data)
}

// writeAtomic replaces dir/name so concurrent readers never see a partial file
func writeAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
