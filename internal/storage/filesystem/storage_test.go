package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/storage"
	"github.com/mcoot/textworld/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.AccountStorageSuite{
		NewStorage: func() storage.AccountStorage {
			s, err := New(t.TempDir())
			require.NoError(t, err)
			return s
		},
	})
}

func TestLayoutIsOneDirectoryPerAccount(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	require.NoError(t, s.CreateAccount(context.Background(), &model.Account{
		Username:       "Mary Jane",
		PasswordDigest: "ABC123",
	}))

	digest, err := os.ReadFile(filepath.Join(root, "mary jane", DigestFile))
	require.NoError(t, err)
	assert.Equal(t, "ABC123", string(digest))

	profile, err := os.ReadFile(filepath.Join(root, "mary jane", ProfileFile))
	require.NoError(t, err)
	assert.Contains(t, string(profile), `"username": "Mary Jane"`)
	assert.NotContains(t, string(profile), "ABC123")
}

func TestExistingDirectoryMeansTaken(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "bob"), 0o755))

	s, err := New(root)
	require.NoError(t, err)

	err = s.CreateAccount(context.Background(), &model.Account{Username: "Bob"})
	assert.ErrorIs(t, err, model.ErrUsernameTaken)
}

func TestNewRejectsFileRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := New(path)
	assert.Error(t, err)
}

func TestNewCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "accounts")
	s, err := New(root)
	require.NoError(t, err)
	assert.DirExists(t, s.Root())
}

func TestKeysCannotEscapeRoot(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.GetAccount(context.Background(), "../etc")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}

func TestHandMadeFoldersAreFolded(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	require.NoError(t, s.CreateAccount(context.Background(), &model.Account{Username: "Bob", PasswordDigest: "D1"}))
	require.NoError(t, os.Rename(filepath.Join(root, "bob"), filepath.Join(root, "Bob")))

	keys, err := s.ListUsernames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, keys)

	acct, err := s.GetAccount(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "D1", acct.PasswordDigest)

	err = s.CreateAccount(context.Background(), &model.Account{Username: "BOB"})
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	acct.PasswordDigest = "D2"
	require.NoError(t, s.SaveAccount(context.Background(), acct))
	digest, err := os.ReadFile(filepath.Join(root, "Bob", DigestFile))
	require.NoError(t, err)
	assert.Equal(t, "D2", string(digest))

	require.NoError(t, s.DeleteAccount(context.Background(), "bob"))
	assert.NoDirExists(t, filepath.Join(root, "Bob"))
}

func TestIncompleteFolderIsNotMissing(t *testing.T) {
	for _, file := range []string{DigestFile, ProfileFile} {
		t.Run(file, func(t *testing.T) {
			root := t.TempDir()
			s, err := New(root)
			require.NoError(t, err)

			require.NoError(t, s.CreateAccount(context.Background(), &model.Account{Username: "Alice"}))
			require.NoError(t, os.Remove(filepath.Join(root, "alice", file)))

			_, err = s.GetAccount(context.Background(), "alice")
			require.Error(t, err)
			assert.NotErrorIs(t, err, model.ErrAccountNotFound)
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}
