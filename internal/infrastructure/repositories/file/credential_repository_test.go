package file

import (
	"os"
	"path/filepath"
	"testing"

	"droneview/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "credential.json")
	repo, err := NewFileCredentialRepository(path)
	require.NoError(t, err)

	cred := domain.Credential{
		Token: "T",
		User:  &domain.User{ID: "1", Username: "alice", Role: domain.RoleAdmin},
	}
	require.NoError(t, repo.Save(cred))

	// a fresh repository over the same path reconstructs the session
	reloaded, err := NewFileCredentialRepository(path)
	require.NoError(t, err)
	got, err := reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, cred, got)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	repo, err := NewFileCredentialRepository(filepath.Join(t.TempDir(), "credential.json"))
	require.NoError(t, err)

	cred, err := repo.Load()
	require.NoError(t, err)
	assert.True(t, cred.Empty())
}

func TestClear_RemovesFileAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	repo, err := NewFileCredentialRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Save(domain.Credential{Token: "T"}))
	require.NoError(t, repo.Clear())
	require.NoError(t, repo.Clear())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	repo, err := NewFileCredentialRepository(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	_, err = repo.Load()
	assert.Error(t, err)
}
