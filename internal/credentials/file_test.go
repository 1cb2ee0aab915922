package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() *TokenState {
	return &TokenState{
		AccessToken:       "access-1",
		AccessExpiresAt:   time.Date(2025, 11, 17, 13, 0, 0, 0, time.UTC),
		RefreshToken:      "refresh-1",
		RefreshObtainedAt: time.Date(2025, 11, 17, 12, 0, 0, 0, time.UTC),
		RefreshExpiresAt:  time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC),
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "auth.json"))

	require.NoError(t, store.Save(testState()))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, testState(), loaded)
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "auth.json"))
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "auth.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save(testState()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestFileStoreSaveReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save(testState()))

	updated := testState()
	updated.AccessToken = "access-2"
	updated.RefreshToken = "refresh-2"
	require.NoError(t, store.Save(updated))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", loaded.RefreshToken)

	// No temp files left behind by the rename.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"auth.json", "auth.json.lock"}, names)
}

func TestFileStoreClear(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "auth.json"))
	require.NoError(t, store.Save(testState()))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing an already-empty store is not an error.
	require.NoError(t, store.Clear())
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := NewFileStore(path)
	_, err := store.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
