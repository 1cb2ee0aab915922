package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileStore persists token state as a JSON file, by default under the XDG
// config directory. A sidecar flock guards against two CLI invocations
// interleaving their read-modify-write of the rotating refresh token, and
// writes go through a temp file and rename so a crash never leaves a
// truncated auth file behind.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultAuthPath returns the default location of the auth file.
func DefaultAuthPath() string {
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfigHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(xdgConfigHome, "qbo-push", "auth.json")
}

func (f *FileStore) lock() (*flock.Flock, error) {
	if err := ensureParentDir(f.Path); err != nil {
		return nil, err
	}
	fl := flock.New(f.Path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock auth file: %w", err)
	}
	return fl, nil
}

func (f *FileStore) Load() (*TokenState, error) {
	fl, err := f.lock()
	if err != nil {
		return nil, err
	}
	defer fl.Unlock()

	return f.readLocked()
}

func (f *FileStore) readLocked() (*TokenState, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read auth file: %w", err)
	}
	var st TokenState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("failed to parse auth file %s: %w", f.Path, err)
	}
	if st.RefreshToken == "" && st.AccessToken == "" {
		return nil, ErrNotFound
	}
	return &st, nil
}

func (f *FileStore) Save(st *TokenState) error {
	fl, err := f.lock()
	if err != nil {
		return err
	}
	defer fl.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token state: %w", err)
	}

	// Write-then-rename keeps the old state intact if we crash mid-write.
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".auth-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp auth file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set auth file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write auth file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync auth file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close auth file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		return fmt.Errorf("failed to replace auth file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	fl, err := f.lock()
	if err != nil {
		return err
	}
	defer fl.Unlock()

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove auth file: %w", err)
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
