// Package profile persists the caller's last successfully used account
// between daemon runs. The core broker never consults it implicitly:
// clients opt in per request, and the HTTP layer resolves the stored
// account into an ordinary hint.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Profile is the persisted preference record.
type Profile struct {
	LastAccountID string    `json:"last_account_id"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store reads and writes the profile file. Safe for concurrent use within
// one process; writes go through a temp file and rename, so a crash leaves
// either the old or the new profile, never a torn one.
type Store struct {
	mu   sync.Mutex
	path string
}

// DefaultPath places the profile under the user's configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "keybridge", "profile.json"), nil
}

// NewStore builds a store over the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the profile. A missing file is not an error: it loads as the
// zero profile, whose empty LastAccountID means "no preference recorded".
func (s *Store) Load() (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	return p, nil
}

// Save writes the profile, stamping UpdatedAt.
func (s *Store) Save(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}

// Clear removes the profile file. Clearing an absent profile is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
