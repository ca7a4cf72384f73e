package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// tokenFileName is the fixed key the session is persisted under.
const tokenFileName = "session.json"

// Store persists the session across process restarts.
// An unreadable or corrupt entry is treated as absent, not as an error.
type Store interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

// FileStore keeps the session as a JSON file in a private directory,
// the same way cached Google tokens are kept on disk for CLI tools.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, tokenFileName)
}

// Load reads the persisted session. A missing or corrupt file yields
// (nil, nil): the caller simply has no session.
func (s *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Corrupt state is unrecoverable; drop it so the next sign-in
		// starts clean.
		_ = s.Clear()
		return nil, nil
	}
	if sess.AccessToken == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session with owner-only permissions.
func (s *FileStore) Save(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session. A missing file is not an error.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
