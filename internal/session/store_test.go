package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	sess := &Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
		Scopes:       []string{"https://www.googleapis.com/auth/gmail.readonly"},
	}

	if err := store.Save(sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("Load() returned nil after Save")
	}
	if loaded.AccessToken != sess.AccessToken {
		t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, sess.AccessToken)
	}
	if loaded.RefreshToken != sess.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, sess.RefreshToken)
	}
	if !loaded.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", loaded.ExpiresAt, sess.ExpiresAt)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(t.TempDir())

	sess, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if sess != nil {
		t.Errorf("Load() = %+v, want nil for missing file", sess)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	if err := os.WriteFile(filepath.Join(dir, tokenFileName), []byte("not json{"), 0600); err != nil {
		t.Fatal(err)
	}

	sess, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want corrupt file treated as absent", err)
	}
	if sess != nil {
		t.Errorf("Load() = %+v, want nil for corrupt file", sess)
	}

	// Corrupt state should have been removed so the next sign-in starts clean.
	if _, err := os.Stat(filepath.Join(dir, tokenFileName)); !os.IsNotExist(err) {
		t.Error("corrupt session file was not removed")
	}
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	if err := store.Save(&Session{AccessToken: "tok", ExpiresAt: time.Now()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, tokenFileName))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file permissions = %o, want 0600", perm)
	}
}

func TestFileStoreClear(t *testing.T) {
	store := NewFileStore(t.TempDir())

	// Clearing with nothing persisted is not an error.
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() on empty store error = %v", err)
	}

	if err := store.Save(&Session{AccessToken: "tok", ExpiresAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	sess, err := store.Load()
	if err != nil || sess != nil {
		t.Errorf("Load() after Clear = (%+v, %v), want (nil, nil)", sess, err)
	}
}
