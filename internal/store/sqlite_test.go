package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return s
}

func TestResumeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.CurrentResume(ctx)
	if err != nil {
		t.Fatalf("CurrentResume() error = %v", err)
	}
	if ok {
		t.Fatal("CurrentResume() reported a snapshot before any save")
	}

	saved := ResumeVersion{
		ID:      "v1",
		Payload: []byte(`{"fullName":"A. Person"}`),
		SavedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.SaveResume(ctx, saved); err != nil {
		t.Fatalf("SaveResume() error = %v", err)
	}

	current, ok, err := s.CurrentResume(ctx)
	if err != nil {
		t.Fatalf("CurrentResume() error = %v", err)
	}
	if !ok {
		t.Fatal("CurrentResume() found no snapshot after save")
	}
	if current.ID != "v1" {
		t.Errorf("ID = %q, want %q", current.ID, "v1")
	}
	if string(current.Payload) != string(saved.Payload) {
		t.Errorf("Payload = %s, want %s", current.Payload, saved.Payload)
	}
	if !current.SavedAt.Equal(saved.SavedAt) {
		t.Errorf("SavedAt = %v, want %v", current.SavedAt, saved.SavedAt)
	}
}

func TestResumeHistoryCap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < maxResumeVersions+3; i++ {
		version := ResumeVersion{
			ID:      fmt.Sprintf("v%02d", i),
			Payload: []byte(`{}`),
			SavedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveResume(ctx, version); err != nil {
			t.Fatalf("SaveResume(%d) error = %v", i, err)
		}
	}

	history, err := s.ResumeHistory(ctx)
	if err != nil {
		t.Fatalf("ResumeHistory() error = %v", err)
	}
	if len(history) != maxResumeVersions {
		t.Fatalf("history length = %d, want %d", len(history), maxResumeVersions)
	}
	if history[0].ID != "v12" {
		t.Errorf("newest snapshot = %q, want %q", history[0].ID, "v12")
	}
	if history[len(history)-1].ID != "v03" {
		t.Errorf("oldest retained snapshot = %q, want %q", history[len(history)-1].ID, "v03")
	}
}

func TestContextCap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < maxContextEntries+5; i++ {
		entry := ContextEntry{
			ID:           fmt.Sprintf("e%03d", i),
			Type:         "reply",
			EmailSubject: "Subject",
			Summary:      "drafted a reply",
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		}
		if err := s.AppendContext(ctx, entry); err != nil {
			t.Fatalf("AppendContext(%d) error = %v", i, err)
		}
	}

	entries, err := s.RecentContext(ctx, 0)
	if err != nil {
		t.Fatalf("RecentContext() error = %v", err)
	}
	if len(entries) != maxContextEntries {
		t.Fatalf("context length = %d, want %d", len(entries), maxContextEntries)
	}
	if entries[0].ID != "e054" {
		t.Errorf("newest entry = %q, want %q", entries[0].ID, "e054")
	}

	recent, err := s.RecentContext(ctx, 5)
	if err != nil {
		t.Fatalf("RecentContext(5) error = %v", err)
	}
	if len(recent) != 5 {
		t.Errorf("limited context length = %d, want 5", len(recent))
	}
}

func TestClearContext(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := ContextEntry{ID: "e1", Type: "reply", CreatedAt: time.Now()}
	if err := s.AppendContext(ctx, entry); err != nil {
		t.Fatalf("AppendContext() error = %v", err)
	}
	if err := s.ClearContext(ctx); err != nil {
		t.Fatalf("ClearContext() error = %v", err)
	}

	entries, err := s.RecentContext(ctx, 0)
	if err != nil {
		t.Fatalf("RecentContext() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("context length after clear = %d, want 0", len(entries))
	}
}

func TestPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prefs, err := s.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if prefs != DefaultPreferences() {
		t.Errorf("Preferences() = %+v, want defaults", prefs)
	}

	prefs.Theme = "dark"
	prefs.EmailsPerPage = 50
	prefs.SidebarOpen = false
	if err := s.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}

	got, err := s.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if got != prefs {
		t.Errorf("Preferences() = %+v, want %+v", got, prefs)
	}

	// Last write wins.
	prefs.Theme = "light"
	if err := s.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}
	got, err = s.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if got.Theme != "light" {
		t.Errorf("Theme = %q, want %q", got.Theme, "light")
	}
}
