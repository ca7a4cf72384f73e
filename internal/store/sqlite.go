package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Retention bounds for versioned data.
const (
	maxResumeVersions = 10
	maxContextEntries = 50
)

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	inMemory := false
	if trimmed == "" {
		trimmed = ":memory:"
		inMemory = true
	}
	if strings.Contains(trimmed, "mode=memory") || trimmed == ":memory:" || trimmed == "file::memory:" {
		inMemory = true
	}
	db, err := sql.Open("sqlite", trimmed)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if !inMemory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS resume_versions (
            id TEXT PRIMARY KEY,
            payload BLOB NOT NULL,
            saved_at INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS ai_context (
            id TEXT PRIMARY KEY,
            type TEXT NOT NULL,
            email_subject TEXT,
            summary TEXT,
            created_at INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS preferences (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            theme TEXT NOT NULL,
            sidebar_open INTEGER NOT NULL,
            emails_per_page INTEGER NOT NULL,
            auto_save INTEGER NOT NULL,
            language TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_resume_saved ON resume_versions(saved_at);`,
		`CREATE INDEX IF NOT EXISTS idx_context_created ON ai_context(created_at);`,
	}

	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SaveResume stores a new resume snapshot and trims history beyond the
// retention bound. The newest row is the current profile.
func (s *Store) SaveResume(ctx context.Context, version ResumeVersion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO resume_versions (id, payload, saved_at)
        VALUES (?, ?, ?);`,
		version.ID, version.Payload, version.SavedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert resume version: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM resume_versions WHERE id NOT IN (
        SELECT id FROM resume_versions ORDER BY saved_at DESC, id DESC LIMIT ?);`,
		maxResumeVersions)
	if err != nil {
		return fmt.Errorf("trim resume history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resume version: %w", err)
	}
	return nil
}

// CurrentResume returns the newest resume snapshot, or a zero version
// and false when none has been saved.
func (s *Store) CurrentResume(ctx context.Context) (ResumeVersion, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, payload, saved_at FROM resume_versions
        ORDER BY saved_at DESC, id DESC LIMIT 1;`)

	var version ResumeVersion
	var savedAt int64
	if err := row.Scan(&version.ID, &version.Payload, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResumeVersion{}, false, nil
		}
		return ResumeVersion{}, false, fmt.Errorf("get current resume: %w", err)
	}
	version.SavedAt = time.UnixMilli(savedAt)
	return version, true, nil
}

// ResumeHistory returns saved snapshots, newest first.
func (s *Store) ResumeHistory(ctx context.Context) ([]ResumeVersion, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload, saved_at FROM resume_versions
        ORDER BY saved_at DESC, id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("list resume history: %w", err)
	}
	defer rows.Close()

	var versions []ResumeVersion
	for rows.Next() {
		var version ResumeVersion
		var savedAt int64
		if err := rows.Scan(&version.ID, &version.Payload, &savedAt); err != nil {
			return nil, fmt.Errorf("scan resume version: %w", err)
		}
		version.SavedAt = time.UnixMilli(savedAt)
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resume history: %w", err)
	}
	return versions, nil
}

// AppendContext records one AI interaction and trims entries beyond the
// retention bound.
func (s *Store) AppendContext(ctx context.Context, entry ContextEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO ai_context (id, type, email_subject, summary, created_at)
        VALUES (?, ?, ?, ?, ?);`,
		entry.ID, entry.Type, entry.EmailSubject, entry.Summary, entry.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert context entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM ai_context WHERE id NOT IN (
        SELECT id FROM ai_context ORDER BY created_at DESC, id DESC LIMIT ?);`,
		maxContextEntries)
	if err != nil {
		return fmt.Errorf("trim context entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit context entry: %w", err)
	}
	return nil
}

// RecentContext returns up to limit interactions, newest first. A
// non-positive limit returns everything retained.
func (s *Store) RecentContext(ctx context.Context, limit int) ([]ContextEntry, error) {
	if limit <= 0 || limit > maxContextEntries {
		limit = maxContextEntries
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, email_subject, summary, created_at
        FROM ai_context ORDER BY created_at DESC, id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list context entries: %w", err)
	}
	defer rows.Close()

	var entries []ContextEntry
	for rows.Next() {
		var entry ContextEntry
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.Type, &entry.EmailSubject, &entry.Summary, &createdAt); err != nil {
			return nil, fmt.Errorf("scan context entry: %w", err)
		}
		entry.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list context entries: %w", err)
	}
	return entries, nil
}

// ClearContext removes all recorded AI interactions.
func (s *Store) ClearContext(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ai_context;`); err != nil {
		return fmt.Errorf("clear context entries: %w", err)
	}
	return nil
}

// Preferences returns the stored settings, or the defaults when none
// have been saved.
func (s *Store) Preferences(ctx context.Context) (Preferences, error) {
	row := s.db.QueryRowContext(ctx, `SELECT theme, sidebar_open, emails_per_page, auto_save, language
        FROM preferences WHERE id = 1;`)

	var prefs Preferences
	if err := row.Scan(&prefs.Theme, &prefs.SidebarOpen, &prefs.EmailsPerPage, &prefs.AutoSave, &prefs.Language); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultPreferences(), nil
		}
		return Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences stores the settings, last write wins.
func (s *Store) SavePreferences(ctx context.Context, prefs Preferences) error {
	query := `INSERT INTO preferences (id, theme, sidebar_open, emails_per_page, auto_save, language)
        VALUES (1, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            theme = excluded.theme,
            sidebar_open = excluded.sidebar_open,
            emails_per_page = excluded.emails_per_page,
            auto_save = excluded.auto_save,
            language = excluded.language;`
	_, err := s.db.ExecContext(ctx, query,
		prefs.Theme, prefs.SidebarOpen, prefs.EmailsPerPage, prefs.AutoSave, prefs.Language)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
