package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"recipeimport/internal/domain"
	"recipeimport/internal/ports"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS import_sessions (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    status TEXT NOT NULL,
    current_index INTEGER NOT NULL DEFAULT 0,
    entries_json TEXT NOT NULL,
    image_mapping_json TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_import_sessions_status
    ON import_sessions (status, created_at);
`

var sessionColumns = []string{
	"id", "source", "status", "current_index",
	"entries_json", "image_mapping_json", "created_at", "updated_at",
}

// SessionStore persists import sessions as whole JSON documents in SQLite.
// Each Update replaces the full snapshot, so a reader never observes a
// partially applied action.
type SessionStore struct {
	db   *sql.DB
	path string
}

var _ ports.SessionRepository = (*SessionStore)(nil)

// Open initializes or connects to the session database.
func Open(path string) (*SessionStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SessionStore{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertSuperseding stores a new session and abandons every other active one
// inside the same transaction, so there is no window where two sessions are
// visible as active.
func (s *SessionStore) InsertSuperseding(ctx context.Context, session *domain.ImportSession) error {
	if session == nil {
		return errors.New("session is nil")
	}

	entriesJSON, mappingJSON, err := encodeSession(session)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	abandonSQL, abandonArgs, err := sq.Update("import_sessions").
		Set("status", domain.SessionAbandoned).
		Set("updated_at", timestamp(time.Now().UTC())).
		Where(sq.Eq{"status": domain.SessionActive}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build abandon query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, abandonSQL, abandonArgs...); err != nil {
		return fmt.Errorf("abandon active sessions: %w", err)
	}

	insertSQL, insertArgs, err := sq.Insert("import_sessions").
		Columns(sessionColumns...).
		Values(
			session.ID,
			session.Source,
			session.Status,
			session.CurrentIndex,
			entriesJSON,
			mappingJSON,
			timestamp(session.CreatedAt),
			timestamp(session.UpdatedAt),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session insert: %w", err)
	}
	return nil
}

// GetByID fetches a session by identifier; a missing id yields (nil, nil).
func (s *SessionStore) GetByID(ctx context.Context, id string) (*domain.ImportSession, error) {
	query, args, err := sq.Select(sessionColumns...).
		From("import_sessions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	session, err := scanSession(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// MostRecentActive returns the newest active session, or nil when none is
// active. The superseding insert keeps the result unique.
func (s *SessionStore) MostRecentActive(ctx context.Context) (*domain.ImportSession, error) {
	query, args, err := sq.Select(sessionColumns...).
		From("import_sessions").
		Where(sq.Eq{"status": domain.SessionActive}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active query: %w", err)
	}

	session, err := scanSession(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most recent active: %w", err)
	}
	return session, nil
}

// Update persists the full session snapshot as one write.
func (s *SessionStore) Update(ctx context.Context, session *domain.ImportSession) error {
	if session == nil {
		return errors.New("session is nil")
	}
	session.UpdatedAt = time.Now().UTC()

	entriesJSON, mappingJSON, err := encodeSession(session)
	if err != nil {
		return err
	}

	query, args, err := sq.Update("import_sessions").
		Set("source", session.Source).
		Set("status", session.Status).
		Set("current_index", session.CurrentIndex).
		Set("entries_json", entriesJSON).
		Set("image_mapping_json", mappingJSON).
		Set("updated_at", timestamp(session.UpdatedAt)).
		Where(sq.Eq{"id": session.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// UpdateStatus flips only the lifecycle status of a stored session.
func (s *SessionStore) UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error {
	query, args, err := sq.Update("import_sessions").
		Set("status", status).
		Set("updated_at", timestamp(time.Now().UTC())).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func encodeSession(session *domain.ImportSession) (string, string, error) {
	entriesJSON, err := json.Marshal(session.Entries)
	if err != nil {
		return "", "", fmt.Errorf("marshal entries: %w", err)
	}
	mappingJSON, err := json.Marshal(session.ImageMapping)
	if err != nil {
		return "", "", fmt.Errorf("marshal image mapping: %w", err)
	}
	return string(entriesJSON), string(mappingJSON), nil
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.ImportSession, error) {
	var (
		id           string
		source       string
		statusStr    string
		currentIndex int
		entriesRaw   string
		mappingRaw   sql.NullString
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&source,
		&statusStr,
		&currentIndex,
		&entriesRaw,
		&mappingRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	session := &domain.ImportSession{
		ID:           id,
		Source:       source,
		Status:       domain.SessionStatus(statusStr),
		CurrentIndex: currentIndex,
		CreatedAt:    parseTimestamp(createdRaw),
		UpdatedAt:    parseTimestamp(updatedRaw),
	}

	if err := json.Unmarshal([]byte(entriesRaw), &session.Entries); err != nil {
		return nil, fmt.Errorf("unmarshal entries: %w", err)
	}
	if mappingRaw.Valid && mappingRaw.String != "" && mappingRaw.String != "null" {
		if err := json.Unmarshal([]byte(mappingRaw.String), &session.ImageMapping); err != nil {
			return nil, fmt.Errorf("unmarshal image mapping: %w", err)
		}
	}

	return session, nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
