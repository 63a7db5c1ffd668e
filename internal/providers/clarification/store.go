// Package clarification mounts a small store of clarified question/answer
// pairs as an mcp.PromptProvider: each stored entry becomes a prompt that
// resolves to a user/assistant message pair, so a client can pull a
// previously-resolved clarification back into context instead of asking the
// same question twice.
package clarification

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one stored clarification.
type Entry struct {
	ID          string
	Question    string
	Answer      string
	Occurrences int
	CreatedAt   string
	UpdatedAt   string
}

// Store is a sqlite-backed table of clarification entries.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a sqlite database at path and ensures its
// schema exists, using WAL mode and a busy timeout so concurrent prompt
// reads don't hit SQLITE_BUSY.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create clarification store directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open clarification store: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			occurrences INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init clarification schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a new clarification, or bumps occurrences on the existing
// one if question already has an entry.
func (s *Store) Record(ctx context.Context, question, answer string) (*Entry, error) {
	existing, err := s.findByQuestion(ctx, question)
	if err != nil {
		return nil, err
	}
	now := time.Now().Format(time.RFC3339)
	if existing != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE entries SET answer = ?, occurrences = occurrences + 1, updated_at = ? WHERE id = ?`,
			answer, now, existing.ID,
		); err != nil {
			return nil, fmt.Errorf("update clarification entry: %w", err)
		}
		existing.Answer = answer
		existing.Occurrences++
		existing.UpdatedAt = now
		return existing, nil
	}

	entry := &Entry{
		ID:          uuid.NewString(),
		Question:    question,
		Answer:      answer,
		Occurrences: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, question, answer, occurrences, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Question, entry.Answer, entry.Occurrences, entry.CreatedAt, entry.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert clarification entry: %w", err)
	}
	return entry, nil
}

func (s *Store) findByQuestion(ctx context.Context, question string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, question, answer, occurrences, created_at, updated_at FROM entries WHERE question = ?`, question)
	var e Entry
	if err := row.Scan(&e.ID, &e.Question, &e.Answer, &e.Occurrences, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query clarification entry: %w", err)
	}
	return &e, nil
}

// Get returns the entry with the given id, or nil if it doesn't exist.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, question, answer, occurrences, created_at, updated_at FROM entries WHERE id = ?`, id)
	var e Entry
	if err := row.Scan(&e.ID, &e.Question, &e.Answer, &e.Occurrences, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query clarification entry: %w", err)
	}
	return &e, nil
}

// List returns every stored entry, ordered by most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, question, answer, occurrences, created_at, updated_at FROM entries ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list clarification entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.Occurrences, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan clarification entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
