// Package web mounts an HTTP-fetch-and-diff tool provider: web_fetch
// extracts clean text from a page, and web_diff fetches a URL again and
// returns what changed since the last fetch, using a sqlite cache keyed by
// URL.
package web

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Provider fetches pages over HTTP and tracks their text content in a
// sqlite cache so repeat fetches can report what changed.
type Provider struct {
	client *http.Client
	db     *sql.DB
}

// New opens (creating if needed) a sqlite cache at cachePath.
func New(cachePath string) (*Provider, error) {
	if cachePath == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	if dir := filepath.Dir(cachePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create web cache directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", cachePath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open web cache: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS fetches (
			url TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init web cache schema: %w", err)
	}

	return &Provider{
		client: &http.Client{Timeout: 30 * time.Second},
		db:     db,
	}, nil
}

// Close releases the underlying cache database handle.
func (p *Provider) Close() error {
	return p.db.Close()
}

func (p *Provider) cachedContent(url string) (string, bool, error) {
	row := p.db.QueryRow(`SELECT content FROM fetches WHERE url = ?`, url)
	var content string
	if err := row.Scan(&content); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query web cache: %w", err)
	}
	return content, true, nil
}

func (p *Provider) storeContent(url, content string) error {
	_, err := p.db.Exec(
		`INSERT INTO fetches (url, content, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET content = excluded.content, fetched_at = excluded.fetched_at`,
		url, content, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store web cache entry: %w", err)
	}
	return nil
}
