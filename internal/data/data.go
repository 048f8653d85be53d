package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/replydesk/replydesk/internal/biz/repo"
)

// Repositories contains all storage-backed repositories.
type Repositories struct {
	Chat       repo.ChatRepo
	Suggestion repo.SuggestionRepo
	Settings   repo.SettingsRepo

	db *sql.DB
}

// NewRepositories opens the database and creates all repositories.
func NewRepositories(dbPath string) (*Repositories, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Chat:       &chatRepo{db: db},
		Suggestion: &suggestionRepo{db: db},
		Settings:   &settingsRepo{db: db},
		db:         db,
	}, nil
}

// Close closes the database connection.
func (r *Repositories) Close() error {
	return r.db.Close()
}

func openDB(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer keeps the atomic suggestion+fingerprint transaction
	// free of SQLITE_BUSY races.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			language_hint TEXT NOT NULL DEFAULT '',
			is_selected INTEGER NOT NULL DEFAULT 0,
			last_fingerprint TEXT NOT NULL DEFAULT '',
			last_run_at INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chats_selected ON chats(is_selected);

		CREATE TABLE IF NOT EXISTS suggestions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			suggested_text TEXT NOT NULL,
			translation TEXT NOT NULL,
			status TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			source_json TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			decided_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_suggestions_chat_status ON suggestions(chat_id, status);
		CREATE INDEX IF NOT EXISTS idx_suggestions_status_created ON suggestions(status, created_at);

		CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			k_messages INTEGER NOT NULL,
			interval_minutes INTEGER NOT NULL,
			max_pending_per_chat INTEGER NOT NULL,
			cooldown_minutes INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
