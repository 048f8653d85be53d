package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/replydesk/replydesk/internal/biz/domain"
)

// chatRepo implements the chat repository on SQLite.
type chatRepo struct {
	db *sql.DB
}

const chatColumns = `id, title, language_hint, is_selected, last_fingerprint, last_run_at, created_at, updated_at`

// Get gets a chat by ID.
func (r *chatRepo) Get(ctx context.Context, chatID int64) (*domain.Chat, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+chatColumns+` FROM chats WHERE id = ?
	`, chatID)

	chat, err := scanChat(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}
	return chat, nil
}

// ListAll lists all known chats ordered by title.
func (r *chatRepo) ListAll(ctx context.Context) ([]*domain.Chat, error) {
	return r.list(ctx, `SELECT `+chatColumns+` FROM chats ORDER BY lower(title) ASC`)
}

// ListSelected lists chats with is_selected set.
func (r *chatRepo) ListSelected(ctx context.Context) ([]*domain.Chat, error) {
	return r.list(ctx, `SELECT `+chatColumns+` FROM chats WHERE is_selected = 1 ORDER BY lower(title) ASC`)
}

func (r *chatRepo) list(ctx context.Context, query string) ([]*domain.Chat, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// Upsert creates or refreshes a chat's identity fields.
func (r *chatRepo) Upsert(ctx context.Context, chat *domain.Chat) error {
	now := time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chats (id, title, is_selected, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at
	`, chat.ID, chat.Title, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert chat: %w", err)
	}
	return nil
}

// SetSelection replaces the selected set with the given chat IDs.
func (r *chatRepo) SetSelection(ctx context.Context, chatIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx, `UPDATE chats SET is_selected = 0, updated_at = ?`, now); err != nil {
		return fmt.Errorf("failed to clear selection: %w", err)
	}

	if len(chatIDs) > 0 {
		placeholders := make([]string, len(chatIDs))
		args := make([]interface{}, 0, len(chatIDs)+1)
		args = append(args, now)
		for i, id := range chatIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query := fmt.Sprintf(`UPDATE chats SET is_selected = 1, updated_at = ? WHERE id IN (%s)`,
			strings.Join(placeholders, ","))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to set selection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit selection: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChat(row rowScanner) (*domain.Chat, error) {
	var chat domain.Chat
	var createdAt, updatedAt int64
	var lastRunAt sql.NullInt64

	err := row.Scan(&chat.ID, &chat.Title, &chat.LanguageHint, &chat.IsSelected,
		&chat.LastFingerprint, &lastRunAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	chat.CreatedAt = time.Unix(createdAt, 0)
	chat.UpdatedAt = time.Unix(updatedAt, 0)
	if lastRunAt.Valid {
		t := time.Unix(lastRunAt.Int64, 0)
		chat.LastRunAt = &t
	}
	return &chat, nil
}
