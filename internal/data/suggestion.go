package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/replydesk/replydesk/internal/biz/domain"
	"github.com/replydesk/replydesk/internal/biz/repo"
)

// suggestionRepo implements the suggestion repository on SQLite.
type suggestionRepo struct {
	db *sql.DB
}

// Get gets a suggestion by ID.
func (r *suggestionRepo) Get(ctx context.Context, id int64) (*domain.Suggestion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, chat_id, suggested_text, translation, status, fingerprint, source_json, created_at, decided_at
		FROM suggestions
		WHERE id = ?
	`, id)

	var s domain.Suggestion
	var createdAt int64
	var decidedAt sql.NullInt64
	err := row.Scan(&s.ID, &s.ChatID, &s.SuggestedText, &s.Translation, &s.Status,
		&s.Fingerprint, &s.SourceJSON, &createdAt, &decidedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestion: %w", err)
	}

	s.CreatedAt = time.Unix(createdAt, 0)
	if decidedAt.Valid {
		t := time.Unix(decidedAt.Int64, 0)
		s.DecidedAt = &t
	}
	return &s, nil
}

// List lists suggestions joined with chat titles, pending first then newest
// first.
func (r *suggestionRepo) List(ctx context.Context, status domain.SuggestionStatus, limit int) ([]*repo.SuggestionListing, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE s.status = ?"
		args = append(args, string(status))
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT s.id, s.chat_id, c.title, s.suggested_text, s.translation, s.status,
		       s.fingerprint, s.source_json, s.created_at, s.decided_at
		FROM suggestions s
		JOIN chats c ON c.id = s.chat_id
		%s
		ORDER BY
			CASE s.status
				WHEN 'pending' THEN 0
				WHEN 'sent' THEN 1
				WHEN 'declined' THEN 2
				ELSE 9
			END,
			s.created_at DESC
		LIMIT ?
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var out []*repo.SuggestionListing
	for rows.Next() {
		var l repo.SuggestionListing
		var createdAt int64
		var decidedAt sql.NullInt64
		if err := rows.Scan(&l.ID, &l.ChatID, &l.ChatTitle, &l.SuggestedText, &l.Translation,
			&l.Status, &l.Fingerprint, &l.SourceJSON, &createdAt, &decidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		l.CreatedAt = time.Unix(createdAt, 0)
		if decidedAt.Valid {
			t := time.Unix(decidedAt.Int64, 0)
			l.DecidedAt = &t
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// CreatePending inserts a pending suggestion and advances the owning chat's
// fingerprint state in one transaction.
func (r *suggestionRepo) CreatePending(ctx context.Context, s *domain.Suggestion, runAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO suggestions (chat_id, suggested_text, translation, status, fingerprint, source_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ChatID, s.SuggestedText, s.Translation, string(domain.StatusPending),
		s.Fingerprint, s.SourceJSON, s.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert suggestion: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read suggestion id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE chats SET last_fingerprint = ?, last_run_at = ?, updated_at = ? WHERE id = ?
	`, s.Fingerprint, runAt.Unix(), runAt.Unix(), s.ChatID); err != nil {
		return fmt.Errorf("failed to advance chat fingerprint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit suggestion: %w", err)
	}

	s.ID = id
	s.Status = domain.StatusPending
	return nil
}

// CountPending returns a fresh count of pending suggestions for a chat.
func (r *suggestionRepo) CountPending(ctx context.Context, chatID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM suggestions WHERE chat_id = ? AND status = 'pending'
	`, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending: %w", err)
	}
	return count, nil
}

// LatestCreatedAt returns the creation time of the chat's newest suggestion.
func (r *suggestionRepo) LatestCreatedAt(ctx context.Context, chatID int64) (time.Time, error) {
	var createdAt int64
	err := r.db.QueryRowContext(ctx, `
		SELECT created_at FROM suggestions WHERE chat_id = ? ORDER BY created_at DESC LIMIT 1
	`, chatID).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest suggestion: %w", err)
	}
	return time.Unix(createdAt, 0), nil
}

// MarkDecided transitions a suggestion from pending to a terminal status.
// The status guard in the WHERE clause makes the transition one-way even
// under concurrent decisions.
func (r *suggestionRepo) MarkDecided(ctx context.Context, id int64, status domain.SuggestionStatus, decidedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE suggestions SET status = ?, decided_at = ? WHERE id = ? AND status = 'pending'
	`, string(status), decidedAt.Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to mark decided: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suggestions WHERE id = ?`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check suggestion: %w", err)
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrNotActionable
	}
	return nil
}
