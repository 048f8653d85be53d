package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/replydesk/replydesk/internal/biz/domain"
)

// settingsRepo implements the settings repository on SQLite. A single row
// with id = 1 holds the operator-editable configuration.
type settingsRepo struct {
	db *sql.DB
}

// Get reads the current settings snapshot, seeding defaults on first read.
func (r *settingsRepo) Get(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	err := r.db.QueryRowContext(ctx, `
		SELECT k_messages, interval_minutes, max_pending_per_chat, cooldown_minutes
		FROM settings WHERE id = 1
	`).Scan(&s.KMessages, &s.IntervalMinutes, &s.MaxPendingPerChat, &s.CooldownMinutes)
	if err == sql.ErrNoRows {
		defaults := domain.DefaultSettings()
		if err := r.Save(ctx, defaults); err != nil {
			return domain.Settings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	return s, nil
}

// Save persists new settings values.
func (r *settingsRepo) Save(ctx context.Context, s domain.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, k_messages, interval_minutes, max_pending_per_chat, cooldown_minutes, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			k_messages = excluded.k_messages,
			interval_minutes = excluded.interval_minutes,
			max_pending_per_chat = excluded.max_pending_per_chat,
			cooldown_minutes = excluded.cooldown_minutes,
			updated_at = excluded.updated_at
	`, s.KMessages, s.IntervalMinutes, s.MaxPendingPerChat, s.CooldownMinutes, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
