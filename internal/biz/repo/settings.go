package repo

import (
	"context"

	"github.com/replydesk/replydesk/internal/biz/domain"
)

// SettingsRepo is the settings repository interface.
// A single row holds the operator-editable configuration.
type SettingsRepo interface {
	// Get reads the current settings snapshot.
	Get(ctx context.Context) (domain.Settings, error)

	// Save persists new settings values.
	Save(ctx context.Context, s domain.Settings) error
}
