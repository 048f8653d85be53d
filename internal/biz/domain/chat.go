package domain

import "time"

// Chat represents a monitored Telegram chat.
type Chat struct {
	ID           int64
	Title        string
	LanguageHint string
	IsSelected   bool

	// LastFingerprint is the digest of the message window from the last
	// successful generation cycle. Empty means no cycle has succeeded yet.
	LastFingerprint string

	// LastRunAt is the time of the last successful generation cycle.
	LastRunAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NeedsGeneration reports whether a freshly fetched window differs from what
// the chat saw on its last successful cycle.
func (c *Chat) NeedsGeneration(fingerprint string) bool {
	return HasChanged(c.LastFingerprint, fingerprint)
}
