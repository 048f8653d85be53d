package domain

import "time"

// Settings is the operator-editable, process-wide configuration. The
// scheduler reads one consistent snapshot per tick; edits apply from the
// next tick onward.
type Settings struct {
	// KMessages is how many recent messages are fetched per cycle.
	KMessages int

	// IntervalMinutes is the scheduler poll interval.
	IntervalMinutes int

	// MaxPendingPerChat caps undecided suggestions per chat.
	MaxPendingPerChat int

	// CooldownMinutes is the minimum age of a chat's newest suggestion
	// before another one may be generated. Zero disables the cooldown.
	CooldownMinutes int
}

// DefaultSettings returns the values seeded on first startup.
func DefaultSettings() Settings {
	return Settings{
		KMessages:         20,
		IntervalMinutes:   5,
		MaxPendingPerChat: 1,
		CooldownMinutes:   0,
	}
}

// Interval returns the poll interval as a duration, floored at one minute.
func (s Settings) Interval() time.Duration {
	minutes := s.IntervalMinutes
	if minutes < 1 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}

// Cooldown returns the cooldown as a duration.
func (s Settings) Cooldown() time.Duration {
	if s.CooldownMinutes <= 0 {
		return 0
	}
	return time.Duration(s.CooldownMinutes) * time.Minute
}

// Validate checks the operator-facing ranges.
func (s Settings) Validate() error {
	if s.KMessages < 1 || s.KMessages > 100 {
		return &ValidationError{Field: "k_messages", Message: "must be between 1 and 100"}
	}
	if s.IntervalMinutes < 1 || s.IntervalMinutes > 1440 {
		return &ValidationError{Field: "interval_minutes", Message: "must be between 1 and 1440"}
	}
	if s.MaxPendingPerChat < 1 || s.MaxPendingPerChat > 10 {
		return &ValidationError{Field: "max_pending_per_chat", Message: "must be between 1 and 10"}
	}
	if s.CooldownMinutes < 0 || s.CooldownMinutes > 1440 {
		return &ValidationError{Field: "cooldown_minutes", Message: "must be between 0 and 1440"}
	}
	return nil
}

// ValidationError reports an out-of-range settings field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
