package domain

import "time"

// SuggestionStatus represents the lifecycle state of a suggestion.
type SuggestionStatus string

const (
	StatusPending  SuggestionStatus = "pending"
	StatusSent     SuggestionStatus = "sent"
	StatusDeclined SuggestionStatus = "declined"
)

// Decision is an operator action on a pending suggestion.
type Decision string

const (
	DecisionSend    Decision = "send"
	DecisionDecline Decision = "decline"
)

// Suggestion is one drafted reply awaiting or having received a decision.
type Suggestion struct {
	ID     int64
	ChatID int64

	// SuggestedText is the reply in the conversation's language; this is
	// what gets posted on send. Translation is for the operator only.
	SuggestedText string
	Translation   string

	Status SuggestionStatus

	// Fingerprint is the message-window digest this suggestion was
	// generated from.
	Fingerprint string

	// SourceJSON preserves the fetched window for operator review.
	SourceJSON string

	CreatedAt time.Time
	DecidedAt *time.Time
}

// IsActionable reports whether a decision may still be applied.
// Transitions are one-way: pending -> sent or pending -> declined.
func (s *Suggestion) IsActionable() bool {
	return s.Status == StatusPending
}

// StatusFor maps a decision to the terminal status it produces.
func StatusFor(d Decision) (SuggestionStatus, bool) {
	switch d {
	case DecisionSend:
		return StatusSent, true
	case DecisionDecline:
		return StatusDeclined, true
	default:
		return "", false
	}
}
