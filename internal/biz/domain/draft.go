package domain

import "strings"

// ReplyDraft is the validated two-field completion output.
type ReplyDraft struct {
	SuggestedText string `json:"suggested_text"`
	Translation   string `json:"translation"`
}

// Validate enforces the completion contract: both fields present and
// non-empty after trimming. Anything else is malformed output.
func (d *ReplyDraft) Validate() error {
	d.SuggestedText = strings.TrimSpace(d.SuggestedText)
	d.Translation = strings.TrimSpace(d.Translation)
	if d.SuggestedText == "" || d.Translation == "" {
		return ErrMalformedCompletion
	}
	return nil
}
