package domain

import "testing"

func TestStatusFor(t *testing.T) {
	tests := []struct {
		decision Decision
		status   SuggestionStatus
		ok       bool
	}{
		{DecisionSend, StatusSent, true},
		{DecisionDecline, StatusDeclined, true},
		{Decision("approve"), "", false},
		{Decision(""), "", false},
	}

	for _, tt := range tests {
		status, ok := StatusFor(tt.decision)
		if status != tt.status || ok != tt.ok {
			t.Errorf("StatusFor(%q) = (%q, %v), want (%q, %v)",
				tt.decision, status, ok, tt.status, tt.ok)
		}
	}
}

func TestIsActionable(t *testing.T) {
	s := &Suggestion{Status: StatusPending}
	if !s.IsActionable() {
		t.Error("Expected pending suggestion to be actionable")
	}

	for _, status := range []SuggestionStatus{StatusSent, StatusDeclined} {
		s := &Suggestion{Status: status}
		if s.IsActionable() {
			t.Errorf("Expected %s suggestion to not be actionable", status)
		}
	}
}

func TestReplyDraftValidate(t *testing.T) {
	draft := &ReplyDraft{SuggestedText: "  sounds good  ", Translation: " звучит хорошо "}
	if err := draft.Validate(); err != nil {
		t.Fatalf("Expected valid draft, got %v", err)
	}
	if draft.SuggestedText != "sounds good" {
		t.Errorf("Expected trimmed text, got %q", draft.SuggestedText)
	}
	if draft.Translation != "звучит хорошо" {
		t.Errorf("Expected trimmed translation, got %q", draft.Translation)
	}

	tests := []ReplyDraft{
		{SuggestedText: "", Translation: "перевод"},
		{SuggestedText: "reply", Translation: ""},
		{SuggestedText: "   ", Translation: "   "},
	}
	for _, d := range tests {
		if err := d.Validate(); err != ErrMalformedCompletion {
			t.Errorf("Expected ErrMalformedCompletion for %+v, got %v", d, err)
		}
	}
}
