package conf

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// promptSet holds one immutable snapshot of loaded templates.
type promptSet struct {
	System       string `yaml:"system_prompt"`
	SuggestReply string `yaml:"suggest_reply"`
}

// PromptStore loads prompt templates from YAML and keeps them in memory.
// Reload swaps the whole snapshot atomically, so renders in flight keep a
// consistent pair and new renders see the latest loaded templates.
type PromptStore struct {
	path    string
	current atomic.Pointer[promptSet]
	version atomic.Int64
}

// NewPromptStore creates a store and performs the initial load. A missing
// file falls back to the built-in defaults.
func NewPromptStore(path string) (*PromptStore, error) {
	s := &PromptStore{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the template file and swaps the snapshot.
func (s *PromptStore) Reload() error {
	set := defaultPromptSet()

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		// Defaults stay in place.
	case err != nil:
		return fmt.Errorf("failed to read prompts file: %w", err)
	default:
		var loaded promptSet
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return fmt.Errorf("failed to parse prompts file: %w", err)
		}
		if strings.TrimSpace(loaded.System) != "" {
			set.System = loaded.System
		}
		if strings.TrimSpace(loaded.SuggestReply) != "" {
			set.SuggestReply = loaded.SuggestReply
		}
	}

	s.current.Store(&set)
	s.version.Add(1)
	return nil
}

// SystemPrompt returns the system prompt text.
func (s *PromptStore) SystemPrompt() string {
	return s.current.Load().System
}

// RenderSuggestReply renders the task prompt for one chat window.
func (s *PromptStore) RenderSuggestReply(chatTitle, languageHint, messagesJSON string) string {
	out := s.current.Load().SuggestReply
	out = strings.ReplaceAll(out, "{{chat_title}}", chatTitle)
	out = strings.ReplaceAll(out, "{{language_hint}}", languageHint)
	out = strings.ReplaceAll(out, "{{messages_json}}", messagesJSON)
	return strings.TrimSpace(out)
}

// Version increments on every successful reload.
func (s *PromptStore) Version() int64 {
	return s.version.Load()
}

func defaultPromptSet() promptSet {
	return promptSet{
		System: `You are a reply-drafting assistant for personal Telegram chats.

You receive the recent messages of one conversation and produce a reply that
the account owner could send as-is.

Rules:
1. Write the reply in the same language the other participants are using,
   unless a language hint says otherwise.
2. Match the tone of the conversation. Keep it natural and concise.
3. Never mention that you are an assistant or that the reply was drafted.
4. Respond with a JSON object containing exactly two fields:
   "suggested_text" - the reply in the conversation's language
   "translation" - the same reply translated to Russian
Both fields must be non-empty.`,
		SuggestReply: `Chat: {{chat_title}}
Language hint: {{language_hint}}

Recent messages (oldest first, JSON):
{{messages_json}}

Draft the next reply from "me". Return only the JSON object.`,
	}
}
