package conf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPromptStore_MissingFileUsesDefaults(t *testing.T) {
	store, err := NewPromptStore(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got %v", err)
	}
	if store.SystemPrompt() == "" {
		t.Error("Default system prompt is empty")
	}
	if store.Version() != 1 {
		t.Errorf("Expected version 1 after initial load, got %d", store.Version())
	}
}

func TestPromptStore_RenderSuggestReply(t *testing.T) {
	store, err := NewPromptStore(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	out := store.RenderSuggestReply("Alex", "english", `[{"id":1,"text":"hi"}]`)
	if !strings.Contains(out, "Alex") {
		t.Errorf("Rendered prompt is missing the chat title: %q", out)
	}
	if !strings.Contains(out, `[{"id":1,"text":"hi"}]`) {
		t.Errorf("Rendered prompt is missing the messages JSON: %q", out)
	}
	if strings.Contains(out, "{{") {
		t.Errorf("Rendered prompt has unexpanded placeholders: %q", out)
	}
}

func TestPromptStore_FileOverridesAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := "system_prompt: |\n  Custom system prompt.\nsuggest_reply: |\n  Reply for {{chat_title}}: {{messages_json}}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write prompts file: %v", err)
	}

	store, err := NewPromptStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if !strings.Contains(store.SystemPrompt(), "Custom system prompt") {
		t.Errorf("File override not applied: %q", store.SystemPrompt())
	}

	updated := "system_prompt: |\n  Edited system prompt.\n"
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("Failed to update prompts file: %v", err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if !strings.Contains(store.SystemPrompt(), "Edited system prompt") {
		t.Errorf("Reload did not pick up the edit: %q", store.SystemPrompt())
	}
	// The file no longer sets suggest_reply, so the default comes back.
	if out := store.RenderSuggestReply("Alex", "", "[]"); !strings.Contains(out, "Alex") {
		t.Errorf("Default task prompt not restored: %q", out)
	}
	if store.Version() != 2 {
		t.Errorf("Expected version 2 after reload, got %d", store.Version())
	}
}

func TestPromptStore_BadYAMLKeepsCurrentSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("system_prompt: Good prompt\n"), 0644); err != nil {
		t.Fatalf("Failed to write prompts file: %v", err)
	}

	store, err := NewPromptStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := os.WriteFile(path, []byte("system_prompt: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to corrupt prompts file: %v", err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("Expected reload error for bad YAML")
	}

	if store.SystemPrompt() != "Good prompt" {
		t.Errorf("Failed reload replaced the snapshot: %q", store.SystemPrompt())
	}
	if store.Version() != 1 {
		t.Errorf("Failed reload bumped the version: %d", store.Version())
	}
}
