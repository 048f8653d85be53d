package repo

// PromptProvider supplies the current prompt templates. Reload is an atomic
// swap; renders always reflect the latest loaded snapshot.
type PromptProvider interface {
	// SystemPrompt returns the system prompt text.
	SystemPrompt() string

	// RenderSuggestReply renders the task prompt for one chat window.
	RenderSuggestReply(chatTitle, languageHint, messagesJSON string) string

	// Version increments on every successful reload.
	Version() int64
}
