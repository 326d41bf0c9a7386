// Package llm abstracts the chat-completion model behind a minimal
// interface so the orchestrator never depends on a concrete vendor API.
package llm

import "context"

//go:generate mockgen -source=llm.go -destination=mocks/mock_llm.go -package=mocks

// Message roles, matching the chat-completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a chat-completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter executes one chat-completion call. An empty content string
// with a nil error means the model answered with nothing; callers decide
// what to show for that.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
