package core

import "github.com/google/uuid"

// Conversation roles. The ordered message list per user is the model's
// context, so insertion order matters semantically.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// Message is one entry in a user's conversation history.
//
// Histories are append-only: tool results are appended as synthetic
// RoleTool entries, never merged into prior messages.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage constructs a RoleUser message.
func NewUserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

// NewAssistantMessage constructs a RoleAssistant message.
func NewAssistantMessage(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// NewToolMessage constructs a RoleTool message carrying a stringified tool
// result.
func NewToolMessage(text string) Message { return Message{Role: RoleTool, Content: text} }

// NewID generates a unique identifier used to correlate tool invocation
// requests with their results.
func NewID() string { return uuid.NewString() }
