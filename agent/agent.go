package agent

import (
	"context"

	"github.com/hupe1980/agentrelay/core"
)

// SummarizePrompt is the fixed instruction Summarize re-invokes the run
// loop with.
const SummarizePrompt = "Summarize the current conversation. If code was generated, preserve it, presenting the most complete version to the user."

// ClearedMessage is the status text a successful Clear returns.
const ClearedMessage = "Conversation cleared."

// Agent is the surface the host application drives. Every method returning
// a string follows the degrade-to-text contract: failures come back as
// user-visible responses, never as errors.
type Agent interface {
	// Name identifies the agent in registries and logs.
	Name() string

	// InfoLink points at documentation for the underlying model.
	InfoLink() string

	// Generate runs one turn for the user and returns the response text.
	// Turns for the same user serialize; distinct users may run
	// concurrently.
	Generate(ctx context.Context, user, prompt string) string

	// ExtraMessages drains and returns the user's progress annotations
	// accumulated since the last call.
	ExtraMessages(user string) []string

	// HasPreviousConversation reports whether the user has visible history
	// with this agent.
	HasPreviousConversation(user string) bool

	// Summarize asks the agent to summarize the conversation so far.
	Summarize(ctx context.Context, user string) string

	// Clear drops the user's conversation state and returns a status text.
	// Clearing twice in a row succeeds both times.
	Clear(ctx context.Context, user string) string
}

// hasAssistantReply reports whether the history holds at least one
// completed exchange. A lone prompt, or a prompt followed only by tool
// outputs, does not count.
func hasAssistantReply(history []core.Message) bool {
	for _, msg := range history {
		if msg.Role == core.RoleAssistant {
			return true
		}
	}
	return false
}
