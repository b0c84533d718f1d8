package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/conversation"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// ChatAgentOptions configure a direct chat-completion agent.
type ChatAgentOptions struct {
	// Instructions is prepended to the history on every completion call.
	Instructions string
	// Store holds the per-user history. Defaults to an in-memory store.
	Store    conversation.Store
	InfoLink string
	Logger   logging.Logger
}

// ChatAgent keeps the conversation client-side and replays the full
// history into a stateless chat-completion backend on each turn.
type ChatAgent struct {
	base
	backend backend.ChatBackend
	store   conversation.Store
	opts    ChatAgentOptions
}

var _ Agent = (*ChatAgent)(nil)

// NewChatAgent constructs a direct chat-completion agent.
func NewChatAgent(name string, chat backend.ChatBackend, optFns ...func(o *ChatAgentOptions)) *ChatAgent {
	opts := ChatAgentOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = conversation.NewInMemoryStore()
	}
	return &ChatAgent{
		base:    newBase(name, opts.InfoLink, opts.Logger),
		backend: chat,
		store:   opts.Store,
		opts:    opts,
	}
}

// Generate implements Agent. The user message joins the history before
// the call; the assistant reply joins it only on success so a failed
// turn never pollutes subsequent context with a phantom response.
func (a *ChatAgent) Generate(ctx context.Context, user, prompt string) string {
	unlock := a.lockTurn(user)
	defer unlock()

	logger := logging.With(a.logger, "agent", a.name, "user", user, "turn_id", core.NewID())
	a.store.Append(user, core.NewUserMessage(prompt))

	reply, err := a.backend.Complete(ctx, a.opts.Instructions, a.store.History(user))
	if err != nil {
		logger.Error("chat.complete_failed", "error", err.Error())
		return core.Degraded(fmt.Sprintf("Could not process prompt: %v", err), err).Flatten()
	}

	a.store.Append(user, core.NewAssistantMessage(reply))
	return reply
}

// HasPreviousConversation implements Agent. Unanswered user messages left
// behind by failed turns do not count as an exchange.
func (a *ChatAgent) HasPreviousConversation(user string) bool {
	return hasAssistantReply(a.store.History(user))
}

// Summarize implements Agent.
func (a *ChatAgent) Summarize(ctx context.Context, user string) string {
	return a.Generate(ctx, user, SummarizePrompt)
}

// Clear implements Agent.
func (a *ChatAgent) Clear(ctx context.Context, user string) string {
	unlock := a.lockTurn(user)
	defer unlock()

	a.store.Clear(user)
	return ClearedMessage
}
