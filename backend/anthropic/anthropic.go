// Package anthropic adapts the Anthropic SDK to the backend.ChatBackend
// interface. The writer and researcher sub-agents run on it with role
// instructions supplied as the system prompt.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/core"
)

// Options configure the Anthropic backend adapter.
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
}

// Backend wraps an Anthropic client behind backend.ChatBackend.
type Backend struct {
	client anthropic.Client
	opts   Options
}

var _ backend.ChatBackend = (*Backend)(nil)

// New creates an adapter reading credentials from the environment.
func New(optFns ...func(o *Options)) *Backend {
	return NewFromClient(anthropic.NewClient(), optFns...)
}

// NewWithAPIKey creates an adapter for an explicit API key.
func NewWithAPIKey(apiKey string, optFns ...func(o *Options)) *Backend {
	return NewFromClient(anthropic.NewClient(option.WithAPIKey(apiKey)), optFns...)
}

// NewFromClient creates an adapter from an existing client.
func NewFromClient(client anthropic.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:     anthropic.ModelClaude3_5SonnetLatest,
		MaxTokens: 2000,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// Complete implements backend.ChatBackend. The Messages API requires
// alternating user/assistant turns starting with user, so consecutive
// same-role history entries are coalesced and tool-role entries folded into
// the user turn.
func (b *Backend) Complete(ctx context.Context, instructions string, history []core.Message) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     b.opts.Model,
		MaxTokens: b.opts.MaxTokens,
		Messages:  buildMessages(history),
	}
	if instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: instructions}}
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("message returned no text content")
	}
	return text.String(), nil
}

func buildMessages(history []core.Message) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	var pending []string
	pendingRole := core.RoleUser

	flush := func() {
		if len(pending) == 0 {
			return
		}
		block := anthropic.NewTextBlock(strings.Join(pending, "\n\n"))
		if pendingRole == core.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
		pending = nil
	}

	for _, msg := range history {
		role := msg.Role
		if role != core.RoleAssistant {
			role = core.RoleUser // tool and system entries fold into the user turn
		}
		if role != pendingRole {
			flush()
			pendingRole = role
		}
		pending = append(pending, msg.Content)
	}
	flush()
	return messages
}
