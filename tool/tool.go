// Package tool implements the function calling subsystem that lets backend
// models invoke structured capabilities (search, mailbox, calendar, weather,
// image generation, sub-agent delegation) with schema validated arguments
// and uniform degrade-to-string error handling.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/logging"
)

// Spec is the declarative description of a tool as exposed to a backend
// model: unique name, natural language description and a JSON-schema-like
// parameter object. Specs are immutable after agent construction and passed
// verbatim to the model on every turn.
type Spec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Tool is a named, schema-described capability the backend model may request
// invocation of mid-turn.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully; failures degrade the conversation, they
//     never abort it
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns the description provided to the LLM so it can
	// decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool. Arguments have been parsed from JSON and
	// validated against the tool's schema. The returned value is
	// stringified by the Dispatcher before being handed back to the model.
	Call(ctx context.Context, tc *Context, args map[string]any) (any, error)
}

// Context carries per-invocation information into a tool handler: the user
// the turn belongs to, the original prompt, a progress side channel and a
// logger.
type Context struct {
	// User is the identity the current turn belongs to.
	User string
	// Prompt is the original user prompt that started the turn.
	Prompt string
	// CallID correlates this invocation with the model's tool call request.
	CallID string

	logger logging.Logger
	notify func(message string)
}

// NewContext builds a tool Context. notify may be nil when the caller has no
// progress side channel.
func NewContext(user, prompt, callID string, logger logging.Logger, notify func(string)) *Context {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{User: user, Prompt: prompt, CallID: callID, logger: logger, notify: notify}
}

// Logger returns the invocation logger.
func (tc *Context) Logger() logging.Logger { return tc.logger }

// Notify emits a human-readable progress annotation ("Searching X for Y…")
// to the side channel drained by the host independently of the model-visible
// conversation.
func (tc *Context) Notify(format string, args ...any) {
	if tc.notify == nil {
		return
	}
	tc.notify(fmt.Sprintf(format, args...))
}

// ValidationError re-exports the internal validation error type so tool
// authors can match on it.
type ValidationError = util.ValidationError
