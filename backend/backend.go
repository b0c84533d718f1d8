package backend

import (
	"context"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

// RunStatus mirrors the hosted-assistant run lifecycle.
type RunStatus string

const (
	// StatusQueued means the run is waiting to be picked up.
	StatusQueued RunStatus = "queued"
	// StatusInProgress means the model is generating.
	StatusInProgress RunStatus = "in_progress"
	// StatusRequiresAction means the run is blocked on tool outputs.
	StatusRequiresAction RunStatus = "requires_action"
	// StatusCompleted is the terminal success state.
	StatusCompleted RunStatus = "completed"
	// StatusFailed is a backend-reported terminal failure.
	StatusFailed RunStatus = "failed"
	// StatusExpired means the backend gave up on the run.
	StatusExpired RunStatus = "expired"
	// StatusCancelled means the run was cancelled server-side.
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status ends the run. requires_action is not
// terminal: it resumes once tool outputs are submitted.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// ToolCall is a tool invocation request surfaced by the backend model. It is
// consumed exactly once and must be answered exactly once with a matching
// ToolOutput; an unanswered call id is a protocol violation that stalls the
// run.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON argument payload
}

// ToolOutput answers a ToolCall. CallID must equal the originating call's ID.
type ToolOutput struct {
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// RunSnapshot is one observation of a hosted run: its status plus, in the
// requires_action state, the pending tool calls awaiting outputs.
type RunSnapshot struct {
	Status       RunStatus
	PendingCalls []ToolCall
}

// AssistantConfig describes the hosted assistant resource an agent needs.
type AssistantConfig struct {
	Name         string
	Model        string
	Instructions string
	Tools        []tool.Spec
}

// HostedBackend is the capability surface of a vendor where conversation
// state (assistant, thread, run) lives server-side and is polled for
// completion.
type HostedBackend interface {
	// CreateAssistant provisions the hosted assistant resource and returns
	// its id. Callers persist the id for later orphan cleanup.
	CreateAssistant(ctx context.Context, cfg AssistantConfig) (string, error)
	// DeleteAssistant removes a hosted assistant.
	DeleteAssistant(ctx context.Context, assistantID string) error
	// CreateThread provisions a fresh hosted conversation thread.
	CreateThread(ctx context.Context) (string, error)
	// DeleteThread removes a hosted thread and its history.
	DeleteThread(ctx context.Context, threadID string) error
	// AddUserMessage appends a user message to the thread.
	AddUserMessage(ctx context.Context, threadID, text string) error
	// StartRun binds the assistant to the thread and starts generating.
	StartRun(ctx context.Context, threadID, assistantID string) (string, error)
	// PollRun retrieves the current run state.
	PollRun(ctx context.Context, threadID, runID string) (RunSnapshot, error)
	// SubmitToolOutputs answers every pending tool call in one batch.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error
	// LatestAssistantMessage returns the most recent assistant message text.
	LatestAssistantMessage(ctx context.Context, threadID string) (string, error)
}

// ChatBackend is the capability surface of a direct completion vendor: the
// full history travels with every request and one call yields one assistant
// message.
type ChatBackend interface {
	Complete(ctx context.Context, instructions string, history []core.Message) (string, error)
}

// ImageBackend generates an image for a prompt and returns a displayable
// reference (typically a URL).
type ImageBackend interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
