package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/lifecycle"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/tool"
)

// AssistantAgentOptions configure the hosted polling run loop.
type AssistantAgentOptions struct {
	// Model overrides the backend's default model for the hosted assistant.
	Model string
	// Instructions is the system prompt bound to the hosted assistant.
	Instructions string
	// Tools is the declarative catalog exposed to the model on every turn.
	Tools []tool.Tool
	// WaitLimit is the wall-clock budget for one turn.
	WaitLimit time.Duration
	// PollInterval is the fixed spacing between run status checks.
	PollInterval time.Duration
	// MaxToolOutput caps each tool result; see tool.DispatcherOptions.
	MaxToolOutput int
	// Recovery, when set, receives every created assistant id for orphan
	// cleanup on the next process start.
	Recovery *lifecycle.RecoveryFile
	InfoLink string
	Logger   logging.Logger
}

// AssistantAgent drives the hosted-assistant protocol: conversation state
// (assistant, thread, run) lives server-side and is polled for completion.
// Tool calls surfaced in the requires_action state are dispatched locally
// and their outputs submitted back in one batch.
type AssistantAgent struct {
	base
	backend    backend.HostedBackend
	registry   *tool.Registry
	dispatcher *tool.Dispatcher
	opts       AssistantAgentOptions

	stateMu     sync.Mutex
	assistantID string
	threads     map[string]string // user -> hosted thread id
	responses   map[string]int    // user -> completed turn count
}

var _ Agent = (*AssistantAgent)(nil)

// NewAssistantAgent constructs a hosted polling agent over the given
// backend.
func NewAssistantAgent(name string, hosted backend.HostedBackend, optFns ...func(o *AssistantAgentOptions)) *AssistantAgent {
	opts := AssistantAgentOptions{
		WaitLimit:    300 * time.Second,
		PollInterval: time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &AssistantAgent{
		base:      newBase(name, opts.InfoLink, opts.Logger),
		backend:   hosted,
		registry:  tool.NewRegistry(opts.Tools...),
		opts:      opts,
		threads:   make(map[string]string),
		responses: make(map[string]int),
	}
	a.dispatcher = tool.NewDispatcher(a.registry, func(o *tool.DispatcherOptions) {
		o.MaxOutput = opts.MaxToolOutput
		o.Logger = a.logger
		o.Notify = a.pushExtra
	})
	return a
}

// Registry exposes the agent's tool catalog.
func (a *AssistantAgent) Registry() *tool.Registry { return a.registry }

// Generate implements Agent.
func (a *AssistantAgent) Generate(ctx context.Context, user, prompt string) string {
	unlock := a.lockTurn(user)
	defer unlock()
	return a.run(ctx, user, prompt).Flatten()
}

// run drives one turn to a typed outcome. Every log line of the turn
// carries the same generated turn id so interleaved users stay separable.
func (a *AssistantAgent) run(ctx context.Context, user, prompt string) core.Outcome {
	logger := logging.With(a.logger, "agent", a.name, "user", user, "turn_id", core.NewID())

	assistantID, err := a.ensureAssistant(ctx)
	if err != nil {
		logger.Error("run.assistant_create_failed", "error", err.Error())
		return core.Degraded(fmt.Sprintf("Could not create Assistant: %v", err), err)
	}
	threadID, err := a.ensureThread(ctx, user)
	if err != nil {
		logger.Error("run.thread_create_failed", "error", err.Error())
		return core.Degraded(fmt.Sprintf("Could not create Assistant Thread: %v", err), err)
	}

	if err := a.backend.AddUserMessage(ctx, threadID, prompt); err != nil {
		return core.Degraded(fmt.Sprintf("Could not process prompt: %v", err), err)
	}
	runID, err := a.backend.StartRun(ctx, threadID, assistantID)
	if err != nil {
		return core.Degraded(fmt.Sprintf("Could not process prompt: %v", err), err)
	}

	deadline := time.Now().Add(a.opts.WaitLimit)
	for time.Now().Before(deadline) {
		snapshot, err := a.backend.PollRun(ctx, threadID, runID)
		if err != nil {
			return core.Degraded(fmt.Sprintf("Could not process prompt: %v", err), err)
		}

		switch {
		case snapshot.Status == backend.StatusCompleted:
			return a.finishRun(ctx, user, threadID)

		case snapshot.Status == backend.StatusRequiresAction:
			a.submitToolOutputs(ctx, logger, user, prompt, threadID, runID, snapshot.PendingCalls)

		case snapshot.Status.Terminal():
			// Backend-reported failure, distinct from a wall-clock timeout.
			logger.Warn("run.failed", "status", string(snapshot.Status))
			return core.Degraded(fmt.Sprintf("The Assistant run ended with status %s.", snapshot.Status), nil)

		default:
			if err := sleepCtx(ctx, a.opts.PollInterval); err != nil {
				return core.Degraded(fmt.Sprintf("Could not process prompt: %v", err), err)
			}
		}
	}

	logger.Warn("run.timeout", "wait_limit", a.opts.WaitLimit.String())
	return core.Timeout(fmt.Sprintf("No response from Assistant after %d seconds.", int(a.opts.WaitLimit.Seconds())))
}

func (a *AssistantAgent) finishRun(ctx context.Context, user, threadID string) core.Outcome {
	text, err := a.backend.LatestAssistantMessage(ctx, threadID)
	if err != nil {
		return core.Degraded(fmt.Sprintf("Could not fetch Assistant response: %v", err), err)
	}
	a.stateMu.Lock()
	a.responses[user]++
	a.stateMu.Unlock()
	return core.Success(text)
}

// submitToolOutputs answers every pending call before resubmission; an
// unanswered call id would stall the run. Submission failures are logged
// and polling continues, matching the keep-the-session-alive policy.
func (a *AssistantAgent) submitToolOutputs(ctx context.Context, logger logging.Logger, user, prompt, threadID, runID string, calls []backend.ToolCall) {
	outputs := make([]backend.ToolOutput, 0, len(calls))
	for _, call := range calls {
		outputs = append(outputs, backend.ToolOutput{
			CallID: call.ID,
			Output: a.dispatcher.Handle(ctx, user, prompt, call.ID, call.Name, call.Arguments),
		})
	}
	if err := a.backend.SubmitToolOutputs(ctx, threadID, runID, outputs); err != nil {
		logger.Error("run.submit_tool_outputs_failed", "error", err.Error())
	}
}

func (a *AssistantAgent) ensureAssistant(ctx context.Context) (string, error) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if a.assistantID != "" {
		return a.assistantID, nil
	}

	id, err := a.backend.CreateAssistant(ctx, backend.AssistantConfig{
		Name:         a.name,
		Model:        a.opts.Model,
		Instructions: a.opts.Instructions,
		Tools:        a.registry.Specs(),
	})
	if err != nil {
		return "", err
	}
	if a.opts.Recovery != nil {
		// Flushed immediately: an id that never hits disk leaks until the
		// next process start reaps it.
		if rerr := a.opts.Recovery.Record(id); rerr != nil {
			a.logger.Warn("run.recovery_record_failed", "agent", a.name, "assistant_id", id, "error", rerr.Error())
		}
	}
	a.assistantID = id
	return id, nil
}

func (a *AssistantAgent) ensureThread(ctx context.Context, user string) (string, error) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if id, ok := a.threads[user]; ok {
		return id, nil
	}
	id, err := a.backend.CreateThread(ctx)
	if err != nil {
		return "", err
	}
	a.threads[user] = id
	return id, nil
}

// HasPreviousConversation implements Agent.
func (a *AssistantAgent) HasPreviousConversation(user string) bool {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	_, hasThread := a.threads[user]
	return hasThread && a.responses[user] > 0
}

// Summarize implements Agent.
func (a *AssistantAgent) Summarize(ctx context.Context, user string) string {
	return a.Generate(ctx, user, SummarizePrompt)
}

// Clear implements Agent. The hosted thread is deleted and recreated; the
// caller must not assume the underlying resource identity survives. A
// failed deletion is swallowed: an agent without a usable thread is worse
// than an orphaned one.
func (a *AssistantAgent) Clear(ctx context.Context, user string) string {
	unlock := a.lockTurn(user)
	defer unlock()

	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	if oldID, ok := a.threads[user]; ok {
		if err := a.backend.DeleteThread(ctx, oldID); err != nil {
			a.logger.Warn("run.thread_delete_failed", "agent", a.name, "user", user, "error", err.Error())
		}
		delete(a.threads, user)
	}
	if id, err := a.backend.CreateThread(ctx); err == nil {
		a.threads[user] = id
	} else {
		a.logger.Warn("run.thread_create_failed", "agent", a.name, "user", user, "error", err.Error())
	}
	a.responses[user] = 0
	return ClearedMessage
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
