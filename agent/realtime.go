package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentrelay/backend/realtime"
	"github.com/hupe1980/agentrelay/conversation"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/tool"
)

// RealtimeAgentOptions configure a streaming websocket agent.
type RealtimeAgentOptions struct {
	// Instructions is bound to the session on every (re)connect.
	Instructions string
	// Tools is the declarative catalog advertised in the session config.
	Tools []tool.Tool
	// WaitLimit bounds one full turn including tool round-trips.
	WaitLimit time.Duration
	// MaxToolOutput caps each tool result; see tool.DispatcherOptions.
	MaxToolOutput int
	// Store holds the per-user history used for replay after reconnect.
	Store    conversation.Store
	InfoLink string
	Logger   logging.Logger
}

// RealtimeAgent holds a single persistent websocket session shared across
// users. The connection carries one conversation at a time: each turn
// reconfigures the session and replays the turn owner's history, so users
// never observe each other's context.
type RealtimeAgent struct {
	base
	client     *realtime.Client
	store      conversation.Store
	registry   *tool.Registry
	dispatcher *tool.Dispatcher
	opts       RealtimeAgentOptions

	// connMu serializes all socket use; connUser is the user whose
	// history the live session currently holds, guarded by connMu.
	connMu   sync.Mutex
	connUser string
}

var _ Agent = (*RealtimeAgent)(nil)

// NewRealtimeAgent constructs a streaming agent over the given client.
func NewRealtimeAgent(name string, client *realtime.Client, optFns ...func(o *RealtimeAgentOptions)) *RealtimeAgent {
	opts := RealtimeAgentOptions{
		WaitLimit: 300 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = conversation.NewInMemoryStore()
	}

	a := &RealtimeAgent{
		base:     newBase(name, opts.InfoLink, opts.Logger),
		client:   client,
		store:    opts.Store,
		registry: tool.NewRegistry(opts.Tools...),
		opts:     opts,
	}
	a.dispatcher = tool.NewDispatcher(a.registry, func(o *tool.DispatcherOptions) {
		o.MaxOutput = opts.MaxToolOutput
		o.Logger = a.logger
		o.Notify = a.pushExtra
	})
	return a
}

// Generate implements Agent. The whole turn runs under the connection
// lock: the websocket is a single full-duplex stream and interleaved
// turns would corrupt each other's responses.
func (a *RealtimeAgent) Generate(ctx context.Context, user, prompt string) string {
	a.connMu.Lock()
	defer a.connMu.Unlock()
	return a.turn(ctx, user, prompt).Flatten()
}

// turn drives one request/response cycle. All of its log lines share one
// generated turn id.
func (a *RealtimeAgent) turn(ctx context.Context, user, prompt string) core.Outcome {
	logger := logging.With(a.logger, "agent", a.name, "user", user, "turn_id", core.NewID())

	if err := a.ensureSession(ctx, user); err != nil {
		logger.Error("realtime.connect_failed", "error", err.Error())
		return core.Degraded(fmt.Sprintf("Could not connect to the realtime session: %v", err), err)
	}

	if err := a.client.CreateItem(realtime.NewUserItem(prompt)); err != nil {
		return a.retryTurn(ctx, logger, user, prompt, err)
	}
	a.store.Append(user, core.NewUserMessage(prompt))

	if err := a.client.CreateResponse(); err != nil {
		return a.retryTurn(ctx, logger, user, prompt, err)
	}
	return a.collectResponse(ctx, logger, user, prompt)
}

// retryTurn tears the session down and replays the turn once. Replay
// happens before the retried send, so the dropped prompt is not lost.
func (a *RealtimeAgent) retryTurn(ctx context.Context, logger logging.Logger, user, prompt string, cause error) core.Outcome {
	logger.Warn("realtime.retry", "error", cause.Error())
	a.client.Close()
	a.connUser = ""
	if err := a.ensureSession(ctx, user); err != nil {
		return core.Degraded(fmt.Sprintf("Could not connect to the realtime session: %v", err), err)
	}
	if err := a.client.CreateItem(realtime.NewUserItem(prompt)); err != nil {
		return core.Degraded(fmt.Sprintf("Could not process prompt: %v", err), err)
	}
	a.store.Append(user, core.NewUserMessage(prompt))
	if err := a.client.CreateResponse(); err != nil {
		return core.Degraded(fmt.Sprintf("Could not process prompt: %v", err), err)
	}
	return a.collectResponse(ctx, logger, user, prompt)
}

// errWaitLimit marks a read that outlived the turn's wait budget, as
// opposed to a transport failure.
var errWaitLimit = errors.New("wait limit exceeded")

// collectResponse reads server events until the response completes, the
// wait limit expires, or the stream errors. Text deltas accumulate in
// order; completed tool calls are dispatched inline and their outputs
// pushed back so the model can continue the same response.
func (a *RealtimeAgent) collectResponse(ctx context.Context, logger logging.Logger, user, prompt string) core.Outcome {
	deadline := time.Now().Add(a.opts.WaitLimit)
	var buf strings.Builder

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return a.timeout(logger)
		}

		event, err := a.readEvent(ctx, remaining)
		if err != nil {
			if errors.Is(err, errWaitLimit) {
				return a.timeout(logger)
			}
			a.client.Close()
			a.connUser = ""
			return core.Degraded(fmt.Sprintf("Could not read from the realtime session: %v", err), err)
		}

		switch event.Type {
		case realtime.EventTextDelta:
			buf.WriteString(event.Delta)

		case realtime.EventFunctionCallDone:
			output := a.dispatcher.Handle(ctx, user, prompt, event.CallID, event.Name, event.Arguments)
			a.store.Append(user, core.NewToolMessage(output))
			if err := a.client.SubmitToolOutput(event.CallID, output); err != nil {
				a.client.Close()
				a.connUser = ""
				return core.Degraded(fmt.Sprintf("Could not submit tool output: %v", err), err)
			}

		case realtime.EventResponseDone:
			text := buf.String()
			a.store.Append(user, core.NewAssistantMessage(text))
			return core.Success(text)

		case realtime.EventError:
			detail := "unknown error"
			if event.Error != nil {
				detail = event.Error.Message
			}
			logger.Error("realtime.server_error", "error", detail)
			return core.Degraded(fmt.Sprintf("The realtime session reported an error: %s", detail), nil)
		}
	}
}

// timeout tears the session down and returns the fixed timeout response.
// The dropped connection also unblocks the orphaned reader goroutine.
func (a *RealtimeAgent) timeout(logger logging.Logger) core.Outcome {
	logger.Warn("realtime.timeout", "wait_limit", a.opts.WaitLimit.String())
	a.client.Close()
	a.connUser = ""
	return core.Timeout(fmt.Sprintf("No response from Assistant after %d seconds.", int(a.opts.WaitLimit.Seconds())))
}

// readEvent bounds a single blocking read by the remaining turn budget. A
// read outliving the budget surfaces as errWaitLimit, distinct from
// transport errors, so the caller can report the fixed timeout response.
type eventResult struct {
	event realtime.ServerEvent
	err   error
}

func (a *RealtimeAgent) readEvent(ctx context.Context, limit time.Duration) (realtime.ServerEvent, error) {
	ch := make(chan eventResult, 1)
	go func() {
		event, err := a.client.Read()
		ch <- eventResult{event: event, err: err}
	}()

	timer := time.NewTimer(limit)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.event, res.err
	case <-ctx.Done():
		return realtime.ServerEvent{}, ctx.Err()
	case <-timer.C:
		return realtime.ServerEvent{}, errWaitLimit
	}
}

// ensureSession connects if needed and rebinds the session to the turn
// owner, replaying their stored history when the owner changes.
func (a *RealtimeAgent) ensureSession(ctx context.Context, user string) error {
	if a.client.Connected() {
		if a.connUser == user {
			return nil
		}
		// Owner change: drop the socket so the reconnect resends the
		// session config and replays only the new owner's history.
		a.client.Close()
	}

	session := realtime.SessionConfig{
		Instructions: a.opts.Instructions,
		Tools:        realtime.DeclsFromSpecs(a.registry.Specs()),
	}
	if err := a.client.EnsureConnected(ctx, session, itemsFromHistory(a.store.History(user))); err != nil {
		return err
	}
	a.connUser = user
	return nil
}

func itemsFromHistory(history []core.Message) []realtime.Item {
	items := make([]realtime.Item, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case core.RoleUser:
			items = append(items, realtime.NewUserItem(msg.Content))
		case core.RoleAssistant:
			items = append(items, realtime.NewAssistantItem(msg.Content))
		}
	}
	return items
}

// HasPreviousConversation implements Agent. Only a completed exchange
// counts: tool outputs and unanswered prompts are not a conversation.
func (a *RealtimeAgent) HasPreviousConversation(user string) bool {
	return hasAssistantReply(a.store.History(user))
}

// Summarize implements Agent.
func (a *RealtimeAgent) Summarize(ctx context.Context, user string) string {
	return a.Generate(ctx, user, SummarizePrompt)
}

// Clear implements Agent. The session is torn down so the next turn
// starts from an empty replay rather than the server-side context.
func (a *RealtimeAgent) Clear(ctx context.Context, user string) string {
	a.connMu.Lock()
	defer a.connMu.Unlock()

	a.store.Clear(user)
	a.client.Close()
	a.connUser = ""
	return ClearedMessage
}
