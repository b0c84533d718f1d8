package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentrelay/logging"
)

const (
	// NotSupportedMessage is returned when a model requests a tool absent
	// from the registry. A hallucinated tool call degrades the conversation
	// rather than aborting it.
	NotSupportedMessage = "Tool not supported"

	// ProcessingErrorMessage substitutes the output of any handler that
	// fails or panics. The failure detail goes to the log, never back to
	// the model.
	ProcessingErrorMessage = "Error processing tool"

	// TruncationMarker is appended to outputs cut at the dispatcher's size
	// cap. The marker is counted inside the cap, so truncated outputs are
	// exactly cap bytes long.
	TruncationMarker = "... [truncated]"

	// DefaultMaxOutput bounds tool outputs handed back to the model.
	// Hosted-assistant backends reject or degrade on oversized outputs.
	DefaultMaxOutput = 64 * 1024
)

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	// MaxOutput caps each handler's stringified result. Zero selects
	// DefaultMaxOutput; negative disables the cap.
	MaxOutput int
	Logger    logging.Logger
	// Notify receives progress annotations for the user's side channel.
	Notify func(user, message string)
}

// Dispatcher maps a model-requested tool invocation to the registered
// handler, normalizes the result to text and enforces the per-tool output
// size cap. Every failure mode — unknown tool, malformed arguments, handler
// error, handler panic — is converted to a text result so one bad tool never
// aborts a multi-tool turn.
type Dispatcher struct {
	registry  *Registry
	maxOutput int
	logger    logging.Logger
	notify    func(user, message string)
}

// NewDispatcher constructs a Dispatcher over the given registry.
func NewDispatcher(registry *Registry, optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	maxOutput := opts.MaxOutput
	if maxOutput == 0 {
		maxOutput = DefaultMaxOutput
	}
	return &Dispatcher{
		registry:  registry,
		maxOutput: maxOutput,
		logger:    opts.Logger,
		notify:    opts.Notify,
	}
}

// Handle executes one tool invocation request and returns the output text
// submitted back to the model. It never returns an error.
func (d *Dispatcher) Handle(ctx context.Context, user, prompt, callID, name, rawArgs string) string {
	t, ok := d.registry.Lookup(name)
	if !ok {
		d.logger.Warn("tool.dispatch.unknown", "tool", name, "user", user)
		return NotSupportedMessage
	}

	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			// Unparseable arguments are a protocol violation by the model;
			// treat like a handler failure and keep the turn alive.
			d.logger.Warn("tool.dispatch.bad_args", "tool", name, "error", err.Error())
			return d.truncate(fmt.Sprintf("Could not parse arguments for %s: %v", name, err))
		}
	}

	tc := NewContext(user, prompt, callID, d.logger, d.userNotify(user))

	result, err := d.call(ctx, t, tc, args)
	if err != nil {
		d.logger.Error("tool.dispatch.error", "tool", name, "user", user, "error", err.Error())
		return ProcessingErrorMessage
	}
	return d.truncate(Stringify(result))
}

// call invokes the tool with panic recovery.
func (d *Dispatcher) call(ctx context.Context, t Tool, tc *Context, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool.dispatch.panic", "tool", t.Name(), "recover", fmt.Sprintf("%v", r))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Call(ctx, tc, args)
}

func (d *Dispatcher) userNotify(user string) func(string) {
	if d.notify == nil {
		return nil
	}
	return func(message string) { d.notify(user, message) }
}

func (d *Dispatcher) truncate(s string) string {
	return Truncate(s, d.maxOutput)
}

// Truncate cuts s to at most max bytes including the truncation marker, so
// the result of an oversized input is exactly max bytes long. A max < 1
// disables truncation.
func Truncate(s string, max int) string {
	if max < 1 || len(s) <= max {
		return s
	}
	if max <= len(TruncationMarker) {
		return TruncationMarker[:max]
	}
	return s[:max-len(TruncationMarker)] + TruncationMarker
}

// Stringify normalizes a handler result to the text handed back to the
// model. Strings pass through; everything else is JSON encoded with a
// fmt fallback.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case error:
		return val.Error()
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
