package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/internal/util"
)

func echoTool() *FunctionTool {
	return NewFunctionTool(
		"echo",
		"Echo the input back.",
		util.ObjectSchema(map[string]any{"text": util.StringParam("Text to echo")}, "text"),
		func(_ context.Context, _ *Context, args map[string]any) (any, error) {
			return args["text"], nil
		},
	)
}

func TestDispatcherUnknownToolReturnsSentinel(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))
	out := d.Handle(context.Background(), "alice", "prompt", "call-1", "hallucinated_tool", "{}")
	assert.Equal(t, NotSupportedMessage, out)
}

func TestDispatcherHandlesEcho(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))
	out := d.Handle(context.Background(), "alice", "prompt", "call-1", "echo", `{"text":"hello"}`)
	assert.Equal(t, "hello", out)
}

func TestDispatcherMalformedArguments(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))
	out := d.Handle(context.Background(), "alice", "prompt", "call-1", "echo", `{"text":`)
	assert.Contains(t, out, "Could not parse arguments for echo")
}

func TestDispatcherMissingRequiredArgument(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))
	out := d.Handle(context.Background(), "alice", "prompt", "call-1", "echo", `{}`)
	assert.Equal(t, ProcessingErrorMessage, out)
}

func TestDispatcherHandlerErrorDegrades(t *testing.T) {
	failing := NewFunctionTool("boom", "Always fails.", util.ObjectSchema(map[string]any{}),
		func(_ context.Context, _ *Context, _ map[string]any) (any, error) {
			return nil, errors.New("backend unavailable")
		})
	d := NewDispatcher(NewRegistry(failing))
	out := d.Handle(context.Background(), "alice", "prompt", "call-1", "boom", "{}")
	assert.Equal(t, "Error processing tool", out)
}

func TestDispatcherHandlerPanicRecovered(t *testing.T) {
	panicking := NewFunctionTool("kaboom", "Always panics.", util.ObjectSchema(map[string]any{}),
		func(_ context.Context, _ *Context, _ map[string]any) (any, error) {
			panic("unexpected state")
		})
	d := NewDispatcher(NewRegistry(panicking))
	out := d.Handle(context.Background(), "alice", "prompt", "call-1", "kaboom", "{}")
	assert.Equal(t, ProcessingErrorMessage, out)
}

func TestDispatcherTruncatesAtCap(t *testing.T) {
	long := NewFunctionTool("long", "Returns a long string.", util.ObjectSchema(map[string]any{}),
		func(_ context.Context, _ *Context, _ map[string]any) (any, error) {
			return strings.Repeat("x", 500), nil
		})
	d := NewDispatcher(NewRegistry(long), func(o *DispatcherOptions) { o.MaxOutput = 100 })
	out := d.Handle(context.Background(), "alice", "prompt", "call-1", "long", "{}")
	// Marker counted inside the cap: result is exactly cap bytes.
	assert.Len(t, out, 100)
	assert.True(t, strings.HasSuffix(out, TruncationMarker))
}

func TestDispatcherNotifyReachesSideChannel(t *testing.T) {
	var gotUser, gotMsg string
	noisy := NewFunctionTool("noisy", "Announces progress.", util.ObjectSchema(map[string]any{}),
		func(_ context.Context, tc *Context, _ map[string]any) (any, error) {
			tc.Notify("Searching %s for %s…", "the web", "news")
			return "done", nil
		})
	d := NewDispatcher(NewRegistry(noisy), func(o *DispatcherOptions) {
		o.Notify = func(user, message string) { gotUser, gotMsg = user, message }
	})
	out := d.Handle(context.Background(), "alice", "prompt", "call-1", "noisy", "{}")
	assert.Equal(t, "done", out)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "Searching the web for news…", gotMsg)
}

func TestDispatcherStringifiesStructuredResults(t *testing.T) {
	structured := NewFunctionTool("weather", "Structured result.", util.ObjectSchema(map[string]any{}),
		func(_ context.Context, _ *Context, _ map[string]any) (any, error) {
			return map[string]any{"temp": 72.5}, nil
		})
	d := NewDispatcher(NewRegistry(structured))
	out := d.Handle(context.Background(), "alice", "prompt", "call-1", "weather", "{}")
	assert.JSONEq(t, `{"temp":72.5}`, out)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, strings.Repeat("a", 100), Truncate(strings.Repeat("a", 100), 100))

	out := Truncate(strings.Repeat("a", 101), 100)
	assert.Len(t, out, 100)
	assert.True(t, strings.HasSuffix(out, TruncationMarker))

	// Degenerate cap smaller than the marker still honors the cap.
	assert.Len(t, Truncate(strings.Repeat("a", 50), 4), 4)

	// Cap disabled.
	assert.Len(t, Truncate(strings.Repeat("a", 50), -1), 50)
}

func TestDateTimeTool(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	dt := NewDateTimeTool(func(o *DateTimeOptions) {
		o.Now = func() time.Time { return fixed }
		o.Location = time.UTC
	})
	out, err := dt.Call(context.Background(), NewContext("alice", "", "", nil, nil), map[string]any{})
	require.NoError(t, err)
	s, ok := out.(string)
	require.True(t, ok)
	assert.Contains(t, s, "current date and time")
	assert.Contains(t, s, "2025-06-01 12:30:00")
}
