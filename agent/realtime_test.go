package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/backend/realtime"
	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/hupe1980/agentrelay/tool"
)

func newScriptedRealtimeClient(conn *testutil.ScriptedConn) *realtime.Client {
	return realtime.NewClient("", func(o *realtime.Options) {
		o.Dialer = func(_ context.Context) (realtime.Conn, error) { return conn, nil }
		o.MaxReconnectElapsed = time.Second
	})
}

func TestRealtimeAgentStreamsDeltas(t *testing.T) {
	conn := &testutil.ScriptedConn{
		Events: []realtime.ServerEvent{
			{Type: realtime.EventTextDelta, Delta: "Hel"},
			{Type: realtime.EventTextDelta, Delta: "lo."},
			{Type: realtime.EventResponseDone},
		},
	}
	agent := NewRealtimeAgent("realtime", newScriptedRealtimeClient(conn))

	out := agent.Generate(context.Background(), "alice", "Hi")

	assert.Equal(t, "Hello.", out)
	assert.True(t, agent.HasPreviousConversation("alice"))

	written := conn.WrittenEvents()
	// session.update, then the user item, then response.create.
	require.GreaterOrEqual(t, len(written), 3)
	assert.Equal(t, realtime.EventSessionUpdate, written[0].Type)
	assert.Equal(t, realtime.EventItemCreate, written[1].Type)
	assert.Equal(t, realtime.EventResponseCreate, written[2].Type)
}

func TestRealtimeAgentDispatchesToolCalls(t *testing.T) {
	conn := &testutil.ScriptedConn{
		Events: []realtime.ServerEvent{
			{Type: realtime.EventFunctionCallDone, CallID: "call_1", Name: "date_time", Arguments: "{}"},
			{Type: realtime.EventTextDelta, Delta: "It is noon."},
			{Type: realtime.EventResponseDone},
		},
	}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	agent := NewRealtimeAgent("realtime", newScriptedRealtimeClient(conn), func(o *RealtimeAgentOptions) {
		o.Tools = []tool.Tool{
			tool.NewDateTimeTool(func(o *tool.DateTimeOptions) {
				o.Now = func() time.Time { return fixed }
				o.Location = time.UTC
			}),
		}
	})

	out := agent.Generate(context.Background(), "alice", "What time is it?")

	assert.Equal(t, "It is noon.", out)

	var output *realtime.Item
	for _, ev := range conn.WrittenEvents() {
		if ev.Item != nil && ev.Item.Type == "function_call_output" {
			output = ev.Item
		}
	}
	require.NotNil(t, output)
	assert.Equal(t, "call_1", output.CallID)
	assert.Contains(t, output.Output, "current date and time")
}

func TestRealtimeAgentTimeout(t *testing.T) {
	conn := testutil.NewBlockingConn()
	client := realtime.NewClient("", func(o *realtime.Options) {
		o.Dialer = func(_ context.Context) (realtime.Conn, error) { return conn, nil }
		o.MaxReconnectElapsed = time.Second
	})
	agent := NewRealtimeAgent("realtime", client, func(o *RealtimeAgentOptions) {
		o.WaitLimit = time.Second
	})

	out := agent.Generate(context.Background(), "alice", "Hi")

	assert.Equal(t, "No response from Assistant after 1 seconds.", out)
	// The hung session is torn down so the next turn reconnects fresh.
	assert.True(t, conn.Closed())
	assert.False(t, client.Connected())
	assert.False(t, agent.HasPreviousConversation("alice"))
}

func TestRealtimeAgentServerErrorDegrades(t *testing.T) {
	conn := &testutil.ScriptedConn{
		Events: []realtime.ServerEvent{
			{Type: realtime.EventError, Error: &realtime.ErrorDetail{Type: "server_error", Message: "overloaded"}},
		},
	}
	agent := NewRealtimeAgent("realtime", newScriptedRealtimeClient(conn))

	out := agent.Generate(context.Background(), "alice", "Hi")

	assert.Contains(t, out, "overloaded")
}

func TestRealtimeAgentReplaysHistoryOnUserSwitch(t *testing.T) {
	conn := &testutil.ScriptedConn{
		Events: []realtime.ServerEvent{
			{Type: realtime.EventTextDelta, Delta: "For Alice."},
			{Type: realtime.EventResponseDone},
			{Type: realtime.EventTextDelta, Delta: "For Bob."},
			{Type: realtime.EventResponseDone},
		},
	}
	agent := NewRealtimeAgent("realtime", newScriptedRealtimeClient(conn))

	assert.Equal(t, "For Alice.", agent.Generate(context.Background(), "alice", "Hi from Alice"))
	assert.Equal(t, "For Bob.", agent.Generate(context.Background(), "bob", "Hi from Bob"))

	// The user switch rebinds the session: a second session.update must
	// precede Bob's turn, and Alice's history must not replay into it.
	var sessionUpdates int
	var replayedTexts []string
	for _, ev := range conn.WrittenEvents() {
		if ev.Type == realtime.EventSessionUpdate {
			sessionUpdates++
		}
		if ev.Item != nil && len(ev.Item.Content) > 0 {
			replayedTexts = append(replayedTexts, ev.Item.Content[0].Text)
		}
	}
	assert.Equal(t, 2, sessionUpdates)
	assert.Equal(t, []string{"Hi from Alice", "Hi from Bob"}, replayedTexts)
}

func TestRealtimeAgentClearDropsSessionAndHistory(t *testing.T) {
	conn := &testutil.ScriptedConn{
		Events: []realtime.ServerEvent{
			{Type: realtime.EventTextDelta, Delta: "Hi."},
			{Type: realtime.EventResponseDone},
		},
	}
	agent := NewRealtimeAgent("realtime", newScriptedRealtimeClient(conn))

	agent.Generate(context.Background(), "alice", "Hello")
	require.True(t, agent.HasPreviousConversation("alice"))

	out := agent.Clear(context.Background(), "alice")

	assert.Equal(t, ClearedMessage, out)
	assert.False(t, agent.HasPreviousConversation("alice"))
	assert.True(t, conn.Closed)
}
