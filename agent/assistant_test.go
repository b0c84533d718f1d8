package agent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/hupe1980/agentrelay/tool"
)

func TestAssistantAgentCompletedRun(t *testing.T) {
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots: []backend.RunSnapshot{
			{Status: backend.StatusInProgress},
			{Status: backend.StatusCompleted},
		},
		FinalMessage: "Hello from the assistant.",
	}
	agent := NewAssistantAgent("test", hosted, func(o *AssistantAgentOptions) {
		o.PollInterval = time.Millisecond
		o.Instructions = "Be brief."
	})

	out := agent.Generate(context.Background(), "alice", "Hi")

	assert.Equal(t, "Hello from the assistant.", out)
	require.Len(t, hosted.CreatedAssistants, 1)
	assert.Equal(t, "Be brief.", hosted.CreatedAssistants[0].Instructions)
	assert.Equal(t, []string{"Hi"}, hosted.UserMessages)
	assert.True(t, agent.HasPreviousConversation("alice"))
	assert.False(t, agent.HasPreviousConversation("bob"))
}

func TestAssistantAgentTimeout(t *testing.T) {
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots: []backend.RunSnapshot{{Status: backend.StatusInProgress}},
	}
	agent := NewAssistantAgent("test", hosted, func(o *AssistantAgentOptions) {
		o.WaitLimit = 2 * time.Second
		o.PollInterval = 10 * time.Millisecond
	})

	out := agent.Generate(context.Background(), "alice", "Hi")

	assert.Equal(t, "No response from Assistant after 2 seconds.", out)
	assert.False(t, agent.HasPreviousConversation("alice"))
}

func TestAssistantAgentToolRoundTrip(t *testing.T) {
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots: []backend.RunSnapshot{
			{
				Status: backend.StatusRequiresAction,
				PendingCalls: []backend.ToolCall{
					{ID: "call_1", Name: "date_time", Arguments: "{}"},
				},
			},
			{Status: backend.StatusCompleted},
		},
		FinalMessage: "It is noon.",
	}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	agent := NewAssistantAgent("test", hosted, func(o *AssistantAgentOptions) {
		o.PollInterval = time.Millisecond
		o.Tools = []tool.Tool{
			tool.NewDateTimeTool(func(o *tool.DateTimeOptions) {
				o.Now = func() time.Time { return fixed }
				o.Location = time.UTC
			}),
		}
	})

	out := agent.Generate(context.Background(), "alice", "What time is it?")

	assert.Equal(t, "It is noon.", out)
	require.Len(t, hosted.SubmittedOutputs, 1)
	require.Len(t, hosted.SubmittedOutputs[0], 1)
	assert.Equal(t, "call_1", hosted.SubmittedOutputs[0][0].CallID)
	assert.Contains(t, hosted.SubmittedOutputs[0][0].Output, "current date and time")
}

func TestAssistantAgentUnknownToolSubmitsSentinel(t *testing.T) {
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots: []backend.RunSnapshot{
			{
				Status: backend.StatusRequiresAction,
				PendingCalls: []backend.ToolCall{
					{ID: "call_1", Name: "no_such_tool", Arguments: "{}"},
				},
			},
			{Status: backend.StatusCompleted},
		},
		FinalMessage: "Done.",
	}
	agent := NewAssistantAgent("test", hosted, func(o *AssistantAgentOptions) {
		o.PollInterval = time.Millisecond
	})

	out := agent.Generate(context.Background(), "alice", "Hi")

	assert.Equal(t, "Done.", out)
	require.Len(t, hosted.SubmittedOutputs, 1)
	assert.Equal(t, tool.NotSupportedMessage, hosted.SubmittedOutputs[0][0].Output)
}

func TestAssistantAgentFailedRunDegrades(t *testing.T) {
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots: []backend.RunSnapshot{{Status: backend.StatusFailed}},
	}
	agent := NewAssistantAgent("test", hosted, func(o *AssistantAgentOptions) {
		o.PollInterval = time.Millisecond
	})

	out := agent.Generate(context.Background(), "alice", "Hi")

	assert.Contains(t, out, "failed")
	assert.False(t, agent.HasPreviousConversation("alice"))
}

func TestAssistantAgentBackendErrorDegrades(t *testing.T) {
	hosted := &testutil.ScriptedHostedBackend{
		StartRunErr: fmt.Errorf("boom"),
	}
	agent := NewAssistantAgent("test", hosted)

	out := agent.Generate(context.Background(), "alice", "Hi")

	assert.Equal(t, "Could not process prompt: boom", out)
}

func TestAssistantAgentClear(t *testing.T) {
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots:    []backend.RunSnapshot{{Status: backend.StatusCompleted}},
		FinalMessage: "Hi there.",
	}
	agent := NewAssistantAgent("test", hosted, func(o *AssistantAgentOptions) {
		o.PollInterval = time.Millisecond
	})

	agent.Generate(context.Background(), "alice", "Hi")
	require.True(t, agent.HasPreviousConversation("alice"))

	out := agent.Clear(context.Background(), "alice")

	assert.Equal(t, ClearedMessage, out)
	assert.False(t, agent.HasPreviousConversation("alice"))
	assert.Len(t, hosted.DeletedThreads, 1)

	// Clearing an empty conversation is a no-op with the same reply.
	assert.Equal(t, ClearedMessage, agent.Clear(context.Background(), "alice"))
}

func TestAssistantAgentSummarizeUsesFixedPrompt(t *testing.T) {
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots:    []backend.RunSnapshot{{Status: backend.StatusCompleted}},
		FinalMessage: "Summary text.",
	}
	agent := NewAssistantAgent("test", hosted, func(o *AssistantAgentOptions) {
		o.PollInterval = time.Millisecond
	})

	out := agent.Summarize(context.Background(), "alice")

	assert.Equal(t, "Summary text.", out)
	require.Len(t, hosted.UserMessages, 1)
	assert.Equal(t, SummarizePrompt, hosted.UserMessages[0])
}

func TestAssistantAgentExtraMessagesDrain(t *testing.T) {
	notifyTool := tool.NewFunctionTool(
		"noisy",
		"Announces itself.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, tc *tool.Context, _ map[string]any) (any, error) {
			tc.Notify("working on it")
			return "ok", nil
		},
	)
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots: []backend.RunSnapshot{
			{
				Status:       backend.StatusRequiresAction,
				PendingCalls: []backend.ToolCall{{ID: "call_1", Name: "noisy", Arguments: "{}"}},
			},
			{Status: backend.StatusCompleted},
		},
		FinalMessage: "Done.",
	}
	agent := NewAssistantAgent("test", hosted, func(o *AssistantAgentOptions) {
		o.PollInterval = time.Millisecond
		o.Tools = []tool.Tool{notifyTool}
	})

	agent.Generate(context.Background(), "alice", "Hi")

	assert.Equal(t, []string{"working on it"}, agent.ExtraMessages("alice"))
	assert.Empty(t, agent.ExtraMessages("alice"))
}
