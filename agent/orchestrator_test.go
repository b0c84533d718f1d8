package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/hupe1980/agentrelay/tool"
)

func TestOrchestratorRegistersDelegateTools(t *testing.T) {
	writer := NewChatAgent("writer", &testutil.ScriptedChatBackend{Replies: []string{"Prose."}})
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots:    []backend.RunSnapshot{{Status: backend.StatusCompleted}},
		FinalMessage: "Done.",
	}
	orch := NewOrchestrator("orchestrator", hosted, []Delegate{
		{ToolName: "agent_writer", Description: "Delegate writing tasks.", Agent: writer},
	}, func(o *OrchestratorOptions) {
		o.Tools = []tool.Tool{tool.NewDateTimeTool()}
		o.Assistant = []func(o *AssistantAgentOptions){
			func(o *AssistantAgentOptions) { o.PollInterval = time.Millisecond },
		}
	})

	orch.Generate(context.Background(), "alice", "Hi")

	require.Len(t, hosted.CreatedAssistants, 1)
	names := make([]string, 0)
	for _, spec := range hosted.CreatedAssistants[0].Tools {
		names = append(names, spec.Name)
	}
	assert.Equal(t, []string{"date_time", "agent_writer"}, names)
}

func TestOrchestratorDelegateForwardsPrompt(t *testing.T) {
	chat := &testutil.ScriptedChatBackend{Replies: []string{"A poem."}}
	writer := NewChatAgent("writer", chat)
	hosted := &testutil.ScriptedHostedBackend{
		Snapshots: []backend.RunSnapshot{
			{
				Status: backend.StatusRequiresAction,
				PendingCalls: []backend.ToolCall{
					{ID: "call_1", Name: "agent_writer", Arguments: `{"prompt":"Write a poem"}`},
				},
			},
			{Status: backend.StatusCompleted},
		},
		FinalMessage: "Here is the poem.",
	}
	orch := NewOrchestrator("orchestrator", hosted, []Delegate{
		{ToolName: "agent_writer", Description: "Delegate writing tasks.", Agent: writer},
	}, func(o *OrchestratorOptions) {
		o.Assistant = []func(o *AssistantAgentOptions){
			func(o *AssistantAgentOptions) { o.PollInterval = time.Millisecond },
		}
	})

	out := orch.Generate(context.Background(), "alice", "I want a poem")

	assert.Equal(t, "Here is the poem.", out)
	require.Len(t, hosted.SubmittedOutputs, 1)
	assert.Equal(t, "A poem.", hosted.SubmittedOutputs[0][0].Output)
	// The delegated turn is recorded under the same user on the sub-agent.
	assert.True(t, writer.HasPreviousConversation("alice"))
	// The hop announcement lands on the side channel.
	extras := orch.ExtraMessages("alice")
	require.Len(t, extras, 1)
	assert.Equal(t, "Asking the writer agent: Write a poem", extras[0])
}

func TestOrchestratorClearCascades(t *testing.T) {
	writerChat := &testutil.ScriptedChatBackend{Replies: []string{"Text."}}
	writer := NewChatAgent("writer", writerChat)
	researcherChat := &testutil.ScriptedChatBackend{Replies: []string{"Facts."}}
	researcher := NewChatAgent("researcher", researcherChat)

	hosted := &testutil.ScriptedHostedBackend{
		Snapshots:    []backend.RunSnapshot{{Status: backend.StatusCompleted}},
		FinalMessage: "Done.",
	}
	orch := NewOrchestrator("orchestrator", hosted, []Delegate{
		{ToolName: "agent_writer", Description: "Writing.", Agent: writer},
		{ToolName: "agent_researcher", Description: "Research.", Agent: researcher},
	}, func(o *OrchestratorOptions) {
		o.Assistant = []func(o *AssistantAgentOptions){
			func(o *AssistantAgentOptions) { o.PollInterval = time.Millisecond },
		}
	})

	orch.Generate(context.Background(), "alice", "Hi")
	writer.Generate(context.Background(), "alice", "Write")
	researcher.Generate(context.Background(), "alice", "Research")
	require.True(t, writer.HasPreviousConversation("alice"))
	require.True(t, researcher.HasPreviousConversation("alice"))

	out := orch.Clear(context.Background(), "alice")

	assert.Equal(t, ClearedMessage, out)
	assert.False(t, orch.HasPreviousConversation("alice"))
	assert.False(t, writer.HasPreviousConversation("alice"))
	assert.False(t, researcher.HasPreviousConversation("alice"))
}
