package agentrelay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/internal/testutil"
)

func TestRelayRoutesToNamedAgent(t *testing.T) {
	relay := New()
	relay.Register(agent.NewChatAgent("writer", &testutil.ScriptedChatBackend{Replies: []string{"Prose."}}))
	relay.Register(agent.NewChatAgent("researcher", &testutil.ScriptedChatBackend{Replies: []string{"Facts."}}))

	assert.Equal(t, "Prose.", relay.Generate(context.Background(), "writer", "alice", "Write"))
	assert.Equal(t, "Facts.", relay.Generate(context.Background(), "researcher", "alice", "Research"))
	assert.Equal(t, []string{"researcher", "writer"}, relay.Names())
}

func TestRelayUnknownAgent(t *testing.T) {
	relay := New()

	assert.Equal(t, "Unknown agent: nobody", relay.Generate(context.Background(), "nobody", "alice", "Hi"))
	assert.Nil(t, relay.ExtraMessages("nobody", "alice"))
	assert.False(t, relay.HasPreviousConversation("nobody", "alice"))

	_, err := relay.Get("nobody")
	require.Error(t, err)
}

func TestRelayConversationSurface(t *testing.T) {
	relay := New()
	relay.Register(agent.NewChatAgent("writer", &testutil.ScriptedChatBackend{Replies: []string{"Reply."}}, func(o *agent.ChatAgentOptions) {
		o.InfoLink = "https://example.com/writer"
	}))

	relay.Generate(context.Background(), "writer", "alice", "Hi")
	assert.True(t, relay.HasPreviousConversation("writer", "alice"))

	assert.Equal(t, agent.ClearedMessage, relay.Clear(context.Background(), "writer", "alice"))
	assert.False(t, relay.HasPreviousConversation("writer", "alice"))

	assert.Equal(t, map[string]string{"writer": "https://example.com/writer"}, relay.InfoLinks())
}
