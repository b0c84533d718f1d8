package conversation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/agentrelay/core"
)

func TestInMemoryStoreAppendOnly(t *testing.T) {
	store := NewInMemoryStore()

	store.Append("alice", core.NewUserMessage("first"))
	store.Append("alice", core.NewAssistantMessage("second"))

	before := store.History("alice")

	store.Append("alice", core.NewToolMessage("third"))
	after := store.History("alice")

	// History after N turns is a strict extension of the history after N-1.
	assert.Len(t, after, 3)
	assert.Equal(t, before, after[:len(before)])
	assert.Equal(t, "first", after[0].Content)
	assert.Equal(t, core.RoleTool, after[2].Role)
}

func TestInMemoryStoreHistoryIsCopy(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("alice", core.NewUserMessage("original"))

	history := store.History("alice")
	history[0].Content = "mutated"

	assert.Equal(t, "original", store.History("alice")[0].Content)
}

func TestInMemoryStoreClearIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("alice", core.NewUserMessage("hi"))

	store.Clear("alice")
	assert.Zero(t, store.Len("alice"))

	// Clearing an already empty history must remain a no-op.
	store.Clear("alice")
	assert.Zero(t, store.Len("alice"))
	assert.Empty(t, store.History("alice"))
}

func TestInMemoryStoreUserIsolation(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("alice", core.NewUserMessage("hers"))
	store.Append("bob", core.NewUserMessage("his"))

	store.Clear("alice")

	assert.Zero(t, store.Len("alice"))
	assert.Equal(t, 1, store.Len("bob"))
}

func TestInMemoryStoreConcurrentUsers(t *testing.T) {
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", n)
			for j := 0; j < 50; j++ {
				store.Append(user, core.NewUserMessage("msg"))
				_ = store.History(user)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		assert.Equal(t, 50, store.Len(fmt.Sprintf("user-%d", i)))
	}
}
