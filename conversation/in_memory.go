package conversation

import (
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// Store persists per-user conversation histories. Implementations must be
// safe for concurrent access across distinct users; concurrent mutation for
// the same user is serialized by the owning agent's turn lock.
type Store interface {
	// Append adds a message to the end of the user's history, creating the
	// history lazily on first use.
	Append(user string, msg core.Message)
	// History returns the user's ordered messages. The returned slice is a
	// defensive copy.
	History(user string) []core.Message
	// Clear drops the user's history. Clearing an absent or already empty
	// history is a no-op.
	Clear(user string)
	// Len returns the number of messages stored for the user.
	Len(user string) int
}

// InMemoryStore is a volatile Store backed by a process-local map. Each
// returned history is copied to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]core.Message
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{messages: make(map[string][]core.Message)}
}

// Append implements Store.
func (s *InMemoryStore) Append(user string, msg core.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[user] = append(s.messages[user], msg)
}

// History implements Store.
func (s *InMemoryStore) History(user string) []core.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]core.Message, len(s.messages[user]))
	copy(history, s.messages[user])
	return history
}

// Clear implements Store.
func (s *InMemoryStore) Clear(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, user)
}

// Len implements Store.
func (s *InMemoryStore) Len(user string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages[user])
}
