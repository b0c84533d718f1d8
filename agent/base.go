package agent

import (
	"sync"

	"github.com/hupe1980/agentrelay/logging"
)

// base carries the state every run loop variant shares: identity, the
// per-user turn locks and the extra-messages side channel.
type base struct {
	name     string
	infoLink string
	logger   logging.Logger

	lockMu    sync.Mutex
	turnLocks map[string]*sync.Mutex

	extraMu sync.Mutex
	extra   map[string][]string
}

func newBase(name, infoLink string, logger logging.Logger) base {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return base{
		name:      name,
		infoLink:  infoLink,
		logger:    logger,
		turnLocks: make(map[string]*sync.Mutex),
		extra:     make(map[string][]string),
	}
}

// Name implements Agent.
func (b *base) Name() string { return b.name }

// InfoLink implements Agent.
func (b *base) InfoLink() string { return b.infoLink }

// lockTurn serializes turns per user: exactly one run loop may be active
// per (agent, user) at a time. Returns the unlock func.
func (b *base) lockTurn(user string) func() {
	b.lockMu.Lock()
	mu, ok := b.turnLocks[user]
	if !ok {
		mu = &sync.Mutex{}
		b.turnLocks[user] = mu
	}
	b.lockMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// pushExtra appends a progress annotation to the user's side channel.
func (b *base) pushExtra(user, message string) {
	b.extraMu.Lock()
	defer b.extraMu.Unlock()
	b.extra[user] = append(b.extra[user], message)
}

// ExtraMessages implements Agent: messages are cleared after fetching.
func (b *base) ExtraMessages(user string) []string {
	b.extraMu.Lock()
	defer b.extraMu.Unlock()
	messages := b.extra[user]
	delete(b.extra, user)
	return messages
}
