// Package agentrelay provides a high-level façade over a registry of
// conversational agents. Most applications interact with this package by:
//  1. Creating a Relay via New() (optionally supplying a structured logger)
//  2. Registering agents (hosted, chat, realtime or an orchestrator graph)
//  3. Routing each user turn to a named agent via Generate
//
// Per-turn failures never surface as errors: every turn returns displayable
// text, degraded or timed out turns included. Only construction can fail.
package agentrelay

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/logging"
)

// Options configures the Relay instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Relay routes turns to registered agents by name. It is safe for
// concurrent use; per-user serialization happens inside each agent.
type Relay struct {
	opts Options

	mu     sync.RWMutex
	agents map[string]agent.Agent
}

// New creates a new Relay with optional overrides.
func New(optFns ...func(o *Options)) *Relay {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Relay{opts: opts, agents: make(map[string]agent.Agent)}
}

// Register adds an agent under its own name. Re-registering a name
// replaces the previous agent.
func (r *Relay) Register(a agent.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.Name()] = a
}

// Get returns the named agent.
func (r *Relay) Get(name string) (agent.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("unknown agent: %s", name)
	}
	return a, nil
}

// Names returns the registered agent names, sorted.
func (r *Relay) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InfoLinks returns a name -> documentation link map for every agent that
// declares one.
func (r *Relay) InfoLinks() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	links := make(map[string]string)
	for name, a := range r.agents {
		if link := a.InfoLink(); link != "" {
			links[name] = link
		}
	}
	return links
}

// Generate routes one turn to the named agent. An unknown agent name is a
// routing error reported as displayable text, consistent with the
// never-fatal turn contract.
func (r *Relay) Generate(ctx context.Context, agentName, user, prompt string) string {
	a, err := r.Get(agentName)
	if err != nil {
		r.opts.Logger.Warn("relay.unknown_agent", "agent", agentName, "user", user)
		return fmt.Sprintf("Unknown agent: %s", agentName)
	}
	r.opts.Logger.Info("relay.generate", "agent", agentName, "user", user)
	return a.Generate(ctx, user, prompt)
}

// ExtraMessages drains the named agent's progress annotations for the
// user. Unknown agents yield none.
func (r *Relay) ExtraMessages(agentName, user string) []string {
	a, err := r.Get(agentName)
	if err != nil {
		return nil
	}
	return a.ExtraMessages(user)
}

// HasPreviousConversation reports whether the named agent holds at least
// one completed exchange for the user.
func (r *Relay) HasPreviousConversation(agentName, user string) bool {
	a, err := r.Get(agentName)
	if err != nil {
		return false
	}
	return a.HasPreviousConversation(user)
}

// Summarize asks the named agent to summarize the user's conversation.
func (r *Relay) Summarize(ctx context.Context, agentName, user string) string {
	a, err := r.Get(agentName)
	if err != nil {
		return fmt.Sprintf("Unknown agent: %s", agentName)
	}
	return a.Summarize(ctx, user)
}

// Clear resets the named agent's conversation for the user.
func (r *Relay) Clear(ctx context.Context, agentName, user string) string {
	a, err := r.Get(agentName)
	if err != nil {
		return fmt.Sprintf("Unknown agent: %s", agentName)
	}
	return a.Clear(ctx, user)
}
