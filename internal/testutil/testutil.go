// Package testutil provides scripted in-memory backends for run loop and
// agent tests. No network, no real SDK clients.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/backend/realtime"
	"github.com/hupe1980/agentrelay/core"
)

// ScriptedHostedBackend implements backend.HostedBackend from a fixed
// sequence of run snapshots. Each PollRun consumes the next snapshot; once
// the script is exhausted the last snapshot repeats, so a script ending in
// a non-terminal state models a hung run.
type ScriptedHostedBackend struct {
	mu sync.Mutex

	Snapshots    []backend.RunSnapshot
	FinalMessage string

	CreateAssistantErr error
	CreateThreadErr    error
	AddMessageErr      error
	StartRunErr        error
	PollErr            error
	SubmitErr          error

	CreatedAssistants []backend.AssistantConfig
	DeletedAssistants []string
	CreatedThreads    int
	DeletedThreads    []string
	UserMessages      []string
	StartedRuns       int
	SubmittedOutputs  [][]backend.ToolOutput

	polls int
}

var _ backend.HostedBackend = (*ScriptedHostedBackend)(nil)

func (s *ScriptedHostedBackend) CreateAssistant(_ context.Context, cfg backend.AssistantConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateAssistantErr != nil {
		return "", s.CreateAssistantErr
	}
	s.CreatedAssistants = append(s.CreatedAssistants, cfg)
	return fmt.Sprintf("asst_%d", len(s.CreatedAssistants)), nil
}

func (s *ScriptedHostedBackend) DeleteAssistant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeletedAssistants = append(s.DeletedAssistants, id)
	return nil
}

func (s *ScriptedHostedBackend) CreateThread(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateThreadErr != nil {
		return "", s.CreateThreadErr
	}
	s.CreatedThreads++
	return fmt.Sprintf("thread_%d", s.CreatedThreads), nil
}

func (s *ScriptedHostedBackend) DeleteThread(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeletedThreads = append(s.DeletedThreads, id)
	return nil
}

func (s *ScriptedHostedBackend) AddUserMessage(_ context.Context, _, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AddMessageErr != nil {
		return s.AddMessageErr
	}
	s.UserMessages = append(s.UserMessages, content)
	return nil
}

func (s *ScriptedHostedBackend) StartRun(_ context.Context, _, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StartRunErr != nil {
		return "", s.StartRunErr
	}
	s.StartedRuns++
	return fmt.Sprintf("run_%d", s.StartedRuns), nil
}

func (s *ScriptedHostedBackend) PollRun(_ context.Context, _, _ string) (backend.RunSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PollErr != nil {
		return backend.RunSnapshot{}, s.PollErr
	}
	if len(s.Snapshots) == 0 {
		return backend.RunSnapshot{Status: backend.StatusInProgress}, nil
	}
	idx := s.polls
	if idx >= len(s.Snapshots) {
		idx = len(s.Snapshots) - 1
	}
	s.polls++
	return s.Snapshots[idx], nil
}

func (s *ScriptedHostedBackend) SubmitToolOutputs(_ context.Context, _, _ string, outputs []backend.ToolOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SubmitErr != nil {
		return s.SubmitErr
	}
	s.SubmittedOutputs = append(s.SubmittedOutputs, outputs)
	return nil
}

func (s *ScriptedHostedBackend) LatestAssistantMessage(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FinalMessage, nil
}

// ScriptedChatBackend implements backend.ChatBackend from fixed replies.
type ScriptedChatBackend struct {
	mu sync.Mutex

	Replies []string
	Err     error

	Calls []ChatCall

	turn int
}

// ChatCall records one Complete invocation.
type ChatCall struct {
	Instructions string
	History      []core.Message
}

var _ backend.ChatBackend = (*ScriptedChatBackend)(nil)

func (s *ScriptedChatBackend) Complete(_ context.Context, instructions string, history []core.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, ChatCall{Instructions: instructions, History: append([]core.Message{}, history...)})
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Replies) == 0 {
		return "", fmt.Errorf("no scripted reply")
	}
	idx := s.turn
	if idx >= len(s.Replies) {
		idx = len(s.Replies) - 1
	}
	s.turn++
	return s.Replies[idx], nil
}

// ScriptedConn implements realtime.Conn from a queue of server events.
// Writes are recorded; each read pops the next event. Reading past the
// script returns ErrScriptDone so tests fail fast instead of hanging.
type ScriptedConn struct {
	mu sync.Mutex

	Events []realtime.ServerEvent

	Written []realtime.ClientEvent
	Closed  bool
	PingErr error

	reads int
}

var _ realtime.Conn = (*ScriptedConn)(nil)

// ErrScriptDone is returned when a test reads past the scripted events.
var ErrScriptDone = fmt.Errorf("scripted events exhausted")

func (c *ScriptedConn) ReadJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reads >= len(c.Events) {
		return ErrScriptDone
	}
	ev, ok := v.(*realtime.ServerEvent)
	if !ok {
		return fmt.Errorf("unexpected read target %T", v)
	}
	*ev = c.Events[c.reads]
	c.reads++
	return nil
}

func (c *ScriptedConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := v.(realtime.ClientEvent)
	if !ok {
		return fmt.Errorf("unexpected write payload %T", v)
	}
	c.Written = append(c.Written, ev)
	return nil
}

func (c *ScriptedConn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.PingErr
}

func (c *ScriptedConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

// WrittenEvents returns a copy of everything written so far.
func (c *ScriptedConn) WrittenEvents() []realtime.ClientEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]realtime.ClientEvent{}, c.Written...)
}

// BlockingConn implements realtime.Conn for a backend that never produces
// an event: ReadJSON blocks until the connection is closed. Writes are
// accepted and discarded.
type BlockingConn struct {
	once   sync.Once
	closed chan struct{}
}

var _ realtime.Conn = (*BlockingConn)(nil)

func NewBlockingConn() *BlockingConn {
	return &BlockingConn{closed: make(chan struct{})}
}

func (c *BlockingConn) ReadJSON(any) error {
	<-c.closed
	return fmt.Errorf("connection closed")
}

func (c *BlockingConn) WriteJSON(any) error { return nil }

func (c *BlockingConn) Ping() error { return nil }

func (c *BlockingConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// Closed reports whether Close has been called.
func (c *BlockingConn) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
