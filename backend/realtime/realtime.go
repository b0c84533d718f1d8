// Package realtime implements the persistent bidirectional socket protocol:
// one long-lived websocket per agent instance over which conversation items
// and response requests are sent and text deltas, tool call events and
// terminal response markers are read back. Reconnects use exponential
// backoff and resend the session configuration so a transport drop never
// loses the negotiated tool catalog.
package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/tool"
)

// Client event types sent to the server.
const (
	EventSessionUpdate  = "session.update"
	EventItemCreate     = "conversation.item.create"
	EventResponseCreate = "response.create"
)

// Server event types read from the socket.
const (
	EventError            = "error"
	EventSessionCreated   = "session.created"
	EventSessionUpdated   = "session.updated"
	EventItemCreated      = "conversation.item.created"
	EventTextDelta        = "response.text.delta"
	EventFunctionCallDone = "response.function_call_arguments.done"
	EventResponseDone     = "response.done"
)

// ContentPart is one content fragment of a conversation item.
type ContentPart struct {
	Type string `json:"type"` // "input_text" or "text"
	Text string `json:"text"`
}

// Item is a conversation item replayed into a fresh session or created for
// a new turn. For "function_call_output" items only CallID and Output are
// set.
type Item struct {
	Type    string        `json:"type"` // "message" or "function_call_output"
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`
	CallID  string        `json:"call_id,omitempty"`
	Output  string        `json:"output,omitempty"`
}

// NewUserItem builds a user message item.
func NewUserItem(text string) Item {
	return Item{Type: "message", Role: "user", Content: []ContentPart{{Type: "input_text", Text: text}}}
}

// NewAssistantItem builds an assistant message item.
func NewAssistantItem(text string) Item {
	return Item{Type: "message", Role: "assistant", Content: []ContentPart{{Type: "text", Text: text}}}
}

// NewToolOutputItem builds a function call output item answering the call
// with the given id.
func NewToolOutputItem(callID, output string) Item {
	return Item{Type: "function_call_output", CallID: callID, Output: output}
}

// ToolDecl is the flat function declaration shape the realtime session
// configuration expects (no nested "function" wrapper).
type ToolDecl struct {
	Type        string         `json:"type"` // "function"
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// SessionConfig is resent after every (re)connect.
type SessionConfig struct {
	Modalities   []string   `json:"modalities"`
	Model        string     `json:"model"`
	Voice        string     `json:"voice,omitempty"`
	Instructions string     `json:"instructions"`
	Tools        []ToolDecl `json:"tools"`
	ToolChoice   string     `json:"tool_choice"`
	Temperature  float64    `json:"temperature"`
}

// DeclsFromSpecs converts a tool catalog to the realtime declaration shape.
func DeclsFromSpecs(specs []tool.Spec) []ToolDecl {
	decls := make([]ToolDecl, 0, len(specs))
	for _, s := range specs {
		decls = append(decls, ToolDecl{Type: "function", Name: s.Name, Description: s.Description, Parameters: s.Parameters})
	}
	return decls
}

// ClientEvent is the envelope for events sent to the server.
type ClientEvent struct {
	Type    string         `json:"type"`
	Session *SessionConfig `json:"session,omitempty"`
	Item    *Item          `json:"item,omitempty"`
}

// ErrorDetail carries a server-reported error.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ServerEvent is the envelope for events read from the server. Only the
// fields the run loop consumes are decoded.
type ServerEvent struct {
	Type      string       `json:"type"`
	Delta     string       `json:"delta,omitempty"`
	Name      string       `json:"name,omitempty"`
	Arguments string       `json:"arguments,omitempty"`
	CallID    string       `json:"call_id,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
}

// Conn is the minimal socket surface the client needs; *websocket.Conn
// satisfies it via the gorillaConn wrapper and tests inject scripted
// implementations.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Ping() error
	Close() error
}

// Dialer establishes a Conn.
type Dialer func(ctx context.Context) (Conn, error)

type gorillaConn struct {
	*websocket.Conn
}

// Ping sends a websocket ping control frame as a liveness probe. A dead
// transport surfaces as a write error here or on the next ReadJSON.
func (c *gorillaConn) Ping() error {
	return c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// Options configure the realtime client.
type Options struct {
	URL    string
	Model  string
	Dialer Dialer
	Logger logging.Logger
	// MaxReconnectElapsed bounds the backoff retry window for one
	// reconnect attempt sequence.
	MaxReconnectElapsed time.Duration
}

// Client maintains one persistent realtime connection. Turns must be
// serialized by the owning agent, but Close may race a blocked Read: the
// owner is allowed to tear the connection down from another goroutine to
// unblock a reader, so the conn field itself is mutex-guarded.
type Client struct {
	opts Options

	mu   sync.Mutex
	conn Conn
}

// NewClient constructs a realtime client. With no custom dialer it connects
// to the vendor websocket endpoint authenticating with apiKey.
func NewClient(apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		URL:                 "wss://api.openai.com/v1/realtime",
		Model:               "gpt-4o-realtime-preview",
		Logger:              logging.NoOpLogger{},
		MaxReconnectElapsed: 30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Dialer == nil {
		opts.Dialer = defaultDialer(apiKey, opts.URL, opts.Model)
	}
	return &Client{opts: opts}
}

func defaultDialer(apiKey, url, model string) Dialer {
	return func(ctx context.Context) (Conn, error) {
		header := http.Header{}
		header.Set("Authorization", "Bearer "+apiKey)
		header.Set("OpenAI-Beta", "realtime=v1")
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, fmt.Sprintf("%s?model=%s", url, model), header)
		if err != nil {
			return nil, fmt.Errorf("dial realtime socket: %w", err)
		}
		return &gorillaConn{Conn: conn}, nil
	}
}

// Connected reports whether a connection is currently held. It does not
// probe liveness; see EnsureConnected.
func (c *Client) Connected() bool { return c.current() != nil }

// current snapshots the conn field so callers never observe it half-way
// through a concurrent Close.
func (c *Client) current() Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) setConn(conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
}

// EnsureConnected verifies the connection is alive, reconnecting with
// exponential backoff when it is absent or fails the liveness probe. After
// a (re)connect the session configuration is resent and the replay items
// are pushed into the fresh session, preserving context across transport
// drops.
func (c *Client) EnsureConnected(ctx context.Context, session SessionConfig, replay []Item) error {
	if conn := c.current(); conn != nil {
		if err := conn.Ping(); err == nil {
			return nil
		}
		c.opts.Logger.Info("realtime.reconnect", "reason", "liveness probe failed")
		c.Close()
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.opts.MaxReconnectElapsed

	conn, err := backoff.RetryWithData(func() (Conn, error) {
		return c.opts.Dialer(ctx)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	c.setConn(conn)

	// The endpoint rejects a session.update with missing modalities or
	// tool_choice; fill the protocol defaults the caller left unset.
	if session.Modalities == nil {
		session.Modalities = []string{"text"}
	}
	if session.Model == "" {
		session.Model = c.opts.Model
	}
	if session.ToolChoice == "" {
		session.ToolChoice = "auto"
	}
	if session.Temperature == 0 {
		session.Temperature = 0.7
	}
	if session.Tools == nil {
		session.Tools = []ToolDecl{}
	}

	if err := c.send(ClientEvent{Type: EventSessionUpdate, Session: &session}); err != nil {
		c.Close()
		return fmt.Errorf("configure session: %w", err)
	}
	for i := range replay {
		if err := c.send(ClientEvent{Type: EventItemCreate, Item: &replay[i]}); err != nil {
			c.Close()
			return fmt.Errorf("replay history: %w", err)
		}
	}
	return nil
}

// CreateItem sends a conversation.item.create event.
func (c *Client) CreateItem(item Item) error {
	return c.send(ClientEvent{Type: EventItemCreate, Item: &item})
}

// CreateResponse requests generation of a response for the conversation so
// far.
func (c *Client) CreateResponse() error {
	return c.send(ClientEvent{Type: EventResponseCreate})
}

// SubmitToolOutput answers a pending function call and asks the model to
// continue generating with the output in context.
func (c *Client) SubmitToolOutput(callID, output string) error {
	item := NewToolOutputItem(callID, output)
	if err := c.send(ClientEvent{Type: EventItemCreate, Item: &item}); err != nil {
		return err
	}
	return c.send(ClientEvent{Type: EventResponseCreate})
}

// Read blocks until the next server event arrives. A concurrent Close
// unblocks it with the underlying transport error.
func (c *Client) Read() (ServerEvent, error) {
	conn := c.current()
	if conn == nil {
		return ServerEvent{}, fmt.Errorf("not connected")
	}
	var ev ServerEvent
	if err := conn.ReadJSON(&ev); err != nil {
		return ServerEvent{}, err
	}
	return ev, nil
}

// Close drops the connection. Safe to call when not connected, and safe to
// call while another goroutine is blocked in Read.
func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Client) send(ev ClientEvent) error {
	conn := c.current()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	return conn.WriteJSON(ev)
}
