package connector

import (
	"context"
	"time"
)

// SearchResult is one (link, text) pair returned by a web search.
type SearchResult struct {
	Link string `json:"link"`
	Text string `json:"text"`
}

// SearchProvider performs a web search returning page links with extracted
// text.
type SearchProvider interface {
	Search(ctx context.Context, query string, numResults int) ([]SearchResult, error)
}

// MailMessage is the minimal record shape mailbox searches return.
type MailMessage struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	From     string    `json:"from"`
	Snippet  string    `json:"snippet"`
	Received time.Time `json:"received"`
	Labels   []string  `json:"labels,omitempty"`
}

// MailLabel identifies a mailbox label/folder.
type MailLabel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MailProvider is the mailbox collaborator contract (Gmail/Outlook shape).
// Mutating operations exist so a mail agent can act on messages, not just
// read them.
type MailProvider interface {
	Search(ctx context.Context, query string) ([]MailMessage, error)
	Details(ctx context.Context, messageID string) (MailMessage, error)
	MarkAsRead(ctx context.Context, messageID string) error
	Archive(ctx context.Context, messageID string) error
	Delete(ctx context.Context, messageID string) error
	Label(ctx context.Context, messageID, labelID string) error
	ListLabels(ctx context.Context) ([]MailLabel, error)
	CreateLabel(ctx context.Context, name string) (MailLabel, error)
}

// CalendarEvent is the minimal record shape calendar searches return.
type CalendarEvent struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	Location  string    `json:"location,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Attendees []string  `json:"attendees,omitempty"`
}

// CalendarProvider is the calendar collaborator contract.
type CalendarProvider interface {
	SearchEvents(ctx context.Context, query string, from, to time.Time) ([]CalendarEvent, error)
	PersonAvailability(ctx context.Context, person string, from, to time.Time) ([]CalendarEvent, error)
	RoomAvailability(ctx context.Context, room string, from, to time.Time) ([]CalendarEvent, error)
}

// Document is a wiki/ticket/goal search hit.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Link    string `json:"link"`
	Excerpt string `json:"excerpt"`
}

// WikiProvider searches a wiki site (Confluence shape).
type WikiProvider interface {
	SiteSearch(ctx context.Context, query string) ([]Document, error)
}

// TicketProvider searches an issue tracker (JIRA shape).
type TicketProvider interface {
	SearchIssues(ctx context.Context, query string) ([]Document, error)
}

// GoalProvider searches an OKR/goal system (Quantive shape).
type GoalProvider interface {
	SearchGoals(ctx context.Context, query string) ([]Document, error)
}

// WeatherProvider returns structured current conditions and forecasts.
type WeatherProvider interface {
	Current(ctx context.Context, latitude, longitude string) (map[string]any, error)
	Forecast(ctx context.Context, latitude, longitude string) (map[string]any, error)
}

// ImageProvider generates an image and returns a displayable reference.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
