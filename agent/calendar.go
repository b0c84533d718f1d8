package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/connector"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/tool"
)

const calendarInstructions = `You are a calendar assistant. Use date_time first to resolve relative
dates like "tomorrow" or "next Tuesday", then query the calendar tools
with RFC 3339 timestamps. Report times in the user's words, not raw
timestamps.`

// CalendarOptions configure the calendar sub-agent.
type CalendarOptions struct {
	// Assistant options are forwarded to the underlying hosted agent.
	Assistant []func(o *AssistantAgentOptions)
}

// NewCalendarAgent builds the hosted sub-agent for calendar lookups and
// availability checks.
func NewCalendarAgent(hosted backend.HostedBackend, calendar connector.CalendarProvider, optFns ...func(o *CalendarOptions)) *AssistantAgent {
	opts := CalendarOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	rangeProps := func(extra map[string]any, required ...string) map[string]any {
		props := map[string]any{
			"from": util.StringParam("Start of the time range, RFC 3339."),
			"to":   util.StringParam("End of the time range, RFC 3339."),
		}
		for k, v := range extra {
			props[k] = v
		}
		return util.ObjectSchema(props, append(required, "from", "to")...)
	}

	parseRange := func(args map[string]any) (time.Time, time.Time, error) {
		fromRaw, _ := args["from"].(string)
		toRaw, _ := args["to"].(string)
		from, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse from: %w", err)
		}
		to, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse to: %w", err)
		}
		return from, to, nil
	}

	tools := []tool.Tool{
		tool.NewFunctionTool(
			"search_calendar_events",
			"Search calendar events in a time range.",
			rangeProps(map[string]any{
				"query": util.StringParam("Free text to match against event summaries."),
			}),
			func(ctx context.Context, tc *tool.Context, args map[string]any) (any, error) {
				from, to, err := parseRange(args)
				if err != nil {
					return nil, err
				}
				query, _ := args["query"].(string)
				tc.Notify("Searching the calendar for: %s", query)
				return calendar.SearchEvents(ctx, query, from, to)
			},
		),
		tool.NewFunctionTool(
			"check_person_availability",
			"List a person's busy slots in a time range.",
			rangeProps(map[string]any{
				"person": util.StringParam("The person's name or email address."),
			}, "person"),
			func(ctx context.Context, tc *tool.Context, args map[string]any) (any, error) {
				from, to, err := parseRange(args)
				if err != nil {
					return nil, err
				}
				person, _ := args["person"].(string)
				tc.Notify("Checking availability of %s", person)
				return calendar.PersonAvailability(ctx, person, from, to)
			},
		),
		tool.NewFunctionTool(
			"check_room_availability",
			"List a meeting room's busy slots in a time range.",
			rangeProps(map[string]any{
				"room": util.StringParam("The room's name or email address."),
			}, "room"),
			func(ctx context.Context, _ *tool.Context, args map[string]any) (any, error) {
				from, to, err := parseRange(args)
				if err != nil {
					return nil, err
				}
				room, _ := args["room"].(string)
				return calendar.RoomAvailability(ctx, room, from, to)
			},
		),
		tool.NewDateTimeTool(),
	}

	assistantFns := append([]func(o *AssistantAgentOptions){}, opts.Assistant...)
	assistantFns = append(assistantFns, func(o *AssistantAgentOptions) {
		o.Instructions = calendarInstructions
		o.Tools = tools
	})
	return NewAssistantAgent("calendar", hosted, assistantFns...)
}
