package agent

import (
	"context"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/connector"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/tool"
)

const wikiInstructions = `You are a workplace knowledge assistant. Search the wiki, the issue
tracker and the goal system as needed and answer with links to the
source documents. Prefer recent documents when results conflict.`

// WikiOptions configure the workplace search sub-agent. Any provider may
// be nil, in which case its tool is not registered.
type WikiOptions struct {
	Wiki    connector.WikiProvider
	Tickets connector.TicketProvider
	Goals   connector.GoalProvider
	// Assistant options are forwarded to the underlying hosted agent.
	Assistant []func(o *AssistantAgentOptions)
}

// NewWikiAgent builds the hosted sub-agent that searches workplace systems
// (wiki, issue tracker, goals).
func NewWikiAgent(hosted backend.HostedBackend, optFns ...func(o *WikiOptions)) *AssistantAgent {
	opts := WikiOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	querySchema := util.ObjectSchema(map[string]any{
		"query": util.StringParam("Free text to search for."),
	}, "query")

	var tools []tool.Tool
	if opts.Wiki != nil {
		tools = append(tools, tool.NewFunctionTool(
			"confluence_site_search",
			"Search the wiki for pages matching a query.",
			querySchema,
			func(ctx context.Context, tc *tool.Context, args map[string]any) (any, error) {
				query, _ := args["query"].(string)
				tc.Notify("Searching the wiki for: %s", query)
				return opts.Wiki.SiteSearch(ctx, query)
			},
		))
	}
	if opts.Tickets != nil {
		tools = append(tools, tool.NewFunctionTool(
			"jira_search",
			"Search the issue tracker for matching issues.",
			querySchema,
			func(ctx context.Context, tc *tool.Context, args map[string]any) (any, error) {
				query, _ := args["query"].(string)
				tc.Notify("Searching the issue tracker for: %s", query)
				return opts.Tickets.SearchIssues(ctx, query)
			},
		))
	}
	if opts.Goals != nil {
		tools = append(tools, tool.NewFunctionTool(
			"quantive_search",
			"Search the goal system for matching objectives and key results.",
			querySchema,
			func(ctx context.Context, tc *tool.Context, args map[string]any) (any, error) {
				query, _ := args["query"].(string)
				tc.Notify("Searching goals for: %s", query)
				return opts.Goals.SearchGoals(ctx, query)
			},
		))
	}
	tools = append(tools, tool.NewDateTimeTool())

	assistantFns := append([]func(o *AssistantAgentOptions){}, opts.Assistant...)
	assistantFns = append(assistantFns, func(o *AssistantAgentOptions) {
		o.Instructions = wikiInstructions
		o.Tools = tools
	})
	return NewAssistantAgent("wikisearch", hosted, assistantFns...)
}
