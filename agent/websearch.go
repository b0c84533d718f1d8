package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/connector"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/tool"
)

const webSearchInstructions = `You are a web research assistant. Use the web_search tool to find current
information, then answer using only what the results contain. Cite the
source link for every claim. If the results do not answer the question,
say so instead of guessing.`

// WebSearchOptions configure the web search sub-agent.
type WebSearchOptions struct {
	// NumResults is how many pages each search fetches.
	NumResults int
	// Assistant options are forwarded to the underlying hosted agent.
	Assistant []func(o *AssistantAgentOptions)
}

// NewWebSearchAgent builds the hosted sub-agent that answers questions by
// searching the web and reading the result pages.
func NewWebSearchAgent(hosted backend.HostedBackend, search connector.SearchProvider, optFns ...func(o *WebSearchOptions)) *AssistantAgent {
	opts := WebSearchOptions{NumResults: 3}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := []tool.Tool{
		NewWebSearchTool(search, opts.NumResults),
		tool.NewDateTimeTool(),
	}

	assistantFns := append([]func(o *AssistantAgentOptions){}, opts.Assistant...)
	assistantFns = append(assistantFns, func(o *AssistantAgentOptions) {
		o.Instructions = webSearchInstructions
		o.Tools = tools
	})
	return NewAssistantAgent("websearch", hosted, assistantFns...)
}

// NewWebSearchTool exposes a SearchProvider as the web_search tool. Results
// are rendered link-then-text so the model can attribute quotes.
func NewWebSearchTool(search connector.SearchProvider, numResults int) *tool.FunctionTool {
	return tool.NewFunctionTool(
		"web_search",
		"Search the web and return the text content of the top result pages.",
		util.ObjectSchema(map[string]any{
			"query": util.StringParam("The search query."),
		}, "query"),
		func(ctx context.Context, tc *tool.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			tc.Notify("Searching the web for: %s", query)

			results, err := search.Search(ctx, query, numResults)
			if err != nil {
				return nil, err
			}
			if len(results) == 0 {
				return "No results found.", nil
			}

			var out string
			for i, r := range results {
				out += fmt.Sprintf("Result %d: %s\n%s\n\n", i+1, r.Link, r.Text)
			}
			return out, nil
		},
	)
}
