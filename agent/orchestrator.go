package agent

import (
	"context"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/tool"
)

// Delegate binds a sub-agent to the tool name and description the
// orchestrator model sees.
type Delegate struct {
	// ToolName is the function name, by convention "agent_<speciality>".
	ToolName string
	// Description tells the orchestrator model when to hand off.
	Description string
	// Agent answers the delegated prompt.
	Agent Agent
}

// NewDelegateTool wraps a sub-agent as a callable tool. The handler
// forwards the prompt argument to the sub-agent's Generate for the same
// user, so the sub-agent keeps its own per-user conversation across hops.
func NewDelegateTool(d Delegate) *tool.FunctionTool {
	return tool.NewFunctionTool(
		d.ToolName,
		d.Description,
		util.ObjectSchema(map[string]any{
			"prompt": util.StringParam("The full request to forward, with all context the specialist needs."),
		}, "prompt"),
		func(ctx context.Context, tc *tool.Context, args map[string]any) (any, error) {
			prompt, _ := args["prompt"].(string)
			tc.Notify("Asking the %s agent: %s", d.Agent.Name(), prompt)
			return d.Agent.Generate(ctx, tc.User, prompt), nil
		},
	)
}

// OrchestratorOptions configure the coordinating agent.
type OrchestratorOptions struct {
	// Assistant options are forwarded to the underlying hosted agent.
	Assistant []func(o *AssistantAgentOptions)
	// Tools are primitives registered alongside the delegate tools.
	Tools []tool.Tool
}

// Orchestrator is a hosted agent whose tool catalog mixes primitive tools
// with one delegate tool per sub-agent. The orchestrator model decides
// per turn whether to answer directly or hand off.
type Orchestrator struct {
	*AssistantAgent
	delegates []Delegate
}

// NewOrchestrator constructs the coordinating agent. Delegate tools are
// appended after the primitives, fixing the catalog at construction time.
func NewOrchestrator(name string, hosted backend.HostedBackend, delegates []Delegate, optFns ...func(o *OrchestratorOptions)) *Orchestrator {
	opts := OrchestratorOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := make([]tool.Tool, 0, len(opts.Tools)+len(delegates))
	tools = append(tools, opts.Tools...)
	for _, d := range delegates {
		tools = append(tools, NewDelegateTool(d))
	}

	assistantFns := append([]func(o *AssistantAgentOptions){}, opts.Assistant...)
	assistantFns = append(assistantFns, func(o *AssistantAgentOptions) {
		o.Tools = tools
	})

	return &Orchestrator{
		AssistantAgent: NewAssistantAgent(name, hosted, assistantFns...),
		delegates:      delegates,
	}
}

// Delegates returns the registered sub-agent bindings.
func (o *Orchestrator) Delegates() []Delegate {
	return append([]Delegate{}, o.delegates...)
}

// ExtraMessages returns the orchestrator's own progress annotations
// followed by those of every sub-agent, preserving per-agent order.
func (o *Orchestrator) ExtraMessages(user string) []string {
	messages := o.AssistantAgent.ExtraMessages(user)
	for _, d := range o.delegates {
		messages = append(messages, d.Agent.ExtraMessages(user)...)
	}
	return messages
}

// Clear implements Agent, cascading to every sub-agent so no delegated
// conversation outlives the orchestrator's.
func (o *Orchestrator) Clear(ctx context.Context, user string) string {
	out := o.AssistantAgent.Clear(ctx, user)
	for _, d := range o.delegates {
		d.Agent.Clear(ctx, user)
	}
	return out
}
