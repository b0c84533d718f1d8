package agent

import (
	"context"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/connector"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/tool"
)

const mailInstructions = `You are a mailbox assistant. Use the mail tools to search, inspect and
organize messages on the user's behalf. Confirm destructive operations in
your reply by naming the affected message. Use date_time to resolve
relative dates before searching.`

// MailOptions configure the mail sub-agent.
type MailOptions struct {
	// Gmail and Outlook are the two mailbox providers; either may be nil,
	// in which case its tools are not registered.
	Gmail   connector.MailProvider
	Outlook connector.MailProvider
	// Assistant options are forwarded to the underlying hosted agent.
	Assistant []func(o *AssistantAgentOptions)
}

// NewMailAgent builds the hosted sub-agent for mailbox search and triage.
func NewMailAgent(hosted backend.HostedBackend, optFns ...func(o *MailOptions)) *AssistantAgent {
	opts := MailOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var tools []tool.Tool
	if opts.Gmail != nil {
		tools = append(tools, gmailTools(opts.Gmail)...)
	}
	if opts.Outlook != nil {
		tools = append(tools, outlookTools(opts.Outlook)...)
	}
	tools = append(tools, tool.NewDateTimeTool())

	assistantFns := append([]func(o *AssistantAgentOptions){}, opts.Assistant...)
	assistantFns = append(assistantFns, func(o *AssistantAgentOptions) {
		o.Instructions = mailInstructions
		o.Tools = tools
	})
	return NewAssistantAgent("mailsearch", hosted, assistantFns...)
}

func gmailTools(mail connector.MailProvider) []tool.Tool {
	messageIDSchema := util.ObjectSchema(map[string]any{
		"message_id": util.StringParam("The id of the message."),
	}, "message_id")

	return []tool.Tool{
		tool.NewFunctionTool(
			"gmail_search",
			"Search the Gmail mailbox and return matching messages.",
			util.ObjectSchema(map[string]any{
				"query": util.StringParam("A Gmail search query, e.g. 'from:alice is:unread'."),
			}, "query"),
			func(ctx context.Context, tc *tool.Context, args map[string]any) (any, error) {
				query, _ := args["query"].(string)
				tc.Notify("Searching Gmail for: %s", query)
				return mail.Search(ctx, query)
			},
		),
		tool.NewFunctionTool(
			"gmail_mark_as_read",
			"Mark a Gmail message as read.",
			messageIDSchema,
			func(ctx context.Context, _ *tool.Context, args map[string]any) (any, error) {
				id, _ := args["message_id"].(string)
				if err := mail.MarkAsRead(ctx, id); err != nil {
					return nil, err
				}
				return "Message marked as read.", nil
			},
		),
		tool.NewFunctionTool(
			"gmail_archive",
			"Archive a Gmail message, removing it from the inbox.",
			messageIDSchema,
			func(ctx context.Context, _ *tool.Context, args map[string]any) (any, error) {
				id, _ := args["message_id"].(string)
				if err := mail.Archive(ctx, id); err != nil {
					return nil, err
				}
				return "Message archived.", nil
			},
		),
		tool.NewFunctionTool(
			"gmail_delete",
			"Move a Gmail message to the trash.",
			messageIDSchema,
			func(ctx context.Context, _ *tool.Context, args map[string]any) (any, error) {
				id, _ := args["message_id"].(string)
				if err := mail.Delete(ctx, id); err != nil {
					return nil, err
				}
				return "Message deleted.", nil
			},
		),
		tool.NewFunctionTool(
			"gmail_label",
			"Apply an existing label to a Gmail message.",
			util.ObjectSchema(map[string]any{
				"message_id": util.StringParam("The id of the message."),
				"label_id":   util.StringParam("The id of the label to apply."),
			}, "message_id", "label_id"),
			func(ctx context.Context, _ *tool.Context, args map[string]any) (any, error) {
				id, _ := args["message_id"].(string)
				labelID, _ := args["label_id"].(string)
				if err := mail.Label(ctx, id, labelID); err != nil {
					return nil, err
				}
				return "Label applied.", nil
			},
		),
		tool.NewFunctionTool(
			"gmail_list_labels",
			"List the labels defined in the Gmail mailbox.",
			util.ObjectSchema(map[string]any{}),
			func(ctx context.Context, _ *tool.Context, _ map[string]any) (any, error) {
				return mail.ListLabels(ctx)
			},
		),
		tool.NewFunctionTool(
			"gmail_create_label",
			"Create a new Gmail label.",
			util.ObjectSchema(map[string]any{
				"name": util.StringParam("The display name of the new label."),
			}, "name"),
			func(ctx context.Context, _ *tool.Context, args map[string]any) (any, error) {
				name, _ := args["name"].(string)
				return mail.CreateLabel(ctx, name)
			},
		),
	}
}

func outlookTools(mail connector.MailProvider) []tool.Tool {
	return []tool.Tool{
		tool.NewFunctionTool(
			"outlook_search",
			"Search the Outlook mailbox and return matching messages.",
			util.ObjectSchema(map[string]any{
				"query": util.StringParam("Free text to search for in the mailbox."),
			}, "query"),
			func(ctx context.Context, tc *tool.Context, args map[string]any) (any, error) {
				query, _ := args["query"].(string)
				tc.Notify("Searching Outlook for: %s", query)
				return mail.Search(ctx, query)
			},
		),
		tool.NewFunctionTool(
			"outlook_mail_details",
			"Fetch the full details of one Outlook message.",
			util.ObjectSchema(map[string]any{
				"message_id": util.StringParam("The id of the message."),
			}, "message_id"),
			func(ctx context.Context, _ *tool.Context, args map[string]any) (any, error) {
				id, _ := args["message_id"].(string)
				return mail.Details(ctx, id)
			},
		),
	}
}
