// Package openai adapts the OpenAI SDK to the agentrelay backend
// interfaces: the Beta Assistants API for the hosted polling protocol, Chat
// Completions for direct single-shot generation and the Images API for
// picture generation. The same adapter, pointed at a compatible base URL,
// also fronts local OpenAI-style servers.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/hupe1980/agentrelay/backend"
	"github.com/hupe1980/agentrelay/core"
)

// Options configure the OpenAI backend adapter. Sampling parameters mirror
// the fixed values the direct protocol uses on every completion.
type Options struct {
	Model            string
	ImageModel       string
	MaxTokens        int64
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// Backend wraps an OpenAI client behind the backend capability interfaces.
type Backend struct {
	client openai.Client
	opts   Options
}

var (
	_ backend.HostedBackend = (*Backend)(nil)
	_ backend.ChatBackend   = (*Backend)(nil)
	_ backend.ImageBackend  = (*Backend)(nil)
)

// New creates an adapter reading credentials from the environment.
func New(optFns ...func(o *Options)) *Backend {
	return NewFromClient(openai.NewClient(), optFns...)
}

// NewWithAPIKey creates an adapter for an explicit API key.
func NewWithAPIKey(apiKey string, optFns ...func(o *Options)) *Backend {
	return NewFromClient(openai.NewClient(option.WithAPIKey(apiKey)), optFns...)
}

// NewFromClient creates an adapter from an existing client, e.g. one
// configured with a custom base URL for a local OpenAI-compatible server.
func NewFromClient(client openai.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:       openai.ChatModelGPT4o,
		ImageModel:  "dall-e-3",
		MaxTokens:   4000,
		Temperature: 0.7,
		TopP:        0.95,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// CreateAssistant implements backend.HostedBackend.
func (b *Backend) CreateAssistant(ctx context.Context, cfg backend.AssistantConfig) (string, error) {
	tools := make([]openai.AssistantToolUnionParam, 0, len(cfg.Tools))
	for _, spec := range cfg.Tools {
		tools = append(tools, openai.AssistantToolUnionParam{
			OfFunction: &openai.FunctionToolParam{
				Function: shared.FunctionDefinitionParam{
					Name:        spec.Name,
					Description: openai.String(spec.Description),
					Parameters:  shared.FunctionParameters(spec.Parameters),
				},
			},
		})
	}

	model := cfg.Model
	if model == "" {
		model = b.opts.Model
	}
	params := openai.BetaAssistantNewParams{Model: shared.ChatModel(model), Tools: tools}
	if cfg.Name != "" {
		params.Name = openai.String(cfg.Name)
	}
	if cfg.Instructions != "" {
		params.Instructions = openai.String(cfg.Instructions)
	}

	assistant, err := b.client.Beta.Assistants.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	return assistant.ID, nil
}

// DeleteAssistant implements backend.HostedBackend.
func (b *Backend) DeleteAssistant(ctx context.Context, assistantID string) error {
	_, err := b.client.Beta.Assistants.Delete(ctx, assistantID)
	return err
}

// CreateThread implements backend.HostedBackend.
func (b *Backend) CreateThread(ctx context.Context) (string, error) {
	thread, err := b.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

// DeleteThread implements backend.HostedBackend.
func (b *Backend) DeleteThread(ctx context.Context, threadID string) error {
	_, err := b.client.Beta.Threads.Delete(ctx, threadID)
	return err
}

// AddUserMessage implements backend.HostedBackend.
func (b *Backend) AddUserMessage(ctx context.Context, threadID, text string) error {
	_, err := b.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
	})
	return err
}

// StartRun implements backend.HostedBackend.
func (b *Backend) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	run, err := b.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return run.ID, nil
}

// PollRun implements backend.HostedBackend.
func (b *Backend) PollRun(ctx context.Context, threadID, runID string) (backend.RunSnapshot, error) {
	run, err := b.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return backend.RunSnapshot{}, err
	}

	snapshot := backend.RunSnapshot{Status: backend.RunStatus(run.Status)}
	if run.Status == openai.RunStatusRequiresAction {
		for _, call := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
			snapshot.PendingCalls = append(snapshot.PendingCalls, backend.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
	}
	return snapshot, nil
}

// SubmitToolOutputs implements backend.HostedBackend.
func (b *Backend) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []backend.ToolOutput) error {
	params := openai.BetaThreadRunSubmitToolOutputsParams{
		ToolOutputs: make([]openai.BetaThreadRunSubmitToolOutputsParamsToolOutput, 0, len(outputs)),
	}
	for _, out := range outputs {
		params.ToolOutputs = append(params.ToolOutputs, openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openai.String(out.CallID),
			Output:     openai.String(out.Output),
		})
	}
	_, err := b.client.Beta.Threads.Runs.SubmitToolOutputs(ctx, threadID, runID, params)
	return err
}

// LatestAssistantMessage implements backend.HostedBackend.
func (b *Backend) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	page, err := b.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderDesc,
		Limit: openai.Int(1),
	})
	if err != nil {
		return "", err
	}
	if len(page.Data) == 0 {
		return "", fmt.Errorf("thread %s has no messages", threadID)
	}
	for _, block := range page.Data[0].Content {
		if block.Text.Value != "" {
			return block.Text.Value, nil
		}
	}
	return "", fmt.Errorf("latest message in thread %s has no text content", threadID)
}

// Complete implements backend.ChatBackend with the adapter's fixed sampling
// parameters.
func (b *Backend) Complete(ctx context.Context, instructions string, history []core.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if instructions != "" {
		messages = append(messages, openai.SystemMessage(instructions))
	}
	for _, msg := range history {
		switch msg.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:            shared.ChatModel(b.opts.Model),
		Messages:         messages,
		MaxTokens:        openai.Int(b.opts.MaxTokens),
		Temperature:      openai.Float(b.opts.Temperature),
		TopP:             openai.Float(b.opts.TopP),
		FrequencyPenalty: openai.Float(b.opts.FrequencyPenalty),
		PresencePenalty:  openai.Float(b.opts.PresencePenalty),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// GenerateImage implements backend.ImageBackend, returning the hosted image
// URL.
func (b *Backend) GenerateImage(ctx context.Context, prompt string) (string, error) {
	image, err := b.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:  openai.ImageModel(b.opts.ImageModel),
		Prompt: prompt,
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		return "", err
	}
	if len(image.Data) == 0 {
		return "", fmt.Errorf("image generation returned no data")
	}
	return image.Data[0].URL, nil
}
