package agent

import (
	"github.com/hupe1980/agentrelay/backend"
)

const writerInstructions = `You are a professional writer. Produce polished, well-structured prose in
the tone the user asks for. When asked to revise, keep what works and
change only what was criticized.`

const researcherInstructions = `You are a meticulous researcher. Break the question into sub-questions,
reason step by step and state your confidence. Distinguish established
facts from your own inference.`

const mathematicianInstructions = `You are a mathematician. Work through problems step by step, showing the
intermediate results. If code expresses the solution best, include it in
full rather than describing it.`

// NewWriterAgent builds the writing specialist on a chat-completion
// backend.
func NewWriterAgent(chat backend.ChatBackend, optFns ...func(o *ChatAgentOptions)) *ChatAgent {
	fns := append([]func(o *ChatAgentOptions){}, optFns...)
	fns = append(fns, func(o *ChatAgentOptions) {
		o.Instructions = writerInstructions
	})
	return NewChatAgent("writer", chat, fns...)
}

// NewResearcherAgent builds the research specialist on a chat-completion
// backend.
func NewResearcherAgent(chat backend.ChatBackend, optFns ...func(o *ChatAgentOptions)) *ChatAgent {
	fns := append([]func(o *ChatAgentOptions){}, optFns...)
	fns = append(fns, func(o *ChatAgentOptions) {
		o.Instructions = researcherInstructions
	})
	return NewChatAgent("researcher", chat, fns...)
}

// NewMathematicianAgent builds the math specialist on a chat-completion
// backend, typically an OpenAI-compatible local endpoint.
func NewMathematicianAgent(chat backend.ChatBackend, optFns ...func(o *ChatAgentOptions)) *ChatAgent {
	fns := append([]func(o *ChatAgentOptions){}, optFns...)
	fns = append(fns, func(o *ChatAgentOptions) {
		o.Instructions = mathematicianInstructions
	})
	return NewChatAgent("mathematician", chat, fns...)
}
