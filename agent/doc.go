// Package agent implements the turn-driving run loops and their
// composition into an orchestrator graph.
//
// One generic loop exists per conversation protocol: AssistantAgent polls
// the hosted assistant/thread/run protocol, ChatAgent performs direct
// single-shot completions over a local history, and RealtimeAgent streams
// over a persistent socket. Concrete agents — web search, mail, calendar,
// wiki, writer — are configuration over these loops: a tool catalog, an
// instruction block and a backend, not subclasses.
//
// Every turn resolves to a plain string. Backend failures, tool failures
// and wait-budget timeouts are all flattened into user-visible text so a
// misbehaving backend can degrade a conversation but never crash it.
package agent
