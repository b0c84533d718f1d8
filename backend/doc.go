// Package backend defines the protocol capability interfaces the agent run
// loops are parameterized by. Concrete agents are configuration over these
// interfaces, not subclasses: a HostedBackend drives the polled
// assistant/thread/run protocol, a ChatBackend performs single-shot
// completions, and an ImageBackend generates images. Vendor adapters live in
// the backend/openai, backend/anthropic and backend/realtime subpackages.
package backend
