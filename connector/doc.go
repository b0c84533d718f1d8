// Package connector declares the contracts of the external collaborators
// tool handlers call into: web search, mailbox, calendar, wiki/ticket/goal
// search, weather and image generation. Agents depend only on these
// interfaces; the package ships HTTP implementations for the collaborators
// with open APIs (web search, page scraping, weather) while mailbox and
// workspace backends remain integration points supplied by the host.
//
// All connector calls are synchronous; results are stringified by the tool
// layer. Implementations must carry their own timeouts since the run loop's
// wait budget does not cap an in-flight tool call.
package connector
