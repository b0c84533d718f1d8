// Package conversation provides per-user ordered message history.
//
// A Store keeps one append-only message list per user identity. Histories
// are created lazily on first append and removed only by an explicit Clear.
// The store enforces no size bound; truncation or summarization is a caller
// concern. Agents running the hosted-assistant protocol keep their history
// server-side and do not use a Store at all.
package conversation
