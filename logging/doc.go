// Package logging provides a minimal logging interface and adapters for
// agentrelay.
//
// The Logger interface defines the structured logging methods (Debug, Info,
// Warn, Error) that agents, dispatchers and backends use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.New(logging.LevelInfo, "json")
//	logger.Info("run.poll", "agent", "orchestrator", "status", "in_progress")
package logging
