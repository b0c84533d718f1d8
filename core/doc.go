// Package core defines the shared vocabulary of the agentrelay framework:
// conversation messages with their roles, and the turn Outcome sum type used
// internally to classify how a turn ended before the result is flattened to
// the plain string the host application receives.
package core
