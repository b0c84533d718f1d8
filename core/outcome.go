package core

// OutcomeKind classifies how a turn terminated.
type OutcomeKind int

const (
	// OutcomeSuccess means the backend produced a final assistant message.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeDegraded means a backend or transport failure was converted to
	// a user-visible text response instead of being propagated.
	OutcomeDegraded
	// OutcomeTimeout means the wait budget elapsed before the backend
	// reached a terminal state. Distinct from a backend-reported failure.
	OutcomeTimeout
)

// String returns the lowercase name of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the typed result of one turn. Agents operate on Outcomes
// internally so tests can distinguish success from degradation from timeout;
// the boundary the host application sees is Flatten, which preserves the
// keep-the-session-alive contract: every turn yields a string, never an
// error.
type Outcome struct {
	Kind  OutcomeKind
	Text  string
	Cause error // underlying failure for OutcomeDegraded, nil otherwise
}

// Success wraps a final assistant response.
func Success(text string) Outcome { return Outcome{Kind: OutcomeSuccess, Text: text} }

// Degraded wraps a user-visible substitute for a failed backend call.
func Degraded(text string, cause error) Outcome {
	return Outcome{Kind: OutcomeDegraded, Text: text, Cause: cause}
}

// Timeout wraps the fixed wait-budget-exhausted response.
func Timeout(text string) Outcome { return Outcome{Kind: OutcomeTimeout, Text: text} }

// Flatten collapses the outcome to the plain response string handed to the
// host application.
func (o Outcome) Flatten() string { return o.Text }

// Failed reports whether the turn ended in anything but success.
func (o Outcome) Failed() bool { return o.Kind != OutcomeSuccess }
