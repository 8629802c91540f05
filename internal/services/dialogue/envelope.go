package dialogue

import "encoding/json"

// Outcome names the branch of the state machine a message ended in.
type Outcome string

const (
	OutcomeReply        Outcome = "reply"
	OutcomeFunction     Outcome = "function_call"
	OutcomeClarify      Outcome = "clarification"
	OutcomeUnavailable  Outcome = "service_unavailable"
	OutcomeOffTopic     Outcome = "off_topic"
	OutcomeBlocked      Outcome = "blocked"
	OutcomeReset        Outcome = "session_reset"
	OutcomeLimitReached Outcome = "limit_reached"
)

// Request is one inbound chat message.
type Request struct {
	SessionID string
	Message   string
}

// Envelope is the uniform result of handling a message.
type Envelope struct {
	SessionID string
	Reply     string
	Outcome   Outcome

	FunctionCalled string
	FunctionArgs   json.RawMessage
	FunctionResult json.RawMessage

	SessionReset      bool
	WarningsRemaining *int
	Warnings          int
	Violations        int
	Category          string
}

// Blocked reports whether the guard stopped the message for safety.
func (e *Envelope) Blocked() bool {
	return e.Outcome == OutcomeBlocked || e.Outcome == OutcomeReset
}
