// Package intent maps a conversation onto either a direct reply or a request
// to run one of the travel lookup functions.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tripwise/travel-agent/internal/domain/models"
)

var (
	// ErrServiceUnavailable reports that the language model could not be reached
	// or returned nothing usable.
	ErrServiceUnavailable = errors.New("intent service unavailable")

	// ErrInvalidFunctionArguments reports a function request that names an
	// unknown function or carries arguments its schema rejects.
	ErrInvalidFunctionArguments = errors.New("invalid function arguments")
)

// Decision is the outcome of classifying a conversation. It is either a
// PlainReply or a FunctionCall.
type Decision interface {
	isDecision()
}

// PlainReply is a natural language answer.
type PlainReply struct {
	Text string
}

// FunctionCall asks for a lookup function to run. Arguments have already been
// validated against the function's schema.
type FunctionCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

func (PlainReply) isDecision()   {}
func (FunctionCall) isDecision() {}

// Classifier decides what to do with the latest turn of a conversation.
type Classifier interface {
	Classify(ctx context.Context, history []models.Turn) (Decision, error)
}

// ArgumentsError describes a rejected function request.
type ArgumentsError struct {
	Function  string
	Arguments json.RawMessage
	Err       error
}

func (e *ArgumentsError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrInvalidFunctionArguments, e.Function, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *ArgumentsError) Unwrap() []error {
	return []error{ErrInvalidFunctionArguments, e.Err}
}
