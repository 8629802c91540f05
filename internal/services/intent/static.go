package intent

import (
	"context"
	"fmt"

	"github.com/tripwise/travel-agent/internal/domain/models"
)

// NotConfiguredReply is returned by the static classifier.
const NotConfiguredReply = "The travel planning assistant is not fully configured yet, so I can't look anything up right now. " +
	"You can still browse the available destinations."

// Static answers every conversation with the same reply. It stands in for the
// language model when no API key is configured.
type Static struct {
	Reply string
}

// NewStatic creates a Static classifier with the default reply.
func NewStatic() *Static {
	return &Static{Reply: NotConfiguredReply}
}

// Classify implements Classifier.
func (s *Static) Classify(ctx context.Context, _ []models.Turn) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return PlainReply{Text: s.Reply}, nil
}
