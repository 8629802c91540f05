package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/tripwise/travel-agent/internal/domain/models"
	"github.com/tripwise/travel-agent/internal/services/intent"
)

// MockClassifier is a mock implementation of intent.Classifier.
// Histories are copied so assertions see what was passed at call time.
type MockClassifier struct {
	mock.Mock
}

var _ intent.Classifier = (*MockClassifier)(nil)

// Classify returns the configured decision.
func (m *MockClassifier) Classify(ctx context.Context, history []models.Turn) (intent.Decision, error) {
	args := m.Called(ctx, append([]models.Turn(nil), history...))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(intent.Decision), args.Error(1)
}

// MockRecorder collects guard events.
type MockRecorder struct {
	mu     sync.Mutex
	events []models.GuardEvent
}

// Record stores event.
func (m *MockRecorder) Record(event models.GuardEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of the recorded events.
func (m *MockRecorder) Events() []models.GuardEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.GuardEvent(nil), m.events...)
}
