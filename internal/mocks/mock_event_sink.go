package mocks

import (
	"context"
	"sync"

	"github.com/you/storefront/domain"
)

// MockEventSink records published events
type MockEventSink struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewMockEventSink creates a new MockEventSink
func NewMockEventSink() *MockEventSink {
	return &MockEventSink{}
}

// Publish records a copy of event
func (m *MockEventSink) Publish(_ context.Context, event *domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
}

// Events returns the recorded events in publish order
func (m *MockEventSink) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the recorded event types in publish order
func (m *MockEventSink) Types() []domain.EventType {
	events := m.Events()
	out := make([]domain.EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

// Has reports whether an event of type t was published
func (m *MockEventSink) Has(t domain.EventType) bool {
	for _, et := range m.Types() {
		if et == t {
			return true
		}
	}
	return false
}

// Reset drops recorded events
func (m *MockEventSink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// Compile-time interface compliance verification
var _ domain.EventSink = (*MockEventSink)(nil)
