package events

import (
	"context"
	"sync"
)

// MockPublisher records published events for tests.
type MockPublisher struct {
	mu     sync.RWMutex
	events []BookingEvent
	Err    error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishBooking(_ context.Context, event BookingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.events = append(m.events, event)

	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Published returns a copy of the recorded events.
func (m *MockPublisher) Published() []BookingEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]BookingEvent, len(m.events))
	copy(events, m.events)
	return events
}
