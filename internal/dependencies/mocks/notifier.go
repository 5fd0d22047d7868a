package mocks

import (
	"sync"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
)

// Notification is one message captured by MockNotifier.
// To is empty for broadcasts.
type Notification struct {
	To      model.ConnID
	Event   model.EventType
	Payload any
}

// MockNotifier records emitted and broadcast events for assertions
type MockNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

// NewMockNotifier creates an empty MockNotifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Emit records a message addressed to a single connection
func (n *MockNotifier) Emit(to model.ConnID, event model.EventType, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{To: to, Event: event, Payload: payload})
}

// Broadcast records a message addressed to every connection
func (n *MockNotifier) Broadcast(event model.EventType, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{Event: event, Payload: payload})
}

// All returns every recorded notification in order
func (n *MockNotifier) All() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// Events returns the recorded notifications of the given type
func (n *MockNotifier) Events(event model.EventType) []Notification {
	var out []Notification
	for _, s := range n.All() {
		if s.Event == event {
			out = append(out, s)
		}
	}
	return out
}

// EventsTo returns the recorded direct messages of the given type sent to conn
func (n *MockNotifier) EventsTo(conn model.ConnID, event model.EventType) []Notification {
	var out []Notification
	for _, s := range n.Events(event) {
		if s.To == conn {
			out = append(out, s)
		}
	}
	return out
}

// Last returns the most recent notification of the given type
func (n *MockNotifier) Last(event model.EventType) (Notification, bool) {
	events := n.Events(event)
	if len(events) == 0 {
		return Notification{}, false
	}
	return events[len(events)-1], true
}

// Reset discards all recorded notifications
func (n *MockNotifier) Reset() {
	n.mu.Lock()
	n.sent = nil
	n.mu.Unlock()
}
