package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	// EventGraphChanged carries a store.Event after each committed mutation
	EventGraphChanged EventType = "graph_changed"
	// EventSubmitted carries the SubmitResult of a submission
	EventSubmitted EventType = "pipeline_submitted"
	// EventAnalyzed carries a repository.Analysis served by the validator
	EventAnalyzed EventType = "pipeline_analyzed"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[chan<- Event]struct{}
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[chan<- Event]struct{}),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[ch] = struct{}{}
}

// Unsubscribe removes a subscriber. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	delete(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
