package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventTableSelected         = "table_selected"
	EventAvailabilityUpdated   = "availability_updated"
	EventGuestDetailsRequested = "guest_details_requested"
	EventBookingCreated        = "booking_created"
	EventBookingFailed         = "booking_failed"
)

// SelectionPayload is published whenever the selected table changes.
// TableID is zero when the selection was cleared.
type SelectionPayload struct {
	TableID    int64 `json:"table_id"`
	CanReserve bool  `json:"can_reserve"`
}

// AvailabilityPayload summarises one applied availability response.
type AvailabilityPayload struct {
	Date          string `json:"date"`
	Start         string `json:"start"`
	Guests        int    `json:"guests"`
	Enabled       int    `json:"enabled"`
	Disabled      int    `json:"disabled"`
	SelectionLost bool   `json:"selection_lost,omitempty"`
}

// GuestDetailsPayload carries the pending selection the guest form is opened with.
type GuestDetailsPayload struct {
	Date      string `json:"date"`
	Start     string `json:"start"`
	Guests    int    `json:"guests"`
	Duration  int    `json:"duration"`
	TableID   int64  `json:"table_id"`
	TableName string `json:"table_name"`
}

// BookingPayload describes a submitted booking for event consumers.
type BookingPayload struct {
	BookingID int64  `json:"booking_id,omitempty"`
	Flow      string `json:"flow"`
	TableID   int64  `json:"table_id"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	Guests    int    `json:"guests"`
	Error     string `json:"error,omitempty"`
}

// Event represents a lightweight UI event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into out.
func (e *Event) Decode(out interface{}) error {
	return json.Unmarshal(e.Payload, out)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers in registration order and returns the first handler error.
// Every handler runs even when an earlier one fails.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var first error
	for _, handler := range handlers {
		if err := handler(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}
