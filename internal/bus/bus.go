// Package bus fans window and viewport events out to their subscribers
package bus

import (
	"sync"
)

// EventType identifies different event types
type EventType string

const (
	// Window events
	EventTypePointerMoved EventType = "window.pointer_moved"
	EventTypeResized      EventType = "window.resized"
	EventTypeKeyPressed   EventType = "window.key_pressed"
	EventTypeFocusChanged EventType = "window.focus_changed"
	EventTypeCloseRequest EventType = "window.close_requested"

	// Viewport events
	EventTypeViewportState EventType = "viewport.state_changed"
	EventTypeSnapshotSaved EventType = "viewport.snapshot_saved"

	// Renderer events
	EventTypeShaderReloaded EventType = "renderer.shader_reloaded"
)

// Event represents a bus event
type Event struct {
	Type EventType
	Data map[string]any
}

// Float returns Data[key] as a float64, or 0.
func (e Event) Float(key string) float64 {
	switch v := e.Data[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Int returns Data[key] as an int, or 0.
func (e Event) Int(key string) int {
	switch v := e.Data[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// String returns Data[key] as a string, or "".
func (e Event) String(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// Handler is a function that handles events
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// EventBus is a synchronous pub/sub bus. Handlers run on the publishing
// goroutine, in subscription order.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]subscription
	nextID   uint64
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]subscription),
	}
}

// Subscribe adds a handler for an event type and returns a func that
// removes it again.
func (b *EventBus) Subscribe(eventType EventType, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(eventType, id) })
	}
}

// SubscribeMultiple adds a handler for multiple event types
func (b *EventBus) SubscribeMultiple(eventTypes []EventType, handler Handler) (unsubscribe func()) {
	unsubs := make([]func(), 0, len(eventTypes))
	for _, et := range eventTypes {
		unsubs = append(unsubs, b.Subscribe(et, handler))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (b *EventBus) remove(eventType EventType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish calls every handler subscribed to event.Type and returns once
// they all ran. Handlers may subscribe or unsubscribe while it runs.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[event.Type]))
	copy(subs, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Count returns the number of handlers for eventType.
func (b *EventBus) Count(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// Clear removes all handlers
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]subscription)
}
