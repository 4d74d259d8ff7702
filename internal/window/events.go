package window

import (
	"strings"

	"github.com/normanking/heroavatar/internal/bus"
)

// Events turns window events on the bus back into typed callbacks. Every
// subscriber sees every event; nothing is consumed.
type Events struct {
	bus *bus.EventBus
}

func NewEvents(b *bus.EventBus) Events {
	return Events{bus: b}
}

// Bus returns the underlying event bus.
func (e Events) Bus() *bus.EventBus {
	return e.bus
}

// OnResize reports framebuffer size changes.
func (e Events) OnResize(fn func(width, height int)) (detach func()) {
	return e.bus.Subscribe(bus.EventTypeResized, func(ev bus.Event) {
		fn(ev.Int("width"), ev.Int("height"))
	})
}

// OnPointerMove reports the cursor in window coordinates.
func (e Events) OnPointerMove(fn func(x, y float64)) (detach func()) {
	return e.bus.Subscribe(bus.EventTypePointerMoved, func(ev bus.Event) {
		fn(ev.Float("x"), ev.Float("y"))
	})
}

// OnKey calls fn when the named key is pressed. Names compare
// case-insensitively.
func (e Events) OnKey(name string, fn func()) (detach func()) {
	return e.bus.Subscribe(bus.EventTypeKeyPressed, func(ev bus.Event) {
		if strings.EqualFold(ev.String("key"), name) {
			fn()
		}
	})
}

// OnFocus reports focus gained or lost.
func (e Events) OnFocus(fn func(focused bool)) (detach func()) {
	return e.bus.Subscribe(bus.EventTypeFocusChanged, func(ev bus.Event) {
		focused, _ := ev.Data["focused"].(bool)
		fn(focused)
	})
}

func (e Events) publishResize(width, height int) {
	e.bus.Publish(bus.Event{
		Type: bus.EventTypeResized,
		Data: map[string]any{"width": width, "height": height},
	})
}

func (e Events) publishPointer(x, y float64) {
	e.bus.Publish(bus.Event{
		Type: bus.EventTypePointerMoved,
		Data: map[string]any{"x": x, "y": y},
	})
}

func (e Events) publishKey(name string, code int) {
	e.bus.Publish(bus.Event{
		Type: bus.EventTypeKeyPressed,
		Data: map[string]any{"key": name, "code": code},
	})
}

func (e Events) publishFocus(focused bool) {
	e.bus.Publish(bus.Event{
		Type: bus.EventTypeFocusChanged,
		Data: map[string]any{"focused": focused},
	})
}

func (e Events) publishClose() {
	e.bus.Publish(bus.Event{Type: bus.EventTypeCloseRequest})
}
