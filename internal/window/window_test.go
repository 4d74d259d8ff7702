package window

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/normanking/heroavatar/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_ResizeAndPointer(t *testing.T) {
	ev := NewEvents(bus.NewEventBus())

	var size [2]int
	var pos [2]float64
	detachResize := ev.OnResize(func(w, h int) { size = [2]int{w, h} })
	ev.OnPointerMove(func(x, y float64) { pos = [2]float64{x, y} })

	ev.publishResize(800, 600)
	ev.publishPointer(12.5, 40)
	assert.Equal(t, [2]int{800, 600}, size)
	assert.Equal(t, [2]float64{12.5, 40}, pos)

	detachResize()
	ev.publishResize(1, 1)
	assert.Equal(t, [2]int{800, 600}, size, "detached listener is silent")
}

func TestEvents_PointerFansOut(t *testing.T) {
	ev := NewEvents(bus.NewEventBus())

	calls := 0
	ev.OnPointerMove(func(float64, float64) { calls++ })
	ev.OnPointerMove(func(float64, float64) { calls++ })

	ev.publishPointer(1, 2)
	assert.Equal(t, 2, calls)
}

func TestEvents_OnKey(t *testing.T) {
	ev := NewEvents(bus.NewEventBus())

	pressed := 0
	ev.OnKey("s", func() { pressed++ })

	ev.publishKey("S", int(glfw.KeyS))
	ev.publishKey("A", int(glfw.KeyA))
	assert.Equal(t, 1, pressed)
}

func TestEvents_FocusAndClose(t *testing.T) {
	b := bus.NewEventBus()
	ev := NewEvents(b)

	var focused []bool
	ev.OnFocus(func(f bool) { focused = append(focused, f) })
	closed := false
	b.Subscribe(bus.EventTypeCloseRequest, func(bus.Event) { closed = true })

	ev.publishFocus(false)
	ev.publishFocus(true)
	ev.publishClose()

	require.Len(t, focused, 2)
	assert.Equal(t, []bool{false, true}, focused)
	assert.True(t, closed)
	assert.Same(t, b, ev.Bus())
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, "S", keyName(glfw.KeyS, "s"))
	assert.Equal(t, "Escape", keyName(glfw.KeyEscape, ""))
	assert.Equal(t, "F5", keyName(glfw.KeyF5, ""))
	assert.Equal(t, "Space", keyName(glfw.KeySpace, ""))
}
