// Package window owns the GLFW window that hosts the avatar. GLFW callbacks
// are published on the event bus so any number of components can listen.
package window

import (
	"fmt"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/normanking/heroavatar/internal/avatar"
	"github.com/normanking/heroavatar/internal/bus"
	"github.com/rs/zerolog"
)

var _ avatar.Surface = (*Window)(nil)

type Config struct {
	Title       string
	Width       int
	Height      int
	VSync       bool
	MSAA        int
	Transparent bool
}

// Window is a GLFW window with a current OpenGL 4.1 core context. Create
// and use it on the main thread after glfw.Init.
type Window struct {
	Events

	win *glfw.Window
	log zerolog.Logger
}

func New(cfg Config, events *bus.EventBus, log zerolog.Logger) (*Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	if cfg.MSAA > 0 {
		glfw.WindowHint(glfw.Samples, cfg.MSAA)
	}
	if cfg.Transparent {
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	}

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &Window{
		Events: NewEvents(events),
		win:    win,
		log:    log,
	}
	w.installCallbacks()

	fbW, fbH := win.GetFramebufferSize()
	log.Debug().
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Int("fb_width", fbW).
		Int("fb_height", fbH).
		Msg("window created")
	return w, nil
}

func (w *Window) installCallbacks() {
	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.publishResize(width, height)
	})
	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.publishPointer(x, y)
	})
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		w.publishKey(keyName(key, glfw.GetKeyName(key, scancode)), int(key))
	})
	w.win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.publishFocus(focused)
	})
	w.win.SetCloseCallback(func(_ *glfw.Window) {
		w.publishClose()
	})
}

// keyName prefers the layout-aware printable name, upper-cased.
func keyName(key glfw.Key, printable string) string {
	if printable != "" {
		return strings.ToUpper(printable)
	}
	switch key {
	case glfw.KeyEscape:
		return "Escape"
	case glfw.KeySpace:
		return "Space"
	case glfw.KeyEnter:
		return "Enter"
	case glfw.KeyTab:
		return "Tab"
	}
	if key >= glfw.KeyF1 && key <= glfw.KeyF12 {
		return fmt.Sprintf("F%d", int(key-glfw.KeyF1)+1)
	}
	return fmt.Sprintf("key%d", int(key))
}

func (w *Window) FramebufferSize() (width, height int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) WindowSize() (width, height int) {
	return w.win.GetSize()
}

func (w *Window) ContentScale() float32 {
	x, _ := w.win.GetContentScale()
	if x <= 0 {
		return 1
	}
	return x
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

// Close asks the frame loop to stop at the next frame.
func (w *Window) Close() {
	w.win.SetShouldClose(true)
}

// Present swaps buffers and pumps events, which runs the callbacks.
func (w *Window) Present() {
	w.win.SwapBuffers()
	glfw.PollEvents()
}

func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

// Time is the GLFW clock in seconds.
func Time() float64 {
	return glfw.GetTime()
}

func (w *Window) Destroy() {
	w.win.Destroy()
}
