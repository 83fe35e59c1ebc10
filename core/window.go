package core

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	onResize func(width, height int, pixelRatio float32)
	onCursor func(x, y float64)
	onButton func(button int, pressed bool)
	onScroll func(xoff, yoff float64)
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

// NewWindow creates the window and makes its OpenGL 4.1 core context current
// on the calling thread.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	glfw.WindowHint(glfw.Samples, 4)

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}

	handle.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
		if window.onResize != nil {
			window.onResize(width, height, window.PixelRatio())
		}
	})
	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if window.onCursor != nil {
			window.onCursor(x, y)
		}
	})
	handle.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if window.onButton != nil && action != glfw.Repeat {
			window.onButton(int(button), action == glfw.Press)
		}
	})
	handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if window.onScroll != nil {
			window.onScroll(xoff, yoff)
		}
	})

	return window, nil
}

// PixelRatio is the ratio of framebuffer pixels to window coordinates.
func (w *Window) PixelRatio() float32 {
	sx, _ := w.Handle.GetContentScale()
	if sx <= 0 {
		return 1
	}
	return sx
}

func (w *Window) OnResize(cb func(width, height int, pixelRatio float32)) {
	w.onResize = cb
}

func (w *Window) OnCursor(cb func(x, y float64)) {
	w.onCursor = cb
}

func (w *Window) OnMouseButton(cb func(button int, pressed bool)) {
	w.onButton = cb
}

func (w *Window) OnScroll(cb func(xoff, yoff float64)) {
	w.onScroll = cb
}

// Run drives frame once per refresh until the window is closed or frame
// returns an error. While the window is minimised it blocks for the next
// event instead of spinning, so each wait runs exactly one frame.
func (w *Window) Run(frame func() error) error {
	for !w.Handle.ShouldClose() {
		if w.Minimised() {
			glfw.WaitEvents()
		} else {
			glfw.PollEvents()
		}
		if err := frame(); err != nil {
			return err
		}
		w.Handle.SwapBuffers()
	}
	slog.Debug("window closed", "title", w.Title)
	return nil
}

// Minimised reports whether the window is iconified.
func (w *Window) Minimised() bool {
	return w.Handle.GetAttrib(glfw.Iconified) == glfw.True
}

// Wake ends a wait in Run on a minimised window. It is safe to call from any
// goroutine; on a visible window it has no effect beyond an empty event.
func (w *Window) Wake() {
	glfw.PostEmptyEvent()
}

func (w *Window) Close() {
	w.Handle.SetShouldClose(true)
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	KeyEscape = int(glfw.KeyEscape)

	MouseButtonLeft   = int(glfw.MouseButtonLeft)
	MouseButtonRight  = int(glfw.MouseButtonRight)
	MouseButtonMiddle = int(glfw.MouseButtonMiddle)
)
