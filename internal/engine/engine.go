// Package engine owns the GLFW window and drives the per-frame loop.
package engine

import (
	"errors"
	"fmt"
	"runtime"

	"Afterglow/internal/config"
	"Afterglow/internal/logger"
	"Afterglow/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Ticker renders one frame.
type Ticker interface {
	Tick() error
}

// Engine is a single window with an OpenGL 4.1 core context. It implements
// postfx.Viewport using the framebuffer size, which differs from the window
// size on high-DPI displays.
type Engine struct {
	Width  int
	Height int
	Title  string
	VSync  bool
	// TitleBarColor tints the window decorations where the platform allows it.
	TitleBarColor mgl32.Vec3

	window    *glfw.Window
	listeners []func(width, height int)

	// set by the framebuffer callback, dispatched after PollEvents
	pendingWidth, pendingHeight int
	resizePending               bool
}

func NewEngine(cfg config.WindowConfig) *Engine {
	return &Engine{
		Width:  cfg.Width,
		Height: cfg.Height,
		Title:  cfg.Title,
		VSync:  cfg.VSync,
	}
}

// Open creates the window and makes its context current on the calling
// thread, which stays locked to the OS thread until the process exits.
func (e *Engine) Open() error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("could not initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(e.Width, e.Height, e.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("could not create glfw window: %w", err)
	}
	e.window = window
	e.window.MakeContextCurrent()
	styleWindow(e.window, e.TitleBarColor)

	if err := gl.Init(); err != nil {
		e.Close()
		return fmt.Errorf("could not initialize OpenGL: %w", err)
	}
	if e.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	e.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		e.pendingWidth, e.pendingHeight = width, height
		e.resizePending = true
	})
	e.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	e.Width, e.Height = e.window.GetFramebufferSize()
	logger.Log.Info("Window opened",
		zap.String("title", e.Title),
		zap.Int("width", e.Width),
		zap.Int("height", e.Height),
		zap.String("gl", gl.GoStr(gl.GetString(gl.VERSION))))
	return nil
}

// Size returns the framebuffer size in pixels.
func (e *Engine) Size() (int, int) {
	return e.Width, e.Height
}

// OnResize registers fn to run when the framebuffer size changes. Zero sizes
// (a minimized window) are not reported.
func (e *Engine) OnResize(fn func(width, height int)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) dispatchResize() {
	if !e.resizePending {
		return
	}
	e.resizePending = false
	width, height := e.pendingWidth, e.pendingHeight
	if width <= 0 || height <= 0 {
		logger.Log.Debug("Ignoring empty framebuffer", zap.Int("width", width), zap.Int("height", height))
		return
	}
	if width == e.Width && height == e.Height {
		return
	}
	e.Width, e.Height = width, height
	for _, fn := range e.listeners {
		fn(width, height)
	}
}

// Run drives frames until the window is closed or ticker fails. The Up and
// Down keys dolly camera along its axis.
func (e *Engine) Run(ticker Ticker, camera *renderer.Camera) error {
	if e.window == nil {
		return errors.New("engine window is not open")
	}

	lastTime := glfw.GetTime()
	for !e.window.ShouldClose() {
		glfw.PollEvents()
		e.dispatchResize()

		currentTime := glfw.GetTime()
		deltaTime := float32(currentTime - lastTime)
		lastTime = currentTime

		if camera != nil {
			if e.window.GetKey(glfw.KeyUp) == glfw.Press {
				camera.Dolly(-1, deltaTime)
			}
			if e.window.GetKey(glfw.KeyDown) == glfw.Press {
				camera.Dolly(1, deltaTime)
			}
		}

		if e.window.GetAttrib(glfw.Iconified) == glfw.True {
			glfw.WaitEvents()
			continue
		}
		if err := ticker.Tick(); err != nil {
			return err
		}
		e.window.SwapBuffers()
	}
	return nil
}

// Close destroys the window and terminates GLFW.
func (e *Engine) Close() {
	if e.window != nil {
		e.window.Destroy()
		e.window = nil
	}
	glfw.Terminate()
}
