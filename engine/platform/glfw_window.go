package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/canopy/engine/core"
)

// GLFWWindow is a core.Window backed by a GLFW window with a current GL 3.3
// core context. Input is forwarded as core events to the installed callback.
type GLFWWindow struct {
	win     *glfw.Window
	onEvent func(core.Event)
}

var _ core.Window = (*GLFWWindow)(nil)

var keyMap = map[glfw.Key]core.Key{
	glfw.KeyEscape: core.KeyEscape,
	glfw.KeySpace:  core.KeySpace,
	glfw.KeyW:      core.KeyW,
	glfw.KeyA:      core.KeyA,
	glfw.KeyS:      core.KeyS,
	glfw.KeyD:      core.KeyD,
	glfw.KeyQ:      core.KeyQ,
	glfw.KeyE:      core.KeyE,
	glfw.KeyF:      core.KeyF,
	glfw.KeyP:      core.KeyP,
}

var modMap = [...]struct {
	from glfw.ModifierKey
	to   core.Mod
}{
	{glfw.ModShift, core.ModShift},
	{glfw.ModControl, core.ModCtrl},
	{glfw.ModAlt, core.ModAlt},
	{glfw.ModSuper, core.ModSuper},
}

// NewWindow matches the window factory core.Run expects.
func NewWindow(cfg core.Config) (core.Window, error) {
	return NewGLFWWindow(cfg, nil)
}

// NewGLFWWindow opens a window and loads GL. It locks the calling goroutine
// to its OS thread, so call it from main before any GL work.
func NewGLFWWindow(cfg core.Config, onEvent func(core.Event)) (*GLFWWindow, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	// macOS only hands out core profiles with the forward-compatible bit.
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 0)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window %dx%d: %w", cfg.Width, cfg.Height, err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(swapInterval(cfg.VSync))

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	core.Logger().Debug("window created",
		"title", cfg.Title, "width", cfg.Width, "height", cfg.Height, "vsync", cfg.VSync)

	g := &GLFWWindow{win: win, onEvent: onEvent}
	g.installCallbacks()
	return g, nil
}

func swapInterval(vsync bool) int {
	if vsync {
		return 1
	}
	return 0
}

func (g *GLFWWindow) installCallbacks() {
	g.win.SetCloseCallback(func(*glfw.Window) {
		g.emit(core.EventCloseRequested{})
	})
	g.win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		g.emit(core.EventResize{W: w, H: h})
	})
	g.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		g.emit(core.EventMouseMove{X: x, Y: y})
	})
	g.win.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		g.emit(core.EventScroll{Xoff: dx, Yoff: dy})
	})
	g.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		k, ok := keyMap[key]
		if !ok {
			return
		}
		g.emit(core.EventKey{Key: k, Down: action != glfw.Release, Mods: translateMods(mods)})
	})
}

func (g *GLFWWindow) emit(ev core.Event) {
	if g.onEvent != nil {
		g.onEvent(ev)
	}
}

func (g *GLFWWindow) PollEvents()                          { glfw.PollEvents() }
func (g *GLFWWindow) SwapBuffers()                         { g.win.SwapBuffers() }
func (g *GLFWWindow) ShouldClose() bool                    { return g.win.ShouldClose() }
func (g *GLFWWindow) RequestClose()                        { g.win.SetShouldClose(true) }
func (g *GLFWWindow) FramebufferSize() (int, int)          { return g.win.GetFramebufferSize() }
func (g *GLFWWindow) SetTitle(title string)                { g.win.SetTitle(title) }
func (g *GLFWWindow) SetEventCallback(cb func(core.Event)) { g.onEvent = cb }

// Destroy releases the window and terminates GLFW. Call it after the
// renderer has shut down.
func (g *GLFWWindow) Destroy() {
	g.win.Destroy()
	glfw.Terminate()
}

func translateMods(m glfw.ModifierKey) core.Mod {
	out := core.ModNone
	for _, mm := range modMap {
		if m&mm.from != 0 {
			out |= mm.to
		}
	}
	return out
}
