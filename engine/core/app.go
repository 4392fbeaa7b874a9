package core

import (
	"time"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// App defines the game/application hooks.
type App interface {
	OnStart(e *Engine)                 // called once after window/renderer init
	OnUpdate(e *Engine, dt float64)    // called at a fixed tick (60Hz by default)
	OnRender(e *Engine, alpha float64) // render with interpolation alpha [0..1]
	OnEvent(e *Engine, ev Event)       // input/window events
	OnShutdown(e *Engine)              // before exit
}

// Engine exposes core services to the App.
type Engine struct {
	Window   Window
	Renderer Renderer
	Graphics *gpu.Context
	Batch    *batch.Batch
	Input    *Input
	Layers   LayerStack
	Config   Config
	Stats    batch.Statistics // batch counters of the last finished frame
	start    time.Time
	frame    uint64
	cmd      gpu.CommandBuffer
}

func (e *Engine) Uptime() time.Duration { return time.Since(e.start) }

// Commands is the command buffer of the frame being rendered, nil outside
// OnRender. Layers that flush the batch mid-frame draw into it.
func (e *Engine) Commands() gpu.CommandBuffer { return e.cmd }

// Frame is the number of frames rendered so far.
func (e *Engine) Frame() uint64 { return e.frame }

// Window abstraction.
type Window interface {
	PollEvents()
	SwapBuffers()
	ShouldClose() bool
	RequestClose()
	FramebufferSize() (int, int)
	SetTitle(title string)
	SetEventCallback(cb func(Event))
}

// Renderer is the backend side of a frame: it owns the device and hands out
// the command buffer the batch records into.
type Renderer interface {
	Device() gpu.Device
	DefaultSampler() gpu.Sampler
	Resize(w, h int)
	Clear(c colors.Color)
	BeginFrame() gpu.CommandBuffer
	EndFrame()
	Shutdown()
}

// Event model (can expand over time).
type Event interface{ isEvent() }

type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

type EventKey struct {
	Key  Key
	Down bool
	Mods Mod
}

func (EventKey) isEvent() {}

type EventMouseMove struct{ X, Y float64 }

func (EventMouseMove) isEvent() {}

type EventScroll struct{ Xoff, Yoff float64 }

func (EventScroll) isEvent() {}

// Key/mod enums (subset; add as needed).
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyF
	KeyP
)

type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)
