package main

import (
	"github.com/hubastard/canopy/engine/assets"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// App wires the sandbox layers; textures come from whichever backend main
// selected.
type App struct {
	opts       options
	newTexture func(*assets.Image) (gpu.Texture, error)
	stats      batch.Statistics
	world      *Layer2D
	debug      *LayerDebug
}

func (a *App) OnStart(e *core.Engine) {
	a.world = &Layer2D{app: a}
	e.Attach(a.world)
	a.debug = &LayerDebug{}
	e.Attach(a.debug)
}

func (a *App) OnUpdate(e *core.Engine, dt float64)    { a.stats = e.Stats }
func (a *App) OnRender(e *core.Engine, alpha float64) {}
func (a *App) OnEvent(e *core.Engine, ev core.Event)  {}

func (a *App) OnShutdown(e *core.Engine) {
	a.stats = e.Stats
	core.Logger().Info("sandbox shutdown",
		"frames", e.Frame(),
		"draw_calls", a.stats.DrawCalls,
		"quads", a.stats.QuadCount)
}
