package main

import (
	"time"

	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/profiler"
)

// LayerDebug logs batch statistics once per second and dumps a profile on
// Ctrl+P.
type LayerDebug struct {
	elapsed   time.Duration
	lastFrame uint64
}

func (l *LayerDebug) OnAttach(e *core.Engine) {}
func (l *LayerDebug) OnDetach(e *core.Engine) {}

func (l *LayerDebug) OnUpdate(e *core.Engine, dt float64) {
	l.elapsed += time.Duration(dt * float64(time.Second))
	if l.elapsed < time.Second {
		return
	}
	frames := e.Frame() - l.lastFrame
	fps := float64(frames) / l.elapsed.Seconds()
	l.elapsed, l.lastFrame = 0, e.Frame()

	st := e.Stats
	mem := profiler.ReadMemStats()
	core.Logger().Info("frame stats",
		"fps", fps,
		"draw_calls", st.DrawCalls,
		"quads", st.QuadCount,
		"vertices", st.TotalVertexCount(),
		"indices", st.TotalIndexCount(),
		"growths", st.Growths,
		"capacity", e.Batch.Capacity(),
		"alloc_mb", float64(mem.Alloc)/(1<<20),
		"goroutines", mem.Goroutines)
}

func (l *LayerDebug) OnRender(e *core.Engine, alpha float64) {}

func (l *LayerDebug) OnEvent(e *core.Engine, ev core.Event) bool {
	k, ok := ev.(core.EventKey)
	if !ok || !k.Down || k.Key != core.KeyP || k.Mods&core.ModCtrl == 0 {
		return false
	}
	log := core.Logger()
	if !profiler.Enabled() {
		log.Warn("profiler is off; start the sandbox with --profile")
		return true
	}
	path, err := profiler.DumpTemp()
	if err != nil {
		log.Error("profiler dump", "err", err)
		return true
	}
	log.Info("speedscope dump", "path", path)
	return true
}
