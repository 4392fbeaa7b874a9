package core

import (
	"fmt"
	"runtime"
	"time"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/gfx/gpu"
	"github.com/hubastard/canopy/engine/profiler"
)

// Run wires the platform window + renderer and executes the main loop.
func Run(app App, cfg Config, newWindow func(Config) (Window, error), newRenderer func(Window, Config) (Renderer, error)) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := cfg.Validate(); err != nil {
		return err
	}
	log := Logger()

	win, err := newWindow(cfg)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	rend, err := newRenderer(win, cfg)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer rend.Shutdown()

	gctx, err := gpu.NewContext(rend.Device(), rend.DefaultSampler(), gpu.WithLogger(log))
	if err != nil {
		return err
	}

	w, h := win.FramebufferSize()
	rend.Resize(w, h)

	b, err := batch.New(gctx, w, h, cfg.Batch)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	defer b.Dispose()

	eng := &Engine{
		Window:   win,
		Renderer: rend,
		Graphics: gctx,
		Batch:    b,
		Input:    NewInput(),
		Config:   cfg,
		start:    time.Now(),
	}
	win.SetEventCallback(func(ev Event) {
		eng.Input.Handle(ev)
		if !eng.Layers.Dispatch(eng, ev) {
			app.OnEvent(eng, ev)
		}
		switch ev.(type) {
		case EventResize:
			fw, fh := win.FramebufferSize()
			if fw < 1 || fh < 1 {
				return
			}
			rend.Resize(fw, fh)
		case EventCloseRequested:
			win.RequestClose()
		}
	})

	app.OnStart(eng)
	log.Info("engine started", "width", w, "height", h, "tick_rate", cfg.TickRate)

	var (
		tick    = time.Second / time.Duration(cfg.TickRate)
		accum   time.Duration
		prev    = time.Now()
		clear   = cfg.Clear()
		maxStep = 10 // prevent spiral of death
	)

	for !win.ShouldClose() {
		now := time.Now()
		accum += now.Sub(prev)
		prev = now

		// Poll OS events (platform will emit via callbacks)
		win.PollEvents()

		steps := 0
		for accum >= tick && steps < maxStep {
			dt := tick.Seconds()
			eng.Layers.ForEach(func(l Layer) { l.OnUpdate(eng, dt) })
			app.OnUpdate(eng, dt)
			eng.Input.Update()
			accum -= tick
			steps++
		}
		alpha := float64(accum) / float64(tick)

		if err := renderFrame(eng, app, clear, alpha); err != nil {
			eng.detachAll()
			app.OnShutdown(eng)
			return err
		}
		win.SwapBuffers()
	}

	eng.detachAll()
	app.OnShutdown(eng)
	log.Info("engine exit", "frames", eng.frame, "uptime", eng.Uptime())
	return nil
}

// renderFrame records one frame: layers and the app add quads, and the
// default batch is flushed once at the end.
func renderFrame(eng *Engine, app App, clear colors.Color, alpha float64) error {
	defer profiler.Start("frame")()

	cmd := eng.Renderer.BeginFrame()
	eng.cmd = cmd
	defer func() { eng.cmd = nil }()
	eng.Renderer.Clear(clear)
	eng.Batch.ResetStats()

	endRender := profiler.Start("frame.render")
	eng.Layers.ForEach(func(l Layer) { l.OnRender(eng, alpha) })
	app.OnRender(eng, alpha)
	endRender()

	endDraw := profiler.Start("batch.draw")
	err := eng.Batch.Draw(cmd)
	endDraw()
	if err != nil {
		return fmt.Errorf("frame %d: %w", eng.frame, err)
	}
	eng.Stats = eng.Batch.Stats()
	eng.Renderer.EndFrame()
	eng.frame++
	return nil
}
