package core

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/gfx/recording"
	"github.com/hubastard/canopy/engine/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spriteApp struct {
	texA, texB *recording.Texture
	events     []Event
	trace      []string
	renders    int
	sawCmd     bool
	err        error
}

func newSpriteApp() *spriteApp {
	return &spriteApp{texA: recording.NewTexture(16, 16), texB: recording.NewTexture(16, 16)}
}

func (a *spriteApp) OnStart(*Engine)             { a.trace = append(a.trace, "start") }
func (a *spriteApp) OnUpdate(*Engine, float64)   {}
func (a *spriteApp) OnEvent(_ *Engine, ev Event) { a.events = append(a.events, ev) }
func (a *spriteApp) OnShutdown(*Engine)          { a.trace = append(a.trace, "shutdown") }

func (a *spriteApp) OnRender(e *Engine, _ float64) {
	a.renders++
	a.sawCmd = e.Commands() != nil
	smp := e.Graphics.GlobalSampler
	for i, tex := range []*recording.Texture{a.texA, a.texA, a.texB} {
		pos := mgl32.Vec2{float32(i * 16), 0}
		if err := e.Batch.Add(tex, smp, pos, mgl32.Ident3(), batch.FlipNone, 0); err != nil {
			a.err = err
		}
	}
}

func headless(win *HeadlessWindow, rend *recording.Renderer) (func(Config) (Window, error), func(Window, Config) (Renderer, error)) {
	return func(Config) (Window, error) { return win, nil },
		func(Window, Config) (Renderer, error) { return rend, nil }
}

func TestRunHeadlessFrames(t *testing.T) {
	cfg := DefaultConfig()
	win := NewHeadlessWindow(cfg, 3)
	rend := recording.NewRenderer()
	app := newSpriteApp()

	newWin, newRend := headless(win, rend)
	require.NoError(t, Run(app, cfg, newWin, newRend))

	require.NoError(t, app.err)
	assert.Equal(t, 3, app.renders)
	assert.True(t, app.sawCmd)
	assert.Equal(t, 3, win.Frames())
	assert.Equal(t, []string{"start", "shutdown"}, app.trace)
	assert.True(t, rend.Closed())

	frames := rend.Frames()
	require.Len(t, frames, 3)
	for _, f := range frames {
		assert.Equal(t, cfg.Clear(), f.Clear)
		require.Len(t, f.DrawCalls, 2)
		assert.Equal(t, uint32(4), f.DrawCalls[0].PrimitiveCount)
		assert.Equal(t, uint32(8), f.DrawCalls[1].BaseVertex)
		assert.Equal(t, uint32(2), f.DrawCalls[1].PrimitiveCount)
	}
	assert.Zero(t, rend.Recorder().LiveBuffers(), "batch buffers are released on exit")
}

func TestRunDeliversEvents(t *testing.T) {
	cfg := DefaultConfig()
	win := NewHeadlessWindow(cfg, 0)
	rend := recording.NewRenderer()
	app := newSpriteApp()

	win.Post(EventResize{W: 800, H: 600})
	win.Post(EventKey{Key: KeyW, Down: true})
	win.Post(EventCloseRequested{})

	newWin, newRend := headless(win, rend)
	require.NoError(t, Run(app, cfg, newWin, newRend))

	require.Len(t, app.events, 3)
	assert.Equal(t, EventKey{Key: KeyW, Down: true}, app.events[1])
	w, h := rend.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, 1, win.Frames(), "close request ends the loop after the current frame")
}

func TestRunLayersHandleEventsFirst(t *testing.T) {
	cfg := DefaultConfig()
	win := NewHeadlessWindow(cfg, 1)
	rend := recording.NewRenderer()
	var trace []string
	app := &layeredApp{spriteApp: newSpriteApp(), layer: &traceLayer{name: "ui", handle: true, trace: &trace}}

	win.Post(EventKey{Key: KeyEscape, Down: true})
	newWin, newRend := headless(win, rend)
	require.NoError(t, Run(app, cfg, newWin, newRend))

	assert.Empty(t, app.events)
	assert.Contains(t, trace, "ui:event")
	assert.Contains(t, trace, "ui:render")
	assert.Equal(t, "ui:detach", trace[len(trace)-1])
}

type layeredApp struct {
	*spriteApp
	layer Layer
}

func (a *layeredApp) OnStart(e *Engine) {
	a.spriteApp.OnStart(e)
	e.Attach(a.layer)
}

func TestRunLogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	cfg := DefaultConfig()
	newWin, newRend := headless(NewHeadlessWindow(cfg, 1), recording.NewRenderer())
	require.NoError(t, Run(newSpriteApp(), cfg, newWin, newRend))

	assert.Contains(t, buf.String(), "engine started")
	assert.Contains(t, buf.String(), "engine exit")
}

func TestRunRecordsFrameScopes(t *testing.T) {
	profiler.Enable(1024)
	t.Cleanup(profiler.Disable)

	cfg := DefaultConfig()
	newWin, newRend := headless(NewHeadlessWindow(cfg, 2), recording.NewRenderer())
	require.NoError(t, Run(newSpriteApp(), cfg, newWin, newRend))

	// frame, frame.render and batch.draw open and close once per frame
	assert.Equal(t, 2*3*2, profiler.Recorded())
}

func TestRunErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 0
	err := Run(newSpriteApp(), cfg, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	boom := errors.New("no display")
	err = Run(newSpriteApp(), DefaultConfig(),
		func(Config) (Window, error) { return nil, boom },
		func(Window, Config) (Renderer, error) { return recording.NewRenderer(), nil })
	require.ErrorIs(t, err, boom)

	win := NewHeadlessWindow(DefaultConfig(), 1)
	err = Run(newSpriteApp(), DefaultConfig(),
		func(Config) (Window, error) { return win, nil },
		func(Window, Config) (Renderer, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.Zero(t, win.Frames())
}
