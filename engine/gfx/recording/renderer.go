package recording

import (
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// Frame summarizes one finished frame.
type Frame struct {
	Clear     colors.Color
	Width     int
	Height    int
	DrawCalls []DrawCall
	Commands  int
}

// Renderer drives a Device frame by frame. It satisfies the engine's
// renderer contract without touching a driver.
type Renderer struct {
	dev     *Device
	sampler *Sampler
	w, h    int
	clear   colors.Color
	frames  []Frame
	closed  bool
}

// NewRenderer creates a renderer over a fresh Device with a point-clamp sampler.
func NewRenderer() *Renderer {
	return &Renderer{dev: NewDevice(), sampler: NewSampler(gpu.PointClamp)}
}

func (r *Renderer) Device() gpu.Device          { return r.dev }
func (r *Renderer) DefaultSampler() gpu.Sampler { return r.sampler }
func (r *Renderer) Recorder() *Device           { return r.dev }
func (r *Renderer) Resize(w, h int)             { r.w, r.h = w, h }
func (r *Renderer) Clear(c colors.Color)        { r.clear = c }
func (r *Renderer) Frames() []Frame             { return r.frames }
func (r *Renderer) Closed() bool                { return r.closed }
func (r *Renderer) Size() (int, int)            { return r.w, r.h }

// BeginFrame clears the command log and returns the device to record into.
func (r *Renderer) BeginFrame() gpu.CommandBuffer {
	r.dev.Reset()
	return r.dev
}

// EndFrame snapshots the recorded frame.
func (r *Renderer) EndFrame() {
	r.frames = append(r.frames, Frame{
		Clear:     r.clear,
		Width:     r.w,
		Height:    r.h,
		DrawCalls: r.dev.DrawCalls(),
		Commands:  len(r.dev.Commands()),
	})
}

func (r *Renderer) Shutdown() { r.closed = true }
