package recording

import (
	"sync/atomic"

	"github.com/hubastard/canopy/engine/gfx/gpu"
)

var (
	nextTexture atomic.Uint64
	nextSampler atomic.Uint64
)

// Texture is a sized placeholder image. It holds no pixels.
type Texture struct {
	handle        gpu.TextureHandle
	width, height int
	disposed      bool
}

// NewTexture allocates a texture with a process-unique handle.
func NewTexture(width, height int) *Texture {
	return &Texture{
		handle: gpu.TextureHandle(nextTexture.Add(1)),
		width:  width,
		height: height,
	}
}

func (t *Texture) Handle() gpu.TextureHandle { return t.handle }
func (t *Texture) Width() int                { return t.width }
func (t *Texture) Height() int               { return t.height }
func (t *Texture) IsDisposed() bool          { return t.disposed }
func (t *Texture) Dispose()                  { t.disposed = true }

// Sampler is a recorded sampler description.
type Sampler struct {
	handle gpu.SamplerHandle
	Desc   gpu.SamplerDesc
}

// NewSampler allocates a sampler with a process-unique handle.
func NewSampler(desc gpu.SamplerDesc) *Sampler {
	return &Sampler{handle: gpu.SamplerHandle(nextSampler.Add(1)), Desc: desc}
}

func (s *Sampler) Handle() gpu.SamplerHandle { return s.handle }
