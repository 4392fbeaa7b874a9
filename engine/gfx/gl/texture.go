package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// Texture is an RGBA8 GL texture. Its handle is the GL texture name.
type Texture struct {
	id            uint32
	width, height int
}

// CreateTexture uploads tightly packed RGBA8 pixels, top row first.
func (r *RendererGL) CreateTexture(w, h int, rgba []byte) (*Texture, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("create texture: invalid size %dx%d", w, h)
	}
	if len(rgba) != w*h*4 {
		return nil, fmt.Errorf("create texture: got %d bytes, want %d", len(rgba), w*h*4)
	}
	t := &Texture{width: w, height: h}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

func (t *Texture) Handle() gpu.TextureHandle { return gpu.TextureHandle(t.id) }
func (t *Texture) Width() int                { return t.width }
func (t *Texture) Height() int               { return t.height }
func (t *Texture) IsDisposed() bool          { return t.id == 0 }

// Dispose deletes the GL texture. Quads added afterwards are rejected.
func (t *Texture) Dispose() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// Sampler is a GL sampler object bound alongside a texture on unit 0.
type Sampler struct {
	id   uint32
	Desc gpu.SamplerDesc
}

func (s *Sampler) Handle() gpu.SamplerHandle { return gpu.SamplerHandle(s.id) }

// CreateSampler builds a sampler object from desc.
func (r *RendererGL) CreateSampler(desc gpu.SamplerDesc) *Sampler {
	s := &Sampler{Desc: desc}
	gl.GenSamplers(1, &s.id)

	filter := int32(gl.NEAREST)
	if desc.Filter == gpu.FilterLinear {
		filter = gl.LINEAR
	}
	wrap := int32(gl.CLAMP_TO_EDGE)
	if desc.Address == gpu.AddressRepeat {
		wrap = gl.REPEAT
	}
	gl.SamplerParameteri(s.id, gl.TEXTURE_MIN_FILTER, filter)
	gl.SamplerParameteri(s.id, gl.TEXTURE_MAG_FILTER, filter)
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_S, wrap)
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_T, wrap)
	r.samplers = append(r.samplers, s)
	return s
}
