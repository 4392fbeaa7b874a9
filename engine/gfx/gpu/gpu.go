// Package gpu defines the backend contract the sprite batch draws through.
// Backends (OpenGL, the in-memory recorder) implement Device and CommandBuffer;
// nothing in the batch knows which one it talks to.
package gpu

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

var (
	// ErrDisposed is returned when a disposed resource is used.
	ErrDisposed = errors.New("gpu: resource has been disposed")

	// ErrInvalidBufferSize is returned when a buffer is created with size 0.
	ErrInvalidBufferSize = errors.New("gpu: invalid buffer size")

	// ErrUnknownBuffer is returned when a handle does not name a live buffer.
	ErrUnknownBuffer = errors.New("gpu: unknown buffer handle")

	// ErrUploadOutOfRange is returned when an upload overruns the buffer.
	ErrUploadOutOfRange = errors.New("gpu: upload range out of bounds")
)

// Opaque backend handles. Zero is never a valid handle.
type (
	BufferHandle  uint64
	TextureHandle uint64
	SamplerHandle uint64
)

// BufferUsage reuses the WebGPU usage flags.
type BufferUsage = gputypes.BufferUsage

const (
	UsageVertex = gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	UsageIndex  = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
)

// IndexElementSize is the width of one index in an index buffer.
type IndexElementSize int

const (
	IndexSixteen IndexElementSize = iota
	IndexThirtyTwo
)

// Bytes returns the width in bytes.
func (s IndexElementSize) Bytes() int {
	if s == IndexSixteen {
		return 2
	}
	return 4
}

func (s IndexElementSize) String() string {
	if s == IndexSixteen {
		return "uint16"
	}
	return "uint32"
}

// Texture is a sampled image owned by a backend.
type Texture interface {
	Handle() TextureHandle
	Width() int
	Height() int
	IsDisposed() bool
}

// Sampler describes how a texture is filtered and addressed.
type Sampler interface {
	Handle() SamplerHandle
}

// TextureSamplerBinding pairs a texture with the sampler it is read through.
// Two bindings are the same when their handles match, regardless of which
// Go values carry them.
type TextureSamplerBinding struct {
	Texture Texture
	Sampler Sampler
}

// Same reports whether b and o name the same texture and sampler.
func (b TextureSamplerBinding) Same(o TextureSamplerBinding) bool {
	return textureHandle(b.Texture) == textureHandle(o.Texture) &&
		samplerHandle(b.Sampler) == samplerHandle(o.Sampler)
}

func textureHandle(t Texture) TextureHandle {
	if t == nil {
		return 0
	}
	return t.Handle()
}

func samplerHandle(s Sampler) SamplerHandle {
	if s == nil {
		return 0
	}
	return s.Handle()
}

// Device allocates and releases GPU buffers.
type Device interface {
	CreateBuffer(usage BufferUsage, size uint32) (BufferHandle, error)
	DisposeBuffer(h BufferHandle)
}

// CommandBuffer records upload, binding and draw commands for one frame.
type CommandBuffer interface {
	UploadBufferData(h BufferHandle, data []byte, byteOffset uint32) error
	BindVertexBuffers(handles ...BufferHandle)
	BindIndexBuffer(h BufferHandle, size IndexElementSize)
	// PushVertexUniform stores m for the vertex stage and returns its offset.
	PushVertexUniform(m mgl32.Mat4) uint32
	BindFragmentSamplers(bindings ...TextureSamplerBinding)
	DrawIndexed(baseVertex, startIndex, primitiveCount, vertexUniformOffset, fragmentUniformOffset uint32)
}

// FilterMode selects texel filtering.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// AddressMode selects how UVs outside [0,1] are resolved.
type AddressMode int

const (
	AddressClamp AddressMode = iota
	AddressRepeat
)

// SamplerDesc describes a sampler to create.
type SamplerDesc struct {
	Filter  FilterMode
	Address AddressMode
}

var (
	PointClamp  = SamplerDesc{Filter: FilterNearest, Address: AddressClamp}
	LinearClamp = SamplerDesc{Filter: FilterLinear, Address: AddressClamp}
	PointWrap   = SamplerDesc{Filter: FilterNearest, Address: AddressRepeat}
)
