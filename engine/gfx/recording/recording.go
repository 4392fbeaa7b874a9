// Package recording is a headless GPU backend. It keeps buffer contents in
// memory and logs every command so frames can be inspected without a driver.
package recording

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// Op identifies a recorded command.
type Op int

const (
	OpUpload Op = iota
	OpBindVertexBuffers
	OpBindIndexBuffer
	OpPushVertexUniform
	OpBindFragmentSamplers
	OpDrawIndexed
)

func (o Op) String() string {
	switch o {
	case OpUpload:
		return "Upload"
	case OpBindVertexBuffers:
		return "BindVertexBuffers"
	case OpBindIndexBuffer:
		return "BindIndexBuffer"
	case OpPushVertexUniform:
		return "PushVertexUniform"
	case OpBindFragmentSamplers:
		return "BindFragmentSamplers"
	case OpDrawIndexed:
		return "DrawIndexed"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Command is one recorded call. Only the fields relevant to Op are set.
type Command struct {
	Op        Op
	Buffers   []gpu.BufferHandle
	IndexSize gpu.IndexElementSize
	Uniform   mgl32.Mat4
	Bindings  []gpu.TextureSamplerBinding
	Draw      DrawCall
	Bytes     int
}

// DrawCall captures the arguments of DrawIndexed together with the binding
// that was active when it was issued.
type DrawCall struct {
	BaseVertex            uint32
	StartIndex            uint32
	PrimitiveCount        uint32
	VertexUniformOffset   uint32
	FragmentUniformOffset uint32
	Binding               gpu.TextureSamplerBinding
}

type buffer struct {
	usage gpu.BufferUsage
	data  []byte
}

// Device implements gpu.Device and gpu.CommandBuffer in memory.
type Device struct {
	next     gpu.BufferHandle
	buffers  map[gpu.BufferHandle]*buffer
	created  int
	disposed int

	cmds     []Command
	uniforms []mgl32.Mat4
	bound    gpu.TextureSamplerBinding
}

// NewDevice returns an empty recorder.
func NewDevice() *Device {
	return &Device{buffers: make(map[gpu.BufferHandle]*buffer)}
}

var (
	_ gpu.Device        = (*Device)(nil)
	_ gpu.CommandBuffer = (*Device)(nil)
)

func (d *Device) CreateBuffer(usage gpu.BufferUsage, size uint32) (gpu.BufferHandle, error) {
	if size == 0 {
		return 0, gpu.ErrInvalidBufferSize
	}
	d.next++
	d.buffers[d.next] = &buffer{usage: usage, data: make([]byte, size)}
	d.created++
	return d.next, nil
}

func (d *Device) DisposeBuffer(h gpu.BufferHandle) {
	if _, ok := d.buffers[h]; !ok {
		return
	}
	delete(d.buffers, h)
	d.disposed++
}

func (d *Device) UploadBufferData(h gpu.BufferHandle, data []byte, byteOffset uint32) error {
	b, ok := d.buffers[h]
	if !ok {
		return fmt.Errorf("upload to %d: %w", h, gpu.ErrUnknownBuffer)
	}
	end := int(byteOffset) + len(data)
	if end > len(b.data) {
		return fmt.Errorf("upload %d bytes at %d into %d-byte buffer: %w",
			len(data), byteOffset, len(b.data), gpu.ErrUploadOutOfRange)
	}
	copy(b.data[byteOffset:end], data)
	d.cmds = append(d.cmds, Command{Op: OpUpload, Buffers: []gpu.BufferHandle{h}, Bytes: len(data)})
	return nil
}

func (d *Device) BindVertexBuffers(handles ...gpu.BufferHandle) {
	d.cmds = append(d.cmds, Command{Op: OpBindVertexBuffers, Buffers: append([]gpu.BufferHandle(nil), handles...)})
}

func (d *Device) BindIndexBuffer(h gpu.BufferHandle, size gpu.IndexElementSize) {
	d.cmds = append(d.cmds, Command{Op: OpBindIndexBuffer, Buffers: []gpu.BufferHandle{h}, IndexSize: size})
}

func (d *Device) PushVertexUniform(m mgl32.Mat4) uint32 {
	off := uint32(len(d.uniforms)) * 64
	d.uniforms = append(d.uniforms, m)
	d.cmds = append(d.cmds, Command{Op: OpPushVertexUniform, Uniform: m})
	return off
}

func (d *Device) BindFragmentSamplers(bindings ...gpu.TextureSamplerBinding) {
	if len(bindings) > 0 {
		d.bound = bindings[0]
	}
	d.cmds = append(d.cmds, Command{Op: OpBindFragmentSamplers, Bindings: append([]gpu.TextureSamplerBinding(nil), bindings...)})
}

func (d *Device) DrawIndexed(baseVertex, startIndex, primitiveCount, vertexUniformOffset, fragmentUniformOffset uint32) {
	d.cmds = append(d.cmds, Command{Op: OpDrawIndexed, Draw: DrawCall{
		BaseVertex:            baseVertex,
		StartIndex:            startIndex,
		PrimitiveCount:        primitiveCount,
		VertexUniformOffset:   vertexUniformOffset,
		FragmentUniformOffset: fragmentUniformOffset,
		Binding:               d.bound,
	}})
}

// Commands returns every command recorded since the last Reset.
func (d *Device) Commands() []Command { return d.cmds }

// DrawCalls returns only the recorded draws.
func (d *Device) DrawCalls() []DrawCall {
	var out []DrawCall
	for _, c := range d.cmds {
		if c.Op == OpDrawIndexed {
			out = append(out, c.Draw)
		}
	}
	return out
}

// Uniforms returns the pushed vertex uniforms in order.
func (d *Device) Uniforms() []mgl32.Mat4 { return d.uniforms }

// Reset clears the command log but keeps buffers alive.
func (d *Device) Reset() {
	d.cmds = d.cmds[:0]
	d.uniforms = d.uniforms[:0]
	d.bound = gpu.TextureSamplerBinding{}
}

// BufferData returns the current contents of a live buffer.
func (d *Device) BufferData(h gpu.BufferHandle) ([]byte, bool) {
	b, ok := d.buffers[h]
	if !ok {
		return nil, false
	}
	return b.data, true
}

// BufferUsage returns the usage a live buffer was created with.
func (d *Device) BufferUsage(h gpu.BufferHandle) (gpu.BufferUsage, bool) {
	b, ok := d.buffers[h]
	if !ok {
		return 0, false
	}
	return b.usage, true
}

// LiveBuffers reports how many buffers are currently allocated.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// Created and Disposed count buffer allocations over the device lifetime.
func (d *Device) Created() int  { return d.created }
func (d *Device) Disposed() int { return d.disposed }
