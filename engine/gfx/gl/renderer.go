// Package glbackend implements the engine renderer and the gpu device and
// command buffer contracts on OpenGL 3.3 core.
package glbackend

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// uniformSize is the byte stride of one pushed mat4.
const uniformSize = 64

// RendererGL records batch commands straight into the current GL context.
// Buffer handles are GL buffer names.
type RendererGL struct {
	win     core.Window
	program uint32
	vao     uint32
	uVP     int32

	buffers  map[gpu.BufferHandle]uint32 // name -> allocated size
	samplers []*Sampler
	sampler  *Sampler

	uniforms  []mgl32.Mat4
	boundVP   int
	indexType uint32
	indexSize uint32
}

var (
	_ core.Renderer     = (*RendererGL)(nil)
	_ gpu.Device        = (*RendererGL)(nil)
	_ gpu.CommandBuffer = (*RendererGL)(nil)
)

func NewRendererGL(win core.Window, _ core.Config) (*RendererGL, error) {
	r := &RendererGL{win: win, buffers: map[gpu.BufferHandle]uint32{}, boundVP: -1}
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RendererGL) Init() error {
	var err error
	r.program, err = makeProgram(vertexSource, fragmentSource)
	if err != nil {
		return err
	}
	r.uVP = gl.GetUniformLocation(r.program, gl.Str("uVP\x00"))
	gl.UseProgram(r.program)
	gl.Uniform1i(gl.GetUniformLocation(r.program, gl.Str("uTex\x00")), 0)
	gl.UseProgram(0)

	gl.GenVertexArrays(1, &r.vao)
	r.sampler = r.CreateSampler(gpu.PointClamp)

	// Quads are painted in submission order.
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	core.Logger().Info("gl renderer ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	return nil
}

func (r *RendererGL) Device() gpu.Device          { return r }
func (r *RendererGL) DefaultSampler() gpu.Sampler { return r.sampler }

func (r *RendererGL) Shutdown() {
	for h := range r.buffers {
		r.DisposeBuffer(h)
	}
	for _, s := range r.samplers {
		gl.DeleteSamplers(1, &s.id)
	}
	r.samplers = nil
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

func (r *RendererGL) Resize(w, h int) {
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (r *RendererGL) Clear(c colors.Color) {
	f := c.Float()
	gl.ClearColor(f[0], f[1], f[2], f[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// BeginFrame starts a frame; the renderer itself is the command buffer.
func (r *RendererGL) BeginFrame() gpu.CommandBuffer {
	r.uniforms = r.uniforms[:0]
	r.boundVP = -1
	gl.UseProgram(r.program)
	gl.BindVertexArray(r.vao)
	return r
}

func (r *RendererGL) EndFrame() {
	gl.BindVertexArray(0)
	gl.BindSampler(0, 0)
	gl.UseProgram(0)
}

// --- gpu.Device ---

func (r *RendererGL) CreateBuffer(usage gpu.BufferUsage, size uint32) (gpu.BufferHandle, error) {
	if size == 0 {
		return 0, gpu.ErrInvalidBufferSize
	}
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, id)
	gl.BufferData(gl.COPY_WRITE_BUFFER, int(size), nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteBuffers(1, &id)
		return 0, fmt.Errorf("create buffer (usage %v, %d bytes): gl error 0x%x", usage, size, e)
	}
	h := gpu.BufferHandle(id)
	r.buffers[h] = size
	return h, nil
}

func (r *RendererGL) DisposeBuffer(h gpu.BufferHandle) {
	if _, ok := r.buffers[h]; !ok {
		return
	}
	id := uint32(h)
	gl.DeleteBuffers(1, &id)
	delete(r.buffers, h)
}

// --- gpu.CommandBuffer ---

func (r *RendererGL) UploadBufferData(h gpu.BufferHandle, data []byte, byteOffset uint32) error {
	size, ok := r.buffers[h]
	if !ok {
		return gpu.ErrUnknownBuffer
	}
	if uint64(byteOffset)+uint64(len(data)) > uint64(size) {
		return gpu.ErrUploadOutOfRange
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, uint32(h))
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, int(byteOffset), len(data), unsafe.Pointer(&data[0]))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return nil
}

// BindVertexBuffers binds the first handle and re-points the sprite vertex
// attributes at it.
func (r *RendererGL) BindVertexBuffers(handles ...gpu.BufferHandle) {
	if len(handles) == 0 {
		return
	}
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(handles[0]))

	const stride = int32(batch.VertexStride)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(batch.PositionOffset)))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.UNSIGNED_BYTE, true, stride, unsafe.Pointer(uintptr(batch.ColorOffset)))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(batch.TexCoordOffset)))
}

func (r *RendererGL) BindIndexBuffer(h gpu.BufferHandle, size gpu.IndexElementSize) {
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(h))
	r.indexSize = uint32(size.Bytes())
	r.indexType = gl.UNSIGNED_INT
	if size == gpu.IndexSixteen {
		r.indexType = gl.UNSIGNED_SHORT
	}
}

// PushVertexUniform stages m and returns its byte offset in this frame's
// uniform stream.
func (r *RendererGL) PushVertexUniform(m mgl32.Mat4) uint32 {
	r.uniforms = append(r.uniforms, m)
	return uint32(len(r.uniforms)-1) * uniformSize
}

func (r *RendererGL) BindFragmentSamplers(bindings ...gpu.TextureSamplerBinding) {
	if len(bindings) == 0 {
		return
	}
	b := bindings[0]
	gl.ActiveTexture(gl.TEXTURE0)
	var tex uint32
	if b.Texture != nil {
		tex = uint32(b.Texture.Handle())
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	var smp uint32
	if b.Sampler != nil {
		smp = uint32(b.Sampler.Handle())
	}
	gl.BindSampler(0, smp)
}

func (r *RendererGL) DrawIndexed(baseVertex, startIndex, primitiveCount, vertexUniformOffset, _ uint32) {
	vp := int(vertexUniformOffset / uniformSize)
	if vp < len(r.uniforms) && vp != r.boundVP {
		m := r.uniforms[vp]
		gl.UniformMatrix4fv(r.uVP, 1, false, &m[0])
		r.boundVP = vp
	}
	gl.DrawElementsBaseVertex(gl.TRIANGLES, int32(primitiveCount*3), r.indexType,
		gl.PtrOffset(int(startIndex*r.indexSize)), int32(baseVertex))
}
