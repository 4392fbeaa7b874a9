// Package batch accumulates textured quads and flushes them to the GPU in as
// few draw calls as the submission order allows.
//
// A Batch is not safe for concurrent use; the goroutine that owns the frame
// must serialize Add and Draw.
package batch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

var (
	// ErrNilTexture is returned when a quad is added without a texture.
	ErrNilTexture = errors.New("batch: nil texture")

	// ErrBatchDisposed is returned by every operation after Dispose.
	ErrBatchDisposed = errors.New("batch: batch has been disposed")
)

// Quad is a fully specified sprite draw.
type Quad struct {
	Sprite     SpriteTexture
	Texture    gpu.Texture
	Sampler    gpu.Sampler
	Position   mgl32.Vec2
	Transform  mgl32.Mat3 // 2D affine, applied to each corner
	Color      colors.Color
	Flip       FlipMode
	LayerDepth float32
}

// Batch is a growable quad accumulator bound to one gpu.Context.
type Batch struct {
	ctx  *gpu.Context
	log  *slog.Logger
	opts Options

	vertices []PositionColorTextureVertex
	indices  []uint32
	bindings []gpu.TextureSamplerBinding
	count    int
	uploaded int

	vertexBuffer gpu.BufferHandle
	indexBuffer  gpu.BufferHandle
	fragment     [1]gpu.TextureSamplerBinding

	matrices []TransformVertexUniform
	matrix   TransformVertexUniform

	stats    Statistics
	disposed bool
}

// New creates a batch sized by opts. width and height define the default
// orthographic projection used until a matrix is pushed.
func New(ctx *gpu.Context, width, height int, opts Options) (*Batch, error) {
	if ctx == nil || ctx.Device == nil {
		return nil, errors.New("batch: nil graphics context")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	b := &Batch{
		ctx:  ctx,
		log:  ctx.Log(),
		opts: opts,
		matrix: TransformVertexUniform{
			ViewProjection: mgl32.Ortho(0, float32(width), 0, float32(height), -1, 1),
		},
	}
	if err := b.resize(opts.InitialCapacity); err != nil {
		return nil, err
	}
	return b, nil
}

// Add queues tex at position, sized to the whole texture, with a white tint.
func (b *Batch) Add(tex gpu.Texture, smp gpu.Sampler, position mgl32.Vec2, transform mgl32.Mat3, flip FlipMode, layerDepth float32) error {
	if tex == nil {
		return ErrNilTexture
	}
	return b.AddSprite(NewSpriteTexture(tex), tex, smp, position, transform, flip, layerDepth)
}

// AddSprite queues one region of tex, with a white tint.
func (b *Batch) AddSprite(sprite SpriteTexture, tex gpu.Texture, smp gpu.Sampler, position mgl32.Vec2, transform mgl32.Mat3, flip FlipMode, layerDepth float32) error {
	return b.AddQuad(Quad{
		Sprite:     sprite,
		Texture:    tex,
		Sampler:    smp,
		Position:   position,
		Transform:  transform,
		Color:      colors.White,
		Flip:       flip,
		LayerDepth: layerDepth,
	})
}

// AddQuad writes the four vertices of q into the next free slot, growing the
// batch first if it is full. Nothing reaches the GPU until Draw.
func (b *Batch) AddQuad(q Quad) error {
	if b.disposed {
		return ErrBatchDisposed
	}
	if q.Texture == nil {
		return ErrNilTexture
	}
	if q.Texture.IsDisposed() {
		return fmt.Errorf("batch: add texture %d: %w", q.Texture.Handle(), gpu.ErrDisposed)
	}

	if b.count == len(b.bindings) {
		if err := b.grow(); err != nil {
			return err
		}
	}

	b.bindings[b.count] = gpu.TextureSamplerBinding{Texture: q.Texture, Sampler: q.Sampler}

	x, y := q.Position.X(), q.Position.Y()
	w, h := float32(q.Sprite.Source.W), float32(q.Sprite.Source.H)

	// Vertex order is fixed by the index pattern: TL, BL, TR, BR.
	corners := [4]mgl32.Vec2{
		{x, y},
		{x, y + h},
		{x + w, y},
		{x + w, y + h},
	}

	base := b.count * vertsPerQuad
	for k, c := range corners {
		p := q.Transform.Mul3x1(mgl32.Vec3{c.X(), c.Y(), 1})
		u, v := cornerUV(q.Sprite.UV, k, q.Flip)
		b.vertices[base+k] = PositionColorTextureVertex{
			Position: mgl32.Vec3{p.X(), p.Y(), q.LayerDepth},
			Color:    q.Color,
			TexCoord: mgl32.Vec2{u, v},
		}
	}

	b.count++
	return nil
}

// Count is the number of quads waiting for Draw.
func (b *Batch) Count() int { return b.count }

// Capacity is the number of quads the batch holds without growing.
func (b *Batch) Capacity() int { return len(b.bindings) }

// Vertices exposes the written vertices of the pending quads.
func (b *Batch) Vertices() []PositionColorTextureVertex {
	return b.vertices[:b.count*vertsPerQuad]
}

// Bindings exposes the texture/sampler pair of each pending quad.
func (b *Batch) Bindings() []gpu.TextureSamplerBinding { return b.bindings[:b.count] }

// Dispose releases the GPU buffers. Calling it twice is a no-op.
func (b *Batch) Dispose() {
	if b.disposed {
		return
	}
	b.ctx.Device.DisposeBuffer(b.vertexBuffer)
	b.ctx.Device.DisposeBuffer(b.indexBuffer)
	b.vertexBuffer, b.indexBuffer = 0, 0
	b.count = 0
	b.disposed = true
}
