package batch

import (
	"fmt"

	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// grow enlarges the batch by one growth step. Called only when full.
func (b *Batch) grow() error {
	from := len(b.bindings)
	to := b.opts.nextCapacity(from)
	if err := b.resize(to); err != nil {
		return err
	}
	b.stats.Growths++
	b.log.Debug("batch grown", "from", from, "to", to)
	return nil
}

// resize reallocates CPU storage and GPU buffers for capacity quads. The new
// GPU buffers are created before the old ones are released, so on error the
// batch keeps its previous, still consistent, state.
func (b *Batch) resize(capacity int) error {
	if capacity < len(b.bindings) {
		return fmt.Errorf("batch: refusing to shrink from %d to %d quads", len(b.bindings), capacity)
	}

	dev := b.ctx.Device
	vb, err := dev.CreateBuffer(gpu.UsageVertex, uint32(capacity*vertsPerQuad*VertexStride))
	if err != nil {
		return fmt.Errorf("batch: create vertex buffer for %d quads: %w", capacity, err)
	}
	ib, err := dev.CreateBuffer(gpu.UsageIndex, uint32(capacity*indsPerQuad*indexStride))
	if err != nil {
		dev.DisposeBuffer(vb)
		return fmt.Errorf("batch: create index buffer for %d quads: %w", capacity, err)
	}

	if b.vertexBuffer != 0 {
		dev.DisposeBuffer(b.vertexBuffer)
	}
	if b.indexBuffer != 0 {
		dev.DisposeBuffer(b.indexBuffer)
	}
	b.vertexBuffer, b.indexBuffer = vb, ib

	bindings := make([]gpu.TextureSamplerBinding, capacity)
	copy(bindings, b.bindings)
	b.bindings = bindings

	vertices := make([]PositionColorTextureVertex, capacity*vertsPerQuad)
	copy(vertices, b.vertices)
	b.vertices = vertices

	b.indices = GenerateIndexArray(uint32(capacity * indsPerQuad))
	// Fresh buffers hold nothing yet.
	b.uploaded = 0
	return nil
}
