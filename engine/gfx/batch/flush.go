package batch

import (
	"fmt"

	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// Statistics counts what the batch submitted since the last ResetStats.
type Statistics struct {
	DrawCalls int
	QuadCount int
	Growths   int
}

// TotalVertexCount reports vertices submitted.
func (s Statistics) TotalVertexCount() int { return s.QuadCount * vertsPerQuad }

// TotalIndexCount reports indices submitted.
func (s Statistics) TotalIndexCount() int { return s.QuadCount * indsPerQuad }

// Stats returns the counters accumulated since the last ResetStats.
func (b *Batch) Stats() Statistics { return b.stats }

// ResetStats zeroes the counters, typically once per frame.
func (b *Batch) ResetStats() { b.stats = Statistics{} }

// Upload copies the written prefix of the vertex and index arrays to the GPU.
// Backends that forbid copies inside a render pass call it before the pass;
// Draw calls it otherwise. Uploading an unchanged batch again is a no-op.
func (b *Batch) Upload(cmd gpu.CommandBuffer) error {
	if b.disposed {
		return ErrBatchDisposed
	}
	if b.count == 0 || b.uploaded == b.count {
		return nil
	}
	if err := cmd.UploadBufferData(b.indexBuffer, indexBytes(b.indices, b.count*indsPerQuad), 0); err != nil {
		return fmt.Errorf("batch: upload indices: %w", err)
	}
	if err := cmd.UploadBufferData(b.vertexBuffer, vertexBytes(b.vertices, b.count*vertsPerQuad), 0); err != nil {
		return fmt.Errorf("batch: upload vertices: %w", err)
	}
	b.uploaded = b.count
	return nil
}

// Draw flushes the pending quads with the current matrix.
func (b *Batch) Draw(cmd gpu.CommandBuffer) error {
	return b.DrawWith(cmd, b.matrix)
}

// DrawWith flushes the pending quads with an explicit view-projection. Quads
// are drawn in submission order; each maximal run of adjacent quads sharing
// a texture and sampler becomes one draw call. The batch is empty afterwards.
func (b *Batch) DrawWith(cmd gpu.CommandBuffer, viewProjection TransformVertexUniform) error {
	if b.disposed {
		return ErrBatchDisposed
	}
	if b.count == 0 {
		return nil
	}
	if err := b.Upload(cmd); err != nil {
		return err
	}

	vertexOffset := cmd.PushVertexUniform(viewProjection.ViewProjection)
	cmd.BindVertexBuffers(b.vertexBuffer)
	cmd.BindIndexBuffer(b.indexBuffer, gpu.IndexThirtyTwo)

	b.fragment[0] = b.bindings[0]
	offset := 0
	for i := 1; i < b.count; i++ {
		if b.bindings[i].Same(b.fragment[0]) {
			continue
		}
		b.drawRun(cmd, offset, i, vertexOffset)
		b.fragment[0] = b.bindings[i]
		offset = i
	}
	b.drawRun(cmd, offset, b.count, vertexOffset)

	b.stats.QuadCount += b.count
	b.count = 0
	b.uploaded = 0
	return nil
}

// drawRun draws quads [from, to) with the binding in b.fragment.
func (b *Batch) drawRun(cmd gpu.CommandBuffer, from, to int, vertexOffset uint32) {
	cmd.BindFragmentSamplers(b.fragment[:]...)
	cmd.DrawIndexed(uint32(from*vertsPerQuad), 0, uint32((to-from)*2), vertexOffset, 0)
	b.stats.DrawCalls++
}
