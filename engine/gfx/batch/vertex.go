package batch

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
)

// PositionColorTextureVertex is the packed vertex the sprite shader reads:
// position (3 x f32), color (RGBA8), uv (2 x f32). 24 bytes, no padding.
type PositionColorTextureVertex struct {
	Position mgl32.Vec3
	Color    colors.Color
	TexCoord mgl32.Vec2
}

const (
	VertexStride = int(unsafe.Sizeof(PositionColorTextureVertex{}))

	// Attribute byte offsets inside a vertex.
	PositionOffset = int(unsafe.Offsetof(PositionColorTextureVertex{}.Position))
	ColorOffset    = int(unsafe.Offsetof(PositionColorTextureVertex{}.Color))
	TexCoordOffset = int(unsafe.Offsetof(PositionColorTextureVertex{}.TexCoord))

	indexStride  = 4
	vertsPerQuad = 4
	indsPerQuad  = 6
)

// TransformVertexUniform is the per-draw vertex uniform: one combined
// model-view-projection matrix.
type TransformVertexUniform struct {
	ViewProjection mgl32.Mat4
}

// vertexBytes views the first n vertices as raw bytes without copying.
func vertexBytes(v []PositionColorTextureVertex, n int) []byte {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), n*VertexStride)
}

func indexBytes(idx []uint32, n int) []byte {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&idx[0])), n*indexStride)
}
