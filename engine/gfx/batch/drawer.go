package batch

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// Drawer is the capability components draw through.
type Drawer interface {
	Add(tex gpu.Texture, smp gpu.Sampler, position mgl32.Vec2, transform mgl32.Mat3, flip FlipMode, layerDepth float32) error
	AddSprite(sprite SpriteTexture, tex gpu.Texture, smp gpu.Sampler, position mgl32.Vec2, transform mgl32.Mat3, flip FlipMode, layerDepth float32) error
	AddQuad(q Quad) error
	Draw(cmd gpu.CommandBuffer) error
}

var _ Drawer = (*Batch)(nil)
