package component

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// SpriteRenderer draws one sprite region at its transform.
type SpriteRenderer struct {
	Sprite    batch.SpriteTexture
	Texture   gpu.Texture
	Transform *Transform2D
	Tint      colors.Color
	Depth     float32
	FlipX     bool
	FlipY     bool
}

func NewSpriteRenderer(tex gpu.Texture, sprite batch.SpriteTexture, t *Transform2D) *SpriteRenderer {
	return &SpriteRenderer{Sprite: sprite, Texture: tex, Transform: t, Tint: colors.White}
}

// Flip folds FlipX and FlipY into a batch flip mode.
func (s *SpriteRenderer) Flip() batch.FlipMode {
	var f batch.FlipMode
	if s.FlipX {
		f |= batch.FlipHorizontal
	}
	if s.FlipY {
		f |= batch.FlipVertical
	}
	return f
}

// Draw queues the sprite on d with sampler smp.
func (s *SpriteRenderer) Draw(d batch.Drawer, smp gpu.Sampler) error {
	return d.AddQuad(batch.Quad{
		Sprite:     s.Sprite,
		Texture:    s.Texture,
		Sampler:    smp,
		Position:   mgl32.Vec2{},
		Transform:  s.Transform.WorldMatrix(),
		Color:      s.Tint,
		Flip:       s.Flip(),
		LayerDepth: s.Depth,
	})
}
