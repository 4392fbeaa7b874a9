package batch

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// Rect is a pixel rectangle inside a texture.
type Rect struct {
	X, Y, W, H int
}

// UV is a normalized sub-rectangle of a texture.
type UV struct {
	Position   mgl32.Vec2
	Dimensions mgl32.Vec2
}

func (uv UV) TopLeft() mgl32.Vec2    { return uv.Position }
func (uv UV) TopRight() mgl32.Vec2   { return uv.Position.Add(mgl32.Vec2{uv.Dimensions.X(), 0}) }
func (uv UV) BottomLeft() mgl32.Vec2 { return uv.Position.Add(mgl32.Vec2{0, uv.Dimensions.Y()}) }
func (uv UV) BottomRight() mgl32.Vec2 {
	return uv.Position.Add(uv.Dimensions)
}

// SpriteTexture is a region of an atlas: its pixel source rect (which sizes
// the quad) and the matching UVs.
type SpriteTexture struct {
	Source Rect
	UV     UV
}

// NewSpriteTexture covers the whole texture.
func NewSpriteTexture(tex gpu.Texture) SpriteTexture {
	return FromPixels(tex, 0, 0, tex.Width(), tex.Height())
}

// FromPixels builds a sprite from pixel coordinates within tex.
func FromPixels(tex gpu.Texture, x, y, w, h int) SpriteTexture {
	tw, th := float32(tex.Width()), float32(tex.Height())
	if tw == 0 || th == 0 {
		return SpriteTexture{Source: Rect{x, y, w, h}}
	}
	return SpriteTexture{
		Source: Rect{X: x, Y: y, W: w, H: h},
		UV: UV{
			Position:   mgl32.Vec2{float32(x) / tw, float32(y) / th},
			Dimensions: mgl32.Vec2{float32(w) / tw, float32(h) / th},
		},
	}
}

// FromGrid builds a sprite from tile grid coordinates (cx,cy) of cell size (cw,ch).
func FromGrid(tex gpu.Texture, cx, cy, cw, ch int) SpriteTexture {
	return FromPixels(tex, cx*cw, cy*ch, cw, ch)
}

func (s SpriteTexture) Width() int  { return s.Source.W }
func (s SpriteTexture) Height() int { return s.Source.H }

// Equal compares source rects only, like two frames cut from the same sheet.
func (s SpriteTexture) Equal(o SpriteTexture) bool { return s.Source == o.Source }
