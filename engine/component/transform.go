// Package component holds the drawable building blocks scenes are made of:
// transforms, sprite renderers and tilemaps.
package component

import "github.com/go-gl/mathgl/mgl32"

// Transform2D places an entity in the world. Origin is the local pivot for
// rotation and scale. A non-nil Parent composes its world matrix first.
type Transform2D struct {
	Position mgl32.Vec2
	Scale    mgl32.Vec2
	Rotation float32 // radians
	Origin   mgl32.Vec2
	Parent   *Transform2D
}

// NewTransform2D is an identity transform at position.
func NewTransform2D(position mgl32.Vec2) *Transform2D {
	return &Transform2D{Position: position, Scale: mgl32.Vec2{1, 1}}
}

// LocalMatrix is T(position) * R(rotation) * S(scale) * T(-origin).
func (t *Transform2D) LocalMatrix() mgl32.Mat3 {
	return mgl32.Translate2D(t.Position.X(), t.Position.Y()).
		Mul3(mgl32.HomogRotate2D(t.Rotation)).
		Mul3(mgl32.Scale2D(t.Scale.X(), t.Scale.Y())).
		Mul3(mgl32.Translate2D(-t.Origin.X(), -t.Origin.Y()))
}

// WorldMatrix is the local matrix composed under every parent.
func (t *Transform2D) WorldMatrix() mgl32.Mat3 {
	if t == nil {
		return mgl32.Ident3()
	}
	m := t.LocalMatrix()
	for p := t.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul3(m)
	}
	return m
}
