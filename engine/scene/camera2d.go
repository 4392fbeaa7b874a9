// Package scene holds cameras and their input controllers.
package scene

import "github.com/go-gl/mathgl/mgl32"

const minZoom = 0.05

// OrthoCamera2D provides an orthographic camera with position, rotation, zoom.
// The camera position is the world point at the center of the viewport.
type OrthoCamera2D struct {
	Left, Right, Bottom, Top float32
	Near, Far                float32
	X, Y                     float32
	RotationRad              float32
	Zoom                     float32 // 1 = no zoom
	vp                       mgl32.Mat4
	dirty                    bool
}

func NewOrtho2D(width, height int) *OrthoCamera2D {
	c := &OrthoCamera2D{Near: -1, Far: 1, Zoom: 1}
	c.SetViewportPixels(width, height)
	c.Recalculate()
	return c
}

func (c *OrthoCamera2D) SetViewportPixels(w, h int) {
	halfW := float32(w) * 0.5
	halfH := float32(h) * 0.5
	c.Left, c.Right = -halfW, halfW
	c.Bottom, c.Top = -halfH, halfH
	c.dirty = true
}

func (c *OrthoCamera2D) Move(dx, dy float32) { c.X += dx; c.Y += dy; c.dirty = true }
func (c *OrthoCamera2D) Rotate(dRad float32) { c.RotationRad += dRad; c.dirty = true }
func (c *OrthoCamera2D) SetZoom(z float32) {
	c.Zoom = max(z, minZoom)
	c.dirty = true
}

// Transform is the view-projection matrix. It satisfies batch.Camera.
func (c *OrthoCamera2D) Transform() mgl32.Mat4 {
	if c.dirty {
		c.Recalculate()
	}
	return c.vp
}

func (c *OrthoCamera2D) Recalculate() {
	z := c.Zoom
	proj := mgl32.Ortho(c.Left/z, c.Right/z, c.Bottom/z, c.Top/z, c.Near, c.Far)
	// view = R(-rot) * T(-pos) for column vectors
	view := mgl32.HomogRotate3DZ(-c.RotationRad).Mul4(mgl32.Translate3D(-c.X, -c.Y, 0))
	c.vp = proj.Mul4(view)
	c.dirty = false
}

// ScreenToWorld maps a framebuffer pixel (origin top-left) to world space.
func (c *OrthoCamera2D) ScreenToWorld(px, py float32) mgl32.Vec2 {
	w, h := c.Right-c.Left, c.Top-c.Bottom
	ndc := mgl32.Vec4{2*px/w - 1, 1 - 2*py/h, 0, 1}
	p := c.Transform().Inv().Mul4x1(ndc)
	return mgl32.Vec2{p.X(), p.Y()}
}
