package scene

import (
	"math"

	"github.com/hubastard/canopy/engine/core"
)

// OrthoController2D: WASD move, Q/E rotate, mouse wheel zoom.
type OrthoController2D struct {
	MoveSpeed float32 // world units per second at zoom 1
	RotSpeed  float32 // radians per second
	ZoomSpeed float32 // zoom factor per wheel notch
	Camera    *OrthoCamera2D
}

func NewOrthoController2D(cam *OrthoCamera2D) *OrthoController2D {
	return &OrthoController2D{
		MoveSpeed: 300,
		RotSpeed:  2.0,
		ZoomSpeed: 1.2,
		Camera:    cam,
	}
}

func (cc *OrthoController2D) Update(in *core.Input, dt float64) {
	speed := cc.MoveSpeed * float32(dt) / cc.Camera.Zoom
	rotSpeed := cc.RotSpeed * float32(dt)

	if in.IsKeyDown(core.KeyW) {
		cc.Camera.Move(0, speed)
	}
	if in.IsKeyDown(core.KeyS) {
		cc.Camera.Move(0, -speed)
	}
	if in.IsKeyDown(core.KeyA) {
		cc.Camera.Move(-speed, 0)
	}
	if in.IsKeyDown(core.KeyD) {
		cc.Camera.Move(speed, 0)
	}
	if in.IsKeyDown(core.KeyQ) {
		cc.Camera.Rotate(rotSpeed)
	}
	if in.IsKeyDown(core.KeyE) {
		cc.Camera.Rotate(-rotSpeed)
	}

	if s := in.Scroll(); s != 0 {
		f := math.Pow(float64(cc.ZoomSpeed), s)
		cc.Camera.SetZoom(cc.Camera.Zoom * float32(f))
	}
}

// OnEvent keeps the camera viewport in step with the framebuffer.
func (cc *OrthoController2D) OnEvent(ev core.Event) {
	if r, ok := ev.(core.EventResize); ok && r.W > 0 && r.H > 0 {
		cc.Camera.SetViewportPixels(r.W, r.H)
	}
}
