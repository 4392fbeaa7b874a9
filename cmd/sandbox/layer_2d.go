package main

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/assets"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/component"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/gfx/gpu"
	"github.com/hubastard/canopy/engine/scene"
)

const atlasCell = 32

// ------- A tilemap with bouncing sprites on top -------
type Layer2D struct {
	app     *App
	cam     *scene.OrthoCamera2D
	ctrl    *scene.OrthoController2D
	shake   *component.Shaker
	atlas   gpu.Texture
	tiles   *component.Tilemap
	sprites []*bouncer
	bounds  mgl32.Vec2 // half extents of the play field
}

type bouncer struct {
	r    *component.SpriteRenderer
	vel  mgl32.Vec2
	spin float32
}

func (l *Layer2D) OnAttach(e *core.Engine) {
	log := core.Logger()
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewOrtho2D(w, h)
	l.ctrl = scene.NewOrthoController2D(l.cam)
	l.bounds = mgl32.Vec2{float32(w) / 2, float32(h) / 2}

	img, err := l.loadAtlas()
	if err != nil {
		log.Error("load atlas", "err", err)
		e.Window.RequestClose()
		return
	}
	l.atlas, err = l.app.newTexture(img)
	if err != nil {
		log.Error("create atlas texture", "err", err)
		e.Window.RequestClose()
		return
	}
	cell := min(img.W, img.H) / 2

	rng := rand.New(rand.NewPCG(7, 11))
	l.shake = component.NewShaker(4, rng)
	l.buildTilemap(cell)
	l.spawn(rng, cell, l.app.opts.sprites)
	log.Info("sandbox ready", "sprites", len(l.sprites), "atlas", img.Format, "atlas_w", img.W, "atlas_h", img.H)
}

func (l *Layer2D) loadAtlas() (*assets.Image, error) {
	if path := l.app.opts.texture; path != "" {
		return assets.LoadImage(path)
	}
	return generatedAtlas(), nil
}

// generatedAtlas is a 2x2 grid of flat-colored cells with a dark border.
func generatedAtlas() *assets.Image {
	const size = atlasCell * 2
	fills := [4]colors.Color{colors.Red, colors.Green, colors.Blue, colors.Gray}
	pix := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := fills[(y/atlasCell)*2+x/atlasCell]
			if lx, ly := x%atlasCell, y%atlasCell; lx == 0 || ly == 0 || lx == atlasCell-1 || ly == atlasCell-1 {
				c = colors.DarkGray
			}
			copy(pix[(y*size+x)*4:], c[:])
		}
	}
	return &assets.Image{W: size, H: size, Format: "generated", Pix: pix}
}

func (l *Layer2D) buildTilemap(cell int) {
	cols := int(2*l.bounds.X())/cell + 1
	rows := int(2*l.bounds.Y())/cell + 1
	l.tiles = component.NewTilemap(l.atlas, cols, rows, cell)
	l.tiles.Transform = component.NewTransform2D(l.bounds.Mul(-1))

	floor := batch.FromGrid(l.atlas, 1, 1, cell, cell)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			if (x+y)%2 == 0 {
				_ = l.tiles.Set(x, y, &floor)
			}
		}
	}
}

func (l *Layer2D) spawn(rng *rand.Rand, cell, n int) {
	tints := []colors.Color{colors.White, colors.Yellow, colors.Cyan, colors.Magenta}
	half := float32(cell) / 2
	l.sprites = make([]*bouncer, 0, n)
	for i := 0; i < n; i++ {
		sprite := batch.FromGrid(l.atlas, i%2, 0, cell, cell)
		pos := mgl32.Vec2{
			(rng.Float32()*2 - 1) * l.bounds.X(),
			(rng.Float32()*2 - 1) * l.bounds.Y(),
		}
		t := component.NewTransform2D(pos)
		t.Origin = mgl32.Vec2{half, half}

		r := component.NewSpriteRenderer(l.atlas, sprite, t)
		r.Tint = tints[rng.IntN(len(tints))]
		r.FlipX = rng.IntN(2) == 0
		l.sprites = append(l.sprites, &bouncer{
			r:    r,
			vel:  mgl32.Vec2{rng.Float32()*200 - 100, rng.Float32()*200 - 100},
			spin: rng.Float32()*4 - 2,
		})
	}
}

func (l *Layer2D) OnDetach(e *core.Engine) {}

func (l *Layer2D) OnUpdate(e *core.Engine, dt float64) {
	if l.atlas == nil {
		return
	}
	in := e.Input
	l.ctrl.Update(in, dt)
	l.shake.Update(dt)

	if in.IsKeyPressed(core.KeyEscape) {
		e.Window.RequestClose()
	}
	if in.IsKeyPressed(core.KeySpace) {
		l.shake.ShakeFor(0.4)
	}
	flip := in.IsKeyPressed(core.KeyF)

	step := float32(dt)
	for _, s := range l.sprites {
		t := s.r.Transform
		t.Position = t.Position.Add(s.vel.Mul(step))
		t.Rotation += s.spin * step
		if x := t.Position.X(); x < -l.bounds.X() || x > l.bounds.X() {
			s.vel[0] = -s.vel[0]
		}
		if y := t.Position.Y(); y < -l.bounds.Y() || y > l.bounds.Y() {
			s.vel[1] = -s.vel[1]
		}
		if flip {
			s.r.FlipX = !s.r.FlipX
		}
	}
}

func (l *Layer2D) OnRender(e *core.Engine, alpha float64) {
	if l.atlas == nil {
		return
	}
	b := e.Batch
	smp := e.Graphics.GlobalSampler

	off := l.shake.Value()
	l.cam.Move(off.X(), off.Y())
	b.PushCamera(l.cam)
	l.cam.Move(-off.X(), -off.Y())
	defer b.PopMatrix()

	log := core.Logger()
	if err := l.tiles.Draw(b, smp); err != nil {
		log.Error("draw tilemap", "err", err)
	}
	for _, s := range l.sprites {
		if err := s.r.Draw(b, smp); err != nil {
			log.Error("draw sprite", "err", err)
			break
		}
	}
	// Flush under the camera before the matrix is popped.
	if err := b.Draw(e.Commands()); err != nil {
		log.Error("flush world", "err", err)
	}
}

func (l *Layer2D) OnEvent(e *core.Engine, ev core.Event) bool {
	if l.ctrl != nil {
		l.ctrl.OnEvent(ev)
	}
	if r, ok := ev.(core.EventResize); ok && r.W > 0 && r.H > 0 {
		l.bounds = mgl32.Vec2{float32(r.W) / 2, float32(r.H) / 2}
	}
	return false
}
