package component

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"github.com/hubastard/canopy/engine/gfx/gpu"
)

// TileDepth is the layer depth tiles are drawn at.
const TileDepth = 1

// Tilemap is a grid of optional sprite regions cut from one texture. Every
// non-empty tile is added to the batch on each Draw, so the whole map
// coalesces into a single draw call when nothing else interleaves.
type Tilemap struct {
	Texture   gpu.Texture
	GridSize  int
	Transform *Transform2D

	cols, rows int
	tiles      []*batch.SpriteTexture // column-major: x*rows + y
}

func NewTilemap(tex gpu.Texture, cols, rows, gridSize int) *Tilemap {
	return &Tilemap{
		Texture:  tex,
		GridSize: gridSize,
		cols:     cols,
		rows:     rows,
		tiles:    make([]*batch.SpriteTexture, cols*rows),
	}
}

func (m *Tilemap) Size() (cols, rows int) { return m.cols, m.rows }

func (m *Tilemap) index(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= m.cols || y >= m.rows {
		return 0, fmt.Errorf("tilemap: tile (%d,%d) outside %dx%d", x, y, m.cols, m.rows)
	}
	return x*m.rows + y, nil
}

// Set places sprite at (x, y); a nil sprite clears the tile.
func (m *Tilemap) Set(x, y int, sprite *batch.SpriteTexture) error {
	i, err := m.index(x, y)
	if err != nil {
		return err
	}
	m.tiles[i] = sprite
	return nil
}

// At returns the tile at (x, y), nil when empty or out of range.
func (m *Tilemap) At(x, y int) *batch.SpriteTexture {
	i, err := m.index(x, y)
	if err != nil {
		return nil
	}
	return m.tiles[i]
}

// Draw adds each non-empty tile at (x*GridSize, y*GridSize), column by column.
func (m *Tilemap) Draw(d batch.Drawer, smp gpu.Sampler) error {
	world := m.Transform.WorldMatrix()
	g := float32(m.GridSize)
	for x := 0; x < m.cols; x++ {
		for y := 0; y < m.rows; y++ {
			s := m.tiles[x*m.rows+y]
			if s == nil {
				continue
			}
			pos := mgl32.Vec2{float32(x) * g, float32(y) * g}
			if err := d.AddSprite(*s, m.Texture, smp, pos, world, batch.FlipNone, TileDepth); err != nil {
				return err
			}
		}
	}
	return nil
}
