package colors

// Color is 8-bit RGBA, the layout vertex colors are uploaded in.
type Color [4]uint8

var (
	White       = Color{255, 255, 255, 255}
	Red         = Color{255, 0, 0, 255}
	Green       = Color{0, 255, 0, 255}
	Blue        = Color{0, 0, 255, 255}
	Black       = Color{0, 0, 0, 255}
	Magenta     = Color{255, 0, 255, 255}
	Cyan        = Color{0, 255, 255, 255}
	Yellow      = Color{255, 255, 0, 255}
	Gray        = Color{128, 128, 128, 255}
	DarkGray    = Color{20, 26, 31, 255}
	Transparent = Color{}
)

// FromFloat converts normalized components, clamping to [0,1].
func FromFloat(r, g, b, a float32) Color {
	return Color{unorm(r), unorm(g), unorm(b), unorm(a)}
}

func (c Color) WithAlpha(a uint8) Color {
	c[3] = a
	return c
}

// Float returns normalized components, e.g. for a clear color.
func (c Color) Float() [4]float32 {
	return [4]float32{
		float32(c[0]) / 255,
		float32(c[1]) / 255,
		float32(c[2]) / 255,
		float32(c[3]) / 255,
	}
}

func unorm(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
