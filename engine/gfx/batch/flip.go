package batch

// FlipMode mirrors a quad's UVs. Only the low two bits are meaningful.
type FlipMode uint8

const (
	FlipNone       FlipMode = 0
	FlipHorizontal FlipMode = 1 << 0
	FlipVertical   FlipMode = 1 << 1
	FlipBoth                = FlipHorizontal | FlipVertical
)

func (f FlipMode) String() string {
	switch f & FlipBoth {
	case FlipNone:
		return "None"
	case FlipHorizontal:
		return "Horizontal"
	case FlipVertical:
		return "Vertical"
	default:
		return "Both"
	}
}

// Corner offsets inside the UV rect, indexed by vertex slot (TL, BL, TR, BR).
// Slot k reads entry k^flip, so a flip is a permutation of the table.
var (
	CornerOffsetX = [4]float32{0, 0, 1, 1}
	CornerOffsetY = [4]float32{0, 1, 0, 1}
)

// cornerUV returns the texture coordinate for vertex slot k.
func cornerUV(uv UV, k int, flip FlipMode) (u, v float32) {
	i := k ^ int(flip&FlipBoth)
	u = CornerOffsetX[i]*uv.Dimensions.X() + uv.Position.X()
	v = CornerOffsetY[i]*uv.Dimensions.Y() + uv.Position.Y()
	return u, v
}
