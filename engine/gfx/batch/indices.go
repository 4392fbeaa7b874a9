package batch

// GenerateIndexArray builds the triangle-list indices for maxIndices/6 quads.
// Quad i uses vertices 4i..4i+3 written TL, BL, TR, BR, so its two triangles
// share the BL-TR diagonal: [j, j+1, j+2, j+2, j+1, j+3] with j = 4i.
// A trailing remainder that does not fill a whole quad is dropped.
func GenerateIndexArray(maxIndices uint32) []uint32 {
	maxIndices -= maxIndices % indsPerQuad
	out := make([]uint32, maxIndices)
	for i, j := uint32(0), uint32(0); i < maxIndices; i, j = i+indsPerQuad, j+vertsPerQuad {
		out[i] = j
		out[i+1] = j + 1
		out[i+2] = j + 2
		out[i+3] = j + 2
		out[i+4] = j + 1
		out[i+5] = j + 3
	}
	return out
}
