package batch

import "github.com/go-gl/mathgl/mgl32"

// Camera is anything that can produce a view-projection matrix.
type Camera interface {
	Transform() mgl32.Mat4
}

// PushMatrix pushes m and makes it the current view-projection.
func (b *Batch) PushMatrix(m mgl32.Mat4) {
	u := TransformVertexUniform{ViewProjection: m}
	b.matrices = append(b.matrices, u)
	b.matrix = u
}

// PushCamera pushes the camera's current transform.
func (b *Batch) PushCamera(c Camera) {
	b.PushMatrix(c.Transform())
}

// PopMatrix removes the top record and makes it current. Popping an empty
// stack is logged and leaves the current matrix untouched.
func (b *Batch) PopMatrix() {
	n := len(b.matrices)
	if n == 0 {
		b.log.Error("PopMatrix called with no matrix pushed")
		return
	}
	b.matrix = b.matrices[n-1]
	b.matrices = b.matrices[:n-1]
}

// Matrix is the uniform Draw uses when none is given.
func (b *Batch) Matrix() TransformVertexUniform { return b.matrix }

// MatrixDepth is the number of pushed matrices.
func (b *Batch) MatrixDepth() int { return len(b.matrices) }
