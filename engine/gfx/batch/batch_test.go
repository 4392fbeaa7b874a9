package batch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/gpu"
	"github.com/hubastard/canopy/engine/gfx/recording"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T, opts Options, ctxOpts ...gpu.ContextOption) (*Batch, *recording.Device) {
	t.Helper()
	dev := recording.NewDevice()
	ctx, err := gpu.NewContext(dev, recording.NewSampler(gpu.PointClamp), ctxOpts...)
	require.NoError(t, err)
	b, err := New(ctx, 320, 180, opts)
	require.NoError(t, err)
	t.Cleanup(b.Dispose)
	return b, dev
}

func binding(tex gpu.Texture, smp gpu.Sampler) gpu.TextureSamplerBinding {
	return gpu.TextureSamplerBinding{Texture: tex, Sampler: smp}
}

func TestNewDefaults(t *testing.T) {
	b, dev := newTestBatch(t, Options{})
	assert.Equal(t, DefaultInitialCapacity, b.Capacity())
	assert.Equal(t, 0, b.Count())
	assert.Len(t, b.vertices, DefaultInitialCapacity*4)
	assert.Len(t, b.indices, DefaultInitialCapacity*6)
	assert.Equal(t, 2, dev.LiveBuffers())

	usage, ok := dev.BufferUsage(b.vertexBuffer)
	require.True(t, ok)
	assert.Equal(t, gpu.UsageVertex, usage)
	data, _ := dev.BufferData(b.indexBuffer)
	assert.Len(t, data, DefaultInitialCapacity*6*4)

	assert.Equal(t, mgl32.Ortho(0, 320, 0, 180, -1, 1), b.Matrix().ViewProjection)
}

func TestNewRejectsBadOptions(t *testing.T) {
	ctx, err := gpu.NewContext(recording.NewDevice(), recording.NewSampler(gpu.PointClamp))
	require.NoError(t, err)

	_, err = New(ctx, 1, 1, Options{Growth: "cubic"})
	require.Error(t, err)
	_, err = New(ctx, 1, 1, Options{InitialCapacity: -1})
	require.Error(t, err)
	_, err = New(nil, 1, 1, Options{})
	require.Error(t, err)
}

func TestVertexLayoutIsPacked(t *testing.T) {
	assert.Equal(t, 24, VertexStride)
	assert.Equal(t, 0, PositionOffset)
	assert.Equal(t, 12, ColorOffset)
	assert.Equal(t, 16, TexCoordOffset)
}

func TestAddWritesCornersInIndexOrder(t *testing.T) {
	b, _ := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(64, 32)
	sprite := FromPixels(tex, 0, 0, 32, 16)

	err := b.AddSprite(sprite, tex, b.ctx.GlobalSampler, mgl32.Vec2{1, 2}, mgl32.Translate2D(10, 20), FlipNone, 0.5)
	require.NoError(t, err)
	require.Equal(t, 1, b.Count())

	v := b.Vertices()
	require.Len(t, v, 4)
	assert.Equal(t, mgl32.Vec3{11, 22, 0.5}, v[0].Position) // TL
	assert.Equal(t, mgl32.Vec3{11, 38, 0.5}, v[1].Position) // BL
	assert.Equal(t, mgl32.Vec3{43, 22, 0.5}, v[2].Position) // TR
	assert.Equal(t, mgl32.Vec3{43, 38, 0.5}, v[3].Position) // BR
	for _, vx := range v {
		assert.Equal(t, colors.White, vx.Color)
	}
	assert.True(t, b.Bindings()[0].Same(binding(tex, b.ctx.GlobalSampler)))
}

func TestAddAppliesRotation(t *testing.T) {
	b, _ := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(2, 2)

	require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.HomogRotate2D(math.Pi/2), FlipNone, 0))

	tr := b.Vertices()[2].Position // local (2, 0) rotated a quarter turn
	assert.InDelta(t, 0, tr.X(), 1e-5)
	assert.InDelta(t, 2, tr.Y(), 1e-5)
}

func TestAddQuadTint(t *testing.T) {
	b, _ := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(8, 8)
	require.NoError(t, b.AddQuad(Quad{
		Sprite:    NewSpriteTexture(tex),
		Texture:   tex,
		Transform: mgl32.Ident3(),
		Color:     colors.Red,
	}))
	for _, vx := range b.Vertices() {
		assert.Equal(t, colors.Red, vx.Color)
	}
}

func TestAddDisposedTextureFailsWithoutMutation(t *testing.T) {
	b, _ := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(8, 8)
	tex.Dispose()

	err := b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0)
	require.ErrorIs(t, err, gpu.ErrDisposed)
	assert.Equal(t, 0, b.Count())
	assert.Nil(t, b.bindings[0].Texture)

	err = b.Add(nil, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0)
	require.ErrorIs(t, err, ErrNilTexture)
}

func TestFlipUVTable(t *testing.T) {
	tex := recording.NewTexture(100, 100)
	sprite := SpriteTexture{
		Source: Rect{W: 10, H: 10},
		UV:     UV{Position: mgl32.Vec2{0.25, 0.5}, Dimensions: mgl32.Vec2{0.5, 0.25}},
	}
	// Entries of the corner table as UVs: TL, BL, TR, BR.
	table := [4]mgl32.Vec2{{0.25, 0.5}, {0.25, 0.75}, {0.75, 0.5}, {0.75, 0.75}}

	for _, flip := range []FlipMode{FlipNone, FlipHorizontal, FlipVertical, FlipBoth} {
		t.Run(flip.String(), func(t *testing.T) {
			b, _ := newTestBatch(t, Options{InitialCapacity: 1})
			require.NoError(t, b.AddSprite(sprite, tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), flip, 0))
			v := b.Vertices()
			for k := 0; k < 4; k++ {
				want := table[k^int(flip)]
				assert.Equal(t, want, v[k].TexCoord, "corner %d", k)
			}
		})
	}

	t.Run("HighBitsIgnored", func(t *testing.T) {
		b, _ := newTestBatch(t, Options{InitialCapacity: 1})
		require.NoError(t, b.AddSprite(sprite, tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipMode(0xFC)|FlipVertical, 0))
		assert.Equal(t, table[2], b.Vertices()[0].TexCoord)
	})
}

func TestSingleQuadOneDraw(t *testing.T) {
	b, dev := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(8, 8)
	require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))

	require.NoError(t, b.Draw(dev))

	draws := dev.DrawCalls()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(0), draws[0].BaseVertex)
	assert.Equal(t, uint32(0), draws[0].StartIndex)
	assert.Equal(t, uint32(2), draws[0].PrimitiveCount)
	assert.True(t, draws[0].Binding.Same(binding(tex, b.ctx.GlobalSampler)))
	assert.Equal(t, 0, b.Count())

	var uploaded []int
	for _, c := range dev.Commands() {
		if c.Op == recording.OpUpload {
			uploaded = append(uploaded, c.Bytes)
		}
	}
	assert.Equal(t, []int{6 * 4, 4 * VertexStride}, uploaded, "only the written prefix is uploaded")
}

func TestDrawCommandOrder(t *testing.T) {
	b, dev := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(8, 8)
	require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
	require.NoError(t, b.Draw(dev))

	var ops []recording.Op
	for _, c := range dev.Commands() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []recording.Op{
		recording.OpUpload,
		recording.OpUpload,
		recording.OpPushVertexUniform,
		recording.OpBindVertexBuffers,
		recording.OpBindIndexBuffer,
		recording.OpBindFragmentSamplers,
		recording.OpDrawIndexed,
	}, ops)
	assert.Equal(t, gpu.IndexThirtyTwo, dev.Commands()[4].IndexSize)
}

func TestSameBindingCoalesces(t *testing.T) {
	const n = 100
	b, dev := newTestBatch(t, Options{})
	tex := recording.NewTexture(8, 8)
	for i := 0; i < n; i++ {
		require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{float32(i), 0}, mgl32.Ident3(), FlipNone, 0))
	}
	require.NoError(t, b.Draw(dev))

	draws := dev.DrawCalls()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(2*n), draws[0].PrimitiveCount)
	assert.Equal(t, Statistics{DrawCalls: 1, QuadCount: n}, b.Stats())
}

func TestBindingEqualityIsByHandle(t *testing.T) {
	b, dev := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(8, 8)
	smp := recording.NewSampler(gpu.PointClamp)
	alias := *smp // another value carrying the same handle

	require.NoError(t, b.Add(tex, smp, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
	require.NoError(t, b.Add(tex, &alias, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
	require.NoError(t, b.Draw(dev))
	assert.Len(t, dev.DrawCalls(), 1)
}

func TestAlternatingBindingsDoNotMerge(t *testing.T) {
	const n = 50
	b, dev := newTestBatch(t, Options{})
	a := recording.NewTexture(8, 8)
	c := recording.NewTexture(8, 8)
	smp := b.ctx.GlobalSampler

	for i := 0; i < n; i++ {
		require.NoError(t, b.Add(a, smp, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
		require.NoError(t, b.Add(c, smp, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
	}
	require.NoError(t, b.Draw(dev))

	draws := dev.DrawCalls()
	require.Len(t, draws, 2*n)
	for i, d := range draws {
		assert.Equal(t, uint32(i*4), d.BaseVertex)
		assert.Equal(t, uint32(2), d.PrimitiveCount)
		want := a
		if i%2 == 1 {
			want = c
		}
		assert.Equal(t, want.Handle(), d.Binding.Texture.Handle())
	}
}

func TestRunsFollowSubmissionOrder(t *testing.T) {
	b, dev := newTestBatch(t, Options{InitialCapacity: 8})
	a := recording.NewTexture(8, 8)
	c := recording.NewTexture(8, 8)
	linear := recording.NewSampler(gpu.LinearClamp)
	smp := b.ctx.GlobalSampler

	for _, bd := range []gpu.TextureSamplerBinding{
		binding(a, smp), binding(a, smp), binding(a, smp),
		binding(c, smp), binding(c, smp),
		binding(a, smp),
		binding(a, linear),
	} {
		require.NoError(t, b.Add(bd.Texture, bd.Sampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
	}
	require.NoError(t, b.Draw(dev))

	draws := dev.DrawCalls()
	require.Len(t, draws, 4)
	got := make([][2]uint32, len(draws))
	for i, d := range draws {
		got[i] = [2]uint32{d.BaseVertex, d.PrimitiveCount}
	}
	assert.Equal(t, [][2]uint32{{0, 6}, {12, 4}, {20, 2}, {24, 2}}, got)
	assert.Equal(t, linear.Handle(), draws[3].Binding.Sampler.Handle())
}

func TestDrawResetsAndSecondDrawIsNoop(t *testing.T) {
	b, dev := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(8, 8)
	require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
	require.NoError(t, b.Draw(dev))
	assert.Equal(t, 0, b.Count())

	dev.Reset()
	require.NoError(t, b.Draw(dev))
	assert.Empty(t, dev.Commands())
	require.NoError(t, b.Upload(dev))
	assert.Empty(t, dev.Commands())
}

func TestUploadIsNotRepeated(t *testing.T) {
	b, dev := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(8, 8)
	require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))

	require.NoError(t, b.Upload(dev))
	require.NoError(t, b.Upload(dev))
	require.NoError(t, b.Draw(dev))

	uploads := 0
	for _, c := range dev.Commands() {
		if c.Op == recording.OpUpload {
			uploads++
		}
	}
	assert.Equal(t, 2, uploads)
}

func TestUploadedVertexBytes(t *testing.T) {
	b, dev := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(8, 8)
	require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{3, 4}, mgl32.Ident3(), FlipNone, 0.25))
	require.NoError(t, b.Draw(dev))

	data, ok := dev.BufferData(b.vertexBuffer)
	require.True(t, ok)
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(data[off:])) }
	assert.Equal(t, float32(3), f(PositionOffset))
	assert.Equal(t, float32(4), f(PositionOffset+4))
	assert.Equal(t, float32(0.25), f(PositionOffset+8))
	assert.Equal(t, []byte{255, 255, 255, 255}, data[ColorOffset:ColorOffset+4])

	idx, ok := dev.BufferData(b.indexBuffer)
	require.True(t, ok)
	for i, want := range []uint32{0, 1, 2, 2, 1, 3} {
		assert.Equal(t, want, binary.LittleEndian.Uint32(idx[i*4:]))
	}
}

func TestDrawUsesCurrentOrExplicitMatrix(t *testing.T) {
	b, dev := newTestBatch(t, Options{InitialCapacity: 4})
	tex := recording.NewTexture(8, 8)
	cam := mgl32.Translate3D(5, 6, 0)
	b.PushMatrix(cam)

	require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
	require.NoError(t, b.Draw(dev))

	explicit := mgl32.Scale3D(2, 2, 1)
	require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
	require.NoError(t, b.DrawWith(dev, TransformVertexUniform{ViewProjection: explicit}))

	assert.Equal(t, []mgl32.Mat4{cam, explicit}, dev.Uniforms())
	draws := dev.DrawCalls()
	require.Len(t, draws, 2)
	assert.Equal(t, uint32(64), draws[1].VertexUniformOffset)
}

func TestGrowthKeepsArraysConsistent(t *testing.T) {
	const initial = 8
	b, dev := newTestBatch(t, Options{InitialCapacity: initial})
	tex := recording.NewTexture(8, 8)
	for i := 0; i < initial+1; i++ {
		require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{float32(i), 0}, mgl32.Ident3(), FlipNone, 0))
	}

	capacity := b.Capacity()
	assert.GreaterOrEqual(t, capacity, initial+DefaultGrowthStep)
	assert.Len(t, b.bindings, capacity)
	assert.Len(t, b.vertices, 4*capacity)
	assert.Len(t, b.indices, 6*capacity)
	assert.Equal(t, initial+1, b.Count())

	// Quads written before the growth survive it.
	assert.Equal(t, float32(0), b.Vertices()[0].Position.X())
	assert.Equal(t, float32(initial), b.Vertices()[initial*4].Position.X())

	assert.Equal(t, 4, dev.Created())
	assert.Equal(t, 2, dev.Disposed())
	assert.Equal(t, 2, dev.LiveBuffers())
	data, _ := dev.BufferData(b.vertexBuffer)
	assert.Len(t, data, 4*capacity*VertexStride)
	assert.Equal(t, 1, b.Stats().Growths)

	require.NoError(t, b.Draw(dev))
	require.Len(t, dev.DrawCalls(), 1)
	assert.Equal(t, uint32(2*(initial+1)), dev.DrawCalls()[0].PrimitiveCount)
}

func TestGrowthFromDefaultCapacity(t *testing.T) {
	b, _ := newTestBatch(t, Options{})
	tex := recording.NewTexture(8, 8)
	for i := 0; i < DefaultInitialCapacity+1; i++ {
		require.NoError(t, b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))
	}
	assert.Equal(t, DefaultInitialCapacity+DefaultGrowthStep, b.Capacity())
	assert.Len(t, b.vertices, 4*b.Capacity())
	assert.Len(t, b.indices, 6*b.Capacity())
}

func TestGeometricGrowth(t *testing.T) {
	b, _ := newTestBatch(t, Options{InitialCapacity: 4096, Growth: GrowGeometric})
	require.NoError(t, b.grow())
	assert.Equal(t, 8192, b.Capacity())

	small, _ := newTestBatch(t, Options{InitialCapacity: 4, Growth: GrowGeometric})
	require.NoError(t, small.grow())
	assert.Equal(t, 4+DefaultGrowthStep, small.Capacity())
}

func TestCapacityNeverShrinks(t *testing.T) {
	b, _ := newTestBatch(t, Options{InitialCapacity: 4})
	require.Error(t, b.resize(2))
	assert.Equal(t, 4, b.Capacity())
}

// failingDevice refuses buffer creation once its budget is spent.
type failingDevice struct {
	*recording.Device
	budget int
}

var errOutOfMemory = errors.New("out of memory")

func (d *failingDevice) CreateBuffer(usage gpu.BufferUsage, size uint32) (gpu.BufferHandle, error) {
	if d.budget == 0 {
		return 0, errOutOfMemory
	}
	d.budget--
	return d.Device.CreateBuffer(usage, size)
}

func TestGrowthFailureKeepsState(t *testing.T) {
	dev := &failingDevice{Device: recording.NewDevice(), budget: 3}
	ctx, err := gpu.NewContext(dev, recording.NewSampler(gpu.PointClamp))
	require.NoError(t, err)
	b, err := New(ctx, 1, 1, Options{InitialCapacity: 1})
	require.NoError(t, err)
	defer b.Dispose()

	tex := recording.NewTexture(8, 8)
	require.NoError(t, b.Add(tex, ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0))

	err = b.Add(tex, ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0)
	require.ErrorIs(t, err, errOutOfMemory)
	assert.Equal(t, 1, b.Count())
	assert.Equal(t, 1, b.Capacity())
	assert.Equal(t, 2, dev.LiveBuffers(), "the half-built vertex buffer is released")

	require.NoError(t, b.Draw(dev))
	assert.Len(t, dev.DrawCalls(), 1)
}

func TestPushPopMatrix(t *testing.T) {
	b, _ := newTestBatch(t, Options{InitialCapacity: 1})
	a := mgl32.Translate3D(1, 0, 0)
	c := mgl32.Translate3D(2, 0, 0)

	b.PushMatrix(a)
	b.PushMatrix(c)
	assert.Equal(t, c, b.Matrix().ViewProjection)
	assert.Equal(t, 2, b.MatrixDepth())

	b.PopMatrix()
	assert.Equal(t, c, b.Matrix().ViewProjection, "the popped record becomes current")
	b.PopMatrix()
	assert.Equal(t, a, b.Matrix().ViewProjection)
	assert.Equal(t, 0, b.MatrixDepth())
}

type fixedCamera struct{ m mgl32.Mat4 }

func (c fixedCamera) Transform() mgl32.Mat4 { return c.m }

func TestPushCamera(t *testing.T) {
	b, _ := newTestBatch(t, Options{InitialCapacity: 1})
	cam := fixedCamera{m: mgl32.Scale3D(3, 3, 1)}
	b.PushCamera(cam)
	assert.Equal(t, cam.m, b.Matrix().ViewProjection)
}

func TestPopEmptyStackLogsAndKeepsMatrix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	b, _ := newTestBatch(t, Options{InitialCapacity: 1}, gpu.WithLogger(logger))
	before := b.Matrix()

	assert.NotPanics(t, b.PopMatrix)
	assert.Equal(t, before, b.Matrix())
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "PopMatrix")
}

func TestDispose(t *testing.T) {
	b, dev := newTestBatch(t, Options{InitialCapacity: 4})
	b.Dispose()
	b.Dispose()
	assert.Equal(t, 0, dev.LiveBuffers())

	tex := recording.NewTexture(8, 8)
	err := b.Add(tex, b.ctx.GlobalSampler, mgl32.Vec2{}, mgl32.Ident3(), FlipNone, 0)
	require.ErrorIs(t, err, ErrBatchDisposed)
	require.ErrorIs(t, b.Draw(dev), ErrBatchDisposed)
}

func TestStatisticsTotals(t *testing.T) {
	s := Statistics{QuadCount: 3}
	assert.Equal(t, 12, s.TotalVertexCount())
	assert.Equal(t, 18, s.TotalIndexCount())
}
