package postfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlendEndpoints(t *testing.T) {
	alloc := NewAllocator(0)
	current := newTarget(t, alloc, 4, 4, mgl32.Vec4{0.2, 0.4, 0.6, 1})
	history := newTarget(t, alloc, 4, 4, mgl32.Vec4{0.9, 0.1, 0.3, 1})
	dst := newTarget(t, alloc, 4, 4, mgl32.Vec4{})

	Blend(dst, current, history, 0)
	assert.Equal(t, current.Pix, dst.Pix, "mix 0 must reproduce the current frame")

	Blend(dst, current, history, 1)
	assert.Equal(t, history.Pix, dst.Pix, "mix 1 must reproduce the history")
}

func TestBlendFormula(t *testing.T) {
	alloc := NewAllocator(0)
	current := newTarget(t, alloc, 2, 2, mgl32.Vec4{1, 0, 0.5, 1})
	history := newTarget(t, alloc, 2, 2, mgl32.Vec4{0, 1, 0.5, 1})
	dst := newTarget(t, alloc, 2, 2, mgl32.Vec4{})

	Blend(dst, current, history, 0.125)
	requireVec4InDelta(t, mgl32.Vec4{0.875, 0.125, 0.5, 1}, dst.At(1, 1), 1e-6)
}

func TestBlendEqualInputsDoNotDrift(t *testing.T) {
	alloc := NewAllocator(0)
	c := mgl32.Vec4{0.123, 0.456, 0.789, 1}
	current := newTarget(t, alloc, 3, 3, c)
	history := newTarget(t, alloc, 3, 3, c)
	dst := newTarget(t, alloc, 3, 3, mgl32.Vec4{})

	for i := 0; i < 100; i++ {
		Blend(dst, current, history, 0.125)
		history.CopyFrom(dst)
	}
	assert.Equal(t, current.Pix, dst.Pix)
}

func TestBlendConvergesToStaticScene(t *testing.T) {
	alloc := NewAllocator(0)
	current := newTarget(t, alloc, 2, 2, mgl32.Vec4{0.5, 0.5, 0.5, 1})
	history := newTarget(t, alloc, 2, 2, mgl32.Vec4{0, 0, 0, 1})
	dst := newTarget(t, alloc, 2, 2, mgl32.Vec4{})

	for i := 0; i < 200; i++ {
		Blend(dst, current, history, 0.125)
		history.CopyFrom(dst)
	}
	requireVec4InDelta(t, current.At(0, 0), dst.At(0, 0), 1e-5)
}

func TestBlendResamplesMismatchedHistory(t *testing.T) {
	alloc := NewAllocator(0)
	current := newTarget(t, alloc, 4, 4, mgl32.Vec4{0, 0, 0, 1})
	history := newTarget(t, alloc, 2, 2, mgl32.Vec4{1, 1, 1, 1})
	dst := newTarget(t, alloc, 4, 4, mgl32.Vec4{})

	require.NotPanics(t, func() { Blend(dst, current, history, 0.5) })
	requireVec4InDelta(t, mgl32.Vec4{0.5, 0.5, 0.5, 1}, dst.At(3, 3), 1e-6)
}

func TestHistoryBufferSwap(t *testing.T) {
	alloc := NewAllocator(0)
	h, err := NewHistoryBuffer(alloc, 8, 8)
	require.NoError(t, err)

	front, back := h.Front(), h.Back()
	require.NotSame(t, front, back)
	assert.Equal(t, Persistent, front.Lifecycle)
	assert.False(t, h.Primed())

	h.Swap()
	assert.Same(t, back, h.Front())
	assert.Same(t, front, h.Back())

	src := newTarget(t, alloc, 8, 8, mgl32.Vec4{1, 0, 0, 1})
	h.Prime(src)
	assert.True(t, h.Primed())
	assert.Equal(t, src.Pix, h.Front().Pix)
}

func TestHistoryBufferAllocationFailureReleasesHalf(t *testing.T) {
	alloc := NewAllocator(4)
	_, err := NewHistoryBuffer(alloc, 8, 8)
	require.ErrorIs(t, err, ErrBufferAllocation)
	assert.Zero(t, alloc.Live())
}
