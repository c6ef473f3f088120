package postfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBloomPassRejectsNegative(t *testing.T) {
	_, err := NewBloomPass(ResourceBlended, -0.1, 0.4, 0.4)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = NewBloomPass(ResourceBlended, 0.7, -1, 0.4)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = NewBloomPass(ResourceBlended, 0.7, 0.4, -0.4)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestBloomZeroStrengthIsIdentity(t *testing.T) {
	alloc := NewAllocator(0)
	src := newTarget(t, alloc, 16, 16, mgl32.Vec4{1, 1, 1, 1})
	out := newTarget(t, alloc, 16, 16, mgl32.Vec4{})

	p, err := NewBloomPass(ResourceBlended, 0, 0.4, 0.4)
	require.NoError(t, err)
	p.Execute([]*Target{src}, out)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestBloomBelowThresholdIsIdentity(t *testing.T) {
	alloc := NewAllocator(0)
	src := newTarget(t, alloc, 16, 16, mgl32.Vec4{0.1, 0.2, 0.3, 1})
	out := newTarget(t, alloc, 16, 16, mgl32.Vec4{})

	p, err := NewBloomPass(ResourceBlended, 0.7, 0.4, 0.4)
	require.NoError(t, err)
	p.Execute([]*Target{src}, out)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestBloomSpreadsBrightRegions(t *testing.T) {
	alloc := NewAllocator(0)
	src := newTarget(t, alloc, 32, 32, mgl32.Vec4{0, 0, 0, 1})
	for y := 14; y < 18; y++ {
		for x := 14; x < 18; x++ {
			src.Set(x, y, mgl32.Vec4{1, 1, 1, 1})
		}
	}
	out := newTarget(t, alloc, 32, 32, mgl32.Vec4{})

	p, err := NewBloomPass(ResourceBlended, 0.7, 0.4, 0.4)
	require.NoError(t, err)
	p.Execute([]*Target{src}, out)

	assert.Equal(t, 32, out.Width)
	assert.Equal(t, 32, out.Height)

	// Pixels next to the bright square pick up glow; the square itself only gains.
	near := out.At(12, 15)
	assert.Greater(t, near[0], float32(0))
	assert.GreaterOrEqual(t, out.At(15, 15)[0], float32(1))

	// Glow falls off with distance.
	far := out.At(1, 1)
	assert.Less(t, far[0], near[0])
}

func TestBloomKeepsHighDynamicRange(t *testing.T) {
	glow := func(level float32) *Target {
		alloc := NewAllocator(0)
		src := newTarget(t, alloc, 32, 32, mgl32.Vec4{0, 0, 0, 1})
		for y := 14; y < 18; y++ {
			for x := 14; x < 18; x++ {
				src.Set(x, y, mgl32.Vec4{level, level, level, 1})
			}
		}
		out := newTarget(t, alloc, 32, 32, mgl32.Vec4{})
		p, err := NewBloomPass(ResourceBlended, 0.7, 0.4, 0.4)
		require.NoError(t, err)
		p.Execute([]*Target{src}, out)
		return out
	}

	dim := glow(1)
	bright := glow(4)

	for _, x := range []int{12, 10, 6} {
		d, b := dim.At(x, 15)[0], bright.At(x, 15)[0]
		require.Greater(t, d, float32(0), "x=%d", x)
		assert.InEpsilon(t, 4, b/d, 1e-4, "glow at x=%d should scale with the source", x)
	}
	assert.Greater(t, bright.At(15, 15)[0], float32(4))
}

func TestLerpBloomFactor(t *testing.T) {
	assert.InDelta(t, 1.0, lerpBloomFactor(1.0, 0), 1e-6)
	assert.InDelta(t, 0.2, lerpBloomFactor(1.0, 1), 1e-6)
	assert.InDelta(t, 0.6, lerpBloomFactor(0.6, 0.5), 1e-6)
}
