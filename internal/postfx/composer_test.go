package postfx

import (
	"math"
	"testing"
	"time"

	"Afterglow/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestComposer(t *testing.T, cfg Config, vp *fakeViewport, scene Scene, opts ...Option) (*Composer, *recordingDisplay) {
	t.Helper()
	display := &recordingDisplay{}
	opts = append([]Option{WithClock(NewStepClock(60))}, opts...)
	c, err := NewComposer(cfg, vp, scene, display, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, display
}

func TestComposerTrailFormula(t *testing.T) {
	c1 := mgl32.Vec4{0.1, 0.2, 0.3, 1}
	c2 := mgl32.Vec4{0.3, 0.1, 0.0, 1}
	c3 := mgl32.Vec4{0.0, 0.3, 0.1, 1}
	scene := &solidScene{colors: []mgl32.Vec4{c1, c2, c3}}

	c, display := newTestComposer(t, DefaultConfig(), &fakeViewport{width: 8, height: 8}, scene)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Tick())
	}
	require.Len(t, display.frames, 3)

	requireVec4InDelta(t, c1, display.frames[0].At(4, 4), 1e-6)

	b2 := c2.Mul(0.875).Add(c1.Mul(0.125))
	requireVec4InDelta(t, b2, display.frames[1].At(4, 4), 1e-6)

	b3 := c3.Mul(0.875).Add(b2.Mul(0.125))
	requireVec4InDelta(t, b3, display.frames[2].At(4, 4), 1e-5)
	assert.EqualValues(t, 3, c.Frame())
}

func TestComposerSceneCaptureMixesOneFrameBack(t *testing.T) {
	base := mgl32.Vec4{0.1, 0.1, 0.1, 1}
	marker := mgl32.Vec4{0.3, 0, 0, 1}
	scene := &solidScene{colors: []mgl32.Vec4{base}, marker: &marker}

	cfg := DefaultConfig()
	cfg.CaptureSource = CaptureScene
	cfg.BloomEnabled = false
	c, display := newTestComposer(t, cfg, &fakeViewport{width: 4, height: 4}, scene)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Tick())
	}

	assert.Equal(t, marker, display.frames[0].At(1, 1))
	requireVec4InDelta(t, base.Mul(0.875).Add(marker.Mul(0.125)), display.frames[1].At(1, 1), 1e-6)
	assert.Equal(t, base, display.frames[2].At(1, 1), "marker must not survive past the next frame")
}

func TestComposerBlendedCaptureLeavesTrail(t *testing.T) {
	base := mgl32.Vec4{0.1, 0.1, 0.1, 1}
	marker := mgl32.Vec4{0.3, 0, 0, 1}
	scene := &solidScene{colors: []mgl32.Vec4{base}, marker: &marker}

	cfg := DefaultConfig()
	cfg.BloomEnabled = false
	c, display := newTestComposer(t, cfg, &fakeViewport{width: 4, height: 4}, scene)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Tick())
	}

	assert.Greater(t, display.frames[2].At(1, 1)[0], base[0])
	assert.Less(t, display.frames[2].At(1, 1)[0], display.frames[1].At(1, 1)[0])
}

func TestComposerClearPrimeFadesIn(t *testing.T) {
	c1 := mgl32.Vec4{0.2, 0.2, 0.2, 1}
	cfg := DefaultConfig()
	cfg.HistoryPrime = PrimeClear
	c, display := newTestComposer(t, cfg, &fakeViewport{width: 4, height: 4}, &solidScene{colors: []mgl32.Vec4{c1}})
	require.NoError(t, c.Tick())

	requireVec4InDelta(t, c1.Mul(0.875), display.frames[0].At(0, 0), 1e-6)
}

func TestComposerResizeReplacesEveryTarget(t *testing.T) {
	vp := &fakeViewport{width: 8, height: 8}
	c, display := newTestComposer(t, DefaultConfig(), vp, &solidScene{colors: []mgl32.Vec4{{0.2, 0.1, 0.1, 1}}})
	require.NoError(t, c.Tick())

	var old []*Target
	var maxID uint64
	for _, targets := range c.Targets() {
		for _, target := range targets {
			old = append(old, target)
			if target.ID() > maxID {
				maxID = target.ID()
			}
		}
	}
	require.Len(t, old, 5)

	vp.resize(16, 4)

	for _, target := range old {
		assert.True(t, target.Released(), "%s still live after resize", target)
	}
	for r, targets := range c.Targets() {
		for _, target := range targets {
			assert.Greater(t, target.ID(), maxID, "%s reused a handle", r)
			assert.False(t, target.Released())
			assert.Equal(t, 16, target.Width)
			assert.Equal(t, 4, target.Height)
		}
	}

	require.NoError(t, c.Tick())
	last := display.frames[len(display.frames)-1]
	assert.Equal(t, 16, last.Width)
	assert.Equal(t, 4, last.Height)
	w, h := c.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 4, h)
}

func TestComposerResizeSameSizeKeepsTargets(t *testing.T) {
	vp := &fakeViewport{width: 8, height: 8}
	c, _ := newTestComposer(t, DefaultConfig(), vp, &solidScene{colors: []mgl32.Vec4{{0, 0, 0, 1}}})
	before := c.Targets()[ResourceScene][0]
	require.NoError(t, c.Resize(8, 8))
	assert.Same(t, before, c.Targets()[ResourceScene][0])
}

func TestComposerInvalidConfiguration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MixRatio = 1.5
	scene := &solidScene{colors: []mgl32.Vec4{{0, 0, 0, 1}}}
	_, err := NewComposer(cfg, &fakeViewport{width: 8, height: 8}, scene, &recordingDisplay{})
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Zero(t, scene.frame)
}

func TestComposerAllocationFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTargetSize = 16
	scene := &solidScene{colors: []mgl32.Vec4{{0, 0, 0, 1}}}

	_, err := NewComposer(cfg, &fakeViewport{width: 32, height: 32}, scene, &recordingDisplay{})
	require.ErrorIs(t, err, ErrBufferAllocation)

	_, err = NewComposer(cfg, &fakeViewport{width: 0, height: 8}, scene, &recordingDisplay{})
	require.ErrorIs(t, err, ErrBufferAllocation)
}

func TestComposerRecoversAfterFailedResize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTargetSize = 16
	vp := &fakeViewport{width: 8, height: 8}
	c, _ := newTestComposer(t, cfg, vp, &solidScene{colors: []mgl32.Vec4{{0, 0, 0, 1}}})

	err := c.Resize(64, 64)
	require.ErrorIs(t, err, ErrBufferAllocation)
	assert.Nil(t, c.Graph())
	assert.ErrorIs(t, c.Tick(), ErrBufferAllocation)

	require.NoError(t, c.Resize(12, 12))
	assert.NoError(t, c.Tick())
}

func TestComposerPushesPhase(t *testing.T) {
	clock := NewStepClock(60)
	clock.Set(10 * time.Second)
	sink := &floatSink{}
	c, _ := newTestComposer(t, DefaultConfig(), &fakeViewport{width: 4, height: 4},
		&solidScene{colors: []mgl32.Vec4{{0, 0, 0, 1}}}, WithClock(clock), WithPhaseSink(sink))

	require.NoError(t, c.Tick())
	require.Len(t, sink.values, 1)
	assert.InDelta(t, 1.0, sink.values[0], 1e-6)
	assert.InDelta(t, 1.0, c.Phase(), 1e-6)
}

func TestComposerClose(t *testing.T) {
	c, _ := newTestComposer(t, DefaultConfig(), &fakeViewport{width: 4, height: 4}, &solidScene{colors: []mgl32.Vec4{{0, 0, 0, 1}}})
	targets := c.Targets()[ResourceHistory]
	c.Close()
	assert.ErrorIs(t, c.Tick(), ErrClosed)
	for _, target := range targets {
		assert.True(t, target.Released())
	}
}

func TestComposerIgnoresResizeAfterClose(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	vp := &fakeViewport{width: 4, height: 4}
	c, _ := newTestComposer(t, DefaultConfig(), vp, &solidScene{colors: []mgl32.Vec4{{0, 0, 0, 1}}})
	c.Close()

	assert.NotPanics(t, func() { vp.resize(8, 8) })
	assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("Ignoring resize of closed composer").Len())
	assert.ErrorIs(t, c.Tick(), ErrClosed)
}

func TestPhaseWraps(t *testing.T) {
	assert.Zero(t, Phase(0))
	assert.InDelta(t, 1.0, Phase(10*time.Second), 1e-6)

	periodNs := 2 * math.Pi * 10 * float64(time.Second)
	period := time.Duration(periodNs)
	assert.InDelta(t, 0.5, Phase(period+5*time.Second), 1e-4)

	long := Phase(100 * time.Hour)
	assert.GreaterOrEqual(t, long, float32(0))
	assert.Less(t, long, float32(2*math.Pi))
}

func TestConfigValidate(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), SubtleConfig(), StreakyConfig()} {
		assert.NoError(t, cfg.Validate())
	}

	bad := []func(*Config){
		func(c *Config) { c.MixRatio = -0.1 },
		func(c *Config) { c.MixRatio = float32(math.NaN()) },
		func(c *Config) { c.BloomStrength = -1 },
		func(c *Config) { c.CaptureSource = "everything" },
		func(c *Config) { c.HistoryPrime = "" },
		func(c *Config) { c.MaxTargetSize = -1 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfiguration, "case %d", i)
	}
}
