package postfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// solidScene fills the scene target with the next color of a sequence, repeating
// the last one once the sequence is exhausted.
type solidScene struct {
	colors []mgl32.Vec4
	marker *mgl32.Vec4 // painted at pixel (1,1) on the first frame only
	frame  int
}

func (s *solidScene) RenderScene(dst *Target) {
	i := s.frame
	if i >= len(s.colors) {
		i = len(s.colors) - 1
	}
	dst.Fill(s.colors[i])
	if s.marker != nil && s.frame == 0 {
		dst.Set(1, 1, *s.marker)
	}
	s.frame++
}

// recordingDisplay keeps a copy of every presented frame.
type recordingDisplay struct {
	frames []*Target
}

func (d *recordingDisplay) Present(frame *Target) {
	cp := &Target{Width: frame.Width, Height: frame.Height, Pix: make([]float32, len(frame.Pix))}
	copy(cp.Pix, frame.Pix)
	d.frames = append(d.frames, cp)
}

type fakeViewport struct {
	width, height int
	listeners     []func(int, int)
}

func (v *fakeViewport) Size() (int, int) { return v.width, v.height }

func (v *fakeViewport) OnResize(fn func(int, int)) {
	v.listeners = append(v.listeners, fn)
}

func (v *fakeViewport) resize(width, height int) {
	v.width, v.height = width, height
	for _, fn := range v.listeners {
		fn(width, height)
	}
}

type floatSink struct {
	values []float32
}

func (s *floatSink) SetFloat(v float32) { s.values = append(s.values, v) }

func newTarget(t *testing.T, alloc *Allocator, width, height int, c mgl32.Vec4) *Target {
	t.Helper()
	target, err := alloc.Allocate(width, height, Transient)
	require.NoError(t, err)
	target.Fill(c)
	return target
}

func requireVec4InDelta(t *testing.T, want, got mgl32.Vec4, delta float64) {
	t.Helper()
	for i := 0; i < 4; i++ {
		require.InDelta(t, want[i], got[i], delta, "channel %d: want %v got %v", i, want, got)
	}
}
