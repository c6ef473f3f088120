package postfx

import "fmt"

// HistoryBuffer holds two persistent targets so the capture pass can write this
// frame's content while stale readers still see the previous frame's.
type HistoryBuffer struct {
	targets    [2]*Target
	readIndex  int // holds the previous frame's content
	writeIndex int // receives this frame's capture
	primed     bool
}

// NewHistoryBuffer allocates both halves at the given size.
func NewHistoryBuffer(alloc *Allocator, width, height int) (*HistoryBuffer, error) {
	h := &HistoryBuffer{readIndex: 0, writeIndex: 1}
	for i := 0; i < 2; i++ {
		t, err := alloc.Allocate(width, height, Persistent)
		if err != nil {
			if i == 1 {
				alloc.Release(h.targets[0])
			}
			return nil, fmt.Errorf("history buffer half %d: %w", i, err)
		}
		h.targets[i] = t
	}
	return h, nil
}

// Front returns the target holding the previous frame's capture.
func (h *HistoryBuffer) Front() *Target {
	return h.targets[h.readIndex]
}

// Back returns the target the capture pass writes this frame.
func (h *HistoryBuffer) Back() *Target {
	return h.targets[h.writeIndex]
}

// Swap exchanges front and back. Called once, after the whole graph has executed.
func (h *HistoryBuffer) Swap() {
	h.readIndex, h.writeIndex = h.writeIndex, h.readIndex
}

// Prime seeds the front buffer so the first blended frame has real history to mix.
func (h *HistoryBuffer) Prime(src *Target) {
	h.Front().CopyFrom(src)
	h.primed = true
}

// Primed reports whether the front buffer has been seeded or written by a frame.
func (h *HistoryBuffer) Primed() bool {
	return h.primed
}

// Targets returns both halves, front first.
func (h *HistoryBuffer) Targets() []*Target {
	return []*Target{h.Front(), h.Back()}
}

func (h *HistoryBuffer) markWritten() {
	h.primed = true
}
