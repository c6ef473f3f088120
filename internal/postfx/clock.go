package postfx

import (
	"math"
	"time"
)

// Clock supplies the elapsed session time at each tick.
type Clock interface {
	Elapsed() time.Duration
}

// WallClock measures real time since it was created.
type WallClock struct {
	start time.Time
}

// NewWallClock starts a wall clock now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

func (c *WallClock) Elapsed() time.Duration {
	return time.Since(c.start)
}

// StepClock advances by a fixed step each time Advance is called. Used for
// deterministic offline rendering.
type StepClock struct {
	Step    time.Duration
	elapsed time.Duration
}

// NewStepClock creates a clock ticking at fps frames per second.
func NewStepClock(fps int) *StepClock {
	if fps <= 0 {
		fps = 60
	}
	return &StepClock{Step: time.Second / time.Duration(fps)}
}

func (c *StepClock) Elapsed() time.Duration {
	return c.elapsed
}

// Advance moves the clock forward one step.
func (c *StepClock) Advance() {
	c.elapsed += c.Step
}

// Set jumps to an absolute elapsed time.
func (c *StepClock) Set(d time.Duration) {
	c.elapsed = d
}

// Phase rate: one radian of displacement phase per ten seconds.
const phaseMillisPerUnit = 10000.0

// Phase converts elapsed time into the displacement phase: elapsed milliseconds
// divided by 10000, wrapped into [0, 2π). The computation stays in float64 until
// after the wrap so precision does not degrade over long sessions.
func Phase(elapsed time.Duration) float32 {
	millis := float64(elapsed) / float64(time.Millisecond)
	p := math.Mod(millis/phaseMillisPerUnit, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	return float32(p)
}
