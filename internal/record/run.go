package record

import (
	"context"
	"time"

	"Afterglow/internal/logger"
	"Afterglow/internal/postfx"

	"go.uber.org/zap"
)

// StaticViewport is a fixed-size viewport for offline rendering.
type StaticViewport struct {
	Width, Height int
}

func (v StaticViewport) Size() (int, int) { return v.Width, v.Height }

func (StaticViewport) OnResize(func(width, height int)) {}

// Ticker renders one frame.
type Ticker interface {
	Tick() error
}

// Run ticks frames times, advancing clock one step after each frame. It stops
// early when ctx is cancelled or a tick fails.
func Run(ctx context.Context, ticker Ticker, clock *postfx.StepClock, frames int) error {
	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			logger.Log.Warn("Recording interrupted", zap.Int("frame", i), zap.Error(err))
			return err
		}
		if err := ticker.Tick(); err != nil {
			return err
		}
		clock.Advance()

		if (i+1)%100 == 0 {
			logger.Log.Debug("Rendered frames", zap.Int("frames", i+1), zap.Duration("elapsed", time.Since(start)))
		}
	}
	logger.Log.Info("Rendering complete",
		zap.Int("frames", frames),
		zap.Duration("elapsed", time.Since(start)),
		zap.Duration("clip", clock.Elapsed()))
	return nil
}
