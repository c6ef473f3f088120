package postfx

import (
	"fmt"

	"github.com/chewxy/math32"
)

// CaptureSource selects which image the save pass writes into the history buffer.
type CaptureSource string

const (
	// CaptureBlended feeds the blended output back, producing an exponentially
	// decaying trail.
	CaptureBlended CaptureSource = "blended"
	// CaptureScene stores the pre-blend composite, so each frame mixes with exactly
	// one previous frame.
	CaptureScene CaptureSource = "scene"
)

// HistoryPrime selects how the history buffer is seeded after a (re)build.
type HistoryPrime string

const (
	// PrimeFirstFrame copies the first rendered scene into the history front buffer.
	PrimeFirstFrame HistoryPrime = "first_frame"
	// PrimeClear leaves the history black, so the first frames fade in.
	PrimeClear HistoryPrime = "clear"
)

// Config holds the tunable parameters of the postprocessing chain.
type Config struct {
	// Feedback blend
	MixRatio      float32       `toml:"mix_ratio" json:"mixRatio"`
	CaptureSource CaptureSource `toml:"capture_source" json:"captureSource"`
	HistoryPrime  HistoryPrime  `toml:"history_prime" json:"historyPrime"`

	// Bloom
	BloomEnabled   bool    `toml:"bloom_enabled" json:"bloomEnabled"`
	BloomStrength  float32 `toml:"bloom_strength" json:"bloomStrength"`
	BloomRadius    float32 `toml:"bloom_radius" json:"bloomRadius"`
	BloomThreshold float32 `toml:"bloom_threshold" json:"bloomThreshold"`

	// Render targets
	MaxTargetSize int `toml:"max_target_size" json:"maxTargetSize"`
}

// DefaultConfig returns the reference look: a short trail and a soft bloom.
func DefaultConfig() Config {
	return Config{
		MixRatio:      0.125,
		CaptureSource: CaptureBlended,
		HistoryPrime:  PrimeFirstFrame,

		BloomEnabled:   true,
		BloomStrength:  0.7,
		BloomRadius:    0.4,
		BloomThreshold: 0.4,

		MaxTargetSize: DefaultMaxTargetSize,
	}
}

// SubtleConfig keeps the trail barely visible and the bloom restrained.
func SubtleConfig() Config {
	config := DefaultConfig()
	config.MixRatio = 0.05
	config.BloomStrength = 0.35
	config.BloomThreshold = 0.6
	return config
}

// StreakyConfig leans on the feedback loop for long smears.
func StreakyConfig() Config {
	config := DefaultConfig()
	config.MixRatio = 0.6
	config.BloomStrength = 0.9
	config.BloomRadius = 0.6
	return config
}

// Validate rejects out-of-range values before any target is allocated.
func (c Config) Validate() error {
	if math32.IsNaN(c.MixRatio) || c.MixRatio < 0 || c.MixRatio > 1 {
		return fmt.Errorf("%w: mix_ratio %v outside [0,1]", ErrInvalidConfiguration, c.MixRatio)
	}
	if math32.IsNaN(c.BloomStrength) || c.BloomStrength < 0 {
		return fmt.Errorf("%w: bloom_strength %v is negative", ErrInvalidConfiguration, c.BloomStrength)
	}
	if math32.IsNaN(c.BloomRadius) || c.BloomRadius < 0 {
		return fmt.Errorf("%w: bloom_radius %v is negative", ErrInvalidConfiguration, c.BloomRadius)
	}
	if math32.IsNaN(c.BloomThreshold) || c.BloomThreshold < 0 {
		return fmt.Errorf("%w: bloom_threshold %v is negative", ErrInvalidConfiguration, c.BloomThreshold)
	}
	switch c.CaptureSource {
	case CaptureBlended, CaptureScene:
	default:
		return fmt.Errorf("%w: unknown capture_source %q", ErrInvalidConfiguration, c.CaptureSource)
	}
	switch c.HistoryPrime {
	case PrimeFirstFrame, PrimeClear:
	default:
		return fmt.Errorf("%w: unknown history_prime %q", ErrInvalidConfiguration, c.HistoryPrime)
	}
	if c.MaxTargetSize < 0 {
		return fmt.Errorf("%w: max_target_size %d is negative", ErrInvalidConfiguration, c.MaxTargetSize)
	}
	return nil
}
