package record

import (
	"fmt"
	"image"

	"Afterglow/internal/postfx"

	"github.com/anthonynsimon/bild/imgio"
)

// StillDisplay keeps the most recent frame and saves it as a PNG on Close.
type StillDisplay struct {
	Path string
	last *image.RGBA
}

func NewStillDisplay(path string) *StillDisplay {
	return &StillDisplay{Path: path}
}

func (s *StillDisplay) Present(frame *postfx.Target) {
	s.last = frame.ToRGBA()
}

// Image returns the last presented frame, or nil.
func (s *StillDisplay) Image() *image.RGBA {
	return s.last
}

func (s *StillDisplay) Close() error {
	if s.last == nil {
		return nil
	}
	if err := imgio.Save(s.Path, s.last, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save still: %w", err)
	}
	return nil
}

// Displays presents each frame to every display in order.
type Displays []postfx.Display

func (ds Displays) Present(frame *postfx.Target) {
	for _, d := range ds {
		d.Present(frame)
	}
}
