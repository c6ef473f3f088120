package postfx

import "errors"

var (
	// ErrInvalidConfiguration is returned when a Config fails validation.
	ErrInvalidConfiguration = errors.New("invalid postprocessing configuration")

	// ErrBufferAllocation is returned when a render target cannot be allocated at the
	// requested size.
	ErrBufferAllocation = errors.New("render target allocation failed")

	// ErrInvalidGraph is returned when a pass list violates the graph rules.
	ErrInvalidGraph = errors.New("invalid pass graph")
)

// ErrClosed is returned by Tick after Close.
var ErrClosed = errors.New("composer closed")
