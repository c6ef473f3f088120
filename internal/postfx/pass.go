package postfx

// Resource names an image slot in the pass graph.
type Resource string

// Resources used by the standard chain.
const (
	ResourceScene   Resource = "scene"
	ResourceHistory Resource = "history"
	ResourceBlended Resource = "blended"
	ResourceBloomed Resource = "bloomed"
)

// Read declares which version of a resource a pass consumes.
type Read int

const (
	// Fresh reads the content produced earlier in the current frame.
	Fresh Read = iota
	// Stale reads the content left by the previous frame. Only persistent
	// resources may be read stale.
	Stale
)

func (r Read) String() string {
	if r == Stale {
		return "stale"
	}
	return "fresh"
}

// Input is one declared dependency of a pass.
type Input struct {
	Resource Resource
	Read     Read
}

// PassKind classifies what a pass does with its input.
type PassKind int

const (
	// KindCapture writes its input unchanged into a target.
	KindCapture PassKind = iota
	// KindCompute transforms its inputs into a new image.
	KindCompute
	// KindTerminal presents its input to the display.
	KindTerminal
)

func (k PassKind) String() string {
	switch k {
	case KindCapture:
		return "capture"
	case KindCompute:
		return "compute"
	case KindTerminal:
		return "terminal"
	}
	return "unknown"
}

// Pass is one stage of the frame. Passes hold no target references; the composer
// resolves inputs and output from the graph's bindings every frame.
type Pass interface {
	Name() string
	Kind() PassKind
	Inputs() []Input
	// Output is the resource written by the pass, or "" for a terminal pass.
	Output() Resource
	// Execute runs the pass. in follows the order of Inputs; out is nil for a
	// terminal pass.
	Execute(in []*Target, out *Target)
}

// Scene renders the base image consumed as the graph's first input.
type Scene interface {
	RenderScene(dst *Target)
}

// Display receives the terminal pass output.
type Display interface {
	Present(frame *Target)
}

// Viewport supplies the drawable size and notifies on change.
type Viewport interface {
	Size() (width, height int)
	OnResize(fn func(width, height int))
}

// PhaseSink receives the displacement phase every tick.
type PhaseSink interface {
	SetFloat(v float32)
}
