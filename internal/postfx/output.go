package postfx

// OutputPass presents its input unchanged. It is the terminal pass of every graph.
type OutputPass struct {
	source  Resource
	display Display
}

// NewOutputPass creates the terminal pass.
func NewOutputPass(source Resource, display Display) *OutputPass {
	return &OutputPass{source: source, display: display}
}

func (p *OutputPass) Name() string   { return "output" }
func (p *OutputPass) Kind() PassKind { return KindTerminal }
func (p *OutputPass) Inputs() []Input {
	return []Input{{Resource: p.source, Read: Fresh}}
}
func (p *OutputPass) Output() Resource { return "" }

func (p *OutputPass) Execute(in []*Target, _ *Target) {
	p.display.Present(in[0])
}
