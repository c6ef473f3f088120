package postfx

// SavePass captures its input verbatim into the history buffer.
type SavePass struct {
	source Resource
}

// NewSavePass creates a capture pass reading source fresh.
func NewSavePass(source Resource) *SavePass {
	return &SavePass{source: source}
}

func (p *SavePass) Name() string   { return "save" }
func (p *SavePass) Kind() PassKind { return KindCapture }
func (p *SavePass) Inputs() []Input {
	return []Input{{Resource: p.source, Read: Fresh}}
}
func (p *SavePass) Output() Resource { return ResourceHistory }

func (p *SavePass) Execute(in []*Target, out *Target) {
	out.CopyFrom(in[0])
}
