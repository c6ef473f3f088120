package postfx

// BlendPass mixes the current frame with the previous frame's history:
// out = current*(1-mix) + history*mix.
type BlendPass struct {
	MixRatio float32
}

// NewBlendPass creates a blend pass reading the scene fresh and the history stale.
func NewBlendPass(mixRatio float32) *BlendPass {
	return &BlendPass{MixRatio: mixRatio}
}

func (p *BlendPass) Name() string   { return "blend" }
func (p *BlendPass) Kind() PassKind { return KindCompute }
func (p *BlendPass) Inputs() []Input {
	return []Input{
		{Resource: ResourceScene, Read: Fresh},
		{Resource: ResourceHistory, Read: Stale},
	}
}
func (p *BlendPass) Output() Resource { return ResourceBlended }

func (p *BlendPass) Execute(in []*Target, out *Target) {
	Blend(out, in[0], in[1], p.MixRatio)
}

// Blend writes current*(1-mix) + history*mix into dst. The endpoints copy exactly
// and equal inputs reproduce themselves bit for bit. history is resampled if its size
// differs from current.
func Blend(dst, current, history *Target, mix float32) {
	if mix <= 0 {
		dst.CopyFrom(current)
		return
	}
	if !history.SameSize(current) {
		resampled := &Target{Width: current.Width, Height: current.Height, Pix: make([]float32, len(current.Pix))}
		resampled.CopyFrom(history)
		history = resampled
	}
	if mix >= 1 {
		dst.CopyFrom(history)
		return
	}

	c, h := current.Pix, history.Pix
	d := dst.Pix
	for i := range d {
		d[i] = c[i] + (h[i]-c[i])*mix
	}
}
