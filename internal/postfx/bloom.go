package postfx

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
	"github.com/chewxy/math32"
)

// Mip chain parameters of the bloom composite, coarsest last.
var (
	bloomKernelRadii = [...]float64{3, 5, 7, 9, 11}
	bloomFactors     = [...]float32{1.0, 0.8, 0.6, 0.4, 0.2}
)

// Width of the soft knee above the threshold.
const bloomSmoothWidth = 0.01

// BloomPass extracts regions brighter than Threshold, blurs them at several scales
// and adds the result back at Strength. Radius shifts weight toward the coarse mips.
type BloomPass struct {
	Strength  float32
	Radius    float32
	Threshold float32
	source    Resource
}

// NewBloomPass validates the parameters and creates a bloom pass reading source.
func NewBloomPass(source Resource, strength, radius, threshold float32) (*BloomPass, error) {
	if strength < 0 || radius < 0 || threshold < 0 {
		return nil, fmt.Errorf("%w: bloom strength %v, radius %v, threshold %v must be non-negative",
			ErrInvalidConfiguration, strength, radius, threshold)
	}
	return &BloomPass{
		Strength:  strength,
		Radius:    radius,
		Threshold: threshold,
		source:    source,
	}, nil
}

func (p *BloomPass) Name() string   { return "bloom" }
func (p *BloomPass) Kind() PassKind { return KindCompute }
func (p *BloomPass) Inputs() []Input {
	return []Input{{Resource: p.source, Read: Fresh}}
}
func (p *BloomPass) Output() Resource { return ResourceBloomed }

func (p *BloomPass) Execute(in []*Target, out *Target) {
	src := in[0]
	out.CopyFrom(src)
	if p.Strength == 0 {
		return
	}

	bright, peak := highPass(src, p.Threshold)
	if peak == 0 {
		return
	}

	width, height := out.Width, out.Height
	accum := make([]float32, width*height*3)

	mipW, mipH := halve(src.Width), halve(src.Height)
	level := transform.Resize(bright, mipW, mipH, transform.Linear)
	for i, radius := range bloomKernelRadii {
		level = blur.Gaussian(level, radius)

		up := level
		if up.Bounds().Dx() != width || up.Bounds().Dy() != height {
			up = transform.Resize(level, width, height, transform.Linear)
		}
		accumulate(accum, up, lerpBloomFactor(bloomFactors[i], p.Radius))

		mipW, mipH = halve(mipW), halve(mipH)
		level = transform.Resize(level, mipW, mipH, transform.Linear)
	}

	gain := p.Strength * peak
	d := out.Pix
	for i, j := 0, 0; i < len(d); i, j = i+4, j+3 {
		d[i] += accum[j] * gain
		d[i+1] += accum[j+1] * gain
		d[i+2] += accum[j+2] * gain
	}
}

// highPass keeps the pixels above threshold, scaled by a smooth knee, and
// stores them divided by the brightest surviving channel so values above 1 keep
// their ratios in 8 bits. It returns that peak, or 0 when nothing survived.
func highPass(src *Target, threshold float32) (*image.RGBA, float32) {
	knee := make([]float32, src.Width*src.Height)
	var peak float32
	for i, k := 0, 0; i < len(src.Pix); i, k = i+4, k+1 {
		r, g, b := src.Pix[i], src.Pix[i+1], src.Pix[i+2]
		luma := 0.299*r + 0.587*g + 0.114*b
		alpha := smoothstep(threshold, threshold+bloomSmoothWidth, luma)
		knee[k] = alpha
		if alpha > 0 {
			peak = math32.Max(peak, alpha*math32.Max(r, math32.Max(g, b)))
		}
	}
	if peak <= 0 {
		return nil, 0
	}

	img := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))
	scale := 1 / peak
	for i, k := 0, 0; i < len(src.Pix); i, k = i+4, k+1 {
		img.Pix[i+3] = 255
		if alpha := knee[k]; alpha > 0 {
			img.Pix[i] = toByte(src.Pix[i] * alpha * scale)
			img.Pix[i+1] = toByte(src.Pix[i+1] * alpha * scale)
			img.Pix[i+2] = toByte(src.Pix[i+2] * alpha * scale)
		}
	}
	return img, peak
}

func accumulate(accum []float32, img *image.RGBA, factor float32) {
	const inv = 1.0 / 255.0
	for i, j := 0, 0; j < len(accum); i, j = i+4, j+3 {
		accum[j] += float32(img.Pix[i]) * inv * factor
		accum[j+1] += float32(img.Pix[i+1]) * inv * factor
		accum[j+2] += float32(img.Pix[i+2]) * inv * factor
	}
}

func lerpBloomFactor(factor, radius float32) float32 {
	mirror := 1.2 - factor
	return factor + (mirror-factor)*radius
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func halve(n int) int {
	return int(math32.Max(1, math32.Round(float32(n)/2)))
}
