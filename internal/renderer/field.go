package renderer

import (
	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Perlin generator shape.
const (
	noiseAlpha   = 2
	noiseBeta    = 2
	noiseOctaves = 3
)

// DisplacementField is the CPU counterpart of the injected vertex displacement.
type DisplacementField struct {
	Params DisplacementParams
	noise  *perlin.Perlin
}

func NewDisplacementField(params DisplacementParams) *DisplacementField {
	return &DisplacementField{
		Params: params,
		noise:  perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, params.Seed),
	}
}

// At samples the noise at p for the given phase.
func (f *DisplacementField) At(p mgl32.Vec3, phase float32) float32 {
	s, c := math32.Sincos(phase)
	q := p.Mul(f.Params.Frequency).Add(mgl32.Vec3{c, s, 0}.Mul(f.Params.Orbit))
	return float32(f.noise.Noise3D(float64(q[0]), float64(q[1]), float64(q[2])))
}

// Displace moves p along normal n by the sampled noise and returns the new
// position with the raw noise value.
func (f *DisplacementField) Displace(p, n mgl32.Vec3, phase float32) (mgl32.Vec3, float32) {
	d := f.At(p, phase)
	return p.Add(n.Normalize().Mul(d * f.Params.Amplitude)), d
}
