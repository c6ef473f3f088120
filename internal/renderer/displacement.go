package renderer

import (
	"errors"
	"fmt"

	"Afterglow/internal/logger"

	"go.uber.org/zap"
)

// Uniform names of the displacement extension.
const (
	TimeUniform      = "uTime"
	amplitudeUniform = "uDisplacementAmplitude"
	frequencyUniform = "uDisplacementFrequency"
	orbitUniform     = "uDisplacementOrbit"
	tintUniform      = "uDisplacementTint"
)

// DisplacementParams shapes the surface perturbation. The noise is sampled at
// position*Frequency offset by Orbit*(cos t, sin t, 0), so a full turn of the
// phase returns the surface to its starting shape.
type DisplacementParams struct {
	Amplitude float32 `toml:"amplitude" json:"amplitude"`
	Frequency float32 `toml:"frequency" json:"frequency"`
	Orbit     float32 `toml:"orbit" json:"orbit"`
	// Tint brightens displaced-out regions. Zero leaves the fragment stage untouched.
	Tint float32 `toml:"tint" json:"tint"`
	Seed int64   `toml:"seed" json:"seed"`
}

// DefaultDisplacementParams returns a gentle, slowly breathing surface.
func DefaultDisplacementParams() DisplacementParams {
	return DisplacementParams{
		Amplitude: 0.25,
		Frequency: 1.5,
		Orbit:     1.0,
		Seed:      1,
	}
}

func (p DisplacementParams) Validate() error {
	if p.Amplitude < 0 {
		return fmt.Errorf("displacement amplitude %v is negative", p.Amplitude)
	}
	if p.Frequency <= 0 {
		return fmt.Errorf("displacement frequency %v must be positive", p.Frequency)
	}
	if p.Orbit < 0 {
		return fmt.Errorf("displacement orbit %v is negative", p.Orbit)
	}
	return nil
}

// Displacement is the result of InjectDisplacement. Time is always usable: when
// the injection degraded it is detached from any program and writes are ignored
// by the renderers.
type Displacement struct {
	Program  *Shader
	Time     *Uniform
	Params   DisplacementParams
	Degraded bool
	Err      error
}

// Reach bounds how far a vertex can move along its normal. Three noise
// octaves at half falloff sum to at most 1.75.
func (d *Displacement) Reach() float32 {
	if d == nil || d.Degraded {
		return 0
	}
	return 2 * d.Params.Amplitude
}

// InjectDisplacement extends base with time-driven vertex displacement at the
// given anchors. It never fails: a missing anchor or uniform clash is logged and
// the base program is returned with Degraded set.
func InjectDisplacement(base *Shader, anchors AnchorTags, params DisplacementParams) *Displacement {
	time := NewFloatUniform(TimeUniform, 0)
	ext := Extension{
		Name: "displacement",
		Uniforms: []*Uniform{
			time,
			NewFloatUniform(amplitudeUniform, params.Amplitude),
			NewFloatUniform(frequencyUniform, params.Frequency),
			NewFloatUniform(orbitUniform, params.Orbit),
		},
		UniformHooks: map[Stage]string{VertexStage: anchors.VertexPars},
		Snippets: []Snippet{
			{Stage: VertexStage, Hook: anchors.VertexPars, Code: displacementParsVertex},
			{Stage: VertexStage, Hook: anchors.Vertex, Code: displacementVertex},
		},
	}
	if params.Tint != 0 {
		ext.Uniforms = append(ext.Uniforms, NewFloatUniform(tintUniform, params.Tint))
		ext.UniformHooks[FragmentStage] = anchors.FragmentPars
		ext.Snippets = append(ext.Snippets,
			Snippet{Stage: FragmentStage, Hook: anchors.FragmentPars, Code: displacementParsFragment},
			Snippet{Stage: FragmentStage, Hook: anchors.Fragment, Code: displacementFragment},
		)
	}

	program, err := base.Extend(ext)
	if err != nil {
		if errors.Is(err, ErrAnchorNotFound) {
			logger.Log.Warn("Displacement anchor missing, rendering undisplaced surface",
				zap.String("program", base.Name()), zap.Error(err))
		} else {
			logger.Log.Warn("Displacement extension rejected, rendering undisplaced surface",
				zap.String("program", base.Name()), zap.Error(err))
		}
		return &Displacement{Program: base, Time: time, Params: params, Degraded: true, Err: err}
	}

	logger.Log.Debug("Displacement injected",
		zap.String("program", program.Name()),
		zap.Float32("amplitude", params.Amplitude),
		zap.Float32("frequency", params.Frequency))
	return &Displacement{Program: program, Time: time, Params: params}
}

var displacementParsVertex = `out float vDisplacement;

vec3 mod289(vec3 x) { return x - floor(x * (1.0 / 289.0)) * 289.0; }
vec4 mod289(vec4 x) { return x - floor(x * (1.0 / 289.0)) * 289.0; }
vec4 permute(vec4 x) { return mod289(((x * 34.0) + 1.0) * x); }
vec4 taylorInvSqrt(vec4 r) { return 1.79284291400159 - 0.85373472095314 * r; }

float snoise(vec3 v) {
    const vec2 C = vec2(1.0 / 6.0, 1.0 / 3.0);
    const vec4 D = vec4(0.0, 0.5, 1.0, 2.0);

    vec3 i = floor(v + dot(v, C.yyy));
    vec3 x0 = v - i + dot(i, C.xxx);

    vec3 g = step(x0.yzx, x0.xyz);
    vec3 l = 1.0 - g;
    vec3 i1 = min(g.xyz, l.zxy);
    vec3 i2 = max(g.xyz, l.zxy);

    vec3 x1 = x0 - i1 + C.xxx;
    vec3 x2 = x0 - i2 + C.yyy;
    vec3 x3 = x0 - D.yyy;

    i = mod289(i);
    vec4 p = permute(permute(permute(
                i.z + vec4(0.0, i1.z, i2.z, 1.0))
              + i.y + vec4(0.0, i1.y, i2.y, 1.0))
              + i.x + vec4(0.0, i1.x, i2.x, 1.0));

    float n_ = 0.142857142857;
    vec3 ns = n_ * D.wyz - D.xzx;

    vec4 j = p - 49.0 * floor(p * ns.z * ns.z);
    vec4 x_ = floor(j * ns.z);
    vec4 y_ = floor(j - 7.0 * x_);

    vec4 x = x_ * ns.x + ns.yyyy;
    vec4 y = y_ * ns.x + ns.yyyy;
    vec4 h = 1.0 - abs(x) - abs(y);

    vec4 b0 = vec4(x.xy, y.xy);
    vec4 b1 = vec4(x.zw, y.zw);
    vec4 s0 = floor(b0) * 2.0 + 1.0;
    vec4 s1 = floor(b1) * 2.0 + 1.0;
    vec4 sh = -step(h, vec4(0.0));

    vec4 a0 = b0.xzyw + s0.xzyw * sh.xxyy;
    vec4 a1 = b1.xzyw + s1.xzyw * sh.zzww;

    vec3 p0 = vec3(a0.xy, h.x);
    vec3 p1 = vec3(a0.zw, h.y);
    vec3 p2 = vec3(a1.xy, h.z);
    vec3 p3 = vec3(a1.zw, h.w);

    vec4 norm = taylorInvSqrt(vec4(dot(p0, p0), dot(p1, p1), dot(p2, p2), dot(p3, p3)));
    p0 *= norm.x;
    p1 *= norm.y;
    p2 *= norm.z;
    p3 *= norm.w;

    vec4 m = max(0.6 - vec4(dot(x0, x0), dot(x1, x1), dot(x2, x2), dot(x3, x3)), 0.0);
    m = m * m;
    return 42.0 * dot(m * m, vec4(dot(p0, x0), dot(p1, x1), dot(p2, x2), dot(p3, x3)));
}

float displacementAt(vec3 p) {
    vec3 orbit = vec3(cos(uTime), sin(uTime), 0.0) * uDisplacementOrbit;
    return snoise(p * uDisplacementFrequency + orbit);
}`

var displacementVertex = `float displacement = displacementAt(transformed);
transformed += normalize(objectNormal) * displacement * uDisplacementAmplitude;
vDisplacement = displacement;`

var displacementParsFragment = `in float vDisplacement;`

var displacementFragment = `diffuse *= 1.0 + uDisplacementTint * max(vDisplacement, 0.0);`
