package renderer

import (
	"Afterglow/internal/postfx"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SoftwareRenderer rasterizes the scene on the CPU with a depth buffer and flat
// shading. It needs no GL context and is used for headless recording and tests.
type SoftwareRenderer struct {
	scene        *Scene
	displacement *Displacement
	field        *DisplacementField

	world   []mgl32.Vec3
	clip    []mgl32.Vec4
	offsets []float32
	depth   []float32
}

// NewSoftwareRenderer draws scene, displacing the model with the CPU field when
// displacement was injected successfully. The phase is read from displacement.Time.
func NewSoftwareRenderer(scene *Scene, displacement *Displacement) *SoftwareRenderer {
	r := &SoftwareRenderer{scene: scene, displacement: displacement}
	if displacement != nil && !displacement.Degraded {
		r.field = NewDisplacementField(displacement.Params)
	}
	return r
}

func (r *SoftwareRenderer) RenderScene(dst *postfx.Target) {
	s := r.scene
	dst.Fill(s.Background.Vec4(1))
	if s.Model == nil || s.Camera == nil {
		return
	}

	s.Camera.FitViewport(dst.Width, dst.Height)
	if !s.modelVisible(r.displacement.Reach()) {
		return
	}
	r.resetDepth(dst.Width * dst.Height)
	r.transform()

	material := s.Model.Material
	if material == nil {
		material = DefaultMaterial
	}
	ambient := s.Ambient.Color.Mul(s.Ambient.Intensity)
	var direct, lightDir mgl32.Vec3
	if s.Light != nil {
		direct = s.Light.Color.Mul(s.Light.Intensity)
		lightDir = s.Light.Direction()
	}
	var tint float32
	if r.field != nil {
		tint = r.field.Params.Tint
	}
	eye := s.Camera.Position
	near := s.Camera.Near

	faces := s.Model.Faces
	for t := 0; t+2 < len(faces); t += 3 {
		ia, ib, ic := faces[t], faces[t+1], faces[t+2]
		ca, cb, cc := r.clip[ia], r.clip[ib], r.clip[ic]
		if ca.W() < near || cb.W() < near || cc.W() < near {
			continue
		}

		a, b, c := r.world[ia], r.world[ib], r.world[ic]
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Len() == 0 {
			continue
		}
		normal = normal.Normalize()
		if eye.Sub(a).Dot(normal) < 0 {
			if !material.DoubleSided {
				continue
			}
			normal = normal.Mul(-1)
		}

		irradiance := ambient.Add(direct.Mul(math32.Max(normal.Dot(lightDir), 0)))
		color := mgl32.Vec3{
			material.DiffuseColor[0] * irradiance[0],
			material.DiffuseColor[1] * irradiance[1],
			material.DiffuseColor[2] * irradiance[2],
		}
		if tint != 0 {
			d := (r.offsets[ia] + r.offsets[ib] + r.offsets[ic]) / 3
			color = color.Mul(1 + tint*math32.Max(d, 0))
		}
		r.rasterize(dst, ca, cb, cc, color.Vec4(1))
	}
}

func (r *SoftwareRenderer) phase() float32 {
	if r.displacement == nil {
		return 0
	}
	return r.displacement.Time.Float()
}

// transform displaces every vertex once and projects it.
func (r *SoftwareRenderer) transform() {
	s := r.scene
	n := s.Model.VertexCount()
	if cap(r.world) < n {
		r.world = make([]mgl32.Vec3, n)
		r.clip = make([]mgl32.Vec4, n)
		r.offsets = make([]float32, n)
	}
	r.world, r.clip, r.offsets = r.world[:n], r.clip[:n], r.offsets[:n]

	model := s.Model.Matrix()
	viewProjection := s.Camera.GetViewProjection()
	phase := r.phase()
	for i := 0; i < n; i++ {
		p, normal := s.Model.Vertex(i)
		var d float32
		if r.field != nil {
			p, d = r.field.Displace(p, normal, phase)
		}
		world := model.Mul4x1(p.Vec4(1))
		r.world[i] = world.Vec3()
		r.clip[i] = viewProjection.Mul4x1(world)
		r.offsets[i] = d
	}
}

func (r *SoftwareRenderer) resetDepth(n int) {
	if len(r.depth) != n {
		r.depth = make([]float32, n)
	}
	for i := range r.depth {
		r.depth[i] = 1
	}
}

func (r *SoftwareRenderer) rasterize(dst *postfx.Target, a, b, c, color mgl32.Vec4) {
	width, height := float32(dst.Width), float32(dst.Height)
	toScreen := func(v mgl32.Vec4) mgl32.Vec3 {
		inv := 1 / v.W()
		return mgl32.Vec3{
			(v.X()*inv*0.5 + 0.5) * width,
			(0.5 - v.Y()*inv*0.5) * height,
			v.Z() * inv,
		}
	}
	p0, p1, p2 := toScreen(a), toScreen(b), toScreen(c)

	area := edge(p0, p1, p2.X(), p2.Y())
	if area == 0 {
		return
	}
	sign := float32(1)
	if area < 0 {
		sign, area = -1, -area
	}

	minX := clampPixel(math32.Floor(min3(p0.X(), p1.X(), p2.X())), dst.Width)
	maxX := clampPixel(math32.Ceil(max3(p0.X(), p1.X(), p2.X())), dst.Width)
	minY := clampPixel(math32.Floor(min3(p0.Y(), p1.Y(), p2.Y())), dst.Height)
	maxY := clampPixel(math32.Ceil(max3(p0.Y(), p1.Y(), p2.Y())), dst.Height)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(p1, p2, px, py) * sign
			w1 := edge(p2, p0, px, py) * sign
			w2 := edge(p0, p1, px, py) * sign
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := (w0*p0.Z() + w1*p1.Z() + w2*p2.Z()) / area
			idx := y*dst.Width + x
			if z < -1 || z >= r.depth[idx] {
				continue
			}
			r.depth[idx] = z
			dst.Set(x, y, color)
		}
	}
}

func (r *SoftwareRenderer) Cleanup() {
	r.world, r.clip, r.offsets, r.depth = nil, nil, nil, nil
}

func edge(a, b mgl32.Vec3, x, y float32) float32 {
	return (b.X()-a.X())*(y-a.Y()) - (b.Y()-a.Y())*(x-a.X())
}

func min3(a, b, c float32) float32 { return math32.Min(a, math32.Min(b, c)) }
func max3(a, b, c float32) float32 { return math32.Max(a, math32.Max(b, c)) }

func clampPixel(v float32, size int) int {
	i := int(v)
	if i < 0 {
		return 0
	}
	if i > size-1 {
		return size - 1
	}
	return i
}
