package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewIcosphereCounts(t *testing.T) {
	for _, detail := range []int{0, 1, 4} {
		model := NewIcosphere(1, detail)
		want := 20 * (detail + 1) * (detail + 1)
		if model.TriangleCount() != want {
			t.Errorf("detail %d: expected %d triangles, got %d", detail, want, model.TriangleCount())
		}
		if len(model.InterleavedData) != model.VertexCount()*8 {
			t.Errorf("detail %d: interleaved data should hold 8 floats per vertex", detail)
		}
		for _, idx := range model.Faces {
			if int(idx) >= model.VertexCount() || idx < 0 {
				t.Fatalf("detail %d: face index %d out of range", detail, idx)
			}
		}
	}
}

func TestNewIcosphereOnSphere(t *testing.T) {
	model := NewIcosphere(2, 3)
	for i := 0; i < model.VertexCount(); i++ {
		p, n := model.Vertex(i)
		if math.Abs(float64(p.Len()-2)) > 1e-5 {
			t.Fatalf("vertex %d at radius %v, want 2", i, p.Len())
		}
		if !p.Normalize().ApproxEqualThreshold(n, 1e-5) {
			t.Fatalf("vertex %d normal %v does not point outward", i, n)
		}
	}
	if math.Abs(float64(model.BoundingSphereRadius-2)) > 1e-5 {
		t.Errorf("bounding radius %v, want 2", model.BoundingSphereRadius)
	}
}

func TestModelMatrix(t *testing.T) {
	model := NewIcosphere(1, 0)
	if model.Matrix() != mgl32.Ident4() {
		t.Error("new model should have identity transform")
	}

	model.SetPosition(1, 2, 3)
	got := model.Matrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("expected translated origin (1,2,3), got %v", got)
	}
}

func TestSetDiffuseColorCopiesDefaultMaterial(t *testing.T) {
	model := NewIcosphere(1, 0)
	model.SetDiffuseColor(0.5, 0.5, 0.5)
	if DefaultMaterial.DiffuseColor != (mgl32.Vec3{1, 1, 1}) {
		t.Error("DefaultMaterial must not be modified")
	}
	if !model.Material.DoubleSided || !model.Material.FlatShading {
		t.Error("copied material should keep default flags")
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#526cff")
	if err != nil {
		t.Fatalf("ParseHexColor failed: %v", err)
	}
	want := mgl32.Vec3{0x52 / 255.0, 0x6c / 255.0, 1}
	if !c.ApproxEqual(want) {
		t.Errorf("expected %v, got %v", want, c)
	}
	if _, err := ParseHexColor("#12345"); err == nil {
		t.Error("short color should fail")
	}
	if _, err := ParseHexColor("#zzzzzz"); err == nil {
		t.Error("non-hex color should fail")
	}
}

func TestModelWorldBounds(t *testing.T) {
	model := NewIcosphere(2, 1)
	model.SetPosition(1, 0, -4)
	model.SetScale(1, -3, 0.5)

	center, radius := model.WorldBounds(0.25)
	if center != (mgl32.Vec3{1, 0, -4}) {
		t.Errorf("expected center at the model position, got %v", center)
	}
	if math.Abs(float64(radius-6.25)) > 1e-5 {
		t.Errorf("expected radius 6.25, got %v", radius)
	}
}
