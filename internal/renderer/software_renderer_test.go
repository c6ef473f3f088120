package renderer

import (
	"testing"

	"Afterglow/internal/postfx"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	return &Scene{
		Camera:  NewDefaultCamera(64, 64, 3),
		Light:   CreateDirectionalLight(mgl32.Vec3{2, 2, 2}, mgl32.Vec3{0.32, 0.42, 1}, 0.6),
		Ambient: AmbientLight{Color: mgl32.Vec3{0.26, 0.33, 1}, Intensity: 0.5},
		Model:   NewIcosphere(1, 3),
	}
}

func newSceneTarget(t *testing.T, width, height int) *postfx.Target {
	t.Helper()
	target, err := postfx.NewAllocator(0).Allocate(width, height, postfx.Transient)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	return target
}

func TestSoftwareRendererDrawsSphere(t *testing.T) {
	scene := newTestScene(t)
	d := InjectDisplacement(StandardShader(), DefaultAnchorTags(), DefaultDisplacementParams())
	r := NewSoftwareRenderer(scene, d)
	dst := newSceneTarget(t, 64, 64)

	r.RenderScene(dst)

	center := dst.At(32, 32)
	if center[0] == 0 && center[1] == 0 && center[2] == 0 {
		t.Error("center pixel should be covered by the sphere")
	}
	if center[3] != 1 {
		t.Errorf("scene should be opaque, alpha=%v", center[3])
	}
	if corner := dst.At(0, 0); corner != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Errorf("corner should show the background, got %v", corner)
	}
}

func TestSoftwareRendererAnimatesWithTime(t *testing.T) {
	scene := newTestScene(t)
	d := InjectDisplacement(StandardShader(), DefaultAnchorTags(), DefaultDisplacementParams())
	r := NewSoftwareRenderer(scene, d)

	first := newSceneTarget(t, 48, 48)
	second := newSceneTarget(t, 48, 48)

	d.Time.SetFloat(0)
	r.RenderScene(first)
	d.Time.SetFloat(1.5)
	r.RenderScene(second)

	changed := false
	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Error("changing the phase should change the image")
	}
}

func TestSoftwareRendererDegradedIgnoresTime(t *testing.T) {
	scene := newTestScene(t)
	anchors := DefaultAnchorTags()
	anchors.VertexPars = "missing"
	d := InjectDisplacement(StandardShader(), anchors, DefaultDisplacementParams())
	if !d.Degraded {
		t.Fatal("expected degraded injection")
	}
	r := NewSoftwareRenderer(scene, d)

	first := newSceneTarget(t, 32, 32)
	second := newSceneTarget(t, 32, 32)
	d.Time.SetFloat(0)
	r.RenderScene(first)
	d.Time.SetFloat(2)
	r.RenderScene(second)

	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatal("degraded rendering should not depend on time")
		}
	}
}

func TestSoftwareRendererFollowsTargetAspect(t *testing.T) {
	scene := newTestScene(t)
	r := NewSoftwareRenderer(scene, nil)

	r.RenderScene(newSceneTarget(t, 80, 40))
	if scene.Camera.AspectRatio != 2 {
		t.Errorf("expected aspect 2, got %v", scene.Camera.AspectRatio)
	}
}

func TestSoftwareRendererSkipsModelOutsideFrustum(t *testing.T) {
	positions := []mgl32.Vec3{
		{0, 0, 20}, // behind the camera
		{50, 0, 0},
	}
	for _, pos := range positions {
		scene := newTestScene(t)
		scene.Background = mgl32.Vec3{0.2, 0.1, 0.3}
		scene.Model.SetPosition(pos[0], pos[1], pos[2])
		d := InjectDisplacement(StandardShader(), DefaultAnchorTags(), DefaultDisplacementParams())
		r := NewSoftwareRenderer(scene, d)
		dst := newSceneTarget(t, 32, 32)

		r.RenderScene(dst)

		want := scene.Background.Vec4(1)
		for y := 0; y < dst.Height; y++ {
			for x := 0; x < dst.Width; x++ {
				if got := dst.At(x, y); got != want {
					t.Fatalf("model at %v: pixel (%d,%d) = %v, want background", pos, x, y, got)
				}
			}
		}
	}
}

func TestSoftwareRendererKeepsModelAtFrustumEdge(t *testing.T) {
	scene := newTestScene(t)
	// center outside the right plane, surface still inside
	scene.Model.SetPosition(2, 0, 0)
	r := NewSoftwareRenderer(scene, nil)
	dst := newSceneTarget(t, 32, 32)

	r.RenderScene(dst)

	covered := false
	for x := 0; x < dst.Width; x++ {
		if dst.At(x, 16) != (mgl32.Vec4{0, 0, 0, 1}) {
			covered = true
			break
		}
	}
	if !covered {
		t.Error("a sphere overlapping the edge of the view should still be drawn")
	}
}
