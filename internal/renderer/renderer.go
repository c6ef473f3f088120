package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"Afterglow/internal/postfx"

	"github.com/go-gl/mathgl/mgl32"
)

// Debug draws the GL scene in wireframe.
var Debug bool = false

type Light struct {
	Position  mgl32.Vec3 // for directional lights, the light shines from Position toward the origin
	Color     mgl32.Vec3
	Intensity float32
	Mode      string // "directional", "point"
}

// AmbientLight lights every surface equally.
type AmbientLight struct {
	Color     mgl32.Vec3
	Intensity float32
}

// Direction returns the unit vector toward the light.
func (l *Light) Direction() mgl32.Vec3 {
	return l.Position.Normalize()
}

// CreateDirectionalLight creates a directional light positioned at position,
// aimed at the origin.
func CreateDirectionalLight(position mgl32.Vec3, color mgl32.Vec3, intensity float32) *Light {
	return &Light{
		Position:  position,
		Color:     color,
		Intensity: intensity,
		Mode:      "directional",
	}
}

// ParseHexColor converts "#rrggbb" (or "rrggbb") to a normalized color.
func ParseHexColor(s string) (mgl32.Vec3, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("color %q: %w", s, err)
	}
	return mgl32.Vec3{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

// Scene is everything a renderer draws: one model, one directional light, an
// ambient term and the camera.
type Scene struct {
	Camera     *Camera
	Light      *Light
	Ambient    AmbientLight
	Model      *Model
	Background mgl32.Vec3
}

// modelVisible reports whether the model, displaced by up to reach, can touch
// the camera frustum.
func (s *Scene) modelVisible(reach float32) bool {
	center, radius := s.Model.WorldBounds(reach)
	frustum := s.Camera.CalculateFrustum()
	return frustum.IntersectsSphere(center, radius)
}

// Renderer draws the scene into the composer's scene target.
type Renderer interface {
	postfx.Scene
	Cleanup()
}

var (
	_ Renderer = (*SoftwareRenderer)(nil)
	_ Renderer = (*OpenGLRenderer)(nil)
)
