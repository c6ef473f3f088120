// camera.go
package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Dolly range of the camera along +z.
const (
	MinCameraZ = 0.0
	MaxCameraZ = 10.0
)

type Camera struct {
	// HOT DATA - Accessed every frame for view/projection calculations
	Position   mgl32.Vec3 // Camera position in world space
	Front      mgl32.Vec3 // Forward direction vector
	Up         mgl32.Vec3 // Up direction vector
	Right      mgl32.Vec3 // Right direction vector
	Projection mgl32.Mat4 // Projection matrix
	Pitch      float32    // Pitch angle (vertical rotation)
	Yaw        float32    // Yaw angle (horizontal rotation)

	// COLD DATA - Configuration, accessed less frequently
	WorldUp     mgl32.Vec3 // World up vector (usually (0,1,0))
	Speed       float32    // Dolly speed in units per second
	Fov         float32    // Field of view
	Near        float32    // Near clipping plane
	Far         float32    // Far clipping plane
	AspectRatio float32    // Screen aspect ratio
}

type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

type Frustum struct {
	Planes [6]Plane
}

// NewDefaultCamera places the camera on +z at distance z looking at the origin.
func NewDefaultCamera(width, height int, z float32) *Camera {
	camera := Camera{
		Position: mgl32.Vec3{0, 0, mgl32.Clamp(z, MinCameraZ, MaxCameraZ)},
		Front:    mgl32.Vec3{0, 0, -1},
		Up:       mgl32.Vec3{0, 1, 0},
		WorldUp:  mgl32.Vec3{0, 1, 0},
		Pitch:    0.0,
		Yaw:      -90.0,
		Speed:    2.5,
		Fov:      45.0,
		Near:     0.1,
		Far:      100.0,
	}
	camera.AspectRatio = aspect(width, height)
	camera.updateCameraVectors()
	camera.UpdateProjection()
	return &camera
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

func (c *Camera) UpdateProjection() {
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.AspectRatio, c.Near, c.Far)
}

func (c *Camera) SetAspectRatio(aspectRatio float32) {
	c.AspectRatio = aspectRatio
	c.UpdateProjection()
}

// FitViewport updates the aspect ratio if the drawable size changed.
func (c *Camera) FitViewport(width, height int) {
	if a := aspect(width, height); a != c.AspectRatio {
		c.SetAspectRatio(a)
	}
}

// SetZ moves the camera along z, clamped to [MinCameraZ, MaxCameraZ].
func (c *Camera) SetZ(z float32) {
	c.Position[2] = mgl32.Clamp(z, MinCameraZ, MaxCameraZ)
}

// Dolly moves the camera toward (negative) or away from (positive) the origin.
func (c *Camera) Dolly(direction, deltaTime float32) {
	c.SetZ(c.Position.Z() + direction*c.Speed*deltaTime)
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.GetViewMatrix())
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.Projection
}

func (c *Camera) updateCameraVectors() {
	yawRad := mgl32.DegToRad(c.Yaw)
	pitchRad := mgl32.DegToRad(c.Pitch)

	front := mgl32.Vec3{
		float32(math.Cos(float64(yawRad)) * math.Cos(float64(pitchRad))),
		float32(math.Sin(float64(pitchRad))),
		float32(math.Sin(float64(yawRad)) * math.Cos(float64(pitchRad))),
	}

	c.Front = front.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}

// CalculateFrustum extracts the six clip planes of the current view
// projection, normals pointing inward and normalized.
func (c *Camera) CalculateFrustum() Frustum {
	vp := c.GetViewProjection()
	w := vp.Row(3)
	var f Frustum
	for axis := 0; axis < 3; axis++ {
		r := vp.Row(axis)
		f.Planes[2*axis] = planeFrom(w.Add(r))
		f.Planes[2*axis+1] = planeFrom(w.Sub(r))
	}
	return f
}

func planeFrom(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	return Plane{Normal: n.Mul(1 / l), Distance: v.W() / l}
}

// DistanceToPoint is positive on the inner side of the plane.
func (p Plane) DistanceToPoint(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// IntersectsSphere is conservative: spheres near a corner may pass.
func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}
