package renderer

import (
	"Afterglow/internal/logger"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// DefaultMaterial provides a basic material to fall back on
var DefaultMaterial = &Material{
	Name:         "default",
	DiffuseColor: mgl32.Vec3{1.0, 1.0, 1.0},
	DoubleSided:  true,
	FlatShading:  true,
}

type Material struct {
	DiffuseColor mgl32.Vec3
	DoubleSided  bool // light and draw back faces
	FlatShading  bool // one normal per triangle

	Name string
}

type Model struct {
	// HOT DATA - Accessed every frame in render loop
	ModelMatrix mgl32.Mat4
	Position    mgl32.Vec3
	Scale       mgl32.Vec3
	Rotation    mgl32.Quat
	Material    *Material
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IsDirty     bool

	BoundingSphereRadius float32

	// COLD DATA
	Name            string
	Vertices        []float32 // xyz per vertex
	Normals         []float32 // xyz per vertex
	Faces           []int32   // three indices per triangle
	InterleavedData []float32 // position, uv, normal
}

func (m *Model) Rotate(angleX, angleY, angleZ float32) {
	if m.Rotation == (mgl32.Quat{}) {
		m.Rotation = mgl32.QuatIdent()
	}
	rotationX := mgl32.QuatRotate(mgl32.DegToRad(angleX), mgl32.Vec3{1, 0, 0})
	rotationY := mgl32.QuatRotate(mgl32.DegToRad(angleY), mgl32.Vec3{0, 1, 0})
	rotationZ := mgl32.QuatRotate(mgl32.DegToRad(angleZ), mgl32.Vec3{0, 0, 1})
	m.Rotation = m.Rotation.Mul(rotationX).Mul(rotationY).Mul(rotationZ)
	m.updateModelMatrix()
	m.IsDirty = true
}

// SetPosition sets the position of the model
func (m *Model) SetPosition(x, y, z float32) {
	m.Position = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
	m.IsDirty = true
}

func (m *Model) SetScale(x, y, z float32) {
	m.Scale = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
	m.IsDirty = true
}

func (m *Model) updateModelMatrix() {
	// Matrices are multiplied right-to-left: T * R * S transforms vertices as: scale first, then rotate, then translate
	rotation := m.Rotation
	if rotation == (mgl32.Quat{}) {
		rotation = mgl32.QuatIdent()
	}
	scaleMatrix := mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	translationMatrix := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	m.ModelMatrix = translationMatrix.Mul4(rotation.Mat4()).Mul4(scaleMatrix)
	m.IsDirty = false
}

// Matrix returns the model matrix, recomputing it if a transform changed.
func (m *Model) Matrix() mgl32.Mat4 {
	if m.IsDirty || m.ModelMatrix == (mgl32.Mat4{}) {
		m.updateModelMatrix()
	}
	return m.ModelMatrix
}

func (m *Model) SetDiffuseColor(r, g, b float32) {
	m.ensureMaterial()
	m.Material.DiffuseColor = mgl32.Vec3{r, g, b}
}

// ensureMaterial gives the model its own material so edits never leak into
// DefaultMaterial.
func (m *Model) ensureMaterial() {
	if m.Material == nil || m.Material == DefaultMaterial {
		copied := *DefaultMaterial
		m.Material = &copied
	}
}

// VertexCount returns the number of vertices.
func (m *Model) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Model) TriangleCount() int {
	return len(m.Faces) / 3
}

// WorldBounds returns a sphere enclosing the scaled model, its radius grown
// by margin.
func (m *Model) WorldBounds(margin float32) (mgl32.Vec3, float32) {
	scale := math32.Max(math32.Abs(m.Scale[0]), math32.Max(math32.Abs(m.Scale[1]), math32.Abs(m.Scale[2])))
	return m.Position, m.BoundingSphereRadius*scale + margin
}

// Vertex returns position and normal of vertex i.
func (m *Model) Vertex(i int) (mgl32.Vec3, mgl32.Vec3) {
	p := mgl32.Vec3{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
	n := mgl32.Vec3{m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2]}
	return p, n
}

func CreateModel(vertices, normals []mgl32.Vec3, indices []int32) *Model {
	interleavedData := make([]float32, 0, len(vertices)*8) // 3 position, 2 texture, 3 normal

	for i, v := range vertices {
		n := normals[i]
		interleavedData = append(interleavedData, v.X(), v.Y(), v.Z())
		// Equirectangular uv, unused by the standard shader.
		u := 0.5 + math32.Atan2(v.Z(), v.X())/(2*math32.Pi)
		w := 0.5 - math32.Asin(mgl32.Clamp(n.Y(), -1, 1))/math32.Pi
		interleavedData = append(interleavedData, u, w)
		interleavedData = append(interleavedData, n.X(), n.Y(), n.Z())
	}

	model := &Model{
		Position:        mgl32.Vec3{0, 0, 0},
		Rotation:        mgl32.QuatIdent(),
		Scale:           mgl32.Vec3{1.0, 1.0, 1.0},
		Material:        DefaultMaterial,
		Vertices:        flattenVertices(vertices),
		Normals:         flattenVertices(normals),
		Faces:           indices,
		InterleavedData: interleavedData,
	}
	for _, v := range vertices {
		model.BoundingSphereRadius = math32.Max(model.BoundingSphereRadius, v.Len())
	}
	model.updateModelMatrix()
	return model
}

// Helper to flatten Vec3 array
func flattenVertices(vertices []mgl32.Vec3) []float32 {
	flat := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		flat = append(flat, v.X(), v.Y(), v.Z())
	}
	return flat
}

var (
	icosahedronVertices = func() []mgl32.Vec3 {
		t := (1 + math32.Sqrt(5)) / 2
		return []mgl32.Vec3{
			{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
			{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
			{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
		}
	}()
	icosahedronFaces = [20][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// NewIcosphere builds a sphere by splitting each icosahedron face into
// (detail+1)^2 triangles and projecting every vertex onto the sphere.
func NewIcosphere(radius float32, detail int) *Model {
	if detail < 0 {
		detail = 0
	}
	cols := detail + 1

	var (
		vertices []mgl32.Vec3
		normals  []mgl32.Vec3
		faces    []int32
	)
	for _, face := range icosahedronFaces {
		a := icosahedronVertices[face[0]]
		b := icosahedronVertices[face[1]]
		c := icosahedronVertices[face[2]]

		// grid[i][j] indexes the vertex j of row i; row i has cols-i+1 vertices.
		grid := make([][]int32, cols+1)
		for i := 0; i <= cols; i++ {
			aj := lerpVec3(a, c, float32(i)/float32(cols))
			bj := lerpVec3(b, c, float32(i)/float32(cols))
			rows := cols - i
			grid[i] = make([]int32, rows+1)
			for j := 0; j <= rows; j++ {
				v := aj
				if rows > 0 {
					v = lerpVec3(aj, bj, float32(j)/float32(rows))
				}
				n := v.Normalize()
				grid[i][j] = int32(len(vertices))
				vertices = append(vertices, n.Mul(radius))
				normals = append(normals, n)
			}
		}

		for i := 0; i < cols; i++ {
			for j := 0; j < 2*(cols-i)-1; j++ {
				k := j / 2
				if j%2 == 0 {
					faces = append(faces, grid[i][k+1], grid[i+1][k], grid[i][k])
				} else {
					faces = append(faces, grid[i][k+1], grid[i+1][k+1], grid[i+1][k])
				}
			}
		}
	}

	model := CreateModel(vertices, normals, faces)
	model.Name = "icosphere"
	logger.Log.Debug("Icosphere generated",
		zap.Int("detail", detail),
		zap.Int("vertices", len(vertices)),
		zap.Int("triangles", len(faces)/3))
	return model
}

func lerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
