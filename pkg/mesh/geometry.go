package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 returns the position as a vector, dropping W.
func (v Vertex) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// Vec3 returns the normal as a vector.
func (n Normal) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{n.X, n.Y, n.Z}
}

func normalFromVec3(v mgl32.Vec3) Normal {
	return Normal{X: v[0], Y: v[1], Z: v[2]}
}

// Unit returns the unit-length normal. A zero normal yields NaN components.
func (n Normal) Unit() Normal {
	return normalFromVec3(n.Vec3().Normalize())
}

// Cross returns the cross product u × v.
func Cross(u, v Normal) Normal {
	return normalFromVec3(u.Vec3().Cross(v.Vec3()))
}

// CalculateNormal returns the unit normal of triangle abc by the right-hand
// rule: (b-a) × (c-a).
func CalculateNormal(a, b, c Vertex) Normal {
	u := b.Vec3().Sub(a.Vec3())
	v := c.Vec3().Sub(a.Vec3())
	return normalFromVec3(u.Cross(v).Normalize())
}

// Average returns the unit-length per-axis mean of three normals.
func Average(a, b, c Normal) Normal {
	sum := a.Vec3().Add(b.Vec3()).Add(c.Vec3())
	return normalFromVec3(sum.Mul(1.0 / 3.0).Normalize())
}

// TriangleArea returns the area of triangle abc.
func TriangleArea(a, b, c Vertex) float32 {
	u := b.Vec3().Sub(a.Vec3())
	v := c.Vec3().Sub(a.Vec3())
	return 0.5 * u.Cross(v).Len()
}

// SignedVolume returns the signed volume of the tetrahedron spanned by the
// origin and triangle abc.
func SignedVolume(a, b, c Vertex) float32 {
	return a.Vec3().Dot(b.Vec3().Cross(c.Vec3())) / 6.0
}

// SurfaceArea returns the summed area of all faces.
func (m *Mesh) SurfaceArea() (float32, error) {
	faces, err := m.ResolvedFaces()
	if err != nil {
		return 0, err
	}
	var area float32
	for _, rf := range faces {
		v := m.FaceVertices(rf)
		area += TriangleArea(v[0], v[1], v[2])
	}
	return area, nil
}

// Volume returns the enclosed volume, assuming a closed consistently
// wound mesh.
func (m *Mesh) Volume() (float32, error) {
	faces, err := m.ResolvedFaces()
	if err != nil {
		return 0, err
	}
	var sum float32
	for _, rf := range faces {
		v := m.FaceVertices(rf)
		sum += SignedVolume(v[0], v[1], v[2])
	}
	return float32(math.Abs(float64(sum))), nil
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// Size returns the box extent along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Bounds returns the bounding box of all vertices. The second result is
// false for a mesh without vertices.
func (m *Mesh) Bounds() (Bounds, bool) {
	if len(m.vertices) == 0 {
		return Bounds{}, false
	}
	b := Bounds{Min: m.vertices[0].Vec3(), Max: m.vertices[0].Vec3()}
	for _, v := range m.vertices[1:] {
		p := v.Vec3()
		for i := 0; i < 3; i++ {
			if p[i] < b.Min[i] {
				b.Min[i] = p[i]
			}
			if p[i] > b.Max[i] {
				b.Max[i] = p[i]
			}
		}
	}
	return b, true
}
