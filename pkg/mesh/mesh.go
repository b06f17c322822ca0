// Package mesh provides the in-memory mesh store shared by the format codecs.
package mesh

import (
	"errors"
	"fmt"
)

// Mesh store errors.
var (
	ErrOrderingViolation = errors.New("vertex data after first face")
	ErrIndexOutOfRange   = errors.New("face index out of range")
)

// Vertex is a vertex position with an optional homogeneous weight.
type Vertex struct {
	X, Y, Z float32
	W       float32 // 0 unless given, then within [0,1]
}

// Normal is a vertex normal.
type Normal struct {
	X, Y, Z float32
}

// TexCoord is a texture coordinate with an optional depth component.
type TexCoord struct {
	U, V float32
	W    float32 // 0 unless given, then within [0,1]
}

// Face is a triangle referencing vertex data by 1-based index.
// A zero normal or texcoord index means the attribute is absent.
// Negative indices count back from the end of the referenced array.
type Face struct {
	V1, V2, V3 int
	N1, N2, N3 int
	T1, T2, T3 int
}

// ResolveRelative rewrites negative indices against the given array sizes.
func (f *Face) ResolveRelative(numVertices, numNormals, numTexCoords int) {
	resolve := func(idx *int, size int) {
		if *idx < 0 {
			*idx += size + 1
		}
	}
	resolve(&f.V1, numVertices)
	resolve(&f.V2, numVertices)
	resolve(&f.V3, numVertices)
	resolve(&f.N1, numNormals)
	resolve(&f.N2, numNormals)
	resolve(&f.N3, numNormals)
	resolve(&f.T1, numTexCoords)
	resolve(&f.T2, numTexCoords)
	resolve(&f.T3, numTexCoords)
}

// InBounds reports whether every index addresses an existing record.
// Vertex indices must be within [1, size]; normal and texcoord indices
// may also be 0.
func (f *Face) InBounds(numVertices, numNormals, numTexCoords int) bool {
	for _, v := range [3]int{f.V1, f.V2, f.V3} {
		if v < 1 || v > numVertices {
			return false
		}
	}
	for _, n := range [3]int{f.N1, f.N2, f.N3} {
		if n < 0 || n > numNormals {
			return false
		}
	}
	for _, t := range [3]int{f.T1, f.T2, f.T3} {
		if t < 0 || t > numTexCoords {
			return false
		}
	}
	return true
}

// ResolvedFace is a face dereferenced into 0-based array positions.
// N and T entries are -1 when the mesh has no normals or texcoords,
// or when the face leaves the slot empty.
type ResolvedFace struct {
	V [3]int
	N [3]int
	T [3]int
}

// HasNormals reports whether all three normal slots are set.
func (rf ResolvedFace) HasNormals() bool {
	return rf.N[0] >= 0 && rf.N[1] >= 0 && rf.N[2] >= 0
}

// HasTexCoords reports whether all three texcoord slots are set.
func (rf ResolvedFace) HasTexCoords() bool {
	return rf.T[0] >= 0 && rf.T[1] >= 0 && rf.T[2] >= 0
}

// Mesh owns vertex, normal, texcoord and face arrays plus a lazily built
// resolved-face cache. It is append-only while loading and read-only
// afterwards. A Mesh is not safe for concurrent use.
type Mesh struct {
	vertices  []Vertex
	normals   []Normal
	texCoords []TexCoord
	faces     []Face

	resolved []ResolvedFace
	cached   bool
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// NewWithCapacity returns an empty mesh with storage reserved for the
// expected record counts.
func NewWithCapacity(vertices, normals, texCoords, faces int) *Mesh {
	return &Mesh{
		vertices:  make([]Vertex, 0, vertices),
		normals:   make([]Normal, 0, normals),
		texCoords: make([]TexCoord, 0, texCoords),
		faces:     make([]Face, 0, faces),
	}
}

// AppendVertex adds a vertex. It fails once any face has been added.
func (m *Mesh) AppendVertex(v Vertex) error {
	if len(m.faces) > 0 {
		return fmt.Errorf("%w: vertex", ErrOrderingViolation)
	}
	m.vertices = append(m.vertices, v)
	m.Invalidate()
	return nil
}

// AppendNormal adds a normal. It fails once any face has been added.
func (m *Mesh) AppendNormal(n Normal) error {
	if len(m.faces) > 0 {
		return fmt.Errorf("%w: normal", ErrOrderingViolation)
	}
	m.normals = append(m.normals, n)
	m.Invalidate()
	return nil
}

// AppendTexCoord adds a texture coordinate. It fails once any face has
// been added.
func (m *Mesh) AppendTexCoord(t TexCoord) error {
	if len(m.faces) > 0 {
		return fmt.Errorf("%w: texcoord", ErrOrderingViolation)
	}
	m.texCoords = append(m.texCoords, t)
	m.Invalidate()
	return nil
}

// AppendFace adds a face. Indices are not validated here.
func (m *Mesh) AppendFace(f Face) {
	m.faces = append(m.faces, f)
	m.Invalidate()
}

// Vertices returns the stored vertices. The slice must not be modified.
func (m *Mesh) Vertices() []Vertex { return m.vertices }

// Normals returns the stored normals. The slice must not be modified.
func (m *Mesh) Normals() []Normal { return m.normals }

// TexCoords returns the stored texture coordinates. The slice must not be modified.
func (m *Mesh) TexCoords() []TexCoord { return m.texCoords }

// Faces returns the stored faces. The slice must not be modified.
func (m *Mesh) Faces() []Face { return m.faces }

func (m *Mesh) NumVertices() int  { return len(m.vertices) }
func (m *Mesh) NumNormals() int   { return len(m.normals) }
func (m *Mesh) NumTexCoords() int { return len(m.texCoords) }
func (m *Mesh) NumFaces() int     { return len(m.faces) }

// HasNormals reports whether the mesh carries any normals.
func (m *Mesh) HasNormals() bool { return len(m.normals) > 0 }

// HasTexCoords reports whether the mesh carries any texture coordinates.
func (m *Mesh) HasTexCoords() bool { return len(m.texCoords) > 0 }

// Cached reports whether the resolved-face cache is built.
func (m *Mesh) Cached() bool { return m.cached }

// Invalidate drops the resolved-face cache. The next call to
// ResolvedFaces rebuilds it from the current arrays.
func (m *Mesh) Invalidate() {
	m.resolved = nil
	m.cached = false
}

// ResolvedFaces returns one resolved face per stored face, building the
// cache on first use. Normal and texcoord slots are resolved only when the
// mesh has any normals or texcoords at all.
func (m *Mesh) ResolvedFaces() ([]ResolvedFace, error) {
	if m.cached {
		return m.resolved, nil
	}

	resolved := make([]ResolvedFace, 0, len(m.faces))
	hasNormals := m.HasNormals()
	hasTexCoords := m.HasTexCoords()

	for i, f := range m.faces {
		var rf ResolvedFace
		var err error

		rf.V, err = resolveSlots([3]int{f.V1, f.V2, f.V3}, len(m.vertices), false)
		if err != nil {
			return nil, fmt.Errorf("face %d vertex: %w", i+1, err)
		}

		rf.N = [3]int{-1, -1, -1}
		if hasNormals {
			rf.N, err = resolveSlots([3]int{f.N1, f.N2, f.N3}, len(m.normals), true)
			if err != nil {
				return nil, fmt.Errorf("face %d normal: %w", i+1, err)
			}
		}

		rf.T = [3]int{-1, -1, -1}
		if hasTexCoords {
			rf.T, err = resolveSlots([3]int{f.T1, f.T2, f.T3}, len(m.texCoords), true)
			if err != nil {
				return nil, fmt.Errorf("face %d texcoord: %w", i+1, err)
			}
		}

		resolved = append(resolved, rf)
	}

	m.resolved = resolved
	m.cached = true
	return m.resolved, nil
}

// resolveSlots converts 1-based indices into 0-based positions.
// With optional set, index 0 maps to -1.
func resolveSlots(idx [3]int, size int, optional bool) ([3]int, error) {
	var out [3]int
	for i, v := range idx {
		switch {
		case optional && v == 0:
			out[i] = -1
		case v < 1 || v > size:
			return out, fmt.Errorf("%w: %d not in [1, %d]", ErrIndexOutOfRange, v, size)
		default:
			out[i] = v - 1
		}
	}
	return out, nil
}

// FaceVertices returns the three vertices of a resolved face.
func (m *Mesh) FaceVertices(rf ResolvedFace) [3]Vertex {
	return [3]Vertex{m.vertices[rf.V[0]], m.vertices[rf.V[1]], m.vertices[rf.V[2]]}
}

// FaceNormals returns the three normals of a resolved face, or false if
// the face has none.
func (m *Mesh) FaceNormals(rf ResolvedFace) ([3]Normal, bool) {
	if !rf.HasNormals() {
		return [3]Normal{}, false
	}
	return [3]Normal{m.normals[rf.N[0]], m.normals[rf.N[1]], m.normals[rf.N[2]]}, true
}

// FaceTexCoords returns the three texture coordinates of a resolved face,
// or false if the face has none.
func (m *Mesh) FaceTexCoords(rf ResolvedFace) ([3]TexCoord, bool) {
	if !rf.HasTexCoords() {
		return [3]TexCoord{}, false
	}
	return [3]TexCoord{m.texCoords[rf.T[0]], m.texCoords[rf.T[1]], m.texCoords[rf.T[2]]}, true
}

// NormalizeNormals replaces every normal with its unit-length form.
// A zero-length normal becomes non-finite. Indices are unchanged, so the
// resolved-face cache stays valid.
func (m *Mesh) NormalizeNormals() {
	for i := range m.normals {
		m.normals[i] = m.normals[i].Unit()
	}
}

// ResolveRelativeIndices rewrites negative face indices using the final
// array sizes.
func (m *Mesh) ResolveRelativeIndices() {
	for i := range m.faces {
		m.faces[i].ResolveRelative(len(m.vertices), len(m.normals), len(m.texCoords))
	}
	m.Invalidate()
}
