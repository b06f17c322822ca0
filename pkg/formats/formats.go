// Package formats provides codecs between mesh.Mesh and file formats:
// a Wavefront OBJ loader and a binary STL writer and reader.
package formats

import "github.com/Taironn/3DFileConverter/pkg/mesh"

// Loader reads a mesh from a file.
type Loader interface {
	Load(path string) (*mesh.Mesh, error)
}

// Writer writes a mesh to a file.
type Writer interface {
	Write(path string, m *mesh.Mesh) error
}

var (
	_ Loader = (*OBJLoader)(nil)
	_ Writer = (*STLWriter)(nil)
)
