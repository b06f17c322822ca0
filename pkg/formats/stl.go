package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/Taironn/3DFileConverter/pkg/encoding"
	"github.com/Taironn/3DFileConverter/pkg/mesh"
)

// STL format errors.
var (
	ErrTruncatedSTLData = errors.New("truncated STL data")
	ErrSTLSizeMismatch  = errors.New("STL size does not match triangle count")
)

// Binary STL layout.
const (
	STLHeaderSize   = 80
	stlCountSize    = 4
	STLTriangleSize = 50 // normal + 3 vertices (12 bytes each) + uint16 attribute
)

// DefaultSTLHeader is the header text written when none is configured.
const DefaultSTLHeader = "FormatConverter stl file"

// STLSize returns the byte length of a binary STL with n triangles.
func STLSize(n int) int {
	return STLHeaderSize + stlCountSize + STLTriangleSize*n
}

// NormalMode selects the facet normal written for each triangle.
type NormalMode int

const (
	NormalsComputed NormalMode = iota // right-hand rule from vertex positions
	NormalsZero                       // always (0, 0, 0)
	NormalsAveraged                   // mean of the face's vertex normals
)

// String returns the configuration name of the mode.
func (n NormalMode) String() string {
	switch n {
	case NormalsComputed:
		return "computed"
	case NormalsZero:
		return "zero"
	case NormalsAveraged:
		return "averaged"
	default:
		return fmt.Sprintf("Unknown(%d)", int(n))
	}
}

// ParseNormalMode parses a mode name. The single-letter forms "c", "0"
// and "a" are accepted as well.
func ParseNormalMode(s string) (NormalMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "computed", "c", "":
		return NormalsComputed, nil
	case "zero", "0":
		return NormalsZero, nil
	case "averaged", "average", "a":
		return NormalsAveraged, nil
	default:
		return NormalsComputed, fmt.Errorf("unknown normal mode %q", s)
	}
}

// STLOptions controls binary STL output.
type STLOptions struct {
	Header  string
	Normals NormalMode
}

// DefaultSTLOptions returns computed normals and the default header.
func DefaultSTLOptions() STLOptions {
	return STLOptions{Header: DefaultSTLHeader, Normals: NormalsComputed}
}

// STLWriter writes binary STL files with fixed options.
type STLWriter struct {
	Options STLOptions
}

// NewSTLWriter returns a writer using DefaultSTLOptions.
func NewSTLWriter() *STLWriter {
	return &STLWriter{Options: DefaultSTLOptions()}
}

// Write writes m to path as binary STL.
func (w *STLWriter) Write(path string, m *mesh.Mesh) error {
	return WriteSTLFile(path, m, w.Options)
}

// WriteSTLFile writes m to path, truncating any existing file.
// Faces are resolved before the file is touched.
func WriteSTLFile(path string, m *mesh.Mesh, opts STLOptions) (err error) {
	if _, err := m.ResolvedFaces(); err != nil {
		return fmt.Errorf("resolving faces: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileUnavailable, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	return WriteSTL(f, m, opts)
}

// WriteSTL writes m as binary STL: an 80-byte header, a little-endian
// triangle count and one 50-byte record per resolved face.
func WriteSTL(w io.Writer, m *mesh.Mesh, opts STLOptions) error {
	faces, err := m.ResolvedFaces()
	if err != nil {
		return fmt.Errorf("resolving faces: %w", err)
	}

	mode := opts.Normals
	if mode == NormalsAveraged && !m.HasNormals() {
		mode = NormalsComputed
	}

	bw := bufio.NewWriter(w)

	var head [STLHeaderSize + stlCountSize]byte
	copy(head[:STLHeaderSize], encoding.FixedString(opts.Header, STLHeaderSize))
	binary.LittleEndian.PutUint32(head[STLHeaderSize:], uint32(len(faces)))
	if _, err := bw.Write(head[:]); err != nil {
		return fmt.Errorf("writing STL header: %w", err)
	}

	var tri [STLTriangleSize]byte
	for i, rf := range faces {
		verts := m.FaceVertices(rf)
		putNormal(tri[0:], facetNormal(m, rf, verts, mode))
		for j, v := range verts {
			putVertex(tri[12+12*j:], v)
		}
		binary.LittleEndian.PutUint16(tri[48:], 0)

		if _, err := bw.Write(tri[:]); err != nil {
			return fmt.Errorf("writing STL triangle %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// facetNormal picks the normal for one triangle. Averaging falls back to the
// computed normal for faces without normal slots.
func facetNormal(m *mesh.Mesh, rf mesh.ResolvedFace, verts [3]mesh.Vertex, mode NormalMode) mesh.Normal {
	switch mode {
	case NormalsZero:
		return mesh.Normal{}
	case NormalsAveraged:
		if normals, ok := m.FaceNormals(rf); ok {
			return mesh.Average(normals[0], normals[1], normals[2])
		}
	}
	return mesh.CalculateNormal(verts[0], verts[1], verts[2])
}

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func putNormal(b []byte, n mesh.Normal) {
	putFloat(b[0:], n.X)
	putFloat(b[4:], n.Y)
	putFloat(b[8:], n.Z)
}

func putVertex(b []byte, v mesh.Vertex) {
	putFloat(b[0:], v.X)
	putFloat(b[4:], v.Y)
	putFloat(b[8:], v.Z)
}

func getFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// STLTriangle is one facet of a binary STL file.
type STLTriangle struct {
	Normal    mesh.Normal
	Vertices  [3]mesh.Vertex
	Attribute uint16
}

// STL represents a parsed binary STL file.
type STL struct {
	Header    string
	Triangles []STLTriangle
}

// ParseSTL parses binary STL data.
func ParseSTL(data []byte) (*STL, error) {
	if len(data) < STLHeaderSize+stlCountSize {
		return nil, ErrTruncatedSTLData
	}

	stl := &STL{
		Header: encoding.FixedStringToUTF8(data[:STLHeaderSize]),
	}

	count := int(binary.LittleEndian.Uint32(data[STLHeaderSize:]))
	body := data[STLHeaderSize+stlCountSize:]

	want := STLTriangleSize * count
	if len(body) < want {
		if bytes.HasPrefix(data, []byte("solid")) {
			return nil, fmt.Errorf("%w: looks like ASCII STL", ErrTruncatedSTLData)
		}
		return nil, fmt.Errorf("%w: %d triangles need %d bytes, have %d", ErrTruncatedSTLData, count, want, len(body))
	}
	if len(body) > want {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSTLSizeMismatch, len(body)-want)
	}

	stl.Triangles = make([]STLTriangle, count)
	for i := range stl.Triangles {
		b := body[i*STLTriangleSize:]
		t := &stl.Triangles[i]
		t.Normal = mesh.Normal{X: getFloat(b[0:]), Y: getFloat(b[4:]), Z: getFloat(b[8:])}
		for j := range t.Vertices {
			off := 12 + 12*j
			t.Vertices[j] = mesh.Vertex{X: getFloat(b[off:]), Y: getFloat(b[off+4:]), Z: getFloat(b[off+8:])}
		}
		t.Attribute = binary.LittleEndian.Uint16(b[48:])
	}

	return stl, nil
}

// ParseSTLFile parses a binary STL file from disk.
func ParseSTLFile(path string) (*STL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileUnavailable, err)
	}
	return ParseSTL(data)
}

// Mesh converts the triangle soup into a mesh with one normal per facet
// and three unshared vertices per face.
func (s *STL) Mesh() (*mesh.Mesh, error) {
	n := len(s.Triangles)
	m := mesh.NewWithCapacity(3*n, n, 0, n)

	for _, t := range s.Triangles {
		for _, v := range t.Vertices {
			if err := m.AppendVertex(v); err != nil {
				return nil, err
			}
		}
		if err := m.AppendNormal(t.Normal); err != nil {
			return nil, err
		}
	}

	for i := 0; i < n; i++ {
		base := 3 * i
		m.AppendFace(mesh.Face{
			V1: base + 1, V2: base + 2, V3: base + 3,
			N1: i + 1, N2: i + 1, N3: i + 1,
		})
	}

	return m, nil
}
