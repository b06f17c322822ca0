package formats

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Taironn/3DFileConverter/pkg/mesh"
)

// cubeOBJ is a cube with side 2 made of quads, with normals and texcoords.
const cubeOBJ = `# cube
o cube
v 0 0 0
v 2 0 0
v 2 2 0
v 0 2 0
v 0 0 2
v 2 0 2
v 2 2 2
v 0 2 2
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 -1
vn 0 0 1
vn 0 -1 0
vn 0 1 0
vn -1 0 0
vn 1 0 0
s off
f 1/1/1 4/2/1 3/3/1 2/4/1
f 5/1/2 6/2/2 7/3/2 8/4/2
f 1/1/3 2/2/3 6/3/3 5/4/3
f 4/1/4 8/2/4 7/3/4 3/4/4
f 1/1/5 5/2/5 8/3/5 4/4/5
f 2/1/6 3/2/6 7/3/6 6/4/6
`

func parseString(t *testing.T, data string, opts OBJOptions) *mesh.Mesh {
	t.Helper()
	m, err := ParseOBJ(strings.NewReader(data), opts)
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	return m
}

func TestParseOBJ_Records(t *testing.T) {
	m := parseString(t, "v 1.0 2.0 3.0\nv 4 5 6 0.5\nvn 0 0 1\nvt 0.25 0.75\nvt 0.1 0.2 1\n", DefaultOBJOptions())

	if m.NumVertices() != 2 || m.NumNormals() != 1 || m.NumTexCoords() != 2 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/2", m.NumVertices(), m.NumNormals(), m.NumTexCoords())
	}

	if got := m.Vertices()[0]; got != (mesh.Vertex{X: 1, Y: 2, Z: 3}) {
		t.Errorf("vertex 1 = %+v", got)
	}
	if got := m.Vertices()[1]; got.W != 0.5 {
		t.Errorf("vertex 2 W = %f, want 0.5", got.W)
	}
	if got := m.Normals()[0]; got != (mesh.Normal{Z: 1}) {
		t.Errorf("normal = %+v", got)
	}
	if got := m.TexCoords()[0]; got.U != 0.25 || got.V != 0.75 || got.W != 0 {
		t.Errorf("texcoord 1 = %+v", got)
	}
	if got := m.TexCoords()[1]; got.W != 1 {
		t.Errorf("texcoord 2 W = %f, want 1", got.W)
	}
}

func TestParseOBJ_FaceEncodings(t *testing.T) {
	header := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nvn 0 0 1\nvn 0 0 1\nvn 0 0 1\n"

	tests := []struct {
		name string
		face string
		want mesh.Face
	}{
		{"vertex only", "f 1 2 3", mesh.Face{V1: 1, V2: 2, V3: 3}},
		{"vertex texcoord", "f 1/1 2/2 3/3", mesh.Face{V1: 1, V2: 2, V3: 3, T1: 1, T2: 2, T3: 3}},
		{"vertex normal", "f 1//3 2//2 3//1", mesh.Face{V1: 1, V2: 2, V3: 3, N1: 3, N2: 2, N3: 1}},
		{"all attributes", "f 1/3/1 2/2/2 3/1/3", mesh.Face{V1: 1, V2: 2, V3: 3, N1: 1, N2: 2, N3: 3, T1: 3, T2: 2, T3: 1}},
		{"relative", "f -3/-3/-3 -2/-2/-2 -1/-1/-1", mesh.Face{V1: 1, V2: 2, V3: 3, N1: 1, N2: 2, N3: 3, T1: 1, T2: 2, T3: 3}},
		{"extra spaces", "f  1   2\t3  ", mesh.Face{V1: 1, V2: 2, V3: 3}},
		{"extra references ignored", "f 1 2 3 1 2", mesh.Face{V1: 1, V2: 2, V3: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parseString(t, header+tt.face+"\n", DefaultOBJOptions())
			if m.NumFaces() != 1 {
				t.Fatalf("expected 1 face, got %d", m.NumFaces())
			}
			if got := m.Faces()[0]; got != tt.want {
				t.Errorf("face = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseOBJ_Triangulation(t *testing.T) {
	data := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\n" +
		"vt 0 0\nvt 1 0\nvt 1 1\nvt 0 1\n" +
		"vn 0 0 1\nvn 0 0 1\nvn 0 0 1\nvn 0 0 1\n" +
		"f 1/1/1 2/2/2 3/3/3 4/4/4\n"

	m := parseString(t, data, OBJOptions{CheckIndexValidity: true, Triangulate: true})

	faces, err := m.ResolvedFaces()
	if err != nil {
		t.Fatalf("ResolvedFaces: %v", err)
	}
	if len(faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(faces))
	}
	if faces[0].V != [3]int{0, 1, 2} {
		t.Errorf("first triangle = %v, want [0 1 2]", faces[0].V)
	}
	if faces[1].V != [3]int{0, 2, 3} {
		t.Errorf("second triangle = %v, want [0 2 3]", faces[1].V)
	}
	if faces[1].N != [3]int{0, 2, 3} || faces[1].T != [3]int{0, 2, 3} {
		t.Errorf("second triangle attributes N=%v T=%v", faces[1].N, faces[1].T)
	}
}

func TestParseOBJ_TriangulationFanSize(t *testing.T) {
	tests := []struct {
		refs int
		want int
	}{
		{3, 1},
		{4, 2},
		{5, 3},
		{8, 6},
	}

	for _, tt := range tests {
		var sb strings.Builder
		for i := 0; i < tt.refs; i++ {
			sb.WriteString("v 0 0 0\n")
		}
		sb.WriteString("f")
		for i := 1; i <= tt.refs; i++ {
			sb.WriteString(" ")
			sb.WriteString(strconv.Itoa(i))
		}
		sb.WriteString("\n")

		m := parseString(t, sb.String(), OBJOptions{CheckIndexValidity: true, Triangulate: true})
		if m.NumFaces() != tt.want {
			t.Errorf("%d references: got %d faces, want %d", tt.refs, m.NumFaces(), tt.want)
		}

		plain := parseString(t, sb.String(), DefaultOBJOptions())
		if plain.NumFaces() != 1 {
			t.Errorf("%d references without triangulation: got %d faces, want 1", tt.refs, plain.NumFaces())
		}
	}
}

func TestParseOBJ_TriangulationMixedChunks(t *testing.T) {
	// The per-chunk parser accepts differing encodings on one polygon.
	data := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nvt 0 0\nvn 0 0 1\n" +
		"f 1 2/1 3//1 4/1/1\n"

	m := parseString(t, data, OBJOptions{CheckIndexValidity: true, Triangulate: true})
	if m.NumFaces() != 2 {
		t.Fatalf("expected 2 faces, got %d", m.NumFaces())
	}
	want := mesh.Face{V1: 1, V2: 3, V3: 4, N1: 0, N2: 1, N3: 1, T1: 0, T2: 0, T3: 1}
	if got := m.Faces()[1]; got != want {
		t.Errorf("face 2 = %+v, want %+v", got, want)
	}
}

func TestParseOBJ_Cube(t *testing.T) {
	m := parseString(t, cubeOBJ, OBJOptions{CheckIndexValidity: true, Triangulate: true})

	if m.NumFaces() != 12 {
		t.Fatalf("expected 12 faces, got %d", m.NumFaces())
	}

	area, err := m.SurfaceArea()
	if err != nil {
		t.Fatalf("SurfaceArea: %v", err)
	}
	if area < 23.999 || area > 24.001 {
		t.Errorf("surface area = %v, want 24", area)
	}

	vol, err := m.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if vol < 7.999 || vol > 8.001 {
		t.Errorf("volume = %v, want 8", vol)
	}

	// Every resolved reference must address the mesh's own arrays.
	faces, _ := m.ResolvedFaces()
	for i, rf := range faces {
		for j := 0; j < 3; j++ {
			if rf.V[j] < 0 || rf.V[j] >= m.NumVertices() {
				t.Errorf("face %d vertex %d dangling: %d", i, j, rf.V[j])
			}
			if rf.N[j] < 0 || rf.N[j] >= m.NumNormals() {
				t.Errorf("face %d normal %d dangling: %d", i, j, rf.N[j])
			}
			if rf.T[j] < 0 || rf.T[j] >= m.NumTexCoords() {
				t.Errorf("face %d texcoord %d dangling: %d", i, j, rf.T[j])
			}
		}
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		opts     OBJOptions
		wantErr  error
		wantLine int
	}{
		{
			name:     "vertex w above range",
			data:     "v 1.0 2.0 3.0 1.5\n",
			wantErr:  ErrWeightOutOfRange,
			wantLine: 1,
		},
		{
			name:     "vertex w below range",
			data:     "v 0 0 0\nv 1 2 3 -0.1\n",
			wantErr:  ErrWeightOutOfRange,
			wantLine: 2,
		},
		{
			name:     "texcoord w out of range",
			data:     "vt 0 0 2\n",
			wantErr:  ErrWeightOutOfRange,
			wantLine: 1,
		},
		{
			name:     "bad float",
			data:     "# header\nv 1 abc 3\n",
			wantErr:  ErrMalformedNumber,
			wantLine: 2,
		},
		{
			name:     "float overflow",
			data:     "vn 1e99 0 0\n",
			wantErr:  ErrMalformedNumber,
			wantLine: 1,
		},
		{
			name:     "missing coordinate",
			data:     "v 1 2\n",
			wantErr:  ErrMalformedNumber,
			wantLine: 1,
		},
		{
			name:     "bad face index",
			data:     "v 0 0 0\nf 1 x 1\n",
			wantErr:  ErrMalformedNumber,
			wantLine: 2,
		},
		{
			name:     "empty texcoord index",
			data:     "v 0 0 0\nf 1/ 1/ 1/\n",
			wantErr:  ErrMalformedNumber,
			wantLine: 2,
		},
		{
			name:     "vertex after face",
			data:     "v 0 0 0\nf 1 1 1\nv 1 1 1\nthis line is never read\n",
			wantErr:  ErrOrderingViolation,
			wantLine: 3,
		},
		{
			name:     "normal after face",
			data:     "v 0 0 0\nf 1 1 1\nvn 0 0 1\n",
			wantErr:  ErrOrderingViolation,
			wantLine: 3,
		},
		{
			name:     "vertex index out of range",
			data:     "v 0 0 0\nv 1 0 0\nf 1 2 3\n",
			wantErr:  ErrIndexOutOfRange,
			wantLine: 3,
		},
		{
			name:     "zero vertex index",
			data:     "v 0 0 0\nf 0 1 1\n",
			wantErr:  ErrIndexOutOfRange,
			wantLine: 2,
		},
		{
			name:     "normal index out of range",
			data:     "v 0 0 0\nvn 0 0 1\nf 1//1 1//2 1//1\n",
			wantErr:  ErrIndexOutOfRange,
			wantLine: 3,
		},
		{
			name:     "relative index before start",
			data:     "v 0 0 0\nf -2 -1 -1\n",
			wantErr:  ErrIndexOutOfRange,
			wantLine: 2,
		},
		{
			name:     "repeated vertex index",
			data:     "v 0 0 0\nf 1 1 1\n",
			wantErr:  nil,
			wantLine: 0,
		},
		{
			name:     "too many slashes",
			data:     "v 0 0 0\nf 1/1/1/1 1 1\n",
			wantErr:  ErrUnrecognizedFaceEncoding,
			wantLine: 2,
		},
		{
			name:     "too few references",
			data:     "v 0 0 0\nf 1 1\n",
			wantErr:  ErrUnrecognizedFaceEncoding,
			wantLine: 2,
		},
		{
			name:     "mixed encodings",
			data:     "v 0 0 0\nvt 0 0\nvn 0 0 1\nf 1/1 1//1 1/1\n",
			wantErr:  ErrUnrecognizedFaceEncoding,
			wantLine: 4,
		},
		{
			name:     "unknown v record",
			data:     "vp 0.5 0.5\n",
			wantErr:  ErrUnknownRecord,
			wantLine: 1,
		},
		{
			name:     "triangulated index out of range",
			data:     "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 3 4\n",
			opts:     OBJOptions{CheckIndexValidity: true, Triangulate: true},
			wantErr:  ErrIndexOutOfRange,
			wantLine: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if opts == (OBJOptions{}) {
				opts = DefaultOBJOptions()
			}

			m, err := ParseOBJ(strings.NewReader(tt.data), opts)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if m != nil {
				t.Error("no mesh should be returned on error")
			}
			if line := LineOf(err); line != tt.wantLine {
				t.Errorf("error line = %d, want %d", line, tt.wantLine)
			}
		})
	}
}

func TestParseOBJ_IgnoredLines(t *testing.T) {
	data := "# comment\n\n   indented\nmtllib cube.mtl\ng group\nusemtl red\ns 1\nl 1 2\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n# trailing\n"
	m := parseString(t, data, DefaultOBJOptions())
	if m.NumVertices() != 3 || m.NumFaces() != 1 {
		t.Errorf("got %d vertices and %d faces, want 3 and 1", m.NumVertices(), m.NumFaces())
	}
}

func TestParseOBJ_NegativeIndexFixing(t *testing.T) {
	data := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nvn 0 0 1\n" +
		"f -4//-1 -3//-1 -2//-1\n"

	inline := parseString(t, data, OBJOptions{CheckIndexValidity: true})
	post := parseString(t, data, OBJOptions{FixNegativeIndexes: true})
	raw := parseString(t, data, OBJOptions{})

	if inline.Faces()[0] != post.Faces()[0] {
		t.Errorf("inline %+v differs from post-pass %+v", inline.Faces()[0], post.Faces()[0])
	}
	want := mesh.Face{V1: 1, V2: 2, V3: 3, N1: 1, N2: 1, N3: 1}
	if post.Faces()[0] != want {
		t.Errorf("post-pass face = %+v, want %+v", post.Faces()[0], want)
	}
	if raw.Faces()[0].V1 != -4 {
		t.Errorf("unchecked load should keep raw indices, got %+v", raw.Faces()[0])
	}
	if _, err := raw.ResolvedFaces(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("resolving raw negative indices: expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestParseOBJ_PostPassUsesFinalSizes(t *testing.T) {
	// Relative to the final arrays the face is the last three vertices,
	// while inline resolution sees only the vertices read so far.
	data := "v 0 0 0\nv 1 0 0\nv 1 1 0\nf -3 -2 -1\n"
	m := parseString(t, data, OBJOptions{FixNegativeIndexes: true})
	if got := m.Faces()[0]; got.V1 != 1 || got.V2 != 2 || got.V3 != 3 {
		t.Errorf("face = %+v", got)
	}
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.obj")
	if err := os.WriteFile(path, []byte(cubeOBJ), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m, err := NewOBJLoader().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.NumFaces() != 6 {
		t.Errorf("default loader: expected 6 faces, got %d", m.NumFaces())
	}

	loader := &OBJLoader{Options: OBJOptions{CheckIndexValidity: true, Triangulate: true}}
	m, err = loader.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.NumFaces() != 12 {
		t.Errorf("triangulating loader: expected 12 faces, got %d", m.NumFaces())
	}
}

func TestLoadOBJFileMissing(t *testing.T) {
	_, err := LoadOBJFile("/nonexistent/path/model.obj", DefaultOBJOptions())
	if !errors.Is(err, ErrFileUnavailable) {
		t.Errorf("expected ErrFileUnavailable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Line: 7, Err: ErrMalformedNumber, Detail: `"1.2.3"`}
	if got := err.Error(); got != `line 7: malformed number: "1.2.3"` {
		t.Errorf("Error() = %s", got)
	}
	if LineOf(errors.New("plain")) != 0 {
		t.Error("LineOf should return 0 for errors without a line")
	}
}
