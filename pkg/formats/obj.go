package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Taironn/3DFileConverter/pkg/mesh"
)

// maxOBJLineLength bounds a single OBJ line; long polygon faces need more
// than bufio's default token size.
const maxOBJLineLength = 1 << 20

// OBJOptions controls validation and triangulation while loading.
type OBJOptions struct {
	// CheckIndexValidity bounds-checks every face against the arrays read
	// so far and resolves negative indices on the spot.
	CheckIndexValidity bool
	// FixNegativeIndexes resolves negative indices after the whole file is
	// read. Only used when CheckIndexValidity is off.
	FixNegativeIndexes bool
	// Triangulate fan-triangulates faces with more than three references.
	// Otherwise only the first three references of a face are used.
	Triangulate bool
}

// DefaultOBJOptions returns index checking on, post-pass fixing off and
// triangulation off.
func DefaultOBJOptions() OBJOptions {
	return OBJOptions{CheckIndexValidity: true}
}

// OBJLoader loads OBJ files with fixed options.
type OBJLoader struct {
	Options OBJOptions
}

// NewOBJLoader returns a loader using DefaultOBJOptions.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{Options: DefaultOBJOptions()}
}

// Load parses the OBJ file at path.
func (l *OBJLoader) Load(path string) (*mesh.Mesh, error) {
	return LoadOBJFile(path, l.Options)
}

// LoadOBJFile parses an OBJ file from disk.
func LoadOBJFile(path string, opts OBJOptions) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileUnavailable, err)
	}
	defer f.Close()

	return ParseOBJ(f, opts)
}

// ParseOBJ parses OBJ data. Lines that do not start with 'v' or 'f' are
// skipped. The first defect aborts parsing and no mesh is returned.
func ParseOBJ(r io.Reader, opts OBJOptions) (*mesh.Mesh, error) {
	p := &objParser{
		mesh: mesh.New(),
		opts: opts,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOBJLineLength)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data after line %d: %w", p.line, err)
	}

	if opts.FixNegativeIndexes && !opts.CheckIndexValidity {
		p.mesh.ResolveRelativeIndices()
	}

	return p.mesh, nil
}

type objParser struct {
	mesh    *mesh.Mesh
	opts    OBJOptions
	line    int
	sawFace bool
}

func (p *objParser) errorf(err error, format string, args ...any) error {
	return &ParseError{Line: p.line, Err: err, Detail: fmt.Sprintf(format, args...)}
}

func (p *objParser) parseLine(line string) error {
	if line == "" {
		return nil
	}

	switch line[0] {
	case 'v':
		fields := strings.Fields(line)
		if p.sawFace {
			return p.errorf(ErrOrderingViolation, "%q after first face", fields[0])
		}
		switch fields[0] {
		case "v":
			return p.parseVertex(fields[1:])
		case "vn":
			return p.parseNormal(fields[1:])
		case "vt":
			return p.parseTexCoord(fields[1:])
		default:
			return p.errorf(ErrUnknownRecord, "%q", fields[0])
		}
	case 'f':
		fields := strings.Fields(line)
		if fields[0] != "f" {
			return p.errorf(ErrUnknownRecord, "%q", fields[0])
		}
		p.sawFace = true
		return p.parseFace(fields[1:])
	}

	// Comments, groups, materials and blank lines are not interpreted.
	return nil
}

// parseFloats reads required values followed by up to optional more.
// Fields past that are ignored.
func (p *objParser) parseFloats(fields []string, required, optional int) ([4]float32, int, error) {
	var values [4]float32
	if len(fields) < required {
		return values, 0, p.errorf(ErrMalformedNumber, "expected %d values, got %d", required, len(fields))
	}

	n := min(len(fields), required+optional)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return values, 0, p.errorf(ErrMalformedNumber, "%q", fields[i])
		}
		values[i] = float32(f)
	}
	return values, n, nil
}

func validWeight(w float32) bool {
	return w >= 0 && w <= 1
}

func (p *objParser) parseVertex(fields []string) error {
	values, n, err := p.parseFloats(fields, 3, 1)
	if err != nil {
		return err
	}

	v := mesh.Vertex{X: values[0], Y: values[1], Z: values[2]}
	if n == 4 {
		if !validWeight(values[3]) {
			return p.errorf(ErrWeightOutOfRange, "vertex w = %g", values[3])
		}
		v.W = values[3]
	}

	if err := p.mesh.AppendVertex(v); err != nil {
		return &ParseError{Line: p.line, Err: err}
	}
	return nil
}

func (p *objParser) parseNormal(fields []string) error {
	values, _, err := p.parseFloats(fields, 3, 0)
	if err != nil {
		return err
	}

	if err := p.mesh.AppendNormal(mesh.Normal{X: values[0], Y: values[1], Z: values[2]}); err != nil {
		return &ParseError{Line: p.line, Err: err}
	}
	return nil
}

func (p *objParser) parseTexCoord(fields []string) error {
	values, n, err := p.parseFloats(fields, 2, 1)
	if err != nil {
		return err
	}

	tc := mesh.TexCoord{U: values[0], V: values[1]}
	if n == 3 {
		if !validWeight(values[2]) {
			return p.errorf(ErrWeightOutOfRange, "texcoord w = %g", values[2])
		}
		tc.W = values[2]
	}

	if err := p.mesh.AppendTexCoord(tc); err != nil {
		return &ParseError{Line: p.line, Err: err}
	}
	return nil
}

// refEncoding is the slash pattern of one face reference.
type refEncoding int

const (
	refVertex          refEncoding = iota // v
	refVertexTex                          // v/t
	refVertexNormal                       // v//n
	refVertexTexNormal                    // v/t/n
)

// faceRef is one corner of a face line. Absent attributes are 0.
type faceRef struct {
	v, t, n int
	enc     refEncoding
}

func (p *objParser) parseIndex(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.errorf(ErrMalformedNumber, "index %q", s)
	}
	return idx, nil
}

// parseRef parses a single face reference. Each reference is classified on
// its own, so callers decide whether mixed encodings are acceptable.
func (p *objParser) parseRef(chunk string) (faceRef, error) {
	var ref faceRef
	parts := strings.Split(chunk, "/")

	switch len(parts) {
	case 1:
		ref.enc = refVertex
	case 2:
		ref.enc = refVertexTex
	case 3:
		if parts[1] == "" {
			ref.enc = refVertexNormal
		} else {
			ref.enc = refVertexTexNormal
		}
	default:
		return ref, p.errorf(ErrUnrecognizedFaceEncoding, "%q", chunk)
	}

	var err error
	if ref.v, err = p.parseIndex(parts[0]); err != nil {
		return ref, err
	}
	if ref.enc == refVertexTex || ref.enc == refVertexTexNormal {
		if ref.t, err = p.parseIndex(parts[1]); err != nil {
			return ref, err
		}
	}
	if ref.enc == refVertexNormal || ref.enc == refVertexTexNormal {
		if ref.n, err = p.parseIndex(parts[2]); err != nil {
			return ref, err
		}
	}
	return ref, nil
}

func (p *objParser) parseFace(refs []string) error {
	if len(refs) < 3 {
		return p.errorf(ErrUnrecognizedFaceEncoding, "face needs 3 references, got %d", len(refs))
	}

	if p.opts.Triangulate && len(refs) > 3 {
		return p.triangulate(refs)
	}

	var corners [3]faceRef
	for i := range corners {
		ref, err := p.parseRef(refs[i])
		if err != nil {
			return err
		}
		if i > 0 && ref.enc != corners[0].enc {
			return p.errorf(ErrUnrecognizedFaceEncoding, "mixed references %q and %q", refs[0], refs[i])
		}
		corners[i] = ref
	}

	return p.addFace(corners[0], corners[1], corners[2])
}

// triangulate emits a triangle fan anchored at the first reference.
// The result is only correct for convex planar polygons.
func (p *objParser) triangulate(refs []string) error {
	corners := make([]faceRef, len(refs))
	for i, chunk := range refs {
		ref, err := p.parseRef(chunk)
		if err != nil {
			return err
		}
		corners[i] = ref
	}

	for i := 2; i < len(corners); i++ {
		if err := p.addFace(corners[0], corners[i-1], corners[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *objParser) addFace(a, b, c faceRef) error {
	f := mesh.Face{
		V1: a.v, V2: b.v, V3: c.v,
		N1: a.n, N2: b.n, N3: c.n,
		T1: a.t, T2: b.t, T3: c.t,
	}

	if p.opts.CheckIndexValidity {
		nv, nn, nt := p.mesh.NumVertices(), p.mesh.NumNormals(), p.mesh.NumTexCoords()
		f.ResolveRelative(nv, nn, nt)
		if !f.InBounds(nv, nn, nt) {
			return p.errorf(ErrIndexOutOfRange,
				"v=(%d %d %d) vt=(%d %d %d) vn=(%d %d %d) with %d vertices, %d texcoords, %d normals",
				f.V1, f.V2, f.V3, f.T1, f.T2, f.T3, f.N1, f.N2, f.N3, nv, nt, nn)
		}
	}

	p.mesh.AppendFace(f)
	return nil
}
