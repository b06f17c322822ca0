package convert

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Taironn/3DFileConverter/internal/config"
	"github.com/Taironn/3DFileConverter/internal/logger"
	"github.com/Taironn/3DFileConverter/pkg/formats"
)

// Summary describes a binary STL file.
type Summary struct {
	Path      string
	Header    string
	Triangles int
	Stats     Stats
}

// Inspect reads a binary STL file and measures its geometry.
func Inspect(path string) (*Summary, error) {
	stl, err := formats.ParseSTLFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	m, err := stl.Mesh()
	if err != nil {
		return nil, fmt.Errorf("building mesh from %s: %w", path, err)
	}

	stats, err := Analyze(m, true)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}

	logger.Debug("Inspected STL",
		zap.String("path", path),
		zap.Int("triangles", len(stl.Triangles)))

	return &Summary{
		Path:      path,
		Header:    stl.Header,
		Triangles: len(stl.Triangles),
		Stats:     *stats,
	}, nil
}

// Measure loads an OBJ file and returns its full statistics without
// writing anything.
func Measure(cfg *config.Config, path string) (*Stats, error) {
	m, err := (&formats.OBJLoader{Options: cfg.OBJOptions()}).Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if cfg.OBJ.NormalizeNormals {
		m.NormalizeNormals()
	}
	return Analyze(m, true)
}
