// Package convert runs the OBJ to STL conversion pipeline.
package convert

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Taironn/3DFileConverter/internal/config"
	"github.com/Taironn/3DFileConverter/internal/logger"
	"github.com/Taironn/3DFileConverter/pkg/formats"
	"github.com/Taironn/3DFileConverter/pkg/mesh"
)

// Stats describes a loaded mesh.
type Stats struct {
	Vertices  int
	Normals   int
	TexCoords int
	Faces     int

	// Filled only when measuring is requested.
	Measured    bool
	SurfaceArea float32
	Volume      float32
	Bounds      mesh.Bounds
	HasBounds   bool
}

// Result is the outcome of one conversion.
type Result struct {
	Input     string
	Output    string
	Stats     Stats
	Bytes     int64
	LoadTime  time.Duration
	WriteTime time.Duration
}

// Converter loads meshes with a Loader and writes them with a Writer.
type Converter struct {
	Loader           formats.Loader
	Writer           formats.Writer
	NormalizeNormals bool
	Measure          bool
}

// New builds a converter from configuration.
func New(cfg *config.Config) (*Converter, error) {
	stlOpts, err := cfg.STLOptions()
	if err != nil {
		return nil, err
	}
	return &Converter{
		Loader:           &formats.OBJLoader{Options: cfg.OBJOptions()},
		Writer:           &formats.STLWriter{Options: stlOpts},
		NormalizeNormals: cfg.OBJ.NormalizeNormals,
		Measure:          cfg.Report.Stats,
	}, nil
}

// Run converts input to output with the given configuration.
func Run(cfg *config.Config, input, output string) (*Result, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return c.Convert(input, output)
}

// Convert loads input, optionally normalizes and measures it, then writes
// output. On failure no statistics are returned.
func (c *Converter) Convert(input, output string) (*Result, error) {
	res := &Result{Input: input, Output: output}

	start := time.Now()
	m, err := c.Loader.Load(input)
	if err != nil {
		logger.Error("Failed to load mesh", zap.String("input", input), zap.Error(err))
		return nil, fmt.Errorf("loading %s: %w", input, err)
	}
	res.LoadTime = time.Since(start)

	logger.Debug("Mesh loaded",
		zap.String("input", input),
		zap.Int("vertices", m.NumVertices()),
		zap.Int("normals", m.NumNormals()),
		zap.Int("texcoords", m.NumTexCoords()),
		zap.Int("faces", m.NumFaces()),
		zap.Duration("elapsed", res.LoadTime))

	if c.NormalizeNormals {
		m.NormalizeNormals()
	}

	stats, err := Analyze(m, c.Measure)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", input, err)
	}
	res.Stats = *stats

	start = time.Now()
	if err := c.Writer.Write(output, m); err != nil {
		logger.Error("Failed to write mesh", zap.String("output", output), zap.Error(err))
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}
	res.WriteTime = time.Since(start)

	if info, err := os.Stat(output); err == nil {
		res.Bytes = info.Size()
	}

	logger.Info("Converted mesh",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("triangles", stats.Faces),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("load", res.LoadTime),
		zap.Duration("write", res.WriteTime))

	return res, nil
}

// Analyze counts the records of m. With measure set it also computes
// surface area, volume and bounds, which builds the resolved-face cache.
func Analyze(m *mesh.Mesh, measure bool) (*Stats, error) {
	s := &Stats{
		Vertices:  m.NumVertices(),
		Normals:   m.NumNormals(),
		TexCoords: m.NumTexCoords(),
		Faces:     m.NumFaces(),
	}
	if !measure {
		return s, nil
	}

	var err error
	if s.SurfaceArea, err = m.SurfaceArea(); err != nil {
		return nil, err
	}
	if s.Volume, err = m.Volume(); err != nil {
		return nil, err
	}
	s.Bounds, s.HasBounds = m.Bounds()
	s.Measured = true

	logger.Debug("Mesh measured",
		zap.Float32("area", s.SurfaceArea),
		zap.Float32("volume", s.Volume))

	return s, nil
}
