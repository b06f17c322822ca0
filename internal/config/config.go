// Package config handles converter configuration loading and management.
package config

import (
	"fmt"

	"github.com/Taironn/3DFileConverter/pkg/formats"
)

// Config holds all converter settings.
type Config struct {
	OBJ     OBJConfig     `yaml:"obj"`
	STL     STLConfig     `yaml:"stl"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

// OBJConfig holds OBJ loading settings.
type OBJConfig struct {
	CheckIndexValidity bool `yaml:"check_index_validity"`
	FixNegativeIndexes bool `yaml:"fix_negative_indexes"` // only used without index checking
	Triangulate        bool `yaml:"triangulate"`
	NormalizeNormals   bool `yaml:"normalize_normals"`
}

// STLConfig holds STL output settings.
type STLConfig struct {
	Header  string `yaml:"header"`
	Normals string `yaml:"normals"` // computed, zero or averaged
}

// ReportConfig controls what is reported after a conversion.
type ReportConfig struct {
	Stats bool `yaml:"stats"` // surface area, volume and bounds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		OBJ: OBJConfig{
			CheckIndexValidity: true,
			FixNegativeIndexes: false,
			Triangulate:        false,
			NormalizeNormals:   false,
		},
		STL: STLConfig{
			Header:  formats.DefaultSTLHeader,
			Normals: formats.NormalsComputed.String(),
		},
		Report: ReportConfig{
			Stats: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that YAML cannot type-check.
func (c *Config) Validate() error {
	if _, err := formats.ParseNormalMode(c.STL.Normals); err != nil {
		return fmt.Errorf("stl.normals: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}

// OBJOptions returns the loader options for this configuration.
func (c *Config) OBJOptions() formats.OBJOptions {
	return formats.OBJOptions{
		CheckIndexValidity: c.OBJ.CheckIndexValidity,
		FixNegativeIndexes: c.OBJ.FixNegativeIndexes,
		Triangulate:        c.OBJ.Triangulate,
	}
}

// STLOptions returns the writer options for this configuration.
func (c *Config) STLOptions() (formats.STLOptions, error) {
	mode, err := formats.ParseNormalMode(c.STL.Normals)
	if err != nil {
		return formats.STLOptions{}, err
	}
	return formats.STLOptions{Header: c.STL.Header, Normals: mode}, nil
}
