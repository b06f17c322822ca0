package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file")
	flagNoCheck     = flag.Bool("no-check", false, "Skip face index validation while loading")
	flagFixNegative = flag.Bool("fix-negative", false, "Resolve negative indices after loading (with -no-check)")
	flagTriangulate = flag.Bool("triangulate", false, "Fan-triangulate polygon faces")
	flagNormalize   = flag.Bool("normalize", false, "Normalize vertex normals before writing")
	flagNormals     = flag.String("normals", "", "Facet normals: computed, zero or averaged")
	flagHeader      = flag.String("header", "", "STL header text")
	flagStats       = flag.Bool("stats", false, "Report surface area, volume and bounds")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagNoCheck {
		cfg.OBJ.CheckIndexValidity = false
	}
	if *flagFixNegative {
		cfg.OBJ.FixNegativeIndexes = true
	}
	if *flagTriangulate {
		cfg.OBJ.Triangulate = true
	}
	if *flagNormalize {
		cfg.OBJ.NormalizeNormals = true
	}
	if *flagNormals != "" {
		cfg.STL.Normals = *flagNormals
	}
	if *flagHeader != "" {
		cfg.STL.Header = *flagHeader
	}
	if *flagStats {
		cfg.Report.Stats = true
	}
}
