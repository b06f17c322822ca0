// meshconv converts Wavefront OBJ meshes to binary STL.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Taironn/3DFileConverter/internal/config"
	"github.com/Taironn/3DFileConverter/internal/convert"
	"github.com/Taironn/3DFileConverter/internal/logger"
)

func main() {
	config.ParseFlags()
	args := config.Args()

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := initLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	command := args[0]
	args = args[1:]

	var cmdErr error
	switch command {
	case "convert", "c":
		cmdErr = cmdConvert(cfg, args)
	case "info", "i":
		cmdErr = cmdInfo(args)
	case "stats":
		cmdErr = cmdStats(cfg, args)
	case "config":
		cmdErr = cmdConfig(cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if cmdErr != nil {
		logger.Debug("command failed", zap.String("command", command), zap.Error(cmdErr))
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		logger.Sync()
		os.Exit(1)
	}
}

func initLogger(cfg *config.Config) error {
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	return logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true)
}

func printUsage() {
	fmt.Println(`meshconv - OBJ to binary STL converter

Usage:
  meshconv [options] <command> [arguments]

Commands:
  convert <in.obj> <out.stl>   Convert an OBJ mesh to binary STL
  info <file.stl>              Show STL header, triangle count and geometry
  stats <in.obj>               Show OBJ record counts, area, volume and bounds
  config [path]                Print the effective configuration, or save it to path

Options:
  -config <file>      YAML config file
  -debug              Enable debug logging
  -log-file <file>    Also log to a rotating file
  -no-check           Skip face index validation while loading
  -fix-negative       Resolve negative indices after loading (with -no-check)
  -triangulate        Fan-triangulate polygon faces
  -normalize          Normalize vertex normals before writing
  -normals <mode>     Facet normals: computed, zero or averaged
  -header <text>      STL header text
  -stats              Report surface area, volume and bounds after converting

Examples:
  meshconv convert model.obj model.stl
  meshconv -triangulate -normals averaged convert model.obj model.stl
  meshconv info model.stl`)
}

func cmdConvert(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: meshconv convert <in.obj> <out.stl>")
	}

	res, err := convert.Run(cfg, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s: %d triangles, %d bytes\n", res.Output, res.Stats.Faces, res.Bytes)
	if res.Stats.Measured {
		printStats(res.Stats)
	}
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshconv info <file.stl>")
	}

	sum, err := convert.Inspect(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("File:      %s\n", sum.Path)
	fmt.Printf("Header:    %q\n", sum.Header)
	fmt.Printf("Triangles: %d\n", sum.Triangles)
	printStats(sum.Stats)
	return nil
}

func cmdStats(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshconv stats <in.obj>")
	}

	stats, err := convert.Measure(cfg, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Vertices:  %d\n", stats.Vertices)
	fmt.Printf("Normals:   %d\n", stats.Normals)
	fmt.Printf("TexCoords: %d\n", stats.TexCoords)
	fmt.Printf("Faces:     %d\n", stats.Faces)
	printStats(*stats)
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Saved config to %s\n", args[0])
		return nil
	}
	return cfg.WriteYAML(os.Stdout)
}

func printStats(s convert.Stats) {
	fmt.Printf("Area:      %.4f\n", s.SurfaceArea)
	fmt.Printf("Volume:    %.4f\n", s.Volume)
	if s.HasBounds {
		size := s.Bounds.Size()
		fmt.Printf("Bounds:    (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
			s.Bounds.Min[0], s.Bounds.Min[1], s.Bounds.Min[2],
			s.Bounds.Max[0], s.Bounds.Max[1], s.Bounds.Max[2])
		fmt.Printf("Size:      %.3f x %.3f x %.3f\n", size[0], size[1], size[2])
	}
}
