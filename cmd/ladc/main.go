// Command ladc is the Preprocessor CLI: it reads an input triangle
// mesh, drives the Adjacency/Partition/Simplify/Hierarchy pipeline,
// and writes the result as a .lad file. Grounded on
// original_source/lume-processor's entry-point shape and
// lume-adaptrix/src/processor.rs::process_mesh's stage ordering, with
// flag handling in the style of voxelrt/rt_main.go.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gekko3d/gekko/internal/config"
	"github.com/gekko3d/gekko/internal/hierarchy"
	"github.com/gekko3d/gekko/internal/llad"
	"github.com/gekko3d/gekko/internal/logging"
	"github.com/gekko3d/gekko/internal/meshio"
)

func main() {
	input := flag.String("in", "", "input OBJ mesh path")
	output := flag.String("out", "", "output .lad asset path")
	configPath := flag.String("config", "", "build config TOML path (optional)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := logging.New("ladc")
	log.SetDebug(*debug)

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: ladc -in mesh.obj -out asset.lad [-config build.toml]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Errorf("load config: %v", err)
		os.Exit(1)
	}

	if err := run(*input, *output, cfg, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string, cfg config.Config, log logging.Logger) error {
	start := time.Now()

	log.Infof("loading mesh %s", inputPath)
	mesh, err := meshio.LoadOBJ(inputPath)
	if err != nil {
		return fmt.Errorf("load mesh: %w", err)
	}
	log.Infof("loaded %d vertices, %d triangles", len(mesh.Positions), len(mesh.Indices)/3)

	params := hierarchy.Params{
		MaxVerticesPerCluster:  cfg.Build.MaxVerticesPerCluster,
		MaxTrianglesPerCluster: cfg.Build.MaxTrianglesPerCluster,
		GroupSizeMin:           cfg.Build.GroupSizeMin,
		GroupSizeMax:           cfg.Build.GroupSizeMax,
		WeldQuantization:       cfg.Build.WeldQuantization,
		BaseErrorThreshold:     cfg.Build.BaseErrorThreshold,
		MinReduction:           cfg.Build.MinReduction,
		WorkerCount:            cfg.Build.WorkerCount,
	}

	log.Infof("building cluster hierarchy")
	dag, err := hierarchy.Build(mesh.Indices, mesh.Positions, mesh.Normals, mesh.UVs, params)
	if err != nil {
		return fmt.Errorf("build hierarchy: %w", err)
	}
	log.Infof("built %d clusters", len(dag.Clusters))

	packing := byte(cfg.Build.PackingModeValue())
	if err := llad.Write(outputPath, dag, packing); err != nil {
		return fmt.Errorf("write asset: %w", err)
	}

	log.Infof("wrote %s in %s", outputPath, time.Since(start).Round(time.Millisecond))
	return nil
}
