// Package config loads Adaptrix's build and runtime tunables from a
// TOML file, with sensible defaults applied post-decode so a mostly
// empty config file is valid.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// PackingMode names a (depth,id) split of the SW rasterizer's u32
// atomicMin buffer. cmd/ladc records it in the LLAD file's packing
// byte; the WGSL shaders always pack 20:12 and do not read it. See
// spec open question (a).
type PackingMode uint8

const (
	Packing20_12 PackingMode = 0
	Packing16_16 PackingMode = 1
)

// Config holds every tunable named across the component design.
type Config struct {
	Build   BuildConfig   `toml:"build"`
	Runtime RuntimeConfig `toml:"runtime"`
}

type BuildConfig struct {
	MaxVerticesPerCluster  int     `toml:"max_vertices_per_cluster"`
	MaxTrianglesPerCluster int     `toml:"max_triangles_per_cluster"`
	GroupSizeMin           int     `toml:"group_size_min"`
	GroupSizeMax           int     `toml:"group_size_max"`
	WeldQuantization       float64 `toml:"weld_quantization"`
	BaseErrorThreshold     float64 `toml:"base_error_threshold"`
	MinReduction           float64 `toml:"min_reduction"`
	WorkerCount            int     `toml:"worker_count"`
	Packing                string  `toml:"packing"`
}

type RuntimeConfig struct {
	ThresholdPx     float32 `toml:"threshold_px"`
	SWThresholdPx   float32 `toml:"sw_threshold_px"`
	EnableHZB       bool    `toml:"enable_hzb"`
	VisibleCapacity uint32  `toml:"visible_capacity"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Build: BuildConfig{
			MaxVerticesPerCluster:  128,
			MaxTrianglesPerCluster: 256,
			GroupSizeMin:           2,
			GroupSizeMax:           4,
			WeldQuantization:       1e-5,
			BaseErrorThreshold:     0.01,
			MinReduction:           0.2,
			WorkerCount:            0, // 0 = runtime.GOMAXPROCS(0)
			Packing:                "20:12",
		},
		Runtime: RuntimeConfig{
			ThresholdPx:     1.5,
			SWThresholdPx:   16,
			EnableHZB:       false,
			VisibleCapacity: 1 << 20,
		},
	}
}

// Load decodes a TOML file at path, applying Default() for any field
// left at its zero value. A missing file is not an error: it yields
// Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Build.MaxVerticesPerCluster == 0 {
		cfg.Build.MaxVerticesPerCluster = def.Build.MaxVerticesPerCluster
	}
	if cfg.Build.MaxTrianglesPerCluster == 0 {
		cfg.Build.MaxTrianglesPerCluster = def.Build.MaxTrianglesPerCluster
	}
	if cfg.Build.GroupSizeMin == 0 {
		cfg.Build.GroupSizeMin = def.Build.GroupSizeMin
	}
	if cfg.Build.GroupSizeMax == 0 {
		cfg.Build.GroupSizeMax = def.Build.GroupSizeMax
	}
	if cfg.Build.WeldQuantization == 0 {
		cfg.Build.WeldQuantization = def.Build.WeldQuantization
	}
	if cfg.Build.BaseErrorThreshold == 0 {
		cfg.Build.BaseErrorThreshold = def.Build.BaseErrorThreshold
	}
	if cfg.Build.MinReduction == 0 {
		cfg.Build.MinReduction = def.Build.MinReduction
	}
	if cfg.Build.Packing == "" {
		cfg.Build.Packing = def.Build.Packing
	}
	if cfg.Runtime.ThresholdPx == 0 {
		cfg.Runtime.ThresholdPx = def.Runtime.ThresholdPx
	}
	if cfg.Runtime.SWThresholdPx == 0 {
		cfg.Runtime.SWThresholdPx = def.Runtime.SWThresholdPx
	}
	if cfg.Runtime.VisibleCapacity == 0 {
		cfg.Runtime.VisibleCapacity = def.Runtime.VisibleCapacity
	}
}

// PackingModeValue parses Build.Packing into a PackingMode, defaulting to
// Packing20_12 for an unrecognized value.
func (b BuildConfig) PackingModeValue() PackingMode {
	if b.Packing == "16:16" {
		return Packing16_16
	}
	return Packing20_12
}
