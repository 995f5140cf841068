package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adaptrix.toml")
	require.NoError(t, os.WriteFile(path, []byte("[runtime]\nthreshold_px = 3.0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, float32(3.0), cfg.Runtime.ThresholdPx)
	require.Equal(t, 128, cfg.Build.MaxVerticesPerCluster)
}

func TestPackingModeValue(t *testing.T) {
	b := BuildConfig{Packing: "16:16"}
	require.Equal(t, Packing16_16, b.PackingModeValue())

	b.Packing = "20:12"
	require.Equal(t, Packing20_12, b.PackingModeValue())
}
