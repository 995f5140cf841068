package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gekko3d/gekko/internal/config"
	"github.com/gekko3d/gekko/internal/llad"
	"github.com/gekko3d/gekko/internal/logging"
)

const tetrahedronOBJ = `
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
f 1 2 3
f 1 2 4
f 1 3 4
f 2 3 4
`

func TestRunProducesOpenableAsset(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "mesh.obj")
	require.NoError(t, os.WriteFile(inPath, []byte(tetrahedronOBJ), 0o644))

	outPath := filepath.Join(dir, "out.lad")
	log := logging.New("ladc-test")
	require.NoError(t, run(inPath, outPath, config.Default(), log))

	r, err := llad.Open(outPath)
	require.NoError(t, err)
	defer r.Close()
	require.NotEmpty(t, r.Asset.Clusters)
}

func TestRunRejectsMissingInput(t *testing.T) {
	dir := t.TempDir()
	log := logging.New("ladc-test")
	err := run(filepath.Join(dir, "missing.obj"), filepath.Join(dir, "out.lad"), config.Default(), log)
	require.Error(t, err)
}
