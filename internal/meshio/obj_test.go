package meshio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const triangleOBJ = `
# comment
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`

func TestParseOBJTriangle(t *testing.T) {
	mesh, err := parseOBJ(strings.NewReader(triangleOBJ))
	require.NoError(t, err)
	require.Len(t, mesh.Positions, 3)
	require.Len(t, mesh.Indices, 3)
	require.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

const quadOBJ = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestParseOBJQuadFanTriangulation(t *testing.T) {
	mesh, err := parseOBJ(strings.NewReader(quadOBJ))
	require.NoError(t, err)
	require.Len(t, mesh.Positions, 4)
	require.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
}

func TestParseOBJRejectsEmptyFile(t *testing.T) {
	_, err := parseOBJ(strings.NewReader("# just a comment\n"))
	require.Error(t, err)
}

func TestParseOBJSharedVertexDifferentNormalsSplits(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vn 0 1 0
f 1//1 2//1 3//1
f 1//2 2//1 3//1
`
	mesh, err := parseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	// Vertex 1 used with two different normals must split into two
	// distinct entries in the flat index space.
	require.Len(t, mesh.Positions, 4)
	require.Len(t, mesh.Indices, 6)
}
