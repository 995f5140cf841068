package asset

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestViewUniformByteSize(t *testing.T) {
	u := NewViewUniform(mgl32.Ident4(), mgl32.Vec3{1, 2, 3}, 1.5, 800, 600, 519.6, 16)
	require.Len(t, u.ToBytes(), ViewUniformSize)
}

func TestScreenFactorFromFOV(t *testing.T) {
	f := ScreenFactorFromFOV(mgl32.DegToRad(60), 600)
	require.InDelta(t, 519.6, f, 1.0)
}
