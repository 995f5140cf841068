package adaptrixerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := New(Truncated, "llad.Read", errors.New("short file"))
	require.True(t, errors.Is(err, Sentinel(Truncated)))
	require.False(t, errors.Is(err, Sentinel(BadMagic)))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New(Oversize, "adjacency.Build", cause)
	require.ErrorIs(t, err, cause)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "non-manifold", NonManifold.String())
	require.Equal(t, "device lost", DeviceLost.String())
}
