package eos

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubicRoots(t *testing.T) {
	t.Run("ThreeDistinct", func(t *testing.T) {
		// (z-1)(z-2)(z-3)
		roots := cubicRoots(-6, 11, -6)
		require.Len(t, roots, 3)
		assert.InDeltaSlicef(t, []float64{1, 2, 3}, roots, 1e-12, "")
	})
	t.Run("SingleReal", func(t *testing.T) {
		roots := cubicRoots(0, 1, 1)
		require.Len(t, roots, 1)
		z := roots[0]
		assert.InDelta(t, 0.0, z*z*z+z+1, 1e-12)
	})
	t.Run("TripleRoot", func(t *testing.T) {
		// (z-0.3)^3
		roots := cubicRoots(-0.9, 0.27, -0.027)
		require.NotEmpty(t, roots)
		for _, z := range roots {
			assert.InDelta(t, 0.3, z, 1e-4)
		}
	})
}

func TestBrent(t *testing.T) {
	f := func(x float64) (float64, error) { return x*x - 2, nil }
	x, err := brent(f, 0, 2, 1e-12, 100)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, x, 1e-10)

	_, err = brent(f, 2, 3, 1e-12, 100)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for an unbracketed root, got %v", err)
	}

	boom := errors.New("boom")
	_, err = brent(func(float64) (float64, error) { return 0, boom }, 0, 1, 1e-12, 100)
	assert.ErrorIs(t, err, boom)
}
