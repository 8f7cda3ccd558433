package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearSaturation puts the saturation curve on Tstar = tb*Dstar
func linearSaturation(sc Scaling, tb float64) SaturationTemperature {
	return func(D float64) (float64, error) {
		Dstar, _ := sc.ToStar(D, sc.TMin)
		_, T := sc.FromStar(Dstar, tb*Dstar)
		return T, nil
	}
}

func TestBoundaryGrading(t *testing.T) {
	sc := Scaling{TMin: 400, TMax: 650, DMin: 0.05, DMax: 200}
	sz := Sizes{Crit: 0.01, TminDmin: 0.1, TmaxDmax: 0.04, TmaxDmin: 0.2}
	n := 20
	c, err := Boundary(sc, sz, n, linearSaturation(sc, 0.6))
	require.NoError(t, err)

	for _, curve := range []Curve{c.Right, c.Bottom, c.Left, c.Top} {
		require.Len(t, curve.Samples, n, curve.Name)
	}
	first := func(c Curve) Sample { return c.Samples[0] }
	last := func(c Curve) Sample { return c.Samples[len(c.Samples)-1] }

	t.Run("Bottom", func(t *testing.T) {
		assert.Equal(t, 1.0, first(c.Bottom).Dstar)
		assert.InDelta(t, sz.Crit, first(c.Bottom).Size, 1e-15)
		assert.InDelta(t, 0.6, first(c.Bottom).Tstar, 1e-12)
		assert.Equal(t, 0.0, last(c.Bottom).Dstar)
		assert.Equal(t, 0.0, last(c.Bottom).Tstar)
		assert.InDelta(t, sz.TminDmin, last(c.Bottom).Size, 1e-15)
		mid := c.Bottom.Samples[n/2]
		assert.InDelta(t, sz.Crit+(1-mid.Dstar)*(sz.TminDmin-sz.Crit), mid.Size, 1e-14)
	})
	t.Run("Top", func(t *testing.T) {
		assert.InDelta(t, sz.TmaxDmin, first(c.Top).Size, 1e-15)
		assert.InDelta(t, sz.TmaxDmax, last(c.Top).Size, 1e-15)
		for _, s := range c.Top.Samples {
			assert.Equal(t, 1.0, s.Tstar)
		}
	})
	t.Run("Left", func(t *testing.T) {
		assert.InDelta(t, sz.TminDmin, first(c.Left).Size, 1e-15)
		assert.InDelta(t, sz.TmaxDmin, last(c.Left).Size, 1e-15)
		for _, s := range c.Left.Samples {
			assert.Equal(t, 0.0, s.Dstar)
		}
	})
	t.Run("Right", func(t *testing.T) {
		assert.Equal(t, 1.0, first(c.Right).Tstar)
		assert.InDelta(t, sz.TmaxDmax, first(c.Right).Size, 1e-15)
		assert.Equal(t, first(c.Bottom).Tstar, last(c.Right).Tstar)
		assert.InDelta(t, sz.Crit, last(c.Right).Size, 1e-15)
		// Linear in the normalized height above the saturation curve
		tb := last(c.Right).Tstar
		for _, s := range c.Right.Samples {
			want := sz.Crit + (s.Tstar-tb)/(1-tb)*(sz.TmaxDmax-sz.Crit)
			assert.InDelta(t, want, s.Size, 1e-14)
		}
	})
}

func TestLoop(t *testing.T) {
	sc := Scaling{TMin: 400, TMax: 650, DMin: 0.05, DMax: 200}
	n := 10
	c, err := Boundary(sc, DefaultSizes, n, linearSaturation(sc, 0.5))
	require.NoError(t, err)

	loop := Loop(c)
	// Four shared corners removed
	require.Len(t, loop, 4*n-4)
	assert.Equal(t, Sample{Dstar: 1, Tstar: 1, Size: DefaultSizes.TmaxDmax}, loop[0])
	for i := range loop {
		next := loop[(i+1)%len(loop)]
		if loop[i].Dstar == next.Dstar && loop[i].Tstar == next.Tstar {
			t.Errorf("Duplicate point %d at (%g, %g)", i, next.Dstar, next.Tstar)
		}
	}
	// Corner sizes agree between the curves that share them
	corners := map[[2]float64]float64{
		{0, 0}: DefaultSizes.TminDmin,
		{0, 1}: DefaultSizes.TmaxDmin,
		{1, 1}: DefaultSizes.TmaxDmax,
	}
	for _, s := range loop {
		if size, ok := corners[[2]float64{s.Dstar, s.Tstar}]; ok {
			assert.InDelta(t, size, s.Size, 1e-15)
			delete(corners, [2]float64{s.Dstar, s.Tstar})
		}
	}
	assert.Empty(t, corners)
}

func TestBoundaryErrors(t *testing.T) {
	sc := Scaling{TMin: 400, TMax: 650, DMin: 0.05, DMax: 200}
	boom := errors.New("boom")
	_, err := Boundary(sc, DefaultSizes, 10, func(float64) (float64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	_, err = Boundary(sc, Sizes{}, 10, linearSaturation(sc, 0.5))
	assert.ErrorIs(t, err, ErrInvalidDomain)

	_, err = Boundary(sc, DefaultSizes, 1, linearSaturation(sc, 0.5))
	assert.ErrorIs(t, err, ErrInvalidDomain)

	// Saturation curve above TMax at DMax
	_, err = Boundary(sc, DefaultSizes, 10, linearSaturation(sc, 1.2))
	assert.ErrorIs(t, err, ErrInvalidDomain)
}
