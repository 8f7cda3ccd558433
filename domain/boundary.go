package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultSamples is the number of points on each boundary curve
const DefaultSamples = 100

// Sizes are the target element sizes, in star units, at the corners of the
// graded domain.
type Sizes struct {
	Crit     float64 // bottom-right corner, next to the critical point
	TminDmin float64 // bottom-left corner
	TmaxDmax float64 // top-right corner
	TmaxDmin float64 // top-left corner
}

// DefaultSizes grade from fine at the critical point to coarse at low density
var DefaultSizes = Sizes{Crit: 0.005, TminDmin: 0.05, TmaxDmax: 0.02, TmaxDmin: 0.08}

// Validate requires every size to be positive
func (s Sizes) Validate() error {
	if !(s.Crit > 0 && s.TminDmin > 0 && s.TmaxDmax > 0 && s.TmaxDmin > 0) {
		return fmt.Errorf("%w: mesh sizes must be positive, got %+v", ErrInvalidDomain, s)
	}
	return nil
}

// Sample is one boundary point with its target element size
type Sample struct {
	Dstar, Tstar float64
	Size         float64
}

// Vec returns the sample position
func (s Sample) Vec() r2.Vec { return r2.Vec{X: s.Dstar, Y: s.Tstar} }

// Curve is an ordered boundary polyline
type Curve struct {
	Name    string
	Samples []Sample
}

// Curves are the four sides of the saturation bounded domain
type Curves struct {
	Right  Curve // D = DMax, T from TMax down to the saturation curve
	Bottom Curve // saturated vapor from DMax down to DMin
	Left   Curve // D = DMin, T from TMin to TMax
	Top    Curve // T = TMax, D from DMin to DMax
}

// SaturationTemperature returns the temperature at which the saturated
// vapor density equals D.
type SaturationTemperature func(D float64) (float64, error)

// grading is a linear size ramp over the curve parameter s in [0, 1]
func grading(at0, at1 float64) (*interp.PiecewiseLinear, error) {
	pl := &interp.PiecewiseLinear{}
	if err := pl.Fit([]float64{0, 1}, []float64{at0, at1}); err != nil {
		return nil, err
	}
	return pl, nil
}

// Boundary samples the four graded curves with n points each. The bottom
// curve follows tsat from DMax to DMin; its temperature at DMax fixes the
// lower end of the right curve.
func Boundary(sc Scaling, sz Sizes, n int, tsat SaturationTemperature) (Curves, error) {
	var c Curves
	if err := sc.Validate(); err != nil {
		return c, err
	}
	if err := sz.Validate(); err != nil {
		return c, err
	}
	if n < 2 {
		return c, fmt.Errorf("%w: need at least 2 samples per curve, got %d", ErrInvalidDomain, n)
	}

	// bottom: size = Crit + (1 - Dstar)(TminDmin - Crit)
	bottomSize, err := grading(sz.Crit, sz.TminDmin)
	if err != nil {
		return c, err
	}
	ds := floats.Span(make([]float64, n), 1, 0)
	c.Bottom = Curve{Name: "bottom", Samples: make([]Sample, n)}
	for i, dstar := range ds {
		D, _ := sc.FromStar(dstar, 0)
		T, err := tsat(D)
		if err != nil {
			return c, fmt.Errorf("bottom curve at D=%g: %w", D, err)
		}
		_, tstar := sc.ToStar(D, T)
		c.Bottom.Samples[i] = Sample{Dstar: dstar, Tstar: tstar, Size: bottomSize.Predict(1 - dstar)}
	}
	tb := c.Bottom.Samples[0].Tstar
	if !(tb > 0 && tb < 1) {
		return c, fmt.Errorf("%w: saturation curve at DMax sits at Tstar=%g, outside (0, 1)",
			ErrInvalidDomain, tb)
	}
	// The saturated vapor density at TMin is DMin
	if last := &c.Bottom.Samples[n-1]; math.Abs(last.Tstar) < 1e-6 {
		last.Tstar = 0
	}

	// top: size = TmaxDmax + (1 - Dstar)(TmaxDmin - TmaxDmax)
	topSize, err := grading(sz.TmaxDmax, sz.TmaxDmin)
	if err != nil {
		return c, err
	}
	c.Top = Curve{Name: "top", Samples: make([]Sample, n)}
	for i, dstar := range floats.Span(make([]float64, n), 0, 1) {
		c.Top.Samples[i] = Sample{Dstar: dstar, Tstar: 1, Size: topSize.Predict(1 - dstar)}
	}

	// left: size = TmaxDmin + (1 - Tstar)(TminDmin - TmaxDmin)
	leftSize, err := grading(sz.TmaxDmin, sz.TminDmin)
	if err != nil {
		return c, err
	}
	c.Left = Curve{Name: "left", Samples: make([]Sample, n)}
	for i, tstar := range floats.Span(make([]float64, n), 0, 1) {
		c.Left.Samples[i] = Sample{Dstar: 0, Tstar: tstar, Size: leftSize.Predict(1 - tstar)}
	}

	// right: size runs from Crit at the saturation curve to TmaxDmax at TMax.
	// The grading variable Tstar - tb is normalized by 1 - tb so that the
	// size reaches TmaxDmax at TMax.
	rightSize, err := grading(sz.Crit, sz.TmaxDmax)
	if err != nil {
		return c, err
	}
	c.Right = Curve{Name: "right", Samples: make([]Sample, n)}
	for i, tstar := range floats.Span(make([]float64, n), 1, tb) {
		c.Right.Samples[i] = Sample{Dstar: 1, Tstar: tstar, Size: rightSize.Predict((tstar - tb) / (1 - tb))}
	}
	c.Right.Samples[n-1].Tstar = tb
	return c, nil
}

// Loop joins the curves right, bottom, left, top into one closed polygon.
// Corners shared by consecutive curves appear once and the last point does
// not repeat the first.
func Loop(c Curves) []Sample {
	const tol = 1e-9
	var loop []Sample
	for _, curve := range []Curve{c.Right, c.Bottom, c.Left, c.Top} {
		for _, s := range curve.Samples {
			if len(loop) > 0 && r2.Norm(r2.Sub(s.Vec(), loop[len(loop)-1].Vec())) < tol {
				continue
			}
			loop = append(loop, s)
		}
	}
	if len(loop) > 1 && r2.Norm(r2.Sub(loop[len(loop)-1].Vec(), loop[0].Vec())) < tol {
		loop = loop[:len(loop)-1]
	}
	return loop
}
