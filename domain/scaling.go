// Package domain holds the coordinate math of the property tables: the
// non-dimensional (Dstar, Tstar) unit square and the graded boundary curves
// of the saturation bounded domain.
package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDomain is returned for non-positive, non-finite or inverted bounds
var ErrInvalidDomain = errors.New("invalid table domain")

// Scaling maps physical density and temperature onto the unit square with
// density on a log10 axis.
type Scaling struct {
	TMin, TMax float64 // [K]
	DMin, DMax float64 // [kg/m^3]
}

// Validate checks that the bounds describe a non-empty domain
func (s Scaling) Validate() error {
	for _, v := range []float64{s.TMin, s.TMax, s.DMin, s.DMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: bounds must be positive and finite, got T=[%g, %g] D=[%g, %g]",
				ErrInvalidDomain, s.TMin, s.TMax, s.DMin, s.DMax)
		}
	}
	if s.TMax <= s.TMin {
		return fmt.Errorf("%w: TMax %g <= TMin %g", ErrInvalidDomain, s.TMax, s.TMin)
	}
	if s.DMax <= s.DMin {
		return fmt.Errorf("%w: DMax %g <= DMin %g", ErrInvalidDomain, s.DMax, s.DMin)
	}
	return nil
}

// ToStar returns the non-dimensional coordinates of (D, T)
func (s Scaling) ToStar(D, T float64) (Dstar, Tstar float64) {
	lo, hi := math.Log10(s.DMin), math.Log10(s.DMax)
	Dstar = (math.Log10(D) - lo) / (hi - lo)
	Tstar = (T - s.TMin) / (s.TMax - s.TMin)
	return
}

// FromStar returns the physical density and temperature at (Dstar, Tstar)
func (s Scaling) FromStar(Dstar, Tstar float64) (D, T float64) {
	lo, hi := math.Log10(s.DMin), math.Log10(s.DMax)
	D = math.Pow(10, Dstar*(hi-lo)+lo)
	T = Tstar*(s.TMax-s.TMin) + s.TMin
	return
}
