// Package thermo evaluates the bundle of properties stored at each node of a
// property table.
package thermo

import (
	"errors"
	"fmt"

	"github.com/notargets/proptable/eos"
)

// ErrUnknownProperty is returned by Point.Get for names outside the bundle
var ErrUnknownProperty = errors.New("unknown point property")

// Names lists the properties carried by a Point, in table order
var Names = []string{"H", "T", "P", "D", "U", "V", "A", "Q"}

// Point is the property bundle at one (density, temperature) state
type Point struct {
	D float64 // density [kg/m^3]
	T float64 // temperature [K]
	P float64 // pressure [Pa]
	H float64 // enthalpy [J/kg]
	V float64 // specific volume [m^3/kg]
	U float64 // internal energy [J/kg]
	Q float64 // vapor quality, 1 for single phase states
	A float64 // sound speed [m/s]
}

// Get returns a property by its short name
func (p Point) Get(name string) (float64, error) {
	switch name {
	case "D":
		return p.D, nil
	case "T":
		return p.T, nil
	case "P":
		return p.P, nil
	case "H":
		return p.H, nil
	case "V":
		return p.V, nil
	case "U":
		return p.U, nil
	case "Q":
		return p.Q, nil
	case "A":
		return p.A, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
}

// Evaluate queries svc for the property bundle of fluid at (D, T).
//
// A negative quality from the service marks a single phase state and is
// stored as 1. Sound speed is queried directly at Q == 1; otherwise it is
// the quality weighted blend of the saturated vapor and liquid sound speeds
// at the same temperature.
func Evaluate(svc eos.Service, D, T float64, fluid string) (Point, error) {
	p := Point{D: D, T: T}
	at := func(out eos.Param) (float64, error) {
		return svc.Query(out, eos.Density, D, eos.Temperature, T, fluid)
	}
	var err error
	for _, f := range []struct {
		out eos.Param
		dst *float64
	}{
		{eos.Pressure, &p.P},
		{eos.Enthalpy, &p.H},
		{eos.Volume, &p.V},
		{eos.InternalEnergy, &p.U},
		{eos.Quality, &p.Q},
	} {
		if *f.dst, err = at(f.out); err != nil {
			return Point{}, err
		}
	}

	if p.Q < 0 {
		p.Q = 1
	}
	if p.Q == 1 {
		if p.A, err = at(eos.SoundSpeed); err != nil {
			return Point{}, err
		}
		return p, nil
	}

	aV, err := svc.Query(eos.SoundSpeed, eos.Quality, 1, eos.Temperature, T, fluid)
	if err != nil {
		return Point{}, err
	}
	aL, err := svc.Query(eos.SoundSpeed, eos.Quality, 0, eos.Temperature, T, fluid)
	if err != nil {
		return Point{}, err
	}
	p.A = aV*p.Q + aL*(1-p.Q)
	return p, nil
}

// Evaluator binds a property service to one fluid
type Evaluator struct {
	Service eos.Service
	Fluid   string
}

// Evaluate returns the property bundle at (D, T)
func (e Evaluator) Evaluate(D, T float64) (Point, error) {
	return Evaluate(e.Service, D, T, e.Fluid)
}
