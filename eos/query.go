package eos

import (
	"fmt"
	"math"

	"github.com/notargets/proptable/fluids"
)

// Query returns property out at the state fixed by the two inputs. Supported
// input pairs, in either order: (D, T), (Q, T), (T, P) and (D, Q) with Q of 0
// or 1.
func (pr *PengRobinson) Query(out Param, in1 Param, v1 float64, in2 Param, v2 float64,
	fluid string) (float64, error) {
	c, err := pr.component(fluid)
	if err != nil {
		return 0, err
	}
	if in1 > in2 {
		in1, in2 = in2, in1
		v1, v2 = v2, v1
	}
	var val float64
	switch {
	case in1 == Density && in2 == Temperature:
		val, err = pr.fromDT(c, out, v1, v2)
	case in1 == Temperature && in2 == Quality:
		val, err = pr.fromQT(c, out, v2, v1)
	case in1 == Temperature && in2 == Pressure:
		val, err = pr.fromTP(c, out, v1, v2)
	case in1 == Density && in2 == Quality:
		var T float64
		if T, err = pr.saturationTemperature(c, v1, v2); err == nil {
			val, err = pr.fromQT(c, out, v2, T)
		}
	default:
		return 0, fmt.Errorf("%w: (%s, %s)", ErrUnsupportedInputs, in1, in2)
	}
	if err != nil {
		return 0, fmt.Errorf("%s(%s=%g, %s=%g) for %s: %w", out, in1, v1, in2, v2, c.Name, err)
	}
	return val, nil
}

func (pr *PengRobinson) fromDT(c *component, out Param, D, T float64) (float64, error) {
	if !(D > 0) || !(T > 0) {
		return 0, fmt.Errorf("%w: D=%g T=%g", ErrOutOfRange, D, T)
	}
	v := c.M / D
	if v <= c.b {
		return 0, fmt.Errorf("%w: density %g beyond covolume limit %g", ErrOutOfRange, D, c.M/c.b)
	}
	if T < c.Tcrit {
		sat, err := pr.saturation(c, T)
		if err != nil {
			return 0, err
		}
		if v > sat.vL && v < sat.vV {
			Q := (v - sat.vL) / (sat.vV - sat.vL)
			return c.mixture(out, sat, Q)
		}
	}
	return c.singleProperty(out, c.single(v, T), -1)
}

func (pr *PengRobinson) fromQT(c *component, out Param, Q, T float64) (float64, error) {
	if !(Q >= 0 && Q <= 1) {
		return 0, fmt.Errorf("%w: quality %g", ErrOutOfRange, Q)
	}
	sat, err := pr.saturation(c, T)
	if err != nil {
		return 0, err
	}
	return c.mixture(out, sat, Q)
}

func (pr *PengRobinson) fromTP(c *component, out Param, T, P float64) (float64, error) {
	if !(T > 0) || !(P > 0) {
		return 0, fmt.Errorf("%w: T=%g P=%g", ErrOutOfRange, T, P)
	}
	// The critical point takes the triple root directly
	if math.Abs(T/c.Tcrit-1) < 1e-9 && math.Abs(P/c.Pcrit-1) < 1e-9 {
		return c.singleProperty(out, c.single(zCrit*fluids.R*c.Tcrit/c.Pcrit, T), -1)
	}
	v, err := c.stableVolume(T, P)
	if err != nil {
		return 0, err
	}
	return c.singleProperty(out, c.single(v, T), -1)
}

// mixture evaluates out on the saturation boundary at vapor fraction Q
func (c *component) mixture(out Param, sat saturation, Q float64) (float64, error) {
	switch out {
	case SoundSpeed, Cp, Cv:
		switch Q {
		case 0:
			return c.singleProperty(out, c.single(sat.vL, sat.T), 0)
		case 1:
			return c.singleProperty(out, c.single(sat.vV, sat.T), 1)
		}
		return 0, fmt.Errorf("%w: %s at Q=%g", ErrTwoPhase, out, Q)
	case Enthalpy, InternalEnergy:
		liq, err := c.singleProperty(out, c.single(sat.vL, sat.T), 0)
		if err != nil {
			return 0, err
		}
		vap, err := c.singleProperty(out, c.single(sat.vV, sat.T), 1)
		if err != nil {
			return 0, err
		}
		return liq + Q*(vap-liq), nil
	}
	v := sat.vL + Q*(sat.vV-sat.vL)
	switch out {
	case Density:
		return c.M / v, nil
	case Temperature:
		return sat.T, nil
	case Pressure:
		return sat.P, nil
	case Volume:
		return v / c.M, nil
	case Quality:
		return Q, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownParam, out)
}

// singleProperty converts a molar state to the requested mass-based property
func (c *component) singleProperty(out Param, st state, Q float64) (float64, error) {
	switch out {
	case Density:
		return c.M / st.v, nil
	case Temperature:
		return st.T, nil
	case Pressure:
		return st.P, nil
	case Enthalpy:
		return st.h / c.M, nil
	case InternalEnergy:
		return st.u / c.M, nil
	case Volume:
		return st.v / c.M, nil
	case Quality:
		return Q, nil
	case SoundSpeed:
		return c.soundSpeed(st)
	case Cp:
		return st.cp / c.M, nil
	case Cv:
		return st.cv / c.M, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownParam, out)
}
