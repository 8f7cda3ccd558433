package eos

import (
	"fmt"
	"math"

	"github.com/notargets/proptable/fluids"
)

const (
	satMaxIter = 200
	satTol     = 1e-11
)

// saturation holds the coexisting phases at one temperature
type saturation struct {
	T      float64
	P      float64 // vapor pressure [Pa]
	vL, vV float64 // liquid and vapor molar volumes [m^3/mol]
}

type satKey struct {
	fluid string
	T     float64
}

// saturation returns the memoized coexistence state at T < Tcrit
func (pr *PengRobinson) saturation(c *component, T float64) (saturation, error) {
	key := satKey{fluid: c.Name, T: T}
	pr.mu.Lock()
	if v, ok := pr.satCache.Get(key); ok {
		pr.mu.Unlock()
		return v.(saturation), nil
	}
	pr.mu.Unlock()

	sat, err := c.solveSaturation(T)
	if err != nil {
		return saturation{}, err
	}

	pr.mu.Lock()
	pr.satCache.Add(key, sat)
	pr.mu.Unlock()
	return sat, nil
}

// solveSaturation equates liquid and vapor fugacities with a Newton
// iteration on ln P, safeguarded by a pressure bracket. Pressures where the
// cubic has a single liquid-like root are above the vapor pressure and
// those with a single vapor-like root are below it.
func (c *component) solveSaturation(T float64) (saturation, error) {
	if !(T > 0) || T >= c.Tcrit {
		return saturation{}, fmt.Errorf("%w: saturation requested at T=%g, Tcrit=%g",
			ErrOutOfRange, T, c.Tcrit)
	}
	R := fluids.R
	vc := zCrit * R * c.Tcrit / c.Pcrit

	// Wilson correlation as the starting pressure
	P := c.Pcrit * math.Exp(5.373*(1+c.Omega)*(1-c.Tcrit/T))
	lo, hi := 0.0, math.Inf(1)

	next := func(P float64) float64 {
		switch {
		case math.IsInf(hi, 1):
			return P * 1.2
		case lo == 0:
			return P / 1.2
		default:
			return math.Sqrt(lo * hi)
		}
	}

	for iter := 0; iter < satMaxIter; iter++ {
		zs, A, B := c.compressibilities(T, P)
		if len(zs) == 0 {
			return saturation{}, fmt.Errorf("%w: no physical root at T=%g P=%g", ErrOutOfRange, T, P)
		}
		zL, zV := zs[0], zs[len(zs)-1]
		if len(zs) < 3 || zV-zL < 1e-12 {
			if zL*R*T/P < vc {
				hi = P
			} else {
				lo = P
			}
			P = next(P)
			continue
		}

		f := lnPhi(zL, A, B) - lnPhi(zV, A, B)
		if math.Abs(f) < satTol || (hi-lo) < 1e-13*P {
			return saturation{T: T, P: P, vL: zL * R * T / P, vV: zV * R * T / P}, nil
		}
		if f > 0 {
			lo = P
		} else {
			hi = P
		}
		Pn := math.Exp(math.Log(P) - f/(zL-zV))
		if !(Pn > lo && Pn < hi) {
			Pn = next(P)
		}
		P = Pn
	}
	return saturation{}, fmt.Errorf("%w: saturation at T=%g for %s", ErrNoConvergence, T, c.Name)
}

// saturationTemperature finds the temperature whose saturated liquid (Q=0)
// or vapor (Q=1) density equals D.
func (pr *PengRobinson) saturationTemperature(c *component, D, Q float64) (float64, error) {
	if Q != 0 && Q != 1 {
		return 0, fmt.Errorf("%w: (D, Q) needs Q=0 or Q=1, got %g", ErrUnsupportedInputs, Q)
	}
	if !(D > 0) {
		return 0, fmt.Errorf("%w: density %g", ErrOutOfRange, D)
	}
	f := func(T float64) (float64, error) {
		sat, err := pr.saturation(c, T)
		if err != nil {
			return 0, err
		}
		v := sat.vV
		if Q == 0 {
			v = sat.vL
		}
		return math.Log(c.M / v / D), nil
	}
	return brent(f, 0.4*c.Tcrit, c.Tcrit*(1-1e-4), 1e-10*c.Tcrit, 200)
}
