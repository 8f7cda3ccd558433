package eos

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/notargets/proptable/fluids"
)

const (
	sqrt2 = math.Sqrt2
	// Critical point constants of the Peng-Robinson equation. The cubic has a
	// triple root there, so truncating them moves the root by the cube root of
	// the error.
	omegaA = 0.45723552892138218938
	omegaB = 0.07779607390388845597
	zCrit  = 0.30740130869870386
)

// PengRobinson implements Service with the Peng-Robinson cubic equation of
// state and polynomial ideal-gas heat capacities. It is safe for concurrent
// use; saturation states are memoized per (fluid, T).
type PengRobinson struct {
	mu         sync.Mutex
	components map[string]*component
	satCache   *lru.Cache
}

// NewPengRobinson returns a service whose saturation cache holds up to
// cacheSize entries; cacheSize <= 0 selects a default of 4096.
func NewPengRobinson(cacheSize int) *PengRobinson {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	return &PengRobinson{
		components: make(map[string]*component),
		satCache:   lru.New(cacheSize),
	}
}

// Make sure the model fulfills the interface
var _ Service = &PengRobinson{}

// component carries the equation-of-state constants for one fluid
type component struct {
	*fluids.Fluid
	ac    float64 // attraction parameter at Tcrit [Pa m^6/mol^2]
	b     float64 // covolume [m^3/mol]
	kappa float64 // alpha-function slope
}

func newComponent(f *fluids.Fluid) *component {
	R := fluids.R
	return &component{
		Fluid: f,
		ac:    omegaA * R * R * f.Tcrit * f.Tcrit / f.Pcrit,
		b:     omegaB * R * f.Tcrit / f.Pcrit,
		kappa: 0.37464 + 1.54226*f.Omega - 0.26992*f.Omega*f.Omega,
	}
}

func (pr *PengRobinson) component(fluid string) (*component, error) {
	f, err := fluids.Lookup(fluid)
	if err != nil {
		return nil, err
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()
	c, ok := pr.components[f.Name]
	if !ok {
		c = newComponent(f)
		pr.components[f.Name] = c
	}
	return c, nil
}

// Critical returns the critical temperature and pressure of the fluid
func (pr *PengRobinson) Critical(fluid string) (Tcrit, Pcrit float64, err error) {
	c, err := pr.component(fluid)
	if err != nil {
		return 0, 0, err
	}
	return c.Tcrit, c.Pcrit, nil
}

// CriticalDensity returns the critical density implied by the equation of state
func (pr *PengRobinson) CriticalDensity(fluid string) (float64, error) {
	c, err := pr.component(fluid)
	if err != nil {
		return 0, err
	}
	return c.Pcrit * c.M / (zCrit * fluids.R * c.Tcrit), nil
}

// attraction returns a(T) and its first and second temperature derivatives
func (c *component) attraction(T float64) (a, da, d2a float64) {
	s := math.Sqrt(T / c.Tcrit)
	g := 1 + c.kappa*(1-s)
	rt := math.Sqrt(T * c.Tcrit)
	a = c.ac * g * g
	da = -c.ac * c.kappa * g / rt
	d2a = c.ac * c.kappa / (2 * T) * (c.kappa/c.Tcrit + g/rt)
	return
}

// pressure evaluates the equation of state at molar volume v
func (c *component) pressure(v, T float64) float64 {
	a, _, _ := c.attraction(T)
	return fluids.R*T/(v-c.b) - a/(v*v+2*c.b*v-c.b*c.b)
}

// state is a single-phase state point in molar units
type state struct {
	T, v   float64 // temperature [K], molar volume [m^3/mol]
	P      float64 // pressure [Pa]
	u, h   float64 // internal energy, enthalpy [J/mol]
	cv, cp float64 // heat capacities [J/(mol K)]
	dPdv   float64 // isothermal slope [Pa mol/m^3]
}

// single evaluates a single-phase state at (v, T)
func (c *component) single(v, T float64) state {
	R := fluids.R
	b := c.b
	a, da, d2a := c.attraction(T)
	den := v*v + 2*b*v - b*b
	L := math.Log((v + (1+sqrt2)*b) / (v + (1-sqrt2)*b))
	k := L / (2 * sqrt2 * b)

	st := state{T: T, v: v}
	st.P = R*T/(v-b) - a/den
	dPdT := R/(v-b) - da/den
	st.dPdv = -R*T/((v-b)*(v-b)) + a*(2*v+2*b)/(den*den)

	st.u = c.H0(T) - R*T + (T*da-a)*k
	st.h = st.u + st.P*v
	st.cv = c.Cp0(T) - R + T*d2a*k
	st.cp = st.cv - T*dPdT*dPdT/st.dPdv
	return st
}

// soundSpeed returns the speed of sound of a single-phase state in m/s
func (c *component) soundSpeed(st state) (float64, error) {
	w2 := -(st.v * st.v / c.M) * (st.cp / st.cv) * st.dPdv
	if !(w2 > 0) || st.cv <= 0 {
		return 0, fmt.Errorf("%w: mechanically unstable state T=%g v=%g", ErrOutOfRange, st.T, st.v)
	}
	return math.Sqrt(w2), nil
}

// lnPhi is the log fugacity coefficient at compressibility z
func lnPhi(z, A, B float64) float64 {
	return z - 1 - math.Log(z-B) -
		A/(2*sqrt2*B)*math.Log((z+(1+sqrt2)*B)/(z+(1-sqrt2)*B))
}

// compressibilities returns the physical roots (z > B) of the cubic at (T, P)
func (c *component) compressibilities(T, P float64) (zs []float64, A, B float64) {
	a, _, _ := c.attraction(T)
	RT := fluids.R * T
	A = a * P / (RT * RT)
	B = c.b * P / RT
	roots := cubicRoots(-(1 - B), A-3*B*B-2*B, -(A*B - B*B - B*B*B))
	zs = roots[:0]
	for _, z := range roots {
		if z > B {
			zs = append(zs, z)
		}
	}
	return
}

// stableVolume returns the molar volume of the phase with the lowest Gibbs
// energy at (T, P).
func (c *component) stableVolume(T, P float64) (float64, error) {
	zs, A, B := c.compressibilities(T, P)
	if len(zs) == 0 {
		return 0, fmt.Errorf("%w: no physical root at T=%g P=%g", ErrOutOfRange, T, P)
	}
	best := zs[0]
	for _, z := range zs[1:] {
		if lnPhi(z, A, B) < lnPhi(best, A, B) {
			best = z
		}
	}
	return best * fluids.R * T / P, nil
}
