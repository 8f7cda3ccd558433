// Package fluids holds the pure-component constants used by the equation of
// state: critical point, acentric factor, molar mass and an ideal-gas heat
// capacity polynomial.
package fluids

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// R is the universal gas constant in J/(mol K)
const R = 8.314462618

// TRef is the reference temperature at which the ideal-gas enthalpy is zero
const TRef = 298.15

// ErrUnknownFluid is returned when a fluid name is not in the database
var ErrUnknownFluid = errors.New("unknown fluid")

// Fluid describes one pure component
type Fluid struct {
	Name    string   // Canonical name
	Aliases []string // Alternative names accepted by Lookup

	M     float64 // Molar mass [kg/mol]
	Tcrit float64 // Critical temperature [K]
	Pcrit float64 // Critical pressure [Pa]
	Omega float64 // Acentric factor [-]

	// CpPoly holds A, B, C, D of cp0(T) = A + B*T + C*T^2 + D*T^3 in J/(mol K)
	CpPoly [4]float64
}

// Cp0 returns the ideal-gas isobaric molar heat capacity at T in J/(mol K)
func (f *Fluid) Cp0(T float64) float64 {
	c := f.CpPoly
	return c[0] + T*(c[1]+T*(c[2]+T*c[3]))
}

// H0 returns the molar ideal-gas enthalpy relative to TRef in J/mol
func (f *Fluid) H0(T float64) float64 {
	return f.cpIntegral(T) - f.cpIntegral(TRef)
}

func (f *Fluid) cpIntegral(T float64) float64 {
	c := f.CpPoly
	return T * (c[0] + T*(c[1]/2+T*(c[2]/3+T*c[3]/4)))
}

// SpecificGasConstant returns R/M in J/(kg K)
func (f *Fluid) SpecificGasConstant() float64 {
	return R / f.M
}

var database = []*Fluid{
	{
		Name:    "Toluene",
		Aliases: []string{"methylbenzene", "C7H8"},
		M:       0.09213842,
		Tcrit:   591.75,
		Pcrit:   4.1263e6,
		Omega:   0.2657,
		CpPoly:  [4]float64{-24.35, 5.125e-1, -2.765e-4, 4.911e-8},
	},
	{
		Name:    "n-Pentane",
		Aliases: []string{"nPentane", "Pentane", "R601"},
		M:       0.07214878,
		Tcrit:   469.7,
		Pcrit:   3.370e6,
		Omega:   0.251,
		CpPoly:  [4]float64{-3.626, 4.873e-1, -2.580e-4, 5.305e-8},
	},
	{
		Name:    "Cyclopentane",
		Aliases: []string{"CycloPentane", "C5H10"},
		M:       0.0701329,
		Tcrit:   511.72,
		Pcrit:   4.5712e6,
		Omega:   0.201,
		CpPoly:  [4]float64{-53.62, 5.426e-1, -3.031e-4, 6.485e-8},
	},
	{
		Name:    "Water",
		Aliases: []string{"H2O", "R718"},
		M:       0.018015268,
		Tcrit:   647.096,
		Pcrit:   2.2064e7,
		Omega:   0.3443,
		CpPoly:  [4]float64{32.24, 1.924e-3, 1.055e-5, -3.596e-9},
	},
	{
		Name:    "CarbonDioxide",
		Aliases: []string{"CO2", "R744"},
		M:       0.0440098,
		Tcrit:   304.1282,
		Pcrit:   7.3773e6,
		Omega:   0.22394,
		CpPoly:  [4]float64{19.80, 7.344e-2, -5.602e-5, 1.715e-8},
	},
	{
		Name:    "Nitrogen",
		Aliases: []string{"N2", "R728"},
		M:       0.02801348,
		Tcrit:   126.192,
		Pcrit:   3.3958e6,
		Omega:   0.0372,
		CpPoly:  [4]float64{31.15, -1.357e-2, 2.680e-5, -1.168e-8},
	},
}

var index = buildIndex()

func buildIndex() map[string]*Fluid {
	idx := make(map[string]*Fluid)
	for _, f := range database {
		idx[strings.ToLower(f.Name)] = f
		for _, a := range f.Aliases {
			idx[strings.ToLower(a)] = f
		}
	}
	return idx
}

// Lookup finds a fluid by name or alias, ignoring case
func Lookup(name string) (*Fluid, error) {
	f, ok := index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFluid, name)
	}
	return f, nil
}

// Names returns the canonical fluid names in sorted order
func Names() []string {
	names := make([]string, len(database))
	for i, f := range database {
		names[i] = f.Name
	}
	sort.Strings(names)
	return names
}
