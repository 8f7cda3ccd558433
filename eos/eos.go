// Package eos is the thermodynamic property service. Properties are queried
// by a pair of independent state variables for a named fluid, in SI mass
// units: density kg/m^3, temperature K, pressure Pa, enthalpy and internal
// energy J/kg, specific volume m^3/kg, sound speed m/s, quality kg/kg.
package eos

import (
	"errors"
	"fmt"
	"strings"
)

// Param names a state variable or property
type Param uint8

const (
	Density        Param = iota // D
	Temperature                 // T
	Pressure                    // P
	Enthalpy                    // H
	InternalEnergy              // U
	Volume                      // V, specific volume 1/D
	Quality                     // Q, vapor mass fraction, -1 when single phase
	SoundSpeed                  // A
	Cp                          // isobaric heat capacity J/(kg K)
	Cv                          // isochoric heat capacity J/(kg K)
)

var paramNames = [...]string{
	Density:        "D",
	Temperature:    "T",
	Pressure:       "P",
	Enthalpy:       "H",
	InternalEnergy: "U",
	Volume:         "V",
	Quality:        "Q",
	SoundSpeed:     "A",
	Cp:             "Cp",
	Cv:             "Cv",
}

func (p Param) String() string {
	if int(p) < len(paramNames) {
		return paramNames[p]
	}
	return fmt.Sprintf("Param(%d)", uint8(p))
}

// ParseParam converts a short property name ("D", "T", "P", "Cp", ...) to a
// Param. Matching ignores case for every name, so "cp" and "CV" are accepted.
func ParseParam(s string) (Param, error) {
	for i, name := range paramNames {
		if strings.EqualFold(name, s) {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParam, s)
}

var (
	// ErrUnknownParam is returned by ParseParam for unrecognized names
	ErrUnknownParam = errors.New("unknown property name")
	// ErrUnsupportedInputs is returned for input pairs the service cannot solve
	ErrUnsupportedInputs = errors.New("unsupported input pair")
	// ErrOutOfRange is returned for state points outside the valid range of the model
	ErrOutOfRange = errors.New("state point out of range")
	// ErrTwoPhase is returned when a single-phase-only property is requested inside the dome
	ErrTwoPhase = errors.New("property undefined in the two-phase region")
	// ErrNoConvergence is returned when an iterative solve fails to converge
	ErrNoConvergence = errors.New("iteration did not converge")
)

// Service answers property queries for named fluids
type Service interface {
	// Query returns property out at the state fixed by (in1=v1, in2=v2)
	Query(out Param, in1 Param, v1 float64, in2 Param, v2 float64, fluid string) (float64, error)

	// Critical returns the critical temperature [K] and pressure [Pa] of the fluid
	Critical(fluid string) (Tcrit, Pcrit float64, err error)
}
