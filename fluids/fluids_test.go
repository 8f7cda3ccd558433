package fluids

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate/quad"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Toluene", "Toluene"},
		{"toluene", "Toluene"},
		{" TOLUENE ", "Toluene"},
		{"CO2", "CarbonDioxide"},
		{"r744", "CarbonDioxide"},
		{"nPentane", "n-Pentane"},
		{"H2O", "Water"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.Name)
		})
	}

	_, err := Lookup("Unobtainium")
	if !errors.Is(err, ErrUnknownFluid) {
		t.Errorf("Expected ErrUnknownFluid, got %v", err)
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.Len(t, names, len(database))
	assert.IsIncreasing(t, names)
}

func TestConstantsArePhysical(t *testing.T) {
	for _, f := range database {
		if f.M <= 0 || f.Tcrit <= 0 || f.Pcrit <= 0 {
			t.Errorf("%s: non-positive constants M=%g Tc=%g Pc=%g", f.Name, f.M, f.Tcrit, f.Pcrit)
		}
		// Ideal-gas cp must exceed R for any real molecule over the working range
		for _, T := range []float64{250, 400, 600} {
			if cp := f.Cp0(T); cp <= R {
				t.Errorf("%s: cp0(%g) = %g <= R", f.Name, T, cp)
			}
		}
	}
}

func TestH0MatchesQuadrature(t *testing.T) {
	f, err := Lookup("Toluene")
	require.NoError(t, err)

	assert.InDelta(t, 0.0, f.H0(TRef), 1e-9)
	for _, T := range []float64{350, 450, 650} {
		expected := quad.Fixed(f.Cp0, TRef, T, 20, quad.Legendre{}, 0)
		assert.InDelta(t, expected, f.H0(T), 1e-6*expected, "T=%g", T)
	}
}
