package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestScalingRoundTrip(t *testing.T) {
	sc := Scaling{TMin: 400, TMax: 650, DMin: 0.001, DMax: 290}
	for _, D := range floats.Span(make([]float64, 13), sc.DMin, sc.DMax) {
		for _, T := range floats.Span(make([]float64, 7), sc.TMin, sc.TMax) {
			Dstar, Tstar := sc.ToStar(D, T)
			if Dstar < -1e-12 || Dstar > 1+1e-12 || Tstar < -1e-12 || Tstar > 1+1e-12 {
				t.Errorf("(%g, %g) maps outside the unit square: (%g, %g)", D, T, Dstar, Tstar)
			}
			D2, T2 := sc.FromStar(Dstar, Tstar)
			assert.InEpsilon(t, D, D2, 1e-12)
			assert.InEpsilon(t, T, T2, 1e-12)
		}
	}

	Dstar, Tstar := sc.ToStar(sc.DMin, sc.TMin)
	assert.InDelta(t, 0, Dstar, 1e-15)
	assert.InDelta(t, 0, Tstar, 1e-15)
	Dstar, Tstar = sc.ToStar(sc.DMax, sc.TMax)
	assert.InDelta(t, 1, Dstar, 1e-15)
	assert.InDelta(t, 1, Tstar, 1e-15)
	// log10 midpoint
	D, _ := sc.FromStar(0.5, 0)
	assert.InEpsilon(t, math.Sqrt(sc.DMin*sc.DMax), D, 1e-12)
}

func TestScalingValidate(t *testing.T) {
	tests := []struct {
		name  string
		sc    Scaling
		valid bool
	}{
		{"Valid", Scaling{TMin: 400, TMax: 650, DMin: 0.001, DMax: 290}, true},
		{"InvertedT", Scaling{TMin: 650, TMax: 400, DMin: 0.001, DMax: 290}, false},
		{"EqualD", Scaling{TMin: 400, TMax: 650, DMin: 1, DMax: 1}, false},
		{"ZeroDensity", Scaling{TMin: 400, TMax: 650, DMin: 0, DMax: 290}, false},
		{"NaN", Scaling{TMin: math.NaN(), TMax: 650, DMin: 0.001, DMax: 290}, false},
		{"Inf", Scaling{TMin: 400, TMax: math.Inf(1), DMin: 0.001, DMax: 290}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sc.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else if !errors.Is(err, ErrInvalidDomain) {
				t.Errorf("Expected ErrInvalidDomain, got %v", err)
			}
		})
	}
}
