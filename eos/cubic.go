package eos

import (
	"math"
	"sort"
)

// cubicRoots returns the real roots of z^3 + c2 z^2 + c1 z + c0 = 0 in
// ascending order. The largest-magnitude root comes from the closed form and
// is polished; the others come from the deflated quadratic so that small
// liquid-like roots keep their relative accuracy.
func cubicRoots(c2, c1, c0 float64) []float64 {
	q := (3*c1 - c2*c2) / 9
	r := (9*c2*c1 - 27*c0 - 2*c2*c2*c2) / 54
	disc := q*q*q + r*r
	shift := c2 / 3

	var z1 float64
	if disc >= 0 || q >= 0 {
		sd := math.Sqrt(math.Max(disc, 0))
		z1 = math.Cbrt(r+sd) + math.Cbrt(r-sd) - shift
	} else {
		rq := math.Sqrt(-q)
		theta := math.Acos(math.Max(-1, math.Min(1, r/(rq*rq*rq))))
		for k := 0; k < 3; k++ {
			z := 2*rq*math.Cos((theta+2*math.Pi*float64(k))/3) - shift
			if k == 0 || math.Abs(z) > math.Abs(z1) {
				z1 = z
			}
		}
	}
	z1 = polishRoot(z1, c2, c1, c0)

	// z^2 + b z + c is the quotient of the cubic by (z - z1)
	b := c2 + z1
	c := c1 + z1*b
	roots := []float64{z1}
	if d := b*b - 4*c; d >= 0 {
		t := -(b + math.Copysign(math.Sqrt(d), b)) / 2
		if t != 0 {
			roots = append(roots, polishRoot(t, c2, c1, c0), polishRoot(c/t, c2, c1, c0))
		} else {
			roots = append(roots, 0, 0)
		}
	}
	sort.Float64s(roots)
	return roots
}

func polishRoot(z, c2, c1, c0 float64) float64 {
	for i := 0; i < 4; i++ {
		f := ((z+c2)*z+c1)*z + c0
		df := (3*z+2*c2)*z + c1
		if df == 0 {
			break
		}
		dz := f / df
		zn := z - dz
		// Near a multiple root f is dominated by rounding
		fn := ((zn+c2)*zn+c1)*zn + c0
		if math.Abs(fn) >= math.Abs(f) {
			break
		}
		z = zn
		if math.Abs(dz) <= 1e-15*math.Abs(z) {
			break
		}
	}
	return z
}
