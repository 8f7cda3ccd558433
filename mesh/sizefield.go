package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// sizeField interpolates target sizes barycentrically over a frozen copy of
// the boundary-only triangulation.
type sizeField struct {
	tr    *triangulation
	sizes []float64
}

func newSizeField(tr *triangulation, sizes []float64) *sizeField {
	bg := &triangulation{
		pts:  append([]r2.Vec(nil), tr.pts...),
		tris: append([]tri(nil), tr.tris...),
		last: tr.last,
	}
	return &sizeField{tr: bg, sizes: append([]float64(nil), sizes...)}
}

// at returns the target size at p. Points outside the background mesh take
// the value of the closest triangle with clamped weights.
func (sf *sizeField) at(p r2.Vec) float64 {
	t, exitTri, _ := sf.tr.locate(p, sf.tr.last)
	if t < 0 {
		t = exitTri
	}
	if t < 0 {
		t = sf.nearest(p)
	} else {
		sf.tr.last = t
	}
	w := sf.weights(t, p)
	v := sf.tr.tris[t].v
	return w[0]*sf.sizes[v[0]] + w[1]*sf.sizes[v[1]] + w[2]*sf.sizes[v[2]]
}

// weights returns the barycentric coordinates of p in triangle t, clamped
// to be non-negative.
func (sf *sizeField) weights(t int, p r2.Vec) [3]float64 {
	v := sf.tr.tris[t].v
	a, b, c := sf.tr.pts[v[0]], sf.tr.pts[v[1]], sf.tr.pts[v[2]]
	area := orient(a, b, c)
	w := [3]float64{orient(p, b, c) / area, orient(a, p, c) / area, orient(a, b, p) / area}
	sum := 0.0
	for i := range w {
		w[i] = math.Max(w[i], 0)
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

func (sf *sizeField) nearest(p r2.Vec) int {
	best, dist := 0, math.Inf(1)
	for k := range sf.tr.tris {
		v := sf.tr.tris[k].v
		c := r2.Scale(1.0/3, r2.Add(r2.Add(sf.tr.pts[v[0]], sf.tr.pts[v[1]]), sf.tr.pts[v[2]]))
		if d := r2.Norm2(r2.Sub(c, p)); d < dist {
			best, dist = k, d
		}
	}
	return best
}
