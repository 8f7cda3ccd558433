package mesh

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func checkAdjacency(t *testing.T, tr *triangulation) {
	t.Helper()
	for k := range tr.tris {
		tt := &tr.tris[k]
		if tt.dead {
			continue
		}
		a, b, c := tr.pts[tt.v[0]], tr.pts[tt.v[1]], tr.pts[tt.v[2]]
		if orient(a, b, c) <= 0 {
			t.Fatalf("triangle %d is not counter-clockwise", k)
		}
		for i, n := range tt.nb {
			if n < 0 {
				continue
			}
			nt := &tr.tris[n]
			require.False(t, nt.dead, "triangle %d points at dead neighbor %d", k, n)
			u, w := tt.edge(i)
			found := false
			for j, back := range nt.nb {
				if back == k {
					x, y := nt.edge(j)
					found = x == w && y == u
				}
			}
			if !found {
				t.Fatalf("triangles %d and %d are not mutual neighbors", k, n)
			}
		}
	}
}

func TestBowyerWatson(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	tr := newTriangulation(r2.Vec{}, r2.Vec{X: 1, Y: 1})
	for i := 0; i < 300; i++ {
		p := r2.Vec{X: rnd.Float64(), Y: rnd.Float64()}
		loc, _, _ := tr.locate(p, tr.last)
		require.GreaterOrEqual(t, loc, 0)
		_, err := tr.insert(p, loc)
		require.NoError(t, err)
	}
	checkAdjacency(t, tr)

	// Empty circumcircles
	for k := range tr.tris {
		tt := &tr.tris[k]
		if tt.dead {
			continue
		}
		a, b, c := tr.pts[tt.v[0]], tr.pts[tt.v[1]], tr.pts[tt.v[2]]
		for v := 3; v < len(tr.pts); v++ {
			if v == tt.v[0] || v == tt.v[1] || v == tt.v[2] {
				continue
			}
			if inCircle(a, b, c, tr.pts[v]) > 1e-9 {
				t.Fatalf("point %d lies inside the circumcircle of triangle %d", v, k)
			}
		}
	}

	// Triangle count of a triangulation of n+3 points with a triangular hull
	live := 0
	for _, tt := range tr.tris {
		if !tt.dead {
			live++
		}
	}
	assert.Equal(t, 2*len(tr.pts)-5, live)

	loc, _, _ := tr.locate(tr.pts[10], tr.last)
	_, err := tr.insert(tr.pts[10], loc)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestCircumcenter(t *testing.T) {
	c, r := circumcenter(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 2, Y: 0}, r2.Vec{X: 0, Y: 2})
	assert.InDelta(t, 1, c.X, 1e-15)
	assert.InDelta(t, 1, c.Y, 1e-15)
	assert.InDelta(t, 1.4142135623730951, r, 1e-15)

	assert.Greater(t, inCircle(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 2, Y: 0}, r2.Vec{X: 0, Y: 2}, r2.Vec{X: 1, Y: 1}), 0.0)
	assert.Less(t, inCircle(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 2, Y: 0}, r2.Vec{X: 0, Y: 2}, r2.Vec{X: 3, Y: 3}), 0.0)
}

func TestSizeField(t *testing.T) {
	tr := newTriangulation(r2.Vec{}, r2.Vec{X: 1, Y: 1})
	sizes := []float64{0, 0, 0}
	for _, p := range []struct {
		pos  r2.Vec
		size float64
	}{
		{r2.Vec{X: 0, Y: 0}, 1},
		{r2.Vec{X: 1, Y: 0}, 2},
		{r2.Vec{X: 1, Y: 1}, 3},
		{r2.Vec{X: 0, Y: 1}, 2},
	} {
		loc, _, _ := tr.locate(p.pos, tr.last)
		_, err := tr.insert(p.pos, loc)
		require.NoError(t, err)
		sizes = append(sizes, p.size)
	}
	dm := &delaunayMesher{tr: tr, sizes: sizes, ring: []int{3, 4, 5, 6}}
	dm.removeExterior()
	sf := newSizeField(dm.tr, dm.sizes)

	// The corner sizes are linear in x + y, which every split of the square reproduces
	for _, p := range []r2.Vec{{X: 0.5, Y: 0.5}, {X: 0.25, Y: 0.1}, {X: 0.9, Y: 0.7}, {X: 1, Y: 0}} {
		assert.InDelta(t, 1+p.X+p.Y, sf.at(p), 1e-12, "at %v", p)
	}
	// Outside points clamp to the boundary
	assert.InDelta(t, 1, sf.at(r2.Vec{X: -1, Y: -1}), 1e-12)
}
