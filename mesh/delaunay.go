package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// triangulation is a counter-clockwise triangle mesh with adjacency. Edges
// with no neighbor form the hull and are never crossed by an insertion, so
// once the exterior is removed the hull acts as the constrained boundary.
type triangulation struct {
	pts  []r2.Vec
	tris []tri
	last int // Walk hint, a recently created triangle
}

type tri struct {
	v    [3]int
	nb   [3]int // Neighbor across the edge opposite v[i], -1 on the hull
	dead bool
}

// edge returns the end points of the edge opposite v[i]
func (t *tri) edge(i int) (int, int) {
	return t.v[(i+1)%3], t.v[(i+2)%3]
}

func orient(a, b, c r2.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// inCircle is positive when d lies inside the circumcircle of the
// counter-clockwise triangle abc.
func inCircle(a, b, c, d r2.Vec) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	return (adx*adx+ady*ady)*(bdx*cdy-cdx*bdy) +
		(bdx*bdx+bdy*bdy)*(cdx*ady-adx*cdy) +
		(cdx*cdx+cdy*cdy)*(adx*bdy-bdx*ady)
}

// circumcenter returns the center and radius of the circle through a, b, c
func circumcenter(a, b, c r2.Vec) (r2.Vec, float64) {
	ba, ca := r2.Sub(b, a), r2.Sub(c, a)
	d := 2 * r2.Cross(ba, ca)
	bl, cl := r2.Norm2(ba), r2.Norm2(ca)
	off := r2.Vec{X: (ca.Y*bl - ba.Y*cl) / d, Y: (ba.X*cl - ca.X*bl) / d}
	return r2.Add(a, off), r2.Norm(off)
}

// newTriangulation starts from a super triangle enclosing the box [lo, hi].
// The super vertices take indices 0, 1 and 2.
func newTriangulation(lo, hi r2.Vec) *triangulation {
	c := r2.Scale(0.5, r2.Add(lo, hi))
	d := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	if d == 0 {
		d = 1
	}
	tr := &triangulation{
		pts: []r2.Vec{
			{X: c.X - 20*d, Y: c.Y - 10*d},
			{X: c.X + 20*d, Y: c.Y - 10*d},
			{X: c.X, Y: c.Y + 20*d},
		},
	}
	tr.tris = []tri{{v: [3]int{0, 1, 2}, nb: [3]int{-1, -1, -1}}}
	return tr
}

// locate walks from start to the triangle containing p. When the walk
// crosses the hull it returns t = -1 with the triangle and edge it left by.
func (tr *triangulation) locate(p r2.Vec, start int) (t, exitTri, exitEdge int) {
	cur := start
	if cur < 0 || cur >= len(tr.tris) || tr.tris[cur].dead {
		cur = tr.alive()
	}
	for step := 0; step <= len(tr.tris); step++ {
		tt := &tr.tris[cur]
		moved := false
		for k := 0; k < 3; k++ {
			i := (k + step) % 3
			a, b := tt.edge(i)
			if orient(tr.pts[a], tr.pts[b], p) < 0 {
				if tt.nb[i] < 0 {
					return -1, cur, i
				}
				cur = tt.nb[i]
				moved = true
				break
			}
		}
		if !moved {
			return cur, -1, -1
		}
	}
	// The walk cycled, scan every triangle
	for i := range tr.tris {
		tt := &tr.tris[i]
		if tt.dead {
			continue
		}
		inside := true
		for e := 0; e < 3; e++ {
			a, b := tt.edge(e)
			if orient(tr.pts[a], tr.pts[b], p) < 0 {
				inside = false
				break
			}
		}
		if inside {
			return i, -1, -1
		}
	}
	return -1, -1, -1
}

func (tr *triangulation) alive() int {
	for i := len(tr.tris) - 1; i >= 0; i-- {
		if !tr.tris[i].dead {
			return i
		}
	}
	return -1
}

type cavityEdge struct {
	u, w  int // Directed edge, counter-clockwise around the cavity
	outer int // Triangle beyond the edge, -1 on the hull
	from  int // Cavity triangle owning the edge
}

// insert adds p, which lies in triangle t, with the Bowyer-Watson cavity
// restricted to triangles reachable without crossing the hull. A hull edge
// passing through p is split. It returns the index of the new point.
func (tr *triangulation) insert(p r2.Vec, t int) (int, error) {
	if t < 0 || tr.tris[t].dead {
		return 0, fmt.Errorf("%w: point %v is outside the triangulation", ErrDegenerate, p)
	}
	for _, v := range tr.tris[t].v {
		if d := r2.Norm2(r2.Sub(tr.pts[v], p)); d == 0 {
			return 0, fmt.Errorf("%w: duplicate point %v", ErrDegenerate, p)
		}
	}

	in := map[int]bool{t: true}
	cavity := []int{t}
	for k := 0; k < len(cavity); k++ {
		c := &tr.tris[cavity[k]]
		for _, n := range c.nb {
			if n < 0 || in[n] {
				continue
			}
			nt := &tr.tris[n]
			if inCircle(tr.pts[nt.v[0]], tr.pts[nt.v[1]], tr.pts[nt.v[2]], p) > 0 {
				in[n] = true
				cavity = append(cavity, n)
			}
		}
	}

	var rim []cavityEdge
	for _, c := range cavity {
		ct := &tr.tris[c]
		for i, n := range ct.nb {
			if n >= 0 && in[n] {
				continue
			}
			u, w := ct.edge(i)
			pu, pw := tr.pts[u], tr.pts[w]
			o := orient(pu, pw, p)
			if n < 0 && math.Abs(o) <= 1e-10*r2.Norm2(r2.Sub(pw, pu)) {
				// p splits this hull edge
				continue
			}
			if o <= 0 {
				return 0, fmt.Errorf("%w: cavity of %v is not star shaped", ErrDegenerate, p)
			}
			rim = append(rim, cavityEdge{u: u, w: w, outer: n, from: c})
		}
	}

	idx := len(tr.pts)
	tr.pts = append(tr.pts, p)
	for _, c := range cavity {
		tr.tris[c].dead = true
	}

	byStart := make(map[int]int, len(rim))
	byEnd := make(map[int]int, len(rim))
	first := len(tr.tris)
	for k, e := range rim {
		nt := first + k
		tr.tris = append(tr.tris, tri{v: [3]int{e.u, e.w, idx}, nb: [3]int{-1, -1, e.outer}})
		if e.outer >= 0 {
			o := &tr.tris[e.outer]
			for j := range o.nb {
				if o.nb[j] == e.from {
					o.nb[j] = nt
				}
			}
		}
		byStart[e.u] = nt
		byEnd[e.w] = nt
	}
	for k, e := range rim {
		nt := &tr.tris[first+k]
		// Edge (w, p) is shared with the triangle starting at w
		if n, ok := byStart[e.w]; ok {
			nt.nb[0] = n
		}
		// Edge (p, u) is shared with the triangle ending at u
		if n, ok := byEnd[e.u]; ok {
			nt.nb[1] = n
		}
	}
	if len(rim) > 0 {
		tr.last = first
	}
	return idx, nil
}

// findEdge returns a live triangle having a and b as consecutive vertices
func (tr *triangulation) findEdge(a, b int) (t, i int) {
	for k := range tr.tris {
		tt := &tr.tris[k]
		if tt.dead {
			continue
		}
		for e := 0; e < 3; e++ {
			u, w := tt.edge(e)
			if (u == a && w == b) || (u == b && w == a) {
				return k, e
			}
		}
	}
	return -1, -1
}

// edges returns the set of undirected edges of the live triangles
func (tr *triangulation) edges() map[[2]int]bool {
	set := make(map[[2]int]bool)
	for k := range tr.tris {
		tt := &tr.tris[k]
		if tt.dead {
			continue
		}
		for e := 0; e < 3; e++ {
			set[edgeKey(tt.edge(e))] = true
		}
	}
	return set
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// compact drops dead triangles and renumbers the adjacency
func (tr *triangulation) compact() {
	remap := make([]int, len(tr.tris))
	var live []tri
	for k, tt := range tr.tris {
		if tt.dead {
			remap[k] = -1
			continue
		}
		remap[k] = len(live)
		live = append(live, tt)
	}
	for k := range live {
		for i, n := range live[k].nb {
			if n >= 0 {
				live[k].nb[i] = remap[n]
			}
		}
	}
	tr.tris = live
	tr.last = len(live) - 1
}
