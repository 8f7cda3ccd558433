package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// A triangle is refined when its circumradius exceeds sizeRatio times
	// the local target size
	sizeRatio = 0.75
	// or when its radius-edge ratio exceeds qualityRatio while its shortest
	// edge is still longer than qualityFloor times the target size
	qualityRatio = math.Sqrt2
	qualityFloor = 0.4
	// Boundary segments shorter than splitFloor times the target size are
	// not split again
	splitFloor = 0.2

	smoothingPasses = 3
)

// boundaryVertex is a seed on the surface boundary
type boundaryVertex struct {
	pos  r2.Vec
	size float64
	geo  int // Geometry point index, -1 for subdivision points
}

// unstructured fills the surface bounded by curves with a graded Delaunay
// triangulation.
func (g *Geometry) unstructured(curves [][]int, maxNodes int) (*patch, error) {
	var ring []int
	for _, c := range curves {
		ring = append(ring, c[:len(c)-1]...)
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: boundary has %d points", ErrDegenerate, len(ring))
	}
	poly := make([]r2.Vec, len(ring))
	for i, idx := range ring {
		gp := g.points[idx]
		if !(gp.size > 0) {
			return nil, fmt.Errorf("%w: point %d has no target size", ErrDegenerate, idx+1)
		}
		poly[i] = gp.pos
	}
	lo, hi := bounds(poly)
	diag := r2.Norm(r2.Sub(hi, lo))
	if math.Abs(polygonArea(poly)) <= 1e-12*diag*diag {
		return nil, fmt.Errorf("%w: boundary encloses no area", ErrDegenerate)
	}

	seeds, err := g.seed(ring)
	if err != nil {
		return nil, err
	}
	if len(seeds) > maxNodes {
		return nil, fmt.Errorf("%w: %d boundary nodes exceed the budget of %d",
			ErrDegenerate, len(seeds), maxNodes)
	}

	dm := &delaunayMesher{tr: newTriangulation(lo, hi), sizes: []float64{0, 0, 0}, maxNodes: maxNodes}
	for _, s := range seeds {
		v, err := dm.add(s.pos, s.size, dm.tr.last)
		if err != nil {
			return nil, err
		}
		dm.ring = append(dm.ring, v)
	}
	if err := dm.recoverBoundary(); err != nil {
		return nil, err
	}
	dm.removeExterior()
	dm.background = newSizeField(dm.tr, dm.sizes)
	if err := dm.refine(); err != nil {
		return nil, err
	}
	if g.algorithm == Delaunay {
		dm.smooth(smoothingPasses)
	}
	dm.tr.compact()

	// Super vertices are 0, 1 and 2
	const off = 3
	p := &patch{pts: dm.tr.pts[off:]}
	for _, t := range dm.tr.tris {
		p.cells[Triangle] = append(p.cells[Triangle], []int{t.v[0] - off, t.v[1] - off, t.v[2] - off})
	}
	for i, v := range dm.ring {
		p.cells[Line] = append(p.cells[Line], []int{v - off, dm.ring[(i+1)%len(dm.ring)] - off})
	}
	for i, s := range seeds {
		if s.geo >= 0 {
			// seeds were added in order, so seed i is node i
			p.cells[Vertex] = append(p.cells[Vertex], []int{i})
		}
	}
	return p, nil
}

// seed subdivides every boundary segment so that the spacing follows the
// target size, which varies linearly between the segment ends.
func (g *Geometry) seed(ring []int) ([]boundaryVertex, error) {
	var seeds []boundaryVertex
	for i, idx := range ring {
		a, b := g.points[idx], g.points[ring[(i+1)%len(ring)]]
		l := r2.Norm(r2.Sub(b.pos, a.pos))
		if l == 0 {
			return nil, fmt.Errorf("%w: coincident boundary points %d and %d",
				ErrDegenerate, idx+1, ring[(i+1)%len(ring)]+1)
		}
		seeds = append(seeds, boundaryVertex{pos: a.pos, size: a.size, geo: idx})

		// Number of pieces is the integral of ds/h along the segment
		dh := b.size - a.size
		uniform := math.Abs(dh) <= 1e-12*a.size
		integral := l / a.size
		if !uniform {
			integral = l * math.Log(b.size/a.size) / dh
		}
		n := int(math.Ceil(integral - 1e-9))
		for k := 1; k < n; k++ {
			phi := integral * float64(k) / float64(n)
			h := a.size
			s := phi * a.size
			if !uniform {
				h = a.size * math.Exp(phi*dh/l)
				s = l * (h - a.size) / dh
			}
			seeds = append(seeds, boundaryVertex{
				pos:  r2.Add(a.pos, r2.Scale(s/l, r2.Sub(b.pos, a.pos))),
				size: h,
				geo:  -1,
			})
		}
	}
	return seeds, nil
}

type delaunayMesher struct {
	tr         *triangulation
	sizes      []float64 // Target size at each point
	ring       []int     // Boundary points in loop order
	background *sizeField
	maxNodes   int
}

func (dm *delaunayMesher) add(p r2.Vec, size float64, hint int) (int, error) {
	if len(dm.tr.pts)-3 >= dm.maxNodes {
		return 0, fmt.Errorf("%w: node budget of %d exhausted", ErrDegenerate, dm.maxNodes)
	}
	t, _, _ := dm.tr.locate(p, hint)
	v, err := dm.tr.insert(p, t)
	if err != nil {
		return 0, err
	}
	dm.sizes = append(dm.sizes, size)
	return v, nil
}

// recoverBoundary splits boundary segments missing from the triangulation
// until every one of them is an edge.
func (dm *delaunayMesher) recoverBoundary() error {
	for {
		edges := dm.tr.edges()
		var next []int
		missing := false
		for i, a := range dm.ring {
			b := dm.ring[(i+1)%len(dm.ring)]
			next = append(next, a)
			if edges[edgeKey(a, b)] {
				continue
			}
			missing = true
			mid := r2.Scale(0.5, r2.Add(dm.tr.pts[a], dm.tr.pts[b]))
			m, err := dm.add(mid, 0.5*(dm.sizes[a]+dm.sizes[b]), dm.tr.last)
			if err != nil {
				return fmt.Errorf("recovering boundary segment %v-%v: %w", dm.tr.pts[a], dm.tr.pts[b], err)
			}
			next = append(next, m)
		}
		dm.ring = next
		if !missing {
			return nil
		}
	}
}

// removeExterior deletes the triangles outside the boundary ring, leaving
// the ring as the hull.
func (dm *delaunayMesher) removeExterior() {
	poly := make([]r2.Vec, len(dm.ring))
	for i, v := range dm.ring {
		poly[i] = dm.tr.pts[v]
	}
	for k := range dm.tr.tris {
		t := &dm.tr.tris[k]
		if t.dead {
			continue
		}
		if t.v[0] < 3 || t.v[1] < 3 || t.v[2] < 3 {
			t.dead = true
			continue
		}
		a, b, c := dm.tr.pts[t.v[0]], dm.tr.pts[t.v[1]], dm.tr.pts[t.v[2]]
		centroid := r2.Scale(1.0/3, r2.Add(r2.Add(a, b), c))
		if !pointInPolygon(centroid, poly) {
			t.dead = true
		}
	}
	dm.tr.compact()
}

// refine inserts circumcenters of triangles that are too large or badly
// shaped. A circumcenter that encroaches a boundary segment or falls outside
// the domain splits the segment instead.
func (dm *delaunayMesher) refine() error {
	skip := make(map[int]bool)
	for {
		changed := false
		n := len(dm.tr.tris)
		for t := 0; t < n; t++ {
			if dm.tr.tris[t].dead || skip[t] || !dm.bad(t) {
				continue
			}
			v := dm.tr.tris[t].v
			c, _ := circumcenter(dm.tr.pts[v[0]], dm.tr.pts[v[1]], dm.tr.pts[v[2]])

			seg := -1
			loc, exitTri, exitEdge := dm.tr.locate(c, t)
			if loc < 0 {
				if exitTri < 0 {
					skip[t] = true
					continue
				}
				a, b := dm.tr.tris[exitTri].edge(exitEdge)
				seg = dm.ringIndex(a, b)
			}
			if seg < 0 {
				seg = dm.encroached(c)
			}

			if seg >= 0 {
				ok, err := dm.split(seg)
				if err != nil {
					return err
				}
				if !ok {
					skip[t] = true
					continue
				}
			} else if _, err := dm.add(c, dm.background.at(c), loc); err != nil {
				return err
			}
			changed = true
		}
		if !changed {
			return nil
		}
	}
}

// bad reports whether triangle t needs refinement
func (dm *delaunayMesher) bad(t int) bool {
	v := dm.tr.tris[t].v
	a, b, c := dm.tr.pts[v[0]], dm.tr.pts[v[1]], dm.tr.pts[v[2]]
	_, r := circumcenter(a, b, c)
	h := dm.background.at(r2.Scale(1.0/3, r2.Add(r2.Add(a, b), c)))
	if r > sizeRatio*h {
		return true
	}
	lmin := math.Min(r2.Norm(r2.Sub(b, a)), math.Min(r2.Norm(r2.Sub(c, b)), r2.Norm(r2.Sub(a, c))))
	return r > qualityRatio*lmin && lmin > qualityFloor*h
}

// ringIndex returns the position i of the boundary segment (ring[i],
// ring[i+1]) joining a and b, or -1.
func (dm *delaunayMesher) ringIndex(a, b int) int {
	for i, u := range dm.ring {
		w := dm.ring[(i+1)%len(dm.ring)]
		if (u == a && w == b) || (u == b && w == a) {
			return i
		}
	}
	return -1
}

// encroached returns the first boundary segment whose diametral circle
// contains p, or -1.
func (dm *delaunayMesher) encroached(p r2.Vec) int {
	for i, u := range dm.ring {
		a, b := dm.tr.pts[u], dm.tr.pts[dm.ring[(i+1)%len(dm.ring)]]
		if r2.Dot(r2.Sub(a, p), r2.Sub(b, p)) < 0 {
			return i
		}
	}
	return -1
}

// split inserts the midpoint of boundary segment i. It reports false when
// the segment is already shorter than the local size floor.
func (dm *delaunayMesher) split(i int) (bool, error) {
	a, b := dm.ring[i], dm.ring[(i+1)%len(dm.ring)]
	pa, pb := dm.tr.pts[a], dm.tr.pts[b]
	mid := r2.Scale(0.5, r2.Add(pa, pb))
	h := dm.background.at(mid)
	if r2.Norm(r2.Sub(pb, pa)) < splitFloor*h {
		return false, nil
	}
	t, _ := dm.tr.findEdge(a, b)
	if t < 0 {
		return false, fmt.Errorf("%w: boundary segment %v-%v lost", ErrDegenerate, pa, pb)
	}
	if len(dm.tr.pts)-3 >= dm.maxNodes {
		return false, fmt.Errorf("%w: node budget of %d exhausted", ErrDegenerate, dm.maxNodes)
	}
	m, err := dm.tr.insert(mid, t)
	if err != nil {
		return false, err
	}
	dm.sizes = append(dm.sizes, h)
	dm.ring = append(dm.ring[:i+1], append([]int{m}, dm.ring[i+1:]...)...)
	return true, nil
}

// smooth moves interior nodes toward the centroid of their neighbors,
// rejecting any move that would invert or flatten an incident triangle.
func (dm *delaunayMesher) smooth(passes int) {
	tr := dm.tr
	tr.compact()
	onRing := make([]bool, len(tr.pts))
	for _, v := range dm.ring {
		onRing[v] = true
	}
	incident := make([][]int, len(tr.pts))
	for k, t := range tr.tris {
		for _, v := range t.v {
			incident[v] = append(incident[v], k)
		}
	}
	for pass := 0; pass < passes; pass++ {
		for v := 3; v < len(tr.pts); v++ {
			if onRing[v] || len(incident[v]) == 0 {
				continue
			}
			var sum r2.Vec
			n := 0
			for _, k := range incident[v] {
				for _, u := range tr.tris[k].v {
					if u != v {
						sum = r2.Add(sum, tr.pts[u])
						n++
					}
				}
			}
			target := r2.Scale(1/float64(n), sum)
			old := tr.pts[v]
			tr.pts[v] = target
			for _, k := range incident[v] {
				t := tr.tris[k].v
				a, b, c := tr.pts[t[0]], tr.pts[t[1]], tr.pts[t[2]]
				if orient(a, b, c) <= 0.05*minEdge2(a, b, c) {
					tr.pts[v] = old
					break
				}
			}
		}
	}
}

func minEdge2(a, b, c r2.Vec) float64 {
	return math.Min(r2.Norm2(r2.Sub(b, a)), math.Min(r2.Norm2(r2.Sub(c, b)), r2.Norm2(r2.Sub(a, c))))
}

func bounds(pts []r2.Vec) (lo, hi r2.Vec) {
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return
}

// pointInPolygon is the even-odd rule
func pointInPolygon(p r2.Vec, poly []r2.Vec) bool {
	in := false
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}
