package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// transfinite fills a four sided surface with a Coons patch. Nodes are
// numbered row by row: node j*nx + i sits at parameter (i/(nx-1), j/(ny-1)).
func (g *Geometry) transfinite(curves [][]int, s *geoSurface) (*patch, error) {
	if len(curves) != 4 {
		return nil, fmt.Errorf("%w: transfinite surface needs 4 boundary lines, got %d",
			ErrDegenerate, len(curves))
	}
	nx, ny := s.nx, s.ny
	bottom := g.resample(curves[0], nx)
	right := g.resample(curves[1], ny)
	top := reversed(g.resample(curves[2], nx))
	left := reversed(g.resample(curves[3], ny))

	p00, p10, p11, p01 := bottom[0], bottom[nx-1], top[nx-1], top[0]
	scale := math.Max(r2.Norm(r2.Sub(p11, p00)), r2.Norm(r2.Sub(p10, p01)))
	corners := []r2.Vec{p00, p10, p11, p01}
	for i := range corners {
		for j := i + 1; j < len(corners); j++ {
			if r2.Norm(r2.Sub(corners[i], corners[j])) <= 1e-12*scale {
				return nil, fmt.Errorf("%w: coincident transfinite corners %v and %v",
					ErrDegenerate, corners[i], corners[j])
			}
		}
	}
	area := polygonArea(corners)
	if math.Abs(area) <= 1e-12*scale*scale {
		return nil, fmt.Errorf("%w: transfinite corners are collinear", ErrDegenerate)
	}

	p := &patch{pts: make([]r2.Vec, nx*ny)}
	for j := 0; j < ny; j++ {
		t := float64(j) / float64(ny-1)
		for i := 0; i < nx; i++ {
			u := float64(i) / float64(nx-1)
			var x r2.Vec
			switch {
			case j == 0:
				x = bottom[i]
			case j == ny-1:
				x = top[i]
			case i == 0:
				x = left[j]
			case i == nx-1:
				x = right[j]
			default:
				x = coons(u, t, bottom[i], top[i], left[j], right[j], p00, p10, p11, p01)
			}
			p.pts[j*nx+i] = x
		}
	}

	node := func(i, j int) int { return j*nx + i }
	flip := area < 0
	emit := func(t CellType, conn ...int) error {
		if flip {
			for a, b := 0, len(conn)-1; a < b; a, b = a+1, b-1 {
				conn[a], conn[b] = conn[b], conn[a]
			}
		}
		poly := make([]r2.Vec, len(conn))
		for k, v := range conn {
			poly[k] = p.pts[v]
		}
		if polygonArea(poly) <= 0 {
			return fmt.Errorf("%w: transfinite patch folds over near node %d", ErrDegenerate, conn[0])
		}
		p.cells[t] = append(p.cells[t], conn)
		return nil
	}
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			a, b, c, d := node(i, j), node(i+1, j), node(i+1, j+1), node(i, j+1)
			var err error
			if s.recombine {
				err = emit(Quad, a, b, c, d)
			} else if err = emit(Triangle, a, b, c); err == nil {
				err = emit(Triangle, a, c, d)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	// Boundary segments follow the loop: bottom, right, top, left
	var ring []int
	for i := 0; i < nx-1; i++ {
		ring = append(ring, node(i, 0))
	}
	for j := 0; j < ny-1; j++ {
		ring = append(ring, node(nx-1, j))
	}
	for i := nx - 1; i > 0; i-- {
		ring = append(ring, node(i, ny-1))
	}
	for j := ny - 1; j > 0; j-- {
		ring = append(ring, node(0, j))
	}
	for k, v := range ring {
		p.cells[Line] = append(p.cells[Line], []int{v, ring[(k+1)%len(ring)]})
	}
	for _, v := range []int{node(0, 0), node(nx-1, 0), node(nx-1, ny-1), node(0, ny-1)} {
		p.cells[Vertex] = append(p.cells[Vertex], []int{v})
	}
	return p, nil
}

// coons evaluates the bilinearly blended patch through four boundary curves
func coons(u, t float64, b, tp, l, r, p00, p10, p11, p01 r2.Vec) r2.Vec {
	lerp := r2.Add(r2.Scale(1-t, b), r2.Scale(t, tp))
	lerp = r2.Add(lerp, r2.Add(r2.Scale(1-u, l), r2.Scale(u, r)))
	bilinear := r2.Add(
		r2.Add(r2.Scale((1-u)*(1-t), p00), r2.Scale(u*(1-t), p10)),
		r2.Add(r2.Scale(u*t, p11), r2.Scale((1-u)*t, p01)))
	return r2.Sub(lerp, bilinear)
}

// resample places n points along a polyline, equally spaced in arc length
func (g *Geometry) resample(line []int, n int) []r2.Vec {
	pts := make([]r2.Vec, len(line))
	for i, idx := range line {
		pts[i] = g.points[idx].pos
	}
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + r2.Norm(r2.Sub(pts[i], pts[i-1]))
	}
	total := cum[len(cum)-1]

	out := make([]r2.Vec, n)
	out[0], out[n-1] = pts[0], pts[len(pts)-1]
	seg := 1
	for k := 1; k < n-1; k++ {
		target := total * float64(k) / float64(n-1)
		for seg < len(pts)-1 && cum[seg] < target {
			seg++
		}
		w := 0.0
		if l := cum[seg] - cum[seg-1]; l > 0 {
			w = (target - cum[seg-1]) / l
		}
		out[k] = r2.Add(pts[seg-1], r2.Scale(w, r2.Sub(pts[seg], pts[seg-1])))
	}
	return out
}

func reversed(v []r2.Vec) []r2.Vec {
	for a, b := 0, len(v)-1; a < b; a, b = a+1, b-1 {
		v[a], v[b] = v[b], v[a]
	}
	return v
}

// polygonArea is the signed shoelace area, positive for counter-clockwise order
func polygonArea(poly []r2.Vec) float64 {
	var a float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		a += r2.Cross(p, q)
	}
	return a / 2
}
