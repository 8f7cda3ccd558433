package table

import (
	"fmt"
	"math"

	"github.com/notargets/proptable/domain"
	"github.com/notargets/proptable/eos"
	"github.com/notargets/proptable/mesh"
)

// Coordinates maps mesh coordinates to density and temperature
type Coordinates interface {
	Physical(x, y float64) (D, T float64)
}

// Domain describes the region of the (D, T) plane covered by a table
type Domain interface {
	Coordinates
	// Geometry returns the description handed to the mesh generator
	Geometry() (*mesh.Geometry, error)
	// Finalize converts generated mesh coordinates to output coordinates
	Finalize(m *mesh.Mesh)
}

// LogDensity reads x as log10 D and y as T
type LogDensity struct{}

func (LogDensity) Physical(x, y float64) (D, T float64) {
	return math.Pow(10, x), y
}

// Finalize replaces log10 D by D in the x coordinate
func (LogDensity) Finalize(m *mesh.Mesh) {
	for i := 0; i < m.NumPoints(); i++ {
		m.Points.Set(i, 0, math.Pow(10, m.Points.At(i, 0)))
	}
}

// Structured is a rectangle in (log10 D, T) meshed with nD by nT
// quadrilateral nodes. DMax is the density at the critical point.
type Structured struct {
	LogDensity
	domain.Scaling
	Fluid  string
	ND, NT int
}

// NewStructured queries svc for the critical density of fluid and returns
// the rectangular domain [log10 DMin, log10 DMax] x [TMin, TMax].
func NewStructured(svc eos.Service, fluid string, TMin, TMax, DMin float64, nD, nT int) (*Structured, error) {
	if nD < 2 || nT < 2 {
		return nil, fmt.Errorf("%w: need at least 2x2 nodes, got %dx%d", domain.ErrInvalidDomain, nD, nT)
	}
	Tcrit, Pcrit, err := svc.Critical(fluid)
	if err != nil {
		return nil, err
	}
	DMax, err := svc.Query(eos.Density, eos.Temperature, Tcrit, eos.Pressure, Pcrit, fluid)
	if err != nil {
		return nil, fmt.Errorf("critical density: %w", err)
	}
	s := &Structured{
		Scaling: domain.Scaling{TMin: TMin, TMax: TMax, DMin: DMin, DMax: DMax},
		Fluid:   fluid,
		ND:      nD,
		NT:      nT,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Structured) Geometry() (*mesh.Geometry, error) {
	g := mesh.NewGeometry()
	x0, x1 := math.Log10(s.DMin), math.Log10(s.DMax)
	c1 := g.AddPoint(x0, s.TMin, 0)
	c2 := g.AddPoint(x1, s.TMin, 0)
	c3 := g.AddPoint(x1, s.TMax, 0)
	c4 := g.AddPoint(x0, s.TMax, 0)
	b := g.AddLine(c1, c2)
	r := g.AddLine(c2, c3)
	t := g.AddLine(c3, c4)
	l := g.AddLine(c4, c1)
	surf := g.AddSurface(g.AddLineLoop(b, r, t, l))
	g.SetTransfinite(surf, s.ND, s.NT)
	g.Recombine(surf)
	g.SetAlgorithm(mesh.Delaunay)
	return g, g.Err()
}

// Graded is the region above the saturated vapor curve in the
// non-dimensional (Dstar, Tstar) plane, meshed with sizes graded towards
// the critical point.
type Graded struct {
	domain.Scaling
	Fluid   string
	Sizes   domain.Sizes
	Samples int
	Curves  domain.Curves
}

// NewGraded bounds the domain by the saturated vapor density at TMin and
// the vapor density at (Tcrit, 0.99 Pcrit), then samples the boundary
// curves.
func NewGraded(svc eos.Service, fluid string, TMin, TMax float64, sizes domain.Sizes, samples int) (*Graded, error) {
	Tcrit, Pcrit, err := svc.Critical(fluid)
	if err != nil {
		return nil, err
	}
	if !(TMin < Tcrit && TMax > Tcrit) {
		return nil, fmt.Errorf("%w: temperature range [%g, %g] must contain Tcrit=%g",
			domain.ErrInvalidDomain, TMin, TMax, Tcrit)
	}
	DMin, err := svc.Query(eos.Density, eos.Quality, 1, eos.Temperature, TMin, fluid)
	if err != nil {
		return nil, fmt.Errorf("saturated vapor density at %g K: %w", TMin, err)
	}
	DMax, err := svc.Query(eos.Density, eos.Temperature, Tcrit, eos.Pressure, 0.99*Pcrit, fluid)
	if err != nil {
		return nil, fmt.Errorf("near critical density: %w", err)
	}
	g := &Graded{
		Scaling: domain.Scaling{TMin: TMin, TMax: TMax, DMin: DMin, DMax: DMax},
		Fluid:   fluid,
		Sizes:   sizes,
		Samples: samples,
	}
	tsat := func(D float64) (float64, error) {
		return svc.Query(eos.Temperature, eos.Density, D, eos.Quality, 1, fluid)
	}
	if g.Curves, err = domain.Boundary(g.Scaling, sizes, samples, tsat); err != nil {
		return nil, err
	}
	return g, nil
}

func (d *Graded) Geometry() (*mesh.Geometry, error) {
	loop := domain.Loop(d.Curves)
	n := d.Samples
	if len(loop) != 4*n-4 {
		return nil, fmt.Errorf("%w: boundary loop has %d points, want %d",
			domain.ErrInvalidDomain, len(loop), 4*n-4)
	}
	g := mesh.NewGeometry()
	tags := make([]int, len(loop))
	for i, s := range loop {
		tags[i] = g.AddPoint(s.Dstar, s.Tstar, s.Size)
	}
	// Curves share their end points; the top curve closes on the first point
	span := func(from, to int) []int {
		pts := make([]int, 0, to-from+1)
		for i := from; i <= to; i++ {
			pts = append(pts, tags[i%len(tags)])
		}
		return pts
	}
	right := g.AddPolyline(span(0, n-1)...)
	bottom := g.AddPolyline(span(n-1, 2*n-2)...)
	left := g.AddPolyline(span(2*n-2, 3*n-3)...)
	top := g.AddPolyline(span(3*n-3, 4*n-4)...)
	g.AddSurface(g.AddLineLoop(right, bottom, left, top))
	g.SetAlgorithm(mesh.Delaunay)
	return g, g.Err()
}

func (d *Graded) Physical(x, y float64) (D, T float64) {
	return d.FromStar(x, y)
}

// Finalize leaves the mesh in non-dimensional coordinates
func (d *Graded) Finalize(*mesh.Mesh) {}
