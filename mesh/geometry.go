package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Algorithm selects how surfaces without a transfinite directive are filled
type Algorithm uint8

const (
	// Delaunay refines a constrained Delaunay triangulation to the size field
	// and then smooths interior nodes
	Delaunay Algorithm = iota
	// DelaunayNoSmoothing stops after refinement
	DelaunayNoSmoothing
)

func (a Algorithm) String() string {
	switch a {
	case Delaunay:
		return "delaunay"
	case DelaunayNoSmoothing:
		return "delaunay-nosmooth"
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// DefaultMaxNodes bounds the node count of a generated mesh
const DefaultMaxNodes = 1000000

// Geometry collects points, lines, loops and surfaces to be meshed. Entities
// are referred to by 1-based tags; a negative line tag inside a loop
// traverses the line backwards. The first invalid call is remembered and
// returned by Generate.
type Geometry struct {
	MaxNodes int // Node budget, DefaultMaxNodes when zero

	points    []geoPoint
	lines     [][]int // Point indices along each line
	loops     [][]int // Signed line tags
	surfaces  []*geoSurface
	algorithm Algorithm
	err       error
}

type geoPoint struct {
	pos  r2.Vec
	size float64 // Target element size, zero when unset
}

type geoSurface struct {
	loop        int
	transfinite bool
	nx, ny      int
	recombine   bool
}

// NewGeometry returns an empty geometry using the Delaunay algorithm
func NewGeometry() *Geometry {
	return &Geometry{algorithm: Delaunay}
}

func (g *Geometry) fail(format string, args ...interface{}) int {
	if g.err == nil {
		g.err = fmt.Errorf("%w: "+format, append([]interface{}{ErrDegenerate}, args...)...)
	}
	return 0
}

// Err returns the first error recorded while building the geometry
func (g *Geometry) Err() error {
	return g.err
}

// AddPoint adds a point with a target element size and returns its tag
func (g *Geometry) AddPoint(x, y, size float64) int {
	g.points = append(g.points, geoPoint{pos: r2.Vec{X: x, Y: y}, size: size})
	return len(g.points)
}

// AddLine adds a straight line between two point tags
func (g *Geometry) AddLine(p1, p2 int) int {
	return g.AddPolyline(p1, p2)
}

// AddPolyline adds one line entity passing through the given point tags
func (g *Geometry) AddPolyline(points ...int) int {
	if len(points) < 2 {
		return g.fail("line needs at least 2 points, got %d", len(points))
	}
	idx := make([]int, len(points))
	for i, tag := range points {
		if tag < 1 || tag > len(g.points) {
			return g.fail("unknown point tag %d", tag)
		}
		idx[i] = tag - 1
		if i > 0 && idx[i] == idx[i-1] {
			return g.fail("line repeats point tag %d", tag)
		}
	}
	g.lines = append(g.lines, idx)
	return len(g.lines)
}

// AddLineLoop adds a closed chain of lines
func (g *Geometry) AddLineLoop(lines ...int) int {
	if len(lines) == 0 {
		return g.fail("empty line loop")
	}
	for _, tag := range lines {
		if tag == 0 || abs(tag) > len(g.lines) {
			return g.fail("unknown line tag %d", tag)
		}
	}
	for i, tag := range lines {
		next := lines[(i+1)%len(lines)]
		end := g.oriented(tag)
		start := g.oriented(next)
		if end[len(end)-1] != start[0] {
			return g.fail("line %d does not connect to line %d", tag, next)
		}
	}
	g.loops = append(g.loops, append([]int(nil), lines...))
	return len(g.loops)
}

// AddSurface adds a plane surface bounded by a line loop
func (g *Geometry) AddSurface(loop int) int {
	if loop < 1 || loop > len(g.loops) {
		return g.fail("unknown line loop tag %d", loop)
	}
	g.surfaces = append(g.surfaces, &geoSurface{loop: loop - 1})
	return len(g.surfaces)
}

func (g *Geometry) surface(tag int) *geoSurface {
	if tag < 1 || tag > len(g.surfaces) {
		g.fail("unknown surface tag %d", tag)
		return nil
	}
	return g.surfaces[tag-1]
}

// SetTransfinite requests a structured nx by ny node grid on a surface whose
// loop has four lines; nx nodes run along the first and third lines.
func (g *Geometry) SetTransfinite(surface, nx, ny int) {
	s := g.surface(surface)
	if s == nil {
		return
	}
	if nx < 2 || ny < 2 {
		g.fail("transfinite surface %d needs at least 2x2 nodes, got %dx%d", surface, nx, ny)
		return
	}
	s.transfinite, s.nx, s.ny = true, nx, ny
}

// Recombine requests quadrilaterals instead of triangles on a surface
func (g *Geometry) Recombine(surface int) {
	if s := g.surface(surface); s != nil {
		s.recombine = true
	}
}

// SetAlgorithm selects the unstructured meshing algorithm
func (g *Geometry) SetAlgorithm(a Algorithm) {
	if a > DelaunayNoSmoothing {
		g.fail("unknown algorithm %d", a)
		return
	}
	g.algorithm = a
}

// oriented returns the point indices of a signed line tag
func (g *Geometry) oriented(tag int) []int {
	pts := g.lines[abs(tag)-1]
	if tag > 0 {
		return pts
	}
	rev := make([]int, len(pts))
	for i, p := range pts {
		rev[len(pts)-1-i] = p
	}
	return rev
}

// Generate meshes every surface. Surfaces are meshed independently and may
// not share lines.
func (g *Geometry) Generate() (*Mesh, error) {
	if g.err != nil {
		return nil, g.err
	}
	if len(g.surfaces) == 0 {
		return nil, fmt.Errorf("%w: no surfaces to mesh", ErrDegenerate)
	}
	maxNodes := g.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	used := make(map[int]int)
	for i, s := range g.surfaces {
		for _, tag := range g.loops[s.loop] {
			if j, ok := used[abs(tag)]; ok && j != i {
				return nil, fmt.Errorf("%w: surfaces %d and %d share line %d",
					ErrUnsupported, j+1, i+1, abs(tag))
			}
			used[abs(tag)] = i
		}
	}

	var (
		points []r2.Vec
		cells  [numCellTypes][][]int
	)
	for i, s := range g.surfaces {
		curves := make([][]int, 0, len(g.loops[s.loop]))
		for _, tag := range g.loops[s.loop] {
			curves = append(curves, g.oriented(tag))
		}
		var (
			p   *patch
			err error
		)
		switch {
		case s.transfinite:
			p, err = g.transfinite(curves, s)
		case s.recombine:
			err = fmt.Errorf("%w: recombination of unstructured surface %d", ErrUnsupported, i+1)
		default:
			p, err = g.unstructured(curves, maxNodes-len(points))
		}
		if err != nil {
			return nil, fmt.Errorf("surface %d: %w", i+1, err)
		}
		offset := len(points)
		points = append(points, p.pts...)
		for t := range p.cells {
			for _, c := range p.cells[t] {
				conn := make([]int, len(c))
				for k, v := range c {
					conn[k] = v + offset
				}
				cells[t] = append(cells[t], conn)
			}
		}
		if len(points) > maxNodes {
			return nil, fmt.Errorf("%w: %d nodes exceed the budget of %d", ErrDegenerate, len(points), maxNodes)
		}
	}

	var blocks []CellBlock
	for t := range cells {
		if len(cells[t]) > 0 {
			blocks = append(blocks, CellBlock{Type: CellType(t), Conn: cells[t]})
		}
	}
	return New(points, blocks), nil
}

// patch is the mesh of a single surface
type patch struct {
	pts   []r2.Vec
	cells [numCellTypes][][]int
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
