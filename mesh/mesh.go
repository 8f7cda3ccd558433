// Package mesh generates two-dimensional meshes from a point, line and
// surface description: structured transfinite patches and graded Delaunay
// triangulations driven by per-point target sizes.
package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrDegenerate is returned for geometry that cannot be meshed
	ErrDegenerate = errors.New("degenerate mesh geometry")
	// ErrDataLength is returned when point data does not match the node count
	ErrDataLength = errors.New("point data length does not match node count")
	// ErrUnsupported is returned for meshing directives without an implementation
	ErrUnsupported = errors.New("unsupported meshing directive")
)

// Mesh is a set of nodes, cells over those nodes and named per-node data
type Mesh struct {
	Points *mat.Dense  // NumPoints x 3, z is zero for planar meshes
	Cells  []CellBlock // Blocks in output order

	data  map[string][]float64
	names []string // Data names in insertion order
}

// New builds a planar mesh from node positions and cells
func New(points []r2.Vec, cells []CellBlock) *Mesh {
	m := &Mesh{Cells: cells, data: make(map[string][]float64)}
	if len(points) > 0 {
		m.Points = mat.NewDense(len(points), 3, nil)
		for i, p := range points {
			m.Points.Set(i, 0, p.X)
			m.Points.Set(i, 1, p.Y)
		}
	}
	return m
}

// NumPoints returns the node count
func (m *Mesh) NumPoints() int {
	if m.Points == nil {
		return 0
	}
	r, _ := m.Points.Dims()
	return r
}

// Point returns the planar position of node i
func (m *Mesh) Point(i int) r2.Vec {
	return r2.Vec{X: m.Points.At(i, 0), Y: m.Points.At(i, 1)}
}

// CellsOfType returns the connectivity of every cell of type t
func (m *Mesh) CellsOfType(t CellType) [][]int {
	var conn [][]int
	for _, b := range m.Cells {
		if b.Type == t {
			conn = append(conn, b.Conn...)
		}
	}
	return conn
}

// NumCells returns the count of cells of type t
func (m *Mesh) NumCells(t CellType) int {
	n := 0
	for _, b := range m.Cells {
		if b.Type == t {
			n += len(b.Conn)
		}
	}
	return n
}

// SetPointData attaches one value per node under name, replacing any
// earlier array of the same name.
func (m *Mesh) SetPointData(name string, values []float64) error {
	if len(values) != m.NumPoints() {
		return fmt.Errorf("%w: %q has %d values for %d nodes",
			ErrDataLength, name, len(values), m.NumPoints())
	}
	if m.data == nil {
		m.data = make(map[string][]float64)
	}
	if _, ok := m.data[name]; !ok {
		m.names = append(m.names, name)
	}
	m.data[name] = values
	return nil
}

// PointData returns the array stored under name
func (m *Mesh) PointData(name string) ([]float64, bool) {
	v, ok := m.data[name]
	return v, ok
}

// DataNames returns the point data names in insertion order
func (m *Mesh) DataNames() []string {
	return append([]string(nil), m.names...)
}
