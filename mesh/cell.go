package mesh

import "fmt"

// CellType identifies the shape of a mesh cell
type CellType uint8

const (
	Vertex   CellType = iota // Point cell at a geometry point
	Line                     // Boundary segment
	Triangle                 // Counter-clockwise triangle
	Quad                     // Counter-clockwise quadrilateral

	numCellTypes
)

var cellTypeNames = [...]string{
	Vertex:   "vertex",
	Line:     "line",
	Triangle: "triangle",
	Quad:     "quad",
}

func (c CellType) String() string {
	if c < numCellTypes {
		return cellTypeNames[c]
	}
	return fmt.Sprintf("CellType(%d)", uint8(c))
}

// NumNodes is the number of nodes defining a cell of this type
func (c CellType) NumNodes() int {
	switch c {
	case Vertex:
		return 1
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad:
		return 4
	}
	return 0
}

// Dimension is the topological dimension of the cell
func (c CellType) Dimension() int {
	switch c {
	case Line:
		return 1
	case Triangle, Quad:
		return 2
	}
	return 0
}

// CellBlock holds cells of a single type
type CellBlock struct {
	Type CellType
	Conn [][]int // Conn[k] lists the node indices of cell k
}
