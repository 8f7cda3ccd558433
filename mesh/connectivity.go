package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Edge is an undirected node pair with Edge[0] < Edge[1]
type Edge [2]int

// NewEdge orders the node pair
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// Connectivity relates the surface cells of a mesh through shared edges
type Connectivity struct {
	NumPoints int
	Cells     [][]int // Surface cells (triangles and quads) in block order

	// Edge topology
	Edges     []Edge  // Unique edges in first-seen order
	EdgeCells [][]int // Cells sharing each edge

	// Boundary
	BoundaryEdges []Edge // Edges owned by a single cell
	OnBoundary    []bool // Node lies on a boundary edge

	// Node to cell adjacency
	PointCells [][]int
}

// NewConnectivity builds the edge and node adjacency of the surface cells
func NewConnectivity(m *Mesh) (*Connectivity, error) {
	np := m.NumPoints()
	c := &Connectivity{
		NumPoints:  np,
		OnBoundary: make([]bool, np),
		PointCells: make([][]int, np),
	}
	for _, b := range m.Cells {
		if b.Type.Dimension() != 2 {
			continue
		}
		for _, conn := range b.Conn {
			if len(conn) != b.Type.NumNodes() {
				return nil, fmt.Errorf("%w: %s cell with %d nodes", ErrDegenerate, b.Type, len(conn))
			}
			c.Cells = append(c.Cells, conn)
		}
	}
	if len(c.Cells) == 0 {
		return nil, fmt.Errorf("%w: mesh has no surface cells", ErrDegenerate)
	}

	edgeIndex := make(map[Edge]int)
	for k, conn := range c.Cells {
		for i, v := range conn {
			if v < 0 || v >= np {
				return nil, fmt.Errorf("%w: cell %d refers to node %d of %d", ErrDegenerate, k, v, np)
			}
			c.PointCells[v] = append(c.PointCells[v], k)

			e := NewEdge(v, conn[(i+1)%len(conn)])
			idx, ok := edgeIndex[e]
			if !ok {
				idx = len(c.Edges)
				edgeIndex[e] = idx
				c.Edges = append(c.Edges, e)
				c.EdgeCells = append(c.EdgeCells, nil)
			}
			c.EdgeCells[idx] = append(c.EdgeCells[idx], k)
		}
	}

	for i, e := range c.Edges {
		if len(c.EdgeCells[i]) == 1 {
			c.BoundaryEdges = append(c.BoundaryEdges, e)
			c.OnBoundary[e[0]] = true
			c.OnBoundary[e[1]] = true
		}
	}
	return c, nil
}

// SignedArea returns the shoelace area of a cell, positive when its nodes run
// counter-clockwise.
func SignedArea(m *Mesh, conn []int) float64 {
	poly := make([]r2.Vec, len(conn))
	for i, v := range conn {
		poly[i] = m.Point(v)
	}
	return polygonArea(poly)
}

// Validate checks that the surface cells form a conforming, positively
// oriented mesh: every edge is shared by at most two cells, every node is
// used, and boundary nodes close into loops.
func (c *Connectivity) Validate(m *Mesh) error {
	for k, conn := range c.Cells {
		if a := SignedArea(m, conn); !(a > 0) {
			return fmt.Errorf("%w: cell %d has area %g", ErrDegenerate, k, a)
		}
	}
	for i, cells := range c.EdgeCells {
		if len(cells) > 2 {
			return fmt.Errorf("%w: edge %v shared by %d cells", ErrDegenerate, c.Edges[i], len(cells))
		}
	}
	for v, cells := range c.PointCells {
		if len(cells) == 0 {
			return fmt.Errorf("%w: node %d belongs to no cell", ErrDegenerate, v)
		}
	}
	degree := make([]int, c.NumPoints)
	for _, e := range c.BoundaryEdges {
		degree[e[0]]++
		degree[e[1]]++
	}
	for v, d := range degree {
		if c.OnBoundary[v] && d != 2 {
			return fmt.Errorf("%w: boundary node %d has %d boundary edges", ErrDegenerate, v, d)
		}
	}
	return nil
}

// Area returns the total area of the surface cells
func (c *Connectivity) Area(m *Mesh) float64 {
	var a float64
	for _, conn := range c.Cells {
		a += SignedArea(m, conn)
	}
	return a
}
