package mesh

import (
	"fmt"
	"os"

	"github.com/notargets/gocfd/DG3D/mesh/readers"
	"gonum.org/v1/gonum/spatial/r2"
)

// ReadExternal loads a mesh written by an external generator (gmsh, gambit
// or su2 formats) through the gocfd readers. Every vertex must lie in
// the z = 0 plane.
func ReadExternal(path string) (*Mesh, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading mesh: %w", err)
	}
	msh, err := readers.ReadMeshFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh %s: %w", path, err)
	}
	verts := make([][3]float64, len(msh.Vertices))
	for i := range msh.Vertices {
		v := msh.Vertices[i]
		verts[i] = [3]float64{v[0], v[1], v[2]}
	}
	elems := make([][]int, len(msh.EtoV))
	for k := range msh.EtoV {
		elems[k] = make([]int, len(msh.EtoV[k]))
		copy(elems[k], msh.EtoV[k][:])
	}
	m, err := fromElements(verts, elems)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", path, err)
	}
	return m, nil
}

// fromElements converts vertex and element lists into a planar Mesh. Cell
// types follow the node count: 1 vertex, 2 line, 3 triangle, 4 quad.
// Surface cells are reordered counter-clockwise.
func fromElements(verts [][3]float64, elems [][]int) (*Mesh, error) {
	pts := make([]r2.Vec, len(verts))
	for i, v := range verts {
		if v[2] != 0 {
			return nil, fmt.Errorf("%w: vertex %d is off the plane, z=%g", ErrUnsupported, i, v[2])
		}
		pts[i] = r2.Vec{X: v[0], Y: v[1]}
	}
	var cells [numCellTypes][][]int
	for k, e := range elems {
		var t CellType
		switch len(e) {
		case 1:
			t = Vertex
		case 2:
			t = Line
		case 3:
			t = Triangle
		case 4:
			t = Quad
		default:
			return nil, fmt.Errorf("%w: element %d has %d nodes", ErrUnsupported, k, len(e))
		}
		conn := append([]int(nil), e...)
		for _, v := range conn {
			if v < 0 || v >= len(pts) {
				return nil, fmt.Errorf("%w: element %d refers to vertex %d of %d", ErrDegenerate, k, v, len(pts))
			}
		}
		if t.Dimension() == 2 {
			poly := make([]r2.Vec, len(conn))
			for i, v := range conn {
				poly[i] = pts[v]
			}
			if polygonArea(poly) < 0 {
				for a, b := 0, len(conn)-1; a < b; a, b = a+1, b-1 {
					conn[a], conn[b] = conn[b], conn[a]
				}
			}
		}
		cells[t] = append(cells[t], conn)
	}
	var blocks []CellBlock
	for t := range cells {
		if len(cells[t]) > 0 {
			blocks = append(blocks, CellBlock{Type: CellType(t), Conn: cells[t]})
		}
	}
	return New(pts, blocks), nil
}
