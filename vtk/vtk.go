// Package vtk writes meshes with per-node data as legacy VTK unstructured
// grid files.
package vtk

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/notargets/proptable/mesh"
)

// ErrWrite is returned when the mesh cannot be serialized
var ErrWrite = errors.New("vtk write failed")

// Legacy VTK cell type codes
var cellCodes = map[mesh.CellType]int32{
	mesh.Vertex:   1,
	mesh.Line:     3,
	mesh.Triangle: 5,
	mesh.Quad:     9,
}

const header = "# vtk DataFile Version 4.2\nwritten by proptable\n"

// WriteFile writes the mesh to path, replacing any existing file
func WriteFile(path string, m *mesh.Mesh, binaryMode bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %v", ErrWrite, path, cerr)
		}
	}()
	return Write(f, m, binaryMode)
}

// Write serializes the mesh: POINTS, CELLS, CELL_TYPES and a POINT_DATA
// field array for each data name in insertion order. Binary mode writes
// big-endian values as the legacy format requires.
func Write(w io.Writer, m *mesh.Mesh, binaryMode bool) error {
	if m == nil || m.NumPoints() == 0 {
		return fmt.Errorf("%w: mesh has no points", ErrWrite)
	}
	np := m.NumPoints()
	var (
		ncells, size int
	)
	for _, b := range m.Cells {
		if _, ok := cellCodes[b.Type]; !ok {
			return fmt.Errorf("%w: no VTK code for cell type %s", ErrWrite, b.Type)
		}
		for k, conn := range b.Conn {
			for _, v := range conn {
				if v < 0 || v >= np {
					return fmt.Errorf("%w: %s cell %d refers to node %d of %d", ErrWrite, b.Type, k, v, np)
				}
			}
			ncells++
			size += len(conn) + 1
		}
	}
	names := m.DataNames()
	for _, name := range names {
		if !validName(name) {
			return fmt.Errorf("%w: array name %q is empty or contains whitespace", ErrWrite, name)
		}
	}

	ew := &encoder{w: bufio.NewWriter(w), binary: binaryMode}
	ew.text(header)
	if binaryMode {
		ew.text("BINARY\n")
	} else {
		ew.text("ASCII\n")
	}
	ew.text("DATASET UNSTRUCTURED_GRID\n")

	ew.text(fmt.Sprintf("POINTS %d double\n", np))
	row := make([]float64, 3)
	for i := 0; i < np; i++ {
		row[0], row[1], row[2] = m.Points.At(i, 0), m.Points.At(i, 1), m.Points.At(i, 2)
		ew.floats(row)
	}
	ew.end()

	ew.text(fmt.Sprintf("CELLS %d %d\n", ncells, size))
	for _, b := range m.Cells {
		for _, conn := range b.Conn {
			rec := make([]int32, 0, len(conn)+1)
			rec = append(rec, int32(len(conn)))
			for _, v := range conn {
				rec = append(rec, int32(v))
			}
			ew.ints(rec)
		}
	}
	ew.end()

	ew.text(fmt.Sprintf("CELL_TYPES %d\n", ncells))
	for _, b := range m.Cells {
		code := []int32{cellCodes[b.Type]}
		for range b.Conn {
			ew.ints(code)
		}
	}
	ew.end()

	if len(names) > 0 {
		ew.text(fmt.Sprintf("POINT_DATA %d\nFIELD FieldData %d\n", np, len(names)))
		for _, name := range names {
			values, _ := m.PointData(name)
			ew.text(fmt.Sprintf("%s 1 %d double\n", name, np))
			for _, v := range values {
				ew.floats([]float64{v})
			}
			ew.end()
		}
	}

	if ew.err == nil {
		ew.err = ew.w.Flush()
	}
	if ew.err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, ew.err)
	}
	return nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return false
		}
	}
	return true
}

// encoder writes records in either text or big-endian binary form and
// keeps the first error.
type encoder struct {
	w      *bufio.Writer
	binary bool
	err    error
	buf    []byte
}

func (e *encoder) text(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *encoder) floats(v []float64) {
	if e.err != nil {
		return
	}
	e.buf = e.buf[:0]
	if e.binary {
		for _, x := range v {
			e.buf = binary.BigEndian.AppendUint64(e.buf, math.Float64bits(x))
		}
	} else {
		for i, x := range v {
			if i > 0 {
				e.buf = append(e.buf, ' ')
			}
			e.buf = strconv.AppendFloat(e.buf, x, 'g', -1, 64)
		}
		e.buf = append(e.buf, '\n')
	}
	_, e.err = e.w.Write(e.buf)
}

func (e *encoder) ints(v []int32) {
	if e.err != nil {
		return
	}
	e.buf = e.buf[:0]
	if e.binary {
		for _, x := range v {
			e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(x))
		}
	} else {
		for i, x := range v {
			if i > 0 {
				e.buf = append(e.buf, ' ')
			}
			e.buf = strconv.AppendInt(e.buf, int64(x), 10)
		}
		e.buf = append(e.buf, '\n')
	}
	_, e.err = e.w.Write(e.buf)
}

// end closes a binary section with the newline the legacy readers expect
func (e *encoder) end() {
	if e.binary {
		e.text("\n")
	}
}
