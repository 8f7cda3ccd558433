package vtk

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/proptable/mesh"
)

func squareMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	m := mesh.New(
		[]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		[]mesh.CellBlock{
			{Type: mesh.Vertex, Conn: [][]int{{0}}},
			{Type: mesh.Line, Conn: [][]int{{0, 1}, {1, 2}}},
			{Type: mesh.Triangle, Conn: [][]int{{0, 1, 2}, {0, 2, 3}}},
		})
	require.NoError(t, m.SetPointData("P", []float64{1, 2.5, 1e6, -3}))
	require.NoError(t, m.SetPointData("H", []float64{0, 0, 0, 0}))
	return m
}

func TestWriteASCII(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, squareMesh(t), false))
	want := `# vtk DataFile Version 4.2
written by proptable
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 double
0 0 0
1 0 0
1 1 0
0 1 0
CELLS 5 16
1 0
2 0 1
2 1 2
3 0 1 2
3 0 2 3
CELL_TYPES 5
1
3
3
5
5
POINT_DATA 4
FIELD FieldData 2
P 1 4 double
1
2.5
1e+06
-3
H 1 4 double
0
0
0
0
`
	assert.Equal(t, want, buf.String())
}

func TestWriteBinary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, squareMesh(t), true))
	r := bufio.NewReader(&buf)

	line := func() string {
		s, err := r.ReadString('\n')
		require.NoError(t, err)
		return strings.TrimSuffix(s, "\n")
	}
	assert.Equal(t, "# vtk DataFile Version 4.2", line())
	line()
	assert.Equal(t, "BINARY", line())
	assert.Equal(t, "DATASET UNSTRUCTURED_GRID", line())
	assert.Equal(t, "POINTS 4 double", line())
	pts := make([]float64, 12)
	require.NoError(t, binary.Read(r, binary.BigEndian, pts))
	assert.Equal(t, []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, pts)
	assert.Equal(t, "", line())

	assert.Equal(t, "CELLS 5 16", line())
	cells := make([]int32, 16)
	require.NoError(t, binary.Read(r, binary.BigEndian, cells))
	assert.Equal(t, []int32{1, 0, 2, 0, 1, 2, 1, 2, 3, 0, 1, 2, 3, 0, 2, 3}, cells)
	assert.Equal(t, "", line())

	assert.Equal(t, "CELL_TYPES 5", line())
	types := make([]int32, 5)
	require.NoError(t, binary.Read(r, binary.BigEndian, types))
	assert.Equal(t, []int32{1, 3, 3, 5, 5}, types)
	assert.Equal(t, "", line())

	assert.Equal(t, "POINT_DATA 4", line())
	assert.Equal(t, "FIELD FieldData 2", line())
	assert.Equal(t, "P 1 4 double", line())
	p := make([]float64, 4)
	require.NoError(t, binary.Read(r, binary.BigEndian, p))
	assert.Equal(t, []float64{1, 2.5, 1e6, -3}, p)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.vtk")
	m := squareMesh(t)
	require.NoError(t, WriteFile(path, m, false))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, false))
	assert.Equal(t, buf.Bytes(), b)

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "table.vtk"), m, false)
	assert.ErrorIs(t, err, ErrWrite)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteErrors(t *testing.T) {
	bad := mesh.New([]r2.Vec{{X: 0, Y: 0}}, []mesh.CellBlock{{Type: mesh.Line, Conn: [][]int{{0, 4}}}})
	unnamed := mesh.New([]r2.Vec{{X: 0, Y: 0}}, nil)
	require.NoError(t, unnamed.SetPointData("two words", []float64{math.Pi}))

	tests := []struct {
		name string
		w    func() error
	}{
		{"EmptyMesh", func() error { return Write(&bytes.Buffer{}, mesh.New(nil, nil), false) }},
		{"NodeIndex", func() error { return Write(&bytes.Buffer{}, bad, false) }},
		{"CellType", func() error {
			m := mesh.New([]r2.Vec{{X: 0, Y: 0}}, []mesh.CellBlock{{Type: mesh.CellType(42), Conn: [][]int{{0}}}})
			return Write(&bytes.Buffer{}, m, false)
		}},
		{"ArrayName", func() error { return Write(&bytes.Buffer{}, unnamed, true) }},
		{"Writer", func() error { return Write(failingWriter{}, squareMesh(t), false) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.w(), ErrWrite)
		})
	}
}
