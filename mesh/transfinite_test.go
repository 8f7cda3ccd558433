package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectangle(x0, x1, y0, y1 float64, reverse bool) (*Geometry, int) {
	g := NewGeometry()
	c1 := g.AddPoint(x0, y0, 0)
	c2 := g.AddPoint(x1, y0, 0)
	c3 := g.AddPoint(x1, y1, 0)
	c4 := g.AddPoint(x0, y1, 0)
	var loop int
	if reverse {
		loop = g.AddLineLoop(g.AddLine(c1, c4), g.AddLine(c4, c3), g.AddLine(c3, c2), g.AddLine(c2, c1))
	} else {
		loop = g.AddLineLoop(g.AddLine(c1, c2), g.AddLine(c2, c3), g.AddLine(c3, c4), g.AddLine(c4, c1))
	}
	return g, g.AddSurface(loop)
}

func TestTransfiniteRectangle(t *testing.T) {
	x0, x1 := math.Log10(0.001), math.Log10(290.0)
	y0, y1 := 400.0, 650.0
	nx, ny := 100, 10

	g, s := rectangle(x0, x1, y0, y1, false)
	g.SetTransfinite(s, nx, ny)
	g.Recombine(s)
	g.SetAlgorithm(DelaunayNoSmoothing)
	m, err := g.Generate()
	require.NoError(t, err)

	require.Equal(t, nx*ny, m.NumPoints())
	assert.Equal(t, (nx-1)*(ny-1), m.NumCells(Quad))
	assert.Equal(t, 0, m.NumCells(Triangle))
	assert.Equal(t, 2*(nx-1)+2*(ny-1), m.NumCells(Line))
	assert.Equal(t, 4, m.NumCells(Vertex))

	dx, dy := (x1-x0)/float64(nx-1), (y1-y0)/float64(ny-1)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			p := m.Point(j*nx + i)
			if math.Abs(p.X-(x0+float64(i)*dx)) > 1e-12 || math.Abs(p.Y-(y0+float64(j)*dy)) > 1e-9 {
				t.Fatalf("node (%d, %d) at %v", i, j, p)
			}
		}
	}

	conn, err := NewConnectivity(m)
	require.NoError(t, err)
	require.NoError(t, conn.Validate(m))
	assert.InEpsilon(t, (x1-x0)*(y1-y0), conn.Area(m), 1e-12)
	assert.Len(t, conn.BoundaryEdges, m.NumCells(Line))
}

func TestTransfiniteTriangles(t *testing.T) {
	g, s := rectangle(0, 1, 0, 2, true)
	g.SetTransfinite(s, 5, 4)
	m, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, 20, m.NumPoints())
	assert.Equal(t, 2*4*3, m.NumCells(Triangle))

	conn, err := NewConnectivity(m)
	require.NoError(t, err)
	// A clockwise loop still yields counter-clockwise cells
	require.NoError(t, conn.Validate(m))
	assert.InEpsilon(t, 2.0, conn.Area(m), 1e-12)
}

func TestTransfiniteCurvedBoundary(t *testing.T) {
	// Quarter annulus with polyline arcs
	g := NewGeometry()
	arc := func(r float64, reverse bool) []int {
		var tags []int
		for k := 0; k <= 16; k++ {
			th := math.Pi / 2 * float64(k) / 16
			if reverse {
				th = math.Pi/2 - th
			}
			tags = append(tags, g.AddPoint(r*math.Cos(th), r*math.Sin(th), 0))
		}
		return tags
	}
	inner := arc(1, false)
	outer := arc(2, true)
	l1 := g.AddPolyline(inner...)
	l2 := g.AddLine(inner[len(inner)-1], outer[0])
	l3 := g.AddPolyline(outer...)
	l4 := g.AddLine(outer[len(outer)-1], inner[0])
	s := g.AddSurface(g.AddLineLoop(l1, l2, l3, l4))
	g.SetTransfinite(s, 20, 6)
	g.Recombine(s)
	m, err := g.Generate()
	require.NoError(t, err)

	conn, err := NewConnectivity(m)
	require.NoError(t, err)
	require.NoError(t, conn.Validate(m))
	for i := 0; i < m.NumPoints(); i++ {
		p := m.Point(i)
		r := math.Hypot(p.X, p.Y)
		if r < math.Cos(math.Pi/64)-1e-9 || r > 2+1e-9 {
			t.Errorf("node %d at radius %g", i, r)
		}
	}
}

func TestTransfiniteErrors(t *testing.T) {
	t.Run("CoincidentCorners", func(t *testing.T) {
		g := NewGeometry()
		c1 := g.AddPoint(0, 0, 0)
		c2 := g.AddPoint(1, 0, 0)
		c3 := g.AddPoint(1, 0, 0)
		c4 := g.AddPoint(0, 1, 0)
		s := g.AddSurface(g.AddLineLoop(g.AddLine(c1, c2), g.AddLine(c2, c3), g.AddLine(c3, c4), g.AddLine(c4, c1)))
		g.SetTransfinite(s, 3, 3)
		_, err := g.Generate()
		assert.ErrorIs(t, err, ErrDegenerate)
	})
	t.Run("ThreeSides", func(t *testing.T) {
		g := NewGeometry()
		c1 := g.AddPoint(0, 0, 0)
		c2 := g.AddPoint(1, 0, 0)
		c3 := g.AddPoint(0, 1, 0)
		s := g.AddSurface(g.AddLineLoop(g.AddLine(c1, c2), g.AddLine(c2, c3), g.AddLine(c3, c1)))
		g.SetTransfinite(s, 3, 3)
		_, err := g.Generate()
		assert.ErrorIs(t, err, ErrDegenerate)
	})
	t.Run("TooFewNodes", func(t *testing.T) {
		g, s := rectangle(0, 1, 0, 1, false)
		g.SetTransfinite(s, 1, 3)
		_, err := g.Generate()
		if !errors.Is(err, ErrDegenerate) {
			t.Errorf("Expected ErrDegenerate, got %v", err)
		}
	})
}
