// Package table assembles thermodynamic property tables: it meshes a domain
// of the density-temperature plane, evaluates the property service at every
// node and writes the result as a VTK file.
package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/proptable/mesh"
	"github.com/notargets/proptable/thermo"
	"github.com/notargets/proptable/vtk"
)

// ErrNotCreated is returned when writing a table that was never built
var ErrNotCreated = errors.New("table has not been created")

// Table is a property table over a meshed domain
type Table struct {
	Domain    Domain
	Evaluator thermo.Evaluator

	Workers  int      // Concurrent evaluation partitions, 1 when zero
	Strategy Strategy // Node to partition assignment
	Log      logrus.FieldLogger

	Mesh *mesh.Mesh // Set by Create
}

// New returns a single worker table for domain d
func New(d Domain, ev thermo.Evaluator) *Table {
	return &Table{Domain: d, Evaluator: ev, Workers: 1, Log: logrus.StandardLogger()}
}

func (t *Table) logger() logrus.FieldLogger {
	if t.Log == nil {
		return logrus.StandardLogger()
	}
	return t.Log
}

// Create meshes the domain, attaches one array per requested property in
// node order and converts the coordinates for output. On error the table
// keeps no mesh.
func (t *Table) Create(ctx context.Context, props []string) error {
	t.Mesh = nil
	if err := checkProperties(props); err != nil {
		return err
	}
	g, err := t.Domain.Geometry()
	if err != nil {
		return fmt.Errorf("building geometry: %w", err)
	}
	start := time.Now()
	m, err := g.Generate()
	if err != nil {
		return fmt.Errorf("generating mesh: %w", err)
	}
	t.logger().WithFields(logrus.Fields{
		"nodes":     m.NumPoints(),
		"triangles": m.NumCells(mesh.Triangle),
		"quads":     m.NumCells(mesh.Quad),
		"elapsed":   time.Since(start).Round(time.Millisecond),
	}).Info("mesh generated")

	if err := t.Evaluate(ctx, m, t.Domain, props); err != nil {
		return err
	}
	t.Domain.Finalize(m)
	t.Mesh = m
	return nil
}

// Evaluate computes the requested properties at every node of m, reading
// node coordinates through c, and stores them as point data.
func (t *Table) Evaluate(ctx context.Context, m *mesh.Mesh, c Coordinates, props []string) error {
	if err := checkProperties(props); err != nil {
		return err
	}
	conn, err := mesh.NewConnectivity(m)
	if err != nil {
		return err
	}
	if err := conn.Validate(m); err != nil {
		return err
	}

	workers := t.Workers
	if workers < 1 {
		workers = 1
	}
	layout, err := BuildLayout(m.NumPoints(), workers, t.Strategy)
	if err != nil {
		return err
	}
	log := t.logger().WithFields(logrus.Fields{
		"fluid":      t.Evaluator.Fluid,
		"nodes":      layout.TotalNodes,
		"partitions": layout.NumPartitions,
		"strategy":   t.Strategy,
	})
	log.Info("evaluating properties")
	start := time.Now()

	points := make([]thermo.Point, layout.TotalNodes)
	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range layout.Partitions {
		eg.Go(func() error {
			local := make([]thermo.Point, p.NumNodes)
			for i, node := range p.Nodes {
				if err := ctx.Err(); err != nil {
					return err
				}
				x := m.Point(node)
				D, T := c.Physical(x.X, x.Y)
				pt, err := t.Evaluator.Evaluate(D, T)
				if err != nil {
					return fmt.Errorf("node %d (D=%g, T=%g): %w", node, D, T, err)
				}
				local[i] = pt
			}
			// Place partition results at their global node positions
			for i, node := range p.Nodes {
				points[node] = local[i]
			}
			log.WithFields(logrus.Fields{"partition": p.ID, "nodes": p.NumNodes}).Debug("partition done")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, name := range props {
		values := make([]float64, len(points))
		for i, pt := range points {
			values[i], _ = pt.Get(name)
		}
		if err := m.SetPointData(name, values); err != nil {
			return err
		}
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("properties evaluated")
	return nil
}

// Write saves the table to path as legacy VTK, in text mode unless binary
// is set.
func (t *Table) Write(path string, binary bool) error {
	if t.Mesh == nil {
		return ErrNotCreated
	}
	if err := vtk.WriteFile(path, t.Mesh, binary); err != nil {
		return err
	}
	t.logger().WithFields(logrus.Fields{"path": path, "binary": binary}).Info("table written")
	return nil
}

func checkProperties(props []string) error {
	if len(props) == 0 {
		return fmt.Errorf("%w: no properties requested", thermo.ErrUnknownProperty)
	}
	for _, name := range props {
		if _, err := (thermo.Point{}).Get(name); err != nil {
			return err
		}
	}
	return nil
}
