package ebsdio

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/fsutil"
)

// WriteElements exports every non-void cell as one row of
// x,y,grain_id,phi_1,Phi,phi_2 in row-major order. With degrees set the
// angles convert on the way out; the file then re-imports to the same
// assignment within rounding tolerance.
func WriteElements(fsys fsutil.FileSystem, path string, g *ebsd.Grid, degrees bool) error {
	w, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create elements export: %w", err)
	}
	defer w.Close()

	cw := csv.NewWriter(w)
	h := DefaultHeaders
	if err := cw.Write([]string{h.X, h.Y, h.GrainID, h.Phi1, h.Phi, h.Phi2}); err != nil {
		return err
	}
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			c := g.At(row, col)
			if c.Void() {
				continue
			}
			p1, p, p2 := c.Orientation.Phi1, c.Orientation.Phi, c.Orientation.Phi2
			if degrees {
				p1, p, p2 = c.Orientation.Deg()
			}
			rec := []string{
				ftoa(g.Lattice.X(col)),
				ftoa(g.Lattice.Y(row)),
				strconv.Itoa(c.GrainID),
				ftoa(p1), ftoa(p), ftoa(p2),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGrains exports one row per grain: id, quaternion-mean orientation,
// cell count and area, ordered by ascending id.
func WriteGrains(fsys fsutil.FileSystem, path string, g *ebsd.Grid, r *ebsd.Registry, degrees bool) error {
	w, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create grains export: %w", err)
	}
	defer w.Close()

	cw := csv.NewWriter(w)
	h := DefaultHeaders
	if err := cw.Write([]string{h.GrainID, h.Phi1, h.Phi, h.Phi2, "cells", "area"}); err != nil {
		return err
	}
	for _, id := range r.IDs() {
		mean := GrainOrientation(g, r, id)
		p1, p, p2 := mean.Phi1, mean.Phi, mean.Phi2
		if degrees {
			p1, p, p2 = mean.Deg()
		}
		rec := []string{
			strconv.Itoa(id),
			ftoa(p1), ftoa(p), ftoa(p2),
			strconv.Itoa(r.Count(id)),
			ftoa(r.Area(id)),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GrainOrientation returns the quaternion-mean orientation of a grain's
// member cells.
func GrainOrientation(g *ebsd.Grid, r *ebsd.Registry, id int) ebsd.Euler {
	idxs := r.CellsOf(id)
	orients := make([]ebsd.Euler, len(idxs))
	for i, idx := range idxs {
		orients[i] = g.Cells[idx].Orientation
	}
	return ebsd.AverageEuler(orients)
}

// WriteBounds exports the non-void extent as a single x_min,x_max,y_min,y_max
// row. An all-void grid exports zeros.
func WriteBounds(fsys fsutil.FileSystem, path string, g *ebsd.Grid) error {
	w, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create bounds export: %w", err)
	}
	defer w.Close()

	b, _ := g.Bounds()
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x_min", "x_max", "y_min", "y_max"}); err != nil {
		return err
	}
	if err := cw.Write([]string{ftoa(b.XMin), ftoa(b.XMax), ftoa(b.YMin), ftoa(b.YMax)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ftoa formats a float with the shortest representation that parses back to
// the same value, so exports round-trip exactly.
func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
