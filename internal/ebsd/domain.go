package ebsd

import "fmt"

// Bounds is the axis-aligned physical extent of the non-void cells,
// edge-based: XMax sits one step past the last occupied column.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Width returns XMax - XMin.
func (b Bounds) Width() float64 { return b.XMax - b.XMin }

// Height returns YMax - YMin.
func (b Bounds) Height() float64 { return b.YMax - b.YMin }

func (b Bounds) overlaps(o Bounds) bool {
	return b.XMin < o.XMax && b.XMax > o.XMin && b.YMin < o.YMax && b.YMax > o.YMin
}

// Bounds returns the extent of the non-void cells. ok is false for an
// all-void grid.
func (g *Grid) Bounds() (b Bounds, ok bool) {
	minRow, minCol := g.Rows, g.Cols
	maxRow, maxCol := -1, -1
	for idx, c := range g.Cells {
		if c.Void() {
			continue
		}
		row, col := g.RowCol(idx)
		if row < minRow {
			minRow = row
		}
		if row > maxRow {
			maxRow = row
		}
		if col < minCol {
			minCol = col
		}
		if col > maxCol {
			maxCol = col
		}
	}
	if maxRow < 0 {
		return Bounds{}, false
	}
	return Bounds{
		XMin: g.Lattice.X(minCol),
		XMax: g.Lattice.X(maxCol) + g.Lattice.Step,
		YMin: g.Lattice.Y(minRow),
		YMax: g.Lattice.Y(maxRow) + g.Lattice.Step,
	}, true
}

// RedefineDomain returns a new grid covering the requested rectangle at the
// same step. Cells outside the rectangle are excluded; requested area beyond
// the old grid comes back void. The rectangle must overlap the current
// non-void bounds (ErrDomain otherwise). The caller rebuilds the registry.
func RedefineDomain(g *Grid, want Bounds) (*Grid, error) {
	if want.XMin >= want.XMax || want.YMin >= want.YMax {
		return nil, fmt.Errorf("%w: empty domain rectangle [%g,%g]x[%g,%g]",
			ErrInput, want.XMin, want.XMax, want.YMin, want.YMax)
	}
	have, ok := g.Bounds()
	if !ok {
		return nil, fmt.Errorf("%w: grid holds no non-void cells", ErrDomain)
	}
	if !want.overlaps(have) {
		return nil, fmt.Errorf("%w: requested [%g,%g]x[%g,%g] does not overlap current [%g,%g]x[%g,%g]",
			ErrDomain, want.XMin, want.XMax, want.YMin, want.YMax,
			have.XMin, have.XMax, have.YMin, have.YMax)
	}

	c0, c1 := g.Lattice.ColOf(want.XMin), g.Lattice.ColOf(want.XMax)
	r0, r1 := g.Lattice.RowOf(want.YMin), g.Lattice.RowOf(want.YMax)
	if c1 <= c0 || r1 <= r0 {
		return nil, fmt.Errorf("%w: domain rectangle narrower than one step", ErrInput)
	}
	lat := Lattice{OriginX: g.Lattice.X(c0), OriginY: g.Lattice.Y(r0), Step: g.Lattice.Step}
	out := NewGrid(r1-r0, c1-c0, lat)
	for row := 0; row < out.Rows; row++ {
		srcRow := r0 + row
		if srcRow < 0 || srcRow >= g.Rows {
			continue
		}
		for col := 0; col < out.Cols; col++ {
			srcCol := c0 + col
			if srcCol < 0 || srcCol >= g.Cols {
				continue
			}
			out.Cells[out.Idx(row, col)] = g.Cells[g.Idx(srcRow, srcCol)]
		}
	}
	return out, nil
}
