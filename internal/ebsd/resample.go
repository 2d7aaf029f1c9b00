package ebsd

import (
	"fmt"
	"math"
)

// Resample changes the grid resolution by a positive factor and returns a
// new grid with step = old step * factor. The receiver is untouched and the
// caller rebuilds the registry from the result.
//
// factor > 1 coarsens: the new dimensions are ceil(old/factor) and every new
// cell copies the old cell nearest to its center. No averaging, so each new
// cell carries an orientation that really occurred.
//
// factor < 1 refines: every old cell expands into a ceil(1/factor) square
// block of identical copies. The refined extent can slightly exceed the old
// physical extent when ceil(1/factor)*factor != 1.
//
// factor == 1 returns a fresh copy.
func Resample(g *Grid, factor float64) (*Grid, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("%w: resample factor %g must be > 0", ErrInput, factor)
	}
	if factor == 1 {
		return g.Clone(), nil
	}
	lat := Lattice{OriginX: g.Lattice.OriginX, OriginY: g.Lattice.OriginY, Step: g.Lattice.Step * factor}

	if factor > 1 {
		rows := int(math.Ceil(float64(g.Rows) / factor))
		cols := int(math.Ceil(float64(g.Cols) / factor))
		out := NewGrid(rows, cols, lat)
		for row := 0; row < rows; row++ {
			src := nearestIndex(row, factor, g.Rows)
			for col := 0; col < cols; col++ {
				out.Cells[out.Idx(row, col)] = g.Cells[g.Idx(src, nearestIndex(col, factor, g.Cols))]
			}
		}
		return out, nil
	}

	k := int(math.Ceil(1 / factor))
	out := NewGrid(g.Rows*k, g.Cols*k, lat)
	for row := 0; row < out.Rows; row++ {
		src := row / k
		for col := 0; col < out.Cols; col++ {
			out.Cells[out.Idx(row, col)] = g.Cells[g.Idx(src, col/k)]
		}
	}
	return out, nil
}

// nearestIndex maps a coarse index to the old index whose cell center lies
// closest to the new cell's center: round((i+0.5)*factor - 0.5), clamped.
func nearestIndex(i int, factor float64, n int) int {
	j := int(math.Round((float64(i)+0.5)*factor - 0.5))
	if j < 0 {
		return 0
	}
	if j >= n {
		return n - 1
	}
	return j
}
