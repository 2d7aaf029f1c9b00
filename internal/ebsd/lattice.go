package ebsd

import (
	"fmt"
	"math"
	"sort"
)

// Lattice maps between continuous sample coordinates and integer grid
// indices over a uniform square step. OriginX/OriginY are the coordinates of
// column 0 / row 0; imported maps use the minimum measured x and y.
type Lattice struct {
	OriginX float64
	OriginY float64
	Step    float64 // cell edge length, > 0
}

// ColOf maps a physical x to the nearest column: round((x-origin)/step).
func (l Lattice) ColOf(x float64) int { return int(math.Round((x - l.OriginX) / l.Step)) }

// RowOf maps a physical y to the nearest row.
func (l Lattice) RowOf(y float64) int { return int(math.Round((y - l.OriginY) / l.Step)) }

// X returns the physical x of a column.
func (l Lattice) X(col int) float64 { return l.OriginX + float64(col)*l.Step }

// Y returns the physical y of a row.
func (l Lattice) Y(row int) float64 { return l.OriginY + float64(row)*l.Step }

// DefaultSpacingTolerance is the accepted coordinate wobble as a fraction of
// one step.
const DefaultSpacingTolerance = 1e-3

// InferStep derives the lattice step from raw measured coordinates. The
// smallest positive gap between distinct sorted values on each axis is the
// candidate; both axes must agree within tol (a fraction of one step) and
// every coordinate must land on the implied lattice. Fewer than 2 distinct
// values on either axis makes the step unresolvable (ErrInput).
func InferStep(xs, ys []float64, tol float64) (float64, error) {
	if tol <= 0 {
		tol = DefaultSpacingTolerance
	}
	sx, err := axisStep("x", xs, tol)
	if err != nil {
		return 0, err
	}
	sy, err := axisStep("y", ys, tol)
	if err != nil {
		return 0, err
	}
	if diff := math.Abs(sx - sy); diff > tol*math.Max(sx, sy) {
		return 0, fmt.Errorf("%w: x spacing %g and y spacing %g disagree", ErrInput, sx, sy)
	}
	return (sx + sy) / 2, nil
}

// ValidateStep checks that every coordinate lands on a lattice of the given
// step within tol. Used when the caller supplies the step explicitly; a
// single distinct value per axis is acceptable then.
func ValidateStep(xs, ys []float64, step, tol float64) error {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return fmt.Errorf("%w: step size %g must be positive", ErrInput, step)
	}
	if tol <= 0 {
		tol = DefaultSpacingTolerance
	}
	if err := checkOnLattice("x", distinctSorted(xs), step, tol); err != nil {
		return err
	}
	return checkOnLattice("y", distinctSorted(ys), step, tol)
}

// axisStep infers the step along one axis from the minimum positive gap,
// then verifies all values sit on that lattice. Gaps larger than one step
// are fine (void rows or columns), as long as they are whole multiples.
func axisStep(axis string, vals []float64, tol float64) (float64, error) {
	dv := distinctSorted(vals)
	if len(dv) < 2 {
		return 0, fmt.Errorf("%w: cannot infer step size from %d distinct %s values", ErrInput, len(dv), axis)
	}
	step := math.Inf(1)
	for i := 1; i < len(dv); i++ {
		if gap := dv[i] - dv[i-1]; gap < step {
			step = gap
		}
	}
	if err := checkOnLattice(axis, dv, step, tol); err != nil {
		return 0, err
	}
	return step, nil
}

func checkOnLattice(axis string, dv []float64, step, tol float64) error {
	if len(dv) == 0 {
		return fmt.Errorf("%w: no %s values", ErrInput, axis)
	}
	min := dv[0]
	for _, v := range dv {
		k := (v - min) / step
		if math.Abs(k-math.Round(k)) > tol {
			return fmt.Errorf("%w: %s value %g is off the %g-step lattice", ErrInput, axis, v, step)
		}
	}
	return nil
}

func distinctSorted(vals []float64) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)
	sort.Float64s(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
