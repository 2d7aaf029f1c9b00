package ebsd

import "fmt"

// GripIDs names the two synthetic boundary grains appended by AddGrips.
// Both are zero when no grip material was added.
type GripIDs struct {
	Left  int
	Right int
}

// AddGrips appends numElements columns of synthetic grip material to both
// the left and right edge and returns the widened grid. Every grip cell
// carries one of two reserved grain ids, disjoint from all existing ids
// (left = max+1, right = max+2), and the given reference orientation.
// Existing cells, the height, the step and the y bounds are untouched; the
// caller rebuilds the registry. numElements == 0 returns a plain copy.
func AddGrips(g *Grid, numElements int, orient Euler) (*Grid, GripIDs, error) {
	if numElements < 0 {
		return nil, GripIDs{}, fmt.Errorf("%w: grip width %d must be >= 0", ErrInput, numElements)
	}
	if numElements == 0 {
		return g.Clone(), GripIDs{}, nil
	}
	maxID := g.MaxGrainID()
	ids := GripIDs{Left: maxID + 1, Right: maxID + 2}

	lat := g.Lattice
	lat.OriginX -= float64(numElements) * lat.Step
	out := NewGrid(g.Rows, g.Cols+2*numElements, lat)
	for row := 0; row < out.Rows; row++ {
		for col := 0; col < numElements; col++ {
			out.Cells[out.Idx(row, col)] = Cell{GrainID: ids.Left, Orientation: orient}
		}
		for col := 0; col < g.Cols; col++ {
			out.Cells[out.Idx(row, numElements+col)] = g.Cells[g.Idx(row, col)]
		}
		for col := numElements + g.Cols; col < out.Cols; col++ {
			out.Cells[out.Idx(row, col)] = Cell{GrainID: ids.Right, Orientation: orient}
		}
	}
	return out, ids, nil
}
