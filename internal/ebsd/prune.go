package ebsd

import (
	"fmt"
	"sort"
)

// RemoveGrains dissolves every grain whose area falls strictly below
// threshold (physical units). Grains are processed in ascending-area order;
// each of their cells is reassigned to the plurality grain among its
// non-void neighbors that are not themselves being removed, ties toward the
// lowest grain id, or to void when no such neighbor exists. One pass, in
// place; the registry is rebuilt afterward. Returns the number of grains
// removed.
func RemoveGrains(g *Grid, r *Registry, threshold float64, cfg PassConfig) (removed int, err error) {
	conn, err := cfg.conn()
	if err != nil {
		return 0, err
	}
	if threshold < 0 {
		return 0, fmt.Errorf("%w: area threshold %g must be >= 0", ErrInput, threshold)
	}

	doomed := make([]int, 0)
	for _, id := range r.IDs() {
		if r.Area(id) < threshold {
			doomed = append(doomed, id)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	// Ascending area so the smallest specks dissolve first and their cells
	// can join survivors before larger doomed grains are visited. IDs() is
	// sorted, so equal areas fall back to ascending id.
	sort.SliceStable(doomed, func(i, j int) bool { return r.Count(doomed[i]) < r.Count(doomed[j]) })
	removing := make(map[int]bool, len(doomed))
	for _, id := range doomed {
		removing[id] = true
	}

	counts := make(map[int]int)
	var nbuf []int
	for _, id := range doomed {
		for _, idx := range r.CellsOf(id) {
			row, col := g.RowCol(idx)
			nbuf = g.AppendNeighbors(nbuf[:0], row, col, conn)
			clear(counts)
			for _, nidx := range nbuf {
				nid := g.Cells[nidx].GrainID
				if nid == VoidGrainID || removing[nid] {
					continue
				}
				counts[nid]++
			}
			winner, winCount, winDonor := VoidGrainID, 0, -1
			for _, nidx := range nbuf {
				nid := g.Cells[nidx].GrainID
				if nid == VoidGrainID || removing[nid] {
					continue
				}
				n := counts[nid]
				if n > winCount || (n == winCount && nid < winner) {
					winner, winCount = nid, n
					winDonor = nidx
				}
			}
			if winner == VoidGrainID {
				g.Cells[idx] = Cell{}
			} else {
				g.Cells[idx] = Cell{GrainID: winner, Orientation: g.Cells[winDonor].Orientation}
			}
		}
	}
	r.Rebuild(g)
	return len(doomed), nil
}
