package ebsd

import "fmt"

// PassConfig controls the neighbor-vote passes.
type PassConfig struct {
	Conn Connectivity // neighborhood; zero value selects Conn8
}

func (c PassConfig) conn() (Connectivity, error) {
	if c.Conn == 0 {
		return Conn8, nil
	}
	if !c.Conn.Valid() {
		return 0, fmt.Errorf("%w: connectivity %d (want 4 or 8)", ErrInput, int(c.Conn))
	}
	return c.Conn, nil
}

// voteMode selects the switch threshold of a vote pass.
type voteMode int

const (
	voteMajority  voteMode = iota // winner needs a strict majority of all neighbors
	votePlurality                 // winner needs more votes than every other grain
)

// Clean reassigns non-void cells captured inside another grain: a cell
// switches only when a single neighbor grain holds a strict majority of its
// neighbors. Ties and below-threshold counts leave the cell unchanged. The
// reassigned cell copies the orientation of the first majority neighbor in
// lowest-row-then-column order; orientations are never averaged. Runs
// iterations full passes and returns the number of cell switches.
func Clean(g *Grid, r *Registry, iterations int, cfg PassConfig) (changed int, err error) {
	return votePass(g, r, iterations, cfg, voteMajority)
}

// Smooth erodes jagged single-cell protrusions along grain boundaries. Same
// mechanism as Clean with a plurality threshold: the winning grain must
// out-vote every other grain, including the cell's own.
func Smooth(g *Grid, r *Registry, iterations int, cfg PassConfig) (changed int, err error) {
	return votePass(g, r, iterations, cfg, votePlurality)
}

// votePass is the shared clean/smooth engine. Each iteration reads a full
// snapshot and writes a fresh cell array, so reassignments inside one
// iteration never feed each other. The registry is patched per switch.
func votePass(g *Grid, r *Registry, iterations int, cfg PassConfig, mode voteMode) (int, error) {
	conn, err := cfg.conn()
	if err != nil {
		return 0, err
	}
	if iterations < 0 {
		return 0, fmt.Errorf("%w: iterations %d must be >= 0", ErrInput, iterations)
	}
	changed := 0
	counts := make(map[int]int)
	donor := make(map[int]int)
	var nbuf []int

	cur := g.Cells
	for it := 0; it < iterations; it++ {
		next := make([]Cell, len(cur))
		copy(next, cur)
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				idx := g.Idx(row, col)
				own := cur[idx]
				if own.Void() {
					continue
				}
				nbuf = g.AppendNeighbors(nbuf[:0], row, col, conn)
				winner, winCount, winDonor, unique := tally(cur, nbuf, counts, donor)
				if winner == VoidGrainID || winner == own.GrainID {
					continue
				}
				switch mode {
				case voteMajority:
					if winCount*2 <= len(nbuf) {
						continue
					}
				case votePlurality:
					if !unique {
						continue
					}
				}
				next[idx] = Cell{GrainID: winner, Orientation: cur[winDonor].Orientation}
				r.Move(idx, own.GrainID, winner)
				changed++
			}
		}
		cur = next
	}
	g.Cells = cur
	return changed, nil
}

// Fill assigns void cells that touch at least one non-void neighbor to the
// plurality neighbor grain, copying that neighbor's orientation. Grain ties
// break toward the earliest neighbor in lowest-row-then-column order.
// Isolated voids wait for a later iteration; the full iteration count always
// runs. Returns the number of void cells remaining.
func Fill(g *Grid, r *Registry, iterations int, cfg PassConfig) (remaining int, err error) {
	conn, err := cfg.conn()
	if err != nil {
		return 0, err
	}
	if iterations < 0 {
		return 0, fmt.Errorf("%w: iterations %d must be >= 0", ErrInput, iterations)
	}
	counts := make(map[int]int)
	donor := make(map[int]int)
	var nbuf []int

	cur := g.Cells
	for it := 0; it < iterations; it++ {
		next := make([]Cell, len(cur))
		copy(next, cur)
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				idx := g.Idx(row, col)
				if !cur[idx].Void() {
					continue
				}
				nbuf = g.AppendNeighbors(nbuf[:0], row, col, conn)
				winner, _, winDonor, _ := tally(cur, nbuf, counts, donor)
				if winner == VoidGrainID {
					continue
				}
				next[idx] = Cell{GrainID: winner, Orientation: cur[winDonor].Orientation}
				r.Move(idx, VoidGrainID, winner)
			}
		}
		cur = next
	}
	g.Cells = cur
	return g.VoidCount(), nil
}

// tally counts the non-void grains among the neighbor cells. It returns the
// grain with the most votes, its count, the flat index of its first donor
// neighbor, and whether the maximum is unique. Neighbor order is
// lowest-row-then-column, so on a tie the grain seen earliest wins the donor
// slot and ties are broken deterministically.
func tally(cells []Cell, neighbors []int, counts, donor map[int]int) (winner, winCount, winDonor int, unique bool) {
	clear(counts)
	clear(donor)
	for _, nidx := range neighbors {
		id := cells[nidx].GrainID
		if id == VoidGrainID {
			continue
		}
		counts[id]++
		if _, ok := donor[id]; !ok {
			donor[id] = nidx
		}
	}
	winner = VoidGrainID
	unique = true
	for _, nidx := range neighbors {
		id := cells[nidx].GrainID
		if id == VoidGrainID || nidx != donor[id] {
			continue // score each grain once, at its first appearance
		}
		switch n := counts[id]; {
		case n > winCount:
			winner, winCount, winDonor, unique = id, n, nidx, true
		case n == winCount:
			unique = false
		}
	}
	return winner, winCount, winDonor, unique
}
