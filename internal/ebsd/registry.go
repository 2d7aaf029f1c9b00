package ebsd

import (
	"fmt"
	"sort"
)

// Registry tracks the cell membership of every grain in a grid. In-place
// morphology patches it incrementally through Move; structural operations
// (resample, redefine, grips) rebuild it from scratch. The cached area of a
// grain is always step squared times its current cell count.
type Registry struct {
	step   float64
	grains map[int]map[int]struct{} // grain id -> set of flat cell indices
}

// NewRegistry returns an empty registry for grids of the given step.
func NewRegistry(step float64) *Registry {
	return &Registry{step: step, grains: make(map[int]map[int]struct{})}
}

// BuildRegistry scans a grid and returns its full registry.
func BuildRegistry(g *Grid) *Registry {
	r := NewRegistry(g.Lattice.Step)
	r.Rebuild(g)
	return r
}

// Rebuild discards all entries and rescans the grid.
func (r *Registry) Rebuild(g *Grid) {
	r.step = g.Lattice.Step
	r.grains = make(map[int]map[int]struct{})
	for idx, c := range g.Cells {
		if c.Void() {
			continue
		}
		r.add(c.GrainID, idx)
	}
}

func (r *Registry) add(id, idx int) {
	set, ok := r.grains[id]
	if !ok {
		set = make(map[int]struct{})
		r.grains[id] = set
	}
	set[idx] = struct{}{}
}

// Move records that the cell at flat index idx changed from grain `from` to
// grain `to`. Either side may be VoidGrainID. A grain whose last cell moves
// away is dropped from the registry.
func (r *Registry) Move(idx, from, to int) {
	if from == to {
		return
	}
	if from != VoidGrainID {
		if set, ok := r.grains[from]; ok {
			delete(set, idx)
			if len(set) == 0 {
				delete(r.grains, from)
			}
		}
	}
	if to != VoidGrainID {
		r.add(to, idx)
	}
}

// Len returns the number of grains.
func (r *Registry) Len() int { return len(r.grains) }

// Has reports whether a grain id is present.
func (r *Registry) Has(id int) bool {
	_, ok := r.grains[id]
	return ok
}

// IDs returns all grain ids in ascending order.
func (r *Registry) IDs() []int {
	ids := make([]int, 0, len(r.grains))
	for id := range r.grains {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Count returns the cell count of a grain (0 when absent).
func (r *Registry) Count(id int) int { return len(r.grains[id]) }

// Area returns the physical area of a grain: step squared times cell count.
func (r *Registry) Area(id int) float64 {
	return r.step * r.step * float64(len(r.grains[id]))
}

// TotalArea returns the summed area of all grains.
func (r *Registry) TotalArea() float64 {
	n := 0
	for _, set := range r.grains {
		n += len(set)
	}
	return r.step * r.step * float64(n)
}

// CellsOf returns the flat indices of a grain's cells in ascending order.
func (r *Registry) CellsOf(id int) []int {
	set := r.grains[id]
	idxs := make([]int, 0, len(set))
	for idx := range set {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	return idxs
}

// Centroid returns the mean (row, col) of a grain's cells in grid units.
func (r *Registry) Centroid(g *Grid, id int) (row, col float64, ok bool) {
	set := r.grains[id]
	if len(set) == 0 {
		return 0, 0, false
	}
	for idx := range set {
		rr, cc := g.RowCol(idx)
		row += float64(rr)
		col += float64(cc)
	}
	n := float64(len(set))
	return row / n, col / n, true
}

// Verify cross-checks the registry against a grid cell by cell and fails
// with ErrConsistency on any mismatch. It never repairs.
func (r *Registry) Verify(g *Grid) error {
	seen := 0
	for idx, c := range g.Cells {
		if c.Void() {
			continue
		}
		set, ok := r.grains[c.GrainID]
		if !ok {
			return fmt.Errorf("%w: grid cell %d carries grain %d with no registry entry", ErrConsistency, idx, c.GrainID)
		}
		if _, ok := set[idx]; !ok {
			return fmt.Errorf("%w: grid cell %d missing from grain %d membership", ErrConsistency, idx, c.GrainID)
		}
		seen++
	}
	total := 0
	for id, set := range r.grains {
		if len(set) == 0 {
			return fmt.Errorf("%w: grain %d registered with zero cells", ErrConsistency, id)
		}
		total += len(set)
	}
	if total != seen {
		return fmt.Errorf("%w: registry holds %d cells, grid holds %d non-void cells", ErrConsistency, total, seen)
	}
	return nil
}
