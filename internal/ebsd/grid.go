package ebsd

// VoidGrainID marks a cell with no measured grain. Grain ids are positive;
// the zero value of Cell is a void cell.
const VoidGrainID = 0

// Cell is one raster element of the microstructure map.
type Cell struct {
	GrainID     int
	Orientation Euler
}

// Void reports whether the cell carries no grain.
func (c Cell) Void() bool { return c.GrainID == VoidGrainID }

// Connectivity selects the neighborhood used by the vote passes.
type Connectivity int

const (
	// Conn4 is the von Neumann neighborhood (orthogonal neighbors).
	Conn4 Connectivity = 4
	// Conn8 is the Moore neighborhood (orthogonal + diagonal neighbors).
	Conn8 Connectivity = 8
)

// Offsets are ordered lowest row then lowest column so that the first
// neighbor seen is the deterministic tie-break donor.
var (
	conn4Offsets = [4][2]int{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	conn8Offsets = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

func (c Connectivity) offsets() [][2]int {
	if c == Conn4 {
		return conn4Offsets[:]
	}
	return conn8Offsets[:]
}

// Valid reports whether the connectivity is one of the supported neighborhoods.
func (c Connectivity) Valid() bool { return c == Conn4 || c == Conn8 }

// Grid is a dense rows x cols microstructure raster. Cells is flat row-major
// (len = Rows*Cols); void is an explicit cell value, never a hole.
type Grid struct {
	Rows    int
	Cols    int
	Lattice Lattice
	Cells   []Cell
}

// NewGrid allocates an all-void grid over the given lattice.
func NewGrid(rows, cols int, lat Lattice) *Grid {
	return &Grid{
		Rows:    rows,
		Cols:    cols,
		Lattice: lat,
		Cells:   make([]Cell, rows*cols),
	}
}

// Idx maps (row, col) to the flat cell index: idx = row*Cols + col.
func (g *Grid) Idx(row, col int) int { return row*g.Cols + col }

// RowCol is the inverse of Idx.
func (g *Grid) RowCol(idx int) (row, col int) { return idx / g.Cols, idx % g.Cols }

// In reports whether (row, col) lies inside the grid.
func (g *Grid) In(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// At returns the cell at (row, col).
func (g *Grid) At(row, col int) Cell { return g.Cells[g.Idx(row, col)] }

// Set replaces the cell at (row, col).
func (g *Grid) Set(row, col int, c Cell) { g.Cells[g.Idx(row, col)] = c }

// Clone returns a deep copy sharing nothing with the receiver.
func (g *Grid) Clone() *Grid {
	out := &Grid{Rows: g.Rows, Cols: g.Cols, Lattice: g.Lattice}
	out.Cells = make([]Cell, len(g.Cells))
	copy(out.Cells, g.Cells)
	return out
}

// AppendNeighbors appends the flat indices of the in-grid neighbors of
// (row, col) to dst, in lowest-row-then-column order, and returns dst.
func (g *Grid) AppendNeighbors(dst []int, row, col int, conn Connectivity) []int {
	for _, off := range conn.offsets() {
		r, c := row+off[0], col+off[1]
		if g.In(r, c) {
			dst = append(dst, g.Idx(r, c))
		}
	}
	return dst
}

// Neighbors returns the flat indices of the in-grid neighbors of (row, col).
func (g *Grid) Neighbors(row, col int, conn Connectivity) []int {
	return g.AppendNeighbors(make([]int, 0, int(conn)), row, col, conn)
}

// VoidCount returns the number of void cells.
func (g *Grid) VoidCount() int {
	n := 0
	for _, c := range g.Cells {
		if c.Void() {
			n++
		}
	}
	return n
}

// MaxGrainID returns the highest grain id present, or 0 for an all-void grid.
func (g *Grid) MaxGrainID() int {
	max := 0
	for _, c := range g.Cells {
		if c.GrainID > max {
			max = c.GrainID
		}
	}
	return max
}
