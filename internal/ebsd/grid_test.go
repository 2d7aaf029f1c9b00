package ebsd

import (
	"testing"
)

// orientFor builds a distinct orientation per grain id so tests can check
// which neighbor donated an orientation.
func orientFor(id int) Euler {
	return Euler{Phi1: float64(id) * 0.01, Phi: float64(id) * 0.02, Phi2: float64(id) * 0.03}
}

// makeGrid builds a unit-step grid from a row-major id matrix. Id 0 is void.
func makeGrid(ids [][]int) *Grid {
	rows, cols := len(ids), len(ids[0])
	g := NewGrid(rows, cols, Lattice{Step: 1})
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if id := ids[r][c]; id != VoidGrainID {
				g.Set(r, c, Cell{GrainID: id, Orientation: orientFor(id)})
			}
		}
	}
	return g
}

// idsOf flattens the grid back to an id matrix for comparisons.
func idsOf(g *Grid) [][]int {
	out := make([][]int, g.Rows)
	for r := 0; r < g.Rows; r++ {
		out[r] = make([]int, g.Cols)
		for c := 0; c < g.Cols; c++ {
			out[r][c] = g.At(r, c).GrainID
		}
	}
	return out
}

func TestIdxRowCol(t *testing.T) {
	g := NewGrid(3, 5, Lattice{Step: 1})
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			idx := g.Idx(row, col)
			r, c := g.RowCol(idx)
			if r != row || c != col {
				t.Fatalf("RowCol(Idx(%d,%d)) = (%d,%d)", row, col, r, c)
			}
		}
	}
	if g.Idx(2, 4) != 14 {
		t.Errorf("Idx(2,4) = %d, want 14", g.Idx(2, 4))
	}
}

func TestNeighborsCounts(t *testing.T) {
	g := NewGrid(4, 4, Lattice{Step: 1})
	tests := []struct {
		name     string
		row, col int
		conn     Connectivity
		want     int
	}{
		{"interior conn8", 1, 1, Conn8, 8},
		{"interior conn4", 1, 1, Conn4, 4},
		{"corner conn8", 0, 0, Conn8, 3},
		{"corner conn4", 0, 0, Conn4, 2},
		{"edge conn8", 0, 2, Conn8, 5},
		{"edge conn4", 0, 2, Conn4, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Neighbors(tt.row, tt.col, tt.conn)
			if len(got) != tt.want {
				t.Errorf("Neighbors(%d,%d,%v) returned %d indices, want %d", tt.row, tt.col, tt.conn, len(got), tt.want)
			}
		})
	}
}

func TestNeighborsOrderIsRowMajor(t *testing.T) {
	g := NewGrid(3, 3, Lattice{Step: 1})
	got := g.Neighbors(1, 1, Conn8)
	want := []int{0, 1, 2, 3, 5, 6, 7, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("neighbor order %v, want %v", got, want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := makeGrid([][]int{{1, 1}, {2, 2}})
	cp := g.Clone()
	cp.Set(0, 0, Cell{GrainID: 9})
	if g.At(0, 0).GrainID != 1 {
		t.Errorf("mutating the clone changed the original")
	}
}

func TestVoidCountAndMaxGrainID(t *testing.T) {
	g := makeGrid([][]int{
		{1, 0, 3},
		{0, 7, 0},
	})
	if got := g.VoidCount(); got != 3 {
		t.Errorf("VoidCount = %d, want 3", got)
	}
	if got := g.MaxGrainID(); got != 7 {
		t.Errorf("MaxGrainID = %d, want 7", got)
	}
}
