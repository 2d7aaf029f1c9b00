package ebsdio

import (
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/fsutil"
)

func buildTestGrid() *ebsd.Grid {
	g := ebsd.NewGrid(2, 3, ebsd.Lattice{OriginX: 0, OriginY: 0, Step: 0.5})
	set := func(row, col, id int, e ebsd.Euler) {
		g.Set(row, col, ebsd.Cell{GrainID: id, Orientation: e})
	}
	set(0, 0, 1, ebsd.Euler{Phi1: 0.11, Phi: 0.22, Phi2: 0.33})
	set(0, 1, 1, ebsd.Euler{Phi1: 0.12, Phi: 0.23, Phi2: 0.34})
	set(0, 2, 2, ebsd.Euler{Phi1: 1.1, Phi: 0.9, Phi2: 0.8})
	set(1, 0, 3, ebsd.Euler{Phi1: 2.0, Phi: 1.5, Phi2: 0.5})
	// (1,1) stays void.
	set(1, 2, 2, ebsd.Euler{Phi1: 1.1, Phi: 0.9, Phi2: 0.8})
	return g
}

func TestWriteElementsRoundTripDegrees(t *testing.T) {
	g := buildTestGrid()
	fsys := fsutil.NewMemory()

	require.NoError(t, WriteElements(fsys, "/elements.csv", g, true))
	back, err := ReadMap(fsys, "/elements.csv", ImportOptions{StepSize: 0.5, Degrees: true})
	require.NoError(t, err)

	require.Equal(t, g.Rows, back.Rows)
	require.Equal(t, g.Cols, back.Cols)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			want, got := g.At(row, col), back.At(row, col)
			assert.Equal(t, want.GrainID, got.GrainID, "cell (%d,%d)", row, col)
			assert.InDelta(t, want.Orientation.Phi1, got.Orientation.Phi1, 1e-9)
			assert.InDelta(t, want.Orientation.Phi, got.Orientation.Phi, 1e-9)
			assert.InDelta(t, want.Orientation.Phi2, got.Orientation.Phi2, 1e-9)
		}
	}
}

func TestWriteElementsSkipsVoid(t *testing.T) {
	g := buildTestGrid()
	fsys := fsutil.NewMemory()
	require.NoError(t, WriteElements(fsys, "/elements.csv", g, false))

	data, err := fsys.ReadFile("/elements.csv")
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1+5, "header plus five non-void cells")
	assert.Equal(t, []string{"x", "y", "grain_id", "phi_1", "Phi", "phi_2"}, rows[0])
}

func TestWriteGrains(t *testing.T) {
	g := buildTestGrid()
	r := ebsd.BuildRegistry(g)
	fsys := fsutil.NewMemory()
	require.NoError(t, WriteGrains(fsys, "/grains.csv", g, r, false))

	data, err := fsys.ReadFile("/grains.csv")
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+3)
	assert.Equal(t, []string{"grain_id", "phi_1", "Phi", "phi_2", "cells", "area"}, rows[0])

	// Ascending id order; grain 2 has two identical cells, so its mean is
	// the cell orientation.
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "2", rows[2][4])
	assert.Equal(t, "0.5", rows[2][5], "2 cells x 0.25 area")
	p1, err2 := strconv.ParseFloat(rows[2][1], 64)
	require.NoError(t, err2)
	assert.InDelta(t, 1.1, p1, 1e-9)
}

func TestGrainOrientationAverages(t *testing.T) {
	g := ebsd.NewGrid(1, 2, ebsd.Lattice{Step: 1})
	g.Set(0, 0, ebsd.Cell{GrainID: 1, Orientation: ebsd.Euler{Phi1: 0.50, Phi: 1.0, Phi2: 0.2}})
	g.Set(0, 1, ebsd.Cell{GrainID: 1, Orientation: ebsd.Euler{Phi1: 0.60, Phi: 1.0, Phi2: 0.2}})
	r := ebsd.BuildRegistry(g)

	mean := GrainOrientation(g, r, 1)
	assert.Greater(t, mean.Phi1, 0.50)
	assert.Less(t, mean.Phi1, 0.60)
	assert.InDelta(t, 1.0, mean.Phi, 1e-6)
}

func TestWriteBounds(t *testing.T) {
	g := buildTestGrid()
	fsys := fsutil.NewMemory()
	require.NoError(t, WriteBounds(fsys, "/bounds.csv", g))

	data, err := fsys.ReadFile("/bounds.csv")
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"x_min", "x_max", "y_min", "y_max"}, rows[0])
	assert.Equal(t, []string{"0", "1.5", "0", "1"}, rows[1])
}
