package ebsdio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/fsutil"
)

// ImportOptions controls how a map file becomes a grid.
type ImportOptions struct {
	// Headers maps the file's column names; zero value uses DefaultHeaders.
	Headers HeaderMap

	// StepSize is the known pixel spacing. Zero means infer it from the
	// coordinates, which needs at least two distinct values per axis.
	StepSize float64

	// Degrees marks the file's Euler angles as degrees. They are stored in
	// radians either way.
	Degrees bool

	// SpacingTolerance is the accepted coordinate wobble as a fraction of
	// one step. Zero uses ebsd.DefaultSpacingTolerance.
	SpacingTolerance float64
}

type record struct {
	x, y   float64
	id     int
	orient ebsd.Euler
}

// ReadMap parses an EBSD map file into a dense grid. Cell indices come from
// round((coord-min)/step); coordinates absent from the file stay void, and
// when two records land on one cell the last write wins. Rows with
// unparseable or non-finite fields are skipped, as are non-positive grain
// ids. The registry is the caller's to build.
func ReadMap(fsys fsutil.FileSystem, path string, opts ImportOptions) (*ebsd.Grid, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()
	return readMap(csv.NewReader(f), opts)
}

func readMap(cr *csv.Reader, opts ImportOptions) (*ebsd.Grid, error) {
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ebsd.ErrInput, err)
	}
	cols, err := opts.Headers.resolve(header)
	if err != nil {
		return nil, err
	}

	var recs []record
	var xs, ys []float64
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading records: %v", ebsd.ErrInput, err)
		}
		rec, ok := parseRecord(row, cols, opts.Degrees)
		if !ok {
			continue
		}
		recs = append(recs, rec)
		xs = append(xs, rec.x)
		ys = append(ys, rec.y)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no usable records in map file", ebsd.ErrInput)
	}

	step := opts.StepSize
	if step == 0 {
		if step, err = ebsd.InferStep(xs, ys, opts.SpacingTolerance); err != nil {
			return nil, err
		}
	} else if err := ebsd.ValidateStep(xs, ys, step, opts.SpacingTolerance); err != nil {
		return nil, err
	}

	minX, maxX := minMax(xs)
	minY, maxY := minMax(ys)
	lat := ebsd.Lattice{OriginX: minX, OriginY: minY, Step: step}
	rows := lat.RowOf(maxY) + 1
	cols2 := lat.ColOf(maxX) + 1
	g := ebsd.NewGrid(rows, cols2, lat)
	for _, rec := range recs {
		g.Set(lat.RowOf(rec.y), lat.ColOf(rec.x), ebsd.Cell{GrainID: rec.id, Orientation: rec.orient})
	}
	return g, nil
}

func parseRecord(row []string, cols columns, degrees bool) (record, bool) {
	need := cols.x
	for _, c := range []int{cols.y, cols.id, cols.p1, cols.p, cols.p2} {
		if c > need {
			need = c
		}
	}
	if len(row) <= need {
		return record{}, false
	}
	vals := make([]float64, 6)
	for i, c := range []int{cols.x, cols.y, cols.id, cols.p1, cols.p, cols.p2} {
		v, err := strconv.ParseFloat(row[c], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return record{}, false
		}
		vals[i] = v
	}
	id := int(math.Round(vals[2]))
	if id <= 0 {
		return record{}, false
	}
	orient := ebsd.Euler{Phi1: vals[3], Phi: vals[4], Phi2: vals[5]}
	if degrees {
		orient = ebsd.EulerDeg(vals[3], vals[4], vals[5])
	}
	return record{x: vals[0], y: vals[1], id: id, orient: orient}, true
}

func minMax(vals []float64) (min, max float64) {
	min, max = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
