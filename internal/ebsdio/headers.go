// Package ebsdio reads and writes the tabular EBSD formats around the core
// grid: coordinate/orientation CSV maps in, element/grain/bounds CSV and SPN
// voxel exports out.
package ebsdio

import (
	"fmt"
	"strings"

	"github.com/microtex-data/grainmesh/internal/ebsd"
)

// HeaderMap names the CSV columns of an EBSD map. Zero-value fields fall
// back to the conventional names.
type HeaderMap struct {
	X       string // default "x"
	Y       string // default "y"
	GrainID string // default "grain_id"
	Phi1    string // default "phi_1"
	Phi     string // default "Phi"
	Phi2    string // default "phi_2"
}

// DefaultHeaders is the conventional column naming.
var DefaultHeaders = HeaderMap{
	X:       "x",
	Y:       "y",
	GrainID: "grain_id",
	Phi1:    "phi_1",
	Phi:     "Phi",
	Phi2:    "phi_2",
}

func (h HeaderMap) withDefaults() HeaderMap {
	if h.X == "" {
		h.X = DefaultHeaders.X
	}
	if h.Y == "" {
		h.Y = DefaultHeaders.Y
	}
	if h.GrainID == "" {
		h.GrainID = DefaultHeaders.GrainID
	}
	if h.Phi1 == "" {
		h.Phi1 = DefaultHeaders.Phi1
	}
	if h.Phi == "" {
		h.Phi = DefaultHeaders.Phi
	}
	if h.Phi2 == "" {
		h.Phi2 = DefaultHeaders.Phi2
	}
	return h
}

// columns resolves the header row to column indices, once per file.
type columns struct {
	x, y, id, p1, p, p2 int
}

func (h HeaderMap) resolve(header []string) (columns, error) {
	h = h.withDefaults()
	find := func(name string) (int, error) {
		for i, col := range header {
			if strings.TrimSpace(col) == name {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: column %q not found in header %v", ebsd.ErrInput, name, header)
	}
	var c columns
	var err error
	if c.x, err = find(h.X); err != nil {
		return c, err
	}
	if c.y, err = find(h.Y); err != nil {
		return c, err
	}
	if c.id, err = find(h.GrainID); err != nil {
		return c, err
	}
	if c.p1, err = find(h.Phi1); err != nil {
		return c, err
	}
	if c.p, err = find(h.Phi); err != nil {
		return c, err
	}
	if c.p2, err = find(h.Phi2); err != nil {
		return c, err
	}
	return c, nil
}
