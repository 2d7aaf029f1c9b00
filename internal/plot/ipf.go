// Package plot renders grain maps as PNG images and interactive HTML charts.
package plot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/microtex-data/grainmesh/internal/ebsd"
)

// Direction selects the sample axis for inverse pole figure colouring.
type Direction int

const (
	DirX Direction = iota
	DirY
	DirZ
)

// ParseDirection maps "x", "y" or "z" onto a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "x", "":
		return DirX, nil
	case "y":
		return DirY, nil
	case "z":
		return DirZ, nil
	}
	return DirX, fmt.Errorf("%w: unknown ipf direction %q", ebsd.ErrInput, s)
}

func (d Direction) String() string {
	switch d {
	case DirY:
		return "y"
	case DirZ:
		return "z"
	}
	return "x"
}

func (d Direction) vector() [3]float64 {
	switch d {
	case DirY:
		return [3]float64{0, 1, 0}
	case DirZ:
		return [3]float64{0, 0, 1}
	}
	return [3]float64{1, 0, 0}
}

// cubicSymmetry is the rotation group used to fold orientations into the
// standard stereographic triangle.
var cubicSymmetry = [24][3][3]float64{
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
	{{0, -1, 0}, {0, 0, -1}, {1, 0, 0}},
	{{0, -1, 0}, {0, 0, -1}, {1, 0, 0}},
	{{0, 1, 0}, {0, 0, -1}, {-1, 0, 0}},
	{{0, 0, -1}, {1, 0, 0}, {0, -1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	{{0, 0, 1}, {-1, 0, 0}, {0, -1, 0}},
	{{-1, 0, 0}, {0, 1, 0}, {0, 0, -1}},
	{{-1, 0, 0}, {0, -1, 0}, {0, 0, 1}},
	{{1, 0, 0}, {0, -1, 0}, {0, 0, -1}},
	{{0, 0, -1}, {0, -1, 0}, {-1, 0, 0}},
	{{0, 0, 1}, {0, -1, 0}, {1, 0, 0}},
	{{0, 0, 1}, {0, 1, 0}, {-1, 0, 0}},
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
	{{-1, 0, 0}, {0, 0, -1}, {0, -1, 0}},
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{1, 0, 0}, {0, 0, 1}, {0, -1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, -1, 0}, {-1, 0, 0}, {0, 0, -1}},
	{{0, 1, 0}, {-1, 0, 0}, {0, 0, -1}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
}

// EulerToRGB maps a Bunge orientation onto the cubic IPF colour key along
// the given sample direction. Orientations outside the Euler domain come
// back white.
func EulerToRGB(e ebsd.Euler, dir Direction) color.RGBA {
	if e.Phi1 > 2*math.Pi || e.Phi > math.Pi || e.Phi2 > 2*math.Pi {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	ref := dir.vector()
	m := e.Matrix()

	const etaMax = math.Pi / 4
	chiMaxSST := math.Acos(1 / math.Sqrt(2+math.Tan(etaMax)*math.Tan(etaMax)))

	// Fold the reference direction into the standard triangle.
	var eta, chi float64
	for _, sym := range cubicSymmetry {
		var rot [3][3]float64
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					rot[j][k] += sym[j][l] * m[l][k]
				}
			}
		}
		var hkl [3]float64
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				hkl[j] += rot[j][k] * ref[k]
			}
		}

		eta = math.Abs(math.Atan2(hkl[1], hkl[0]))
		chi = math.Acos(clamp(math.Abs(hkl[2]), -1, 1))
		if eta < etaMax && chi < chiMaxSST {
			break
		}
	}

	chiMax := math.Acos(1 / math.Sqrt(2+math.Tan(eta)*math.Tan(eta)))
	etaFrac := eta / etaMax
	chiFrac := chi / chiMax

	r := math.Sqrt(math.Abs(1 - chiFrac))
	g := math.Sqrt(math.Max(0, 1-etaFrac) * chiFrac)
	b := math.Sqrt(etaFrac * chiFrac)

	scale := 255 / math.Max(r, math.Max(g, b))
	return color.RGBA{
		R: uint8(math.Round(r * scale)),
		G: uint8(math.Round(g * scale)),
		B: uint8(math.Round(b * scale)),
		A: 255,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
