package ebsd

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Euler is a Bunge-convention (ZXZ) orientation triple in radians.
type Euler struct {
	Phi1 float64 // first rotation about Z
	Phi  float64 // rotation about the rotated X
	Phi2 float64 // second rotation about Z
}

// EulerDeg builds an Euler triple from degree values.
func EulerDeg(phi1, phi, phi2 float64) Euler {
	const s = math.Pi / 180
	return Euler{Phi1: phi1 * s, Phi: phi * s, Phi2: phi2 * s}
}

// Deg returns the triple converted to degrees.
func (e Euler) Deg() (phi1, phi, phi2 float64) {
	const s = 180 / math.Pi
	return e.Phi1 * s, e.Phi * s, e.Phi2 * s
}

// Matrix returns the 3x3 orientation matrix g (sample -> crystal frame),
// row-major.
func (e Euler) Matrix() [3][3]float64 {
	c1, s1 := math.Cos(e.Phi1), math.Sin(e.Phi1)
	c, s := math.Cos(e.Phi), math.Sin(e.Phi)
	c2, s2 := math.Cos(e.Phi2), math.Sin(e.Phi2)
	return [3][3]float64{
		{c1*c2 - s1*s2*c, s1*c2 + c1*s2*c, s2 * s},
		{-c1*s2 - s1*c2*c, -s1*s2 + c1*c2*c, c2 * s},
		{s1 * s, -c1 * s, c},
	}
}

// Quat is a unit rotation quaternion (w, x, y, z).
type Quat struct {
	W, X, Y, Z float64
}

// Quat converts the triple to its quaternion form.
func (e Euler) Quat() Quat {
	c1, s1 := math.Cos(e.Phi1/2), math.Sin(e.Phi1/2)
	c, s := math.Cos(e.Phi/2), math.Sin(e.Phi/2)
	c2, s2 := math.Cos(e.Phi2/2), math.Sin(e.Phi2/2)
	return Quat{
		W: c * (c1*c2 - s1*s2),
		X: s * (c1*c2 + s1*s2),
		Y: s * (s1*c2 - c1*s2),
		Z: c * (s1*c2 + c1*s2),
	}
}

// Euler converts the quaternion back to a Bunge triple with phi1 and phi2
// wrapped into [0, 2pi) and Phi in [0, pi].
func (q Quat) Euler() Euler {
	sum := 2 * math.Atan2(q.Z, q.W)
	diff := 2 * math.Atan2(q.Y, q.X)
	phi := 2 * math.Atan2(math.Hypot(q.X, q.Y), math.Hypot(q.W, q.Z))
	return Euler{
		Phi1: wrapTwoPi((sum + diff) / 2),
		Phi:  phi,
		Phi2: wrapTwoPi((sum - diff) / 2),
	}
}

func wrapTwoPi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// AverageEuler returns the quaternion mean of the given orientations: the
// principal eigenvector of the summed quaternion outer products. The outer
// product is sign-invariant, so no hemisphere alignment is needed. An empty
// slice averages to the zero triple.
func AverageEuler(orients []Euler) Euler {
	if len(orients) == 0 {
		return Euler{}
	}
	if len(orients) == 1 {
		return orients[0]
	}
	var m [16]float64
	for _, e := range orients {
		q := e.Quat()
		v := [4]float64{q.W, q.X, q.Y, q.Z}
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				m[i*4+j] += v[i] * v[j]
			}
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(4, m[:]), true) {
		return orients[0]
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	// Eigenvalues come back ascending; the mean is the last column.
	q := Quat{W: vecs.At(0, 3), X: vecs.At(1, 3), Y: vecs.At(2, 3), Z: vecs.At(3, 3)}
	return q.Euler()
}
