/*
 * box.go, part of goALTBC.
 *
 * Copyright 2020 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

// Package box implements the geometry of a general (triclinic) periodic
// simulation cell: volume, face areas, thicknesses, conversion between
// cartesian and fractional coordinates and the minimum image convention.
//
// A Lattice holds the three lattice vectors a, b and c as its rows, so a
// cartesian point r and its fractional coordinates s are related by
// r = s[0]*a + s[1]*b + s[2]*c.
package box

import (
	"fmt"
	"math"

	v3 "github.com/rmera/goaltbc/v3"
	"gonum.org/v1/gonum/mat"
)

// Lattice is a row-major 3x3 matrix. Its rows are the lattice vectors.
type Lattice [9]float64

// PBC tells, for each lattice vector, whether the cell is periodic along it.
type PBC [3]bool

// AllPeriodic is the usual, fully periodic, boundary condition.
var AllPeriodic = PBC{true, true, true}

// Orthorhombic returns the lattice of an orthogonal box with sides x, y and z.
func Orthorhombic(x, y, z float64) Lattice {
	return Lattice{x, 0, 0, 0, y, 0, 0, 0, z}
}

// LatticeFromSlice builds a lattice from the 9 values in b, in the
// same order used by the trajectory readers (a, then b, then c).
func LatticeFromSlice(b []float64) (Lattice, error) {
	var l Lattice
	if len(b) < 9 {
		return l, newError(fmt.Sprintf("%d values given for a lattice, 9 needed", len(b)), "LatticeFromSlice", nil)
	}
	copy(l[:], b[:9])
	return l, nil
}

// Vec returns the i-th lattice vector.
func (l Lattice) Vec(i int) [3]float64 {
	return [3]float64{l[3*i], l[3*i+1], l[3*i+2]}
}

// Dense returns the lattice as a gonum Dense, one lattice vector per row.
func (l Lattice) Dense() *mat.Dense {
	d := make([]float64, 9)
	copy(d, l[:])
	return mat.NewDense(3, 3, d)
}

// Determinant returns the determinant of the lattice, i.e. the signed volume
// of the cell.
func Determinant(l Lattice) float64 {
	return l[0]*(l[4]*l[8]-l[5]*l[7]) +
		l[1]*(l[5]*l[6]-l[3]*l[8]) +
		l[2]*(l[3]*l[7]-l[4]*l[6])
}

// FaceArea returns the area of the parallelogram spanned by u and v.
func FaceArea(u, v [3]float64) float64 {
	return v3.Norm(v3.Cross(u, v))
}

// Thickness returns, for each lattice vector, the perpendicular distance
// between the two faces of the cell spanned by the other two vectors.
// A sphere of radius r fits in the cell along axis d only if 2r <= thickness[d].
func Thickness(l Lattice) [3]float64 {
	volume := math.Abs(Determinant(l))
	a, b, c := l.Vec(0), l.Vec(1), l.Vec(2)
	return [3]float64{volume / FaceArea(b, c), volume / FaceArea(c, a), volume / FaceArea(a, b)}
}

// Fractional solves r = s[0]*a + s[1]*b + s[2]*c for s. It returns an error
// if the lattice is degenerate.
func Fractional(l Lattice, r [3]float64) ([3]float64, error) {
	var s [3]float64
	if isDegenerate(l) {
		return s, newError(ErrDegenerate.Error(), "Fractional", ErrDegenerate)
	}
	var lt mat.Dense
	lt.CloneFrom(l.Dense().T())
	var sv mat.VecDense
	if err := sv.SolveVec(&lt, mat.NewVecDense(3, []float64{r[0], r[1], r[2]})); err != nil {
		return s, newError(err.Error(), "Fractional", ErrDegenerate)
	}
	for i := range s {
		s[i] = sv.AtVec(i)
	}
	return s, nil
}

// Cartesian returns s[0]*a + s[1]*b + s[2]*c.
func Cartesian(l Lattice, s [3]float64) [3]float64 {
	var r [3]float64
	for d := 0; d < 3; d++ {
		r[d] = s[0]*l[d] + s[1]*l[3+d] + s[2]*l[6+d]
	}
	return r
}

// MinimumImage returns the minimum image of the displacement d: the
// fractional components along periodic axes are wrapped into [-0.5, 0.5)
// and the result converted back to cartesian coordinates. If no pbc is given
// all axes are periodic.
func MinimumImage(l Lattice, d [3]float64, pbc ...PBC) ([3]float64, error) {
	p := AllPeriodic
	if len(pbc) > 0 {
		p = pbc[0]
	}
	s, err := Fractional(l, d)
	if err != nil {
		return d, errDecorate(err, "MinimumImage")
	}
	return Cartesian(l, wrapHalf(s, p)), nil
}

// wrapHalf wraps each periodic component of s into [-0.5, 0.5).
func wrapHalf(s [3]float64, p PBC) [3]float64 {
	for i, v := range s {
		if !p[i] {
			continue
		}
		s[i] = v - math.Floor(v+0.5)
	}
	return s
}

// isDegenerate returns true if the volume of the cell is zero, compared to
// the volume of a box with the same vector lengths.
func isDegenerate(l Lattice) bool {
	det := Determinant(l)
	scale := v3.Norm(l.Vec(0)) * v3.Norm(l.Vec(1)) * v3.Norm(l.Vec(2))
	return scale == 0 || math.IsNaN(det) || math.Abs(det) <= appzero*scale
}

const appzero float64 = 1e-12

// FromParameters returns the lattice with vector lengths a, b and c and
// angles alpha (between b and c), beta (a and c) and gamma (a and b), in
// degrees. a lies along x and b in the xy plane.
func FromParameters(a, b, c, alpha, beta, gamma float64) Lattice {
	const deg2rad = math.Pi / 180
	ca, cb := math.Cos(alpha*deg2rad), math.Cos(beta*deg2rad)
	sg, cg := math.Sincos(gamma * deg2rad)
	cx := c * cb
	cy := c * (ca - cb*cg) / sg
	cz := math.Sqrt(math.Max(0, c*c-cx*cx-cy*cy))
	return Lattice{a, 0, 0, b * cg, b * sg, 0, cx, cy, cz}
}

// Parameters returns the lengths of the lattice vectors and the angles
// alpha, beta and gamma between them, in degrees.
func Parameters(l Lattice) (lengths, angles [3]float64) {
	a, b, c := l.Vec(0), l.Vec(1), l.Vec(2)
	lengths = [3]float64{v3.Norm(a), v3.Norm(b), v3.Norm(c)}
	angles = [3]float64{v3.Angle(b, c), v3.Angle(a, c), v3.Angle(a, b)}
	for i := range angles {
		angles[i] *= 180 / math.Pi
	}
	return lengths, angles
}
