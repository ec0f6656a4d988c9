/*
 * cell.go, part of goALTBC.
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

package box

import (
	"gonum.org/v1/gonum/mat"
)

// Box is a validated, non-degenerate lattice together with its boundary
// conditions. It caches the inverse needed to obtain fractional coordinates,
// so it is the type to use in loops over many atoms. A Box is never modified
// after creation and can be shared among goroutines.
type Box struct {
	lat       Lattice
	inv       [9]float64 //inverse of the transposed lattice, row-major
	pbc       PBC
	det       float64
	thickness [3]float64
}

// New returns a Box for the lattice l. If no pbc is given, the box is periodic
// along the three lattice vectors. A degenerate lattice is an error wrapping
// ErrDegenerate.
func New(l Lattice, pbc ...PBC) (*Box, error) {
	B := &Box{lat: l, pbc: AllPeriodic}
	if len(pbc) > 0 {
		B.pbc = pbc[0]
	}
	if isDegenerate(l) {
		return nil, newError(ErrDegenerate.Error(), "New", ErrDegenerate)
	}
	var inv mat.Dense
	if err := inv.Inverse(l.Dense().T()); err != nil {
		return nil, newError(err.Error(), "New", ErrDegenerate)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			B.inv[3*i+j] = inv.At(i, j)
		}
	}
	B.det = Determinant(l)
	B.thickness = Thickness(l)
	return B, nil
}

// Lattice returns the lattice of the box.
func (B *Box) Lattice() Lattice { return B.lat }

// PBC returns the boundary conditions of the box.
func (B *Box) PBC() PBC { return B.pbc }

// Volume returns the (positive) volume of the box.
func (B *Box) Volume() float64 {
	if B.det < 0 {
		return -B.det
	}
	return B.det
}

// Thickness returns the distances between opposite faces of the box.
func (B *Box) Thickness() [3]float64 { return B.thickness }

// Fractional returns the fractional coordinates of the cartesian point r.
func (B *Box) Fractional(r [3]float64) [3]float64 {
	var s [3]float64
	for i := 0; i < 3; i++ {
		s[i] = B.inv[3*i]*r[0] + B.inv[3*i+1]*r[1] + B.inv[3*i+2]*r[2]
	}
	return s
}

// Cartesian returns the cartesian coordinates of the fractional point s.
func (B *Box) Cartesian(s [3]float64) [3]float64 {
	return Cartesian(B.lat, s)
}

// MinimumImage returns the minimum image of the displacement d, wrapping only
// along the periodic axes of the box.
func (B *Box) MinimumImage(d [3]float64) [3]float64 {
	return B.Cartesian(wrapHalf(B.Fractional(d), B.pbc))
}
