/*
 * gonum.go, part of goALTBC.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//All the *Vec functions operate on row vectors, i.e. on the cartesian
//coordinates of one point.

package v3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space. Within the package it is understood
// that a "vector" is a row vector, i.e. the cartesian coordinates of a point in
// 3D space. The name of some functions in the library reflect this.
type Matrix struct {
	*mat.Dense
}

// Matrix2Dense returns the gonum Dense underlying A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

// Dense2Matrix wraps a Nx3 gonum Dense. It panics if A doesn't have 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
// data is used as the backing slice, it is not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

// Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

// NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// VecView returns a view of the given vector of the matrix. Changes in the view
// are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

// View returns a view of F starting from the i-th vector and spanning r vectors.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)
	return &Matrix{ret}
}

// Vec returns a copy of the i-th vector of F as an array.
func (F *Matrix) Vec(i int) [3]float64 {
	return [3]float64{F.At(i, 0), F.At(i, 1), F.At(i, 2)}
}

// SetVec sets the i-th vector of F to v.
func (F *Matrix) SetVec(i int, v [3]float64) {
	F.Set(i, 0, v[0])
	F.Set(i, 1, v[1])
	F.Set(i, 2, v[2])
}

// Vecs copies all the vectors in F to a slice of arrays. If dest is given and
// has enough room, it is used instead of allocating a new slice.
func (F *Matrix) Vecs(dest ...[][3]float64) [][3]float64 {
	n := F.NVecs()
	var ret [][3]float64
	if len(dest) > 0 && cap(dest[0]) >= n {
		ret = dest[0][:n]
	} else {
		ret = make([][3]float64, n)
	}
	for i := range ret {
		ret[i] = F.Vec(i)
	}
	return ret
}

// SomeVecs puts in the receiver the vectors of A with the indexes in clist, in
// the same order as clist. Panics if the dimensions don't match.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar, _ := A.Dims()
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		if val >= ar {
			panic(ErrIndexOutOfRange)
		}
		for j := 0; j < 3; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

// SomeVecsSafe is like SomeVecs, but returns an error instead of panicking.
func (F *Matrix) SomeVecsSafe(A *Matrix, clist []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case PanicMsg:
				err = Error{string(e), []string{"SomeVecsSafe"}, true}
			case mat.Error:
				err = Error{fmt.Sprintf("Error in a gonum function: %s", e), []string{"SomeVecsSafe"}, true}
			default:
				panic(r)
			}
		}
	}()
	F.SomeVecs(A, clist)
	return err
}

// SubVec subtracts the vector vec from each vector of A, putting the result in
// the receiver.
func (F *Matrix) SubVec(A, vec *Matrix) {
	ar, _ := A.Dims()
	if vec.NVecs() != 1 || F.NVecs() != ar {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)-vec.At(0, j))
		}
	}
}

// AddVec adds the vector vec to each vector of A, putting the result in
// the receiver.
func (F *Matrix) AddVec(A, vec *Matrix) {
	ar, _ := A.Dims()
	if vec.NVecs() != 1 || F.NVecs() != ar {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+vec.At(0, j))
		}
	}
}

// Cross puts the cross product of the first vecs of a and b in the first vec of F.
func (F *Matrix) Cross(a, b *Matrix) {
	if a.NVecs() < 1 || b.NVecs() < 1 || F.NVecs() < 1 {
		panic(ErrNoCrossProduct)
	}
	F.SetVec(0, Cross(a.Vec(0), b.Vec(0)))
}

// Dot returns the dot product of the first vectors of F and A.
func (F *Matrix) Dot(A *Matrix) float64 {
	return Dot(F.Vec(0), A.Vec(0))
}

// Norm returns the euclidean norm of the first vector of F.
func (F *Matrix) Norm() float64 {
	return Norm(F.Vec(0))
}

// String returns a neat string representation of a Matrix.
func (F *Matrix) String() string {
	r, _ := F.Dims()
	ret := "\n["
	for i := 0; i < r; i++ {
		if i > 0 {
			ret += "\n "
		}
		ret += fmt.Sprintf("%6.2f %6.2f %6.2f", F.At(i, 0), F.At(i, 1), F.At(i, 2))
	}
	return ret + " ]"
}

//Plain-array helpers. These are the ones used in the tight loops of the
//neighbor search and the triplet engine, where allocating views would hurt.

// Sub returns a-b.
func Sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Dot returns the dot product of a and b.
func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross returns the cross product of a and b.
func Cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Norm returns the euclidean norm of a.
func Norm(a [3]float64) float64 {
	return math.Sqrt(Dot(a, a))
}

// Angle returns the angle between a and b in radians. Floating point
// errors that would take the cosine outside [-1, 1] are corrected.
func Angle(a, b [3]float64) float64 {
	normproduct := Norm(a) * Norm(b)
	if normproduct == 0 {
		return math.NaN()
	}
	argument := Dot(a, b) / normproduct
	if argument > 1 {
		argument = 1
	} else if argument < -1 {
		argument = -1
	}
	return math.Acos(argument)
}

//Errors

// Error is the error type for the v3 package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return fmt.Sprintf("goALTBC/v3: %s", err.message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("goALTBC/v3: A v3.Matrix should have 3 columns")
	ErrNoCrossProduct  = PanicMsg("goALTBC/v3: Invalid matrix for cross product")
	ErrShape           = PanicMsg("goALTBC/v3: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("goALTBC/v3: index out of range")
)
