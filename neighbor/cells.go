/*
 * cells.go, part of goALTBC
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

package neighbor

import (
	"fmt"
	"math"

	"github.com/rmera/goaltbc/box"
)

// Cells is a linked-cell partition of a set of atoms. The atoms in cell c are
// Contents()[Offset(c) : Offset(c)+Count(c)].
type Cells struct {
	n        [3]int
	total    int
	pbc      box.PBC
	count    []int
	offset   []int
	contents []int
	home     [][3]int //the cell of each atom, per axis
}

// maxCellsPerAtom bounds the grid size for very small cutoffs. Fewer, larger,
// cells are still correct, as long as they are not thinner than the cutoff.
const maxCellsPerAtom = 4

// BuildCells partitions the atoms at positions into a grid of cells not
// thinner than cutoff along any axis, using a counting sort. It takes O(N)
// time and memory.
func BuildCells(B *box.Box, positions [][3]float64, cutoff float64) (*Cells, error) {
	if !(cutoff > 0) || math.IsInf(cutoff, 1) {
		return nil, newError(fmt.Sprintf("invalid cutoff %g", cutoff), "BuildCells", ErrBadCutoff)
	}
	C := &Cells{pbc: B.PBC()}
	th := B.Thickness()
	limit := maxCellsPerAtom*len(positions) + 27
	for d := 0; d < 3; d++ {
		//capped per axis first, so the product below can't overflow.
		C.n[d] = int(math.Min(math.Floor(th[d]/cutoff), float64(limit)))
		if C.n[d] < 1 {
			C.n[d] = 1
		}
	}
	for float64(C.n[0])*float64(C.n[1])*float64(C.n[2]) > float64(limit) {
		big := 0
		for d := 1; d < 3; d++ {
			if C.n[d] > C.n[big] {
				big = d
			}
		}
		C.n[big] = (C.n[big] + 1) / 2
	}
	C.total = C.n[0] * C.n[1] * C.n[2]
	C.count = make([]int, C.total)
	C.offset = make([]int, C.total)
	C.contents = make([]int, len(positions))
	C.home = make([][3]int, len(positions))
	lin := make([]int, len(positions))
	for i, r := range positions {
		for _, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, newError(fmt.Sprintf("atom %d has position %v", i, r), "BuildCells", ErrBadPosition)
			}
		}
		C.home[i] = C.cellOf(B.Fractional(r))
		lin[i] = C.Linear(C.home[i])
		C.count[lin[i]]++
	}
	for c := 1; c < C.total; c++ {
		C.offset[c] = C.offset[c-1] + C.count[c-1]
	}
	filled := make([]int, C.total)
	for i, c := range lin {
		C.contents[C.offset[c]+filled[c]] = i
		filled[c]++
	}
	return C, nil
}

// cellOf returns the cell, per axis, that contains the fractional point s.
// Indexes are wrapped along periodic axes and clamped along the others.
func (C *Cells) cellOf(s [3]float64) [3]int {
	var c [3]int
	for d := 0; d < 3; d++ {
		f := math.Floor(s[d] * float64(C.n[d]))
		if C.pbc[d] {
			f = f - float64(C.n[d])*math.Floor(f/float64(C.n[d]))
		}
		if f < 0 {
			f = 0
		} else if f >= float64(C.n[d]) {
			f = float64(C.n[d] - 1)
		}
		c[d] = int(f)
	}
	return c
}

// Dims returns the number of cells along each lattice vector.
func (C *Cells) Dims() [3]int { return C.n }

// Len returns the total number of cells.
func (C *Cells) Len() int { return C.total }

// Linear returns the linear index of the cell with per-axis indexes c.
func (C *Cells) Linear(c [3]int) int {
	return c[0] + C.n[0]*(c[1]+C.n[1]*c[2])
}

// Home returns the per-axis cell indexes of atom i.
func (C *Cells) Home(i int) [3]int { return C.home[i] }

// Count returns the number of atoms in cell c.
func (C *Cells) Count(c int) int { return C.count[c] }

// Offset returns the position of the first atom of cell c in Contents.
func (C *Cells) Offset(c int) int { return C.offset[c] }

// Atoms returns a view of the indexes of the atoms in cell c.
func (C *Cells) Atoms(c int) []int {
	return C.contents[C.offset[c] : C.offset[c]+C.count[c]]
}

// Contents returns a view of the atom indexes sorted by cell.
func (C *Cells) Contents() []int { return C.contents }

// Stencil appends to dest the linear indexes of the cell c and of its
// neighbors, and returns the result. Each cell appears only once, even when
// there are less than 3 cells along some axis and the 27-cell stencil
// folds onto itself. Along non-periodic axes, neighbors outside the grid
// are omitted.
func (C *Cells) Stencil(dest []int, c [3]int) []int {
	var axes [3][3]int
	var lens [3]int
	for d := 0; d < 3; d++ {
	offsets:
		for off := -1; off <= 1; off++ {
			v := c[d] + off
			if v < 0 || v >= C.n[d] {
				if !C.pbc[d] {
					continue
				}
				v = (v + C.n[d]) % C.n[d]
			}
			for _, seen := range axes[d][:lens[d]] {
				if seen == v {
					continue offsets
				}
			}
			axes[d][lens[d]] = v
			lens[d]++
		}
	}
	for _, z := range axes[2][:lens[2]] {
		for _, y := range axes[1][:lens[1]] {
			for _, x := range axes[0][:lens[0]] {
				dest = append(dest, C.Linear([3]int{x, y, z}))
			}
		}
	}
	return dest
}
