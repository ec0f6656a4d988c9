/*
 * search.go, part of goALTBC
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

// Package neighbor finds all the pairs of atoms closer than a cutoff in a
// general periodic cell, using a linked-cell algorithm that scales linearly
// with the number of atoms.
package neighbor

import (
	"fmt"
	"math"
	"sort"

	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
	"golang.org/x/sync/errgroup"
)

// Pair is an unordered pair of atoms closer than the cutoff. I < J always.
// D is the distance between them, after the minimum image correction if
// that was requested.
type Pair struct {
	I, J int
	D    float64
}

// CheckCutoff returns an error if cutoff can't be used for a search in B.
// With the minimum image correction, the cutoff must be smaller than half
// the thickness of the box along every periodic axis.
func CheckCutoff(B *box.Box, cutoff float64, mic bool) error {
	if !(cutoff > 0) {
		return newError(fmt.Sprintf("invalid cutoff %g", cutoff), "CheckCutoff", ErrBadCutoff)
	}
	if !mic {
		return nil
	}
	th := B.Thickness()
	pbc := B.PBC()
	for d := 0; d < 3; d++ {
		if pbc[d] && 2*cutoff >= th[d] {
			return newError(fmt.Sprintf("cutoff %g, box thickness along axis %d is %g", cutoff, d, th[d]), "CheckCutoff", ErrCutoffTooLarge)
		}
	}
	return nil
}

// Search returns all the pairs of atoms at positions closer than the cutoff
// given in o, sorted by I and then by J. If o is not given, DefaultOptions()
// is used. Positions need not be inside the box.
func Search(B *box.Box, positions [][3]float64, o ...*Options) ([]Pair, error) {
	opts := DefaultOptions()
	if len(o) > 0 && o[0] != nil {
		opts = o[0]
	}
	cutoff := opts.Cutoff()
	if err := CheckCutoff(B, cutoff, opts.MIC()); err != nil {
		return nil, errDecorate(err, "Search")
	}
	if len(positions) < 2 {
		return []Pair{}, nil
	}
	C, err := BuildCells(B, positions, cutoff)
	if err != nil {
		return nil, errDecorate(err, "Search")
	}
	workers := opts.Workers()
	if workers > len(positions) {
		workers = len(positions)
	}
	chunk := (len(positions) + workers - 1) / workers
	buffers := make([][]Pair, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		first := w * chunk
		last := first + chunk
		if last > len(positions) {
			last = len(positions)
		}
		w := w
		g.Go(func() error {
			buffers[w] = scan(B, C, positions, first, last, cutoff, opts.MIC())
			return nil
		})
	}
	g.Wait()
	total := 0
	for _, b := range buffers {
		total += len(b)
	}
	ret := make([]Pair, 0, total)
	for _, b := range buffers {
		ret = append(ret, b...)
	}
	return ret, nil
}

// scan finds the pairs where the lower-indexed atom is in [first, last).
// The pairs are returned sorted.
func scan(B *box.Box, C *Cells, positions [][3]float64, first, last int, cutoff float64, mic bool) []Pair {
	cutoff2 := cutoff * cutoff
	var ret []Pair
	stencil := make([]int, 0, 27)
	for n1 := first; n1 < last; n1++ {
		r1 := positions[n1]
		start := len(ret)
		stencil = C.Stencil(stencil[:0], C.Home(n1))
		for _, c := range stencil {
			for _, n2 := range C.Atoms(c) {
				if n1 >= n2 {
					continue
				}
				d := v3.Sub(positions[n2], r1)
				if mic {
					d = B.MinimumImage(d)
				}
				d2 := v3.Dot(d, d)
				if d2 < cutoff2 {
					ret = append(ret, Pair{I: n1, J: n2, D: math.Sqrt(d2)})
				}
			}
		}
		found := ret[start:]
		sort.Slice(found, func(i, j int) bool { return found[i].J < found[j].J })
	}
	return ret
}

// BruteForce returns the same pairs as Search, checking every pair of atoms.
// It takes O(N^2) time and is meant for small systems and for validation.
func BruteForce(B *box.Box, positions [][3]float64, cutoff float64, mic bool) ([]Pair, error) {
	if err := CheckCutoff(B, cutoff, mic); err != nil {
		return nil, errDecorate(err, "BruteForce")
	}
	cutoff2 := cutoff * cutoff
	ret := []Pair{}
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			d := v3.Sub(positions[j], positions[i])
			if mic {
				d = B.MinimumImage(d)
			}
			d2 := v3.Dot(d, d)
			if d2 < cutoff2 {
				ret = append(ret, Pair{I: i, J: j, D: math.Sqrt(d2)})
			}
		}
	}
	return ret, nil
}
