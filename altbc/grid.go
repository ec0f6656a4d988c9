/*
 * grid.go, part of goALTBC
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

package altbc

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Grid is a square occupancy grid over the (AB, BC) plane. Rows correspond
// to BC and columns to AB. Each frame adds 1 to every bin that holds at
// least one triplet in that frame.
type Grid struct {
	min, max, size float64
	n              int
	counts         *mat.Dense
	frames         int
}

// NewGrid returns an empty grid spanning [min, max) along both axes, with
// int((max-min)/size) bins of size size.
func NewGrid(min, max, size float64) (*Grid, error) {
	if !(size > 0) {
		return nil, newError(fmt.Sprintf("bin size %g", size), "NewGrid", ErrBadGrid)
	}
	n := int((max - min) / size)
	if n < 1 {
		return nil, newError(fmt.Sprintf("grid from %g to %g with bins of %g", min, max, size), "NewGrid", ErrBadGrid)
	}
	return &Grid{min: min, max: max, size: size, n: n, counts: mat.NewDense(n, n, nil)}, nil
}

// Bins returns the number of bins along each axis.
func (G *Grid) Bins() int { return G.n }

// Limits returns the lower limit, the upper limit and the size of the bins.
func (G *Grid) Limits() (min, max, size float64) { return G.min, G.max, G.size }

// Frames returns the number of frames added to the grid.
func (G *Grid) Frames() int { return G.frames }

// bin returns the bin of the distance x, and false if x is out of the grid.
// Bins are taken with floor, not truncation, so distances just below the
// lower limit are dropped instead of counted in the first bin.
func (G *Grid) bin(x float64) (int, bool) {
	f := math.Floor((x - G.min) / G.size)
	if !(f >= 0 && f < float64(G.n)) {
		return 0, false
	}
	return int(f), true
}

// AddFrame marks the bins occupied by the triplets in T, which must all
// belong to the same frame.
func (G *Grid) AddFrame(T *Table) {
	occupied := make(map[[2]int]bool)
	for _, t := range T.Triplets {
		c, okc := G.bin(t.AB)
		r, okr := G.bin(t.BC)
		if okc && okr {
			occupied[[2]int{r, c}] = true
		}
	}
	for rc := range occupied {
		G.counts.Set(rc[0], rc[1], G.counts.At(rc[0], rc[1])+1)
	}
	G.frames++
}

// Merge adds the counts of o to the grid. Both grids must have the same limits and bins.
func (G *Grid) Merge(o *Grid) error {
	if G.n != o.n || G.min != o.min || G.size != o.size {
		return newError("grids with different bins can't be merged", "Merge", ErrBadGrid)
	}
	G.counts.Add(G.counts, o.counts)
	G.frames += o.frames
	return nil
}

// At returns the count for BC bin r and AB bin c.
func (G *Grid) At(r, c int) float64 { return G.counts.At(r, c) }

// Counts returns a copy of the counts.
func (G *Grid) Counts() *mat.Dense {
	return mat.DenseCopyOf(G.counts)
}

// Normalized returns a copy of the counts divided by the largest count. An
// empty grid is returned as is.
func (G *Grid) Normalized() *mat.Dense {
	ret := mat.DenseCopyOf(G.counts)
	if max := mat.Max(ret); max > 0 {
		ret.Scale(1/max, ret)
	}
	return ret
}

// WriteText writes the counts, one row per line, with comma-separated values.
func (G *Grid) WriteText(out io.Writer) error {
	w := bufio.NewWriter(out)
	for r := 0; r < G.n; r++ {
		for c := 0; c < G.n; c++ {
			if c > 0 {
				w.WriteByte(',')
			}
			fmt.Fprintf(w, "%f", G.counts.At(r, c))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return newError(err.Error(), "WriteText", err)
	}
	return nil
}

// WriteFile writes the counts to the file name, as WriteText does.
func (G *Grid) WriteFile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return newError(err.Error(), "WriteFile", err)
	}
	if err = G.WriteText(f); err != nil {
		f.Close()
		return errDecorate(err, "WriteFile")
	}
	if err = f.Close(); err != nil {
		return newError(err.Error(), "WriteFile", err)
	}
	return nil
}
