/*
 * triplet.go, part of goALTBC
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

// Package altbc computes angular-limited three-body correlations: for each
// center atom B, every ordered pair (A, C) of its bonded neighbors such that
// the angle A-B-C lies in a given window is located, and its two bond lengths
// are recorded together with a statistical weight.
package altbc

import (
	"fmt"
	"math"
	"strings"

	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	"github.com/rmera/goaltbc/neighbor"
	v3 "github.com/rmera/goaltbc/v3"
)

const rad2deg = 180 / math.Pi

// Triplet is an ordered triplet of atoms A-B-C, where B is the center and A
// and C are distinct neighbors of B.
type Triplet struct {
	Frame      int     `json:"frame"`
	A          int     `json:"a"`
	B          int     `json:"b"`
	C          int     `json:"c"`
	AB         float64 `json:"ab"`
	BC         float64 `json:"bc"`
	Angle      float64 `json:"angle_abc"` //degrees
	Weight     float64 `json:"weight"`    //1/k, with k the number of neighbors of B
	PairWeight float64 `json:"pair"`      //sum of the weights of all triplets with the same AB pair
}

// PairKey identifies an unordered pair of atoms. I <= J.
type PairKey struct {
	I, J int
}

// NewPairKey returns the key for the pair formed by a and b, in any order.
func NewPairKey(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{a, b}
}

// Table is the set of triplets kept in one or more frames.
type Table struct {
	Triplets []Triplet
	pairs    map[PairKey]float64
}

// Len returns the number of triplets in the table.
func (T *Table) Len() int {
	if T == nil {
		return 0
	}
	return len(T.Triplets)
}

// PairWeight returns the sum of the weights of the triplets in the frame
// where the unordered pair {a, b} is the AB leg. For a table that
// concatenates several frames, the sums of all the frames are added up.
func (T *Table) PairWeight(a, b int) float64 {
	return T.pairs[NewPairKey(a, b)]
}

// PairWeights returns a copy of the per-pair weight sums.
func (T *Table) PairWeights() map[PairKey]float64 {
	ret := make(map[PairKey]float64, len(T.pairs))
	for k, v := range T.pairs {
		ret[k] = v
	}
	return ret
}

// CenterWeight returns the sum of the weights of all the triplets centered on b.
func (T *Table) CenterWeight(b int) float64 {
	w := 0.0
	for _, t := range T.Triplets {
		if t.B == b {
			w += t.Weight
		}
	}
	return w
}

// Append adds the triplets of o to the table, and the pair weight sums of o
// to those of the table.
func (T *Table) Append(o *Table) {
	if o == nil {
		return
	}
	T.Triplets = append(T.Triplets, o.Triplets...)
	if T.pairs == nil {
		T.pairs = make(map[PairKey]float64, len(o.pairs))
	}
	for k, v := range o.pairs {
		T.pairs[k] += v
	}
}

// Triplets enumerates, for each atom in centers with at least two neighbors
// in adj, the k(k-1) ordered pairs of its k neighbors, and returns those
// with an angle within [ThetaMin, ThetaMax] and both bonds not longer than
// the cutoff given in o. If centers is nil, all atoms are considered.
// Bond vectors are corrected with the minimum image convention if o.MIC() is true.
// Each triplet has a weight 1/k. A table without triplets is not an error.
func Triplets(B *box.Box, positions [][3]float64, adj []neighbor.Neighbors, centers []int, o *Options) (*Table, error) {
	if err := o.Validate(); err != nil {
		return nil, errDecorate(err, "Triplets")
	}
	if len(adj) != len(positions) {
		return nil, newError(fmt.Sprintf("%d neighbor lists for %d atoms", len(adj), len(positions)), "Triplets", ErrMismatch)
	}
	T := &Table{pairs: make(map[PairKey]float64)}
	if centers == nil {
		centers = make([]int, len(positions))
		for i := range centers {
			centers[i] = i
		}
	}
	tmin, tmax, cutoff := o.ThetaMin(), o.ThetaMax(), o.Cutoff()
	var bonds [][3]float64
	for _, b := range centers {
		nb := adj[b]
		k := nb.Len()
		if k < 2 {
			continue
		}
		w := 1 / float64(k)
		bonds = bonds[:0]
		for _, n := range nb.Index {
			d := v3.Sub(positions[n], positions[b])
			if o.MIC() {
				d = B.MinimumImage(d)
			}
			bonds = append(bonds, d)
		}
		for ia := 0; ia < k; ia++ {
			for ic := 0; ic < k; ic++ {
				if ia == ic {
					continue
				}
				ab, bc := nb.Dist[ia], nb.Dist[ic]
				if ab > cutoff || bc > cutoff {
					continue
				}
				//NaN for coincident atoms, which fails the test.
				angle := v3.Angle(bonds[ia], bonds[ic]) * rad2deg
				if !(angle >= tmin && angle <= tmax) {
					continue
				}
				t := Triplet{A: nb.Index[ia], B: b, C: nb.Index[ic], AB: ab, BC: bc, Angle: angle, Weight: w}
				T.pairs[NewPairKey(t.A, t.B)] += w
				T.Triplets = append(T.Triplets, t)
			}
		}
	}
	for i, t := range T.Triplets {
		T.Triplets[i].PairWeight = T.pairs[NewPairKey(t.A, t.B)]
	}
	return T, nil
}

// Centers returns the indexes of the atoms in top with the symbol center
// (compared without regard to case). An empty center selects all atoms, and
// then Centers returns nil.
func Centers(top chem.Atomer, center string) ([]int, error) {
	if center == "" {
		return nil, nil
	}
	if top == nil {
		return nil, newError(fmt.Sprintf("center %q", center), "Centers", ErrNoTopology)
	}
	ret := make([]int, 0, top.Len()/2+1)
	for i := 0; i < top.Len(); i++ {
		if strings.EqualFold(top.Atom(i).Symbol, center) {
			ret = append(ret, i)
		}
	}
	return ret, nil
}

// Frame runs the whole analysis on one frame: it builds the cell geometry
// from lattice and o.PBC(), finds all neighbor pairs, builds the neighbor
// lists (symmetric, unless o.Half() is true) and returns the triplets found.
// top can be nil if no center species is requested. The returned triplets
// have Frame set to 0.
func Frame(lattice box.Lattice, positions [][3]float64, top chem.Atomer, o *Options) (*Table, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if err := o.Validate(); err != nil {
		return nil, errDecorate(err, "Frame")
	}
	if len(positions) == 0 {
		return nil, newError("no positions given", "Frame", ErrEmptyFrame)
	}
	if top != nil && top.Len() != len(positions) {
		return nil, newError(fmt.Sprintf("%d positions, %d atoms in the topology", len(positions), top.Len()), "Frame", ErrMismatch)
	}
	centers, err := Centers(top, o.Center())
	if err != nil {
		return nil, errDecorate(err, "Frame")
	}
	B, err := box.New(lattice, o.PBC())
	if err != nil {
		return nil, newError(err.Error(), "Frame", err)
	}
	no := neighbor.DefaultOptions()
	no.Cutoff(o.Cutoff())
	no.MIC(o.MIC())
	no.Workers(o.Workers())
	pairs, err := neighbor.Search(B, positions, no)
	if err != nil {
		return nil, newError(err.Error(), "Frame", err)
	}
	adj := neighbor.Adjacency(pairs, len(positions), o.Half())
	T, err := Triplets(B, positions, adj, centers, o)
	if err != nil {
		return nil, errDecorate(err, "Frame")
	}
	return T, nil
}

// BoundingLattice returns an orthorhombic lattice for structures without a
// cell, which must be used with non-periodic boundary conditions. The
// positions are translated in place so they all lie inside the lattice, at
// least cutoff away from its faces.
func BoundingLattice(positions [][3]float64, cutoff float64) box.Lattice {
	var lo, hi [3]float64
	for d := 0; d < 3; d++ {
		lo[d], hi[d] = math.Inf(1), math.Inf(-1)
	}
	for _, p := range positions {
		for d, v := range p {
			lo[d] = math.Min(lo[d], v)
			hi[d] = math.Max(hi[d], v)
		}
	}
	var side [3]float64
	for d := range side {
		side[d] = 2 * cutoff
		if hi[d] > lo[d] {
			side[d] += hi[d] - lo[d]
		}
	}
	for i := range positions {
		for d := range positions[i] {
			positions[i][d] += cutoff - lo[d]
		}
	}
	return box.Orthorhombic(side[0], side[1], side[2])
}
