/*
 * chem.go, part of goALTBC.
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

package chem

import (
	"fmt"

	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
)

// Atom contains the information for one atom. Coordinates are kept
// separately, in the frames of a Molecule or a trajectory.
type Atom struct {
	Name   string
	ID     int
	Tag    int //For anything the user might want to keep that is not a float.
	Mass   float64
	Symbol string
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	return &ret
}

// Topology contains the information for a set of atoms, but no coordinates.
type Topology struct {
	Atoms []*Atom
}

// NewTopology returns a topology with one atom per symbol given, in that order.
// Atom IDs start from 1, and the masses are assigned from the symbols, when known.
func NewTopology(symbols []string) *Topology {
	T := &Topology{Atoms: make([]*Atom, 0, len(symbols))}
	for i, s := range symbols {
		s = normalizeSymbol(s)
		at := &Atom{Name: s, ID: i + 1, Symbol: s}
		at.Mass, _ = Symbol2Mass(s)
		T.Atoms = append(T.Atoms, at)
	}
	return T
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. It panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	if T == nil {
		return 0
	}
	return len(T.Atoms)
}

// Symbols returns the symbols of all atoms in the topology, in order.
func Symbols(T Atomer) []string {
	ret := make([]string, T.Len())
	for i := range ret {
		ret[i] = T.Atom(i).Symbol
	}
	return ret
}

// Species returns the distinct symbols in T, in order of first appearance.
func Species(T Atomer) []string {
	seen := make(map[string]bool)
	ret := make([]string, 0, 4)
	for i := 0; i < T.Len(); i++ {
		s := T.Atom(i).Symbol
		if !seen[s] {
			seen[s] = true
			ret = append(ret, s)
		}
	}
	return ret
}

// Masses returns a slice with the masses of each atom in T.
// It returns an error if the mass of some atom is not known.
func Masses(T Atomer) ([]float64, error) {
	ret := make([]float64, T.Len())
	for i := range ret {
		at := T.Atom(i)
		if at.Mass == 0 {
			return nil, newCError(fmt.Sprintf("no mass for atom %d (%s)", i, at.Symbol), "", "chem", "Masses")
		}
		ret[i] = at.Mass
	}
	return ret, nil
}

// Molecule holds a topology and one or more frames, each with its own
// lattice. It implements Traj, so it can be analyzed as a trajectory.
type Molecule struct {
	*Topology
	Coords  []*v3.Matrix
	Boxes   []box.Lattice //one per frame. Empty for non-periodic structures.
	PBC     box.PBC
	current int
}

// NewMolecule returns a Molecule with the given topology and frames. It
// returns an error if the frames don't all have as many atoms as the topology,
// or if boxes is not empty and doesn't have one lattice per frame.
func NewMolecule(top *Topology, coords []*v3.Matrix, boxes []box.Lattice) (*Molecule, error) {
	if top == nil || len(coords) == 0 {
		return nil, newCError("nil topology or no coordinates", "", "chem", "NewMolecule")
	}
	for i, c := range coords {
		if c.NVecs() != top.Len() {
			return nil, newCError(fmt.Sprintf("frame %d has %d atoms, the topology has %d", i, c.NVecs(), top.Len()), "", "chem", "NewMolecule")
		}
	}
	if len(boxes) != 0 && len(boxes) != len(coords) {
		return nil, newCError(fmt.Sprintf("%d boxes for %d frames", len(boxes), len(coords)), "", "chem", "NewMolecule")
	}
	return &Molecule{Topology: top, Coords: coords, Boxes: boxes, PBC: box.AllPeriodic}, nil
}

// Frames returns the number of frames in the molecule.
func (M *Molecule) Frames() int { return len(M.Coords) }

// Periodic returns true if the molecule has a lattice for each frame.
func (M *Molecule) Periodic() bool { return len(M.Boxes) > 0 }

/**Traj interface implementation***********/

// Readable returns true if there are frames left to read.
func (M *Molecule) Readable() bool {
	return M != nil && M.current < len(M.Coords)
}

// Next copies the next frame into output, if output is not nil, and its
// lattice into the first box slice given, if any. It returns a LastFrameError
// once all frames have been read.
func (M *Molecule) Next(output *v3.Matrix, boxes ...[]float64) error {
	if !M.Readable() {
		return NewLastFrameError("", "molecule", "Next")
	}
	defer func() { M.current++ }()
	if output != nil {
		if output.NVecs() != M.Len() {
			return newCError(fmt.Sprintf("output has %d vectors, %d needed", output.NVecs(), M.Len()), "", "molecule", "Next")
		}
		output.Copy(M.Coords[M.current])
	}
	if len(boxes) > 0 && len(boxes[0]) >= 9 && M.Periodic() {
		copy(boxes[0], M.Boxes[M.current][:])
	}
	return nil
}

// Rewind makes the next call to Next return the first frame again.
func (M *Molecule) Rewind() { M.current = 0 }

/**End Traj interface implementation***********/
