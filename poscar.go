/*
 * poscar.go, part of goALTBC.
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
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
)

// VASPHeader is the part shared by the POSCAR, CONTCAR and XDATCAR formats:
// comment, scaling, lattice vectors, species and number of atoms per species.
type VASPHeader struct {
	Comment string
	Scale   [3]float64  //per-axis factors applied to cartesian input, after resolving a volume scaling.
	Lattice box.Lattice //already scaled.
	Species []string
	Counts  []int
}

// Natoms returns the total number of atoms.
func (H *VASPHeader) Natoms() int {
	n := 0
	for _, c := range H.Counts {
		n += c
	}
	return n
}

// Topology returns a topology with the atoms in the order given by the header.
func (H *VASPHeader) Topology() *Topology {
	symbols := make([]string, 0, H.Natoms())
	for i, c := range H.Counts {
		for j := 0; j < c; j++ {
			symbols = append(symbols, H.Species[i])
		}
	}
	return NewTopology(symbols)
}

// ReadVASPHeader reads a header starting at the comment line. If comment
// is given, the comment line is taken to be already read, and to contain it.
// A negative scale factor is the volume of the cell. Without a species line
// (VASP 4) the species are taken from the comment, if it has the right number
// of words, or named X1, X2...
func ReadVASPHeader(r *bufio.Reader, comment ...string) (*VASPHeader, error) {
	H := new(VASPHeader)
	var err error
	if len(comment) > 0 {
		H.Comment = comment[0]
	} else if H.Comment, err = readLine(r); err != nil {
		return nil, errDecorate(err, "ReadVASPHeader")
	}
	H.Comment = strings.TrimSpace(H.Comment)
	line, err := readLine(r)
	if err != nil {
		return nil, errDecorate(err, "ReadVASPHeader")
	}
	scale, err := parseFloats(strings.Fields(line))
	if err != nil || (len(scale) != 1 && len(scale) != 3) {
		return nil, newCError(fmt.Sprintf("bad scaling line %q", line), "", "vasp", "ReadVASPHeader")
	}
	var raw box.Lattice
	for i := 0; i < 3; i++ {
		if line, err = readLine(r); err != nil {
			return nil, errDecorate(err, "ReadVASPHeader")
		}
		v, err := parseFloats(strings.Fields(line))
		if err != nil || len(v) < 3 {
			return nil, newCError(fmt.Sprintf("bad lattice vector %q", line), "", "vasp", "ReadVASPHeader")
		}
		copy(raw[3*i:3*i+3], v[:3])
	}
	switch {
	case len(scale) == 3:
		copy(H.Scale[:], scale)
	case scale[0] < 0:
		det := math.Abs(box.Determinant(raw))
		if det == 0 {
			return nil, newCError(box.ErrDegenerate.Error(), "", "vasp", "ReadVASPHeader")
		}
		f := math.Cbrt(-scale[0] / det)
		H.Scale = [3]float64{f, f, f}
	default:
		H.Scale = [3]float64{scale[0], scale[0], scale[0]}
	}
	for i, v := range raw {
		H.Lattice[i] = v * H.Scale[i%3]
	}
	if line, err = readLine(r); err != nil {
		return nil, errDecorate(err, "ReadVASPHeader")
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, newCError("missing species or counts line", "", "vasp", "ReadVASPHeader")
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		for _, s := range fields {
			H.Species = append(H.Species, cleanSpecies(s))
		}
		if line, err = readLine(r); err != nil {
			return nil, errDecorate(err, "ReadVASPHeader")
		}
		fields = strings.Fields(line)
	}
	for _, f := range fields {
		c, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		if c < 0 {
			return nil, newCError(fmt.Sprintf("negative atom count in %q", line), "", "vasp", "ReadVASPHeader")
		}
		H.Counts = append(H.Counts, c)
	}
	if len(H.Counts) == 0 {
		return nil, newCError(fmt.Sprintf("bad counts line %q", line), "", "vasp", "ReadVASPHeader")
	}
	if H.Species == nil {
		words := strings.Fields(H.Comment)
		for i := range H.Counts {
			if len(words) == len(H.Counts) {
				H.Species = append(H.Species, cleanSpecies(words[i]))
			} else {
				H.Species = append(H.Species, fmt.Sprintf("X%d", i+1))
			}
		}
	}
	if len(H.Species) != len(H.Counts) {
		return nil, newCError(fmt.Sprintf("%d species but %d counts", len(H.Species), len(H.Counts)), "", "vasp", "ReadVASPHeader")
	}
	return H, nil
}

// cleanSpecies removes the POTCAR decorations from a species name ("Ge_d" -> "Ge").
func cleanSpecies(s string) string {
	if i := strings.IndexAny(s, "_/:."); i > 0 {
		s = s[:i]
	}
	return s
}

// ReadVASPCoords reads natoms coordinates into out. If direct is true, the
// coordinates are fractional, otherwise they are cartesian and get scaled.
// Extra columns, such as selective dynamics flags, are ignored.
func (H *VASPHeader) ReadVASPCoords(r *bufio.Reader, out *v3.Matrix, direct bool) error {
	n := H.Natoms()
	for i := 0; i < n; i++ {
		line, err := readLine(r)
		if err != nil {
			return newCError(fmt.Sprintf("only %d of %d coordinates found", i, n), "", "vasp", "ReadVASPCoords")
		}
		v, err := parseFloats(firstN(strings.Fields(line), 3))
		if err != nil || len(v) < 3 {
			return newCError(fmt.Sprintf("bad coordinates %q for atom %d", line, i), "", "vasp", "ReadVASPCoords")
		}
		pos := [3]float64{v[0], v[1], v[2]}
		if direct {
			pos = box.Cartesian(H.Lattice, pos)
		} else {
			for d := range pos {
				pos[d] *= H.Scale[d]
			}
		}
		if out != nil {
			out.SetVec(i, pos)
		}
	}
	return nil
}

// IsDirect returns true if the line selecting the coordinate mode stands
// for fractional coordinates. Lines starting with C or K are cartesian.
func IsDirect(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	switch line[0] {
	case 'C', 'c', 'K', 'k':
		return false
	}
	return true
}

// POSCARFileRead reads a VASP POSCAR or CONTCAR file.
func POSCARFileRead(name string) (*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newCError(err.Error(), name, "poscar", "POSCARFileRead")
	}
	defer f.Close()
	mol, err := POSCARRead(f)
	if err != nil {
		var e *CError
		if errors.As(err, &e) {
			e.filename = name
		}
		return nil, errDecorate(err, "POSCARFileRead")
	}
	return mol, nil
}

// POSCARRead reads a VASP POSCAR or CONTCAR structure. The molecule returned
// has one frame, and a periodic lattice.
func POSCARRead(in io.Reader) (*Molecule, error) {
	r := bufio.NewReader(in)
	H, err := ReadVASPHeader(r)
	if err != nil {
		return nil, errDecorate(err, "POSCARRead")
	}
	line, err := readLine(r)
	if err != nil {
		return nil, errDecorate(err, "POSCARRead")
	}
	if t := strings.TrimSpace(line); t != "" && (t[0] == 'S' || t[0] == 's') {
		if line, err = readLine(r); err != nil {
			return nil, errDecorate(err, "POSCARRead")
		}
	}
	coords := v3.Zeros(H.Natoms())
	if err = H.ReadVASPCoords(r, coords, IsDirect(line)); err != nil {
		return nil, errDecorate(err, "POSCARRead")
	}
	mol, err := NewMolecule(H.Topology(), []*v3.Matrix{coords}, []box.Lattice{H.Lattice})
	if err != nil {
		return nil, errDecorate(err, "POSCARRead")
	}
	return mol, nil
}

// readLine returns the next line, or an error if the stream is exhausted.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", newCError("unexpected end of file", "", "vasp", "readLine")
		}
		return "", newCError(err.Error(), "", "vasp", "readLine")
	}
	return line, nil
}

func parseFloats(f []string) ([]float64, error) {
	ret := make([]float64, len(f))
	var err error
	for i, s := range f {
		if ret[i], err = strconv.ParseFloat(s, 64); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func firstN(f []string, n int) []string {
	if len(f) > n {
		return f[:n]
	}
	return f
}
