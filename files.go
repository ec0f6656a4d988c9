/*
 * files.go, part of goALTBC.
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
	"os"
	"strconv"
	"strings"

	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
)

//XYZ files

// XYZFileRead reads a (possibly multi-frame) xyz file.
// See XYZRead for the details.
func XYZFileRead(xyzname string) (*Molecule, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, newCError(err.Error(), xyzname, "xyz", "XYZFileRead")
	}
	defer xyzfile.Close()
	mol, err := XYZRead(xyzfile)
	if err != nil {
		var e *CError
		if errors.As(err, &e) {
			e.filename = xyzname
		}
		return nil, errDecorate(err, "XYZFileRead")
	}
	return mol, nil
}

// XYZRead reads an xyz or extended xyz stream, with one or more frames. The
// lattice of each frame is taken from a Lattice="ax ay az bx by bz cx cy cz"
// entry in the comment line, and the periodicity from pbc="T T T", if present.
// All frames must have the same number of atoms, and all or none must have
// a lattice. The topology is taken from the first frame.
func XYZRead(r io.Reader) (*Molecule, error) {
	xyz := bufio.NewReader(r)
	var top *Topology
	var coords []*v3.Matrix
	var boxes []box.Lattice
	pbc := box.AllPeriodic
	for frame := 0; ; frame++ {
		symbols, c, lat, p, err := xyzReadSnap(xyz, frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errDecorate(err, "XYZRead")
		}
		if frame == 0 {
			top = NewTopology(symbols)
			if p != nil {
				pbc = *p
			}
		} else if len(symbols) != top.Len() {
			return nil, newCError(fmt.Sprintf("frame %d has %d atoms, the first one has %d", frame, len(symbols), top.Len()), "", "xyz", "XYZRead")
		}
		if frame > 0 && (lat != nil) != (len(boxes) > 0) {
			return nil, newCError(fmt.Sprintf("frame %d: either all frames or none must have a lattice", frame), "", "xyz", "XYZRead")
		}
		if lat != nil {
			boxes = append(boxes, *lat)
		}
		coords = append(coords, c)
	}
	if top == nil {
		return nil, newCError("no frames found", "", "xyz", "XYZRead")
	}
	mol, err := NewMolecule(top, coords, boxes)
	if err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	mol.PBC = pbc
	return mol, nil
}

// xyzReadSnap reads one frame. It returns io.EOF, and nothing else, if the
// stream ends before the frame starts.
func xyzReadSnap(xyz *bufio.Reader, frame int) ([]string, *v3.Matrix, *box.Lattice, *box.PBC, error) {
	var line string
	var err error
	for line == "" {
		line, err = xyz.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" && err != nil {
			if err == io.EOF {
				return nil, nil, nil, nil, io.EOF
			}
			return nil, nil, nil, nil, newCError(err.Error(), "", "xyz", "xyzReadSnap")
		}
	}
	natoms, err := strconv.Atoi(line)
	if err != nil || natoms < 1 {
		return nil, nil, nil, nil, newCError(fmt.Sprintf("frame %d: ill formatted number of atoms %q", frame, line), "", "xyz", "xyzReadSnap")
	}
	comment, err := xyz.ReadString('\n')
	if err != nil {
		return nil, nil, nil, nil, newCError(fmt.Sprintf("frame %d: missing comment line", frame), "", "xyz", "xyzReadSnap")
	}
	lat, pbc, err := parseExtXYZComment(comment)
	if err != nil {
		return nil, nil, nil, nil, newCError(fmt.Sprintf("frame %d: %s", frame, err.Error()), "", "xyz", "xyzReadSnap")
	}
	symbols := make([]string, natoms)
	data := make([]float64, 3*natoms)
	for i := 0; i < natoms; i++ {
		line, _ = xyz.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, nil, nil, nil, newCError(fmt.Sprintf("frame %d: line %d ill formed or missing", frame, i+3), "", "xyz", "xyzReadSnap")
		}
		symbols[i] = fields[0]
		for j := 0; j < 3; j++ {
			data[3*i+j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, nil, nil, nil, newCError(fmt.Sprintf("frame %d, atom %d: %s", frame, i, err.Error()), "", "xyz", "xyzReadSnap")
			}
		}
	}
	c, _ := v3.NewMatrix(data)
	return symbols, c, lat, pbc, nil
}

// parseExtXYZComment extracts the lattice and the periodicity from the comment
// line of an extended xyz frame. Both are nil if not present.
func parseExtXYZComment(comment string) (*box.Lattice, *box.PBC, error) {
	kv := keyValues(comment)
	var lat *box.Lattice
	var pbc *box.PBC
	if v, ok := kv["lattice"]; ok {
		f := strings.Fields(v)
		if len(f) != 9 {
			return nil, nil, fmt.Errorf("the lattice needs 9 values, got %d", len(f))
		}
		lat = new(box.Lattice)
		for i, s := range f {
			val, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad lattice value %q", s)
			}
			lat[i] = val
		}
	}
	if v, ok := kv["pbc"]; ok {
		p, err := ParsePBC(v)
		if err != nil {
			return nil, nil, err
		}
		pbc = &p
	}
	return lat, pbc, nil
}

// keyValues parses the key=value and key="a quoted value" pairs in line.
// Keys are lowercased. Words that are not pairs are ignored.
func keyValues(line string) map[string]string {
	ret := make(map[string]string)
	line = strings.TrimSpace(line)
	for len(line) > 0 {
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			break
		}
		key := strings.ToLower(lastField(line[:eq]))
		rest := strings.TrimLeft(line[eq+1:], " \t")
		var value string
		if len(rest) > 0 && (rest[0] == '"' || rest[0] == '\'') {
			end := strings.IndexByte(rest[1:], rest[0])
			if end < 0 {
				value, rest = rest[1:], ""
			} else {
				value, rest = rest[1:end+1], rest[end+2:]
			}
		} else {
			end := strings.IndexAny(rest, " \t")
			if end < 0 {
				value, rest = rest, ""
			} else {
				value, rest = rest[:end], rest[end:]
			}
		}
		if key != "" {
			ret[key] = strings.TrimSpace(value)
		}
		line = rest
	}
	return ret
}

func lastField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[len(f)-1]
}

// ParsePBC parses three periodicity flags, such as "T T F", "1,1,0" or
// "true true false".
func ParsePBC(s string) (box.PBC, error) {
	var p box.PBC
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(f) == 1 {
		f = []string{f[0], f[0], f[0]}
	}
	if len(f) != 3 {
		return p, fmt.Errorf("3 periodicity flags needed, got %q", s)
	}
	for i, v := range f {
		switch strings.ToLower(v) {
		case "t", "true", "1", "y", "yes":
			p[i] = true
		case "f", "false", "0", "n", "no":
			p[i] = false
		default:
			return p, fmt.Errorf("bad periodicity flag %q", v)
		}
	}
	return p, nil
}

// XYZFileWrite writes the frame-th frame of mol to the file xyzname, as
// extended xyz if the molecule has a lattice.
func XYZFileWrite(xyzname string, mol *Molecule, frame int) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return newCError(err.Error(), xyzname, "xyz", "XYZFileWrite")
	}
	defer out.Close()
	if err = XYZWrite(out, mol, frame); err != nil {
		return errDecorate(err, "XYZFileWrite")
	}
	return nil
}

// XYZWrite writes the frame-th frame of mol to out.
func XYZWrite(out io.Writer, mol *Molecule, frame int) error {
	if frame < 0 || frame >= mol.Frames() {
		return newCError(fmt.Sprintf("frame %d out of range", frame), "", "xyz", "XYZWrite")
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%d\n", mol.Len())
	if mol.Periodic() {
		l := mol.Boxes[frame]
		fmt.Fprintf(w, "Lattice=\"%g %g %g %g %g %g %g %g %g\" Properties=species:S:1:pos:R:3 pbc=\"%s\"\n",
			l[0], l[1], l[2], l[3], l[4], l[5], l[6], l[7], l[8], FormatPBC(mol.PBC))
	} else {
		fmt.Fprintln(w, "Written with goALTBC")
	}
	c := mol.Coords[frame]
	for i := 0; i < mol.Len(); i++ {
		v := c.Vec(i)
		fmt.Fprintf(w, "%-2s  %12.6f%12.6f%12.6f\n", mol.Atom(i).Symbol, v[0], v[1], v[2])
	}
	if err := w.Flush(); err != nil {
		return newCError(err.Error(), "", "xyz", "XYZWrite")
	}
	return nil
}

// FormatPBC returns p as three T/F flags separated by spaces.
func FormatPBC(p box.PBC) string {
	s := make([]string, 3)
	for i, v := range p {
		s[i] = "F"
		if v {
			s[i] = "T"
		}
	}
	return strings.Join(s, " ")
}
