/*
 * xdatcar.go, part of goALTBC
 *
 * Copyright 2018 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

// Package vasp reads VASP XDATCAR trajectories, with constant or variable cell.
package vasp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
)

// XDATCAR is a container for a VASP XDATCAR trajectory file.
// It implements chem.Traj.
type XDATCAR struct {
	natoms   int
	readable bool
	filename string
	ioread   io.Closer //the file, if we opened it.
	r        *bufio.Reader
	header   *chem.VASPHeader
	top      *chem.Topology
	frames   int //frames read so far
}

// New opens the XDATCAR file filename and reads its header.
func New(filename string) (*XDATCAR, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &Error{UnableToOpen, filename, []string{"New"}, true}
	}
	X, err := NewReader(f)
	if err != nil {
		f.Close()
		if e, ok := err.(*Error); ok {
			e.filename = filename
		}
		return nil, errDecorate(err, "New")
	}
	X.filename = filename
	X.ioread = f
	return X, nil
}

// NewReader returns an XDATCAR that reads from r.
func NewReader(r io.Reader) (*XDATCAR, error) {
	X := &XDATCAR{r: bufio.NewReader(r)}
	H, err := chem.ReadVASPHeader(X.r)
	if err != nil {
		return nil, &Error{fmt.Sprintf("%s: %s", WrongFormat, err.Error()), "", []string{"NewReader"}, true}
	}
	X.header = H
	X.natoms = H.Natoms()
	X.top = H.Topology()
	X.readable = true
	return X, nil
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (X *XDATCAR) Readable() bool {
	return X.readable
}

// Len returns the number of atoms per frame.
func (X *XDATCAR) Len() int {
	return X.natoms
}

// Topology returns the atoms of the trajectory, in order.
func (X *XDATCAR) Topology() *chem.Topology {
	return X.top
}

// Lattice returns the lattice of the last frame read or, before the first
// frame, the one in the header.
func (X *XDATCAR) Lattice() box.Lattice {
	return X.header.Lattice
}

// Close closes the underlying file, if it was opened by New.
func (X *XDATCAR) Close() {
	if X.ioread != nil {
		X.ioread.Close()
		X.ioread = nil
	}
	X.readable = false
}

// Next reads the next frame. If coords is not nil the cartesian coordinates
// are copied into it. If box is given, its first element is filled with the
// lattice vectors of the frame. At the end of the file it returns a
// chem.LastFrameError.
func (X *XDATCAR) Next(coords *v3.Matrix, box ...[]float64) error {
	if !X.readable {
		return &Error{TrajUnIni, X.filename, []string{"Next"}, true}
	}
	if coords != nil && coords.NVecs() != X.natoms {
		return &Error{fmt.Sprintf("%d coordinates given, but %d expected", coords.NVecs(), X.natoms), X.filename, []string{"Next"}, true}
	}
	line, err := X.nextLine()
	if err == io.EOF {
		X.readable = false
		return chem.NewLastFrameError(X.filename, "xdatcar", "Next")
	}
	if err != nil {
		return &Error{err.Error(), X.filename, []string{"Next"}, true}
	}
	if !isConfigLine(line) {
		//variable-cell files repeat the header before each frame.
		H, err := chem.ReadVASPHeader(X.r, line)
		if err != nil {
			return &Error{fmt.Sprintf("frame %d: %s", X.frames+1, err.Error()), X.filename, []string{"Next"}, true}
		}
		if H.Natoms() != X.natoms {
			return &Error{fmt.Sprintf("frame %d has %d atoms, %d expected", X.frames+1, H.Natoms(), X.natoms), X.filename, []string{"Next"}, true}
		}
		X.header = H
		if line, err = X.nextLine(); err != nil || !isConfigLine(line) {
			return &Error{fmt.Sprintf("frame %d: %s", X.frames+1, WrongFormat), X.filename, []string{"Next"}, true}
		}
	}
	if err = X.header.ReadVASPCoords(X.r, coords, chem.IsDirect(line)); err != nil {
		X.readable = false
		return &Error{fmt.Sprintf("frame %d: %s", X.frames+1, err.Error()), X.filename, []string{"Next"}, true}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		copy(box[0], X.header.Lattice[:])
	}
	X.frames++
	return nil
}

// nextLine returns the next non-blank line, or io.EOF.
func (X *XDATCAR) nextLine() (string, error) {
	for {
		line, err := X.r.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// isConfigLine recognizes the line that starts each frame, such as
// "Direct configuration=     1".
func isConfigLine(line string) bool {
	return strings.Contains(strings.ToLower(line), "configuration")
}
