/*
 * dcd.go, part of goALTBC
 *
 * Copyright 2012 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
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

// Package dcd reads and writes CHARMM/NAMD/LAMMPS binary DCD trajectories,
// including the unit cell of each frame, when present.
package dcd

import (
	"bufio"
	"compress/lzw"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
)

const mAXTITLE = 80

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

// DCD is a container for a Charmm/NAMD binary trajectory file.
// It implements chem.Traj.
type DCD struct {
	natoms   int
	nset     int //frames announced in the header
	readable bool
	filename string
	closers  []io.Closer
	r        io.Reader
	endian   binary.ByteOrder
	cell     bool //Is there a unit cell block in each frame?
	fourdim  bool
	fields   [3][]float32
	lattice  box.Lattice
	buf      []byte
}

// New opens the DCD file filename and reads its header. Files ending in
// .gz, .zst or .lzw are decompressed while read.
func New(filename string) (*DCD, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &Error{UnableToOpen, filename, []string{"os.Open", "New"}, true}
	}
	closers := []io.Closer{f}
	var src io.Reader = bufio.NewReader(f)
	switch strings.ToLower(lastExt(filename)) {
	case "gz":
		g, err := gzip.NewReader(src)
		if err != nil {
			f.Close()
			return nil, &Error{err.Error(), filename, []string{"gzip.NewReader", "New"}, true}
		}
		src, closers = g, append(closers, g)
	case "zst":
		z, err := zstd.NewReader(src)
		if err != nil {
			f.Close()
			return nil, &Error{err.Error(), filename, []string{"zstd.NewReader", "New"}, true}
		}
		src, closers = z, append(closers, z.IOReadCloser())
	case "lzw":
		l := lzw.NewReader(src, lzwOrder, lzwLitwidth)
		src, closers = l, append(closers, l)
	}
	D, err := NewReader(src)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		if e, ok := err.(*Error); ok {
			e.filename = filename
		}
		return nil, errDecorate(err, "New")
	}
	D.filename = filename
	D.closers = closers
	return D, nil
}

func lastExt(name string) string {
	f := strings.Split(name, ".")
	return f[len(f)-1]
}

// NewReader reads the header of a DCD trajectory from r. It supports big
// and little endianness, charmm or namd>=2.1 files, and no fixed atoms.
func NewReader(r io.Reader) (*DCD, error) {
	D := &DCD{r: r}
	var first [4]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return nil, &Error{WrongFormat, "", []string{"NewReader"}, true}
	}
	//The first record has 84 bytes. If we don't read an 84, the file is big endian.
	switch {
	case binary.LittleEndian.Uint32(first[:]) == 84:
		D.endian = binary.LittleEndian
	case binary.BigEndian.Uint32(first[:]) == 84:
		D.endian = binary.BigEndian
	default:
		return nil, &Error{WrongFormat, "", []string{"NewReader"}, true}
	}
	head, err := D.payload(84)
	if err != nil {
		return nil, errDecorate(err, "NewReader")
	}
	if string(head[:4]) != "CORD" {
		return nil, &Error{"Wrong magic number", "", []string{"NewReader"}, true}
	}
	icntrl := func(i int) int32 { return int32(D.endian.Uint32(head[4+4*i:])) }
	//X-plor sets the last int to zero, charmm sets it to its version number.
	if icntrl(19) == 0 {
		return nil, &Error{Xplor, "", []string{"NewReader"}, true}
	}
	if icntrl(8) != 0 {
		return nil, &Error{FixedAtoms, "", []string{"NewReader"}, true}
	}
	D.nset = int(icntrl(0))
	D.cell = icntrl(10) != 0
	D.fourdim = icntrl(11) != 0
	//the title, which we don't need
	if _, err := D.record(); err != nil {
		return nil, errDecorate(err, "NewReader")
	}
	nat, err := D.record()
	if err != nil {
		return nil, errDecorate(err, "NewReader")
	}
	if len(nat) != 4 {
		return nil, &Error{WrongFormat, "", []string{"NewReader"}, true}
	}
	D.natoms = int(int32(D.endian.Uint32(nat)))
	if D.natoms < 1 {
		return nil, &Error{fmt.Sprintf("%d atoms in the trajectory", D.natoms), "", []string{"NewReader"}, true}
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.readable = true
	return D, nil
}

// record reads one fortran record, returning its contents. The returned
// slice is only valid until the next call. It returns io.EOF only if the
// stream ends before the record starts.
func (D *DCD) record() ([]byte, error) {
	var size [4]byte
	if _, err := io.ReadFull(D.r, size[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, &Error{err.Error(), D.filename, []string{"record"}, true}
	}
	n := int(int32(D.endian.Uint32(size[:])))
	if n < 0 {
		return nil, &Error{WrongFormat, D.filename, []string{"record"}, true}
	}
	return D.payload(n)
}

// payload reads n bytes and the record size that closes them, which must be n.
func (D *DCD) payload(n int) ([]byte, error) {
	if cap(D.buf) < n+4 {
		D.buf = make([]byte, n+4)
	}
	b := D.buf[:n+4]
	if _, err := io.ReadFull(D.r, b); err != nil {
		return nil, &Error{err.Error(), D.filename, []string{"payload"}, true}
	}
	if int(int32(D.endian.Uint32(b[n:]))) != n {
		return nil, &Error{"Failed security check", D.filename, []string{"payload"}, true}
	}
	return b[:n], nil
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (D *DCD) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *DCD) Len() int {
	return D.natoms
}

// Frames returns the number of frames announced in the header. Some
// programs leave it at zero.
func (D *DCD) Frames() int {
	return D.nset
}

// HasCell returns true if the frames carry a unit cell.
func (D *DCD) HasCell() bool {
	return D.cell
}

// Close closes the underlying file, if it was opened by New.
func (D *DCD) Close() {
	for i := len(D.closers) - 1; i >= 0; i-- {
		D.closers[i].Close()
	}
	D.closers = nil
	D.readable = false
}

// Next reads the next frame into output, or discards it if output is nil.
// If the trajectory has unit cells, the lattice vectors of the frame are
// put in the first box slice given, which must have at least 9 elements.
// It returns a chem.LastFrameError when there are no frames left.
func (D *DCD) Next(output *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return &Error{TrajUnIni, D.filename, []string{"Next"}, true}
	}
	if err := D.nextRaw(); err != nil {
		if err == io.EOF {
			D.readable = false
			return chem.NewLastFrameError(D.filename, "dcd", "Next")
		}
		return errDecorate(err, "Next")
	}
	if len(box) > 0 && len(box[0]) >= 9 && D.cell {
		copy(box[0], D.lattice[:])
	}
	if output == nil {
		return nil
	}
	if output.NVecs() < D.natoms {
		return &Error{NotEnoughSpace, D.filename, []string{"Next"}, true}
	}
	for i := 0; i < D.natoms; i++ {
		output.SetVec(i, [3]float64{float64(D.fields[0][i]), float64(D.fields[1][i]), float64(D.fields[2][i])})
	}
	return nil
}

// nextRaw reads the next frame into the fields and the lattice. It returns
// io.EOF if there are no more frames.
func (D *DCD) nextRaw() error {
	rec, err := D.record()
	if err != nil {
		return err
	}
	//Sadly, even when there is a cell block, it is not present in all
	//snapshots for some trajectories, so we must use the block size to see
	//if we got the cell or if the X block starts inmediately
	if D.cell && len(rec) == 48 {
		D.lattice = cellLattice(rec, D.endian)
		if rec, err = D.record(); err != nil {
			return D.unexpected(err)
		}
	}
	for i := 0; i < 3; i++ {
		if i > 0 {
			if rec, err = D.record(); err != nil {
				return D.unexpected(err)
			}
		}
		if len(rec) != 4*D.natoms {
			return &Error{WrongFormat, D.filename, []string{"nextRaw"}, true}
		}
		for j := range D.fields[i] {
			D.fields[i][j] = math.Float32frombits(D.endian.Uint32(rec[4*j:]))
		}
	}
	//we skip the 4-D values if they exist. Apparently this is not present in the
	//last snapshot, so an EOF here is not an error.
	if D.fourdim {
		if _, err := D.record(); err != nil && err != io.EOF {
			return err
		}
	}
	return nil
}

// unexpected turns an EOF in the middle of a frame into an error.
func (D *DCD) unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return &Error{"Unexpected end of file in the middle of a frame", D.filename, []string{"nextRaw"}, true}
	}
	return err
}

// cellLattice builds a lattice from a unit cell block, which holds, as
// float64, A, gamma, B, beta, alpha and C. CHARMM and LAMMPS store the
// cosines of the angles, NAMD the angles in degrees.
func cellLattice(rec []byte, endian binary.ByteOrder) box.Lattice {
	var p [6]float64
	for i := range p {
		p[i] = math.Float64frombits(endian.Uint64(rec[8*i:]))
	}
	cosines := true
	for _, i := range []int{1, 3, 4} {
		if math.Abs(p[i]) > 1 {
			cosines = false
		}
	}
	if cosines {
		for _, i := range []int{1, 3, 4} {
			p[i] = math.Acos(p[i]) * 180 / math.Pi
		}
	}
	return box.FromParameters(p[0], p[2], p[5], p[4], p[3], p[1])
}
