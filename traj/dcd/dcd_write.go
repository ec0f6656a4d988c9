/*
 * dcd_write.go, part of goALTBC
 *
 * Copyright 2021 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
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
 *
 */

package dcd

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"

	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
)

// charmmVersion is written in the last control integer. X-plor leaves it at 0.
const charmmVersion int32 = 24

// Writer is a little-endian, CHARMM-style, DCD trajectory opened for writing.
type Writer struct {
	natoms   int
	cell     bool
	frames   int32
	writable bool
	filename string
	dcd      *os.File
	endian   binary.ByteOrder
	buf      bytes.Buffer
}

// NewWriter creates the DCD file filename for frames of natoms atoms, and
// writes its header. If cell is given and true, each frame carries a unit cell.
func NewWriter(filename string, natoms int, cell ...bool) (*Writer, error) {
	W := &Writer{natoms: natoms, filename: filename, endian: binary.LittleEndian}
	W.cell = len(cell) > 0 && cell[0]
	if natoms < 1 {
		return nil, &Error{"No atoms to write", filename, []string{"NewWriter"}, true}
	}
	var err error
	W.dcd, err = os.Create(filename)
	if err != nil {
		return nil, &Error{err.Error(), filename, []string{"os.Create", "NewWriter"}, true}
	}
	if err := W.header(); err != nil {
		W.dcd.Close()
		return nil, errDecorate(err, "NewWriter")
	}
	W.writable = true
	return W, nil
}

func (W *Writer) header() error {
	var icntrl [20]int32
	icntrl[2] = 1 //step interval
	if W.cell {
		icntrl[10] = 1
	}
	icntrl[19] = charmmVersion
	W.buf.Reset()
	W.buf.WriteString("CORD")
	for i, v := range icntrl {
		if i == 9 {
			//delta time, the only float
			binary.Write(&W.buf, W.endian, float32(1))
			continue
		}
		binary.Write(&W.buf, W.endian, v)
	}
	if err := W.record(W.buf.Bytes()); err != nil {
		return err
	}
	W.buf.Reset()
	binary.Write(&W.buf, W.endian, int32(1)) //1 title
	title := make([]byte, mAXTITLE)
	copy(title, "Created by goALTBC")
	for i := len("Created by goALTBC"); i < len(title); i++ {
		title[i] = ' '
	}
	W.buf.Write(title)
	if err := W.record(W.buf.Bytes()); err != nil {
		return err
	}
	W.buf.Reset()
	binary.Write(&W.buf, W.endian, int32(W.natoms))
	return W.record(W.buf.Bytes())
}

// record writes b as a fortran record, surrounded by its size.
func (W *Writer) record(b []byte) error {
	var size [4]byte
	W.endian.PutUint32(size[:], uint32(len(b)))
	for _, chunk := range [][]byte{size[:], b, size[:]} {
		if _, err := W.dcd.Write(chunk); err != nil {
			return &Error{err.Error(), W.filename, []string{"record"}, true}
		}
	}
	return nil
}

// Writable returns true if frames can still be written.
func (W *Writer) Writable() bool {
	return W.writable
}

// Frames returns the number of frames written so far.
func (W *Writer) Frames() int {
	return int(W.frames)
}

// WNext writes coords as the next frame. If the writer carries unit cells,
// the lattice vectors of the frame must be given as 9 values in box.
// The frame count in the header is updated after each frame.
func (W *Writer) WNext(coords *v3.Matrix, box ...[]float64) error {
	if !W.writable {
		return &Error{"Traj object uninitialized to write", W.filename, []string{"WNext"}, true}
	}
	if coords.NVecs() != W.natoms {
		return &Error{"Wrong number of atoms in frame", W.filename, []string{"WNext"}, true}
	}
	if W.cell {
		if len(box) == 0 || len(box[0]) < 9 {
			return &Error{"No unit cell given for the frame", W.filename, []string{"WNext"}, true}
		}
		if err := W.record(cellBlock(box[0], W.endian)); err != nil {
			return errDecorate(err, "WNext")
		}
	}
	field := make([]byte, 4*W.natoms)
	for d := 0; d < 3; d++ {
		for i := 0; i < W.natoms; i++ {
			W.endian.PutUint32(field[4*i:], math.Float32bits(float32(coords.At(i, d))))
		}
		if err := W.record(field); err != nil {
			return errDecorate(err, "WNext")
		}
	}
	W.frames++
	var n [4]byte
	W.endian.PutUint32(n[:], uint32(W.frames))
	//the frame count goes right after the first record size and "CORD".
	if _, err := W.dcd.WriteAt(n[:], 8); err != nil {
		return &Error{err.Error(), W.filename, []string{"WriteAt", "WNext"}, true}
	}
	return nil
}

// cellBlock returns the CHARMM unit cell block for the lattice in b:
// A, cos(gamma), B, cos(beta), cos(alpha) and C, as float64.
func cellBlock(b []float64, endian binary.ByteOrder) []byte {
	var l box.Lattice
	copy(l[:], b[:9])
	lengths, angles := box.Parameters(l)
	const deg2rad = math.Pi / 180
	p := [6]float64{lengths[0], math.Cos(angles[2] * deg2rad), lengths[1], math.Cos(angles[1] * deg2rad), math.Cos(angles[0] * deg2rad), lengths[2]}
	ret := make([]byte, 48)
	for i, v := range p {
		endian.PutUint64(ret[8*i:], math.Float64bits(v))
	}
	return ret
}

// Close closes the file. It can be called more than once.
func (W *Writer) Close() error {
	if !W.writable {
		return nil
	}
	W.writable = false
	if err := W.dcd.Close(); err != nil {
		return &Error{err.Error(), W.filename, []string{"Close"}, true}
	}
	return nil
}
