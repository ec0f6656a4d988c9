/*
 * stf.go, part of goALTBC.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
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

package stf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
)

const (
	lzwLitwidth int = 8
	defaultPrec int = 2
)

// StfW is a handle to write an STF trajectory.
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	w         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
}

// Close flushes the pending frames and closes the file.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.w.Flush()
	if err2 := S.h.Close(); err == nil {
		err = err2
	}
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return &Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// WNext writes a frame with the coordinates coord and, if given, the lattice
// vectors in box.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return &Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return &Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return &Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	for i := 0; i < v; i++ {
		S.w.WriteString(coordsEncode(coord.Vec(i), S.prec))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		fmt.Fprintf(S.w, "* %.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f\n", b[0],
			b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		S.w.WriteString("*\n")
	}
	return nil
}

// NewWriter creates the STF file name for frames of natoms atoms, and writes
// the header, which may be nil. The compression is selected by the last
// letter of the name (see the package documentation).
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	var level int = 9
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	S := &StfW{filename: name, natoms: natoms, prec: defaultPrec}
	if header != nil {
		if p, ok := header["prec"]; ok {
			prec, err := strconv.Atoi(p)
			if err != nil || prec < 1 {
				return nil, &Error{fmt.Sprintf("invalid precision %q", p), name, []string{"NewWriter"}, true}
			}
			S.prec = prec
		}
	}
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, &Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	var AnyNewWriter func(io.Writer) (io.WriteCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) }
	case 'r':
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, level) }
	default:
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
	}
	S.h, err = AnyNewWriter(S.f)
	if err != nil {
		S.f.Close()
		return nil, &Error{"Can't create compressor " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.w = bufio.NewWriter(S.h)
	keys := make([]string, 0, len(header)+1)
	for k := range header {
		keys = append(keys, k)
	}
	if _, ok := header["prec"]; !ok {
		keys = append(keys, "prec")
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := header[k]
		if k == "prec" {
			v = strconv.Itoa(S.prec)
		}
		fmt.Fprintf(S.w, "%s=%s\n", k, v)
	}
	fmt.Fprintf(S.w, "** %d\n", S.natoms)
	S.writeable = true
	return S, nil
}

// TopologyHeader returns the header entries that describe the species of the
// atoms in top and the periodicity pbc.
func TopologyHeader(top chem.Atomer, pbc box.PBC) map[string]string {
	return map[string]string{
		"symbols": strings.Join(chem.Symbols(top), ","),
		"pbc":     chem.FormatPBC(pbc),
	}
}

// StfR is a handle to read an STF trajectory. It implements chem.Traj.
type StfR struct {
	f        *os.File
	lzw      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	header   map[string]string
	readable bool
	frames   int
}

// zstd.Decoder's Close doesn't return an error, so it is not an io.ReadCloser.
type stdql struct {
	*zstd.Decoder
}

// Close Closes the object. It can not be used after this call
func (s stdql) Close() error {
	s.Decoder.Close()
	return nil
}

func coordsEncode(f [3]float64, prec int) string {
	p := math.Pow(10.0, float64(prec))
	var temp [3]int
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

// New opens a STF trajectory for reading, and returns a pointer
// to the handle, a map with the header (empty if the file has
// no header entries) and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	S := &StfR{filename: name, prec: defaultPrec, natoms: -1, header: make(map[string]string)}
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, &Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	var AnyNewReader func(io.Reader) (io.ReadCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case 'r':
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	default:
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) {
			r, err := zstd.NewReader(a)
			if err != nil {
				return nil, err
			}
			return stdql{r}, nil
		}
	}
	S.lzw, err = AnyNewReader(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, &Error{"Can't read header " + err.Error(), name, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.lzw)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, &Error{"Can't read header: " + err.Error(), name, []string{"New"}, true}
		}
		str = strings.TrimSpace(str)
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, &Error{fmt.Sprintf("Can't read atom number from '%s'", str), name, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms < 0 {
				S.close()
				return nil, nil, &Error{fmt.Sprintf("Can't read atom number from '%s'", nat[1]), name, []string{"New"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			S.close()
			return nil, nil, &Error{fmt.Sprintf("%s: %q", WrongFormat, str), name, []string{"New"}, true}
		}
		S.header[k] = v
	}
	if p, ok := S.header["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 1 {
			S.close()
			return nil, nil, &Error{fmt.Sprintf("invalid precision %q", p), name, []string{"New"}, true}
		}
		S.prec = prec
	}
	S.readable = true
	return S, S.header, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

// Topology returns the topology described in the header, or nil if the
// header has no symbols entry. It returns an error if the number of symbols
// doesn't match the number of atoms.
func (S *StfR) Topology() (*chem.Topology, error) {
	s, ok := S.header["symbols"]
	if !ok {
		return nil, nil
	}
	symbols := strings.Split(s, ",")
	if len(symbols) != S.natoms {
		return nil, &Error{fmt.Sprintf("%d symbols for %d atoms", len(symbols), S.natoms), S.filename, []string{"Topology"}, true}
	}
	return chem.NewTopology(symbols), nil
}

// PBC returns the periodicity given in the header, or all periodic if none is given.
func (S *StfR) PBC() (box.PBC, error) {
	p, ok := S.header["pbc"]
	if !ok {
		return box.AllPeriodic, nil
	}
	pbc, err := chem.ParsePBC(p)
	if err != nil {
		return pbc, &Error{err.Error(), S.filename, []string{"PBC"}, true}
	}
	return pbc, nil
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: %d fields: %s", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
// and, if given, and the information is present, puts the box vector information in box.
// Returns error if the operation is not successful. At the end of the trajectory it
// returns a chem.LastFrameError.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return &Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != S.natoms {
		return &Error{fmt.Sprintf("%d coordinates given, but %d expected", c.NVecs(), S.natoms), S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			// EOF should only happen when reading the first atom
			if err == io.EOF && i == 0 && strings.TrimSpace(b) == "" {
				return chem.NewLastFrameError(S.filename, "stf", "Next")
			}
			return &Error{fmt.Sprintf("frame %d: %s", S.frames+1, ReadError), S.filename, []string{"Next"}, true}
		}
		if err = coordsDecode(b, &temp, S.prec); err != nil {
			return &Error{fmt.Sprintf("frame %d: %s", S.frames+1, err.Error()), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue //We ignore this whole frame, reading the content but not saving it.
		}
		c.SetVec(i, temp)
	}
	s, err := S.h.ReadString('\n')
	if S.natoms == 0 && err == io.EOF && s == "" {
		S.close()
		return chem.NewLastFrameError(S.filename, "stf", "Next")
	}
	if err != nil && !(err == io.EOF && s != "") {
		S.close()
		return &Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if len(s) == 0 || s[0] != '*' {
		return &Error{fmt.Sprintf("frame %d: wrong number of atoms in frame", S.frames+1), S.filename, []string{"Next"}, true}
	}
	S.frames++
	if len(box) > 0 && len(box[0]) >= 9 {
		fields := strings.Fields(s)
		if len(fields) != 10 { // The "*" and the 9 numbers
			return &Error{fmt.Sprintf("frame %d: %s", S.frames, NoBox), S.filename, []string{"Next"}, false}
		}
		for j, v := range fields[1:] {
			box[0][j], err = strconv.ParseFloat(v, 64)
			if err != nil {
				return &Error{fmt.Sprintf("frame %d: %s", S.frames, NoBox), S.filename, []string{"Next"}, false}
			}
		}
	}
	return nil
}

func (S *StfR) close() {
	S.lzw.Close()
	S.f.Close()
	S.readable = false
}

// Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.close()
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

//Errors

// Error is the general structure for STF trajectory errors. It fullfills  chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err *Error) FileName() string { return err.filename }

// Format returns the format of the file (always "stf") associated to the error
func (err *Error) Format() string { return "stf" }

// Critical returns true if the error is critical, false otherwise.
// A frame without box information gives a non-critical error.
func (err *Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
	NoBox          = "frame without (correct) box information"
)
