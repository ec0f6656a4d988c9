package dcd

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameCoords(Te *testing.T, frame, natoms int) *v3.Matrix {
	data := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		data = append(data, float64(i)+0.25*float64(frame), -1.5*float64(i), 0.1*float64(frame+i))
	}
	m, err := v3.NewMatrix(data)
	require.NoError(Te, err)
	return m
}

func writeTraj(Te *testing.T, name string, natoms, frames int, lattices []box.Lattice) {
	W, err := NewWriter(name, natoms, lattices != nil)
	require.NoError(Te, err)
	for f := 0; f < frames; f++ {
		if lattices != nil {
			require.NoError(Te, W.WNext(frameCoords(Te, f, natoms), lattices[f][:]))
		} else {
			require.NoError(Te, W.WNext(frameCoords(Te, f, natoms)))
		}
	}
	assert.Equal(Te, frames, W.Frames())
	require.NoError(Te, W.Close())
	assert.NoError(Te, W.Close())
}

func TestWriteRead(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "test.dcd")
	writeTraj(Te, name, 5, 3, nil)
	D, err := New(name)
	require.NoError(Te, err)
	defer D.Close()
	assert.Equal(Te, 5, D.Len())
	assert.Equal(Te, 3, D.Frames())
	assert.False(Te, D.HasCell())
	coords := v3.Zeros(D.Len())
	for f := 0; ; f++ {
		err := D.Next(coords)
		if err != nil {
			require.True(Te, chem.IsLastFrame(err), "unexpected error %v", err)
			assert.Equal(Te, 3, f)
			break
		}
		want := frameCoords(Te, f, 5)
		for i := 0; i < 5; i++ {
			for d := 0; d < 3; d++ {
				assert.InDelta(Te, want.At(i, d), coords.At(i, d), 1e-5)
			}
		}
	}
	assert.False(Te, D.Readable())
}

func TestWriteReadCell(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "cell.dcd")
	lattices := []box.Lattice{
		box.Orthorhombic(10, 11, 12),
		box.FromParameters(10, 11, 12, 80, 95, 110),
	}
	writeTraj(Te, name, 4, 2, lattices)
	D, err := New(name)
	require.NoError(Te, err)
	defer D.Close()
	require.True(Te, D.HasCell())
	b := make([]float64, 9)
	for _, l := range lattices {
		require.NoError(Te, D.Next(nil, b))
		for i := range b {
			assert.InDelta(Te, l[i], b[i], 1e-9)
		}
	}
	assert.True(Te, chem.IsLastFrame(D.Next(nil, b)))
}

// TestDegreesCell checks that a NAMD-style cell block, with the angles in
// degrees instead of cosines, gives the same lattice.
func TestDegreesCell(Te *testing.T) {
	want := box.FromParameters(20, 21, 22, 70, 85, 100)
	rec := make([]byte, 48)
	for i, v := range []float64{20, 100, 21, 85, 70, 22} {
		binary.LittleEndian.PutUint64(rec[8*i:], math.Float64bits(v))
	}
	got := cellLattice(rec, binary.LittleEndian)
	for i := range got {
		assert.InDelta(Te, want[i], got[i], 1e-9)
	}
	back := cellLattice(cellBlock(want[:], binary.LittleEndian), binary.LittleEndian)
	for i := range back {
		assert.InDelta(Te, want[i], back[i], 1e-9)
	}
}

func TestCompressed(Te *testing.T) {
	dir := Te.TempDir()
	plain := filepath.Join(dir, "test.dcd")
	writeTraj(Te, plain, 3, 2, nil)
	in, err := os.Open(plain)
	require.NoError(Te, err)
	defer in.Close()
	gzname := filepath.Join(dir, "test.dcd.gz")
	out, err := os.Create(gzname)
	require.NoError(Te, err)
	gz := gzip.NewWriter(out)
	_, err = io.Copy(gz, in)
	require.NoError(Te, err)
	require.NoError(Te, gz.Close())
	require.NoError(Te, out.Close())
	D, err := New(gzname)
	require.NoError(Te, err)
	defer D.Close()
	coords := v3.Zeros(3)
	require.NoError(Te, D.Next(coords))
	require.NoError(Te, D.Next(coords))
	assert.InDelta(Te, 2.25, coords.At(2, 0), 1e-6)
	assert.True(Te, chem.IsLastFrame(D.Next(coords)))
}

func TestBadFiles(Te *testing.T) {
	dir := Te.TempDir()
	_, err := New(filepath.Join(dir, "nothere.dcd"))
	assert.Error(Te, err)
	junk := filepath.Join(dir, "junk.dcd")
	require.NoError(Te, os.WriteFile(junk, []byte("this is not a dcd file at all"), 0644))
	_, err = New(junk)
	var e *Error
	require.True(Te, errors.As(err, &e))
	assert.Equal(Te, junk, e.FileName())
	assert.True(Te, e.Critical())
	//A frame cut in half is an error, not the end of the trajectory.
	name := filepath.Join(dir, "cut.dcd")
	writeTraj(Te, name, 4, 2, nil)
	data, err := os.ReadFile(name)
	require.NoError(Te, err)
	require.NoError(Te, os.WriteFile(name, data[:len(data)-20], 0644))
	D, err := New(name)
	require.NoError(Te, err)
	defer D.Close()
	coords := v3.Zeros(4)
	require.NoError(Te, D.Next(coords))
	err = D.Next(coords)
	require.Error(Te, err)
	assert.False(Te, chem.IsLastFrame(err))
	_, err = NewWriter(filepath.Join(dir, "empty.dcd"), 0)
	assert.Error(Te, err)
	W, err := NewWriter(filepath.Join(dir, "nocell.dcd"), 2, true)
	require.NoError(Te, err)
	defer W.Close()
	assert.Error(Te, W.WNext(frameCoords(Te, 0, 2)))
}
