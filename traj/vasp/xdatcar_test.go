package vasp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constantCell = `GeTe
           1
     8.000000    0.000000    0.000000
     0.000000    8.000000    0.000000
     0.000000    0.000000    8.000000
   Ge   Te
     1     2
Direct configuration=     1
  0.00000000  0.00000000  0.00000000
  0.25000000  0.00000000  0.00000000
  0.50000000  0.00000000  0.00000000
Direct configuration=     2
  0.10000000  0.00000000  0.00000000
  0.35000000  0.00000000  0.00000000
  0.60000000  0.00000000  0.00000000
`

const variableCell = `GeTe
           1
     8.000000    0.000000    0.000000
     0.000000    8.000000    0.000000
     0.000000    0.000000    8.000000
   Ge   Te
     1     2
Direct configuration=     1
  0.00000000  0.00000000  0.00000000
  0.25000000  0.00000000  0.00000000
  0.50000000  0.00000000  0.00000000
GeTe
           2
     5.000000    0.000000    0.000000
     0.000000    5.000000    0.000000
     0.000000    0.000000    5.000000
   Ge   Te
     1     2
Direct configuration=     2
  0.00000000  0.00000000  0.00000000
  0.25000000  0.00000000  0.00000000
  0.50000000  0.00000000  0.00000000
`

func readAll(Te *testing.T, X *XDATCAR) ([]*v3.Matrix, [][]float64) {
	var frames []*v3.Matrix
	var boxes [][]float64
	for {
		c := v3.Zeros(X.Len())
		b := make([]float64, 9)
		err := X.Next(c, b)
		if err != nil {
			require.True(Te, chem.IsLastFrame(err), err.Error())
			break
		}
		frames = append(frames, c)
		boxes = append(boxes, b)
	}
	return frames, boxes
}

func TestConstantCell(Te *testing.T) {
	X, err := NewReader(strings.NewReader(constantCell))
	require.NoError(Te, err)
	assert.Equal(Te, 3, X.Len())
	assert.Equal(Te, []string{"Ge", "Te", "Te"}, chem.Symbols(X.Topology()))
	frames, boxes := readAll(Te, X)
	require.Len(Te, frames, 2)
	assert.InDelta(Te, 2.0, frames[0].Vec(1)[0], 1e-9)
	assert.InDelta(Te, 4.8, frames[1].Vec(2)[0], 1e-9)
	assert.Equal(Te, 8.0, boxes[1][8])
	assert.False(Te, X.Readable())
}

func TestVariableCell(Te *testing.T) {
	X, err := NewReader(strings.NewReader(variableCell))
	require.NoError(Te, err)
	frames, boxes := readAll(Te, X)
	require.Len(Te, frames, 2)
	assert.InDelta(Te, 2.0, frames[0].Vec(1)[0], 1e-9)
	assert.InDelta(Te, 1.25, frames[1].Vec(1)[0], 1e-9)
	assert.Equal(Te, 5.0, boxes[1][0])
	assert.Equal(Te, box.Orthorhombic(5, 5, 5), X.Lattice())
}

func TestSkipFrame(Te *testing.T) {
	X, err := NewReader(strings.NewReader(constantCell))
	require.NoError(Te, err)
	require.NoError(Te, X.Next(nil))
	c := v3.Zeros(3)
	require.NoError(Te, X.Next(c))
	assert.InDelta(Te, 0.8, c.Vec(0)[0], 1e-9)
}

func TestFileAndErrors(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "XDATCAR")
	lines := strings.Split(constantCell, "\n")
	//the second frame is cut short.
	require.NoError(Te, os.WriteFile(name, []byte(strings.Join(lines[:13], "\n")), 0o644))
	X, err := New(name)
	require.NoError(Te, err)
	defer X.Close()
	require.NoError(Te, X.Next(nil))
	err = X.Next(v3.Zeros(3))
	require.Error(Te, err)
	assert.False(Te, chem.IsLastFrame(err))
	var e chem.TrajError
	require.ErrorAs(Te, err, &e)
	assert.Equal(Te, name, e.FileName())
	assert.Error(Te, X.Next(nil), "the reader is no longer readable")

	X2, err := NewReader(strings.NewReader(constantCell))
	require.NoError(Te, err)
	assert.Error(Te, X2.Next(v3.Zeros(2)), "wrong number of atoms")

	_, err = New(filepath.Join(dir, "nothere"))
	assert.Error(Te, err)
	_, err = NewReader(strings.NewReader("only a comment\n"))
	assert.Error(Te, err)
}
