package stf

import (
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrames() ([]*v3.Matrix, [][]float64) {
	var frames []*v3.Matrix
	var boxes [][]float64
	for f := 0; f < 3; f++ {
		m := v3.Zeros(3)
		for i := 0; i < 3; i++ {
			m.SetVec(i, [3]float64{2.8*float64(i) + 0.1*float64(f), -1.234, 0.5 * float64(f)})
		}
		frames = append(frames, m)
		side := 8.0 + float64(f)
		boxes = append(boxes, []float64{side, 0, 0, 0, side, 0, 0.25, 0, side})
	}
	return frames, boxes
}

func TestSTFWriteRead(Te *testing.T) {
	top := chem.NewTopology([]string{"Ge", "Te", "Te"})
	for _, ext := range []string{"stf", "stz", "str", "stl"} {
		Te.Run(ext, func(Te *testing.T) {
			name := filepath.Join(Te.TempDir(), "traj."+ext)
			header := TopologyHeader(top, box.PBC{true, true, false})
			header["prec"] = "3"
			w, err := NewWriter(name, 3, header)
			require.NoError(Te, err)
			frames, boxes := testFrames()
			for i, f := range frames {
				require.NoError(Te, w.WNext(f, boxes[i]))
			}
			require.NoError(Te, w.Close())

			r, h, err := New(name)
			require.NoError(Te, err)
			defer r.Close()
			assert.Equal(Te, "3", h["prec"])
			assert.Equal(Te, 3, r.Len())
			t2, err := r.Topology()
			require.NoError(Te, err)
			assert.Equal(Te, chem.Symbols(top), chem.Symbols(t2))
			pbc, err := r.PBC()
			require.NoError(Te, err)
			assert.Equal(Te, box.PBC{true, true, false}, pbc)
			c := v3.Zeros(3)
			b := make([]float64, 9)
			n := 0
			for ; ; n++ {
				err := r.Next(c, b)
				if err != nil {
					require.True(Te, chem.IsLastFrame(err), err.Error())
					break
				}
				for i := 0; i < 3; i++ {
					want, got := frames[n].Vec(i), c.Vec(i)
					assert.InDeltaSlice(Te, want[:], got[:], 1e-3)
				}
				assert.InDeltaSlice(Te, boxes[n], b, 1e-6)
			}
			assert.Equal(Te, 3, n)
			assert.False(Te, r.Readable())
		})
	}
}

func TestSTFNoBox(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "nobox.stf")
	w, err := NewWriter(name, 3, nil)
	require.NoError(Te, err)
	frames, _ := testFrames()
	require.NoError(Te, w.WNext(frames[0]))
	require.Error(Te, w.WNext(v3.Zeros(2)))
	require.NoError(Te, w.Close())
	r, h, err := New(name)
	require.NoError(Te, err)
	assert.Equal(Te, "2", h["prec"])
	top, err := r.Topology()
	assert.NoError(Te, err)
	assert.Nil(Te, top)
	require.NoError(Te, r.Next(nil))
	r.Close()

	r, _, err = New(name)
	require.NoError(Te, err)
	err = r.Next(v3.Zeros(3), make([]float64, 9))
	require.Error(Te, err)
	var e chem.TrajError
	require.ErrorAs(Te, err, &e)
	assert.False(Te, e.Critical(), "a missing box is not a critical error")
	r.Close()
}

func TestSTFErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, err := NewWriter(filepath.Join(dir, "a.stf"), 3, map[string]string{"prec": "x"})
	assert.Error(Te, err)
	_, _, err = New(filepath.Join(dir, "nothere.stf"))
	assert.Error(Te, err)
	plain := filepath.Join(dir, "plain.stf")
	require.NoError(Te, os.WriteFile(plain, []byte("not compressed\n"), 0o644))
	_, _, err = New(plain)
	assert.Error(Te, err)
}
