package neighbor

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/rmera/goaltbc/box"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomPositions returns n points inside the cell l, plus some slightly outside
// of it, as they often are in MD trajectories.
func randomPositions(rng *rand.Rand, l box.Lattice, n int) [][3]float64 {
	ret := make([][3]float64, n)
	for i := range ret {
		s := [3]float64{rng.Float64(), rng.Float64(), rng.Float64()}
		if i%7 == 0 {
			s[i%3] += 0.5*rng.Float64() - 0.25
		}
		ret[i] = box.Cartesian(l, s)
	}
	return ret
}

type searchCase struct {
	name   string
	l      box.Lattice
	pbc    box.PBC
	cutoff float64
	natoms int
}

var searchCases = []searchCase{
	{"cubic", box.Orthorhombic(12, 12, 12), box.AllPeriodic, 3.0, 300},
	{"triclinic", box.Lattice{11, 0, 0, 3, 10, 0, -2, 1.5, 9.5}, box.AllPeriodic, 3.2, 300},
	{"thin", box.Orthorhombic(15, 15, 2.5), box.AllPeriodic, 1.1, 200},
	{"thinner than cutoff", box.Orthorhombic(14, 14, 2.5), box.AllPeriodic, 3.0, 150},
	{"slab", box.Lattice{13, 0, 0, 4, 12, 0, 0, 0, 30}, box.PBC{true, true, false}, 2.9, 250},
	{"two cells", box.Orthorhombic(8, 8, 8), box.AllPeriodic, 3.9, 120},
}

func TestSearchMatchesBruteForce(Te *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, c := range searchCases {
		for _, mic := range []bool{false, true} {
			Te.Run(fmt.Sprintf("%s/mic=%v", c.name, mic), func(Te *testing.T) {
				B, err := box.New(c.l, c.pbc)
				require.NoError(Te, err)
				if mic && CheckCutoff(B, c.cutoff, mic) != nil {
					Te.Skip("cutoff too large for the minimum image in this box")
				}
				pos := randomPositions(rng, c.l, c.natoms)
				o := DefaultOptions()
				o.Cutoff(c.cutoff)
				o.MIC(mic)
				got, err := Search(B, pos, o)
				require.NoError(Te, err)
				want, err := BruteForce(B, pos, c.cutoff, mic)
				require.NoError(Te, err)
				require.Equal(Te, len(want), len(got))
				assert.Equal(Te, want, got)
				assert.NotEmpty(Te, got)
			})
		}
	}
}

func TestSearchNoDuplicates(Te *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, c := range searchCases {
		B, err := box.New(c.l, c.pbc)
		require.NoError(Te, err)
		o := DefaultOptions()
		o.Cutoff(c.cutoff)
		pairs, err := Search(B, randomPositions(rng, c.l, c.natoms), o)
		require.NoError(Te, err)
		seen := make(map[[2]int]bool)
		for _, p := range pairs {
			assert.Less(Te, p.I, p.J)
			assert.Less(Te, p.D, c.cutoff)
			key := [2]int{p.I, p.J}
			assert.False(Te, seen[key], "pair %v found twice in %s", key, c.name)
			seen[key] = true
		}
	}
}

func TestSearchWorkers(Te *testing.T) {
	rng := rand.New(rand.NewSource(3))
	l := box.Lattice{11, 0, 0, 3, 10, 0, -2, 1.5, 9.5}
	B, err := box.New(l)
	require.NoError(Te, err)
	pos := randomPositions(rng, l, 400)
	o := DefaultOptions()
	o.Cutoff(3.0)
	o.MIC(true)
	serial, err := Search(B, pos, o)
	require.NoError(Te, err)
	o.Workers(5)
	parallel, err := Search(B, pos, o)
	require.NoError(Te, err)
	assert.Equal(Te, serial, parallel)
}

func TestTwoAtoms(Te *testing.T) {
	B, err := box.New(box.Orthorhombic(10, 10, 10))
	require.NoError(Te, err)
	pairs, err := Search(B, [][3]float64{{0, 0, 0}, {3, 0, 0}})
	require.NoError(Te, err)
	require.Len(Te, pairs, 1)
	assert.Equal(Te, 0, pairs[0].I)
	assert.Equal(Te, 1, pairs[0].J)
	assert.InDelta(Te, 3.0, pairs[0].D, 1e-12)
}

func TestMinimumImageAcrossBoundary(Te *testing.T) {
	B, err := box.New(box.Orthorhombic(10, 10, 10))
	require.NoError(Te, err)
	pos := [][3]float64{{0.5, 5, 5}, {9.5, 5, 5}}
	o := DefaultOptions()
	o.Cutoff(2.0)
	pairs, err := Search(B, pos, o)
	require.NoError(Te, err)
	assert.Empty(Te, pairs, "without the minimum image the atoms are 9 apart")
	o.MIC(true)
	pairs, err = Search(B, pos, o)
	require.NoError(Te, err)
	require.Len(Te, pairs, 1)
	assert.InDelta(Te, 1.0, pairs[0].D, 1e-12)
}

func TestCutoffErrors(Te *testing.T) {
	B, err := box.New(box.Orthorhombic(10, 10, 10))
	require.NoError(Te, err)
	pos := [][3]float64{{0, 0, 0}, {1, 0, 0}}
	o := DefaultOptions()
	o.Cutoff(-1)
	_, err = Search(B, pos, o)
	assert.True(Te, errors.Is(err, ErrBadCutoff))
	o.Cutoff(5)
	o.MIC(true)
	_, err = Search(B, pos, o)
	assert.True(Te, errors.Is(err, ErrCutoffTooLarge))
	//along a non-periodic axis the box can be as thin as we want.
	Bslab, err := box.New(box.Orthorhombic(20, 20, 3), box.PBC{true, true, false})
	require.NoError(Te, err)
	_, err = Search(Bslab, pos, o)
	assert.NoError(Te, err)
	o.MIC(false)
	_, err = Search(B, [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, nan(), 0}}, o)
	assert.True(Te, errors.Is(err, ErrBadPosition))
}

func TestTinyCutoff(Te *testing.T) {
	B, err := box.New(box.Orthorhombic(10, 10, 10))
	require.NoError(Te, err)
	pos := [][3]float64{{1, 1, 1}, {1, 1, 1.5}, {5, 5, 5}}
	C, err := BuildCells(B, pos, 1e-10)
	require.NoError(Te, err)
	assert.LessOrEqual(Te, C.Len(), maxCellsPerAtom*len(pos)+27)
	o := DefaultOptions()
	o.Cutoff(1e-10)
	pairs, err := Search(B, pos, o)
	require.NoError(Te, err)
	assert.Empty(Te, pairs)
	o.MIC(true)
	pairs, err = Search(B, pos, o)
	require.NoError(Te, err)
	assert.Empty(Te, pairs)
}

func TestCells(Te *testing.T) {
	rng := rand.New(rand.NewSource(5))
	l := box.Lattice{11, 0, 0, 3, 10, 0, -2, 1.5, 9.5}
	B, err := box.New(l)
	require.NoError(Te, err)
	pos := randomPositions(rng, l, 250)
	C, err := BuildCells(B, pos, 3.0)
	require.NoError(Te, err)
	th := B.Thickness()
	total := 0
	for d := 0; d < 3; d++ {
		assert.GreaterOrEqual(Te, th[d]/float64(C.Dims()[d]), 3.0, "cells must not be thinner than the cutoff")
	}
	seen := make([]bool, len(pos))
	for c := 0; c < C.Len(); c++ {
		total += C.Count(c)
		if c > 0 {
			assert.Equal(Te, C.Offset(c-1)+C.Count(c-1), C.Offset(c))
		}
		for _, a := range C.Atoms(c) {
			assert.Equal(Te, c, C.Linear(C.Home(a)))
			assert.False(Te, seen[a])
			seen[a] = true
		}
	}
	assert.Equal(Te, len(pos), total)
	assert.Len(Te, C.Contents(), len(pos))
}

func TestStencilDegenerate(Te *testing.T) {
	B, err := box.New(box.Orthorhombic(10, 10, 3), box.PBC{true, true, true})
	require.NoError(Te, err)
	C, err := BuildCells(B, [][3]float64{{1, 1, 1}}, 4.0)
	require.NoError(Te, err)
	assert.Equal(Te, [3]int{2, 2, 1}, C.Dims())
	st := C.Stencil(nil, [3]int{0, 0, 0})
	assert.Len(Te, st, 4, "a 2x2x1 grid only has 4 distinct cells")
	unique := make(map[int]bool)
	for _, c := range st {
		unique[c] = true
	}
	assert.Len(Te, unique, len(st))
	Bopen, err := box.New(box.Orthorhombic(10, 10, 10), box.PBC{false, false, false})
	require.NoError(Te, err)
	Copen, err := BuildCells(Bopen, [][3]float64{{1, 1, 1}}, 2.0)
	require.NoError(Te, err)
	assert.Len(Te, Copen.Stencil(nil, [3]int{0, 0, 0}), 8, "a corner cell of an open box has 8 neighbors including itself")
}

func TestAdjacency(Te *testing.T) {
	pairs := []Pair{{0, 1, 1.0}, {0, 2, 2.0}, {1, 2, 1.5}, {2, 3, 0.5}}
	full := Adjacency(pairs, 5)
	assert.Equal(Te, []int{1, 2}, full[0].Index)
	assert.Equal(Te, []int{0, 2}, full[1].Index)
	assert.Equal(Te, []float64{1.0, 1.5}, full[1].Dist)
	assert.Equal(Te, []int{0, 1, 3}, full[2].Index)
	assert.Equal(Te, []float64{2.0, 1.5, 0.5}, full[2].Dist)
	assert.Equal(Te, 0, full[4].Len())
	half := Adjacency(pairs, 5, true)
	assert.Equal(Te, []int{1, 2}, half[0].Index)
	assert.Equal(Te, []int{2}, half[1].Index)
	assert.Equal(Te, []int{3}, half[2].Index)
	assert.Equal(Te, 0, half[3].Len())
}

func nan() float64 { return math.NaN() }
