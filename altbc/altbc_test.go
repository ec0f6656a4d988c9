package altbc

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	"github.com/rmera/goaltbc/neighbor"
	v3 "github.com/rmera/goaltbc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cube = box.Orthorhombic(20, 20, 20)

// three atoms on a line, 2.5 A apart, with the center in the middle.
func colinear() [][3]float64 {
	return [][3]float64{{3, 5, 5}, {5.5, 5, 5}, {8, 5, 5}}
}

func allAngles() *Options {
	o := DefaultOptions()
	o.ThetaMin(0)
	o.ThetaMax(180)
	return o
}

func TestColinear(Te *testing.T) {
	T, err := Frame(cube, colinear(), nil, nil)
	require.NoError(Te, err)
	require.Equal(Te, 2, T.Len())
	assert.Equal(Te, [3]int{0, 1, 2}, [3]int{T.Triplets[0].A, T.Triplets[0].B, T.Triplets[0].C})
	assert.Equal(Te, [3]int{2, 1, 0}, [3]int{T.Triplets[1].A, T.Triplets[1].B, T.Triplets[1].C})
	for _, t := range T.Triplets {
		assert.InDelta(Te, 180.0, t.Angle, 1e-9)
		assert.InDelta(Te, 2.5, t.AB, 1e-12)
		assert.InDelta(Te, 2.5, t.BC, 1e-12)
		assert.InDelta(Te, 0.5, t.Weight, 1e-12)
		assert.InDelta(Te, 0.5, t.PairWeight, 1e-12)
	}
	assert.InDelta(Te, 1.0, T.CenterWeight(1), 1e-12)
	assert.InDelta(Te, 0.0, T.CenterWeight(0), 1e-12)
	assert.InDelta(Te, 0.5, T.PairWeight(0, 1), 1e-12)
	assert.InDelta(Te, 0.5, T.PairWeight(2, 1), 1e-12)
	assert.InDelta(Te, 0.0, T.PairWeight(0, 2), 1e-12)
	assert.Len(Te, T.PairWeights(), 2)
}

func TestRightAngle(Te *testing.T) {
	pos := [][3]float64{{5, 5, 5}, {7, 5, 5}, {5, 7, 5}}
	T, err := Frame(cube, pos, nil, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 0, T.Len(), "no angle reaches the default 155 degrees")
	o := DefaultOptions()
	o.ThetaMin(80)
	o.ThetaMax(100)
	T, err = Frame(cube, pos, nil, o)
	require.NoError(Te, err)
	require.Equal(Te, 2, T.Len())
	for _, t := range T.Triplets {
		assert.Equal(Te, 0, t.B)
		assert.InDelta(Te, 90.0, t.Angle, 1e-9)
	}
	T, err = Frame(cube, pos, nil, allAngles())
	require.NoError(Te, err)
	assert.Equal(Te, 6, T.Len(), "two 90 degree triplets on atom 0, two 45 degree ones on each of the others")
}

func TestAllOrderedPairs(Te *testing.T) {
	c := [3]float64{10, 10, 10}
	pos := [][3]float64{c, {12, 10, 10}, {8, 10, 10}, {10, 12, 10}, {10, 8, 10}}
	o := allAngles()
	o.Cutoff(2.5)
	T, err := Frame(cube, pos, nil, o)
	require.NoError(Te, err)
	require.Equal(Te, 12, T.Len(), "4 neighbors give 4*3 ordered pairs")
	straight := 0
	for _, t := range T.Triplets {
		assert.Equal(Te, 0, t.B)
		assert.InDelta(Te, 0.25, t.Weight, 1e-12)
		assert.NotEqual(Te, t.A, t.C)
		if math.Abs(t.Angle-180) < 1e-9 {
			straight++
		} else {
			assert.InDelta(Te, 90.0, t.Angle, 1e-9)
		}
	}
	assert.Equal(Te, 4, straight)
	assert.InDelta(Te, 3.0, T.CenterWeight(0), 1e-12)
}

func TestTwoAtoms(Te *testing.T) {
	T, err := Frame(cube, [][3]float64{{1, 1, 1}, {3, 1, 1}}, nil, allAngles())
	require.NoError(Te, err)
	assert.Equal(Te, 0, T.Len())
	assert.Empty(Te, T.PairWeights())
}

func TestHalf(Te *testing.T) {
	o := DefaultOptions()
	o.Half(true)
	T, err := Frame(cube, colinear(), nil, o)
	require.NoError(Te, err)
	assert.Equal(Te, 0, T.Len(), "the center only sees atom 2")
	//with the center as the lowest index it sees both neighbors.
	pos := [][3]float64{{5.5, 5, 5}, {3, 5, 5}, {8, 5, 5}}
	T, err = Frame(cube, pos, nil, o)
	require.NoError(Te, err)
	require.Equal(Te, 2, T.Len())
	assert.InDelta(Te, 1.0, T.CenterWeight(0), 1e-12)
}

func TestMinimumImage(Te *testing.T) {
	l := box.Orthorhombic(10, 10, 10)
	pos := [][3]float64{{8.5, 5, 5}, {0.5, 5, 5}, {2.5, 5, 5}}
	o := DefaultOptions()
	o.Cutoff(3)
	T, err := Frame(l, pos, nil, o)
	require.NoError(Te, err)
	assert.Equal(Te, 0, T.Len())
	o.MIC(true)
	T, err = Frame(l, pos, nil, o)
	require.NoError(Te, err)
	require.Equal(Te, 2, T.Len())
	for _, t := range T.Triplets {
		assert.Equal(Te, 1, t.B)
		assert.InDelta(Te, 2.0, t.AB, 1e-12)
		assert.InDelta(Te, 180.0, t.Angle, 1e-9)
	}
	o.Cutoff(5)
	_, err = Frame(l, pos, nil, o)
	assert.True(Te, errors.Is(err, neighbor.ErrCutoffTooLarge))
}

func TestCenters(Te *testing.T) {
	top := chem.NewTopology([]string{"Sb", "te", "Te"})
	o := DefaultOptions()
	o.Center("Te")
	T, err := Frame(cube, colinear(), top, o)
	require.NoError(Te, err)
	assert.Equal(Te, 2, T.Len())
	o.Center("Sb")
	T, err = Frame(cube, colinear(), top, o)
	require.NoError(Te, err)
	assert.Equal(Te, 0, T.Len())
	c, err := Centers(top, "TE")
	require.NoError(Te, err)
	assert.Equal(Te, []int{1, 2}, c)
	_, err = Centers(nil, "Te")
	assert.True(Te, errors.Is(err, ErrNoTopology))
}

func TestFrameErrors(Te *testing.T) {
	o := DefaultOptions()
	o.Cutoff(-1)
	_, err := Frame(cube, colinear(), nil, o)
	assert.True(Te, errors.Is(err, ErrBadCutoff))
	o = DefaultOptions()
	o.ThetaMin(170)
	o.ThetaMax(160)
	_, err = Frame(cube, colinear(), nil, o)
	assert.True(Te, errors.Is(err, ErrBadAngles))
	o.ThetaMin(0)
	o.ThetaMax(190)
	_, err = Frame(cube, colinear(), nil, o)
	assert.True(Te, errors.Is(err, ErrBadAngles))
	_, err = Frame(cube, nil, nil, nil)
	assert.True(Te, errors.Is(err, ErrEmptyFrame))
	_, err = Frame(cube, colinear(), chem.NewTopology([]string{"Te"}), nil)
	assert.True(Te, errors.Is(err, ErrMismatch))
	_, err = Frame(box.Orthorhombic(10, 10, 0), colinear(), nil, nil)
	assert.True(Te, errors.Is(err, box.ErrDegenerate))
	o = DefaultOptions()
	o.GridSize(0)
	_, err = Frame(cube, colinear(), nil, o)
	assert.True(Te, errors.Is(err, ErrBadGrid))
	o.Occupancy(false)
	_, err = Frame(cube, colinear(), nil, o)
	assert.NoError(Te, err)
}

// naiveCount counts the triplets in the window by checking every atom against every other one.
func naiveCount(B *box.Box, pos [][3]float64, o *Options) int {
	n := 0
	for b := range pos {
		var bonds [][3]float64
		for j := range pos {
			if j == b {
				continue
			}
			d := v3.Sub(pos[j], pos[b])
			if o.MIC() {
				d = B.MinimumImage(d)
			}
			if v3.Norm(d) < o.Cutoff() {
				bonds = append(bonds, d)
			}
		}
		for a := range bonds {
			for c := range bonds {
				if a == c {
					continue
				}
				angle := v3.Angle(bonds[a], bonds[c]) * rad2deg
				if angle >= o.ThetaMin() && angle <= o.ThetaMax() {
					n++
				}
			}
		}
	}
	return n
}

func randomFrame(seed int64, l box.Lattice, n int) [][3]float64 {
	rng := rand.New(rand.NewSource(seed))
	pos := make([][3]float64, n)
	for i := range pos {
		pos[i] = box.Cartesian(l, [3]float64{rng.Float64(), rng.Float64(), rng.Float64()})
	}
	return pos
}

func TestRandomFrame(Te *testing.T) {
	l := box.Lattice{13, 0, 0, 2, 12, 0, -1, 1, 12.5}
	pos := randomFrame(17, l, 250)
	B, err := box.New(l)
	require.NoError(Te, err)
	for _, mic := range []bool{false, true} {
		o := DefaultOptions()
		o.Cutoff(3.0)
		o.ThetaMin(120)
		o.MIC(mic)
		T, err := Frame(l, pos, nil, o)
		require.NoError(Te, err)
		assert.Equal(Te, naiveCount(B, pos, o), T.Len())
		assert.NotZero(Te, T.Len())
		for _, t := range T.Triplets {
			assert.GreaterOrEqual(Te, t.Angle, 120.0)
			assert.LessOrEqual(Te, t.Angle, 180.0)
			assert.Less(Te, t.AB, 3.0)
			assert.Less(Te, t.BC, 3.0)
		}
		o.Workers(4)
		T2, err := Frame(l, pos, nil, o)
		require.NoError(Te, err)
		assert.Equal(Te, T.Triplets, T2.Triplets)
	}
}

func molecule(Te *testing.T, frames int, periodic bool) *chem.Molecule {
	coords := make([]*v3.Matrix, frames)
	var boxes []box.Lattice
	for i := range coords {
		var data []float64
		for _, p := range colinear() {
			data = append(data, p[0], p[1]+float64(i), p[2])
		}
		m, err := v3.NewMatrix(data)
		require.NoError(Te, err)
		coords[i] = m
		if periodic {
			boxes = append(boxes, cube)
		}
	}
	mol, err := chem.NewMolecule(chem.NewTopology([]string{"Te", "Te", "Te"}), coords, boxes)
	require.NoError(Te, err)
	return mol
}

func gridOptions() *Options {
	o := DefaultOptions()
	o.XMin(2.0)
	o.XMax(3.0)
	o.GridSize(0.25)
	return o
}

func TestRun(Te *testing.T) {
	for _, periodic := range []bool{true, false} {
		mol := molecule(Te, 5, periodic)
		o := gridOptions()
		o.Cpus(2)
		o.Center("Te")
		A, err := Run(mol, mol, o)
		require.NoError(Te, err)
		assert.Equal(Te, 5, A.Frames())
		assert.Empty(Te, A.Skipped())
		T := A.Table()
		require.Equal(Te, 10, T.Len())
		for i, t := range T.Triplets {
			assert.Equal(Te, i/2, t.Frame)
			assert.InDelta(Te, 180.0, t.Angle, 1e-9)
			assert.InDelta(Te, 2.5, t.AB, 1e-12)
		}
		G := A.Grid()
		require.NotNil(Te, G)
		assert.Equal(Te, 4, G.Bins())
		assert.Equal(Te, 5.0, G.At(2, 2))
		assert.Equal(Te, 5.0, mat64Sum(G))
	}
}

func mat64Sum(G *Grid) float64 {
	s := 0.0
	for r := 0; r < G.Bins(); r++ {
		for c := 0; c < G.Bins(); c++ {
			s += G.At(r, c)
		}
	}
	return s
}

func TestRunSkip(Te *testing.T) {
	mol := molecule(Te, 5, true)
	o := gridOptions()
	o.Skip(2)
	o.Cpus(3)
	A, err := Run(mol, nil, o)
	require.NoError(Te, err)
	assert.Equal(Te, 3, A.Frames())
	frames := make(map[int]bool)
	for _, t := range A.Table().Triplets {
		frames[t.Frame] = true
	}
	assert.Equal(Te, map[int]bool{0: true, 2: true, 4: true}, frames)
}

func TestRunBadFrame(Te *testing.T) {
	mol := molecule(Te, 4, true)
	mol.Coords[1].Set(0, 0, math.NaN())
	o := gridOptions()
	_, err := Run(mol, nil, o)
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, neighbor.ErrBadPosition))
	var e *Error
	require.True(Te, errors.As(err, &e))
	assert.Equal(Te, 1, e.Frame())
	mol.Rewind()
	o.SkipBadFrames(true)
	A, err := Run(mol, nil, o)
	require.NoError(Te, err)
	assert.Equal(Te, 3, A.Frames())
	assert.Equal(Te, []int{1}, A.Skipped())
	mol.Rewind()
	o.Center("Te")
	_, err = Run(mol, nil, o)
	assert.True(Te, errors.Is(err, ErrNoTopology))
}

func TestAccumulatorMerge(Te *testing.T) {
	o := gridOptions()
	A, err := NewAccumulator(o)
	require.NoError(Te, err)
	B, err := NewAccumulator(o)
	require.NoError(Te, err)
	T, err := Frame(cube, colinear(), nil, o)
	require.NoError(Te, err)
	A.Add(0, T)
	T, err = Frame(cube, colinear(), nil, o)
	require.NoError(Te, err)
	B.Add(1, T)
	require.NoError(Te, A.Merge(B))
	assert.Equal(Te, 2, A.Frames())
	assert.Equal(Te, 4, A.Table().Len())
	assert.Equal(Te, 2.0, A.Grid().At(2, 2))
	//two identical frames, twice the weight of one.
	assert.InDelta(Te, 2*T.PairWeight(0, 1), A.Table().PairWeight(0, 1), 1e-12)
	assert.InDelta(Te, 1.0, A.Table().PairWeight(1, 2), 1e-12)
	assert.InDelta(Te, 0.5, T.PairWeight(0, 1), 1e-12)
	o.Occupancy(false)
	C, err := NewAccumulator(o)
	require.NoError(Te, err)
	assert.Nil(Te, C.Grid())
}

func TestGridBelowLimit(Te *testing.T) {
	G, err := NewGrid(2, 3, 0.25)
	require.NoError(Te, err)
	T := &Table{Triplets: []Triplet{{AB: 1.9, BC: 2.1}, {AB: 2.1, BC: 2.1}}}
	G.AddFrame(T)
	assert.Equal(Te, 1.0, G.At(0, 0))
	total := 0.0
	for r := 0; r < G.Bins(); r++ {
		for c := 0; c < G.Bins(); c++ {
			total += G.At(r, c)
		}
	}
	assert.Equal(Te, 1.0, total, "a distance just below the lower limit is not counted")
}

func TestGrid(Te *testing.T) {
	_, err := NewGrid(2, 3, 0)
	assert.True(Te, errors.Is(err, ErrBadGrid))
	_, err = NewGrid(3, 2, 0.1)
	assert.True(Te, errors.Is(err, ErrBadGrid))
	G, err := NewGrid(2, 3, 0.25)
	require.NoError(Te, err)
	T := &Table{Triplets: []Triplet{
		{AB: 2.1, BC: 2.6},
		{AB: 2.2, BC: 2.7}, //same bin as the first one
		{AB: 2.9, BC: 2.1},
		{AB: 3.5, BC: 2.1}, //off the grid
		{AB: 1.9, BC: 2.1}, //off the grid
	}}
	G.AddFrame(T)
	G.AddFrame(&Table{Triplets: T.Triplets[:1]})
	assert.Equal(Te, 2, G.Frames())
	assert.Equal(Te, 2.0, G.At(2, 0))
	assert.Equal(Te, 1.0, G.At(0, 3))
	assert.Equal(Te, 3.0, mat64Sum(G))
	N := G.Normalized()
	assert.Equal(Te, 1.0, N.At(2, 0))
	assert.Equal(Te, 0.5, N.At(0, 3))
	assert.Equal(Te, 2.0, G.At(2, 0), "normalizing doesn't change the grid")
	var buf bytes.Buffer
	require.NoError(Te, G.WriteText(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(Te, lines, 4)
	assert.Equal(Te, "0.000000,0.000000,0.000000,1.000000", lines[0])
	assert.Equal(Te, "2.000000,0.000000,0.000000,0.000000", lines[2])
	other, err := NewGrid(2, 3, 0.1)
	require.NoError(Te, err)
	assert.True(Te, errors.Is(G.Merge(other), ErrBadGrid))
}

func TestExport(Te *testing.T) {
	T, err := Frame(cube, colinear(), nil, nil)
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, T.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(Te, lines, 3)
	assert.Equal(Te, "A,B,C,AB,BC,angle_ABC,weight,pair", lines[0])
	assert.Equal(Te, "0,1,2,2.500000,2.500000,180.000000,0.500000,0.500000", lines[1])
	assert.Equal(Te, "2,1,0,2.500000,2.500000,180.000000,0.500000,0.500000", lines[2])
	buf.Reset()
	require.NoError(Te, T.WriteJSON(&buf))
	var decoded []map[string]float64
	require.NoError(Te, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(Te, decoded, 2)
	assert.InDelta(Te, 180.0, decoded[0]["angle_abc"], 1e-9)
	assert.Equal(Te, 2.0, decoded[1]["a"])
	buf.Reset()
	require.NoError(Te, new(Table).WriteJSON(&buf))
	assert.Equal(Te, "[]", strings.TrimSpace(buf.String()))
}

func TestExportFrames(Te *testing.T) {
	mol := molecule(Te, 2, true)
	A, err := Run(mol, nil, gridOptions())
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, A.Table().WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(Te, lines, 5)
	assert.True(Te, strings.HasPrefix(lines[0], "frame,A,"))
	assert.True(Te, strings.HasPrefix(lines[4], "1,2,1,0,"))
}

func TestSummary(Te *testing.T) {
	mol := molecule(Te, 3, true)
	o := gridOptions()
	A, err := Run(mol, nil, o)
	require.NoError(Te, err)
	S := Summarize(A)
	assert.Equal(Te, 3, S.Frames)
	assert.Equal(Te, 6, S.Triplets)
	assert.InDelta(Te, 3.0, S.Weight, 1e-12)
	assert.InDelta(Te, 2.5, S.MeanAB, 1e-12)
	assert.InDelta(Te, 0.0, S.StdAB, 1e-9)
	assert.InDelta(Te, 180.0, S.MeanAngle, 1e-9)
	assert.Contains(Te, S.String(), "triplets: 6")
	ad := AngleDistribution(A.Table(), o, 5)
	assert.InDelta(Te, 3.0, ad.Total(), 1e-12)
	h := ad.View()
	assert.InDelta(Te, 3.0, h[len(h)-1], 1e-12, "180 degrees is in the last bin")
	bd := BondDistribution(A.Table(), 2.0, 3.0, 0.1)
	assert.InDelta(Te, 6.0, bd.Total(), 1e-12)
	empty := Summarize(&Accumulator{table: new(Table)})
	assert.Equal(Te, 0, empty.Triplets)
	assert.Equal(Te, 0.0, empty.MeanAB)
}

func TestBoundingLattice(Te *testing.T) {
	pos := [][3]float64{{-3, 1, 0}, {2, 1, 0}, {0, 4, 0}}
	l := BoundingLattice(pos, 2)
	assert.Equal(Te, box.Orthorhombic(9, 7, 4), l)
	assert.Equal(Te, [3]float64{2, 2, 2}, pos[0])
	assert.Equal(Te, [3]float64{5, 5, 2}, pos[2])
}
