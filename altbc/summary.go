package altbc

import (
	"fmt"

	"github.com/rmera/goaltbc/histo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds global statistics of an analysis. Means and (population)
// standard deviations are weighted by the triplet weights.
type Summary struct {
	Frames    int
	Skipped   int
	Triplets  int
	Weight    float64 //sum of all triplet weights
	MeanAB    float64
	StdAB     float64
	MeanBC    float64
	StdBC     float64
	MeanAngle float64
	StdAngle  float64
}

// Summarize returns the statistics of the triplets collected in A.
func Summarize(A *Accumulator) Summary {
	S := Summary{Frames: A.Frames(), Skipped: len(A.Skipped()), Triplets: A.Table().Len()}
	T := A.Table()
	if T.Len() == 0 {
		return S
	}
	ab := make([]float64, T.Len())
	bc := make([]float64, T.Len())
	angle := make([]float64, T.Len())
	w := make([]float64, T.Len())
	for i, t := range T.Triplets {
		ab[i], bc[i], angle[i], w[i] = t.AB, t.BC, t.Angle, t.Weight
	}
	S.Weight = floats.Sum(w)
	S.MeanAB, S.StdAB = stat.PopMeanStdDev(ab, w)
	S.MeanBC, S.StdBC = stat.PopMeanStdDev(bc, w)
	S.MeanAngle, S.StdAngle = stat.PopMeanStdDev(angle, w)
	return S
}

func (S Summary) String() string {
	return fmt.Sprintf("frames: %d (skipped: %d), triplets: %d, total weight: %.3f\nAB: %.4f +/- %.4f A\nBC: %.4f +/- %.4f A\nangle: %.2f +/- %.2f deg",
		S.Frames, S.Skipped, S.Triplets, S.Weight, S.MeanAB, S.StdAB, S.MeanBC, S.StdBC, S.MeanAngle, S.StdAngle)
}

// AngleDistribution returns the weighted histogram of the angles of the
// triplets in T, with bins of step degrees from o.ThetaMin(). The last bin
// includes o.ThetaMax().
func AngleDistribution(T *Table, o *Options, step float64) *histo.Data {
	d := histo.NewData(histo.Dividers(o.ThetaMin(), o.ThetaMax()+step, step), nil)
	for _, t := range T.Triplets {
		d.AddWeighted(t.Angle, t.Weight)
	}
	return d
}

// BondDistribution returns the weighted histogram of both bond lengths, AB
// and BC, of the triplets in T, with bins of step A between min and max.
func BondDistribution(T *Table, min, max, step float64) *histo.Data {
	d := histo.NewData(histo.Dividers(min, max, step), nil)
	for _, t := range T.Triplets {
		d.AddWeighted(t.AB, t.Weight)
		d.AddWeighted(t.BC, t.Weight)
	}
	return d
}
