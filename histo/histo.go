/*
 * histo.go, part of goALTBC.
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

// Package histo implements one-dimensional, optionally weighted, histograms,
// such as the distributions of angles and bond lengths in a set of triplets.
package histo

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Data is a histogram. Values outside of the dividers are omitted.
type Data struct {
	id         int
	normalized bool
	total      float64 //sum of the weights of the values in the histogram
	dividers   []float64
	histo      []float64
}

// Dividers returns the dividers for bins of width step from min up to, at
// least, max.
func Dividers(min, max, step float64) []float64 {
	if !(step > 0) || !(max > min) {
		return []float64{min, max}
	}
	n := int((max-min)/step + 0.5)
	if min+float64(n)*step < max {
		n++
	}
	return floats.Span(make([]float64, n+1), min, min+float64(n)*step)
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         int       `json:"id"`
		Normalized bool      `json:"normalized"`
		Total      float64   `json:"total"`
		Dividers   []float64 `json:"dividers"`
		Histo      []float64 `json:"histo"`
	}{
		ID:         D.id,
		Normalized: D.normalized,
		Total:      D.total,
		Dividers:   D.dividers,
		Histo:      D.histo,
	})
}

// ID returns the ID of the histogram
func (D *Data) ID() int {
	return D.id
}

// String prints a -hopefully- pretty string representation of
// the histogram. The representation uses 3 lines of text.
func (D *Data) String() string {
	ret := fmt.Sprintf("ID: %d, Normalized: %v, TotalData: %g\n", D.id, D.normalized, D.total)
	d := make([]string, 0, len(D.dividers)-1)
	h := make([]string, 0, len(D.dividers)-1)
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

// NewData returns a new histogram from the dividers and rawdata given.
// rawdata can be nil. In that case, an empty histogram is created.
// If an ID for the histogram is given, it will be set. If not, the ID will
// be set to -1. It panics if less than 2 dividers are given.
func NewData(dividers []float64, rawdata []float64, ID ...int) *Data {
	if len(dividers) < 2 {
		panic("goALTBC/histo: at least 2 dividers are needed")
	}
	d := new(Data)
	//I prefer to copy the slice to avoid somebody changing it from outside
	d.dividers = make([]float64, len(dividers))
	copy(d.dividers, dividers)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(rawdata, nil)
	}
	d.id = -1
	if len(ID) > 0 {
		d.id = ID[0]
	}
	return d
}

// AddData adds the given data point(s) to the histogram, each with weight 1.
func (D *Data) AddData(point ...float64) {
	for _, v := range point {
		D.AddWeighted(v, 1)
	}
}

// AddWeighted adds the value v with weight w to the histogram.
func (D *Data) AddWeighted(v, w float64) {
	var norma bool
	if D.normalized {
		norma = true
		D.UnNormalize()
	}
	last := len(D.dividers) - 1
	//Values that are not smaller than the last divider are just omitted.
	if v >= D.dividers[0] && v < D.dividers[last] {
		j := sort.SearchFloat64s(D.dividers, v)
		if j == len(D.dividers) || D.dividers[j] != v {
			j--
		}
		D.histo[j] += w
		D.total += w
	}
	//if it was normalized, we should return it to that state
	if norma {
		D.Normalize()
	}
}

// Normalized Returns true if the histogram is normalized
func (D *Data) Normalized() bool {
	return D.normalized
}

// Normalize normalizes the histogram, so its bins add up to 1.
func (D *Data) Normalize() {
	D.normaunnorma(true)
}

// UnNormalize un-normalizes the histogram
func (D *Data) UnNormalize() {
	D.normaunnorma(false)
}

// normalizes or un-normalizes the histogram depending
// on whether normalize is true
func (D *Data) normaunnorma(normalize bool) {
	if D.total <= 0 || D.normalized == normalize {
		return
	}
	n := D.total
	D.normalized = false
	if normalize {
		n = 1 / D.total
		D.normalized = true
	}
	floats.Scale(n, D.histo)
}

// Total returns the sum of the weights of the data in the histogram.
func (D *Data) Total() float64 {
	return D.total
}

// CopyDividers copies the dividers of the histogram
func (D *Data) CopyDividers(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.dividers), dest...)
	copy(d, D.dividers)
	return d
}

// Copy returns a copy of the bins of the histogram.
func (D *Data) Copy(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.histo), dest...)
	copy(d, D.histo)
	return d
}

// View returns the bins of the histogram. Changes to the slice change the histogram.
func (D *Data) View() []float64 {
	return D.histo
}

// Centers returns the center of each bin.
func (D *Data) Centers() []float64 {
	ret := make([]float64, len(D.histo))
	for i := range ret {
		ret[i] = (D.dividers[i] + D.dividers[i+1]) / 2
	}
	return ret
}

// Add adds the histograms a and b putting the result in the receiver.
// It panics if a and b don't have the same dividers.
func (D *Data) Add(a, b *Data) {
	if !floats.Equal(a.dividers, b.dividers) {
		panic("goALTBC/histo: Dividers must match in added histograms")
	}
	ha, hb := a.raw(), b.raw()
	D.dividers = a.CopyDividers(D.dividers)
	D.histo = getCopySlice(len(a.histo), D.histo)
	floats.AddTo(D.histo, ha, hb)
	D.total = a.total + b.total
	D.normalized = false
}

// raw returns a copy of the un-normalized bins.
func (D *Data) raw() []float64 {
	ret := D.Copy()
	if D.normalized {
		floats.Scale(D.total, ret)
	}
	return ret
}

// Sum returns the sum of the bins.
func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

// Mode returns the center of the bin with the largest value.
func (D *Data) Mode() float64 {
	i := floats.MaxIdx(D.histo)
	return (D.dividers[i] + D.dividers[i+1]) / 2
}

// ReHisto replaces the contents of the histogram with rawdata, each value
// with the corresponding weight, or 1, if weights is nil. rawdata and
// weights are not modified.
func (D *Data) ReHisto(rawdata, weights []float64) {
	x := make([]float64, 0, len(rawdata))
	var w []float64
	idx := make([]int, len(rawdata))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return rawdata[idx[i]] < rawdata[idx[j]] })
	if weights != nil {
		w = make([]float64, 0, len(rawdata))
	}
	first, last := D.dividers[0], D.dividers[len(D.dividers)-1]
	//stat.Histogram just panics instead of omitting the values that are off limits
	//so we remove them here before the call.
	for _, i := range idx {
		if rawdata[i] < first || rawdata[i] >= last {
			continue
		}
		x = append(x, rawdata[i])
		if w != nil {
			w = append(w, weights[i])
		}
	}
	D.normalized = false
	D.histo = stat.Histogram(nil, D.dividers, x, w)
	if w != nil {
		D.total = floats.Sum(w)
	} else {
		D.total = float64(len(x))
	}
}

func getCopySlice(N int, dest ...[]float64) []float64 {
	if len(dest) > 0 && cap(dest[0]) >= N {
		return dest[0][:N]
	}
	return make([]float64, N)
}
