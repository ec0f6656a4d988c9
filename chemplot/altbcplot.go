/*
 * altbcplot.go, part of goALTBC
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

// Package chemplot produces plots of the three-body correlations: a
// scatter plot of the two bond lengths of each triplet, and a heat map of
// the occupancy grid.
package chemplot

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/rmera/goaltbc/altbc"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Options for the plots. The axes of both plots go from XMin to XMax.
type Options struct {
	Title  string
	XMin   float64
	XMax   float64
	Size   vg.Length //side of the (square) plot
	Colors int       //number of colors in the heat map palette
}

// DefaultOptions returns the default options: axes from 2.5 to 3.8 A in a
// 12 cm plot.
func DefaultOptions() *Options {
	return &Options{Title: "ALTBC", XMin: 2.5, XMax: 3.8, Size: 12 * vg.Centimeter, Colors: 64}
}

var formats = []string{".png", ".svg", ".pdf", ".eps", ".jpg", ".jpeg", ".tif", ".tiff"}

func checkName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, v := range formats {
		if ext == v {
			return nil
		}
	}
	return fmt.Errorf("chemplot: unsupported plot format %q in %s", ext, filename)
}

func basicPlot(o *Options) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = o.Title
	p.X.Label.Text = "AB (A)"
	p.Y.Label.Text = "BC (A)"
	//Constant axes
	p.X.Min = o.XMin
	p.X.Max = o.XMax
	p.Y.Min = o.XMin
	p.Y.Max = o.XMax
	return p
}

// ScatterPlot saves to filename a plot of the BC bond length against the AB
// one for each triplet in T, colored by the pair weight of the triplet. The
// format is taken from the extension of filename (png, svg, pdf, eps, jpg or tif).
func ScatterPlot(T *altbc.Table, filename string, o *Options) error {
	if o == nil {
		o = DefaultOptions()
	}
	if err := checkName(filename); err != nil {
		return err
	}
	if T.Len() == 0 {
		return fmt.Errorf("chemplot: no triplets to plot in %s", filename)
	}
	p := basicPlot(o)
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, T.Len())
	wmin, wmax := math.Inf(1), math.Inf(-1)
	for i, t := range T.Triplets {
		pts[i].X = t.AB
		pts[i].Y = t.BC
		wmin = math.Min(wmin, t.PairWeight)
		wmax = math.Max(wmax, t.PairWeight)
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		r, g, b := colors(T.Triplets[i].PairWeight, wmin, wmax)
		return draw.GlyphStyle{Color: color.RGBA{R: r, G: g, B: b, A: 255}, Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
	}
	p.Add(s)
	//here I  intentionally shadow err.
	if err := p.Save(o.Size, o.Size, filename); err != nil {
		return err
	}
	return nil
}

// GridPlot saves to filename a heat map of the normalized occupancy grid G.
// The format is taken from the extension of filename.
func GridPlot(G *altbc.Grid, filename string, o *Options) error {
	if o == nil {
		o = DefaultOptions()
	}
	if err := checkName(filename); err != nil {
		return err
	}
	if G.Bins() < 2 {
		return fmt.Errorf("chemplot: at least 2 bins per axis needed for a heat map, %d given", G.Bins())
	}
	gx := gridXYZ{G: G, norm: G.Normalized()}
	min, max, _ := G.Limits()
	op := *o
	op.XMin, op.XMax = min, max
	p := basicPlot(&op)
	ncolors := o.Colors
	if ncolors < 2 {
		ncolors = 64
	}
	h := plotter.NewHeatMap(gx, palette.Heat(ncolors, 1))
	h.Min, h.Max = 0, 1
	p.Add(h)
	if err := p.Save(o.Size, o.Size, filename); err != nil {
		return err
	}
	return nil
}

// gridXYZ presents the normalized occupancy grid as a plotter.GridXYZ. Columns
// are the AB bins and rows the BC ones.
type gridXYZ struct {
	G    *altbc.Grid
	norm *mat.Dense
}

func (g gridXYZ) Dims() (c, r int) { return g.G.Bins(), g.G.Bins() }

func (g gridXYZ) Z(c, r int) float64 { return g.norm.At(r, c) }

func (g gridXYZ) X(c int) float64 {
	min, _, size := g.G.Limits()
	return min + (float64(c)+0.5)*size
}

func (g gridXYZ) Y(r int) float64 { return g.X(r) }

// colors returns a color going from blue for the weight wmin to red for wmax.
func colors(w, wmin, wmax float64) (r, g, b uint8) {
	f := 0.5
	if wmax > wmin {
		f = (w - wmin) / (wmax - wmin)
	}
	return iHVS2RGB(240*(1-f), 1, 1)
}

// takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var i, f, p, q, t float64
	var r, g, b float64
	maxcolor := 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i = math.Floor(h)
	f = h - i
	p = v * (1 - s)
	q = v * (1 - s*f)
	t = v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		r = v
		g = t
		b = p
	case 1:
		r = q
		g = v
		b = p
	case 2:
		r = p
		g = v
		b = t
	case 3:
		r = p
		g = q
		b = v
	case 4:
		r = t
		g = p
		b = v
	default: //case 5
		r = v
		g = p
		b = q
	}
	r = r * conversion
	g = g * conversion
	b = b * conversion
	return uint8(r), uint8(g), uint8(b)
}
