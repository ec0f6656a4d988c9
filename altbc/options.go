/*
 * options.go, part of goALTBC
 *
 * Copyright 2020 Raul Mera A. (raulpuntomeraatusachpuntocl)
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

package altbc

import (
	"fmt"
	"math"
	"runtime"

	"github.com/rmera/goaltbc/box"
	"go.uber.org/zap"
)

// Options for the three-body analysis.
type Options struct {
	cutoff        float64
	thetaMin      float64
	thetaMax      float64
	center        string
	mic           bool
	half          bool
	pbc           box.PBC
	cpus          int
	workers       int
	skip          int
	skipBadFrames bool
	xmin          float64
	xmax          float64
	gridSize      float64
	grid          bool
	logger        *zap.Logger
}

// DefaultOptions returns an Options with the default options: a 4.0 A cutoff,
// angles between 155 and 180 degrees, any atom as center, no minimum image
// correction, symmetric neighbor lists, fully periodic cells, one goroutine
// per logical CPU, every frame read, and a 0.001 A occupancy grid spanning
// 2.5 to 3.8 A. Nothing is logged.
func DefaultOptions() *Options {
	ret := new(Options)
	ret.cutoff = 4.0
	ret.thetaMin = 155
	ret.thetaMax = 180
	ret.pbc = box.AllPeriodic
	ret.cpus = runtime.NumCPU()
	ret.workers = 1
	ret.skip = 1
	ret.xmin = 2.5
	ret.xmax = 3.8
	ret.gridSize = 0.001
	ret.grid = true
	ret.logger = zap.NewNop()
	return ret
}

// Cutoff returns the bond cutoff and sets it, if a value is given.
// Invalid values are rejected by Validate.
func (o *Options) Cutoff(cutoff ...float64) float64 {
	ret := o.cutoff
	if len(cutoff) > 0 {
		o.cutoff = cutoff[0]
	}
	return ret
}

// ThetaMin returns the smallest angle, in degrees, of the triplets kept,
// and sets it, if a value is given.
func (o *Options) ThetaMin(theta ...float64) float64 {
	ret := o.thetaMin
	if len(theta) > 0 {
		o.thetaMin = theta[0]
	}
	return ret
}

// ThetaMax returns the largest angle, in degrees, of the triplets kept,
// and sets it, if a value is given.
func (o *Options) ThetaMax(theta ...float64) float64 {
	ret := o.thetaMax
	if len(theta) > 0 {
		o.thetaMax = theta[0]
	}
	return ret
}

// Center returns the symbol of the atoms that can be the center of a
// triplet, and sets it, if given. An empty string means any atom.
func (o *Options) Center(center ...string) string {
	ret := o.center
	if len(center) > 0 {
		o.center = center[0]
	}
	return ret
}

// MIC returns whether distances and angles are corrected with the minimum
// image convention and sets the value to the one given, if any.
func (o *Options) MIC(mic ...bool) bool {
	ret := o.mic
	if len(mic) > 0 {
		o.mic = mic[0]
	}
	return ret
}

// Half returns whether each neighbor pair is only added to the list of its
// lower-index atom, and sets the value to the one given, if any.
func (o *Options) Half(half ...bool) bool {
	ret := o.half
	if len(half) > 0 {
		o.half = half[0]
	}
	return ret
}

// PBC returns the periodicity of the cell along each lattice vector, and sets
// it, if given.
func (o *Options) PBC(pbc ...box.PBC) box.PBC {
	ret := o.pbc
	if len(pbc) > 0 {
		o.pbc = pbc[0]
	}
	return ret
}

// Cpus returns the current value of the Cpus options (the number of frames
// processed concurrently) and sets it, if a valid value is given.
func (o *Options) Cpus(cpus ...int) int {
	ret := o.cpus
	if len(cpus) > 0 && cpus[0] > 0 {
		o.cpus = cpus[0]
	}
	return ret
}

// Workers returns the number of goroutines used for the neighbor search within
// each frame, and sets it, if a valid value is given.
func (o *Options) Workers(workers ...int) int {
	ret := o.workers
	if len(workers) > 0 && workers[0] > 0 {
		o.workers = workers[0]
	}
	return ret
}

// Skip returns the stride with which frames are read (1 reads every frame,
// 10 every tenth) and sets it, if a valid value is given.
func (o *Options) Skip(skip ...int) int {
	ret := o.skip
	if len(skip) > 0 && skip[0] > 0 {
		o.skip = skip[0]
	}
	return ret
}

// SkipBadFrames returns whether frames that can't be analyzed are logged and
// skipped, instead of stopping the analysis, and sets it, if a value is given.
func (o *Options) SkipBadFrames(skip ...bool) bool {
	ret := o.skipBadFrames
	if len(skip) > 0 {
		o.skipBadFrames = skip[0]
	}
	return ret
}

// XMin returns the lower limit, in A, of both axes of the occupancy grid,
// and sets it, if a value is given.
func (o *Options) XMin(xmin ...float64) float64 {
	ret := o.xmin
	if len(xmin) > 0 {
		o.xmin = xmin[0]
	}
	return ret
}

// XMax returns the upper limit, in A, of both axes of the occupancy grid,
// and sets it, if a value is given.
func (o *Options) XMax(xmax ...float64) float64 {
	ret := o.xmax
	if len(xmax) > 0 {
		o.xmax = xmax[0]
	}
	return ret
}

// GridSize returns the bin size of the occupancy grid and sets it, if a value
// is given.
func (o *Options) GridSize(size ...float64) float64 {
	ret := o.gridSize
	if len(size) > 0 {
		o.gridSize = size[0]
	}
	return ret
}

// Occupancy returns whether the occupancy grid is accumulated, and sets the
// value to the one given, if any.
func (o *Options) Occupancy(on ...bool) bool {
	ret := o.grid
	if len(on) > 0 {
		o.grid = on[0]
	}
	return ret
}

// Logger returns the logger used for the analysis, and sets it, if a non-nil
// one is given.
func (o *Options) Logger(logger ...*zap.Logger) *zap.Logger {
	ret := o.logger
	if len(logger) > 0 && logger[0] != nil {
		o.logger = logger[0]
	}
	return ret
}

// Validate returns an error if the options can't be used for an analysis.
func (o *Options) Validate() error {
	if !(o.cutoff > 0) || math.IsInf(o.cutoff, 1) {
		return newError(fmt.Sprintf("cutoff %g", o.cutoff), "Validate", ErrBadCutoff)
	}
	if !(o.thetaMin >= 0 && o.thetaMax <= 180 && o.thetaMin <= o.thetaMax) {
		return newError(fmt.Sprintf("theta_min %g, theta_max %g", o.thetaMin, o.thetaMax), "Validate", ErrBadAngles)
	}
	if o.grid && !(o.gridSize > 0 && o.xmax-o.xmin >= o.gridSize) {
		return newError(fmt.Sprintf("grid from %g to %g with bins of %g", o.xmin, o.xmax, o.gridSize), "Validate", ErrBadGrid)
	}
	return nil
}
