/*
 * run.go, part of goALTBC
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
	"errors"
	"fmt"

	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	v3 "github.com/rmera/goaltbc/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Accumulator collects the triplets and the occupancy grid of the frames
// analyzed.
type Accumulator struct {
	table   *Table
	grid    *Grid
	frames  int
	skipped []int
}

// NewAccumulator returns an empty accumulator. It has an occupancy grid only
// if o.Occupancy() is true.
func NewAccumulator(o *Options) (*Accumulator, error) {
	if o == nil {
		o = DefaultOptions()
	}
	A := &Accumulator{table: &Table{pairs: make(map[PairKey]float64)}}
	if o.Occupancy() {
		g, err := NewGrid(o.XMin(), o.XMax(), o.GridSize())
		if err != nil {
			return nil, errDecorate(err, "NewAccumulator")
		}
		A.grid = g
	}
	return A, nil
}

// Add adds the triplets of frame, found in T, to the accumulator.
func (A *Accumulator) Add(frame int, T *Table) {
	for i := range T.Triplets {
		T.Triplets[i].Frame = frame
	}
	A.table.Append(T)
	if A.grid != nil {
		A.grid.AddFrame(T)
	}
	A.frames++
}

// Merge adds the contents of o to the accumulator.
func (A *Accumulator) Merge(o *Accumulator) error {
	A.table.Append(o.table)
	if A.grid != nil && o.grid != nil {
		if err := A.grid.Merge(o.grid); err != nil {
			return errDecorate(err, "Merge")
		}
	}
	A.frames += o.frames
	A.skipped = append(A.skipped, o.skipped...)
	return nil
}

// Table returns the triplets of all the frames added, in the order the
// frames were added.
func (A *Accumulator) Table() *Table { return A.table }

// Grid returns the occupancy grid, or nil if it is not collected.
func (A *Accumulator) Grid() *Grid { return A.grid }

// Frames returns the number of frames added.
func (A *Accumulator) Frames() int { return A.frames }

// Skipped returns the indexes of the frames that could not be analyzed and were skipped.
func (A *Accumulator) Skipped() []int { return A.skipped }

// frame is one trajectory frame waiting to be analyzed.
type frame struct {
	index     int
	positions [][3]float64
	lattice   box.Lattice
	cellless  bool
}

// Run analyzes the frames of traj, reading one every o.Skip() frames. Up to
// o.Cpus() frames are analyzed concurrently, but the results are always
// added to the accumulator in the order of the trajectory. top can be nil
// if no center species is requested.
// Frames without a lattice (all box components equal to zero) are analyzed
// with non-periodic boundary conditions inside a bounding box.
func Run(traj chem.Traj, top chem.Atomer, o *Options) (*Accumulator, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if err := o.Validate(); err != nil {
		return nil, errDecorate(err, "Run")
	}
	if traj == nil || !traj.Readable() {
		return nil, newError("trajectory not readable", "Run", nil)
	}
	natoms := traj.Len()
	if natoms < 1 {
		return nil, newError("trajectory without atoms", "Run", ErrEmptyFrame)
	}
	if top != nil && top.Len() != natoms {
		return nil, newError(fmt.Sprintf("%d atoms in the trajectory, %d in the topology", natoms, top.Len()), "Run", ErrMismatch)
	}
	if top == nil && o.Center() != "" {
		return nil, newError(fmt.Sprintf("center %q", o.Center()), "Run", ErrNoTopology)
	}
	A, err := NewAccumulator(o)
	if err != nil {
		return nil, errDecorate(err, "Run")
	}
	log := o.Logger()
	coords := v3.Zeros(natoms)
	boxbuf := make([]float64, 9)
	batch := make([]*frame, 0, o.Cpus())
	done := false
	for i := 0; !done; i++ {
		if i > 0 && i%o.Skip() != 0 {
			err = traj.Next(nil)
		} else {
			for j := range boxbuf {
				boxbuf[j] = 0
			}
			err = traj.Next(coords, boxbuf)
		}
		switch {
		case err == nil:
			if i%o.Skip() == 0 {
				batch = append(batch, newFrame(i, coords, boxbuf, o.Cutoff()))
			}
		case chem.IsLastFrame(err):
			done = true
		case o.SkipBadFrames() && !critical(err):
			log.Warn("skipping unreadable frame", zap.Int("frame", i), zap.Error(err))
			A.skipped = append(A.skipped, i)
		default:
			if e, ok := err.(chem.Error); ok {
				e.Decorate(fmt.Sprintf("Run: failed while reading the %d th frame", i))
			}
			return nil, err
		}
		if len(batch) == cap(batch) || (done && len(batch) > 0) {
			if err := A.process(batch, top, o); err != nil {
				return nil, errDecorate(err, "Run")
			}
			batch = batch[:0]
		}
	}
	if A.frames == 0 {
		return nil, newError("no frames could be analyzed", "Run", ErrEmptyFrame)
	}
	log.Info("analysis finished", zap.Int("frames", A.frames), zap.Int("skipped", len(A.skipped)), zap.Int("triplets", A.table.Len()))
	return A, nil
}

// process analyzes the frames in batch concurrently and adds their results
// to the accumulator in order.
func (A *Accumulator) process(batch []*frame, top chem.Atomer, o *Options) error {
	tables := make([]*Table, len(batch))
	errs := make([]error, len(batch))
	var g errgroup.Group
	for k, f := range batch {
		k, f := k, f
		g.Go(func() error {
			fo := o
			if f.cellless {
				open := *o
				open.pbc = box.PBC{}
				fo = &open
			}
			tables[k], errs[k] = Frame(f.lattice, f.positions, top, fo)
			if errs[k] != nil && !o.SkipBadFrames() {
				return errs[k]
			}
			return nil
		})
	}
	g.Wait()
	log := o.Logger()
	for k, f := range batch {
		if errs[k] != nil {
			if !o.SkipBadFrames() {
				return frameError(errs[k], f.index, "process")
			}
			log.Warn("skipping frame", zap.Int("frame", f.index), zap.Error(errs[k]))
			A.skipped = append(A.skipped, f.index)
			continue
		}
		A.Add(f.index, tables[k])
		log.Debug("frame analyzed", zap.Int("frame", f.index), zap.Int("triplets", tables[k].Len()), zap.Bool("cellless", f.cellless))
	}
	return nil
}

// newFrame copies the coordinates and the lattice read from a trajectory.
func newFrame(index int, coords *v3.Matrix, boxbuf []float64, cutoff float64) *frame {
	f := &frame{index: index, positions: coords.Vecs()}
	f.lattice, _ = box.LatticeFromSlice(boxbuf)
	if f.lattice == (box.Lattice{}) {
		f.cellless = true
		f.lattice = BoundingLattice(f.positions, cutoff)
	}
	return f
}

// critical returns false only for trajectory errors that explicitly state
// they are not critical.
func critical(err error) bool {
	var te chem.TrajError
	if errors.As(err, &te) {
		return te.Critical()
	}
	return true
}
