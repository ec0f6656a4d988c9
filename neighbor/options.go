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

package neighbor

// Options for the neighbor search.
type Options struct {
	cutoff  float64
	mic     bool
	workers int
}

// DefaultOptions returns an Options with the default options:
// a 4.0 cutoff, no minimum image correction and a serial search.
func DefaultOptions() *Options {
	ret := new(Options)
	ret.cutoff = 4.0
	ret.mic = false
	ret.workers = 1
	return ret
}

// Cutoff returns the current cutoff and sets it, if a value is given.
// Invalid cutoffs are accepted here and rejected by Search, so the error
// reaches the caller.
func (o *Options) Cutoff(cutoff ...float64) float64 {
	ret := o.cutoff
	if len(cutoff) > 0 {
		o.cutoff = cutoff[0]
	}
	return ret
}

// MIC returns whether distances are corrected with the minimum image
// convention and sets the value to the one given, if any.
func (o *Options) MIC(mic ...bool) bool {
	ret := o.mic
	if len(mic) > 0 {
		o.mic = mic[0]
	}
	return ret
}

// Workers returns the number of goroutines among which the atoms are split
// during the search, and sets it, if a valid value is given.
func (o *Options) Workers(workers ...int) int {
	ret := o.workers
	if len(workers) > 0 && workers[0] > 0 {
		o.workers = workers[0]
	}
	return ret
}
