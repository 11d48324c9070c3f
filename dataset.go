/*
Copyright © 2026 the sndstack authors.
This file is part of sndstack.

sndstack is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

sndstack is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with sndstack.  If not, see <http://www.gnu.org/licenses/>.
*/

package sndstack

import (
	"time"

	"github.com/ctessum/sparse"
)

// A Dataset is the assembled snow-depth cube: one value per
// (time, latitude, longitude), with per-time metadata labels. It is
// built once per pipeline invocation and never mutated afterwards.
type Dataset struct {
	// SnowDepth has shape (len(Times), len(Latitudes), len(Longitudes)).
	SnowDepth *sparse.DenseArray

	// Times is non-decreasing. Two entries may share a month when they
	// come from different scenarios of the same model.
	Times []time.Time

	Latitudes, Longitudes []float64

	// Models, Experiments and Realizations are auxiliary coordinates
	// indexed by the time axis; each input file supplies exactly one
	// value per axis position.
	Models, Experiments, Realizations []string

	// ExperimentCoord is the name under which Experiments is stored in
	// serialized files: "experiment" for the historical pipeline,
	// "scenario" for projections.
	ExperimentCoord string
}

// Len returns the number of time steps.
func (d *Dataset) Len() int { return len(d.Times) }

// At returns the clipped grid value for time step t at the given
// window row and column.
func (d *Dataset) At(t, row, col int) float64 { return d.SnowDepth.Get(t, row, col) }
