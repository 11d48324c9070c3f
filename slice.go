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

import "github.com/ctessum/sparse"

// A TimeSlice is one file's contribution to a combined dataset: a
// single month's clipped grid together with its metadata and
// coordinate sequences.
type TimeSlice struct {
	Meta *FileMetadata

	// Data has shape (1, rows, columns); the leading singleton
	// dimension is the position the slice will occupy on the time
	// axis.
	Data *sparse.DenseArray

	Latitudes, Longitudes []float64
}

// NewTimeSlice combines parsed metadata with an extracted window into
// a single-timestep slice, adding the leading singleton time
// dimension.
func NewTimeSlice(meta *FileMetadata, grid *sparse.DenseArray, w *SpatialWindow) *TimeSlice {
	data := sparse.ZerosDense(1, w.Rows, w.Cols)
	copy(data.Elements, grid.Elements)
	return &TimeSlice{
		Meta:       meta,
		Data:       data,
		Latitudes:  w.Latitudes,
		Longitudes: w.Longitudes,
	}
}
