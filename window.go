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
	"fmt"
	"math"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

var registerOnce sync.Once

// registerDrivers makes the GDAL raster drivers available. It is safe
// to call from multiple goroutines.
func registerDrivers() { registerOnce.Do(godal.RegisterAll) }

// GeoTransform is the affine mapping from pixel (column, row) indices
// to geographic (x, y) coordinates, with coefficients in GDAL order:
// {x origin, pixel width, row rotation, y origin, column rotation,
// pixel height}. For north-up rasters the pixel height is negative.
type GeoTransform [6]float64

// Apply maps the pixel-corner position (col, row) to geographic
// coordinates.
func (gt GeoTransform) Apply(col, row float64) (x, y float64) {
	x = gt[0] + col*gt[1] + row*gt[2]
	y = gt[3] + col*gt[4] + row*gt[5]
	return x, y
}

// axisAligned reports whether the transform has zero rotation terms.
// Sampling coordinates along a single row and column, as the window
// extraction below does, is only correct for axis-aligned grids.
func (gt GeoTransform) axisAligned() bool { return gt[2] == 0 && gt[4] == 0 }

// SpatialWindow is the pixel window of a raster that covers a
// geographic bounding box, together with the geographic coordinates of
// the window's pixel corners.
type SpatialWindow struct {
	Col, Row   int // offsets of the window's upper-left pixel
	Cols, Rows int // window size in pixels

	// Longitudes and Latitudes hold the pixel-corner coordinate of
	// every window column and row, in the raster's native iteration
	// order (not necessarily ascending). Their lengths equal Cols and
	// Rows.
	Longitudes, Latitudes []float64
}

// Empty reports whether the window contains no pixels.
func (w *SpatialWindow) Empty() bool { return w.Cols == 0 || w.Rows == 0 }

// windowFromBounds computes the pixel window whose geographic extent
// covers b, clamped to the raster edges. A box wholly outside the
// raster gives a zero-sized window rather than an error. A rotated or
// skewed transform is an error.
func windowFromBounds(gt GeoTransform, sizeX, sizeY int, b *geom.Bounds) (*SpatialWindow, error) {
	if !gt.axisAligned() {
		return nil, fmt.Errorf("sndstack: rotated or skewed geotransform %v is not supported", gt)
	}
	c1 := (b.Min.X - gt[0]) / gt[1]
	c2 := (b.Max.X - gt[0]) / gt[1]
	r1 := (b.Min.Y - gt[3]) / gt[5]
	r2 := (b.Max.Y - gt[3]) / gt[5]

	col0 := clamp(int(math.Floor(math.Min(c1, c2))), 0, sizeX)
	col1 := clamp(int(math.Ceil(math.Max(c1, c2))), 0, sizeX)
	row0 := clamp(int(math.Floor(math.Min(r1, r2))), 0, sizeY)
	row1 := clamp(int(math.Ceil(math.Max(r1, r2))), 0, sizeY)

	w := &SpatialWindow{Col: col0, Row: row0, Cols: col1 - col0, Rows: row1 - row0}
	if w.Cols < 0 {
		w.Cols = 0
	}
	if w.Rows < 0 {
		w.Rows = 0
	}
	w.Longitudes = make([]float64, w.Cols)
	for j := range w.Longitudes {
		w.Longitudes[j], _ = gt.Apply(float64(col0+j), float64(row0))
	}
	w.Latitudes = make([]float64, w.Rows)
	for i := range w.Latitudes {
		_, w.Latitudes[i] = gt.Apply(float64(col0), float64(row0+i))
	}
	return w, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ReadWindow opens the single-band raster at path, computes the pixel
// window covering b, and reads only that block; the full-resolution
// grid is never materialized in memory. The raster handle is closed
// before returning on every path. A bounding box wholly outside the
// raster extent yields an empty grid and window without an error;
// callers decide whether that is fatal.
func ReadWindow(path string, b *geom.Bounds) (*sparse.DenseArray, *SpatialWindow, error) {
	registerDrivers()
	ds, err := godal.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("sndstack: opening raster %s: %v", path, err)
	}
	defer ds.Close()

	gtArr, err := ds.GeoTransform()
	if err != nil {
		return nil, nil, fmt.Errorf("sndstack: reading geotransform of %s: %v", path, err)
	}
	st := ds.Structure()
	w, err := windowFromBounds(GeoTransform(gtArr), st.SizeX, st.SizeY, b)
	if err != nil {
		return nil, nil, err
	}
	grid := sparse.ZerosDense(w.Rows, w.Cols)
	if w.Empty() {
		return grid, w, nil
	}
	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, nil, fmt.Errorf("sndstack: raster %s has no bands", path)
	}
	if err := bands[0].Read(w.Col, w.Row, grid.Elements, w.Cols, w.Rows); err != nil {
		return nil, nil, fmt.Errorf("sndstack: reading %d×%d window of %s: %v", w.Cols, w.Rows, path, err)
	}
	return grid, w, nil
}
