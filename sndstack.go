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

// Package sndstack assembles directories of monthly snow-depth GeoTIFF
// snapshots from CMIP6 climate model runs into chronologically ordered,
// spatially clipped NetCDF time series.
//
// Each input file holds one single-band raster for one
// (model, experiment-or-scenario, realization, month) combination, with
// all of that information encoded in the file name. The pipeline parses
// the names, clips every raster to a geographic bounding box without
// reading the full grids, and concatenates the clipped slices along a
// new leading time axis into one self-describing output file.
package sndstack

// Version gives the version number of this version of sndstack.
const Version = "0.2.0"
