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
	"os"
	"time"

	"github.com/ctessum/cdf"
)

// SnowDepthVar is the name of the main variable in assembled files.
// Renaming it is a breaking change for downstream consumers.
const SnowDepthVar = "snow_depth"

// labelLen is the fixed width of the per-time character coordinates
// (model, realization, scenario/experiment).
const labelLen = 64

const timeUnits = "days since 1850-01-01 00:00:00"

var timeEpoch = time.Date(1850, time.January, 1, 0, 0, 0, 0, time.UTC)

// header builds the NetCDF header describing d.
func (d *Dataset) header() *cdf.Header {
	h := cdf.NewHeader(
		[]string{"time", "latitude", "longitude", "nchar"},
		[]int{len(d.Times), len(d.Latitudes), len(d.Longitudes), labelLen})

	h.AddVariable("time", []string{"time"}, []int32{0})
	h.AddAttribute("time", "units", timeUnits)
	h.AddAttribute("time", "calendar", "standard")

	h.AddVariable("latitude", []string{"latitude"}, []float64{0})
	h.AddAttribute("latitude", "units", "degrees_north")
	h.AddVariable("longitude", []string{"longitude"}, []float64{0})
	h.AddAttribute("longitude", "units", "degrees_east")

	h.AddVariable(SnowDepthVar, []string{"time", "latitude", "longitude"}, []float64{0})
	h.AddAttribute(SnowDepthVar, "units", "m")
	h.AddAttribute(SnowDepthVar, "long_name", "snow depth")
	h.AddAttribute(SnowDepthVar, "coordinates", "model "+d.ExperimentCoord+" realization")

	for _, v := range []string{"model", d.ExperimentCoord, "realization"} {
		h.AddVariable(v, []string{"time", "nchar"}, "")
	}

	h.AddAttribute("", "Conventions", "CF-1.6")
	h.AddAttribute("", "title", "Monthly snow depth assembled from CMIP6 GeoTIFF snapshots")
	h.AddAttribute("", "source", "sndstack v"+Version)
	h.Define()
	return h
}

// WriteNetCDF serializes d to a self-describing NetCDF (classic
// format) file at path.
func (d *Dataset) WriteNetCDF(path string) error {
	h := d.header()
	for _, err := range h.Check() {
		return fmt.Errorf("sndstack: building NetCDF header: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sndstack: creating output file: %v", err)
	}
	defer f.Close()
	cf, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("sndstack: creating NetCDF file: %v", err)
	}

	times := make([]int32, len(d.Times))
	for i, t := range d.Times {
		times[i] = int32(t.Sub(timeEpoch).Hours() / 24)
	}
	if err := writeVar(cf, "time", times); err != nil {
		return err
	}
	if err := writeVar(cf, "latitude", d.Latitudes); err != nil {
		return err
	}
	if err := writeVar(cf, "longitude", d.Longitudes); err != nil {
		return err
	}
	if err := writeVar(cf, SnowDepthVar, d.SnowDepth.Elements); err != nil {
		return err
	}
	if err := writeVar(cf, "model", padLabels(d.Models)); err != nil {
		return err
	}
	if err := writeVar(cf, d.ExperimentCoord, padLabels(d.Experiments)); err != nil {
		return err
	}
	return writeVar(cf, "realization", padLabels(d.Realizations))
}

// writeVar writes the full contents of variable v in one call. The end
// corner is exclusive in the final dimension, matching the convention
// of cdf.File.Writer.
func writeVar(f *cdf.File, v string, values interface{}) error {
	lengths := f.Header.Lengths(v)
	begin := make([]int, len(lengths))
	end := make([]int, len(lengths))
	for i, l := range lengths {
		end[i] = l - 1
	}
	end[len(end)-1] = lengths[len(lengths)-1]
	w := f.Writer(v, begin, end)
	if _, err := w.Write(values); err != nil {
		return fmt.Errorf("sndstack: writing NetCDF variable %s: %v", v, err)
	}
	return nil
}

// padLabels packs labels into a fixed-width zero-padded byte matrix
// suitable for a (time, nchar) char variable.
func padLabels(labels []string) []uint8 {
	buf := make([]uint8, len(labels)*labelLen)
	for i, s := range labels {
		if len(s) > labelLen {
			s = s[:labelLen]
		}
		copy(buf[i*labelLen:], s)
	}
	return buf
}
