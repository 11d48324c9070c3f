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
	"reflect"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// ReadDataset reads a file written by WriteNetCDF back into memory,
// verifying that it follows the schema downstream consumers rely on:
// a snow_depth variable over (time, latitude, longitude), a
// non-decreasing time coordinate, and the per-time metadata labels.
func ReadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sndstack: opening dataset: %v", err)
	}
	defer f.Close()
	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("sndstack: reading %s: %v", path, err)
	}

	if !hasVariable(cf, SnowDepthVar) {
		return nil, fmt.Errorf("sndstack: %s has no %s variable", path, SnowDepthVar)
	}
	dims := cf.Header.Dimensions(SnowDepthVar)
	if !reflect.DeepEqual(dims, []string{"time", "latitude", "longitude"}) {
		return nil, fmt.Errorf("sndstack: %s in %s has dimensions %v; want [time latitude longitude]",
			SnowDepthVar, path, dims)
	}

	d := new(Dataset)
	switch {
	case hasVariable(cf, "scenario"):
		d.ExperimentCoord = "scenario"
	case hasVariable(cf, "experiment"):
		d.ExperimentCoord = "experiment"
	default:
		return nil, fmt.Errorf("sndstack: %s has neither a scenario nor an experiment coordinate", path)
	}

	days, err := readInt32Var(cf, "time")
	if err != nil {
		return nil, err
	}
	d.Times = make([]time.Time, len(days))
	for i, v := range days {
		d.Times[i] = timeEpoch.Add(time.Duration(v) * 24 * time.Hour)
		if i > 0 && d.Times[i].Before(d.Times[i-1]) {
			return nil, fmt.Errorf("sndstack: time coordinate in %s is not monotonic at index %d", path, i)
		}
	}

	if d.Latitudes, err = readFloat64Var(cf, "latitude"); err != nil {
		return nil, err
	}
	if d.Longitudes, err = readFloat64Var(cf, "longitude"); err != nil {
		return nil, err
	}

	vals, err := readFloat64Var(cf, SnowDepthVar)
	if err != nil {
		return nil, err
	}
	d.SnowDepth = sparse.ZerosDense(len(d.Times), len(d.Latitudes), len(d.Longitudes))
	if len(vals) != len(d.SnowDepth.Elements) {
		return nil, fmt.Errorf("sndstack: %s in %s has %d values; want %d",
			SnowDepthVar, path, len(vals), len(d.SnowDepth.Elements))
	}
	copy(d.SnowDepth.Elements, vals)

	if d.Models, err = readLabelVar(cf, "model", len(d.Times)); err != nil {
		return nil, err
	}
	if d.Experiments, err = readLabelVar(cf, d.ExperimentCoord, len(d.Times)); err != nil {
		return nil, err
	}
	if d.Realizations, err = readLabelVar(cf, "realization", len(d.Times)); err != nil {
		return nil, err
	}
	return d, nil
}

func hasVariable(f *cdf.File, v string) bool {
	for _, name := range f.Header.Variables() {
		if name == v {
			return true
		}
	}
	return false
}

// readFloat64Var reads a full float64 variable.
func readFloat64Var(f *cdf.File, v string) ([]float64, error) {
	r := f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("sndstack: reading NetCDF variable %s: %v", v, err)
	}
	vals, ok := buf.([]float64)
	if !ok {
		return nil, fmt.Errorf("sndstack: NetCDF variable %s is not of type double", v)
	}
	return vals, nil
}

// readInt32Var reads a full int variable.
func readInt32Var(f *cdf.File, v string) ([]int32, error) {
	r := f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("sndstack: reading NetCDF variable %s: %v", v, err)
	}
	vals, ok := buf.([]int32)
	if !ok {
		return nil, fmt.Errorf("sndstack: NetCDF variable %s is not of type int", v)
	}
	return vals, nil
}

// readLabelVar unpacks a (time, nchar) char variable into one
// zero-trimmed string per time step.
func readLabelVar(f *cdf.File, v string, n int) ([]string, error) {
	r := f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("sndstack: reading NetCDF variable %s: %v", v, err)
	}
	raw, ok := buf.([]uint8)
	if !ok {
		return nil, fmt.Errorf("sndstack: NetCDF variable %s is not of type char", v)
	}
	if len(raw) != n*labelLen {
		return nil, fmt.Errorf("sndstack: NetCDF variable %s has %d bytes; want %d", v, len(raw), n*labelLen)
	}
	labels := make([]string, n)
	for i := range labels {
		rec := raw[i*labelLen : (i+1)*labelLen]
		end := len(rec)
		for end > 0 && rec[end-1] == 0 {
			end--
		}
		labels[i] = string(rec[:end])
	}
	return labels, nil
}
