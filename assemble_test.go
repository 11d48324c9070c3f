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
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
)

// assembleGT places a 2×2 grid of 0.1° pixels with its northwest
// corner at (9°E, 47°N).
var assembleGT = GeoTransform{9.0, 0.1, 0, 47.0, 0, -0.1}

// assembleBounds covers the full 2×2 test raster extent.
var assembleBounds = &geom.Bounds{
	Min: geom.Point{X: 9.0, Y: 46.8},
	Max: geom.Point{X: 9.2, Y: 47.0},
}

// writeHistoricalInputs fills dir with three chronological 2×2
// historical rasters and returns their pixel values in time order.
func writeHistoricalInputs(t *testing.T, dir string) [][]float64 {
	t.Helper()
	data := [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	}
	for i, d := range data {
		name := Historical.Filename(&FileMetadata{
			Model:       "EC-Earth3",
			Experiment:  "historical",
			Realization: "r1i1p1f1",
			Time:        time.Date(2015, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
		}, "LImon", "tif")
		writeTestRaster(t, filepath.Join(dir, name), assembleGT, d, 2, 2)
	}
	return data
}

func TestAssemble(t *testing.T) {
	dir := t.TempDir()
	data := writeHistoricalInputs(t, dir)

	a := &Assembler{Grammar: Historical, Bounds: assembleBounds}
	d, err := a.Assemble(dir)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(d.SnowDepth.Shape, []int{3, 2, 2}) {
		t.Fatalf("shape: got %v, want [3 2 2]", d.SnowDepth.Shape)
	}
	for i, want := range data {
		if got := d.SnowDepth.Elements[i*4 : (i+1)*4]; !floats.Equal(got, want) {
			t.Errorf("time step %d: got %v, want %v", i, got, want)
		}
	}
	wantTimes := []time.Time{
		time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2015, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2015, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	if !reflect.DeepEqual(d.Times, wantTimes) {
		t.Errorf("times: got %v, want %v", d.Times, wantTimes)
	}
	if !floats.EqualApprox(d.Longitudes, []float64{9.0, 9.1}, 1e-12) {
		t.Errorf("longitudes: got %v", d.Longitudes)
	}
	if !floats.EqualApprox(d.Latitudes, []float64{47.0, 46.9}, 1e-12) {
		t.Errorf("latitudes: got %v", d.Latitudes)
	}
	if !reflect.DeepEqual(d.Models, []string{"EC-Earth3", "EC-Earth3", "EC-Earth3"}) {
		t.Errorf("models: got %v", d.Models)
	}
	if d.ExperimentCoord != "experiment" {
		t.Errorf("experiment coordinate: got %q, want \"experiment\"", d.ExperimentCoord)
	}
}

// The parallel path must produce exactly the sequential result.
func TestAssembleParallel(t *testing.T) {
	dir := t.TempDir()
	writeHistoricalInputs(t, dir)

	seq := &Assembler{Grammar: Historical, Bounds: assembleBounds}
	want, err := seq.Assemble(dir)
	if err != nil {
		t.Fatal(err)
	}
	par := &Assembler{Grammar: Historical, Bounds: assembleBounds, Workers: 3}
	got, err := par.Assemble(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parallel result differs from sequential: got %+v, want %+v", got, want)
	}
}

// Two scenarios for the same month stack into two separate time steps
// with a non-decreasing time coordinate.
func TestAssembleScenarios(t *testing.T) {
	dir := t.TempDir()
	jan := time.Date(2050, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, scen := range []string{"ssp126", "ssp585"} {
		name := Projection.Filename(&FileMetadata{
			Model:       "EC-Earth3",
			Experiment:  scen,
			Realization: "r1i1p1f1",
			Time:        jan,
		}, "LImon", "tif")
		d := []float64{float64(i), float64(i), float64(i), float64(i)}
		writeTestRaster(t, filepath.Join(dir, name), assembleGT, d, 2, 2)
	}

	a := &Assembler{Grammar: Projection, Bounds: assembleBounds}
	d, err := a.Assemble(dir)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Fatalf("time steps: got %d, want 2", d.Len())
	}
	if !reflect.DeepEqual(d.Experiments, []string{"ssp126", "ssp585"}) {
		t.Errorf("scenarios: got %v", d.Experiments)
	}
	if d.ExperimentCoord != "scenario" {
		t.Errorf("experiment coordinate: got %q, want \"scenario\"", d.ExperimentCoord)
	}
	if !d.Times[0].Equal(jan) || !d.Times[1].Equal(jan) {
		t.Errorf("times: got %v, want both %v", d.Times, jan)
	}
}

func TestAssembleEmptyDir(t *testing.T) {
	a := &Assembler{Grammar: Historical, Bounds: assembleBounds}
	_, err := a.Assemble(t.TempDir())
	if _, ok := err.(*NoInputFilesError); !ok {
		t.Errorf("got error %v, want *NoInputFilesError", err)
	}
}

func TestAssembleMalformedName(t *testing.T) {
	dir := t.TempDir()
	writeHistoricalInputs(t, dir)
	writeTestRaster(t, filepath.Join(dir, "snd_mangled.tif"), assembleGT,
		[]float64{0, 0, 0, 0}, 2, 2)

	a := &Assembler{Grammar: Historical, Bounds: assembleBounds}
	_, err := a.Assemble(dir)
	if _, ok := err.(*FilenameFormatError); !ok {
		t.Errorf("got error %v, want *FilenameFormatError", err)
	}
}

func TestAssembleShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	writeHistoricalInputs(t, dir)
	// A later month on a finer grid covering the same extent.
	name := Historical.Filename(&FileMetadata{
		Model:       "EC-Earth3",
		Experiment:  "historical",
		Realization: "r1i1p1f1",
		Time:        time.Date(2015, time.April, 1, 0, 0, 0, 0, time.UTC),
	}, "LImon", "tif")
	fine := GeoTransform{9.0, 0.05, 0, 47.0, 0, -0.05}
	writeTestRaster(t, filepath.Join(dir, name), fine, make([]float64, 16), 4, 4)

	a := &Assembler{Grammar: Historical, Bounds: assembleBounds}
	_, err := a.Assemble(dir)
	sme, ok := err.(*ShapeMismatchError)
	if !ok {
		t.Fatalf("got error %v, want *ShapeMismatchError", err)
	}
	if sme.File != name {
		t.Errorf("mismatch attributed to %s, want %s", sme.File, name)
	}
}

func TestAssembleEmptyWindow(t *testing.T) {
	dir := t.TempDir()
	writeHistoricalInputs(t, dir)

	outside := &geom.Bounds{
		Min: geom.Point{X: 20, Y: 46.8},
		Max: geom.Point{X: 21, Y: 47.0},
	}
	a := &Assembler{Grammar: Historical, Bounds: outside}
	_, err := a.Assemble(dir)
	if _, ok := err.(*EmptyWindowError); !ok {
		t.Errorf("got error %v, want *EmptyWindowError", err)
	}
}

// Run must leave either one complete artifact or no file at all, and
// repeated runs over the same inputs must be bit-identical.
func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeHistoricalInputs(t, dir)

	a := &Assembler{Grammar: Historical, Bounds: assembleBounds}
	out1 := filepath.Join(t.TempDir(), "snow1.nc")
	if err := a.Run(dir, out1); err != nil {
		t.Fatal(err)
	}
	out2 := filepath.Join(t.TempDir(), "snow2.nc")
	if err := a.Run(dir, out2); err != nil {
		t.Fatal(err)
	}
	b1, err := os.ReadFile(out1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := os.ReadFile(out2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("repeated runs over the same inputs are not bit-identical")
	}

	d, err := ReadDataset(out1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 3 {
		t.Errorf("time steps: got %d, want 3", d.Len())
	}
}

func TestRunFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	writeHistoricalInputs(t, dir)

	outside := &geom.Bounds{
		Min: geom.Point{X: 20, Y: 46.8},
		Max: geom.Point{X: 21, Y: 47.0},
	}
	a := &Assembler{Grammar: Historical, Bounds: outside}
	out := filepath.Join(t.TempDir(), "snow.nc")
	if err := a.Run(dir, out); err == nil {
		t.Fatal("expected an error for an empty clip window")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("failed run left an output file behind: %v", err)
	}
}
