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
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// An Assembler builds one Dataset from a directory of monthly raster
// snapshots. Each file is processed independently; the assembler holds
// no state across runs.
type Assembler struct {
	// Grammar selects the filename convention: Historical or
	// Projection.
	Grammar Grammar

	// Bounds is the geographic clip box, in the same reference system
	// as the input rasters.
	Bounds *geom.Bounds

	// Extension is the raster file extension without the dot. Empty
	// means "tif".
	Extension string

	// Workers is the number of rasters clipped concurrently. Values
	// below 2 select sequential processing. The assembled output does
	// not depend on Workers: concatenation order always follows the
	// name sort, never completion order.
	Workers int

	// Status, if non-nil, receives progress messages.
	Status chan string
}

func (a *Assembler) status(format string, args ...interface{}) {
	if a.Status != nil {
		a.Status <- fmt.Sprintf(format, args...)
	}
}

func (a *Assembler) ext() string {
	if a.Extension == "" {
		return "tif"
	}
	return a.Extension
}

// Run assembles the rasters in inputDir and writes the combined
// dataset to outFile. The output file is created only after the full
// dataset has been assembled in memory, and is removed again if
// serialization fails partway, so a run either produces one complete
// artifact or none.
func (a *Assembler) Run(inputDir, outFile string) error {
	d, err := a.Assemble(inputDir)
	if err != nil {
		return err
	}
	a.status("writing %d time steps to %s", d.Len(), outFile)
	if err := d.WriteNetCDF(outFile); err != nil {
		os.Remove(outFile)
		return err
	}
	return nil
}

// Assemble runs the pipeline over inputDir and returns the combined
// dataset without persisting it.
func (a *Assembler) Assemble(inputDir string) (*Dataset, error) {
	names, err := a.listInputs(inputDir)
	if err != nil {
		return nil, err
	}
	a.status("found %d .%s files in %s", len(names), a.ext(), inputDir)

	// Parse every name before touching any raster: a single malformed
	// file aborts the batch.
	metas := make([]*FileMetadata, len(names))
	for i, name := range names {
		if metas[i], err = a.Grammar.ParseFilename(name); err != nil {
			return nil, err
		}
	}

	// The name sort is relied upon for chronology because the grammar
	// ends in a fixed-width year+month token. Verify instead of
	// trusting the naming convention.
	for i := 1; i < len(metas); i++ {
		if metas[i].Time.Before(metas[i-1].Time) {
			return nil, fmt.Errorf("sndstack: input files are not chronological after sorting by name: %s is dated before %s",
				names[i], names[i-1])
		}
	}

	slices := make([]*TimeSlice, len(names))
	if a.Workers > 1 {
		err = a.extractParallel(inputDir, names, metas, slices)
	} else {
		err = a.extractSequential(inputDir, names, metas, slices)
	}
	if err != nil {
		return nil, err
	}
	return a.concat(names, slices)
}

// listInputs returns the base names of the raster files in dir, sorted
// lexicographically.
func (a *Assembler) listInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("sndstack: listing input directory: %v", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), "."+a.ext()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, &NoInputFilesError{Dir: dir, Ext: a.ext()}
	}
	sort.Strings(names)
	return names, nil
}

// buildSlice clips one raster and tags it with its metadata.
func (a *Assembler) buildSlice(dir, name string, meta *FileMetadata) (*TimeSlice, error) {
	grid, w, err := ReadWindow(filepath.Join(dir, name), a.Bounds)
	if err != nil {
		return nil, err
	}
	return NewTimeSlice(meta, grid, w), nil
}

func (a *Assembler) extractSequential(dir string, names []string, metas []*FileMetadata, slices []*TimeSlice) error {
	for i, name := range names {
		a.status("clipping %s (%d/%d)", name, i+1, len(names))
		s, err := a.buildSlice(dir, name, metas[i])
		if err != nil {
			return err
		}
		slices[i] = s
	}
	return nil
}

// extractParallel clips rasters across a worker pool. Workers fill
// slices by index, so the result is identical to the sequential path.
func (a *Assembler) extractParallel(dir string, names []string, metas []*FileMetadata, slices []*TimeSlice) error {
	jobChan := make(chan int, len(names))
	errChan := make(chan error)
	for w := 0; w < a.Workers; w++ {
		go func() {
			for i := range jobChan {
				s, err := a.buildSlice(dir, names[i], metas[i])
				if err != nil {
					errChan <- err
					return
				}
				a.status("clipped %s", names[i])
				slices[i] = s
			}
			errChan <- nil
		}()
	}
	for i := range names {
		jobChan <- i
	}
	close(jobChan)
	var firstErr error
	for w := 0; w < a.Workers; w++ {
		if err := <-errChan; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// concat folds the time slices, already in name-sorted order, into one
// dataset, verifying that every slice shares the first slice's grid
// shape and coordinate sequences.
func (a *Assembler) concat(names []string, slices []*TimeSlice) (*Dataset, error) {
	first := slices[0]
	rows, cols := first.Data.Shape[1], first.Data.Shape[2]
	if rows == 0 || cols == 0 {
		return nil, &EmptyWindowError{File: names[0], Bounds: a.Bounds}
	}

	d := &Dataset{
		SnowDepth:       sparse.ZerosDense(len(slices), rows, cols),
		Times:           make([]time.Time, len(slices)),
		Latitudes:       first.Latitudes,
		Longitudes:      first.Longitudes,
		Models:          make([]string, len(slices)),
		Experiments:     make([]string, len(slices)),
		Realizations:    make([]string, len(slices)),
		ExperimentCoord: a.Grammar.experimentCoord,
	}
	n := rows * cols
	for i, s := range slices {
		if s.Data.Shape[1] != rows || s.Data.Shape[2] != cols {
			return nil, &ShapeMismatchError{
				File: names[i],
				Have: []int{s.Data.Shape[1], s.Data.Shape[2]},
				Want: []int{rows, cols},
			}
		}
		if !floats.Equal(s.Latitudes, first.Latitudes) || !floats.Equal(s.Longitudes, first.Longitudes) {
			return nil, fmt.Errorf("sndstack: coordinates in %s do not match those in %s", names[i], names[0])
		}
		copy(d.SnowDepth.Elements[i*n:(i+1)*n], s.Data.Elements)
		d.Times[i] = s.Meta.Time
		d.Models[i] = s.Meta.Model
		d.Experiments[i] = s.Meta.Experiment
		d.Realizations[i] = s.Meta.Realization
	}
	return d, nil
}
