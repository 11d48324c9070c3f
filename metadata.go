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
	"regexp"
	"strconv"
	"time"
)

// A Grammar is one of the two fixed CMIP6 snd file naming conventions.
// The two differ only in the experiment token after the model name:
// the literal "historical" for historical runs, or an sspNNN scenario
// code for projections.
type Grammar struct {
	name string
	re   *regexp.Regexp
	// experimentCoord is the name under which the experiment token is
	// stored as a per-time coordinate in assembled datasets.
	experimentCoord string
}

var (
	// Historical matches names like
	// snd_LImon_EC-Earth3-Veg-LR_historical_r1i1p1f1_gr201501.tif.
	Historical = Grammar{
		name:            "historical",
		re:              regexp.MustCompile(`^snd_[^_]+_([^_]+)_(historical)_(r\d+i\d+p\d+f\d+)_gr(\d{6})\.\w+$`),
		experimentCoord: "experiment",
	}

	// Projection matches names like
	// snd_LImon_EC-Earth3-Veg-LR_ssp245_r1i1p1f1_gr201501.tif.
	Projection = Grammar{
		name:            "projection",
		re:              regexp.MustCompile(`^snd_[^_]+_([^_]+)_(ssp\d+)_(r\d+i\d+p\d+f\d+)_gr(\d{6})\.\w+$`),
		experimentCoord: "scenario",
	}
)

// Name returns the grammar's name.
func (g Grammar) Name() string { return g.name }

// ExperimentCoord returns the name of the per-time coordinate holding
// the experiment token: "experiment" for Historical, "scenario" for
// Projection.
func (g Grammar) ExperimentCoord() string { return g.experimentCoord }

// FileMetadata holds the information encoded in one input file name.
type FileMetadata struct {
	Model       string // climate model identifier, e.g. "EC-Earth3-Veg-LR"
	Experiment  string // "historical" or a scenario code such as "ssp245"
	Realization string // ensemble run identifier, e.g. "r1i1p1f1"
	Time        time.Time // first of the month, 00:00 UTC
}

// ParseFilename extracts the metadata encoded in the base name of an
// input raster. A name that does not match the grammar, including one
// with a month outside 1–12, yields a *FilenameFormatError; there is
// no partial result.
func (g Grammar) ParseFilename(name string) (*FileMetadata, error) {
	m := g.re.FindStringSubmatch(name)
	if m == nil {
		return nil, &FilenameFormatError{Name: name, Grammar: g.name}
	}
	year, err := strconv.Atoi(m[4][:4])
	if err != nil {
		return nil, &FilenameFormatError{Name: name, Grammar: g.name}
	}
	month, err := strconv.Atoi(m[4][4:])
	if err != nil || month < 1 || month > 12 {
		return nil, &FilenameFormatError{Name: name, Grammar: g.name}
	}
	return &FileMetadata{
		Model:       m[1],
		Experiment:  m[2],
		Realization: m[3],
		Time:        time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

// Filename builds the canonical file name for meta, the inverse of
// ParseFilename. table is the ignored token after the variable name
// (typically the CMIP6 table identifier "LImon") and ext is the raster
// extension without the dot.
func (g Grammar) Filename(meta *FileMetadata, table, ext string) string {
	return fmt.Sprintf("snd_%s_%s_%s_%s_gr%04d%02d.%s",
		table, meta.Model, meta.Experiment, meta.Realization,
		meta.Time.Year(), int(meta.Time.Month()), ext)
}
