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

package sndstackutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/lnashier/viper"
)

// checkOutputFile makes sure that the output file is specified
// and carries the NetCDF extension.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`sndstack: you need to specify an output file configuration variable (for example: OutputFile="snowdepth.nc")`)
	}
	f = os.ExpandEnv(f)
	if ext := strings.ToLower(filepath.Ext(f)); ext != ".nc" {
		return "", fmt.Errorf("sndstack: OutputFile extension must be `.nc` but is `%s`", ext)
	}
	return f, nil
}

// assembleBounds builds the clipping window from the configuration:
// the total extent of BoundsShapefile when it is set, the four
// Bounds.* scalars otherwise.
func assembleBounds(cfg *viper.Viper, c chan string) (*geom.Bounds, error) {
	if f := os.ExpandEnv(cfg.GetString("BoundsShapefile")); f != "" {
		c <- fmt.Sprintf("Reading clipping bounds from %s.", f)
		return BoundsFromShapefile(f)
	}
	b := &geom.Bounds{
		Min: geom.Point{X: cfg.GetFloat64("Bounds.LonMin"), Y: cfg.GetFloat64("Bounds.LatMin")},
		Max: geom.Point{X: cfg.GetFloat64("Bounds.LonMax"), Y: cfg.GetFloat64("Bounds.LatMax")},
	}
	if b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y {
		return nil, fmt.Errorf("sndstack: invalid bounds configuration: min (%g, %g) must be southwest of max (%g, %g)",
			b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}
	return b, nil
}

// BoundsFromShapefile returns the total extent of the geometries in the
// given shapefile. The shapes are assumed to share the coordinate
// reference system of the input rasters.
func BoundsFromShapefile(filename string) (*geom.Bounds, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("sndstack: opening bounds shapefile: %v", err)
	}
	defer d.Close()
	b := geom.NewBounds()
	n := 0
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		b.Extend(g.Bounds())
		n++
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("sndstack: reading bounds shapefile %s: %v", filename, err)
	}
	if n == 0 || b.Empty() {
		return nil, fmt.Errorf("sndstack: bounds shapefile %s contains no geometry", filename)
	}
	return b, nil
}
