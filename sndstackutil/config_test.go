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
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/lnashier/viper"

	"sndstack/cost"
)

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("an empty output file should be an error")
	}
	if _, err := checkOutputFile("snow.shp"); err == nil {
		t.Error("a non-NetCDF extension should be an error")
	}
	f, err := checkOutputFile("snow.nc")
	if err != nil {
		t.Fatal(err)
	}
	if f != "snow.nc" {
		t.Errorf("got %q, want snow.nc", f)
	}

	t.Setenv("SNDSTACK_TEST_DIR", "/data")
	f, err = checkOutputFile("${SNDSTACK_TEST_DIR}/snow.nc")
	if err != nil {
		t.Fatal(err)
	}
	if f != "/data/snow.nc" {
		t.Errorf("environment expansion: got %q, want /data/snow.nc", f)
	}
}

// drain returns a status channel whose messages are discarded.
func drain() chan string {
	c := make(chan string)
	go func() {
		for range c {
		}
	}()
	return c
}

func TestAssembleBoundsFromConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Bounds.LonMin", 9.1506)
	cfg.Set("Bounds.LatMin", 46.8015)
	cfg.Set("Bounds.LonMax", 9.2876)
	cfg.Set("Bounds.LatMax", 46.8827)
	cfg.Set("BoundsShapefile", "")

	b, err := assembleBounds(cfg, drain())
	if err != nil {
		t.Fatal(err)
	}
	want := &geom.Bounds{
		Min: geom.Point{X: 9.1506, Y: 46.8015},
		Max: geom.Point{X: 9.2876, Y: 46.8827},
	}
	if *b != *want {
		t.Errorf("got %+v, want %+v", b, want)
	}
}

func TestAssembleBoundsInverted(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Bounds.LonMin", 9.3)
	cfg.Set("Bounds.LatMin", 46.8)
	cfg.Set("Bounds.LonMax", 9.1)
	cfg.Set("Bounds.LatMax", 46.9)

	if _, err := assembleBounds(cfg, drain()); err == nil {
		t.Error("inverted bounds should be an error")
	}
}

func TestBoundsFromShapefile(t *testing.T) {
	type boundsRec struct {
		geom.Polygon
		Name string
	}
	fname := filepath.Join(t.TempDir(), "area.shp")
	e, err := shp.NewEncoder(fname, boundsRec{})
	if err != nil {
		t.Fatal(err)
	}
	recs := []boundsRec{
		{
			Polygon: geom.Polygon{{
				{X: 9.1, Y: 46.8}, {X: 9.2, Y: 46.8},
				{X: 9.2, Y: 46.9}, {X: 9.1, Y: 46.9},
			}},
			Name: "west",
		},
		{
			Polygon: geom.Polygon{{
				{X: 9.25, Y: 46.82}, {X: 9.3, Y: 46.82},
				{X: 9.3, Y: 46.85}, {X: 9.25, Y: 46.85},
			}},
			Name: "east",
		},
	}
	for _, r := range recs {
		if err := e.Encode(r); err != nil {
			t.Fatal(err)
		}
	}
	e.Close()

	b, err := BoundsFromShapefile(fname)
	if err != nil {
		t.Fatal(err)
	}
	want := geom.Bounds{
		Min: geom.Point{X: 9.1, Y: 46.8},
		Max: geom.Point{X: 9.3, Y: 46.9},
	}
	if *b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}

	cfg := viper.New()
	cfg.Set("BoundsShapefile", fname)
	b2, err := assembleBounds(cfg, drain())
	if err != nil {
		t.Fatal(err)
	}
	if *b2 != want {
		t.Errorf("via config: got %+v, want %+v", b2, want)
	}
}

func TestBoundsFromShapefileMissing(t *testing.T) {
	if _, err := BoundsFromShapefile(filepath.Join(t.TempDir(), "missing.shp")); err == nil {
		t.Error("a missing shapefile should be an error")
	}
}

// The default configuration must reproduce the cost model defaults.
func TestCostParamsDefaults(t *testing.T) {
	if got, want := costParams(Cfg), cost.DefaultParams(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseMonth(t *testing.T) {
	d, err := parseMonth("2050-11")
	if err != nil {
		t.Fatal(err)
	}
	if d.Year() != 2050 || d.Month() != 11 || d.Day() != 1 {
		t.Errorf("got %v, want 2050-11-01", d)
	}
	if _, err := parseMonth("November 2050"); err == nil {
		t.Error("a malformed date should be an error")
	}
}
