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

	"github.com/ctessum/geom"
)

// FilenameFormatError reports an input file whose name does not match
// the expected grammar. A single malformed name aborts the whole batch
// because timestamp integrity determines the output ordering.
type FilenameFormatError struct {
	Name    string // base name of the offending file
	Grammar string // name of the grammar it was matched against
}

func (e *FilenameFormatError) Error() string {
	return fmt.Sprintf("sndstack: file name %q does not match the %s grammar", e.Name, e.Grammar)
}

// NoInputFilesError reports an input directory containing no raster
// files with the expected extension.
type NoInputFilesError struct {
	Dir string
	Ext string
}

func (e *NoInputFilesError) Error() string {
	return fmt.Sprintf("sndstack: no .%s files found in %s", e.Ext, e.Dir)
}

// ShapeMismatchError reports a time slice whose grid shape disagrees
// with the slices before it. The assembler does not reconcile
// mismatched grids.
type ShapeMismatchError struct {
	File       string // base name of the first offending file
	Have, Want []int  // (rows, columns)
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("sndstack: grid in %s has shape %v; want %v", e.File, e.Have, e.Want)
}

// EmptyWindowError reports a bounding box that selects no pixels,
// which usually means the box lies outside the raster coverage.
type EmptyWindowError struct {
	File   string
	Bounds *geom.Bounds
}

func (e *EmptyWindowError) Error() string {
	return fmt.Sprintf("sndstack: bounding box (%g, %g)–(%g, %g) selects no pixels in %s",
		e.Bounds.Min.X, e.Bounds.Min.Y, e.Bounds.Max.X, e.Bounds.Max.Y, e.File)
}
