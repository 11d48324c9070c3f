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

// Command sndstack is a command-line interface for assembling snow-depth
// raster stacks into NetCDF time series.
package main

import (
	"fmt"
	"os"

	"sndstack/sndstackutil"
)

func main() {
	if err := sndstackutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
