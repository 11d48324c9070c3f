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

// Package sndstackutil holds the configuration and command-line glue
// for the sndstack executable.
package sndstackutil

import (
	"fmt"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sndstack"
	"sndstack/cost"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to sndstack.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputDir",
			usage: `
              InputDir is the directory holding the monthly snow-depth
              GeoTIFF rasters to be assembled.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{assembleCmd.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the NetCDF file the assembled
              time series will be written to.`,
			shorthand:  "o",
			defaultVal: "snowdepth.nc",
			flagsets:   []*pflag.FlagSet{assembleCmd.PersistentFlags()},
		},
		{
			name: "Extension",
			usage: `
              Extension is the file extension (without the dot) of the
              input rasters.`,
			defaultVal: "tif",
			flagsets:   []*pflag.FlagSet{assembleCmd.PersistentFlags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of rasters to clip concurrently.
              Values below two disable concurrency.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{assembleCmd.PersistentFlags()},
		},
		{
			name: "Bounds.LonMin",
			usage: `
              Bounds.LonMin is the western edge of the clipping window,
              in the coordinate reference system of the input rasters.`,
			defaultVal: 9.1506,
			flagsets:   []*pflag.FlagSet{assembleCmd.PersistentFlags()},
		},
		{
			name: "Bounds.LatMin",
			usage: `
              Bounds.LatMin is the southern edge of the clipping window.`,
			defaultVal: 46.8015,
			flagsets:   []*pflag.FlagSet{assembleCmd.PersistentFlags()},
		},
		{
			name: "Bounds.LonMax",
			usage: `
              Bounds.LonMax is the eastern edge of the clipping window.`,
			defaultVal: 9.2876,
			flagsets:   []*pflag.FlagSet{assembleCmd.PersistentFlags()},
		},
		{
			name: "Bounds.LatMax",
			usage: `
              Bounds.LatMax is the northern edge of the clipping window.`,
			defaultVal: 46.8827,
			flagsets:   []*pflag.FlagSet{assembleCmd.PersistentFlags()},
		},
		{
			name: "BoundsShapefile",
			usage: `
              BoundsShapefile is the path to a shapefile whose total extent
              replaces the Bounds.* clipping window when set.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{assembleCmd.PersistentFlags()},
		},
		{
			name: "Scenario",
			usage: `
              Scenario restricts the cost projection to time steps whose
              scenario (or experiment) coordinate matches. Empty means all.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "StartDate",
			usage: `
              StartDate is the first month included in the cost projection.
              Format = "YYYY-MM".`,
			defaultVal: "No Default",
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "EndDate",
			usage: `
              EndDate is the last month included in the cost projection.
              Format = "YYYY-MM".`,
			defaultVal: "No Default",
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.MinSnowDepth",
			usage: `
              Cost.MinSnowDepth is the minimum skiable snow depth [m].`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.SlopeArea",
			usage: `
              Cost.SlopeArea is the groomed slope area [m²].`,
			defaultVal: 50000.0,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.AdditiveEfficiency",
			usage: `
              Cost.AdditiveEfficiency is the fraction of artificial snow
              volume saved by the efficiency additive, in [0, 1).`,
			defaultVal: 0.2,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.AdditiveCostPerM3",
			usage: `
              Cost.AdditiveCostPerM3 is the additive cost per m³ of
              artificial snow [€].`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.WaterPerM3",
			usage: `
              Cost.WaterPerM3 is the water use per m³ of artificial snow [l].`,
			defaultVal: 200.0,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.EnergyPerM3",
			usage: `
              Cost.EnergyPerM3 is the energy use per m³ of artificial
              snow [kWh].`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.WaterCostPerL",
			usage: `
              Cost.WaterCostPerL is the water price [€/l].`,
			defaultVal: 0.002,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.EnergyCostPerKWh",
			usage: `
              Cost.EnergyCostPerKWh is the energy price [€/kWh].`,
			defaultVal: 0.25,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.SeasonStart",
			usage: `
              Cost.SeasonStart is the first month of the ski season (1–12).`,
			defaultVal: 11,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
		{
			name: "Cost.SeasonEnd",
			usage: `
              Cost.SeasonEnd is the last month of the ski season (1–12).
              The season may wrap the year boundary.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{projectCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SNDSTACK")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(assembleCmd)
	assembleCmd.AddCommand(historicalCmd)
	assembleCmd.AddCommand(projectionCmd)
	Root.AddCommand(describeCmd)
	Root.AddCommand(projectCmd)
}

// outChan returns a channel whose messages are logged as progress updates.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for msg := range outChan {
			logrus.Info(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("sndstack: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "sndstack",
	Short: "Assemble snow-depth raster stacks.",
	Long: `sndstack clips a directory of monthly snow-depth GeoTIFF rasters to a
geographic window and stacks them into a chronologically ordered NetCDF
time series. Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'SNDSTACK_var' where 'var' is the name of the variable to be set. Many
configuration variables are additionally allowed to contain environment
variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of sndstack.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("sndstack v%s\n", sndstack.Version)
	},
	DisableAutoGenTag: true,
}

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble a raster directory into a NetCDF time series.",
	Long: `assemble clips every raster in InputDir to the configured bounds and
stacks the clipped grids into a single NetCDF file. Use the subcommands
specified below to choose the filename grammar the inputs follow.`,
	DisableAutoGenTag: true,
}

// historicalCmd assembles rasters named with the historical grammar.
var historicalCmd = &cobra.Command{
	Use:   "historical",
	Short: "Assemble historical-experiment rasters.",
	Long: `historical assembles rasters whose names follow the historical
grammar (snd_<table>_<model>_historical_<realization>_gr<YYYYMM>). The
resulting file carries an 'experiment' coordinate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssemble(sndstack.Historical)
	},
	DisableAutoGenTag: true,
}

// projectionCmd assembles rasters named with the scenario grammar.
var projectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Assemble scenario-projection rasters.",
	Long: `projection assembles rasters whose names follow the projection
grammar (snd_<table>_<model>_<sspNNN>_<realization>_gr<YYYYMM>). The
resulting file carries a 'scenario' coordinate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssemble(sndstack.Projection)
	},
	DisableAutoGenTag: true,
}

func runAssemble(g sndstack.Grammar) error {
	outChan := outChan()

	inputDir := os.ExpandEnv(Cfg.GetString("InputDir"))
	if inputDir == "" {
		return fmt.Errorf("sndstack: you need to specify the InputDir configuration variable")
	}
	outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
	if err != nil {
		return err
	}
	b, err := assembleBounds(Cfg, outChan)
	if err != nil {
		return err
	}
	a := &sndstack.Assembler{
		Grammar:   g,
		Bounds:    b,
		Extension: Cfg.GetString("Extension"),
		Workers:   Cfg.GetInt("Workers"),
		Status:    outChan,
	}
	return a.Run(inputDir, outputFile)
}

// describeCmd prints a summary of an assembled file.
var describeCmd = &cobra.Command{
	Use:   "describe [dataset file]",
	Short: "Summarize an assembled NetCDF file.",
	Long: `describe reads an assembled NetCDF file and prints its shape, time
range, spatial extent, and the models and experiments or scenarios it holds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := sndstack.ReadDataset(os.ExpandEnv(args[0]))
		if err != nil {
			return err
		}
		cmd.Printf("shape:\t(%d, %d, %d)\n", d.Len(), len(d.Latitudes), len(d.Longitudes))
		if d.Len() > 0 {
			cmd.Printf("time:\t%s – %s\n",
				d.Times[0].Format("2006-01"), d.Times[d.Len()-1].Format("2006-01"))
		}
		if len(d.Longitudes) > 0 && len(d.Latitudes) > 0 {
			cmd.Printf("longitude:\t%g – %g\n",
				d.Longitudes[0], d.Longitudes[len(d.Longitudes)-1])
			cmd.Printf("latitude:\t%g – %g\n",
				d.Latitudes[0], d.Latitudes[len(d.Latitudes)-1])
		}
		cmd.Printf("models:\t%v\n", uniqueStrings(d.Models))
		cmd.Printf("%s:\t%v\n", d.ExperimentCoord, uniqueStrings(d.Experiments))
		return nil
	},
	DisableAutoGenTag: true,
}

// projectCmd runs the snowmaking cost model over an assembled file.
var projectCmd = &cobra.Command{
	Use:   "project [dataset file]",
	Short: "Project snowmaking costs from an assembled file.",
	Long: `project evaluates the snowmaking cost model over the in-season months
of an assembled NetCDF file and prints a per-month cost table comparing
plain artificial snow with the efficiency additive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := sndstack.ReadDataset(os.ExpandEnv(args[0]))
		if err != nil {
			return err
		}
		start, err := parseMonth(Cfg.GetString("StartDate"))
		if err != nil {
			return fmt.Errorf("sndstack: parsing StartDate: %v", err)
		}
		end, err := parseMonth(Cfg.GetString("EndDate"))
		if err != nil {
			return fmt.Errorf("sndstack: parsing EndDate: %v", err)
		}
		records, err := cost.Project(d, Cfg.GetString("Scenario"), start, end, costParams(Cfg))
		if err != nil {
			return err
		}
		cmd.Println("month\tmean depth [m]\tdemand [m³]\tcost [€]\tcost w/ additive [€]\tsaving [€]")
		var total, totalAdd float64
		for _, r := range records {
			cmd.Printf("%s\t%.3f\t%.1f\t%.2f\t%.2f\t%.2f\n",
				r.Time.Format("2006-01"), r.MeanSnowDepth, r.SnowDemand,
				r.Cost, r.CostAdditive, r.Saving)
			total += r.Cost
			totalAdd += r.CostAdditive
		}
		cmd.Printf("total\t\t\t%.2f\t%.2f\t%.2f\n", total, totalAdd, total-totalAdd)
		return nil
	},
	DisableAutoGenTag: true,
}

// parseMonth parses a "YYYY-MM" date into the first instant of that month.
func parseMonth(s string) (time.Time, error) {
	return time.Parse("2006-01", os.ExpandEnv(s))
}

func costParams(cfg *viper.Viper) cost.Params {
	return cost.Params{
		MinSnowDepth:       cfg.GetFloat64("Cost.MinSnowDepth"),
		SlopeArea:          cfg.GetFloat64("Cost.SlopeArea"),
		AdditiveEfficiency: cfg.GetFloat64("Cost.AdditiveEfficiency"),
		AdditiveCostPerM3:  cfg.GetFloat64("Cost.AdditiveCostPerM3"),
		WaterPerM3:         cfg.GetFloat64("Cost.WaterPerM3"),
		EnergyPerM3:        cfg.GetFloat64("Cost.EnergyPerM3"),
		WaterCostPerL:      cfg.GetFloat64("Cost.WaterCostPerL"),
		EnergyCostPerKWh:   cfg.GetFloat64("Cost.EnergyCostPerKWh"),
		SeasonStart:        time.Month(cfg.GetInt("Cost.SeasonStart")),
		SeasonEnd:          time.Month(cfg.GetInt("Cost.SeasonEnd")),
	}
}

func uniqueStrings(s []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
