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

// Package cost evaluates snowmaking resource and cost projections on
// assembled snow-depth datasets. For each ski-season month in a chosen
// scenario and date range it spatially averages the snow depth, derives
// the artificial-snow volume needed to reach a minimum depth, and
// prices the water, energy and optional efficiency additive that
// producing that volume would take.
package cost

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"sndstack"
)

// Params holds the resource and price assumptions of the cost model.
type Params struct {
	MinSnowDepth float64 // minimum skiable snow depth [m]
	SlopeArea    float64 // groomed slope area [m²]

	// AdditiveEfficiency is the fraction of artificial snow volume
	// saved by the efficiency additive, in [0, 1).
	AdditiveEfficiency float64
	AdditiveCostPerM3  float64 // additive cost per m³ of artificial snow [€]

	WaterPerM3       float64 // water use per m³ of artificial snow [l]
	EnergyPerM3      float64 // energy use per m³ of artificial snow [kWh]
	WaterCostPerL    float64 // [€/l]
	EnergyCostPerKWh float64 // [€/kWh]

	// SeasonStart and SeasonEnd delimit the ski season, inclusive.
	// The season may wrap the year boundary (e.g. November–April).
	SeasonStart, SeasonEnd time.Month
}

// DefaultParams returns the model defaults: a 0.5 m minimum depth on a
// 50 000 m² slope with a November–April season.
func DefaultParams() Params {
	return Params{
		MinSnowDepth:       0.5,
		SlopeArea:          50000,
		AdditiveEfficiency: 0.2,
		AdditiveCostPerM3:  2.0,
		WaterPerM3:         200,
		EnergyPerM3:        5.0,
		WaterCostPerL:      0.002,
		EnergyCostPerKWh:   0.25,
		SeasonStart:        time.November,
		SeasonEnd:          time.April,
	}
}

func (p Params) check() error {
	if p.MinSnowDepth <= 0 {
		return fmt.Errorf("cost: minimum snow depth must be positive; got %g", p.MinSnowDepth)
	}
	if p.SlopeArea <= 0 {
		return fmt.Errorf("cost: slope area must be positive; got %g", p.SlopeArea)
	}
	if p.AdditiveEfficiency < 0 || p.AdditiveEfficiency >= 1 {
		return fmt.Errorf("cost: additive efficiency must be in [0, 1); got %g", p.AdditiveEfficiency)
	}
	for _, m := range []time.Month{p.SeasonStart, p.SeasonEnd} {
		if m < time.January || m > time.December {
			return fmt.Errorf("cost: season month must be in 1–12; got %d", m)
		}
	}
	return nil
}

// A MonthCost is the projection for one in-season month.
type MonthCost struct {
	Time          time.Time
	MeanSnowDepth float64 // spatial mean over the clipped grid [m]

	SnowDemand         float64 // artificial snow needed [m³]
	SnowDemandAdditive float64 // same, with the additive [m³]

	Water          float64 // [l]
	WaterAdditive  float64 // [l]
	Energy         float64 // [kWh]
	EnergyAdditive float64 // [kWh]

	Cost         float64 // [€]
	CostAdditive float64 // [€]
	Saving       float64 // Cost − CostAdditive [€]
}

// inSeason reports whether m falls inside the inclusive season
// [start, end], which may wrap the year boundary.
func inSeason(m, start, end time.Month) bool {
	if start <= end {
		return m >= start && m <= end
	}
	return m >= start || m <= end
}

// Project evaluates the cost model over d. Time steps are kept if they
// carry the given experiment label (empty means all), fall within
// [start, end] inclusive, and land inside the ski season. One MonthCost
// is returned per kept time step, in time order. Projecting onto an
// empty selection is an error.
func Project(d *sndstack.Dataset, experiment string, start, end time.Time, p Params) ([]MonthCost, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	n := len(d.Latitudes) * len(d.Longitudes)
	if n == 0 {
		return nil, fmt.Errorf("cost: dataset has an empty spatial grid")
	}

	var out []MonthCost
	for i, t := range d.Times {
		if experiment != "" && d.Experiments[i] != experiment {
			continue
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		if !inSeason(t.Month(), p.SeasonStart, p.SeasonEnd) {
			continue
		}

		mean := stat.Mean(d.SnowDepth.Elements[i*n:(i+1)*n], nil)

		demand := (p.MinSnowDepth - mean) * p.SlopeArea
		if demand < 0 {
			demand = 0
		}
		demandAdd := demand * (1 - p.AdditiveEfficiency)

		mc := MonthCost{
			Time:               t,
			MeanSnowDepth:      mean,
			SnowDemand:         demand,
			SnowDemandAdditive: demandAdd,
			Water:              demand * p.WaterPerM3,
			WaterAdditive:      demandAdd * p.WaterPerM3,
			Energy:             demand * p.EnergyPerM3,
			EnergyAdditive:     demandAdd * p.EnergyPerM3,
		}
		mc.Cost = mc.Water*p.WaterCostPerL + mc.Energy*p.EnergyCostPerKWh
		mc.CostAdditive = mc.WaterAdditive*p.WaterCostPerL +
			mc.EnergyAdditive*p.EnergyCostPerKWh +
			demandAdd*p.AdditiveCostPerM3
		mc.Saving = mc.Cost - mc.CostAdditive
		out = append(out, mc)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("cost: no time steps match experiment %q between %v and %v",
			experiment, start.Format("2006-01"), end.Format("2006-01"))
	}
	return out, nil
}
