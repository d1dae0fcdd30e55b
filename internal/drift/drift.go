// Package drift turns a simulation trace into a drift field and classifies
// each step into an epistemic zone.
package drift

import (
	"math"

	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// #region build
// BuildField lays records out as aligned columns. When includeCollapse is
// false the Collapse column is omitted.
func BuildField(records []state.StepRecord, includeCollapse bool) Field {
	n := len(records)
	f := Field{
		T:        make([]int, 0, n),
		Agent:    make([]string, 0, n),
		V:        make([]float64, 0, n),
		R:        make([]float64, 0, n),
		Delta:    make([]float64, 0, n),
		Theta:    make([]float64, 0, n),
		Ruptured: make([]bool, 0, n),
	}
	if includeCollapse {
		f.Collapse = make([]string, 0, n)
	}
	for _, rec := range records {
		f.T = append(f.T, rec.T)
		f.Agent = append(f.Agent, rec.Agent)
		f.V = append(f.V, rec.V)
		f.R = append(f.R, rec.R)
		f.Delta = append(f.Delta, rec.Delta)
		f.Theta = append(f.Theta, rec.Theta)
		f.Ruptured = append(f.Ruptured, rec.Ruptured)
		if includeCollapse {
			f.Collapse = append(f.Collapse, rec.CollapseLabel)
		}
	}
	return f
}

// #endregion build

// #region zones
// Zones classifies every row of f:
//   - "collapsed:<label>" for a rupture with a known collapse label,
//   - "ruptured" for a rupture without one,
//   - "adaptive" when Δ > Θ − margin,
//   - "stable" otherwise.
func Zones(f Field, margin float64) []string {
	zones := make([]string, f.Len())
	for i := range zones {
		switch {
		case f.Ruptured[i]:
			if i < len(f.Collapse) && f.Collapse[i] != "" {
				zones[i] = ZoneCollapsedPrefix + f.Collapse[i]
			} else {
				zones[i] = ZoneRuptured
			}
		case f.Delta[i] > f.Theta[i]-margin:
			zones[i] = ZoneAdaptive
		default:
			zones[i] = ZoneStable
		}
	}
	return zones
}

// #endregion zones

// #region describe
// Describe summarizes f. zones may be nil, in which case they are computed
// with cfg.Margin.
func Describe(f Field, zones []string, cfg Config) Topology {
	if zones == nil {
		zones = Zones(f, cfg.Margin)
	}
	top := Topology{
		TotalSteps:       f.Len(),
		CollapseTypes:    map[string]int{},
		ZoneDistribution: map[string]int{ZoneStable: 0, ZoneAdaptive: 0},
		Volatility:       "stable-ish",
	}
	for i, ruptured := range f.Ruptured {
		if !ruptured {
			continue
		}
		top.TotalRuptures++
		if top.FirstRupture == nil {
			t := f.T[i]
			top.FirstRupture = &t
		}
		if i < len(f.Collapse) && f.Collapse[i] != "" {
			top.CollapseTypes[f.Collapse[i]]++
		}
	}
	for _, z := range zones {
		top.ZoneDistribution[z]++
	}
	if top.TotalSteps > 0 {
		top.RuptureDensity = math.Round(float64(top.TotalRuptures)/float64(top.TotalSteps)*1000) / 1000
	}
	if float64(top.TotalRuptures) > float64(top.TotalSteps)*cfg.VolatileRatio {
		top.Volatility = "volatile"
	}
	return top
}

// #endregion describe
