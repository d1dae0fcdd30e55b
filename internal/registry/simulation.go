package registry

import (
	"github.com/danielpatrickdp/rupture-state/internal/core"
	"github.com/danielpatrickdp/rupture-state/internal/signals"
	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// #region simulation
// Agent summarizes one configured state.
type Agent struct {
	Name      string             `json:"name"`
	V0        float64            `json:"v0"`
	E0        float64            `json:"e0"`
	Seed      uint64             `json:"seed"`
	Operators map[string]string  `json:"operators"`
	Config    map[string]float64 `json:"config"`
}

// Simulation summarizes a configured run before it is executed.
type Simulation struct {
	Agents []Agent         `json:"agents"`
	Signal signals.Profile `json:"signal"`
	Steps  int             `json:"steps"`
}

// DescribeSimulation summarizes states and the signal they will receive.
// Roles that are not built-in variants are reported as "custom".
func DescribeSimulation(states []state.State, mode string, seq []float64, steps int) Simulation {
	sim := Simulation{
		Agents: make([]Agent, 0, len(states)),
		Signal: signals.Describe(mode, seq),
		Steps:  steps,
	}
	for _, s := range states {
		ops := s.Operators()
		sim.Agents = append(sim.Agents, Agent{
			Name: s.Name(),
			V0:   s.V0(),
			E0:   s.E0(),
			Seed: s.Seed(),
			Operators: map[string]string{
				RoleRealign:   variantName(ops.Realign),
				RoleThreshold: variantName(ops.Threshold),
				RoleRupture:   variantName(ops.Rupture),
				RoleCollapse:  variantName(ops.Collapse),
			},
			Config: s.Config().Map(),
		})
	}
	return sim
}

func variantName(v any) string {
	if cv, ok := v.(core.Variant); ok {
		return cv.Name()
	}
	return "custom"
}

// #endregion simulation
