package scenario

import "github.com/danielpatrickdp/rupture-state/internal/signals"

// #region scenario
// Scenario is a declarative simulation: a set of agents, the parameters
// they share and the signal they receive.
type Scenario struct {
	Name  string `yaml:"name" json:"name"`
	Steps int    `yaml:"steps" json:"steps" validate:"gte=0"`

	// Signals, when non-empty, is used verbatim and Signal is ignored.
	Signals []float64              `yaml:"signals,omitempty" json:"signals,omitempty"`
	Signal  signals.ProducerConfig `yaml:"signal" json:"signal"`

	// Params are merged over the registry defaults for every agent.
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Agents []Agent            `yaml:"agents" json:"agents" validate:"required,min=1,unique=Name,dive"`
}

// Agent selects the variants and initial values of one state.
type Agent struct {
	Name        string             `yaml:"name" json:"name" validate:"required"`
	V0          float64            `yaml:"v0" json:"v0"`
	E0          float64            `yaml:"e0" json:"e0" validate:"gte=0"`
	Seed        uint64             `yaml:"seed" json:"seed"`
	Realign     string             `yaml:"realign" json:"realign" validate:"required"`
	Threshold   string             `yaml:"threshold" json:"threshold" validate:"required"`
	Rupture     string             `yaml:"rupture" json:"rupture" validate:"required"`
	Collapse    string             `yaml:"collapse" json:"collapse" validate:"required"`
	CollapseTag string             `yaml:"collapse_tag,omitempty" json:"collapse_tag,omitempty"`
	Params      map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// #endregion scenario
