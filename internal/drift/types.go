package drift

// #region drift-config
// Config holds the classification thresholds for drift analysis.
type Config struct {
	Margin        float64 // Δ within Margin of Θ counts as adaptive
	VolatileRatio float64 // ruptures above this share of steps mark the field volatile
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Margin:        0.05,
		VolatileRatio: 0.2,
	}
}

// #endregion drift-config

// #region zones
// Zone labels.
const (
	ZoneStable   = "stable"
	ZoneAdaptive = "adaptive"
	ZoneRuptured = "ruptured"
	// ZoneCollapsedPrefix is followed by the collapse label.
	ZoneCollapsedPrefix = "collapsed:"
)

// #endregion zones

// #region field
// Field is a trace laid out as aligned columns, one row per step record.
type Field struct {
	T        []int     `json:"t"`
	Agent    []string  `json:"agent"`
	V        []float64 `json:"v"`
	R        []float64 `json:"r"`
	Delta    []float64 `json:"delta"`
	Theta    []float64 `json:"theta"`
	Ruptured []bool    `json:"ruptured"`
	Collapse []string  `json:"collapse,omitempty"`
}

// Len returns the number of rows.
func (f Field) Len() int { return len(f.T) }

// #endregion field

// #region topology
// Topology summarizes the structure of a drift field.
type Topology struct {
	TotalSteps       int            `json:"total_steps"`
	TotalRuptures    int            `json:"total_ruptures"`
	FirstRupture     *int           `json:"first_rupture_time"`
	CollapseTypes    map[string]int `json:"collapse_types"`
	ZoneDistribution map[string]int `json:"zone_distribution"`
	RuptureDensity   float64        `json:"rupture_density"`
	Volatility       string         `json:"volatility_signature"`
}

// #endregion topology
