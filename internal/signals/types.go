package signals

// #region modes
// Supported signal modes.
const (
	ModeRandomWalk = "random_walk"
	ModeOscillate  = "oscillate"
	ModeShock      = "shock"
	ModeConstant   = "constant"
	ModeCustom     = "custom"
)

// Modes lists every supported mode in a stable order.
func Modes() []string {
	return []string{ModeRandomWalk, ModeOscillate, ModeShock, ModeConstant, ModeCustom}
}

// #endregion modes

// #region config

// ProducerConfig holds tuning knobs for signal generation.
type ProducerConfig struct {
	Mode           string  `yaml:"mode" json:"mode" validate:"required"`
	Seed           uint64  `yaml:"seed" json:"seed"`
	Start          float64 `yaml:"start" json:"start"`                         // random_walk / shock starting value
	Freq           float64 `yaml:"freq" json:"freq"`                           // oscillate: R(t) = sin(t·freq)
	Noise          float64 `yaml:"noise" json:"noise" validate:"gte=0"`        // walk step standard deviation
	ShockAt        int     `yaml:"shock_at" json:"shock_at" validate:"gte=-1"` // step of the shock; -1 means steps/2
	ShockMagnitude float64 `yaml:"shock_magnitude" json:"shock_magnitude"`     // size of the jump
	Value          float64 `yaml:"value" json:"value"`                         // constant mode value

	// Custom is required for ModeCustom and ignored otherwise.
	Custom func(t int) float64 `yaml:"-" json:"-"`
}

// DefaultProducerConfig returns sensible defaults.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Mode:           ModeRandomWalk,
		Freq:           0.1,
		Noise:          0.05,
		ShockAt:        -1,
		ShockMagnitude: 2.0,
	}
}

// #endregion config

// #region profile

// Profile summarizes a generated sequence.
type Profile struct {
	Mode  string  `json:"mode"`
	Steps int     `json:"steps"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// #endregion profile
