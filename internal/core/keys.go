package core

// Parameter names understood by the built-in variants.
const (
	KeyGain            = "k"                // realignment gain
	KeyFatigue         = "fatigue"          // fatigue coefficient on E
	KeyMemoryRate      = "memory_rate"      // E accumulation per unit distortion
	KeyTheta0          = "theta0"           // base rupture threshold
	KeyThetaRate       = "theta_rate"       // threshold growth per unit E
	KeyThetaSaturation = "theta_saturation" // saturating threshold denominator
	KeyThetaSigma      = "theta_sigma"      // stochastic threshold std deviation
	KeyPeerWeight      = "peer_weight"      // weight of mean peer E in coupled threshold
	KeySlope           = "slope"            // stochastic rupture sigmoid slope
	KeyCollapsePull    = "collapse_pull"    // soft_decay pull toward R
	KeyDecayRate       = "decay_rate"       // soft_decay memory factor
	KeyCollapseSigma   = "collapse_sigma"   // randomized collapse std deviation
)
