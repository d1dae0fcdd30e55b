package core

import (
	"math"
	"strconv"
)

// #region distortion
// Distortion returns |r - v|.
func Distortion(v, r float64) float64 {
	return math.Abs(r - v)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// #endregion distortion

// #region peer
// Peer is one agent's same-step snapshot inside a PeerGroup.
type Peer struct {
	E     float64
	Delta float64
	Theta float64
}

// #endregion peer

// #region peer-group
// PeerGroup is the transient, ordered set of agents evaluated within one
// step. It is built by the driver from phase-one observations, receives
// thresholds in phase two, and is sealed before any rupture is decided.
// No agent holds a reference to it beyond the step.
type PeerGroup struct {
	peers    []Peer
	resolved []bool
	sealed   bool
}

// NewPeerGroup builds a group from phase-one snapshots. Theta values in
// the input are ignored until set through SetTheta.
func NewPeerGroup(peers []Peer) *PeerGroup {
	g := &PeerGroup{
		peers:    make([]Peer, len(peers)),
		resolved: make([]bool, len(peers)),
	}
	copy(g.peers, peers)
	for i := range g.peers {
		g.peers[i].Theta = 0
	}
	return g
}

// Len returns the number of peers.
func (g *PeerGroup) Len() int {
	if g == nil {
		return 0
	}
	return len(g.peers)
}

// At returns the snapshot of peer i.
func (g *PeerGroup) At(i int) Peer {
	return g.peers[i]
}

// SetTheta records the phase-two threshold of peer i.
func (g *PeerGroup) SetTheta(i int, theta float64) error {
	if g.sealed {
		return &PeerGroupError{Reason: "thresholds already sealed", Size: len(g.peers)}
	}
	if i < 0 || i >= len(g.peers) {
		return &PeerGroupError{Reason: "peer index out of range", Size: len(g.peers)}
	}
	g.peers[i].Theta = theta
	g.resolved[i] = true
	return nil
}

// Seal closes phase two. It fails unless every peer has a threshold.
func (g *PeerGroup) Seal() error {
	for i, ok := range g.resolved {
		if !ok {
			return &PeerGroupError{Reason: "threshold unresolved for peer " + strconv.Itoa(i), Size: len(g.peers)}
		}
	}
	g.sealed = true
	return nil
}

// Sealed reports whether all thresholds are resolved and fixed.
func (g *PeerGroup) Sealed() bool {
	return g != nil && g.sealed
}

// MeanE returns the mean misalignment memory across peers.
func (g *PeerGroup) MeanE() (float64, error) {
	if g.Len() == 0 {
		return 0, &PeerGroupError{Reason: "no peers", Size: 0}
	}
	var sum float64
	for _, p := range g.peers {
		sum += p.E
	}
	return sum / float64(len(g.peers)), nil
}

// MeanTheta returns the mean same-step threshold across peers. The group
// must be sealed so no threshold can change after it is read.
func (g *PeerGroup) MeanTheta() (float64, error) {
	if g.Len() == 0 {
		return 0, &PeerGroupError{Reason: "no peers", Size: 0}
	}
	if !g.sealed {
		return 0, &PeerGroupError{Reason: "thresholds not resolved", Size: len(g.peers)}
	}
	var sum float64
	for _, p := range g.peers {
		sum += p.Theta
	}
	return sum / float64(len(g.peers)), nil
}

// #endregion peer-group
