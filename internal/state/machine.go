package state

import "fmt"

// #region machine
// Machine wraps a State with its own history for callers that drive a
// single agent one signal at a time.
type Machine struct {
	state State
	trace *Trace
}

// NewMachine starts a machine at s with an empty history.
func NewMachine(s State) *Machine {
	return &Machine{state: s, trace: &Trace{}}
}

// Receive steps the machine with r. On error the state and history are
// unchanged.
func (m *Machine) Receive(r float64) (StepRecord, error) {
	next, rec, err := m.state.Step(r)
	if err != nil {
		return StepRecord{}, err
	}
	m.state = next
	m.trace.Append(rec)
	return rec, nil
}

// State returns the current state value.
func (m *Machine) State() State { return m.state }

// History returns a copy of every record received so far.
func (m *Machine) History() []StepRecord { return m.trace.Records() }

// Trace returns the machine's trace.
func (m *Machine) Trace() *Trace { return m.trace }

// Divergence approximates dR/dt from the last two received signals.
// ok is false with fewer than two records.
func (m *Machine) Divergence() (d float64, ok bool) {
	n := m.trace.Len()
	if n < 2 {
		return 0, false
	}
	return m.trace.At(n-1).R - m.trace.At(n-2).R, true
}

// Risk returns the last step's rupture margin as the policy measured it.
// ok is false before the first step.
func (m *Machine) Risk() (risk float64, ok bool) {
	last, ok := m.trace.Last()
	if !ok {
		return 0, false
	}
	return last.Margin, true
}

// Reset restarts the machine at v0 and e0, clearing history and time.
func (m *Machine) Reset(v0, e0 float64) error {
	next, err := m.state.Restart(v0, e0)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	m.state = next
	m.trace = &Trace{}
	return nil
}

// String renders the current state and the last step.
func (m *Machine) String() string {
	last, ok := m.trace.Last()
	if !ok {
		return "<state empty | t=0>"
	}
	flag := "realign"
	if last.Ruptured {
		flag = "rupture:" + last.CollapseLabel
	}
	return fmt.Sprintf("<state %s | t=%d V=%.4f delta=%.4f theta=%.4f E=%.4f>",
		flag, m.state.t, m.state.v, last.Delta, last.Theta, m.state.e)
}

// #endregion machine
