package state

// #region trace
// Trace is an append-only sequence of step records. Records are stored by
// value and every accessor returns copies, so appended records cannot be
// modified through the trace.
type Trace struct {
	records []StepRecord
}

// NewTrace returns a trace holding a copy of records.
func NewTrace(records []StepRecord) *Trace {
	t := &Trace{records: make([]StepRecord, len(records))}
	copy(t.records, records)
	return t
}

// Append adds rec at the end of the trace.
func (t *Trace) Append(rec StepRecord) {
	t.records = append(t.records, rec)
}

// Len returns the number of records.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns record i.
func (t *Trace) At(i int) StepRecord {
	return t.records[i]
}

// Last returns the final record and whether one exists.
func (t *Trace) Last() (StepRecord, bool) {
	if t.Len() == 0 {
		return StepRecord{}, false
	}
	return t.records[len(t.records)-1], true
}

// Records returns a copy of every record in order.
func (t *Trace) Records() []StepRecord {
	out := make([]StepRecord, t.Len())
	if t != nil {
		copy(out, t.records)
	}
	return out
}

// ForAgent returns the records of a single agent in order.
func (t *Trace) ForAgent(agent string) []StepRecord {
	var out []StepRecord
	for _, rec := range t.Records() {
		if rec.Agent == agent {
			out = append(out, rec)
		}
	}
	return out
}

// Ruptures returns the number of ruptured records.
func (t *Trace) Ruptures() int {
	n := 0
	for _, rec := range t.Records() {
		if rec.Ruptured {
			n++
		}
	}
	return n
}

// #endregion trace
