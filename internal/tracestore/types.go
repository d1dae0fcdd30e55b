package tracestore

import "time"

// #region run
// Run is a stored simulation run. ConfigJSON and SummaryJSON are opaque to
// the store; callers encode whatever describes the run.
type Run struct {
	ID          string
	Name        string
	Seed        uint64
	Agents      int
	Steps       int
	Ruptures    int
	ConfigJSON  string
	SummaryJSON string
	CreatedAt   time.Time
}

// #endregion run
