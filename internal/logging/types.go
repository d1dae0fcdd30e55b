package logging

import "time"

// #region rupture-entry
// RuptureEntry is a single row in the rupture_log table: one collapse of
// one agent within a stored run.
type RuptureEntry struct {
	RunID     string    `json:"run_id"`
	Agent     string    `json:"agent"`
	T         int       `json:"t"`
	Delta     float64   `json:"delta"`
	Theta     float64   `json:"theta"`
	Label     string    `json:"label"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// #endregion rupture-entry

// #region format
// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// #endregion format
