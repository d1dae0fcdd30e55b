// Package replay records simulation traces as golden fixtures and checks
// that re-running the fixture's scenario reproduces them.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/rupture-state/internal/scenario"
	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// DefaultTolerance is the absolute tolerance used when a fixture gives none.
const DefaultTolerance = 1e-9

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string             `json:"description"`
	Tolerance   float64            `json:"tolerance,omitempty"`
	Scenario    scenario.Scenario  `json:"scenario"`
	Expected    []state.StepRecord `json:"expected"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads, parses and validates a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := scenario.Validate(f.Scenario); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes f as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// FromRun builds a fixture that expects records from sc.
func FromRun(description string, sc scenario.Scenario, records []state.StepRecord) *Fixture {
	return &Fixture{
		Description: description,
		Tolerance:   DefaultTolerance,
		Scenario:    sc,
		Expected:    append([]state.StepRecord(nil), records...),
	}
}

// #endregion fixture-loader
