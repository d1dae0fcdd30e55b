// Package export writes traces as tabular data.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// Columns is the CSV header, in column order.
var Columns = []string{
	"t", "agent", "r", "prior", "delta", "theta", "ruptured",
	"collapse_label", "margin", "probability", "stochastic", "v", "e",
	"reason",
}

// #region csv
// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []state.StepRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return fmt.Errorf("write row t=%d: %w", rec.T, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func row(rec state.StepRecord) []string {
	return []string{
		strconv.Itoa(rec.T),
		rec.Agent,
		formatFloat(rec.R),
		formatFloat(rec.Prior),
		formatFloat(rec.Delta),
		formatFloat(rec.Theta),
		strconv.FormatBool(rec.Ruptured),
		rec.CollapseLabel,
		formatFloat(rec.Margin),
		formatFloat(rec.Probability),
		strconv.FormatBool(rec.Stochastic),
		formatFloat(rec.V),
		formatFloat(rec.E),
		rec.Reason,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// #endregion csv

// #region jsonl
// WriteJSONLines writes one JSON object per record, newline separated.
func WriteJSONLines(w io.Writer, records []state.StepRecord) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode t=%d: %w", rec.T, err)
		}
	}
	return nil
}

// #endregion jsonl

// #region format
// Write dispatches on format: "csv" or "jsonl".
func Write(w io.Writer, format string, records []state.StepRecord) error {
	switch format {
	case "csv":
		return WriteCSV(w, records)
	case "jsonl", "json":
		return WriteJSONLines(w, records)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// #endregion format
