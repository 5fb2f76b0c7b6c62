// Package report renders scored report runs: the HTML coverage
// document, terminal text, JSON and Markdown summaries, and the files
// a run leaves on disk.
package report

import (
	"encoding/json"
	"io"

	"github.com/unbound-force/parity/internal/score"
)

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version     string       `json:"version"`
	Family      string       `json:"family"`
	DisplayName string       `json:"display_name"`
	Percentage  int          `json:"percentage"`
	Totals      score.Totals `json:"totals"`
	Rows        []score.Row  `json:"rows"`
}

// WriteJSON writes a scored run as formatted JSON to the writer.
func WriteJSON(w io.Writer, run score.Run, version string) error {
	rows := run.Rows
	if rows == nil {
		rows = []score.Row{}
	}
	report := JSONReport{
		Version:     version,
		Family:      run.Family.Nickname(),
		DisplayName: run.Family.DisplayName(),
		Percentage:  run.Totals.Percentage(),
		Totals:      run.Totals,
		Rows:        rows,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
