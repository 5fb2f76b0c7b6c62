package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/parity/internal/score"
)

// Report styles (package-level for consistent terminal output).
var (
	historyHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	historyBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	historyBadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	historyGoodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	historyMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// WriteRunsText lists recorded runs as a table.
func WriteRunsText(w io.Writer, runs []RunInfo) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, historyMutedStyle.Render("No runs recorded."))
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.Family.Nickname(),
			r.RecordedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d/%d", r.Totals.Implemented, r.Totals.Real),
			fmt.Sprintf("%d%%", r.Totals.Percentage()),
			fmt.Sprintf("%d", r.Totals.Erroneous),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(historyBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return historyHeaderStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers("ID", "FAMILY", "RECORDED", "IMPL/REAL", "COVERAGE", "ERRONEOUS").
		Rows(rows...)

	fmt.Fprintln(w, t)
	return nil
}

// WriteDiffText writes a run comparison as styled text.
func WriteDiffText(w io.Writer, d Diff) error {
	fmt.Fprintln(w, historyHeaderStyle.Render(
		fmt.Sprintf("=== %s: %s -> %s ===", d.Family.DisplayName(),
			totalsLabel(d.Before), totalsLabel(d.After))))

	if len(d.Categories) == 0 {
		fmt.Fprintln(w, historyMutedStyle.Render("    No changes."))
		return nil
	}

	for _, c := range d.Categories {
		label := fmt.Sprintf("%s  %d/%d -> %d/%d", c.Category,
			c.ImplementedBefore, c.RealBefore, c.ImplementedAfter, c.RealAfter)
		switch {
		case c.Added:
			label += " (new category)"
		case c.Removed:
			label += " (removed)"
		}
		fmt.Fprintln(w, label)
		writeNames(w, "+ implemented", c.NewlyImplemented, historyGoodStyle)
		writeNames(w, "- regressed", c.Regressed, historyBadStyle)
		writeNames(w, "+ erroneous", c.NewErroneous, historyBadStyle)
		writeNames(w, "- erroneous", c.FixedErroneous, historyGoodStyle)
	}

	if n := d.Regressions(); n > 0 {
		fmt.Fprintf(w, "\n%s\n", historyBadStyle.Render(fmt.Sprintf("%d regression(s)", n)))
	}
	return nil
}

// WriteDiffJSON writes a run comparison as formatted JSON.
func WriteDiffJSON(w io.Writer, d Diff) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func writeNames(w io.Writer, label string, names []string, style lipgloss.Style) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "    %-14s %s\n", label+":", style.Render(strings.Join(names, ", ")))
}

func totalsLabel(t score.Totals) string {
	return fmt.Sprintf("%d/%d (%d%%)", t.Implemented, t.Real, t.Percentage())
}
