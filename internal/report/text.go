package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/unbound-force/parity/internal/score"
)

// TextOptions configures the text report.
type TextOptions struct {
	// Verbose lists missing and erroneous names under the table.
	Verbose bool

	// IncompleteOnly hides categories at full parity.
	IncompleteOnly bool
}

// WriteText writes a scored run as a human-readable styled table.
func WriteText(w io.Writer, run score.Run) error {
	return WriteTextOptions(w, run, TextOptions{})
}

// WriteTextOptions writes a scored run with the given options. Output
// uses lipgloss for color and formatting when the output is a TTY;
// degrades gracefully for pipes and CI.
func WriteTextOptions(w io.Writer, run score.Run, opts TextOptions) error {
	s := DefaultStyles()

	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", run.Family.DisplayName())))

	rows := visibleRows(run.Rows, opts.IncompleteOnly)
	if len(rows) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No categories to show."))
	} else {
		fmt.Fprintln(w, CoverageTable(rows, s))
	}

	if opts.Verbose {
		writeDetails(w, rows, s)
	}

	fmt.Fprintf(w, "\n%s\n", s.Header.Render(Summary(run)))
	return nil
}

// Summary is the one-line result of a run.
func Summary(run score.Run) string {
	t := run.Totals
	return fmt.Sprintf("%s: %d/%d implemented (%d%%), %d erroneous, %d categor%s",
		run.Family.Nickname(), t.Implemented, t.Real, t.Percentage(),
		t.Erroneous, t.Categories, plural(t.Categories, "y", "ies"))
}

// CoverageTable renders rows as a lipgloss table sized for an
// 80-column terminal.
func CoverageTable(rows []score.Row, s Styles) *table.Table {
	// Budget: 80 cols. Borders take 5, padding 8 for 4 columns.
	// Available: 67. CATEGORY=36, IMPL=11, COVERAGE=8, ERRONEOUS=9.
	const maxName = 36
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		name := r.Category
		if len(name) > maxName {
			name = name[:maxName-3] + "..."
		}
		cells = append(cells, []string{
			name,
			fmt.Sprintf("%d/%d", r.Implemented, r.Real),
			fmt.Sprintf("%d%%", rowPercent(r)),
			fmt.Sprintf("%d", len(r.Erroneous)),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if row < 0 || row >= len(rows) {
				return s.TableCell
			}
			switch col {
			case 2:
				return s.CoverageStyle(rowPercent(rows[row]))
			case 3:
				if len(rows[row].Erroneous) > 0 {
					return s.Erroneous
				}
			}
			return s.TableCell
		}).
		Headers("CATEGORY", "IMPL/REAL", "COVERAGE", "ERRONEOUS").
		Rows(cells...)
}

func writeDetails(w io.Writer, rows []score.Row, s Styles) {
	for _, r := range rows {
		if len(r.Missing) == 0 && len(r.Erroneous) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", s.Header.Render(r.Category))
		if len(r.Missing) > 0 {
			fmt.Fprintf(w, "    missing:   %s\n", s.Missing.Render(strings.Join(r.Missing, ", ")))
		}
		if len(r.Erroneous) > 0 {
			fmt.Fprintf(w, "    erroneous: %s\n", s.Erroneous.Render(strings.Join(r.Erroneous, ", ")))
		}
	}
}

// rowPercent is the per-category coverage. Categories without real
// names count as fully covered unless they expose erroneous names.
func rowPercent(r score.Row) int {
	if r.Real == 0 {
		if len(r.Erroneous) > 0 {
			return 0
		}
		return 100
	}
	return score.Percent(r.Implemented, r.Real)
}

func visibleRows(rows []score.Row, incompleteOnly bool) []score.Row {
	if !incompleteOnly {
		return rows
	}
	out := make([]score.Row, 0, len(rows))
	for _, r := range rows {
		if !r.Complete() {
			out = append(out, r)
		}
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
