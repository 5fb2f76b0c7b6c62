package report

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles defines the visual theme for terminal report output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	// Header is used for section headers and the summary line.
	Header lipgloss.Style

	// SubHeader is used for secondary information lines.
	SubHeader lipgloss.Style

	// Implemented, Missing and Erroneous mirror the colors of the
	// HTML report (green, blue, red).
	Implemented lipgloss.Style
	Missing     lipgloss.Style
	Erroneous   lipgloss.Style

	// TableHeader styles the header row of tables.
	TableHeader lipgloss.Style

	// TableCell styles regular table cells.
	TableCell lipgloss.Style

	// CoverageGood, CoverageWarn and CoverageBad color coverage
	// percentages.
	CoverageGood lipgloss.Style
	CoverageWarn lipgloss.Style
	CoverageBad  lipgloss.Style

	// Border is used for table borders.
	Border lipgloss.Style

	// Muted is used for de-emphasized text.
	Muted lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal reports.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		SubHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		Implemented: lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		Missing:     lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Erroneous:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		TableCell:   lipgloss.NewStyle().PaddingRight(1),

		CoverageGood: lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true),
		CoverageWarn: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		CoverageBad:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),

		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// CoverageStyle returns the style for a coverage percentage.
func (s Styles) CoverageStyle(pct int) lipgloss.Style {
	switch {
	case pct >= 100:
		return s.CoverageGood
	case pct >= 80:
		return s.CoverageWarn
	default:
		return s.CoverageBad
	}
}
