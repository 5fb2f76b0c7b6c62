package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/unbound-force/parity/internal/nameset"
	"github.com/unbound-force/parity/internal/score"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(
	template.ParseFS(templateFS, "templates/report.html.tmpl"))

type htmlName struct {
	Name  string
	Class string
}

type htmlRow struct {
	Category    string
	Names       []htmlName
	Implemented int
	Real        int
	Erroneous   []string
}

type htmlPage struct {
	DisplayName string
	Implemented int
	Real        int
	Percentage  int
	Rows        []htmlRow
}

// RenderHTML renders a scored run as an HTML document. Rows appear in
// run order, which Extract has already sorted by category name. The
// output is deterministic: the same run always renders to the same
// bytes.
//
// Each category is a two-row block. The first row lists the real
// names, green when simulated and blue when missing, followed by an
// "implemented/real" cell; the second row lists erroneous names in
// red. Empty rows hold a non-breaking space.
func RenderHTML(run score.Run) ([]byte, error) {
	page := htmlPage{
		DisplayName: run.Family.DisplayName(),
		Implemented: run.Totals.Implemented,
		Real:        run.Totals.Real,
		Percentage:  run.Totals.Percentage(),
		Rows:        make([]htmlRow, 0, len(run.Rows)),
	}

	for _, r := range run.Rows {
		row := htmlRow{
			Category:    r.Category,
			Implemented: r.Implemented,
			Real:        r.Real,
			Erroneous:   r.Erroneous,
		}
		if r.ShowsRealNames() {
			missing := nameset.Of(r.Missing...)
			for _, n := range r.RealNames {
				class := "implemented"
				if missing.Has(n) {
					class = "missing"
				}
				row.Names = append(row.Names, htmlName{Name: n, Class: class})
			}
		}
		page.Rows = append(page.Rows, row)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("rendering HTML report: %w", err)
	}
	return buf.Bytes(), nil
}
