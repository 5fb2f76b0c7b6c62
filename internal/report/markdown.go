package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/unbound-force/parity/internal/score"
)

// WriteMarkdown writes a scored run as GitHub Flavored Markdown: a
// totals table, a mermaid pie chart of the name balance, and one
// table row per category that is not at full parity.
func WriteMarkdown(w io.Writer, run score.Run) error {
	md := markdown.NewMarkdown(w)
	t := run.Totals

	md.H1("Property coverage: " + run.Family.DisplayName())
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Categories", strconv.Itoa(t.Categories)},
			{"Real names", strconv.Itoa(t.Real)},
			{"Implemented", strconv.Itoa(t.Implemented)},
			{"Erroneous", strconv.Itoa(t.Erroneous)},
			{"**Coverage**", "**" + strconv.Itoa(t.Percentage()) + "%**"},
		},
	})
	md.PlainText("")

	if t.Real > 0 || t.Erroneous > 0 {
		writePieChart(md, t)
	}

	incomplete := visibleRows(run.Rows, true)
	if len(incomplete) == 0 {
		md.Tip("All categories are at full parity.")
		return md.Build()
	}

	md.H2("Incomplete categories")
	md.PlainText("")

	rows := make([][]string, 0, len(incomplete))
	for _, r := range incomplete {
		rows = append(rows, []string{
			"`" + r.Category + "`",
			strconv.Itoa(r.Implemented) + "/" + strconv.Itoa(r.Real),
			codeList(r.Missing),
			codeList(r.Erroneous),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Implemented", "Missing", "Should not be implemented"},
		Rows:   rows,
	})
	md.PlainText("")

	if t.Erroneous > 0 {
		md.Warningf("%d simulated name(s) are not exposed by %s.",
			t.Erroneous, run.Family.DisplayName())
		md.PlainText("")
	}

	return md.Build()
}

func writePieChart(md *markdown.Markdown, t score.Totals) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Name coverage"),
		piechart.WithShowData(true),
	)
	if t.Implemented > 0 {
		chart.LabelAndIntValue("Implemented", uint64(t.Implemented))
	}
	if missing := t.Real - t.Implemented; missing > 0 {
		chart.LabelAndIntValue("Missing", uint64(missing))
	}
	if t.Erroneous > 0 {
		chart.LabelAndIntValue("Should not be implemented", uint64(t.Erroneous))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func codeList(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}
