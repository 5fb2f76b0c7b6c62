package history

import (
	"sort"

	"github.com/unbound-force/parity/internal/browser"
	"github.com/unbound-force/parity/internal/nameset"
	"github.com/unbound-force/parity/internal/score"
)

// CategoryDiff describes how one category changed between two runs.
type CategoryDiff struct {
	Category string `json:"category"`

	// Added and Removed mark categories present in only one run.
	Added   bool `json:"added,omitempty"`
	Removed bool `json:"removed,omitempty"`

	ImplementedBefore int `json:"implemented_before"`
	ImplementedAfter  int `json:"implemented_after"`
	RealBefore        int `json:"real_before"`
	RealAfter         int `json:"real_after"`

	// NewlyImplemented were missing before and are implemented now.
	NewlyImplemented []string `json:"newly_implemented,omitempty"`

	// Regressed were implemented before and are missing now.
	Regressed []string `json:"regressed,omitempty"`

	NewErroneous   []string `json:"new_erroneous,omitempty"`
	FixedErroneous []string `json:"fixed_erroneous,omitempty"`
}

// Diff compares two runs of the same family.
type Diff struct {
	Family     browser.Family `json:"family"`
	Before     score.Totals   `json:"before"`
	After      score.Totals   `json:"after"`
	Categories []CategoryDiff `json:"categories"`
}

// Regressions counts regressed names over all categories.
func (d Diff) Regressions() int {
	n := 0
	for _, c := range d.Categories {
		n += len(c.Regressed)
	}
	return n
}

// Compare diffs prev against curr. Only changed categories are listed,
// sorted by name.
func Compare(prev, curr score.Run) Diff {
	d := Diff{
		Family:     curr.Family,
		Before:     prev.Totals,
		After:      curr.Totals,
		Categories: []CategoryDiff{},
	}

	before := indexRows(prev.Rows)
	after := indexRows(curr.Rows)

	names := make(map[string]struct{}, len(before)+len(after))
	for n := range before {
		names[n] = struct{}{}
	}
	for n := range after {
		names[n] = struct{}{}
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, n := range sorted {
		b, hadBefore := before[n]
		a, hasAfter := after[n]
		cd := compareRow(n, b, a)
		cd.Added = !hadBefore
		cd.Removed = !hasAfter
		if cd.changed() {
			d.Categories = append(d.Categories, cd)
		}
	}
	return d
}

func compareRow(name string, b, a score.Row) CategoryDiff {
	implBefore := implemented(b)
	implAfter := implemented(a)
	missBefore := nameset.Of(b.Missing...)
	missAfter := nameset.Of(a.Missing...)
	errBefore := nameset.Of(b.Erroneous...)
	errAfter := nameset.Of(a.Erroneous...)

	return CategoryDiff{
		Category:          name,
		ImplementedBefore: b.Implemented,
		ImplementedAfter:  a.Implemented,
		RealBefore:        b.Real,
		RealAfter:         a.Real,
		NewlyImplemented:  nonEmpty(nameset.Intersect(implAfter, missBefore)),
		Regressed:         nonEmpty(nameset.Intersect(implBefore, missAfter)),
		NewErroneous:      nonEmpty(nameset.Difference(errAfter, errBefore)),
		FixedErroneous:    nonEmpty(nameset.Difference(errBefore, errAfter)),
	}
}

func (c CategoryDiff) changed() bool {
	return c.Added || c.Removed ||
		c.ImplementedBefore != c.ImplementedAfter ||
		c.RealBefore != c.RealAfter ||
		len(c.NewlyImplemented) > 0 || len(c.Regressed) > 0 ||
		len(c.NewErroneous) > 0 || len(c.FixedErroneous) > 0
}

func indexRows(rows []score.Row) map[string]score.Row {
	m := make(map[string]score.Row, len(rows))
	for _, r := range rows {
		m[r.Category] = r
	}
	return m
}

// implemented returns the real names of r that are simulated.
func implemented(r score.Row) nameset.Set {
	return nameset.Of(nameset.Difference(nameset.Of(r.RealNames...), nameset.Of(r.Missing...))...)
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
