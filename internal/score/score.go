// Package score compares the real and simulated name sets of each
// resolved catalog category and aggregates the results of one report
// run.
//
// For a category with real set R and simulated set S:
//
//	implemented = |S ∩ R|
//	erroneous   = S − R  (exposed by the emulation, absent in the browser)
//	missing     = R − S  (exposed by the browser, not yet emulated)
package score

import (
	"math"

	"github.com/unbound-force/parity/internal/browser"
	"github.com/unbound-force/parity/internal/catalog"
	"github.com/unbound-force/parity/internal/nameset"
)

// exceptionToken is the sole real name of categories whose only
// contract is raising the right exception type.
const exceptionToken = "exception"

// Row holds the comparison result for one category.
type Row struct {
	// Category is the catalog category name.
	Category string `json:"category"`

	// Implemented is the number of real names also simulated.
	Implemented int `json:"implemented"`

	// Real is the number of real names.
	Real int `json:"real"`

	// RealNames lists the real names in display order.
	RealNames []string `json:"real_names"`

	// Missing lists real names that are not simulated.
	Missing []string `json:"missing"`

	// Erroneous lists simulated names that are not real.
	Erroneous []string `json:"erroneous"`
}

// Totals are the global counts over all rows of a run.
type Totals struct {
	Categories  int `json:"categories"`
	Real        int `json:"real"`
	Implemented int `json:"implemented"`
	Erroneous   int `json:"erroneous"`
}

// Run is the complete result of scoring one browser family.
type Run struct {
	Family browser.Family `json:"family"`
	Rows   []Row          `json:"rows"`
	Totals Totals         `json:"totals"`
}

// Score compares the lists of a resolved spec. It is total: any pair
// of lists, including two empty ones, yields a row.
func Score(spec catalog.Spec) Row {
	realSet := nameset.Parse(spec.Real)
	simSet := nameset.Parse(spec.Simulated)

	return Row{
		Category:    spec.Category,
		Implemented: nameset.IntersectCount(simSet, realSet),
		Real:        realSet.Len(),
		RealNames:   realSet.Sorted(),
		Missing:     nameset.Difference(realSet, simSet),
		Erroneous:   nameset.Difference(simSet, realSet),
	}
}

// ScoreAll scores specs in the given order and accumulates totals.
func ScoreAll(f browser.Family, specs []catalog.Spec) Run {
	run := Run{
		Family: f,
		Rows:   make([]Row, 0, len(specs)),
	}
	for _, spec := range specs {
		row := Score(spec)
		run.Rows = append(run.Rows, row)
		run.Totals.add(row)
	}
	return run
}

func (t *Totals) add(r Row) {
	t.Categories++
	t.Real += r.Real
	t.Implemented += r.Implemented
	t.Erroneous += len(r.Erroneous)
}

// Percentage returns round(Implemented / Real * 100). With no real
// names at all it returns 0.
func (t Totals) Percentage() int {
	return Percent(t.Implemented, t.Real)
}

// Percent returns round(part / whole * 100), or 0 when whole is 0.
func Percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// IsMissing reports whether a real name is not simulated.
func (r Row) IsMissing(name string) bool {
	for _, m := range r.Missing {
		if m == name {
			return true
		}
	}
	return false
}

// ShowsRealNames reports whether the real-name row of the report
// lists names. It is false for categories with no real names and for
// exception-only categories that are fully implemented without
// erroneous names.
func (r Row) ShowsRealNames() bool {
	if r.Real == 0 {
		return false
	}
	if r.Real == 1 && r.RealNames[0] == exceptionToken &&
		r.Implemented == 1 && len(r.Erroneous) == 0 {
		return false
	}
	return true
}

// Complete reports whether every real name is simulated and nothing
// extra is exposed.
func (r Row) Complete() bool {
	return r.Implemented == r.Real && len(r.Erroneous) == 0
}
