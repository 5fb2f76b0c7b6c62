// Package catalog holds the declared test catalog: one record per
// browser-hosted object category with its real and simulated name
// lists per browser family, and the fallback rules that resolve a
// record into the lists used for one report run.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/unbound-force/parity/internal/browser"
)

// ErrNoCategories is returned when a catalog declares no categories.
var ErrNoCategories = errors.New("catalog declares no categories")

// Table maps a catalog key ("default", "chrome", "edge", "ff",
// "ff-esr") to a comma-separated name list. A key that is absent is
// "not defined"; a key mapped to "-" is defined as empty.
type Table map[string]string

// Category is one catalog record.
type Category struct {
	// Name is unique within the catalog and is the report's sort key
	// and anchor.
	Name string `yaml:"name" json:"name"`

	// Real holds the names a genuine browser exposes.
	Real Table `yaml:"real,omitempty" json:"real,omitempty"`

	// Simulated holds overrides recording where the emulation layer
	// differs from Real. Families without an override are assumed
	// fully implemented.
	Simulated Table `yaml:"simulated,omitempty" json:"simulated,omitempty"`
}

// Catalog is an ordered collection of categories.
type Catalog struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// Spec is a Category resolved for one browser family. Both lists are
// always defined, possibly as the empty string.
type Spec struct {
	Category  string
	Real      string
	Simulated string
}

// lookup applies the family fallback order to a table: explicit
// entry, then Chrome's entry for Edge, then the default entry.
func (t Table) lookup(f browser.Family) (string, bool) {
	if v, ok := t[f.Key()]; ok {
		return v, true
	}
	if f == browser.Edge {
		if v, ok := t[browser.Chrome.Key()]; ok {
			return v, true
		}
	}
	if v, ok := t[browser.DefaultKey]; ok {
		return v, true
	}
	return "", false
}

// RealFor resolves the real name list for f. A category with no
// applicable entry resolves to the empty list.
func (c Category) RealFor(f browser.Family) string {
	v, _ := c.Real.lookup(f)
	return v
}

// SimulatedFor resolves the simulated name list for f. Without an
// override at any fallback level it equals RealFor(f).
func (c Category) SimulatedFor(f browser.Family) string {
	if v, ok := c.Simulated.lookup(f); ok {
		return v
	}
	return c.RealFor(f)
}

// HasOverride reports whether the simulation table applies to f.
func (c Category) HasOverride(f browser.Family) bool {
	_, ok := c.Simulated.lookup(f)
	return ok
}

// Resolve produces the Spec of c for f.
func (c Category) Resolve(f browser.Family) Spec {
	return Spec{
		Category:  c.Name,
		Real:      c.RealFor(f),
		Simulated: c.SimulatedFor(f),
	}
}

// Extract resolves every category for f and returns the specs sorted
// by category name (byte-wise), independent of catalog order.
func Extract(c *Catalog, f browser.Family) []Spec {
	specs := make([]Spec, 0, len(c.Categories))
	for _, cat := range c.Categories {
		specs = append(specs, cat.Resolve(f))
	}
	sort.SliceStable(specs, func(i, j int) bool {
		return specs[i].Category < specs[j].Category
	})
	return specs
}

// ValidationError lists every problem found in a catalog.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid catalog:\n  %s", strings.Join(e.Problems, "\n  "))
}

// Validate checks that category names are present and unique and
// that every table key names a known family or the default table.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return ErrNoCategories
	}

	var problems []string
	seen := make(map[string]int, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Name == "" {
			problems = append(problems, fmt.Sprintf("category #%d has no name", i+1))
			continue
		}
		if first, dup := seen[cat.Name]; dup {
			problems = append(problems, fmt.Sprintf(
				"category %q declared twice (#%d and #%d)", cat.Name, first, i+1))
		} else {
			seen[cat.Name] = i + 1
		}
		problems = append(problems, checkKeys(cat.Name, "real", cat.Real)...)
		problems = append(problems, checkKeys(cat.Name, "simulated", cat.Simulated)...)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func checkKeys(category, table string, t Table) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var problems []string
	for _, k := range keys {
		if !browser.IsKey(k) {
			problems = append(problems, fmt.Sprintf(
				"category %q: unknown %s key %q", category, table, k))
		}
	}
	return problems
}
