// Package nameset parses the comma-separated property/method name
// lists used by the catalog and compares them as sets.
//
// A name ending in "()" is a method; the marker is part of the name
// and is never stripped. The single dash "-" is the catalog's way of
// writing an empty list and parses to the empty set.
package nameset

import (
	"sort"
	"strings"
)

// Empty is the sentinel list meaning "no names".
const Empty = "-"

// Set is a deduplicated collection of names.
type Set map[string]struct{}

// Parse splits a comma-separated name list into a Set. Both "" and
// the sentinel "-" yield the empty set. Tokens are taken as-is.
func Parse(text string) Set {
	s := make(Set)
	if text == "" || text == Empty {
		return s
	}
	for _, name := range strings.Split(text, ",") {
		s[name] = struct{}{}
	}
	return s
}

// Of builds a Set from individual names.
func Of(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Len returns the number of names in the set.
func (s Set) Len() int {
	return len(s)
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in display order (see Compare).
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	Sort(names)
	return names
}

// Difference returns the names in a that are not in b, in display
// order.
func Difference(a, b Set) []string {
	out := make([]string, 0)
	for n := range a {
		if !b.Has(n) {
			out = append(out, n)
		}
	}
	Sort(out)
	return out
}

// Intersect returns the names in both a and b, in display order.
func Intersect(a, b Set) []string {
	out := make([]string, 0)
	for n := range a {
		if b.Has(n) {
			out = append(out, n)
		}
	}
	Sort(out)
	return out
}

// IntersectCount returns |a ∩ b|.
func IntersectCount(a, b Set) int {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	count := 0
	for n := range small {
		if large.Has(n) {
			count++
		}
	}
	return count
}

// Compare orders names for display: case-insensitively first, then
// case-sensitively so names differing only by case still have a
// fixed order. It returns -1, 0 or +1.
func Compare(x, y string) int {
	if c := strings.Compare(strings.ToLower(x), strings.ToLower(y)); c != 0 {
		return c
	}
	return strings.Compare(x, y)
}

// Sort sorts names in place using Compare.
func Sort(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return Compare(names[i], names[j]) < 0
	})
}
