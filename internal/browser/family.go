// Package browser defines the browser families a coverage report can
// be generated for, together with the naming used for catalog keys,
// output file names, and report captions.
package browser

import (
	"fmt"
	"strings"
)

// Family identifies which property table variant of the catalog
// applies to a report run.
type Family string

// Supported browser families, in declaration order.
const (
	Chrome     Family = "CHROME"
	Edge       Family = "EDGE"
	Firefox    Family = "FF"
	FirefoxESR Family = "FF_ESR"
)

// DefaultKey is the catalog key of the fallback table used when a
// category has no explicit list for a family.
const DefaultKey = "default"

type familyInfo struct {
	nickname string
	key      string
	display  string
}

var families = map[Family]familyInfo{
	Chrome:     {nickname: "Chrome", key: "chrome", display: "Chrome"},
	Edge:       {nickname: "Edge", key: "edge", display: "Edge"},
	Firefox:    {nickname: "FF", key: "ff", display: "Firefox"},
	FirefoxESR: {nickname: "FF-ESR", key: "ff-esr", display: "Firefox ESR"},
}

// All returns every supported family in declaration order.
func All() []Family {
	return []Family{Chrome, Edge, Firefox, FirefoxESR}
}

// Valid reports whether f is one of the supported families.
func (f Family) Valid() bool {
	_, ok := families[f]
	return ok
}

// Nickname is the short name used in output file names
// (e.g. "FF-ESR" in properties-FF-ESR.html).
func (f Family) Nickname() string {
	if info, ok := families[f]; ok {
		return info.nickname
	}
	return string(f)
}

// Key is the lower-case name used for the family's tables in the
// catalog file.
func (f Family) Key() string {
	if info, ok := families[f]; ok {
		return info.key
	}
	return strings.ToLower(string(f))
}

// DisplayName is the human-readable name shown in reports and charts.
func (f Family) DisplayName() string {
	if info, ok := families[f]; ok {
		return info.display
	}
	return string(f)
}

func (f Family) String() string {
	return f.Nickname()
}

// Parse resolves a family from its constant, nickname, catalog key or
// display name. Matching is case-insensitive.
func Parse(s string) (Family, error) {
	needle := strings.TrimSpace(s)
	for _, f := range All() {
		info := families[f]
		for _, candidate := range []string{string(f), info.nickname, info.key, info.display} {
			if strings.EqualFold(needle, candidate) {
				return f, nil
			}
		}
	}
	return "", fmt.Errorf("unknown browser family %q: must be one of %s",
		s, strings.Join(Nicknames(), ", "))
}

// Nicknames returns the nicknames of all families, in declaration order.
func Nicknames() []string {
	all := All()
	names := make([]string, 0, len(all))
	for _, f := range all {
		names = append(names, f.Nickname())
	}
	return names
}

// IsKey reports whether key is a valid catalog table key, either a
// family key or DefaultKey.
func IsKey(key string) bool {
	if key == DefaultKey {
		return true
	}
	for _, info := range families {
		if info.key == key {
			return true
		}
	}
	return false
}
