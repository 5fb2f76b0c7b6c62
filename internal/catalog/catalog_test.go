package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unbound-force/parity/internal/browser"
)

func TestRealFor_ExplicitEntry(t *testing.T) {
	c := Category{
		Name: "domRect",
		Real: Table{"default": "x,y", "ff": "height,width"},
	}
	if got := c.RealFor(browser.Firefox); got != "height,width" {
		t.Errorf("RealFor(FF) = %q, want explicit entry", got)
	}
	if got := c.RealFor(browser.Chrome); got != "x,y" {
		t.Errorf("RealFor(Chrome) = %q, want default entry", got)
	}
}

func TestRealFor_EdgeFallsBackToChrome(t *testing.T) {
	c := Category{
		Name: "audioContext",
		Real: Table{"default": "a", "chrome": "b,c"},
	}
	if got := c.RealFor(browser.Edge); got != "b,c" {
		t.Errorf("RealFor(Edge) = %q, want Chrome's list", got)
	}
	if got := c.RealFor(browser.FirefoxESR); got != "a" {
		t.Errorf("RealFor(FF-ESR) = %q, want default list", got)
	}
}

func TestRealFor_EdgeWithoutChromeUsesDefault(t *testing.T) {
	c := Category{Name: "x", Real: Table{"default": "a", "ff": "b"}}
	if got := c.RealFor(browser.Edge); got != "a" {
		t.Errorf("RealFor(Edge) = %q, want default list", got)
	}
}

func TestResolution_Totality(t *testing.T) {
	// A category with no tables at all still resolves for every family.
	c := Category{Name: "bare"}
	for _, f := range browser.All() {
		if got := c.RealFor(f); got != "" {
			t.Errorf("RealFor(%s) = %q, want empty", f, got)
		}
		if got := c.SimulatedFor(f); got != "" {
			t.Errorf("SimulatedFor(%s) = %q, want empty", f, got)
		}
	}
}

func TestSimulatedFor_DefaultsToReal(t *testing.T) {
	c := Category{
		Name: "attr",
		Real: Table{"default": "name,ownerElement,specified,value"},
	}
	for _, f := range browser.All() {
		if c.HasOverride(f) {
			t.Errorf("HasOverride(%s) = true, want false", f)
		}
		if c.SimulatedFor(f) != c.RealFor(f) {
			t.Errorf("SimulatedFor(%s) should equal RealFor without override", f)
		}
	}
}

func TestSimulatedFor_OverrideFallbackOrder(t *testing.T) {
	c := Category{
		Name:      "text",
		Real:      Table{"default": "a,b,c"},
		Simulated: Table{"chrome": "a,b", "ff-esr": "a"},
	}
	if got := c.SimulatedFor(browser.Edge); got != "a,b" {
		t.Errorf("SimulatedFor(Edge) = %q, want Chrome override", got)
	}
	if got := c.SimulatedFor(browser.FirefoxESR); got != "a" {
		t.Errorf("SimulatedFor(FF-ESR) = %q, want explicit override", got)
	}
	if got := c.SimulatedFor(browser.Firefox); got != "a,b,c" {
		t.Errorf("SimulatedFor(FF) = %q, want real list", got)
	}
}

func TestExtract_SortedByName(t *testing.T) {
	c := &Catalog{Categories: []Category{
		{Name: "text"},
		{Name: "Window"},
		{Name: "attr"},
		{Name: "audioContext"},
	}}
	specs := Extract(c, browser.Chrome)
	var names []string
	for _, s := range specs {
		names = append(names, s.Category)
	}
	got := strings.Join(names, ",")
	if got != "Window,attr,audioContext,text" {
		t.Errorf("Extract order = %s, want byte-wise ascending", got)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	c := &Catalog{Categories: []Category{
		{Name: "attr", Real: Table{"default": "a"}},
		{Name: "attr"},
		{Name: ""},
		{Name: "x", Real: Table{"safari": "a"}, Simulated: Table{"IE": "b"}},
	}}
	err := c.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Problems) != 4 {
		t.Errorf("expected 4 problems, got %d: %v", len(verr.Problems), verr.Problems)
	}
	if !strings.Contains(err.Error(), `declared twice`) {
		t.Errorf("error should mention duplicate, got: %s", err)
	}
}

func TestValidate_Empty(t *testing.T) {
	err := (&Catalog{}).Validate()
	if !errors.Is(err, ErrNoCategories) {
		t.Errorf("expected ErrNoCategories, got %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	src := `categories:
  - name: text
    real:
      default: "data,splitText()"
    simulated:
      ff: "data"
  - name: unknown
    real:
      default: "-"
`
	c, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(c.Categories))
	}
	if got := c.Categories[0].SimulatedFor(browser.Firefox); got != "data" {
		t.Errorf("SimulatedFor(FF) = %q, want %q", got, "data")
	}
	if got := c.Categories[1].RealFor(browser.Chrome); got != "-" {
		t.Errorf("RealFor(Chrome) = %q, want sentinel", got)
	}
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	src := `categories:
  - name: text
    expected: "a,b"
`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	if !errors.Is(err, ErrNoCategories) {
		t.Errorf("expected ErrNoCategories, got %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestDefault_IsValid(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	names := make(map[string]bool)
	for _, cat := range c.Categories {
		names[cat.Name] = true
	}
	for _, want := range []string{"attr", "text", "unknown"} {
		if !names[want] {
			t.Errorf("built-in catalog missing category %q", want)
		}
	}
}
