package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/unbound-force/parity/internal/browser"
	"github.com/unbound-force/parity/internal/catalog"
	"github.com/unbound-force/parity/internal/score"
)

const textReal = "appendData(),data,deleteData(),insertData(),length,replaceData(),splitText(),substringData(),wholeText"

func sampleCatalog() *catalog.Catalog {
	// Deliberately out of order: the report must sort by name.
	return &catalog.Catalog{Categories: []catalog.Category{
		{
			Name:      "text",
			Real:      catalog.Table{"default": textReal},
			Simulated: catalog.Table{"ff": "appendData(),data,deleteData(),insertData(),length,replaceData(),substringData(),wholeText"},
		},
		{Name: "unknown", Real: catalog.Table{"default": "-"}},
		{Name: "attr", Real: catalog.Table{"default": "name,ownerElement,specified,value"}},
	}}
}

func sampleRun() score.Run {
	return score.ScoreAll(browser.Firefox, catalog.Extract(sampleCatalog(), browser.Firefox))
}

func renderSample(t *testing.T) string {
	t.Helper()
	out, err := RenderHTML(sampleRun())
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	return string(out)
}

// block returns the two table rows rendered for a category.
func block(t *testing.T, html, category string) string {
	t.Helper()
	start := strings.Index(html, `<a id="`+category+`"`)
	if start < 0 {
		t.Fatalf("category %q not found in output", category)
	}
	rest := html[start:]
	end := strings.Index(rest, `<td class="category"`)
	if end < 0 {
		end = strings.Index(rest, "</table>")
	}
	return rest[:end]
}

func TestRenderHTML_Header(t *testing.T) {
	html := renderSample(t)
	if !strings.Contains(html, "Total Implemented: 12 / 13 (92%)") {
		t.Errorf("missing totals header, got:\n%s", html)
	}
	if !strings.Contains(html, "charset=ISO-8859-1") {
		t.Error("document should declare ISO-8859-1")
	}
	if !strings.Contains(html, "<h1>Firefox</h1>") {
		t.Error("document should name the family")
	}
}

func TestRenderHTML_AttrFullyImplemented(t *testing.T) {
	b := block(t, renderSample(t), "attr")
	for _, n := range []string{"name", "ownerElement", "specified", "value"} {
		if !strings.Contains(b, `<span class="implemented">`+n+`</span>`) {
			t.Errorf("expected %s in green, got:\n%s", n, b)
		}
	}
	if strings.Contains(b, `class="missing"`) {
		t.Error("attr has no missing names")
	}
	if !strings.Contains(b, `<td class="count">4/4</td>`) {
		t.Errorf("expected 4/4 footer, got:\n%s", b)
	}
	if !strings.Contains(b, `<td colspan="2">&nbsp;</td>`) {
		t.Errorf("expected placeholder in erroneous row, got:\n%s", b)
	}
}

func TestRenderHTML_TextMissingSplitText(t *testing.T) {
	b := block(t, renderSample(t), "text")
	if !strings.Contains(b, `<span class="missing">splitText()</span>`) {
		t.Errorf("expected splitText() in blue, got:\n%s", b)
	}
	if got := strings.Count(b, `<span class="implemented">`); got != 8 {
		t.Errorf("expected 8 implemented names, got %d", got)
	}
	if !strings.Contains(b, `<td class="count">8/9</td>`) {
		t.Errorf("expected 8/9 footer, got:\n%s", b)
	}
}

func TestRenderHTML_UnknownPlaceholders(t *testing.T) {
	b := block(t, renderSample(t), "unknown")
	if !strings.Contains(b, "<td>&nbsp;</td>") {
		t.Errorf("expected placeholder in real row, got:\n%s", b)
	}
	if !strings.Contains(b, `<td colspan="2">&nbsp;</td>`) {
		t.Errorf("expected placeholder in erroneous row, got:\n%s", b)
	}
	if !strings.Contains(b, `<td class="count">0/0</td>`) {
		t.Errorf("expected 0/0 footer, got:\n%s", b)
	}
}

func TestRenderHTML_ErroneousInRed(t *testing.T) {
	run := score.ScoreAll(browser.Chrome, []catalog.Spec{
		{Category: "keyboardEvent", Real: "key", Simulated: "key,which"},
	})
	out, err := RenderHTML(run)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `<span class="erroneous">which</span>`) {
		t.Errorf("expected erroneous name in red, got:\n%s", out)
	}
}

func TestRenderHTML_ExceptionOnlyPlaceholder(t *testing.T) {
	run := score.ScoreAll(browser.Chrome, []catalog.Spec{
		{Category: "abstractRange", Real: "exception", Simulated: "exception"},
	})
	out, err := RenderHTML(run)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), ">exception</span>") {
		t.Error("fully implemented exception-only category should not list names")
	}
	if !strings.Contains(string(out), `<td class="count">1/1</td>`) {
		t.Error("footer should still show the counts")
	}
}

func TestRenderHTML_Idempotent(t *testing.T) {
	a, err := RenderHTML(sampleRun())
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderHTML(sampleRun())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("rendering the same run twice must produce identical bytes")
	}
}

func TestRenderHTML_CategoryOrder(t *testing.T) {
	html := renderSample(t)
	attr := strings.Index(html, `id="attr"`)
	text := strings.Index(html, `id="text"`)
	unknown := strings.Index(html, `id="unknown"`)
	if !(attr < text && text < unknown) {
		t.Errorf("categories out of order: attr=%d text=%d unknown=%d", attr, text, unknown)
	}
}

func TestRenderHTML_ZeroRealIsZeroPercent(t *testing.T) {
	run := score.ScoreAll(browser.Edge, []catalog.Spec{{Category: "unknown", Real: "-", Simulated: "-"}})
	out, err := RenderHTML(run)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "Total Implemented: 0 / 0 (0%)") {
		t.Errorf("expected 0%% header, got:\n%s", out)
	}
}

func TestRenderHTML_EscapesNames(t *testing.T) {
	run := score.ScoreAll(browser.Chrome, []catalog.Spec{{Category: "odd", Real: "<b>", Simulated: "<b>"}})
	out, err := RenderHTML(run)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "<b>") {
		t.Error("names must be HTML-escaped")
	}
	if !strings.Contains(string(out), "&lt;b&gt;") {
		t.Errorf("expected escaped name, got:\n%s", out)
	}
}

func TestEncodeLatin1(t *testing.T) {
	out, err := EncodeLatin1([]byte("caf\u00e9 \u20ac"))
	if err != nil {
		t.Fatalf("EncodeLatin1 failed: %v", err)
	}
	want := []byte("caf\xe9 &#8364;")
	if !bytes.Equal(out, want) {
		t.Errorf("EncodeLatin1 = %q, want %q", out, want)
	}
}

func fakeChart(w io.Writer) error {
	_, err := w.Write([]byte("\x89PNG fake"))
	return err
}

func TestFiles_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	files := Files{Dir: dir}

	html, err := RenderHTML(sampleRun())
	if err != nil {
		t.Fatal(err)
	}
	if err := files.Write(browser.FirefoxESR, html, fakeChart); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	htmlPath := filepath.Join(dir, "properties-FF-ESR.html")
	if files.HTMLPath(browser.FirefoxESR) != htmlPath {
		t.Errorf("HTMLPath = %s, want %s", files.HTMLPath(browser.FirefoxESR), htmlPath)
	}
	got, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("reading HTML: %v", err)
	}
	if !bytes.Equal(got, html) {
		t.Error("ASCII-only HTML should be unchanged by Latin-1 encoding")
	}
	if _, err := os.Stat(filepath.Join(dir, "properties-FF-ESR.png")); err != nil {
		t.Errorf("chart file missing: %v", err)
	}

	// Writing again into the existing directory succeeds.
	if err := files.Write(browser.FirefoxESR, html, fakeChart); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected exactly 2 files, got %d", len(entries))
	}
}

func TestFiles_Write_ChartFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	boom := errors.New("boom")
	err := Files{Dir: dir}.Write(browser.Chrome, []byte("<html></html>"), func(io.Writer) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected chart error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "properties-Chrome.html")); !os.IsNotExist(err) {
		t.Error("no report file should be written when the chart fails")
	}
}

func TestFiles_Write_DirectoryFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := Files{Dir: filepath.Join(blocker, "out")}.Write(browser.Chrome, []byte("x"), fakeChart)
	if err == nil {
		t.Fatal("expected error when the output directory cannot be created")
	}
	if !strings.Contains(err.Error(), "creating output directory") {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestWriteJSON_ValidAgainstSchema(t *testing.T) {
	sch, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		t.Fatalf("failed to parse schema JSON: %v", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", sch); err != nil {
		t.Fatalf("failed to add schema resource: %v", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}

	for _, run := range []score.Run{sampleRun(), {Family: browser.Chrome}} {
		var buf bytes.Buffer
		if err := WriteJSON(&buf, run, "0.1.0"); err != nil {
			t.Fatalf("WriteJSON failed: %v", err)
		}
		inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}
		if err := compiled.Validate(inst); err != nil {
			t.Errorf("JSON output does not conform to schema:\n%v", err)
		}
	}
}

func TestWriteJSON_Content(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRun(), "0.1.0"); err != nil {
		t.Fatal(err)
	}
	var report JSONReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Family != "FF" || report.Percentage != 92 {
		t.Errorf("unexpected header: family=%s percentage=%d", report.Family, report.Percentage)
	}
	if len(report.Rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(report.Rows))
	}
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func TestWriteText_Content(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleRun()); err != nil {
		t.Fatal(err)
	}
	out := stripANSI(buf.String())
	for _, want := range []string{"attr", "text", "unknown", "8/9", "FF: 12/13 implemented (92%)", "3 categories"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteText_FitsIn80Columns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleRun()); err != nil {
		t.Fatal(err)
	}
	const maxWidth = 80
	for i, line := range strings.Split(buf.String(), "\n") {
		plain := stripANSI(line)
		if width := utf8.RuneCountInString(plain); width > maxWidth {
			t.Errorf("line %d exceeds %d columns (%d runes): %q", i+1, maxWidth, width, plain)
		}
	}
}

func TestWriteTextOptions_IncompleteOnlyVerbose(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTextOptions(&buf, sampleRun(), TextOptions{IncompleteOnly: true, Verbose: true})
	if err != nil {
		t.Fatal(err)
	}
	out := stripANSI(buf.String())
	if strings.Contains(out, "attr") {
		t.Error("complete categories should be hidden")
	}
	if !strings.Contains(out, "missing:   splitText()") {
		t.Errorf("verbose output should list missing names:\n%s", out)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, sampleRun()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"# Property coverage: Firefox", "```mermaid", "`splitText()`", "92%"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteMarkdown_FullParity(t *testing.T) {
	run := score.ScoreAll(browser.Chrome, catalog.Extract(sampleCatalog(), browser.Chrome))
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, run); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "full parity") {
		t.Errorf("expected full parity tip:\n%s", buf.String())
	}
}

func TestCoverageStyle(_ *testing.T) {
	s := DefaultStyles()
	for _, pct := range []int{0, 50, 80, 99, 100} {
		_ = s.CoverageStyle(pct).Render("test")
	}
}
