package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/unbound-force/parity/internal/browser"
)

// Files persists the output of report runs into one directory. Every
// family writes to its own file names, so runs for different families
// can share a directory concurrently.
type Files struct {
	// Dir is the output directory. It is created on first write.
	Dir string
}

// HTMLPath returns <Dir>/properties-<nickname>.html.
func (f Files) HTMLPath(family browser.Family) string {
	return filepath.Join(f.Dir, "properties-"+family.Nickname()+".html")
}

// ChartPath returns <Dir>/properties-<nickname>.png.
func (f Files) ChartPath(family browser.Family) string {
	return filepath.Join(f.Dir, "properties-"+family.Nickname()+".png")
}

// Write stores the HTML document (re-encoded as ISO-8859-1) and the
// chart produced by renderChart. Both are fully rendered before the
// first file is touched; files are renamed into place only when
// complete.
func (f Files) Write(family browser.Family, html []byte, renderChart func(io.Writer) error) error {
	latin1, err := EncodeLatin1(html)
	if err != nil {
		return err
	}
	var chart bytes.Buffer
	if err := renderChart(&chart); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", f.Dir, err)
	}
	if err := writeAtomic(f.HTMLPath(family), latin1); err != nil {
		return err
	}
	return writeAtomic(f.ChartPath(family), chart.Bytes())
}

// EncodeLatin1 converts UTF-8 HTML to ISO-8859-1. Characters outside
// Latin-1 become numeric character references.
func EncodeLatin1(html []byte) ([]byte, error) {
	enc := encoding.HTMLEscapeUnsupported(charmap.ISO8859_1.NewEncoder())
	out, err := enc.Bytes(html)
	if err != nil {
		return nil, fmt.Errorf("encoding HTML as ISO-8859-1: %w", err)
	}
	return out, nil
}

// writeAtomic writes data to a temp file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting mode of %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
