// Package scaffold writes a starter parity configuration and property
// catalog into a project directory.
package scaffold

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/unbound-force/parity/internal/catalog"
)

//go:embed assets/parity.yaml
var starterConfig []byte

// File names written by Run, relative to the target directory.
const (
	ConfigFile  = ".parity.yaml"
	CatalogFile = "catalog.yaml"
)

// Options configures the scaffold operation.
type Options struct {
	// TargetDir is the root directory to scaffold into.
	// Defaults to the current working directory.
	TargetDir string

	// Force overwrites existing files when true.
	// When false, existing files are skipped.
	Force bool

	// Version is the parity version string to embed in the
	// version marker comment. Defaults to "dev".
	Version string

	// Stdout is the writer for summary output.
	// Defaults to os.Stdout.
	Stdout io.Writer
}

// Result reports what the scaffold operation did.
type Result struct {
	// Created lists files that were written for the first time.
	Created []string

	// Skipped lists files that already existed and were not
	// overwritten (Force was false).
	Skipped []string

	// Overwritten lists files that existed and were replaced
	// (Force was true).
	Overwritten []string
}

// versionMarker returns the YAML comment prepended to each
// scaffolded file.
func versionMarker(version string) string {
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("# scaffolded by parity %s\n", version)
}

// Content returns the scaffolded files by relative path, without
// the version marker.
func Content() map[string][]byte {
	return map[string][]byte{
		ConfigFile:  append([]byte(nil), starterConfig...),
		CatalogFile: catalog.DefaultYAML(),
	}
}

// Run writes the starter configuration and the built-in catalog into
// the target directory. Each file starts with a version marker:
//
//	# scaffolded by parity vX.Y.Z
//
// Existing files are skipped unless opts.Force is set.
func Run(opts Options) (*Result, error) {
	if opts.TargetDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		opts.TargetDir = cwd
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if err := os.MkdirAll(opts.TargetDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", opts.TargetDir, err)
	}

	result := &Result{}
	marker := versionMarker(opts.Version)
	content := Content()

	for _, name := range []string{ConfigFile, CatalogFile} {
		outPath := filepath.Join(opts.TargetDir, name)

		_, statErr := os.Stat(outPath)
		exists := statErr == nil
		if exists && !opts.Force {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		out := append([]byte(marker), content[name]...)
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}

		if exists {
			result.Overwritten = append(result.Overwritten, name)
		} else {
			result.Created = append(result.Created, name)
		}
	}

	printSummary(opts.Stdout, result)
	return result, nil
}

// printSummary writes a human-readable summary of the scaffold
// operation to w.
func printSummary(w io.Writer, r *Result) {
	fmt.Fprintln(w, "parity project initialized:")

	for _, f := range r.Created {
		fmt.Fprintf(w, "  created: %s\n", f)
	}
	for _, f := range r.Skipped {
		fmt.Fprintf(w, "  skipped: %s (already exists)\n", f)
	}
	for _, f := range r.Overwritten {
		fmt.Fprintf(w, "  overwritten: %s\n", f)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit catalog.yaml, then run: parity report")

	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "%d file(s) skipped (use --force to overwrite).\n", len(r.Skipped))
	}
}
