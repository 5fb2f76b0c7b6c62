package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/unbound-force/parity/internal/browser"
	"github.com/unbound-force/parity/internal/catalog"
	"github.com/unbound-force/parity/internal/chart"
	"github.com/unbound-force/parity/internal/config"
	"github.com/unbound-force/parity/internal/history"
	"github.com/unbound-force/parity/internal/report"
	"github.com/unbound-force/parity/internal/scaffold"
	"github.com/unbound-force/parity/internal/score"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

// builtinSource names the embedded catalog in history records.
const builtinSource = "built-in"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "parity",
		Short: "Parity - browser property coverage reports",
		Long: `Parity compares the properties real browsers expose on DOM
objects with the properties an emulation implements, and writes
an HTML report and a bar chart per browser family.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	root.AddCommand(newReportCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newInitCmd())

	return root
}

// reportParams holds the parsed flags for the report command. Empty
// strings fall back to the configuration file.
type reportParams struct {
	ctx            context.Context
	families       []string
	catalogPath    string
	outputDir      string
	configPath     string
	historyDir     string
	format         string
	record         bool
	interactive    bool
	details        bool
	incompleteOnly bool
	minCoverage    int
	stdout         io.Writer
	stderr         io.Writer
}

// runReport is the extracted, testable body of the report command.
func runReport(p reportParams) error {
	if p.format != "text" && p.format != "json" && p.format != "markdown" {
		return fmt.Errorf("invalid format %q: must be 'text', 'json', or 'markdown'", p.format)
	}
	if p.ctx == nil {
		p.ctx = context.Background()
	}

	cfg, err := config.Load(p.configPath)
	if err != nil {
		return err
	}

	families, err := resolveFamilies(p.families, cfg)
	if err != nil {
		return err
	}

	catalogPath := firstNonEmpty(p.catalogPath, cfg.Catalog)
	cat, source, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}
	logger.Debug("catalog loaded", "source", source, "categories", len(cat.Categories))

	files := report.Files{Dir: firstNonEmpty(p.outputDir, cfg.OutputDir)}
	runs, err := generate(p.ctx, cat, families, files, cfg.ChartOptions())
	if err != nil {
		return err
	}

	if p.record || cfg.History.Enabled {
		if err := recordRuns(p.ctx, firstNonEmpty(p.historyDir, cfg.History.Dir), runs, source); err != nil {
			return err
		}
	}

	if p.interactive {
		return runInteractiveReport(runs)
	}

	if err := writeReports(p.stdout, p.format, runs, report.TextOptions{
		Verbose:        p.details,
		IncompleteOnly: p.incompleteOnly,
	}); err != nil {
		return err
	}

	printCoverageSummary(p.stderr, runs, p.minCoverage)
	return checkCoverage(runs, p.minCoverage)
}

// resolveFamilies parses command-line family names, falling back to
// the configured families.
func resolveFamilies(args []string, cfg *config.Config) ([]browser.Family, error) {
	if len(args) > 0 {
		return config.ParseFamilies(args)
	}
	return cfg.ParsedFamilies()
}

// loadCatalog loads the catalog at path, or the built-in catalog when
// path is empty. It also returns a description of the source.
func loadCatalog(path string) (*catalog.Catalog, string, error) {
	if path == "" {
		c, err := catalog.Default()
		return c, builtinSource, err
	}
	c, err := catalog.LoadFile(path)
	return c, path, err
}

// generate scores each family and writes its HTML report and chart.
// Families run concurrently; the returned runs follow the order of
// families.
func generate(ctx context.Context, cat *catalog.Catalog, families []browser.Family, files report.Files, chartOpts chart.Options) ([]score.Run, error) {
	runs := make([]score.Run, len(families))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range families {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			run := score.ScoreAll(f, catalog.Extract(cat, f))
			html, err := report.RenderHTML(run)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Nickname(), err)
			}

			bars := chart.Bars(run)
			err = files.Write(f, html, func(w io.Writer) error {
				return chart.Render(w, f, bars, chartOpts)
			})
			if err != nil {
				return fmt.Errorf("%s: %w", f.Nickname(), err)
			}

			logger.Info("report written",
				"family", f.Nickname(),
				"html", files.HTMLPath(f),
				"chart", files.ChartPath(f),
				"coverage", fmt.Sprintf("%d%%", run.Totals.Percentage()),
			)
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// recordRuns stores runs in the history database, one at a time.
func recordRuns(ctx context.Context, dir string, runs []score.Run, source string) error {
	db, err := history.Open(dir, history.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	for _, run := range runs {
		id, err := db.Record(ctx, run, source)
		if err != nil {
			return err
		}
		logger.Info("run recorded", "family", run.Family.Nickname(), "id", id, "db", db.Path())
	}
	return nil
}

// writeReports outputs every run in the requested format.
func writeReports(w io.Writer, format string, runs []score.Run, opts report.TextOptions) error {
	for i, run := range runs {
		var err error
		switch format {
		case "json":
			err = report.WriteJSON(w, run, version)
		case "markdown":
			if i > 0 {
				fmt.Fprintln(w)
			}
			err = report.WriteMarkdown(w, run)
		default:
			if i > 0 {
				fmt.Fprintln(w)
			}
			err = report.WriteTextOptions(w, run, opts)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// printCoverageSummary prints a one-line CI summary to stderr when a
// minimum coverage is set.
func printCoverageSummary(w io.Writer, runs []score.Run, minCoverage int) {
	if minCoverage <= 0 {
		return
	}

	parts := make([]string, 0, len(runs))
	for _, run := range runs {
		status := "PASS"
		if run.Totals.Percentage() < minCoverage {
			status = "FAIL"
		}
		parts = append(parts, fmt.Sprintf("%s: %d%%/%d%% (%s)",
			run.Family.Nickname(), run.Totals.Percentage(), minCoverage, status))
	}
	fmt.Fprintln(w, strings.Join(parts, " | "))
}

// checkCoverage returns an error if any run is below minCoverage.
func checkCoverage(runs []score.Run, minCoverage int) error {
	if minCoverage <= 0 {
		return nil
	}
	for _, run := range runs {
		if pct := run.Totals.Percentage(); pct < minCoverage {
			return fmt.Errorf("%s coverage %d%% is below minimum %d%%",
				run.Family.Nickname(), pct, minCoverage)
		}
	}
	return nil
}

func newReportCmd() *cobra.Command {
	var (
		catalogPath    string
		outputDir      string
		configPath     string
		historyDir     string
		format         string
		record         bool
		interactive    bool
		details        bool
		incompleteOnly bool
		minCoverage    int
	)

	cmd := &cobra.Command{
		Use:   "report [families...]",
		Short: "Write property coverage reports",
		Long: `Score the property catalog for each browser family and write
properties-<family>.html and properties-<family>.png into the
output directory. Families are Chrome, Edge, FF and FF-ESR; the
default is every family, or those listed in .parity.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(reportParams{
				ctx:            cmd.Context(),
				families:       args,
				catalogPath:    catalogPath,
				outputDir:      outputDir,
				configPath:     configPath,
				historyDir:     historyDir,
				format:         format,
				record:         record,
				interactive:    interactive,
				details:        details,
				incompleteOnly: incompleteOnly,
				minCoverage:    minCoverage,
				stdout:         cmd.OutOrStdout(),
				stderr:         cmd.ErrOrStderr(),
			})
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "",
		"property catalog YAML (default: built-in catalog)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "",
		"output directory (default: "+config.DefaultOutputDir+")")
	cmd.Flags().StringVar(&configPath, "config", "",
		"configuration file (default: "+config.DefaultFile+" if present)")
	cmd.Flags().StringVar(&historyDir, "history-dir", "",
		"history database directory (default: XDG data dir)")
	cmd.Flags().StringVar(&format, "format", "text",
		"summary format: text, json, or markdown")
	cmd.Flags().BoolVar(&record, "record", false,
		"record the runs in the history database")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing results")
	cmd.Flags().BoolVar(&details, "details", false,
		"list missing and erroneous names in text output")
	cmd.Flags().BoolVar(&incompleteOnly, "incomplete", false,
		"show only categories below full parity in text output")
	cmd.Flags().IntVar(&minCoverage, "min-coverage", 0,
		"fail if any family's coverage percentage is below this (0 = no limit)")

	return cmd
}

// historyParams holds the parsed flags for the history command.
type historyParams struct {
	ctx        context.Context
	family     string
	limit      int
	format     string
	configPath string
	historyDir string
	stdout     io.Writer
}

// runHistory is the extracted, testable body of the history command.
func runHistory(p historyParams) error {
	if p.format != "text" && p.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}
	if p.ctx == nil {
		p.ctx = context.Background()
	}

	var family browser.Family
	if p.family != "" {
		f, err := browser.Parse(p.family)
		if err != nil {
			return err
		}
		family = f
	}

	db, err := openHistory(p.configPath, p.historyDir)
	if errors.Is(err, history.ErrNoDatabase) {
		logger.Warn("no runs recorded yet; use 'parity report --record'")
		runs := []history.RunInfo{}
		if p.format == "json" {
			return writeJSON(p.stdout, runs)
		}
		return history.WriteRunsText(p.stdout, runs)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(p.ctx, family, p.limit)
	if err != nil {
		return err
	}
	if p.format == "json" {
		if runs == nil {
			runs = []history.RunInfo{}
		}
		return writeJSON(p.stdout, runs)
	}
	return history.WriteRunsText(p.stdout, runs)
}

// openHistory opens the existing history database named by the flag
// or the configuration.
func openHistory(configPath, dir string) (*history.DB, error) {
	if dir == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		dir = cfg.History.Dir
	}
	return history.Open(dir, history.Options{CreateIfNotExists: false, EnableWAL: true})
}

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		format     string
		configPath string
		historyDir string
	)

	cmd := &cobra.Command{
		Use:   "history [family]",
		Short: "List recorded report runs",
		Long: `List the runs stored by 'parity report --record', newest first,
optionally restricted to one browser family.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var family string
			if len(args) == 1 {
				family = args[0]
			}
			return runHistory(historyParams{
				ctx:        cmd.Context(),
				family:     family,
				limit:      limit,
				format:     format,
				configPath: configPath,
				historyDir: historyDir,
				stdout:     cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs (0 = all)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().StringVar(&configPath, "config", "", "configuration file")
	cmd.Flags().StringVar(&historyDir, "history-dir", "", "history database directory")

	return cmd
}

// compareParams holds the parsed flags for the compare command.
type compareParams struct {
	ctx              context.Context
	family           string
	withRun          int64
	format           string
	failOnRegression bool
	configPath       string
	historyDir       string
	stdout           io.Writer
}

// runCompare is the extracted, testable body of the compare command.
func runCompare(p compareParams) error {
	if p.format != "text" && p.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}
	if p.ctx == nil {
		p.ctx = context.Background()
	}

	family, err := browser.Parse(p.family)
	if err != nil {
		return err
	}

	db, err := openHistory(p.configPath, p.historyDir)
	if err != nil {
		return err
	}
	defer db.Close()

	prev, curr, err := selectRuns(p.ctx, db, family, p.withRun)
	if err != nil {
		return err
	}

	d := history.Compare(prev, curr)
	if p.format == "json" {
		err = history.WriteDiffJSON(p.stdout, d)
	} else {
		err = history.WriteDiffText(p.stdout, d)
	}
	if err != nil {
		return err
	}

	if p.failOnRegression && d.Regressions() > 0 {
		return fmt.Errorf("%s: %d regression(s)", family.Nickname(), d.Regressions())
	}
	return nil
}

// selectRuns picks the runs to compare: the latest run against run
// withRun, or the latest two runs of family.
func selectRuns(ctx context.Context, db *history.DB, family browser.Family, withRun int64) (score.Run, score.Run, error) {
	want := 2
	if withRun > 0 {
		want = 1
	}
	latest, err := db.Latest(ctx, family, want)
	if err != nil {
		return score.Run{}, score.Run{}, err
	}

	if withRun > 0 {
		if len(latest) == 0 {
			return score.Run{}, score.Run{}, fmt.Errorf("no recorded runs for %s", family.Nickname())
		}
		prev, info, err := db.LoadRun(ctx, withRun)
		if err != nil {
			return score.Run{}, score.Run{}, err
		}
		if info.Family != family {
			return score.Run{}, score.Run{}, fmt.Errorf("run %d is for %s, not %s",
				withRun, info.Family.Nickname(), family.Nickname())
		}
		return prev, latest[0], nil
	}

	if len(latest) < 2 {
		return score.Run{}, score.Run{}, fmt.Errorf("need at least two recorded runs for %s, have %d",
			family.Nickname(), len(latest))
	}
	return latest[1], latest[0], nil
}

func newCompareCmd() *cobra.Command {
	var (
		withRun          int64
		format           string
		failOnRegression bool
		configPath       string
		historyDir       string
	)

	cmd := &cobra.Command{
		Use:   "compare <family>",
		Short: "Compare recorded runs of a browser family",
		Long: `Show which properties became implemented, regressed, or turned
erroneous between the two most recent recorded runs of a family,
or between the most recent run and --with-run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(compareParams{
				ctx:              cmd.Context(),
				family:           args[0],
				withRun:          withRun,
				format:           format,
				failOnRegression: failOnRegression,
				configPath:       configPath,
				historyDir:       historyDir,
				stdout:           cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().Int64Var(&withRun, "with-run", 0, "compare the latest run against this run ID")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false,
		"exit with an error when any property regressed")
	cmd.Flags().StringVar(&configPath, "config", "", "configuration file")
	cmd.Flags().StringVar(&historyDir, "history-dir", "", "history database directory")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for parity report output",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of parity report --format=json output. Useful for
validating output or generating client types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}

func newInitCmd() *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .parity.yaml and catalog.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := scaffold.Run(scaffold.Options{
				TargetDir: dir,
				Force:     force,
				Version:   version,
				Stdout:    cmd.OutOrStdout(),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "target directory (default: current directory)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
