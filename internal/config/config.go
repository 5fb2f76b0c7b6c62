// Package config loads the optional .parity.yaml project file that
// sets defaults for the report command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/unbound-force/parity/internal/browser"
	"github.com/unbound-force/parity/internal/chart"
)

// AppName names the XDG data subdirectory.
const AppName = "parity"

// DefaultFile is the configuration file looked up in the working
// directory when no path is given.
const DefaultFile = ".parity.yaml"

// DefaultOutputDir is where reports are written unless configured.
const DefaultOutputDir = "build/parity"

// ErrConfigNotFound is returned when an explicitly named configuration
// file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Validation errors.
var (
	ErrNoOutputDir      = errors.New("output_dir must not be empty")
	ErrInvalidChartSize = errors.New("chart width and height must be positive")
	ErrNoHistoryDir     = errors.New("history.dir must not be empty when history is enabled")
)

// Config is the parsed project configuration.
type Config struct {
	// OutputDir receives the HTML and PNG report files.
	OutputDir string `yaml:"output_dir"`

	// Catalog is a catalog YAML path. Empty means the built-in catalog.
	Catalog string `yaml:"catalog"`

	// Families lists family nicknames to report. Empty means all.
	Families []string `yaml:"families"`

	Chart   ChartConfig   `yaml:"chart"`
	History HistoryConfig `yaml:"history"`
}

// ChartConfig sets the PNG canvas size.
type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// HistoryConfig controls run recording.
type HistoryConfig struct {
	// Enabled records every report run, as if --record were given.
	Enabled bool `yaml:"enabled"`

	// Dir holds the history database.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: DefaultOutputDir,
		Chart: ChartConfig{
			Width:  chart.DefaultWidth,
			Height: chart.DefaultHeight,
		},
		History: HistoryConfig{
			Dir: DataDir(),
		},
	}
}

// DataDir returns the XDG data directory for parity.
// On Linux: ~/.local/share/parity
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Load reads the configuration at path over the defaults. An empty
// path looks for DefaultFile in the working directory and returns the
// defaults when it is absent; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, fmt.Errorf("%s: %w", path, ErrConfigNotFound)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return ErrInvalidChartSize
	}
	if c.History.Enabled && c.History.Dir == "" {
		return ErrNoHistoryDir
	}
	if _, err := c.ParsedFamilies(); err != nil {
		return err
	}
	return nil
}

// ParsedFamilies resolves Families, defaulting to every family.
// Duplicates are dropped, keeping the first occurrence.
func (c *Config) ParsedFamilies() ([]browser.Family, error) {
	return ParseFamilies(c.Families)
}

// ParseFamilies parses family names, defaulting to every family when
// names is empty.
func ParseFamilies(names []string) ([]browser.Family, error) {
	if len(names) == 0 {
		return browser.All(), nil
	}
	seen := make(map[browser.Family]bool, len(names))
	out := make([]browser.Family, 0, len(names))
	for _, n := range names {
		f, err := browser.Parse(n)
		if err != nil {
			return nil, err
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// ChartOptions returns the chart rendering options.
func (c *Config) ChartOptions() chart.Options {
	return chart.Options{Width: c.Chart.Width, Height: c.Chart.Height}
}
