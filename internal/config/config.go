package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrOutOfRange      = errors.New("value out of range")
)

// AppDir is the directory name under the user config dir.
const AppDir = "go-md2docx"

// Field length limits.
const (
	MaxPathLength    = 4096
	MaxMarkerLength  = 100
	MaxMarkers       = 32
	MaxPrefixLength  = 8
	MaxDateLength    = 60 // "auto:MMMM D, YYYY" or a literal date
	MaxToolArgs      = 16
	MaxPageSizeLen   = 10
	MaxWorkers       = 64
	MaxDiagramWidth  = 8000
	MaxTableTotal    = 20000
	MaxDiagramScale  = 8.0
	MaxStageDuration = 10 * time.Minute
)

// Config holds all configuration for document generation.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Diagram    DiagramConfig    `yaml:"diagram"`
	Table      TableConfig      `yaml:"table"`
	Pagination PaginationConfig `yaml:"pagination"`
	Markers    MarkersConfig    `yaml:"markers"`
	Document   DocumentConfig   `yaml:"document"`
	Assets     AssetsConfig     `yaml:"assets"`
	Workers    int              `yaml:"workers"` // 0 = derived from GOMAXPROCS
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = next to the source
	HTML       bool   `yaml:"html"`       // Also write an HTML preview
}

// DiagramConfig drives the external diagram toolchain.
type DiagramConfig struct {
	Tool          string        `yaml:"tool"`          // mmdc binary
	Flattener     string        `yaml:"flattener"`     // rsvg-convert binary
	FlattenerArgs []string      `yaml:"flattenerArgs"` // Replaces the default "-f svg"
	Timeout       time.Duration `yaml:"timeout"`       // Per tool invocation
	Width         int           `yaml:"width"`         // Raster width, px
	BlockWidth    int           `yaml:"blockWidth"`    // Raster width for block diagrams
	Scale         float64       `yaml:"scale"`
	CacheDir      string        `yaml:"cacheDir"` // Empty = no persistent cache
	Browser       bool          `yaml:"browser"`  // Enable the headless-browser raster fallback
}

// TableConfig controls column width allocation, in twips.
type TableConfig struct {
	TotalWidth int        `yaml:"totalWidth"`
	Wide       BandConfig `yaml:"wide"`   // <= 2 columns
	Medium     BandConfig `yaml:"medium"` // 3-4 columns
	Narrow     BandConfig `yaml:"narrow"` // >= 5 columns
}

// BandConfig bounds the width of a single column.
type BandConfig struct {
	Min   int `yaml:"min"`
	Max   int `yaml:"max"`
	IDMin int `yaml:"idMin"`
}

// PaginationConfig toggles the page-break heuristics. Nil means enabled.
type PaginationConfig struct {
	SectionBreaks *bool `yaml:"sectionBreaks"`
	OrphanGroups  *bool `yaml:"orphanGroups"`
	Stranded      *bool `yaml:"stranded"`
	Suppression   *bool `yaml:"suppression"`
}

// MarkersConfig overrides the recognised region markers.
type MarkersConfig struct {
	TOC            []string `yaml:"toc"`
	Revision       []string `yaml:"revision"`
	ForProject     []string `yaml:"forProject"`
	RecordPrefixes []string `yaml:"recordPrefixes"`
}

// DocumentConfig defines output document options.
type DocumentConfig struct {
	PageSize string `yaml:"pageSize"` // "a4" (default) or "letter"
	Date     string `yaml:"date"`     // Cover date override; "auto" resolves to today
}

// AssetsConfig points at an override directory for the preview stylesheet
// and the diagram tool configuration.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = embedded assets only
	Style    string `yaml:"style"`    // Preview stylesheet name
}

// Enabled reports whether a pagination toggle is on.
func Enabled(b *bool) bool {
	return b == nil || *b
}

// Validate checks field lengths and numeric bounds.
// Called by LoadConfig, but available for callers building a Config by hand.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"diagram.tool", c.Diagram.Tool, MaxPathLength},
		{"diagram.flattener", c.Diagram.Flattener, MaxPathLength},
		{"diagram.cacheDir", c.Diagram.CacheDir, MaxPathLength},
		{"document.pageSize", c.Document.PageSize, MaxPageSizeLen},
		{"document.date", c.Document.Date, MaxDateLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"assets.style", c.Assets.Style, MaxMarkerLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if len(c.Diagram.FlattenerArgs) > MaxToolArgs {
		return fmt.Errorf("%w: diagram.flattenerArgs has %d entries (max %d)",
			ErrOutOfRange, len(c.Diagram.FlattenerArgs), MaxToolArgs)
	}

	if err := validateRange("workers", c.Workers, 0, MaxWorkers); err != nil {
		return err
	}
	if err := validateRange("diagram.width", c.Diagram.Width, 0, MaxDiagramWidth); err != nil {
		return err
	}
	if err := validateRange("diagram.blockWidth", c.Diagram.BlockWidth, 0, MaxDiagramWidth); err != nil {
		return err
	}
	if c.Diagram.Scale < 0 || c.Diagram.Scale > MaxDiagramScale {
		return fmt.Errorf("%w: diagram.scale must be between 0 and %.0f, got %.2f",
			ErrOutOfRange, MaxDiagramScale, c.Diagram.Scale)
	}
	if c.Diagram.Timeout < 0 || c.Diagram.Timeout > MaxStageDuration {
		return fmt.Errorf("%w: diagram.timeout must be between 0 and %s, got %s",
			ErrOutOfRange, MaxStageDuration, c.Diagram.Timeout)
	}

	if err := validateRange("table.totalWidth", c.Table.TotalWidth, 0, MaxTableTotal); err != nil {
		return err
	}
	for name, b := range map[string]BandConfig{
		"table.wide": c.Table.Wide, "table.medium": c.Table.Medium, "table.narrow": c.Table.Narrow,
	} {
		if b.Min < 0 || b.Max < 0 || b.IDMin < 0 {
			return fmt.Errorf("%w: %s: widths must not be negative", ErrOutOfRange, name)
		}
		if b.Max != 0 && b.Min > b.Max {
			return fmt.Errorf("%w: %s: min %d exceeds max %d", ErrOutOfRange, name, b.Min, b.Max)
		}
	}

	switch strings.ToLower(c.Document.PageSize) {
	case "", "a4", "letter":
	default:
		return fmt.Errorf("document.pageSize: invalid value %q (must be a4 or letter)", c.Document.PageSize)
	}

	for name, list := range map[string][]string{
		"markers.toc": c.Markers.TOC, "markers.revision": c.Markers.Revision,
		"markers.forProject": c.Markers.ForProject,
	} {
		if err := validateList(name, list, MaxMarkerLength); err != nil {
			return err
		}
	}
	if err := validateList("markers.recordPrefixes", c.Markers.RecordPrefixes, MaxPrefixLength); err != nil {
		return err
	}
	for i, p := range c.Markers.RecordPrefixes {
		if p == "" || strings.ToUpper(p) != p || strings.ContainsAny(p, "- \t") {
			return fmt.Errorf("markers.recordPrefixes[%d]: invalid prefix %q (uppercase, no dashes)", i, p)
		}
	}

	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateRange(fieldName string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrOutOfRange, fieldName, lo, hi, v)
	}
	return nil
}

func validateList(fieldName string, list []string, maxLength int) error {
	if len(list) > MaxMarkers {
		return fmt.Errorf("%w: %s has %d entries (max %d)", ErrOutOfRange, fieldName, len(list), MaxMarkers)
	}
	for i, v := range list {
		if err := validateFieldLength(fmt.Sprintf("%s[%d]", fieldName, i), v, maxLength); err != nil {
			return err
		}
	}
	return nil
}

// DefaultConfig returns a configuration where every zero value means
// "use the library default".
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is read directly; otherwise the name is
// searched as ./name.yaml, ./name.yml, then under the user config directory.
// A missing file is an error: there is no silent fallback.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.ReadFileStrict(configPath, &cfg); err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		case errors.Is(err, yamlutil.ErrNilData):
			return DefaultConfig(), nil
		default:
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SearchPaths lists the candidate files for a config name, in search order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, 2*len(extensions))
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppDir, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// Environment variables that override the diagram toolchain settings.
const (
	EnvTool      = "MD2DOCX_MMDC"
	EnvFlattener = "MD2DOCX_FLATTENER"
	EnvCacheDir  = "MD2DOCX_CACHE_DIR"
)

// ApplyEnv overlays non-empty environment values onto c.
// getenv is os.Getenv outside of tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvTool); v != "" {
		c.Diagram.Tool = v
	}
	if v := getenv(EnvFlattener); v != "" {
		c.Diagram.Flattener = v
	}
	if v := getenv(EnvCacheDir); v != "" {
		c.Diagram.CacheDir = v
	}
}
