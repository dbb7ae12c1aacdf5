package md2docx

import (
	"log/slog"
	"time"

	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/structure"
	"github.com/alnah/go-md2docx/internal/tablelayout"
)

// defaultTimeout bounds one conversion, diagrams included.
const defaultTimeout = 5 * time.Minute

// converterConfig holds everything options can set.
type converterConfig struct {
	timeout        time.Duration
	logger         *slog.Logger
	workers        int
	pageSize       string
	codeStyle      string
	markers        structure.Markers
	recordPrefixes []string
	tables         tablelayout.Engine
	pagination     blocks.PaginationPolicy
	toolchain      diagram.Toolchain
	cacheDir       string
	store          diagram.Store
	browser        bool
	stageTimeout   time.Duration
	assetPath      string
	previewStyle   string
	vector         []diagram.VectorStrategy
	raster         []diagram.RasterStrategy
	now            func() time.Time
}

func defaultConfig() converterConfig {
	return converterConfig{
		timeout:    defaultTimeout,
		logger:     slog.New(slog.DiscardHandler),
		markers:    structure.DefaultMarkers(),
		tables:     tablelayout.DefaultEngine(),
		pagination: blocks.DefaultPagination(),
		now:        time.Now,
	}
}

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout bounds each Convert call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) { c.cfg.timeout = d }
}

// WithLogger sets the structured logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}

// WithWorkers bounds concurrent diagram renders. Zero derives the bound
// from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Converter) { c.cfg.workers = n }
}

// WithPageSize selects PageSizeA4 (default) or PageSizeLetter.
func WithPageSize(size string) Option {
	return func(c *Converter) { c.cfg.pageSize = size }
}

// WithCodeStyle selects the chroma style for code blocks.
func WithCodeStyle(name string) Option {
	return func(c *Converter) { c.cfg.codeStyle = name }
}

// WithMarkers replaces the region markers. Empty lists keep the defaults.
func WithMarkers(m structure.Markers) Option {
	return func(c *Converter) { c.cfg.markers = m.WithDefaults() }
}

// WithRecordPrefixes replaces the record ID prefixes (REQ, TC, ...).
func WithRecordPrefixes(prefixes ...string) Option {
	return func(c *Converter) { c.cfg.recordPrefixes = prefixes }
}

// WithTableEngine replaces the column width engine.
func WithTableEngine(e tablelayout.Engine) Option {
	return func(c *Converter) { c.cfg.tables = e }
}

// WithPagination replaces the page-break rules.
func WithPagination(p blocks.PaginationPolicy) Option {
	return func(c *Converter) { c.cfg.pagination = p }
}

// WithToolchain configures the external diagram tool and flattener.
func WithToolchain(tc diagram.Toolchain) Option {
	return func(c *Converter) { c.cfg.toolchain = tc }
}

// WithStageTimeout bounds each external diagram tool invocation.
func WithStageTimeout(d time.Duration) Option {
	return func(c *Converter) { c.cfg.stageTimeout = d }
}

// WithCacheDir persists rendered diagrams under dir as {hash}.svg and
// {hash}.png.
func WithCacheDir(dir string) Option {
	return func(c *Converter) { c.cfg.cacheDir = dir }
}

// WithDiagramStore replaces the diagram cache. It takes precedence over
// WithCacheDir.
func WithDiagramStore(s diagram.Store) Option {
	return func(c *Converter) { c.cfg.store = s }
}

// WithBrowserRaster adds a headless-browser PNG fallback after the tool
// raster strategy.
func WithBrowserRaster(enabled bool) Option {
	return func(c *Converter) { c.cfg.browser = enabled }
}

// WithDiagramStrategies replaces the diagram strategy chains.
func WithDiagramStrategies(vector []diagram.VectorStrategy, raster []diagram.RasterStrategy) Option {
	return func(c *Converter) {
		c.cfg.vector = vector
		c.cfg.raster = raster
	}
}

// WithAssetPath overrides embedded assets with files from dir.
func WithAssetPath(dir string) Option {
	return func(c *Converter) { c.cfg.assetPath = dir }
}

// WithPreviewStyle selects the stylesheet of the HTML preview.
func WithPreviewStyle(name string) Option {
	return func(c *Converter) { c.cfg.previewStyle = name }
}
