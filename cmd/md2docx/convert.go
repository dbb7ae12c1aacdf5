package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/dateutil"
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/hints"
	"github.com/alnah/go-md2docx/internal/structure"
	"github.com/alnah/go-md2docx/internal/tablelayout"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidTimeout     = errors.New("invalid timeout")
)

// runConvertCmd parses convert flags, builds the pool and runs the batch.
func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	cfg, err := loadConfig(flags, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, describeError(err, nil, flags.common.config))
		return exitCodeFor(err)
	}

	logger := newLogger(env.Stderr, flags.common)
	opts, err := buildOptions(flags, cfg, logger)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	size := md2docx.ResolvePoolSize(cfg.Workers)
	logger.Debug("converter pool", "size", size)
	pool := env.NewPool(size, opts)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converter pool", "error", err)
		}
	}()

	err = runConvert(ctx, positional, flags, cfg, pool, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, describeError(err, cfg, flags.common.config))
	}
	return exitCodeFor(err)
}

// loadConfig loads the config file, overlays the environment, then the
// command-line flags, and validates the result.
func loadConfig(flags *convertFlags, env *Environment) (*config.Config, error) {
	if err := validateWorkers(flags.workers); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		loaded, err := config.LoadConfig(flags.common.config)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv(env.Getenv)

	if err := mergeFlags(flags, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) error {
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.html {
		cfg.Output.HTML = true
	}

	// Diagram flags
	if flags.diagram.tool != "" {
		cfg.Diagram.Tool = flags.diagram.tool
	}
	if flags.diagram.flattener != "" {
		cfg.Diagram.Flattener = flags.diagram.flattener
	}
	if flags.diagram.timeout != "" {
		d, err := parseDuration("--diagram-timeout", flags.diagram.timeout)
		if err != nil {
			return err
		}
		cfg.Diagram.Timeout = d
	}
	if flags.diagram.cacheDir != "" {
		cfg.Diagram.CacheDir = flags.diagram.cacheDir
	}
	if flags.diagram.noCache {
		cfg.Diagram.CacheDir = ""
	}
	if flags.diagram.browser {
		cfg.Diagram.Browser = true
	}

	// Document flags
	if flags.document.pageSize != "" {
		size := strings.ToLower(flags.document.pageSize)
		if size != md2docx.PageSizeA4 && size != md2docx.PageSizeLetter {
			return fmt.Errorf("%w: %q (must be a4 or letter)", ErrInvalidPageSize, flags.document.pageSize)
		}
		cfg.Document.PageSize = size
	}
	if flags.document.date != "" {
		cfg.Document.Date = flags.document.date
	}

	// Asset flags
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}
	if flags.assets.style != "" {
		cfg.Assets.Style = flags.assets.style
	}

	// Disable flags
	off := false
	if flags.pagination.noSectionBreaks {
		cfg.Pagination.SectionBreaks = &off
	}
	if flags.pagination.noOrphanGroups {
		cfg.Pagination.OrphanGroups = &off
	}
	if flags.pagination.noStranded {
		cfg.Pagination.Stranded = &off
	}
	if flags.pagination.noSuppression {
		cfg.Pagination.Suppression = &off
	}
	return nil
}

// parseDuration parses a positive duration flag value.
func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidTimeout, name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidTimeout, name, value)
	}
	return d, nil
}

// buildOptions translates the merged config into converter options.
func buildOptions(flags *convertFlags, cfg *config.Config, logger *slog.Logger) ([]md2docx.Option, error) {
	opts := []md2docx.Option{
		md2docx.WithLogger(logger),
		md2docx.WithMarkers(structure.Markers{
			TOC:        cfg.Markers.TOC,
			Revision:   cfg.Markers.Revision,
			ForProject: cfg.Markers.ForProject,
		}),
		md2docx.WithTableEngine(tableEngine(cfg.Table)),
		md2docx.WithPagination(blocks.PaginationPolicy{
			SectionBreaks: config.Enabled(cfg.Pagination.SectionBreaks),
			OrphanGroups:  config.Enabled(cfg.Pagination.OrphanGroups),
			Stranded:      config.Enabled(cfg.Pagination.Stranded),
			Suppression:   config.Enabled(cfg.Pagination.Suppression),
		}),
		md2docx.WithToolchain(diagram.Toolchain{
			Tool:          cfg.Diagram.Tool,
			Flattener:     cfg.Diagram.Flattener,
			FlattenerArgs: cfg.Diagram.FlattenerArgs,
			Width:         cfg.Diagram.Width,
			BlockWidth:    cfg.Diagram.BlockWidth,
			Scale:         cfg.Diagram.Scale,
		}),
		md2docx.WithStageTimeout(cfg.Diagram.Timeout),
		md2docx.WithCacheDir(cfg.Diagram.CacheDir),
		md2docx.WithBrowserRaster(cfg.Diagram.Browser),
		md2docx.WithPageSize(cfg.Document.PageSize),
		md2docx.WithAssetPath(cfg.Assets.BasePath),
		md2docx.WithPreviewStyle(cfg.Assets.Style),
		// Documents already run in parallel, one per pooled converter.
		md2docx.WithWorkers(1),
	}
	if len(cfg.Markers.RecordPrefixes) > 0 {
		opts = append(opts, md2docx.WithRecordPrefixes(cfg.Markers.RecordPrefixes...))
	}
	if flags.document.codeStyle != "" {
		opts = append(opts, md2docx.WithCodeStyle(flags.document.codeStyle))
	}
	if flags.timeout != "" {
		d, err := parseDuration("--timeout", flags.timeout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, md2docx.WithTimeout(d))
	}
	return opts, nil
}

// tableEngine overlays the configured widths on the stock engine. Zero
// values keep the default.
func tableEngine(tc config.TableConfig) tablelayout.Engine {
	e := tablelayout.DefaultEngine()
	if tc.TotalWidth > 0 {
		e.Total = tc.TotalWidth
	}
	e.Bands.Wide = overlayBand(e.Bands.Wide, tc.Wide)
	e.Bands.Medium = overlayBand(e.Bands.Medium, tc.Medium)
	e.Bands.Narrow = overlayBand(e.Bands.Narrow, tc.Narrow)
	return e
}

func overlayBand(b tablelayout.Band, bc config.BandConfig) tablelayout.Band {
	if bc.Min > 0 {
		b.Min = bc.Min
	}
	if bc.Max > 0 {
		b.Max = bc.Max
	}
	if bc.IDMin > 0 {
		b.IDMin = bc.IDMin
	}
	return b
}

// newLogger writes text logs to w: errors only when quiet, debug when
// verbose, warnings otherwise.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case f.quiet:
		level = slog.LevelError
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// resolveCoverDate resolves "auto" once for the whole batch.
func resolveCoverDate(date string, now func() time.Time) (string, error) {
	if date == "" {
		return "", nil
	}
	resolved, err := dateutil.Resolve(date, now())
	if err != nil {
		return "", fmt.Errorf("invalid date: %w", err)
	}
	return resolved, nil
}

// describeError appends an actionable hint to errors that have one.
// cfg may be nil when loading the configuration failed.
func describeError(err error, cfg *config.Config, configName string) string {
	msg := err.Error()
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return msg + hints.ForConfigNotFound(config.SearchPaths(configName))
	case errors.Is(err, diagram.ErrBrowserConnect):
		return msg + hints.ForBrowserConnect()
	case errors.Is(err, md2docx.ErrDiagramToolchain):
		return msg + hints.ForDiagramToolchain(missingTools(cfg))
	case errors.Is(err, context.DeadlineExceeded):
		return msg + hints.ForTimeout()
	}
	return msg
}

// missingTools lists the default names of diagram tools not found on PATH.
func missingTools(cfg *config.Config) []string {
	if cfg == nil {
		return nil
	}
	var missing []string
	for _, t := range []struct{ configured, name string }{
		{cfg.Diagram.Tool, diagram.DefaultTool},
		{cfg.Diagram.Flattener, diagram.DefaultFlattener},
	} {
		bin := t.configured
		if bin == "" {
			bin = t.name
		}
		if _, err := diagram.LookPath(bin); err != nil {
			missing = append(missing, t.name)
		}
	}
	return missing
}
