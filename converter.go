package md2docx

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/dateutil"
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/docxbuild"
	"github.com/alnah/go-md2docx/internal/preview"
	"github.com/alnah/go-md2docx/internal/structure"
)

// Compile-time interface checks.
var (
	_ blocks.DiagramRenderer = (*diagram.Renderer)(nil)
	_ blocks.DiagramRenderer = prerendered{}
	_ diagram.RasterStrategy = (*diagram.BrowserRaster)(nil)
	_ diagram.Store          = (*diagram.FileStore)(nil)
)

// Converter compiles documents. Create with NewConverter and Close when
// done. A Converter is safe for concurrent use.
type Converter struct {
	cfg      converterConfig
	parser   *blocks.Parser
	diagrams *diagram.Renderer
	browser  *diagram.BrowserRaster // nil unless enabled
	preview  *preview.Renderer
}

// NewConverter creates a Converter. It fails when the asset path or cache
// directory cannot be used.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{cfg: defaultConfig()}
	for _, opt := range opts {
		opt(c)
	}

	resolver, err := assets.NewResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	if resolver.HasCustomLoader() {
		c.cfg.logger.Debug("asset overrides enabled", "path", c.cfg.assetPath)
	}

	store := c.cfg.store
	if store == nil && c.cfg.cacheDir != "" {
		fs, err := diagram.NewFileStore(c.cfg.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCacheDir, err)
		}
		store = fs
	}

	vector, raster := c.cfg.vector, c.cfg.raster
	if vector == nil && raster == nil {
		tc := c.cfg.toolchain
		if tc.Config == nil {
			if tc.Config, err = resolver.LoadDiagramConfig(assets.DefaultDiagramConfig); err != nil {
				return nil, fmt.Errorf("loading diagram config: %w", err)
			}
		}
		if tc.Runner == nil && c.cfg.stageTimeout > 0 {
			tc.Runner = diagram.ExecRunner{Timeout: c.cfg.stageTimeout}
		}
		vector, raster = diagram.DefaultStrategies(&tc)
		if c.cfg.browser {
			c.browser = diagram.NewBrowserRaster(c.cfg.stageTimeout)
			raster = append(raster, c.browser)
		}
	}

	dopts := []diagram.Option{
		diagram.WithVectorStrategies(vector...),
		diagram.WithRasterStrategies(raster...),
		diagram.WithLogger(c.cfg.logger),
		diagram.WithWorkers(ResolvePoolSize(c.cfg.workers)),
	}
	if store != nil {
		dopts = append(dopts, diagram.WithStore(store))
	}
	c.diagrams = diagram.NewRenderer(dopts...)

	c.parser = blocks.NewParser(c.diagrams, c.cfg.recordPrefixes)
	c.parser.Markers = c.cfg.markers
	c.parser.Tables = c.cfg.tables
	c.parser.Pagination = c.cfg.pagination
	c.parser.Logger = c.cfg.logger

	popts := []preview.Option{preview.WithStyles(resolver)}
	if c.cfg.previewStyle != "" {
		popts = append(popts, preview.WithStyle(c.cfg.previewStyle))
	}
	if c.cfg.codeStyle != "" {
		popts = append(popts, preview.WithHTMLConverter(preview.NewGoldmarkConverter(c.cfg.codeStyle)))
	}
	c.preview = preview.NewRenderer(popts...)

	return c, nil
}

// Convert compiles one document. Content problems never fail a conversion:
// they become placeholders and diagnostics. When the body has diagrams and
// none rendered, the complete result is returned with ErrDiagramToolchain.
// Internal panics are recovered into errors.
func (c *Converter) Convert(ctx context.Context, in Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if strings.TrimSpace(in.Markdown) == "" {
		return nil, ErrEmptyMarkdown
	}
	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}
	log := c.cfg.logger

	doc := structure.Decompose(structure.Raw{Text: in.Markdown, BaseDir: in.BaseDir}, c.cfg.markers)
	log.Debug("document decomposed",
		"cover", doc.Consumed.Cover, "toc", doc.Consumed.TOC,
		"revision", doc.Consumed.Revision, "body", doc.Consumed.Body)

	coverDate := doc.Cover.Date
	if in.CoverDate != "" {
		coverDate = in.CoverDate
	}
	if coverDate, err = dateutil.Resolve(coverDate, c.cfg.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoverDate, err)
	}

	// Render every diagram up front so the sequential parse only reads
	// results.
	sources := c.parser.DiagramSources(doc.BodyLines)
	parser := *c.parser
	if len(sources) > 0 {
		rendered := c.diagrams.RenderAll(ctx, sources)
		parser.Diagrams = newPrerendered(sources, rendered, c.diagrams)
	}

	parsed, err := parser.Parse(ctx, doc.BodyLines, doc.BaseDir)
	if err != nil {
		return nil, err
	}

	data, err := docxbuild.Render(docxbuild.Input{
		Structure: doc,
		Blocks:    parsed.Blocks,
		CoverDate: coverDate,
	}, docxbuild.Options{
		PageSize:     c.cfg.pageSize,
		CodeStyle:    c.cfg.codeStyle,
		Tables:       c.cfg.tables,
		DiagramScale: c.cfg.toolchain.Scale,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDOCXGeneration, err)
	}

	res := &Result{
		DOCX:        data,
		Diagnostics: parsed.Diagnostics,
		Regions:     doc.Consumed,
	}
	res.Diagrams, res.Headings = summarize(parsed.Blocks)

	if in.HTML {
		page, err := c.preview.Render(ctx, preview.Page{Document: doc, Result: parsed, CoverDate: coverDate})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPreview, err)
		}
		res.HTML = page
	}

	if s := res.Diagrams; s.Total > 0 && s.Rendered == 0 {
		return res, fmt.Errorf("%w: none of %d diagrams rendered", ErrDiagramToolchain, s.Total)
	}
	return res, nil
}

// Close releases the headless browser, if one was started.
func (c *Converter) Close() error {
	if c.browser != nil {
		return c.browser.Close()
	}
	return nil
}

func summarize(bs []blocks.Block) (DiagramStats, int) {
	var (
		s        DiagramStats
		headings int
	)
	for _, b := range bs {
		switch v := b.(type) {
		case *blocks.DiagramBlock:
			s.Total++
			s.Rendered++
		case *blocks.CodeBlock:
			if v.Degraded {
				s.Total++
				s.Degraded++
			}
		case *blocks.Heading:
			if v.Numbered {
				headings++
			}
		}
	}
	return s, headings
}

// prerendered answers diagram lookups from a RenderAll batch. Sources
// outside the batch go to the live renderer.
type prerendered struct {
	results map[string]diagram.Rendered
	live    blocks.DiagramRenderer
}

func newPrerendered(sources []string, rendered []diagram.Rendered, live blocks.DiagramRenderer) prerendered {
	m := make(map[string]diagram.Rendered, len(sources))
	for i, src := range sources {
		m[src] = rendered[i]
	}
	return prerendered{results: m, live: live}
}

func (p prerendered) Render(ctx context.Context, source string) diagram.Rendered {
	if r, ok := p.results[source]; ok {
		return r
	}
	return p.live.Render(ctx, source)
}
