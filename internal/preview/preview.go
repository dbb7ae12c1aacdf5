package preview

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/structure"
)

// ErrNoDocument indicates Render was called without a decomposed document.
var ErrNoDocument = errors.New("no document to preview")

// Page is what gets previewed.
type Page struct {
	Document *structure.Document
	Result   *blocks.Result // parsed body, for heading numbers and diagrams
	// CoverDate replaces Document.Cover.Date when non-empty.
	CoverDate string
}

// Renderer produces preview pages. The zero value is not usable; call
// NewRenderer.
type Renderer struct {
	html   HTMLConverter
	styles assets.Loader
	style  string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyles sets where stylesheets are loaded from.
func WithStyles(l assets.Loader) Option {
	return func(r *Renderer) { r.styles = l }
}

// WithStyle selects a stylesheet by name.
func WithStyle(name string) Option {
	return func(r *Renderer) { r.style = name }
}

// WithHTMLConverter replaces the goldmark converter.
func WithHTMLConverter(c HTMLConverter) Option {
	return func(r *Renderer) { r.html = c }
}

// NewRenderer creates a Renderer using the embedded preview stylesheet.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		html:   NewGoldmarkConverter(""),
		styles: assets.NewEmbeddedLoader(),
		style:  assets.DefaultStyle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the page as a standalone HTML document.
func (r *Renderer) Render(ctx context.Context, p Page) ([]byte, error) {
	if p.Document == nil {
		return nil, ErrNoDocument
	}
	css, err := r.styles.LoadStyle(r.style)
	if err != nil {
		return nil, fmt.Errorf("loading preview style: %w", err)
	}

	fragment, err := r.html.ToHTML(ctx, Compose(p.Document, p.Result))
	if err != nil {
		return nil, err
	}

	title := p.Document.Cover.Title
	if title == "" {
		title = "Document"
	}
	page := fmt.Sprintf(pageTemplate, html.EscapeString(title), fragment)
	page = InjectCSS(page, css)

	cover := p.Document.Cover
	if p.CoverDate != "" {
		cover.Date = p.CoverDate
	}
	if page, err = InjectCover(page, cover); err != nil {
		return nil, err
	}
	if page, err = RewriteImagePaths(page, p.Document.BaseDir); err != nil {
		return nil, fmt.Errorf("rewriting image paths: %w", err)
	}
	return []byte(page), nil
}
