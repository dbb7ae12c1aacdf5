// Package docxbuild writes a decomposed document and its body blocks as a
// DOCX file using go-docx.
//
// Layout is fixed: an optional cover page, table of contents page and
// revision history page, each ending with a page break, followed by the
// body. Headings are bold runs sized by level since the default template
// carries no heading styles.
package docxbuild

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/structure"
	"github.com/alnah/go-md2docx/internal/tablelayout"
)

// Page sizes.
const (
	PageA4     = "a4"
	PageLetter = "letter"
)

// ErrUnknownPageSize indicates a page size other than PageA4 or PageLetter.
var ErrUnknownPageSize = errors.New("unknown page size")

// Colours, as RRGGBB without '#'.
const (
	colorHeaderFill = "D9E2F3"
	colorLabelFill  = "F2F2F2"
	colorCodeFill   = "F6F8FA"
	colorError      = "C00000"
	colorMuted      = "666666"
	colorBorder     = "#BFBFBF"
)

// Fonts.
const (
	fontBody = "Arial"
	fontCJK  = "SimSun"
	fontCode = "Consolas"
)

// Input is what the builder renders.
type Input struct {
	Structure *structure.Document
	Blocks    []blocks.Block
	// CoverDate replaces Structure.Cover.Date when non-empty.
	CoverDate string
}

// Options configures the builder. The zero value is usable.
type Options struct {
	PageSize  string             // PageA4 (default) or PageLetter
	CodeStyle string             // chroma style name, default "github"
	Tables    tablelayout.Engine // for the revision history table
	// DiagramScale is the scale diagrams were rasterized at; images are
	// shown at their unscaled pixel size.
	DiagramScale float64
	Logger       *slog.Logger
}

// builder carries the state of one Build call.
type builder struct {
	opts Options
	doc  *docx.Docx
	log  *slog.Logger
	prev blocks.Block // last body block written
}

// Build lays out in as a go-docx document.
func Build(in Input, opts Options) (*docx.Docx, error) {
	doc := docx.New().WithDefaultTheme()
	switch strings.ToLower(opts.PageSize) {
	case "", PageA4:
		doc = doc.WithA4Page()
	case PageLetter:
		doc.Document.Body.Items = append(doc.Document.Body.Items, &docx.SectPr{
			PgSz: &docx.PgSz{W: 12240, H: 15840},
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPageSize, opts.PageSize)
	}
	if opts.Tables.Total == 0 {
		opts.Tables = tablelayout.DefaultEngine()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	b := &builder{opts: opts, doc: doc, log: log}
	if s := in.Structure; s != nil {
		cover := s.Cover
		if in.CoverDate != "" {
			cover.Date = in.CoverDate
		}
		b.cover(cover)
		if s.HasTOC() {
			b.toc(s.TOCTitle, s.TOCLines)
		}
		if s.HasRevision() {
			b.revision(s.RevisionTitle, s.RevisionRows)
		}
	}
	for _, blk := range in.Blocks {
		b.block(blk)
	}
	return doc, nil
}

// Render builds in and returns the DOCX bytes.
func Render(in Input, opts Options) ([]byte, error) {
	doc, err := Build(in, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing docx: %w", err)
	}
	return buf.Bytes(), nil
}

// Write builds in and writes the DOCX to w.
func Write(w io.Writer, in Input, opts Options) error {
	data, err := Render(in, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// text adds a run in the body font.
func text(p *docx.Paragraph, s string) *docx.Run {
	return p.AddText(s).Font(fontBody, fontCJK, fontBody, "eastAsia")
}

func pageBreak(doc *docx.Docx) {
	doc.AddParagraph().AddPageBreaks()
}

// spans adds inline spans to p.
func spans(p *docx.Paragraph, ss []blocks.Span) {
	for _, s := range ss {
		switch s.Kind {
		case blocks.SpanStrong:
			text(p, s.Text).Bold()
		case blocks.SpanCode:
			p.AddText(s.Text).Font(fontCode, fontCJK, fontCode, "eastAsia").Shade("clear", "auto", colorCodeFill)
		default:
			text(p, s.Text)
		}
	}
}

// placeholder writes a visible error line.
func (b *builder) placeholder(msg string) {
	p := b.doc.AddParagraph()
	text(p, "[!] "+msg).Bold().Color(colorError)
}
