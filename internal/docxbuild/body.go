package docxbuild

import (
	"bytes"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/tablelayout"
)

// EMU per pixel at 96 DPI.
const emuPerPixel = 9525

// headingSizes are run sizes in half-points by heading level.
var headingSizes = [...]string{1: "36", 2: "32", 3: "28", 4: "26", 5: "24", 6: "22"}

func (b *builder) block(blk blocks.Block) {
	defer func() { b.prev = blk }()
	switch v := blk.(type) {
	case *blocks.Heading:
		b.heading(v)
	case *blocks.Paragraph:
		b.paragraph(v)
	case *blocks.Table:
		b.table(v.Spec, v.Widths)
	case *blocks.CodeBlock:
		b.code(v)
	case *blocks.DiagramBlock:
		b.diagram(v)
	case *blocks.RecordBlock:
		b.record(v)
	case *blocks.Image:
		b.image(v)
	case *blocks.Placeholder:
		b.placeholder(v.Message)
	}
}

// HeadingText is the visible heading line, number first.
func HeadingText(h *blocks.Heading) string {
	if h.Number == "" {
		return h.Text
	}
	return h.Number + " " + h.Text
}

func (b *builder) heading(h *blocks.Heading) {
	p := b.doc.AddParagraph()
	if h.PageBreakBefore {
		p.AddPageBreaks()
	}
	level := max(1, min(h.Level, len(headingSizes)-1))
	text(p, HeadingText(h)).Bold().Size(headingSizes[level])
}

func (b *builder) paragraph(para *blocks.Paragraph) {
	p := b.doc.AddParagraph()
	if para.Marker != "" {
		for range para.Indent + 1 {
			p.AddTab()
		}
		text(p, para.Marker+" ")
	}
	spans(p, para.Spans)
}

func (b *builder) table(spec tablelayout.Spec, widths tablelayout.Widths) {
	cols := spec.Columns()
	if cols == 0 {
		return
	}
	colWidths := make([]int64, cols)
	var total int64
	for i := range colWidths {
		if i < len(widths) {
			colWidths[i] = int64(widths[i])
		}
		total += colWidths[i]
	}
	heights := make([]int64, len(spec.Rows)+1)
	t := b.doc.AddTableTwips(heights, colWidths, total, &docx.APITableBorderColors{
		Top: colorBorder, Left: colorBorder, Bottom: colorBorder, Right: colorBorder,
		InsideH: colorBorder, InsideV: colorBorder,
	})

	for j, h := range spec.Headers {
		cell := t.TableRows[0].TableCells[j].Shade("clear", "auto", colorHeaderFill)
		text(cell.AddParagraph(), blocks.Plain(h)).Bold()
	}
	for i, row := range spec.Rows {
		for j := 0; j < cols; j++ {
			var v string
			if j < len(row) {
				v = row[j]
			}
			spans(t.TableRows[i+1].TableCells[j].AddParagraph(), blocks.ParseInline(v))
		}
	}
	// Space after the table so consecutive tables do not merge.
	b.doc.AddParagraph()
}

func (b *builder) code(c *blocks.CodeBlock) {
	if c.Degraded {
		p := b.doc.AddParagraph()
		text(p, "Diagram could not be rendered; source shown below.").Italic().Color(colorMuted)
	}
	p := b.doc.AddParagraph()
	for _, run := range b.highlight(c.Language, c.Source) {
		r := p.AddText(run.Text).Font(fontCode, fontCJK, fontCode, "eastAsia").Size("18")
		if run.Color != "" {
			r.Color(run.Color)
		}
		if run.Bold {
			r.Bold()
		}
	}
}

func (b *builder) diagram(d *blocks.DiagramBlock) {
	if !d.Rendered.HasRaster() {
		// go-docx embeds PNG and JPEG only.
		msg := "Diagram available as SVG only"
		if d.Rendered.VectorPath != "" {
			msg += ": " + d.Rendered.VectorPath
		}
		b.placeholder(msg)
		b.code(&blocks.CodeBlock{Language: "mermaid", Source: d.Source})
		return
	}
	p := b.doc.AddParagraph().Justification("center")
	run, err := p.AddInlineDrawing(d.Rendered.Raster)
	if err != nil {
		b.log.Warn("diagram image rejected", "hash", d.Rendered.Hash, "error", err)
		b.placeholder("Diagram image could not be embedded")
		return
	}
	fitDrawing(run, d.Rendered.Raster, b.opts.DiagramScale)
}

// fitDrawing sizes an inline drawing to its pixel size at scale, capped at
// the printable width.
func fitDrawing(run *docx.Run, png []byte, scale float64) {
	w, h, ok := diagram.PNGSize(png)
	if !ok {
		return
	}
	if scale <= 0 {
		scale = diagram.DefaultScale
	}
	cx := int64(float64(w) / scale * emuPerPixel)
	if cx > docx.A4_EMU_MAX_WIDTH {
		cx = docx.A4_EMU_MAX_WIDTH
	}
	cy := cx * int64(h) / int64(w)
	for _, c := range run.Children {
		if d, ok := c.(*docx.Drawing); ok && d.Inline != nil {
			d.Inline.Size(cx, cy)
		}
	}
}

// recordLabelWidth is the label column width in twips.
const recordLabelWidth = 2200

// RecordRows returns the label/value rows of a record, skipping empty
// fields. Acceptance criteria become one bullet line each. The ID and Name
// rows are left out when titled is true, since the heading already shows
// them.
func RecordRows(r *blocks.RecordBlock, titled bool) [][2]string {
	var rows [][2]string
	add := func(label, value string) {
		if value != "" {
			rows = append(rows, [2]string{label, value})
		}
	}
	if !titled {
		add("ID", r.ID)
		add("Name", r.Name)
	}
	add("Statement", r.Statement)
	add("Rationale", r.Rationale)
	add("Priority", r.Priority)
	add("Safety Class", r.SafetyClass)
	if len(r.AcceptanceCriteria) > 0 {
		lines := make([]string, len(r.AcceptanceCriteria))
		for i, ac := range r.AcceptanceCriteria {
			lines[i] = "• " + ac
		}
		add("Acceptance Criteria", strings.Join(lines, "\n"))
	}
	add("Verification", r.Verification)
	for _, f := range r.Extra {
		add(f.Label, f.Value)
	}
	return rows
}

// titled reports whether the block written just before r is the heading
// naming it.
func (b *builder) titled(r *blocks.RecordBlock) bool {
	h, ok := b.prev.(*blocks.Heading)
	return ok && r.ID != "" && strings.Contains(h.Text, r.ID)
}

func (b *builder) record(r *blocks.RecordBlock) {
	rows := RecordRows(r, b.titled(r))
	if len(rows) == 0 {
		return
	}
	total := int64(b.opts.Tables.Total)
	widths := []int64{recordLabelWidth, total - recordLabelWidth}
	t := b.doc.AddTableTwips(make([]int64, len(rows)), widths, total, &docx.APITableBorderColors{
		Top: colorBorder, Left: colorBorder, Bottom: colorBorder, Right: colorBorder,
		InsideH: colorBorder, InsideV: colorBorder,
	})
	for i, row := range rows {
		label := t.TableRows[i].TableCells[0].Shade("clear", "auto", colorLabelFill)
		text(label.AddParagraph(), row[0]).Bold()
		value := t.TableRows[i].TableCells[1]
		for _, line := range strings.Split(row[1], "\n") {
			spans(value.AddParagraph(), blocks.ParseInline(line))
		}
	}
	b.doc.AddParagraph()
}

func (b *builder) image(img *blocks.Image) {
	if img.Remote {
		b.placeholder("Remote image not embedded: " + img.Path)
		return
	}
	data, err := os.ReadFile(img.Path) // #nosec G304 -- path resolved by the parser from the document
	if err != nil {
		b.placeholder("Image not readable: " + img.Path)
		return
	}
	if !isEmbeddable(data) {
		b.placeholder("Unsupported image format (PNG or JPEG only): " + img.Path)
		return
	}
	p := b.doc.AddParagraph().Justification("center")
	if _, err := p.AddInlineDrawing(data); err != nil {
		b.log.Warn("image rejected", "path", img.Path, "error", err)
		b.placeholder("Image could not be embedded: " + img.Path)
		return
	}
	if img.Alt != "" {
		caption := b.doc.AddParagraph().Justification("center")
		text(caption, img.Alt).Italic().Size("20").Color(colorMuted)
	}
}

func isEmbeddable(data []byte) bool {
	return bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) || bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF})
}
