package docxbuild

import (
	"regexp"
	"strings"

	"github.com/alnah/go-md2docx/internal/structure"
	"github.com/alnah/go-md2docx/internal/tablelayout"
)

var (
	tocLink   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	tocMarker = regexp.MustCompile(`^(?:[-*+]|\d{1,9}[.)])\s+`)
)

func (b *builder) cover(c structure.Cover) {
	if c.Title == "" && c.Subtitle == "" && c.Version == "" && c.Author == "" &&
		c.Organization == "" && c.Date == "" && len(c.Extra) == 0 {
		return
	}

	for range 6 {
		b.doc.AddParagraph()
	}
	if c.Title != "" {
		p := b.doc.AddParagraph().Justification("center")
		text(p, c.Title).Bold().Size("56")
	}
	if c.Subtitle != "" {
		p := b.doc.AddParagraph().Justification("center")
		text(p, c.Subtitle).Size("32").Color(colorMuted)
	}
	b.doc.AddParagraph()
	b.doc.AddParagraph()

	for _, f := range []struct{ label, value string }{
		{"Version", c.Version},
		{"Author", c.Author},
		{"Organization", c.Organization},
		{"Date", c.Date},
	} {
		if f.value == "" {
			continue
		}
		p := b.doc.AddParagraph().Justification("center")
		text(p, f.label+": ").Bold().Size("24")
		text(p, f.value).Size("24")
	}
	for _, line := range c.Extra {
		p := b.doc.AddParagraph().Justification("center")
		text(p, line).Size("22").Color(colorMuted)
	}
	pageBreak(b.doc)
}

// TOCEntry cleans a raw table of contents line: links keep their text, list
// markers go, and indentation becomes a level (two spaces or a tab each).
func TOCEntry(line string) (text string, level int) {
	expanded := strings.ReplaceAll(line, "\t", "  ")
	indent := len(expanded) - len(strings.TrimLeft(expanded, " "))
	t := strings.TrimSpace(expanded)
	t = tocMarker.ReplaceAllString(t, "")
	t = tocLink.ReplaceAllString(t, "$1")
	t = strings.TrimSpace(strings.ReplaceAll(t, "**", ""))
	return t, indent / 2
}

func (b *builder) toc(title string, lines []string) {
	p := b.doc.AddParagraph()
	text(p, title).Bold().Size("32")

	for _, line := range lines {
		entry, level := TOCEntry(line)
		if entry == "" {
			continue
		}
		p := b.doc.AddParagraph()
		for range level {
			p.AddTab()
		}
		r := text(p, entry)
		if level == 0 {
			r.Bold()
		}
	}
	pageBreak(b.doc)
}

func (b *builder) revision(title string, rows [][]string) {
	p := b.doc.AddParagraph()
	text(p, title).Bold().Size("32")

	if len(rows) > 0 {
		spec := tablelayout.Spec{Headers: rows[0], Rows: normalizeRows(rows[1:], len(rows[0]))}
		spec.NoWrap = tablelayout.DetectNoWrap(spec.Headers, spec.Rows)
		b.table(spec, b.opts.Tables.Layout(spec))
	}
	pageBreak(b.doc)
}

// normalizeRows pads or truncates every row to n cells.
func normalizeRows(rows [][]string, n int) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, n)
		copy(row, r)
		if len(r) > n && n > 0 {
			row[n-1] = strings.Join(r[n-1:], " | ")
		}
		out[i] = row
	}
	return out
}
