package preview

import (
	"encoding/base64"
	"strings"

	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/structure"
)

// Compose rebuilds Markdown for the TOC and revision regions and the body.
// Body headings gain the numbers assigned by the parser, and diagram fences
// whose render succeeded become images. The cover is injected separately.
func Compose(doc *structure.Document, res *blocks.Result) string {
	var sb strings.Builder
	if doc.HasTOC() {
		sb.WriteString("# " + doc.TOCTitle + "\n\n")
		for _, line := range doc.TOCLines {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}
	if doc.HasRevision() && len(doc.RevisionRows) > 0 {
		sb.WriteString("# " + doc.RevisionTitle + "\n\n")
		writeTable(&sb, doc.RevisionRows)
		sb.WriteString("\n")
	}
	sb.WriteString(composeBody(doc.BodyLines, res))
	return sb.String()
}

func writeTable(sb *strings.Builder, rows [][]string) {
	n := len(rows[0])
	for i, row := range rows {
		cells := make([]string, n)
		copy(cells, row)
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", n) + "\n")
		}
	}
}

// composeBody walks the body once. Headings are matched against the parsed
// headings in order; a heading line whose text does not match the next
// parsed heading is left as written.
func composeBody(lines []string, res *blocks.Result) string {
	var (
		headings []*blocks.Heading
		diagrams []*blocks.DiagramBlock
	)
	if res != nil {
		for _, b := range res.Blocks {
			switch v := b.(type) {
			case *blocks.Heading:
				headings = append(headings, v)
			case *blocks.DiagramBlock:
				diagrams = append(diagrams, v)
			}
		}
	}

	var sb strings.Builder
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			end, source := fenceEnd(lines, i)
			lang := strings.Fields(strings.ToLower(strings.TrimLeft(trimmed, trimmed[:1])))
			if len(lang) > 0 && lang[0] == blocks.DefaultDiagramLanguage && len(diagrams) > 0 && diagrams[0].Source == source {
				if img := diagramImage(diagrams[0]); img != "" {
					sb.WriteString(img + "\n")
					diagrams = diagrams[1:]
					i = end
					continue
				}
				diagrams = diagrams[1:]
			}
			for j := i; j <= end && j < len(lines); j++ {
				sb.WriteString(lines[j] + "\n")
			}
			i = end
			continue
		}

		if level, text, ok := structure.ParseHeading(trimmed); ok && len(headings) > 0 && matches(headings[0], text) {
			h := headings[0]
			headings = headings[1:]
			if h.Number != "" {
				text = h.Number + " " + h.Text
			}
			sb.WriteString(strings.Repeat("#", level) + " " + text + "\n")
			continue
		}
		sb.WriteString(lines[i] + "\n")
	}
	return sb.String()
}

func matches(h *blocks.Heading, text string) bool {
	return h.Text == text || h.Text == structure.StripNumberPrefix(text)
}

// fenceEnd returns the index of the closing fence (or the last line) and the
// fenced source.
func fenceEnd(lines []string, i int) (int, string) {
	open := strings.TrimSpace(lines[i])
	marker := open[:3]
	var body []string
	j := i + 1
	for ; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if strings.HasPrefix(t, marker) && strings.Trim(t, marker[:1]) == "" {
			return j, strings.Join(body, "\n")
		}
		body = append(body, lines[j])
	}
	return len(lines) - 1, strings.Join(body, "\n")
}

// diagramImage returns an image reference for a rendered diagram: the PNG
// inline as a data URI, else the cached SVG path. Empty when neither exists.
func diagramImage(d *blocks.DiagramBlock) string {
	r := d.Rendered
	switch {
	case r.HasRaster():
		return "![Diagram](data:image/png;base64," + base64.StdEncoding.EncodeToString(r.Raster) + ")"
	case r.VectorPath != "":
		return "![Diagram](<" + r.VectorPath + ">)"
	}
	return ""
}
