package docxbuild

// Notes:
// - Documents are inspected through go-docx's own String() renderings of
//   paragraphs and tables rather than by unzipping XML.

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/structure"
	"github.com/alnah/go-md2docx/internal/tablelayout"
)

func dump(doc *docx.Docx) string {
	var sb strings.Builder
	for _, it := range doc.Document.Body.Items {
		switch v := it.(type) {
		case *docx.Paragraph:
			sb.WriteString(v.String())
			sb.WriteByte('\n')
		case *docx.Table:
			sb.WriteString(v.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func mustContain(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("document missing %q\n---\n%s", w, got)
		}
	}
}

// ---------------------------------------------------------------------------
// TestBuild - Front matter and body
// ---------------------------------------------------------------------------

func TestBuild_FrontMatter(t *testing.T) {
	t.Parallel()

	doc, err := Build(Input{
		Structure: &structure.Document{
			Cover: structure.Cover{
				Title: "Payment Gateway", Subtitle: "For project: Atlas",
				Version: "1.2", Author: "QA Team", Date: "auto", Extra: []string{"Confidential"},
			},
			TOCTitle:      "Table of Contents",
			TOCLines:      []string{"- [1. Introduction](#1-introduction)", "  - [1.1 Purpose](#purpose)", ""},
			RevisionTitle: "Revision History",
			RevisionRows:  [][]string{{"Version", "Date", "Change"}, {"1.0", "2026-01-02", "Initial"}, {"1.1"}},
		},
		CoverDate: "2026-10-19",
	}, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := dump(doc)
	mustContain(t, got,
		"Payment Gateway", "For project: Atlas", "Version: 1.2", "Author: QA Team",
		"Date: 2026-10-19", "Confidential",
		"Table of Contents", "1. Introduction\n", "\t1.1 Purpose",
		"Revision History", "| Version | Date | Change |", "| 1.0 | 2026-01-02 | Initial |",
	)
	if strings.Contains(got, "Date: auto") {
		t.Error("CoverDate did not replace the cover date")
	}
}

func TestBuild_Body(t *testing.T) {
	t.Parallel()

	spec := tablelayout.Spec{Headers: []string{"ID", "**Name**"}, Rows: [][]string{{"SRS-AUTH-001", "Login `api`"}}}
	body := []blocks.Block{
		&blocks.Heading{Level: 2, Text: "Introduction", Number: "1", Numbered: true},
		&blocks.Paragraph{Spans: blocks.ParseInline("Plain and **bold**")},
		&blocks.Paragraph{Spans: blocks.ParseInline("item"), Marker: "•", Indent: 1},
		&blocks.Heading{Level: 3, Text: "Table", Number: "1.1", Numbered: true, PageBreakBefore: true},
		&blocks.Table{Spec: spec, Widths: tablelayout.DefaultEngine().Layout(spec)},
		&blocks.Heading{Level: 5, Text: "REQ-FUNC-001 User Login"},
		&blocks.RecordBlock{ID: "REQ-FUNC-001", Name: "User Login", Statement: "Authenticate.", AcceptanceCriteria: []string{"a", "b"}},
		&blocks.CodeBlock{Language: "go", Source: "package main\n"},
		&blocks.CodeBlock{Language: "mermaid", Source: "graph TD", Degraded: true},
		&blocks.Placeholder{Message: "Image not found: x.png"},
		&blocks.Image{Path: "https://example.com/a.png", Remote: true},
	}

	doc, err := Build(Input{Blocks: body}, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	got := dump(doc)
	mustContain(t, got,
		"1 Introduction\n", "Plain and bold\n", "\t\t• item\n",
		"\n1.1 Table\n", // page break renders as a newline before the text
		"| SRS-AUTH-001 | Login api |", "| ID | Name |",
		"| Statement | Authenticate. |", "| Acceptance Criteria | • a |",
		"package main\n", "Diagram could not be rendered", "graph TD",
		"[!] Image not found: x.png", "[!] Remote image not embedded",
	)
	if strings.Contains(got, "| ID | REQ-FUNC-001 |") {
		t.Error("record under its own heading repeats the ID row")
	}
}

func TestBuild_RecordWithoutHeading(t *testing.T) {
	t.Parallel()

	doc, err := Build(Input{Blocks: []blocks.Block{
		&blocks.Paragraph{Spans: blocks.ParseInline("intro")},
		&blocks.RecordBlock{ID: "SRS-AUTH-002", Name: "Logout", Statement: "End the session."},
	}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	mustContain(t, dump(doc), "| ID | SRS-AUTH-002 |", "| Name | Logout |", "| Statement | End the session. |")
}

func TestBuild_PageSize(t *testing.T) {
	t.Parallel()

	doc, err := Build(Input{}, Options{PageSize: "Letter"})
	if err != nil {
		t.Fatalf("Build(letter) error = %v", err)
	}
	found := false
	for _, it := range doc.Document.Body.Items {
		if s, ok := it.(*docx.SectPr); ok && s.PgSz != nil && s.PgSz.W == 12240 {
			found = true
		}
	}
	if !found {
		t.Error("letter page size not applied")
	}

	if _, err := Build(Input{}, Options{PageSize: "a5"}); !errors.Is(err, ErrUnknownPageSize) {
		t.Errorf("Build(a5) error = %v, want ErrUnknownPageSize", err)
	}
}

// ---------------------------------------------------------------------------
// TestBuild_Images - Diagrams and pictures
// ---------------------------------------------------------------------------

func TestBuild_DiagramSizing(t *testing.T) {
	t.Parallel()

	raster := encodePNG(t, 400, 200)
	doc, err := Build(Input{Blocks: []blocks.Block{
		&blocks.DiagramBlock{Source: "graph TD", Rendered: diagram.Rendered{Raster: raster}},
	}}, Options{DiagramScale: 2})
	if err != nil {
		t.Fatal(err)
	}

	var inline *docx.WPInline
	for _, it := range doc.Document.Body.Items {
		p, ok := it.(*docx.Paragraph)
		if !ok {
			continue
		}
		for _, c := range p.Children {
			if r, ok := c.(*docx.Run); ok {
				for _, rc := range r.Children {
					if d, ok := rc.(*docx.Drawing); ok {
						inline = d.Inline
					}
				}
			}
		}
	}
	if inline == nil {
		t.Fatal("no inline drawing emitted")
	}
	if inline.Extent.CX != 200*emuPerPixel || inline.Extent.CY != 100*emuPerPixel {
		t.Errorf("extent = %dx%d, want %dx%d", inline.Extent.CX, inline.Extent.CY, 200*emuPerPixel, 100*emuPerPixel)
	}
}

func TestBuild_VectorOnlyDiagram(t *testing.T) {
	t.Parallel()

	doc, err := Build(Input{Blocks: []blocks.Block{
		&blocks.DiagramBlock{Source: "graph LR", Rendered: diagram.Rendered{Vector: []byte("<svg/>"), VectorPath: "/cache/x.svg"}},
	}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	mustContain(t, dump(doc), "SVG only: /cache/x.svg", "graph LR")
}

func TestBuild_LocalImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pngPath := filepath.Join(dir, "ok.png")
	gifPath := filepath.Join(dir, "anim.gif")
	if err := os.WriteFile(pngPath, encodePNG(t, 10, 10), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(gifPath, []byte("GIF89a...."), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := Render(Input{Blocks: []blocks.Block{
		&blocks.Image{Alt: "Logo", Path: pngPath},
		&blocks.Image{Path: gifPath},
		&blocks.Image{Path: filepath.Join(dir, "gone.png")},
	}}, Options{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("Render() output is not a zip container")
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output does not parse back: %v", err)
	}
	mustContain(t, dump(doc), "Logo", "Unsupported image format", "Image not readable")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestTOCEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantText  string
		wantLevel int
	}{
		{"- [1. Introduction](#intro)", "1. Introduction", 0},
		{"  - [1.1 Purpose](#purpose)", "1.1 Purpose", 1},
		{"\t\t* **Appendix**", "Appendix", 2},
		{"3. Scope", "Scope", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		text, level := TOCEntry(tt.in)
		if text != tt.wantText || level != tt.wantLevel {
			t.Errorf("TOCEntry(%q) = %q, %d; want %q, %d", tt.in, text, level, tt.wantText, tt.wantLevel)
		}
	}
}

func TestRecordRows(t *testing.T) {
	t.Parallel()

	rec := &blocks.RecordBlock{
		ID: "SRS-AUTH-002", Priority: "High", Verification: "Test",
		Extra: []blocks.Field{{Label: "Owner", Value: "Sec"}, {Label: "Empty"}},
	}
	tests := []struct {
		titled bool
		want   string
	}{
		{false, "ID,Priority,Verification,Owner"},
		{true, "Priority,Verification,Owner"},
	}
	for _, tt := range tests {
		var labels []string
		for _, r := range RecordRows(rec, tt.titled) {
			labels = append(labels, r[0])
		}
		if got := strings.Join(labels, ","); got != tt.want {
			t.Errorf("RecordRows(titled=%v) labels = %s, want %s", tt.titled, got, tt.want)
		}
	}
}

func TestHighlight(t *testing.T) {
	t.Parallel()

	src := "func main() {\n\treturn\n}\n"
	runs := Highlight("go", src, "")
	if len(runs) < 2 {
		t.Fatalf("go source produced %d runs, want several", len(runs))
	}
	var sb strings.Builder
	colored := false
	for _, r := range runs {
		sb.WriteString(r.Text)
		if r.Color != "" {
			colored = true
		}
	}
	if sb.String() != strings.TrimRight(src, "\n") {
		t.Errorf("runs reassemble to %q", sb.String())
	}
	if !colored {
		t.Error("no run carries a colour")
	}

	if plain := Highlight("no-such-language", "x := 1", ""); len(plain) != 1 || plain[0].Color != "" {
		t.Errorf("unknown language runs = %+v", plain)
	}
}
