package preview

// Notes:
// - Render tests use the real goldmark converter; assertions stay on
//   substrings that do not depend on goldmark's attribute ordering.

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/structure"
)

func sampleDocument(baseDir string) (*structure.Document, *blocks.Result) {
	doc := &structure.Document{
		Cover:         structure.Cover{Title: "Spec & Plan", Version: "1.0", Date: "auto"},
		TOCTitle:      "Contents",
		TOCLines:      []string{"- [1. Intro](#intro)"},
		RevisionTitle: "History",
		RevisionRows:  [][]string{{"Version", "Change"}, {"1.0", "Init"}},
		BodyLines: []string{
			"## Intro",
			"Some text.",
			"```mermaid",
			"graph TD",
			"```",
			"### 2.1 Detail",
			"```mermaid",
			"graph LR",
			"```",
			"![Logo](img/logo.png)",
			"```go",
			"x := 1",
			"```",
		},
		BaseDir: baseDir,
	}
	res := &blocks.Result{Blocks: []blocks.Block{
		&blocks.Heading{Level: 2, Text: "Intro", Number: "1", Numbered: true},
		&blocks.Paragraph{Spans: blocks.ParseInline("Some text.")},
		&blocks.DiagramBlock{Source: "graph TD", Rendered: diagram.Rendered{Raster: []byte("png")}},
		&blocks.Heading{Level: 3, Text: "Detail", Number: "1.1", Numbered: true},
		&blocks.CodeBlock{Language: "mermaid", Source: "graph LR", Degraded: true},
		&blocks.Image{Alt: "Logo", Path: filepath.Join(baseDir, "img", "logo.png")},
		&blocks.CodeBlock{Language: "go", Source: "x := 1"},
	}}
	return doc, res
}

// ---------------------------------------------------------------------------
// TestCompose - Markdown reconstruction
// ---------------------------------------------------------------------------

func TestCompose(t *testing.T) {
	t.Parallel()

	doc, res := sampleDocument("")
	got := Compose(doc, res)

	for _, want := range []string{
		"# Contents\n\n- [1. Intro](#intro)\n",
		"# History\n\n| Version | Change |\n| --- | --- |\n| 1.0 | Init |\n",
		"## 1 Intro\n",
		"![Diagram](data:image/png;base64,cG5n)\n",
		"### 1.1 Detail\n",
		"```mermaid\ngraph LR\n```\n",
		"```go\nx := 1\n```\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Compose() missing %q\n---\n%s", want, got)
		}
	}
	if strings.Contains(got, "graph TD") {
		t.Error("rendered diagram source should be replaced by an image")
	}
}

func TestCompose_VectorOnlyDiagram(t *testing.T) {
	t.Parallel()

	doc := &structure.Document{BodyLines: []string{"```mermaid", "graph TD", "```"}}
	res := &blocks.Result{Blocks: []blocks.Block{
		&blocks.DiagramBlock{Source: "graph TD", Rendered: diagram.Rendered{Vector: []byte("<svg/>"), VectorPath: "/cache/a.svg"}},
	}}
	if got := Compose(doc, res); got != "![Diagram](</cache/a.svg>)\n" {
		t.Errorf("Compose() = %q", got)
	}
}

func TestCompose_WithoutResult(t *testing.T) {
	t.Parallel()

	doc := &structure.Document{BodyLines: []string{"## Intro", "```mermaid", "graph TD"}}
	if got := Compose(doc, nil); got != "## Intro\n```mermaid\ngraph TD\n" {
		t.Errorf("Compose() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestRender - Full page
// ---------------------------------------------------------------------------

func TestRender(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	doc, res := sampleDocument(base)
	out, err := NewRenderer().Render(context.Background(), Page{Document: doc, Result: res, CoverDate: "2026-10-19"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got := string(out)

	for _, want := range []string{
		"<title>Spec &amp; Plan</title>",
		"<style>",
		`<h1 class="cover-title">Spec &amp; Plan</h1>`,
		"<dd>2026-10-19</dd>",
		">1 Intro</h2>",
		">1.1 Detail</h3>",
		"<table>",
		`src="data:image/png;base64,cG5n"`,
		`src="file://` + filepath.ToSlash(filepath.Join(base, "img", "logo.png")),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
	if strings.Contains(got, "<dd>auto</dd>") {
		t.Error("CoverDate did not replace the cover date")
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	doc, res := sampleDocument("")

	t.Run("no document", func(t *testing.T) {
		t.Parallel()
		if _, err := NewRenderer().Render(context.Background(), Page{}); !errors.Is(err, ErrNoDocument) {
			t.Errorf("error = %v, want ErrNoDocument", err)
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		t.Parallel()
		_, err := NewRenderer(WithStyle("missing")).Render(context.Background(), Page{Document: doc, Result: res})
		if !errors.Is(err, assets.ErrStyleNotFound) {
			t.Errorf("error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewRenderer().Render(ctx, Page{Document: doc, Result: res})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Injection and path rewriting
// ---------------------------------------------------------------------------

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		css  string
		want string
	}{
		{"before head close", "<html><head></head><body></body></html>", "p{}", "<html><head><style>p{}</style></head><body></body></html>"},
		{"after body open", `<body class="x">hi</body>`, "p{}", `<body class="x"><style>p{}</style>hi</body>`},
		{"prepend", "<p>hi</p>", "p{}", "<style>p{}</style><p>hi</p>"},
		{"empty css", "<p>hi</p>", "", "<p>hi</p>"},
		{"escapes closing tags", "<p></p>", "</style><script>", `<style><\/style><script></style><p></p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := InjectCSS(tt.html, tt.css); got != tt.want {
				t.Errorf("InjectCSS() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInjectCover_Empty(t *testing.T) {
	t.Parallel()

	in := "<body></body>"
	got, err := InjectCover(in, structure.Cover{})
	if err != nil || got != in {
		t.Errorf("InjectCover(empty) = %q, %v", got, err)
	}
}

func TestRewriteImagePaths(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	page := `<html><head></head><body>` +
		`<img src="a%20b.png"/><img src="../escape.png"/><img src="https://x.test/r.png"/>` +
		`<img src="/abs.png"/><img src="data:image/png;base64,AA=="/></body></html>`

	got, err := RewriteImagePaths(page, base)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`src="file://` + filepath.ToSlash(base) + "/a%20b.png",
		`src="../escape.png"`,
		`src="https://x.test/r.png"`,
		`src="/abs.png"`,
		`src="data:image/png;base64,AA=="`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %s", want, got)
		}
	}

	if same, _ := RewriteImagePaths(page, ""); same != page {
		t.Error("empty base dir should leave the page unchanged")
	}
}
