package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates goldmark failed to convert the Markdown.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultCodeStyle is the chroma style for highlighted code blocks.
const DefaultCodeStyle = "github"

// pageTemplate wraps the converted fragment in an HTML5 document.
// The title is escaped by the caller.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// HTMLConverter converts Markdown to an HTML fragment.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown with goldmark.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a converter with GFM tables and inline-styled
// chroma highlighting, so the page needs no extra stylesheet for code.
func NewGoldmarkConverter(codeStyle string) *GoldmarkConverter {
	if codeStyle == "" {
		codeStyle = DefaultCodeStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(codeStyle),
				highlighting.WithFormatOptions(chromahtml.WithLineNumbers(false)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			// No WithUnsafe: raw HTML in documents is escaped.
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts content to an HTML fragment. Goldmark has no context
// support, so conversion runs in a goroutine and ctx is raced against it.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
