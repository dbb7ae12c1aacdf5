package docxbuild

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultCodeStyle is the chroma style used for code runs.
const DefaultCodeStyle = "github"

// CodeRun is a span of highlighted source. Color is RRGGBB or empty.
type CodeRun struct {
	Text  string
	Color string
	Bold  bool
}

func (b *builder) highlight(language, source string) []CodeRun {
	return Highlight(language, source, b.opts.CodeStyle)
}

// Highlight tokenizes source with the lexer for language and colours each
// token from styleName. Unknown languages yield a single plain run.
func Highlight(language, source, styleName string) []CodeRun {
	source = strings.TrimRight(source, "\n")
	lexer := lexers.Get(language)
	if language == "" || lexer == nil {
		return []CodeRun{{Text: source}}
	}
	if styleName == "" {
		styleName = DefaultCodeStyle
	}
	style := styles.Get(styleName)

	it, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return []CodeRun{{Text: source}}
	}

	var runs []CodeRun
	for _, tok := range it.Tokens() {
		if tok.Value == "" {
			continue
		}
		entry := style.Get(tok.Type)
		run := CodeRun{Text: tok.Value, Bold: entry.Bold == chroma.Yes}
		if entry.Colour.IsSet() {
			run.Color = strings.TrimPrefix(strings.ToUpper(entry.Colour.String()), "#")
		}
		// Merge neighbours with identical formatting to keep runs few.
		if n := len(runs); n > 0 && runs[n-1].Color == run.Color && runs[n-1].Bold == run.Bold {
			runs[n-1].Text += run.Text
			continue
		}
		runs = append(runs, run)
	}
	// Chroma ends every token stream with a newline.
	if n := len(runs); n > 0 {
		runs[n-1].Text = strings.TrimRight(runs[n-1].Text, "\n")
		if runs[n-1].Text == "" {
			runs = runs[:n-1]
		}
	}
	return runs
}
