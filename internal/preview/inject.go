package preview

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-md2docx/internal/structure"
)

// ErrCoverRender indicates the cover template failed to execute.
var ErrCoverRender = errors.New("cover template rendering failed")

// InjectCSS inserts a <style> block before </head>, else after <body>, else
// at the start.
func InjectCSS(htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}
	block := "<style>" + sanitizeCSS(css) + "</style>"
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}
	if pos := afterBodyTag(htmlContent, lower); pos != -1 {
		return htmlContent[:pos] + block + htmlContent[pos:]
	}
	return block + htmlContent
}

// sanitizeCSS escapes "</" so the stylesheet cannot close its element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// afterBodyTag returns the offset just past the opening <body> tag, or -1.
func afterBodyTag(htmlContent, lower string) int {
	idx := strings.Index(lower, "<body")
	if idx == -1 {
		return -1
	}
	end := strings.Index(htmlContent[idx:], ">")
	if end == -1 {
		return -1
	}
	return idx + end + 1
}

const coverTemplate = `<section class="cover">
{{- with .Title}}<h1 class="cover-title">{{.}}</h1>{{end}}
{{- with .Subtitle}}<p class="cover-subtitle">{{.}}</p>{{end}}
<dl class="cover-meta">
{{- with .Version}}<dt>Version</dt><dd>{{.}}</dd>{{end}}
{{- with .Author}}<dt>Author</dt><dd>{{.}}</dd>{{end}}
{{- with .Organization}}<dt>Organization</dt><dd>{{.}}</dd>{{end}}
{{- with .Date}}<dt>Date</dt><dd>{{.}}</dd>{{end}}
</dl>
{{- range .Extra}}<p class="cover-extra">{{.}}</p>{{end}}
</section>`

var coverTmpl = template.Must(template.New("cover").Parse(coverTemplate))

// InjectCover renders c right after the opening <body> tag. An empty cover
// leaves htmlContent unchanged.
func InjectCover(htmlContent string, c structure.Cover) (string, error) {
	if c.Title == "" && c.Subtitle == "" && c.Version == "" && c.Author == "" &&
		c.Organization == "" && c.Date == "" && len(c.Extra) == 0 {
		return htmlContent, nil
	}

	var buf bytes.Buffer
	if err := coverTmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoverRender, err)
	}
	if pos := afterBodyTag(htmlContent, strings.ToLower(htmlContent)); pos != -1 {
		return htmlContent[:pos] + buf.String() + htmlContent[pos:], nil
	}
	return buf.String() + htmlContent, nil
}
