package blocks

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/hints"
	"github.com/alnah/go-md2docx/internal/structure"
	"github.com/alnah/go-md2docx/internal/tablelayout"
)

// DefaultDiagramLanguage is the fence tag routed to the diagram renderer.
const DefaultDiagramLanguage = "mermaid"

// DiagramRenderer renders diagram source. A result with OK() == false means
// every strategy failed.
type DiagramRenderer interface {
	Render(ctx context.Context, source string) diagram.Rendered
}

// Parser converts body lines into blocks. Use NewParser for defaults.
// A Parser holds no per-document state and may be shared.
type Parser struct {
	Diagrams        DiagramRenderer // nil renders every diagram as code
	Tables          tablelayout.Engine
	Markers         structure.Markers
	Pagination      PaginationPolicy
	DiagramLanguage string
	Logger          *slog.Logger

	records recordMatcher
}

// NewParser returns a parser with default markers, record prefixes, table
// engine and pagination. A nil prefixes slice selects DefaultRecordPrefixes.
func NewParser(diagrams DiagramRenderer, prefixes []string) *Parser {
	return &Parser{
		Diagrams:        diagrams,
		Tables:          tablelayout.DefaultEngine(),
		Markers:         structure.DefaultMarkers(),
		Pagination:      DefaultPagination(),
		DiagramLanguage: DefaultDiagramLanguage,
		records:         newRecordMatcher(prefixes),
	}
}

// parse holds the state of one Parse call.
type parse struct {
	p       *Parser
	ctx     context.Context
	lines   []string
	baseDir string
	numbers NumberState
	out     Result
}

// Parse turns lines into blocks. Content problems become placeholders and
// diagnostics; the only error is ctx cancellation.
func (p *Parser) Parse(ctx context.Context, lines []string, baseDir string) (*Result, error) {
	st := &parse{p: p, ctx: ctx, lines: lines, baseDir: baseDir}

	for i := 0; i < len(lines); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		i = st.step(i)
	}
	return &st.out, nil
}

func (st *parse) emit(b Block) { st.out.Blocks = append(st.out.Blocks, b) }

func (st *parse) diag(i int, format string, args ...any) {
	st.out.Diagnostics = append(st.out.Diagnostics, Diagnostic{Line: i + 1, Message: fmt.Sprintf(format, args...)})
}

// step parses the construct starting at line i and returns the next index.
func (st *parse) step(i int) int {
	line := st.lines[i]
	switch st.p.classify(line) {
	case lineFence:
		return st.fence(i)
	case lineTable:
		return st.table(i)
	case lineRecordHeading, lineHeading:
		return st.heading(i)
	case lineImage:
		st.image(i)
		return i + 1
	case lineRule, lineBlank:
		return i + 1
	case lineList:
		st.listItem(i)
		return i + 1
	default:
		return st.paragraph(i)
	}
}

func (st *parse) fence(i int) int {
	open := strings.TrimSpace(st.lines[i])
	ch, n, _ := structure.FenceOpen(open)
	lang := strings.ToLower(strings.TrimSpace(open[n:]))
	if f := strings.Fields(lang); len(f) > 0 {
		lang = f[0]
	}

	body, j := fenceBody(st.lines, i+1, ch, n)
	if j == len(st.lines) {
		st.diag(i, "unterminated code fence")
	}
	source := strings.Join(body, "\n")

	if lang == st.p.diagramLanguage() {
		st.diagram(i, source)
	} else {
		st.emit(&CodeBlock{Language: lang, Source: source})
	}
	return j + 1
}

func (p *Parser) diagramLanguage() string {
	if p.DiagramLanguage == "" {
		return DefaultDiagramLanguage
	}
	return p.DiagramLanguage
}

func (st *parse) diagram(i int, source string) {
	var r diagram.Rendered
	if st.p.Diagrams != nil {
		r = st.p.Diagrams.Render(st.ctx, source)
	}
	if r.OK() {
		st.emit(&DiagramBlock{Source: source, Rendered: r})
		return
	}
	st.diag(i, "diagram could not be rendered; showing source")
	st.logger().Warn("diagram degraded to code block", "line", i+1, "hash", diagram.Hash(source))
	st.emit(&CodeBlock{Language: st.p.diagramLanguage(), Source: source, Degraded: true})
}

func (st *parse) logger() *slog.Logger {
	if st.p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return st.p.Logger
}

func (st *parse) table(i int) int {
	j := i
	var raw []string
	for ; j < len(st.lines); j++ {
		t := strings.TrimSpace(st.lines[j])
		if !strings.HasPrefix(t, "|") {
			break
		}
		raw = append(raw, t)
	}

	headers := structure.SplitPipeRow(raw[0])
	var rows [][]string
	malformed := 0
	for k, r := range raw[1:] {
		if k == 0 && structure.IsAlignmentRow(r) {
			continue
		}
		cells := structure.SplitPipeRow(r)
		switch {
		case len(cells) < len(headers):
			cells = append(cells, make([]string, len(headers)-len(cells))...)
		case len(cells) > len(headers):
			merged := strings.Join(cells[len(headers)-1:], " | ")
			cells = append(cells[:len(headers)-1:len(headers)-1], merged)
		default:
			rows = append(rows, cells)
			continue
		}
		malformed++
		st.diag(i+1+k, "table row has %d cells, header has %d", len(structure.SplitPipeRow(r)), len(headers))
		rows = append(rows, cells)
	}

	spec := tablelayout.Spec{Headers: headers, Rows: rows, NoWrap: tablelayout.DetectNoWrap(headers, rows)}
	st.emit(&Table{Spec: spec, Widths: st.p.Tables.Layout(spec), Malformed: malformed})
	if malformed > 0 {
		st.emit(&Placeholder{
			Message: fmt.Sprintf("Table has %d malformed row(s); missing cells were left empty and extra cells merged into the last column", malformed),
			Source:  strings.Join(raw, "\n"),
		})
	}
	return j
}

func (st *parse) heading(i int) int {
	level, text, _ := structure.ParseHeading(strings.TrimSpace(st.lines[i]))
	first := len(st.out.Blocks) == 0

	if rec := st.p.records.match(text); rec != nil {
		st.emit(&Heading{
			Level:           level,
			Text:            text,
			PageBreakBefore: st.p.breakBefore(st.lines, i, level, false, first),
		})
		block, next := st.p.parseRecord(st.lines, i, rec[0], rec[1])
		st.emit(block)
		return next
	}

	h := &Heading{Level: level, Text: text}
	depth, numberable := DepthOf(level)
	m := st.p.Markers
	if numberable && !m.IsTOC(text) && !m.IsRevision(text) && !m.IsForProject(text) {
		h.Text = structure.StripNumberPrefix(text)
		h.Number = st.numbers.Next(depth)
		h.Numbered = true
	}
	h.PageBreakBefore = st.p.breakBefore(st.lines, i, level, h.Numbered && depth == 0, first)
	st.emit(h)
	return i + 1
}

func (st *parse) image(i int) {
	m := imageLine.FindStringSubmatch(strings.TrimSpace(st.lines[i]))
	alt, ref := m[1], m[2]
	if fileutil.IsURL(ref) {
		st.emit(&Image{Alt: alt, Path: ref, Remote: true})
		return
	}
	path := fileutil.ResolveRelative(st.baseDir, ref)
	if !fileutil.FileExists(path) {
		st.diag(i, "image not found: %s", ref)
		st.emit(&Placeholder{Message: "Image not found: " + ref, Source: st.lines[i]})
		return
	}
	if !embeddableExt(path) {
		st.diag(i, "image format not embeddable: %s%s", ref, hints.ForImageFormat())
	}
	st.emit(&Image{Alt: alt, Path: path})
}

// embeddableExt reports whether path names a PNG or JPEG file.
func embeddableExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func (st *parse) listItem(i int) {
	m := listItem.FindStringSubmatch(st.lines[i])
	marker := m[2]
	if marker == "-" || marker == "*" || marker == "+" {
		marker = "•"
	}
	indent := len(strings.ReplaceAll(m[1], "\t", "  ")) / 2
	st.emit(&Paragraph{Spans: ParseInline(strings.TrimSpace(m[3])), Marker: marker, Indent: indent})
}

func (st *parse) paragraph(i int) int {
	parts := []string{strings.TrimSpace(st.lines[i])}
	j := i + 1
	for ; j < len(st.lines) && st.p.classify(st.lines[j]) == lineText; j++ {
		parts = append(parts, strings.TrimSpace(st.lines[j]))
	}
	st.emit(&Paragraph{Spans: ParseInline(strings.Join(parts, " "))})
	return j
}

// DiagramSources returns the source of every diagram fence in lines, in
// order, so they can be rendered ahead of parsing.
func (p *Parser) DiagramSources(lines []string) []string {
	var out []string
	lang := p.diagramLanguage()
	for i := 0; i < len(lines); i++ {
		open := strings.TrimSpace(lines[i])
		ch, n, ok := structure.FenceOpen(open)
		if !ok {
			continue
		}
		tag := strings.Fields(strings.ToLower(open[n:]))
		body, j := fenceBody(lines, i+1, ch, n)
		if len(tag) > 0 && tag[0] == lang {
			out = append(out, strings.Join(body, "\n"))
		}
		i = j
	}
	return out
}

// fenceBody collects lines from start up to the line closing a fence of n
// characters ch. It returns the body and the closing line index, or
// len(lines) when the fence is unterminated.
func fenceBody(lines []string, start int, ch byte, n int) ([]string, int) {
	var body []string
	j := start
	for ; j < len(lines); j++ {
		if structure.ClosesFence(strings.TrimSpace(lines[j]), ch, n) {
			break
		}
		body = append(body, lines[j])
	}
	return body, j
}
