// Package blocks turns the body of a document into typed blocks.
//
// The parser makes a single forward pass over the body lines. Lookahead for
// pagination decisions inspects lines by index and never consumes them.
// Blocks are created once and never mutated afterwards.
package blocks

import (
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/tablelayout"
)

// Kind identifies a block variant.
type Kind int

// Block kinds. KindRule exists for classification only: rules produce no block.
const (
	KindHeading Kind = iota
	KindParagraph
	KindTable
	KindCode
	KindDiagram
	KindRecord
	KindImage
	KindRule
	KindPlaceholder
)

var kindNames = [...]string{
	KindHeading:     "heading",
	KindParagraph:   "paragraph",
	KindTable:       "table",
	KindCode:        "code",
	KindDiagram:     "diagram",
	KindRecord:      "record",
	KindImage:       "image",
	KindRule:        "rule",
	KindPlaceholder: "placeholder",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Block is implemented only by the types in this package.
type Block interface {
	Kind() Kind
	block()
}

// Heading is a section heading. Number is empty for unnumbered headings.
type Heading struct {
	Level           int
	Text            string
	Number          string
	Numbered        bool
	PageBreakBefore bool
}

// SpanKind classifies inline text.
type SpanKind int

// Inline span kinds.
const (
	SpanText SpanKind = iota
	SpanStrong
	SpanCode
)

// Span is a run of inline text.
type Span struct {
	Kind SpanKind
	Text string
}

// Paragraph is prose. List items are one paragraph each, with Marker set to
// "•" for bullets or the original "1." style marker for ordered items.
type Paragraph struct {
	Spans  []Span
	Marker string
	Indent int
}

// Table is a pipe table with computed column widths.
type Table struct {
	Spec      tablelayout.Spec
	Widths    tablelayout.Widths
	Malformed int // rows padded or merged to fit the header
}

// CodeBlock is fenced code. Degraded marks a diagram that could not be
// rendered and is shown as source instead.
type CodeBlock struct {
	Language string
	Source   string
	Degraded bool
}

// DiagramBlock is a rendered diagram.
type DiagramBlock struct {
	Source   string
	Rendered diagram.Rendered
}

// Field is a labelled record value outside the well-known set.
type Field struct {
	Label string
	Value string
}

// RecordBlock is a structured requirement or test record rendered as a
// key/value table.
type RecordBlock struct {
	ID                 string
	Name               string
	Statement          string
	Rationale          string
	Priority           string
	SafetyClass        string
	AcceptanceCriteria []string
	Verification       string
	Extra              []Field
}

// Image is a picture reference. Path is resolved against the base directory
// unless Remote is set.
type Image struct {
	Alt    string
	Path   string
	Remote bool
}

// Placeholder is a visible error in place of content that could not be used.
type Placeholder struct {
	Message string
	Source  string
}

func (*Heading) Kind() Kind      { return KindHeading }
func (*Paragraph) Kind() Kind    { return KindParagraph }
func (*Table) Kind() Kind        { return KindTable }
func (*CodeBlock) Kind() Kind    { return KindCode }
func (*DiagramBlock) Kind() Kind { return KindDiagram }
func (*RecordBlock) Kind() Kind  { return KindRecord }
func (*Image) Kind() Kind        { return KindImage }
func (*Placeholder) Kind() Kind  { return KindPlaceholder }

func (*Heading) block()      {}
func (*Paragraph) block()    {}
func (*Table) block()        {}
func (*CodeBlock) block()    {}
func (*DiagramBlock) block() {}
func (*RecordBlock) block()  {}
func (*Image) block()        {}
func (*Placeholder) block()  {}

// PlainText concatenates the text of all spans.
func (p *Paragraph) PlainText() string {
	n := 0
	for _, s := range p.Spans {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range p.Spans {
		b = append(b, s.Text...)
	}
	return string(b)
}

// Diagnostic is a recoverable content problem found while parsing.
// Line is 1-based within the body.
type Diagnostic struct {
	Line    int
	Message string
}

// Result is the parser output.
type Result struct {
	Blocks      []Block
	Diagnostics []Diagnostic
}
