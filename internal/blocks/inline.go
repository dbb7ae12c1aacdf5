package blocks

import "regexp"

var inlineToken = regexp.MustCompile("\\*\\*(.+?)\\*\\*|`([^`]+)`")

// ParseInline splits text into plain, strong and code spans. Matches never
// overlap and the leftmost one wins; unmatched text stays plain.
func ParseInline(text string) []Span {
	var spans []Span
	last := 0
	for _, m := range inlineToken.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			spans = append(spans, Span{Kind: SpanText, Text: text[last:m[0]]})
		}
		if m[2] >= 0 {
			spans = append(spans, Span{Kind: SpanStrong, Text: text[m[2]:m[3]]})
		} else {
			spans = append(spans, Span{Kind: SpanCode, Text: text[m[4]:m[5]]})
		}
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Kind: SpanText, Text: text[last:]})
	}
	return spans
}

// Plain returns text with inline markup removed.
func Plain(text string) string {
	p := Paragraph{Spans: ParseInline(text)}
	return p.PlainText()
}
