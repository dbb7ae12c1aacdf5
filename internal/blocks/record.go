package blocks

import (
	"regexp"
	"strings"
)

// DefaultRecordPrefixes are the record types recognised in headings.
var DefaultRecordPrefixes = []string{"REQ", "SRS", "SYS", "SWR", "HWR", "FR", "NFR", "UR", "SR", "IR", "TC"}

var (
	labelLine  = regexp.MustCompile(`^(?:[-*+]\s+)?\*\*([^*]+?)\s*[:：]?\s*\*\*\s*[:：]?\s*(.*)$`)
	bulletItem = regexp.MustCompile(`^(?:[-*+]|\d{1,9}[.)])\s+(.*)$`)
)

type recordMatcher struct {
	re *regexp.Regexp
}

func newRecordMatcher(prefixes []string) recordMatcher {
	if len(prefixes) == 0 {
		prefixes = DefaultRecordPrefixes
	}
	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	pattern := `^(?:\*\*)?((?:` + strings.Join(quoted, "|") + `)-[A-Z][A-Z0-9]*(?:-[A-Z][A-Z0-9]*)*-\d+)(?:\*\*)?(?:\s*[:：\-–—]\s*|\s+|$)(.*)$`
	return recordMatcher{re: regexp.MustCompile(pattern)}
}

var defaultRecords = newRecordMatcher(nil)

// match returns [id, name] when heading text opens a record, else nil.
// The zero matcher uses DefaultRecordPrefixes.
func (m recordMatcher) match(text string) []string {
	re := m.re
	if re == nil {
		re = defaultRecords.re
	}
	sm := re.FindStringSubmatch(strings.TrimSpace(text))
	if sm == nil {
		return nil
	}
	return []string{sm[1], strings.TrimSpace(strings.Trim(sm[2], "* "))}
}

type recordField int

const (
	fieldNone recordField = iota
	fieldStatement
	fieldRationale
	fieldPriority
	fieldSafety
	fieldAcceptance
	fieldVerification
	fieldExtra
)

var recordLabels = map[string]recordField{
	"description":         fieldStatement,
	"statement":           fieldStatement,
	"requirement":         fieldStatement,
	"描述":                  fieldStatement,
	"需求":                  fieldStatement,
	"需求描述":                fieldStatement,
	"rationale":           fieldRationale,
	"理由":                  fieldRationale,
	"priority":            fieldPriority,
	"优先级":                 fieldPriority,
	"safety class":        fieldSafety,
	"safety":              fieldSafety,
	"安全等级":                fieldSafety,
	"acceptance criteria": fieldAcceptance,
	"acceptance":          fieldAcceptance,
	"验收标准":                fieldAcceptance,
	"verification":        fieldVerification,
	"verification method": fieldVerification,
	"验证方法":                fieldVerification,
}

// recordBuilder accumulates labelled lines and re-homes continuation lines
// onto the field opened last.
type recordBuilder struct {
	rec   *RecordBlock
	cur   recordField
	extra int // index into rec.Extra when cur == fieldExtra
}

func (b *recordBuilder) open(label, value string) {
	key := strings.ToLower(strings.TrimSpace(label))
	f, ok := recordLabels[key]
	if !ok {
		b.rec.Extra = append(b.rec.Extra, Field{Label: strings.TrimSpace(label), Value: value})
		b.cur, b.extra = fieldExtra, len(b.rec.Extra)-1
		return
	}
	b.cur = f
	if f == fieldAcceptance {
		if value != "" {
			b.rec.AcceptanceCriteria = append(b.rec.AcceptanceCriteria, value)
		}
		return
	}
	b.extend(value)
}

// bullet handles a list item inside the record.
func (b *recordBuilder) bullet(item, raw string) {
	if b.cur == fieldAcceptance {
		b.rec.AcceptanceCriteria = append(b.rec.AcceptanceCriteria, item)
		return
	}
	b.extend(raw)
}

// extend appends text to the current field with a single separating space.
// Text before any label belongs to the statement.
func (b *recordBuilder) extend(text string) {
	if text == "" {
		return
	}
	var target *string
	switch b.cur {
	case fieldNone, fieldStatement:
		b.cur = fieldStatement
		target = &b.rec.Statement
	case fieldRationale:
		target = &b.rec.Rationale
	case fieldPriority:
		target = &b.rec.Priority
	case fieldSafety:
		target = &b.rec.SafetyClass
	case fieldVerification:
		target = &b.rec.Verification
	case fieldExtra:
		target = &b.rec.Extra[b.extra].Value
	case fieldAcceptance:
		if n := len(b.rec.AcceptanceCriteria); n > 0 {
			target = &b.rec.AcceptanceCriteria[n-1]
		} else {
			b.rec.AcceptanceCriteria = append(b.rec.AcceptanceCriteria, text)
			return
		}
	}
	if *target == "" {
		*target = text
	} else {
		*target += " " + text
	}
}

// parseRecord consumes the record body starting after the heading at i and
// returns the index of the first line it did not consume. The record ends at
// the next heading, rule, fence, table or image.
func (p *Parser) parseRecord(lines []string, i int, id, name string) (*RecordBlock, int) {
	b := recordBuilder{rec: &RecordBlock{ID: id, Name: name}}
	j := i + 1
	for ; j < len(lines); j++ {
		line := lines[j]
		trimmed := strings.TrimSpace(line)

		switch p.classify(line) {
		case lineBlank:
			continue
		case lineHeading, lineRecordHeading, lineRule, lineFence, lineTable, lineImage:
			return b.rec, j
		}

		if m := labelLine.FindStringSubmatch(trimmed); m != nil {
			b.open(m[1], strings.TrimSpace(m[2]))
			continue
		}
		if m := bulletItem.FindStringSubmatch(trimmed); m != nil {
			b.bullet(strings.TrimSpace(m[1]), trimmed)
			continue
		}
		b.extend(trimmed)
	}
	return b.rec, j
}
