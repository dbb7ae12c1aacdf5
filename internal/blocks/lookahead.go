package blocks

import (
	"regexp"
	"strings"

	"github.com/alnah/go-md2docx/internal/structure"
)

type lineKind int

const (
	lineBlank lineKind = iota
	lineText
	lineList
	lineHeading
	lineRecordHeading
	lineImage
	lineTable
	lineFence
	lineRule
)

var (
	imageLine = regexp.MustCompile(`^!\[([^\]]*)\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)$`)
	listItem  = regexp.MustCompile(`^(\s*)([-*+]|\d{1,9}[.)])\s+(.*)$`)
)

func isFenceOpen(trimmed string) bool {
	_, _, ok := structure.FenceOpen(trimmed)
	return ok
}

// classify reports what construct a line would start.
func (p *Parser) classify(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return lineBlank
	case isFenceOpen(trimmed):
		return lineFence
	case strings.HasPrefix(trimmed, "|"):
		return lineTable
	}
	if _, text, ok := structure.ParseHeading(trimmed); ok {
		if p.records.match(text) != nil {
			return lineRecordHeading
		}
		return lineHeading
	}
	switch {
	case imageLine.MatchString(trimmed):
		return lineImage
	case structure.IsSeparator(trimmed):
		return lineRule
	case listItem.MatchString(line):
		return lineList
	}
	return lineText
}

// nextNonBlank returns the index of the first non-blank line after i, or
// len(lines).
func nextNonBlank(lines []string, i int) int {
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return len(lines)
}

// prevNonBlank returns the index of the last non-blank line before i, or -1.
func prevNonBlank(lines []string, i int) int {
	for j := i - 1; j >= 0; j-- {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return -1
}

// headingRun counts the consecutive plain headings starting at i, with only
// blank lines between them, and returns the index of the first line after
// the run (or len(lines)). Record headings end the run.
func (p *Parser) headingRun(lines []string, i int) (count, after int) {
	j := i
	for j < len(lines) && p.classify(lines[j]) == lineHeading {
		count++
		j = nextNonBlank(lines, j)
	}
	return count, j
}

// kindAt classifies lines[i], treating the end of input as blank.
func (p *Parser) kindAt(lines []string, i int) lineKind {
	if i < 0 || i >= len(lines) {
		return lineBlank
	}
	return p.classify(lines[i])
}

// breakBefore decides whether the heading at lines[i] starts a new page.
// section is true for a numbered depth-0 heading.
func (p *Parser) breakBefore(lines []string, i, level int, section, first bool) bool {
	if first {
		return false
	}
	pol := p.Pagination

	// Suppression runs before the section rule: "# Part" followed by
	// "## Three" keeps them on one page even though Three opens a section.
	prev := prevNonBlank(lines, i)
	prevKind := p.kindAt(lines, prev)
	if pol.Suppression && (prevKind == lineHeading || prevKind == lineRecordHeading) {
		if prevLevel, _, _ := structure.ParseHeading(strings.TrimSpace(lines[prev])); prevLevel == level-1 {
			return false
		}
	}

	if pol.SectionBreaks && section {
		return true
	}

	// Non-first members of a heading run stay with the run's first heading.
	if prevKind == lineHeading || p.kindAt(lines, i) == lineRecordHeading {
		return false
	}

	run, after := p.headingRun(lines, i)
	next := p.kindAt(lines, after)
	switch {
	case pol.OrphanGroups && run >= 2:
		return next == lineImage || next == lineTable
	case pol.Stranded && run == 1:
		return next == lineImage || next == lineTable || next == lineRecordHeading
	}
	return false
}
