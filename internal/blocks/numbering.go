package blocks

import (
	"strconv"
	"strings"
)

// MaxDepth is the deepest numbered level (heading level 5).
const MaxDepth = 3

// NumberState holds the heading counters of one document. The zero value is
// ready to use. It is passed explicitly and never shared between documents.
type NumberState struct {
	counters [MaxDepth + 1]int
}

// Next increments the counter at depth, clears every deeper counter and
// returns the dotted number ("1", "1.2", "1.2.3", "1.2.3.4").
// Depths outside 0..MaxDepth are clamped.
func (s *NumberState) Next(depth int) string {
	depth = max(0, min(depth, MaxDepth))
	s.counters[depth]++
	for d := depth + 1; d <= MaxDepth; d++ {
		s.counters[d] = 0
	}

	parts := make([]string, depth+1)
	for d := 0; d <= depth; d++ {
		parts[d] = strconv.Itoa(s.counters[d])
	}
	return strings.Join(parts, ".")
}

// DepthOf maps a heading level to a numbering depth. Level 1 belongs to the
// document title and, like levels beyond 5, is never numbered.
func DepthOf(level int) (depth int, ok bool) {
	if level < 2 || level > MaxDepth+2 {
		return 0, false
	}
	return level - 2, true
}

// PaginationPolicy toggles each page-break rule.
type PaginationPolicy struct {
	// SectionBreaks starts every top-level numbered section on a new page.
	SectionBreaks bool
	// OrphanGroups breaks before a run of two or more headings whose
	// content is an image or table.
	OrphanGroups bool
	// Stranded breaks before a lone heading followed by a record, image or
	// table.
	Stranded bool
	// Suppression cancels a break when the previous non-blank line is a
	// heading exactly one level coarser.
	Suppression bool
}

// DefaultPagination enables every rule.
func DefaultPagination() PaginationPolicy {
	return PaginationPolicy{SectionBreaks: true, OrphanGroups: true, Stranded: true, Suppression: true}
}
