package structure

import (
	"regexp"
	"strings"
)

// Markers names the headings and lines that delimit the front matter.
// Matching is case-insensitive.
type Markers struct {
	TOC        []string // table of contents headings
	Revision   []string // revision history headings
	ForProject []string // line prefixes that introduce the cover subtitle
}

// DefaultMarkers returns the English and Chinese markers.
func DefaultMarkers() Markers {
	return Markers{
		TOC:        []string{"Table of Contents", "Contents", "目录"},
		Revision:   []string{"Revision History", "修订记录", "修订历史"},
		ForProject: []string{"for project", "for:"},
	}
}

// WithDefaults fills empty marker lists from DefaultMarkers.
func (m Markers) WithDefaults() Markers {
	d := DefaultMarkers()
	if len(m.TOC) == 0 {
		m.TOC = d.TOC
	}
	if len(m.Revision) == 0 {
		m.Revision = d.Revision
	}
	if len(m.ForProject) == 0 {
		m.ForProject = d.ForProject
	}
	return m
}

// IsTOC reports whether heading text is a table of contents marker.
func (m Markers) IsTOC(text string) bool {
	t := normalizeMarker(text)
	for _, mk := range m.TOC {
		if t == normalizeMarker(mk) {
			return true
		}
	}
	return false
}

// IsRevision reports whether heading text is a revision history marker.
// Any heading mentioning "revision" qualifies.
func (m Markers) IsRevision(text string) bool {
	t := normalizeMarker(text)
	if strings.Contains(t, "revision") {
		return true
	}
	for _, mk := range m.Revision {
		if t == normalizeMarker(mk) {
			return true
		}
	}
	return false
}

// IsForProject reports whether a line (or heading text) carries the subtitle.
func (m Markers) IsForProject(line string) bool {
	t := strings.ToLower(stripEmphasis(stripListMarker(strings.TrimSpace(line))))
	for _, mk := range m.ForProject {
		if mk != "" && strings.HasPrefix(t, strings.ToLower(mk)) {
			return true
		}
	}
	return false
}

func normalizeMarker(s string) string {
	s = stripEmphasis(strings.TrimSpace(s))
	s = numberPrefix.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ":： ")
	return strings.ToLower(s)
}

var (
	headingLine  = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)(?:[ \t]+#+)?[ \t]*$`)
	numberPrefix = regexp.MustCompile(`^\d+(?:\.\d+)*\.?\s+`)
	separator    = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,})$`)
	listMarker   = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)
)

// ParseHeading returns the level (1-6) and text of an ATX heading line.
func ParseHeading(line string) (level int, text string, ok bool) {
	m := headingLine.FindStringSubmatch(strings.TrimRight(line, " \t"))
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), strings.TrimSpace(m[2]), true
}

// StripNumberPrefix removes a manual section number from heading text.
func StripNumberPrefix(text string) string {
	return strings.TrimSpace(numberPrefix.ReplaceAllString(text, ""))
}

// IsSeparator reports whether line is a thematic break (---, ***, ___).
func IsSeparator(line string) bool {
	return separator.MatchString(strings.TrimSpace(line))
}

func stripListMarker(s string) string {
	return listMarker.ReplaceAllString(s, "")
}

func stripEmphasis(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "**", ""), "__", ""))
}

// FenceOpen reports whether trimmed opens a code fence and returns the
// fence character and run length.
func FenceOpen(trimmed string) (ch byte, n int, ok bool) {
	if len(trimmed) < 3 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return 0, 0, false
	}
	ch = trimmed[0]
	for n < len(trimmed) && trimmed[n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	// A backtick fence info string may not contain backticks.
	if ch == '`' && strings.ContainsRune(trimmed[n:], '`') {
		return 0, 0, false
	}
	return ch, n, true
}

// ClosesFence reports whether trimmed closes a fence opened with n
// characters ch: a run of at least n of the same character and nothing else.
func ClosesFence(trimmed string, ch byte, n int) bool {
	if len(trimmed) < n {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != ch {
			return false
		}
	}
	return true
}

// startsContent reports whether trimmed opens a fence, a pipe table or an
// image, none of which belong in front matter.
func startsContent(trimmed string) bool {
	if _, _, ok := FenceOpen(trimmed); ok {
		return true
	}
	return strings.HasPrefix(trimmed, "|") || strings.HasPrefix(trimmed, "![")
}
