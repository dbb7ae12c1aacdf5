// Package structure splits a document into its cover, table of contents,
// revision history and body regions.
//
// Decompose walks the lines once with a four-state scanner
// (cover, toc, revision, main) and never backtracks. Every input line is
// accounted for in exactly one region count, so callers can check that
// nothing was dropped.
package structure

import (
	"regexp"
	"strings"
)

// Raw is the complete input and the directory used to resolve relative
// image paths.
type Raw struct {
	Text    string
	BaseDir string
}

// Cover holds the metadata extracted from the cover region.
type Cover struct {
	Title        string
	Subtitle     string
	Version      string
	Author       string
	Organization string
	Date         string
	Extra        []string // other non-blank cover lines, in order
}

// Counts records how many input lines each region consumed.
type Counts struct {
	Cover      int
	TOC        int
	Revision   int
	Separators int
	Body       int
}

// Total returns the number of lines accounted for.
func (c Counts) Total() int {
	return c.Cover + c.TOC + c.Revision + c.Separators + c.Body
}

// Document is the decomposed input.
type Document struct {
	Cover         Cover
	TOCTitle      string     // marker heading text, empty without a TOC
	TOCLines      []string   // raw TOC lines, marker excluded
	RevisionTitle string     // marker heading text, empty without a history
	RevisionRows  [][]string // header row first, alignment row dropped
	BodyLines     []string
	BaseDir       string
	Consumed      Counts
}

// HasTOC reports whether a table of contents region was found.
func (d *Document) HasTOC() bool { return d.TOCTitle != "" }

// HasRevision reports whether a revision history region was found.
func (d *Document) HasRevision() bool { return d.RevisionTitle != "" }

type state int

const (
	inCover state = iota
	inTOC
	inRevision
	inMain
)

var (
	numberedSection = regexp.MustCompile(`^\d+(?:\.\d+)*\.?\s+\S`)
	coverField      = regexp.MustCompile(
		`(?i)^(?:[-*+]\s+)?\**\s*(version|author|organi[sz]ation|company|date|版本|作者|组织|单位|日期)\s*\**\s*[:：]\s*\**\s*(.*?)\s*$`)
	alignmentCell = regexp.MustCompile(`^:?-+:?$`)
)

// Lines splits text into lines, normalising CRLF and CR line endings.
// A trailing newline does not produce an empty final line.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Decompose splits raw into regions. Empty marker lists fall back to
// DefaultMarkers.
//
// A fence, pipe table or image before the first section heading starts the
// body, so content is never taken for cover text and headings inside a
// fence are never read as region markers.
func Decompose(raw Raw, markers Markers) *Document {
	m := markers.WithDefaults()
	doc := &Document{BaseDir: raw.BaseDir}
	st := inCover

	for _, line := range Lines(raw.Text) {
		trimmed := strings.TrimSpace(line)
		level, text, isHeading := ParseHeading(trimmed)

		switch st {
		case inCover:
			switch {
			case isHeading && m.IsTOC(text):
				doc.TOCTitle = text
				doc.Consumed.TOC++
				st = inTOC
				continue
			case isHeading && m.IsRevision(text):
				doc.RevisionTitle = text
				doc.Consumed.Revision++
				st = inRevision
				continue
			case isHeading && level == 1 && doc.Cover.Title == "":
				doc.Cover.Title = text
				doc.Consumed.Cover++
				continue
			case isHeading && m.IsForProject(text):
				doc.Cover.Subtitle = cleanCoverLine(text)
				doc.Consumed.Cover++
				continue
			case isHeading, startsContent(trimmed):
				st = inMain // re-dispatched below
			default:
				doc.consumeCoverLine(trimmed, m)
				continue
			}

		case inTOC:
			switch {
			case isHeading && m.IsRevision(text):
				doc.RevisionTitle = text
				doc.Consumed.Revision++
				st = inRevision
				continue
			case isHeading && level == 2 && numberedSection.MatchString(text):
				st = inMain
			case startsContent(trimmed):
				st = inMain
			case IsSeparator(trimmed):
				doc.Consumed.Separators++
				st = inMain
				continue
			default:
				doc.TOCLines = append(doc.TOCLines, line)
				doc.Consumed.TOC++
				continue
			}

		case inRevision:
			switch {
			case isHeading && m.IsRevision(text):
				doc.Consumed.Revision++
				continue
			case isHeading:
				st = inMain
			case isFenceLine(trimmed):
				st = inMain
			case IsSeparator(trimmed):
				doc.Consumed.Separators++
				st = inMain
				continue
			default:
				if row, ok := pipeRow(trimmed); ok {
					doc.RevisionRows = append(doc.RevisionRows, row)
				}
				doc.Consumed.Revision++
				continue
			}
		}

		doc.BodyLines = append(doc.BodyLines, line)
		doc.Consumed.Body++
	}

	return doc
}

func isFenceLine(trimmed string) bool {
	_, _, ok := FenceOpen(trimmed)
	return ok
}

func (d *Document) consumeCoverLine(trimmed string, m Markers) {
	switch {
	case trimmed == "":
	case IsSeparator(trimmed):
		d.Consumed.Separators++
		return
	case m.IsForProject(trimmed):
		d.Cover.Subtitle = cleanCoverLine(trimmed)
	default:
		if f := coverField.FindStringSubmatch(trimmed); f != nil {
			d.setCoverField(f[1], cleanCoverLine(f[2]))
		} else {
			d.Cover.Extra = append(d.Cover.Extra, cleanCoverLine(trimmed))
		}
	}
	d.Consumed.Cover++
}

func (d *Document) setCoverField(label, value string) {
	switch strings.ToLower(label) {
	case "version", "版本":
		d.Cover.Version = value
	case "author", "作者":
		d.Cover.Author = value
	case "organization", "organisation", "company", "组织", "单位":
		d.Cover.Organization = value
	case "date", "日期":
		d.Cover.Date = value
	}
}

func cleanCoverLine(s string) string {
	return strings.TrimSpace(stripEmphasis(stripListMarker(s)))
}

// pipeRow splits a "| a | b |" line into trimmed cells. Alignment rows
// report ok == false.
func pipeRow(trimmed string) ([]string, bool) {
	if !strings.HasPrefix(trimmed, "|") {
		return nil, false
	}
	cells := SplitPipeRow(trimmed)
	aligned := len(cells) > 0
	for _, c := range cells {
		if !alignmentCell.MatchString(c) {
			aligned = false
			break
		}
	}
	if aligned {
		return nil, false
	}
	return cells, true
}

// SplitPipeRow splits a pipe table line into trimmed cells. Leading and
// trailing pipes are optional and "\|" is kept as a literal pipe.
func SplitPipeRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	if strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-1]
	}

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '|':
			cur.WriteByte('|')
			i++
		case s[i] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

// IsAlignmentRow reports whether a pipe table line is the |---|:--:| row.
func IsAlignmentRow(line string) bool {
	if !strings.HasPrefix(strings.TrimSpace(line), "|") {
		return false
	}
	_, ok := pipeRow(strings.TrimSpace(line))
	return !ok
}
