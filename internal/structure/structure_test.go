package structure_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/alnah/go-md2docx/internal/structure"
)

const fullDocument = `# Acme Portal
**For project:** Acme Customer Portal
**Version:** 1.2
**Author:** Jane Doe
- **Organization:** Acme Corp
Date: 2026-03-01
Confidential draft

## Table of Contents
- 1. Introduction
- 2. Requirements

## Revision History
| Version | Date | Change |
|---------|:----:|--------|
| 1.0 | 2026-01-01 | Initial |
| 1.2 | 2026-03-01 | Login flow |

---

## 1. Introduction
Body text.

---

## 2. Requirements
`

// ---------------------------------------------------------------------------
// TestDecompose - Region detection
// ---------------------------------------------------------------------------

func TestDecompose_FullDocument(t *testing.T) {
	t.Parallel()

	doc := structure.Decompose(structure.Raw{Text: fullDocument, BaseDir: "/docs"}, structure.Markers{})

	cover := doc.Cover
	checks := []struct{ name, got, want string }{
		{"title", cover.Title, "Acme Portal"},
		{"subtitle", cover.Subtitle, "For project: Acme Customer Portal"},
		{"version", cover.Version, "1.2"},
		{"author", cover.Author, "Jane Doe"},
		{"organization", cover.Organization, "Acme Corp"},
		{"date", cover.Date, "2026-03-01"},
		{"toc title", doc.TOCTitle, "Table of Contents"},
		{"revision title", doc.RevisionTitle, "Revision History"},
		{"base dir", doc.BaseDir, "/docs"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}

	if got := strings.Join(cover.Extra, "|"); got != "Confidential draft" {
		t.Errorf("Extra = %q, want %q", got, "Confidential draft")
	}

	var tocItems []string
	for _, l := range doc.TOCLines {
		if strings.TrimSpace(l) != "" {
			tocItems = append(tocItems, l)
		}
	}
	if len(tocItems) != 2 {
		t.Errorf("TOC items = %q, want 2", tocItems)
	}

	wantRows := [][]string{
		{"Version", "Date", "Change"},
		{"1.0", "2026-01-01", "Initial"},
		{"1.2", "2026-03-01", "Login flow"},
	}
	if fmt.Sprint(doc.RevisionRows) != fmt.Sprint(wantRows) {
		t.Errorf("RevisionRows = %v, want %v", doc.RevisionRows, wantRows)
	}

	if first := firstNonBlank(doc.BodyLines); first != "## 1. Introduction" {
		t.Fatalf("first body line = %q, want first section heading", first)
	}
	if !containsLine(doc.BodyLines, "---") {
		t.Error("separator inside body must be kept for the block parser")
	}
	if doc.Consumed.Separators != 1 {
		t.Errorf("Separators = %d, want 1 (body separators are body lines)", doc.Consumed.Separators)
	}
}

func TestDecompose_NoMarkers(t *testing.T) {
	t.Parallel()

	text := "# Notes\nIntro paragraph.\n\n## Background\nMore text.\n"
	doc := structure.Decompose(structure.Raw{Text: text}, structure.Markers{})

	if doc.HasTOC() || doc.HasRevision() {
		t.Error("document without markers must not report TOC or revision regions")
	}
	if len(doc.TOCLines) != 0 || len(doc.RevisionRows) != 0 {
		t.Errorf("TOC=%v Revision=%v, want empty", doc.TOCLines, doc.RevisionRows)
	}
	if doc.Cover.Title != "Notes" {
		t.Errorf("Title = %q, want Notes", doc.Cover.Title)
	}
	want := []string{"## Background", "More text."}
	if fmt.Sprint(doc.BodyLines) != fmt.Sprint(want) {
		t.Errorf("BodyLines = %q, want %q", doc.BodyLines, want)
	}
}

func TestDecompose_CoverStraightToNumberedSection(t *testing.T) {
	t.Parallel()

	doc := structure.Decompose(structure.Raw{Text: "# T\n## 1. Scope\ntext"}, structure.Markers{})
	if len(doc.BodyLines) != 2 || doc.BodyLines[0] != "## 1. Scope" {
		t.Errorf("BodyLines = %q", doc.BodyLines)
	}
}

func TestDecompose_RevisionHandsHeadingToMain(t *testing.T) {
	t.Parallel()

	text := "# T\n## 修订记录\n| 版本 | 说明 |\n| --- | --- |\n| 1.0 | 初版 |\nstray note\n## Overview\nbody"
	doc := structure.Decompose(structure.Raw{Text: text}, structure.Markers{})

	if doc.RevisionTitle != "修订记录" {
		t.Errorf("RevisionTitle = %q", doc.RevisionTitle)
	}
	if len(doc.RevisionRows) != 2 {
		t.Errorf("RevisionRows = %v, want header + 1 row", doc.RevisionRows)
	}
	if len(doc.BodyLines) != 2 || doc.BodyLines[0] != "## Overview" {
		t.Errorf("BodyLines = %q, want the ending heading re-dispatched to body", doc.BodyLines)
	}
}

func TestDecompose_TOCEndsAtSeparator(t *testing.T) {
	t.Parallel()

	text := "## Contents\n- a\n***\n## Unnumbered\nx"
	doc := structure.Decompose(structure.Raw{Text: text}, structure.Markers{})

	if fmt.Sprint(doc.TOCLines) != fmt.Sprint([]string{"- a"}) {
		t.Errorf("TOCLines = %q", doc.TOCLines)
	}
	if doc.BodyLines[0] != "## Unnumbered" {
		t.Errorf("BodyLines = %q", doc.BodyLines)
	}
}

func TestDecompose_CustomMarkers(t *testing.T) {
	t.Parallel()

	m := structure.Markers{TOC: []string{"Sommaire"}, Revision: []string{"Historique"}, ForProject: []string{"pour"}}
	text := "# Titre\nPour: Projet X\n## Sommaire\n- a\n## Historique\n| v |\n|---|\n| 1 |\n## 1. Intro"
	doc := structure.Decompose(structure.Raw{Text: text}, m)

	if doc.Cover.Subtitle != "Pour: Projet X" {
		t.Errorf("Subtitle = %q", doc.Cover.Subtitle)
	}
	if doc.TOCTitle != "Sommaire" || doc.RevisionTitle != "Historique" {
		t.Errorf("TOCTitle=%q RevisionTitle=%q", doc.TOCTitle, doc.RevisionTitle)
	}
	if fmt.Sprint(doc.BodyLines) != "[## 1. Intro]" {
		t.Errorf("BodyLines = %q", doc.BodyLines)
	}
}

func TestDecompose_ContentEndsCover(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantBody  []string
		wantExtra []string
	}{
		{
			name:      "fence table and image start the body",
			text:      "# Title\n\nIntro paragraph.\n\n```mermaid\ngraph TD\nA-->B\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n### Details\ntext",
			wantBody:  []string{"```mermaid", "graph TD", "A-->B", "```", "", "| a | b |", "|---|---|", "| 1 | 2 |", "", "### Details", "text"},
			wantExtra: []string{"Intro paragraph."},
		},
		{
			name:     "heading inside a fence is not a heading",
			text:     "# Title\n```python\n# comment\nx = 1\n```\n## 1. Intro\ntext",
			wantBody: []string{"```python", "# comment", "x = 1", "```", "## 1. Intro", "text"},
		},
		{
			name:     "image before any section",
			text:     "# Title\n![Logo](logo.png)\nCaption",
			wantBody: []string{"![Logo](logo.png)", "Caption"},
		},
		{
			name:     "tilde fence",
			text:     "# Title\n~~~\n## Not a section\n~~~",
			wantBody: []string{"~~~", "## Not a section", "~~~"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := structure.Decompose(structure.Raw{Text: tt.text}, structure.Markers{})
			if doc.Cover.Title != "Title" {
				t.Errorf("Title = %q, want Title", doc.Cover.Title)
			}
			if fmt.Sprint(doc.BodyLines) != fmt.Sprint(tt.wantBody) {
				t.Errorf("BodyLines = %q, want %q", doc.BodyLines, tt.wantBody)
			}
			if fmt.Sprint(doc.Cover.Extra) != fmt.Sprint(tt.wantExtra) {
				t.Errorf("Cover.Extra = %q, want %q", doc.Cover.Extra, tt.wantExtra)
			}
			if got, want := doc.Consumed.Total(), len(structure.Lines(tt.text)); got != want {
				t.Errorf("consumed %d lines, input has %d", got, want)
			}
		})
	}
}

func TestDecompose_FenceEndsRevision(t *testing.T) {
	t.Parallel()

	text := "# T\n## Revision History\n| v |\n|---|\n| 1 |\n```\n## code\n```"
	doc := structure.Decompose(structure.Raw{Text: text}, structure.Markers{})

	if len(doc.RevisionRows) != 2 {
		t.Errorf("RevisionRows = %v", doc.RevisionRows)
	}
	if fmt.Sprint(doc.BodyLines) != fmt.Sprint([]string{"```", "## code", "```"}) {
		t.Errorf("BodyLines = %q", doc.BodyLines)
	}
}

func TestFenceOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line   string
		wantCh byte
		wantN  int
		wantOK bool
	}{
		{"```", '`', 3, true},
		{"````md", '`', 4, true},
		{"~~~~~ text", '~', 5, true},
		{"``", 0, 0, false},
		{"``` a`b", 0, 0, false},
		{"plain", 0, 0, false},
	}
	for _, tt := range tests {
		ch, n, ok := structure.FenceOpen(tt.line)
		if ch != tt.wantCh || n != tt.wantN || ok != tt.wantOK {
			t.Errorf("FenceOpen(%q) = %q, %d, %v; want %q, %d, %v", tt.line, ch, n, ok, tt.wantCh, tt.wantN, tt.wantOK)
		}
	}
}

func TestClosesFence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		ch   byte
		n    int
		want bool
	}{
		{"```", '`', 3, true},
		{"`````", '`', 4, true},
		{"```", '`', 4, false},
		{"~~~", '`', 3, false},
		{"``` go", '`', 3, false},
	}
	for _, tt := range tests {
		if got := structure.ClosesFence(tt.line, tt.ch, tt.n); got != tt.want {
			t.Errorf("ClosesFence(%q, %q, %d) = %v, want %v", tt.line, tt.ch, tt.n, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestDecompose_Totality - Every line lands in exactly one region
// ---------------------------------------------------------------------------

func TestDecompose_Totality(t *testing.T) {
	t.Parallel()

	pieces := []string{
		"# Title", "## Table of Contents", "## Revision History", "## 1. Intro",
		"## Other", "---", "| a | b |", "|---|---|", "", "text", "**Version:** 2",
		"for project X", "### Deep", "```", "- item",
	}

	for seed := 0; seed < 200; seed++ {
		var lines []string
		for i := 0; i < 5+seed%17; i++ {
			lines = append(lines, pieces[(seed*31+i*7+i*i)%len(pieces)])
		}
		text := strings.Join(lines, "\n")
		doc := structure.Decompose(structure.Raw{Text: text}, structure.Markers{})

		if got, want := doc.Consumed.Total(), len(structure.Lines(text)); got != want {
			t.Fatalf("seed %d: consumed %d lines, input has %d\n%s", seed, got, want, text)
		}
		if doc.Consumed.Body != len(doc.BodyLines) {
			t.Fatalf("seed %d: Body count %d != len(BodyLines) %d", seed, doc.Consumed.Body, len(doc.BodyLines))
		}
	}
}

// ---------------------------------------------------------------------------
// TestHelpers - Lines, headings, pipe rows
// ---------------------------------------------------------------------------

func TestLines(t *testing.T) {
	t.Parallel()

	if got := structure.Lines("a\r\nb\rc\n"); fmt.Sprint(got) != "[a b c]" {
		t.Errorf("Lines() = %q", got)
	}
	if got := structure.Lines(""); got != nil {
		t.Errorf("Lines(\"\") = %q, want nil", got)
	}
}

func TestParseHeading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line      string
		wantLevel int
		wantText  string
		wantOK    bool
	}{
		{"# Title", 1, "Title", true},
		{"##### REQ-FUNC-001 Login", 5, "REQ-FUNC-001 Login", true},
		{"## Closed ##", 2, "Closed", true},
		{"## C#", 2, "C#", true},
		{"#NoSpace", 0, "", false},
		{"####### seven", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			level, text, ok := structure.ParseHeading(tt.line)
			if level != tt.wantLevel || text != tt.wantText || ok != tt.wantOK {
				t.Errorf("ParseHeading(%q) = (%d, %q, %v), want (%d, %q, %v)",
					tt.line, level, text, ok, tt.wantLevel, tt.wantText, tt.wantOK)
			}
		})
	}
}

func TestStripNumberPrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"1. Introduction":    "Introduction",
		"2.3 Scope":          "Scope",
		"2.3.1 Detail":       "Detail",
		"Introduction":       "Introduction",
		"REQ-FUNC-001 Login": "REQ-FUNC-001 Login",
	}
	for in, want := range tests {
		if got := structure.StripNumberPrefix(in); got != want {
			t.Errorf("StripNumberPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitPipeRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"| a | b |", []string{"a", "b"}},
		{"a | b", []string{"a", "b"}},
		{`| x \| y | z |`, []string{"x | y", "z"}},
		{"|  |", []string{""}},
	}
	for _, tt := range tests {
		if got := structure.SplitPipeRow(tt.in); fmt.Sprintf("%q", got) != fmt.Sprintf("%q", tt.want) {
			t.Errorf("SplitPipeRow(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !structure.IsAlignmentRow("| :--- | ---: |") {
		t.Error("IsAlignmentRow() = false for alignment row")
	}
	if structure.IsAlignmentRow("| a | --- |") {
		t.Error("IsAlignmentRow() = true for data row")
	}
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func firstNonBlank(lines []string) string {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return l
		}
	}
	return ""
}
