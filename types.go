package md2docx

import (
	"github.com/alnah/go-md2docx/internal/blocks"
	"github.com/alnah/go-md2docx/internal/structure"
)

// Page sizes accepted by WithPageSize.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
)

// Input is one document to convert.
type Input struct {
	Markdown string
	// BaseDir resolves relative image paths. Empty means the working
	// directory.
	BaseDir string
	// CoverDate overrides the date found on the cover. "auto" and
	// "auto:FORMAT" resolve to the conversion date.
	CoverDate string
	// HTML also produces a preview page in Result.HTML.
	HTML bool
}

// Diagnostic is a recoverable content problem. Line is 1-based within the
// document body.
type Diagnostic = blocks.Diagnostic

// RegionCounts records how many input lines each document region consumed.
type RegionCounts = structure.Counts

// DiagramStats summarizes diagram rendering for one document.
type DiagramStats struct {
	Total    int // diagram fences in the body
	Rendered int // embedded as images or SVG
	Degraded int // shown as source
}

// Result is the output of a conversion.
type Result struct {
	DOCX        []byte
	HTML        []byte // nil unless Input.HTML
	Diagnostics []Diagnostic
	Diagrams    DiagramStats
	Regions     RegionCounts
	Headings    int // numbered headings
}
