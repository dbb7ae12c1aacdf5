package md2docx

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")

	// ErrDiagramToolchain is returned alongside a complete result when a
	// document has diagrams and none of them could be rendered.
	ErrDiagramToolchain = errors.New("diagram toolchain unavailable")

	ErrDOCXGeneration   = errors.New("DOCX generation failed")
	ErrPreview          = errors.New("HTML preview failed")
	ErrInvalidCoverDate = errors.New("invalid cover date")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrInvalidCacheDir  = errors.New("invalid diagram cache directory")
)
