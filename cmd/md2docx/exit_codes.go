package main

import (
	"errors"
	"os"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/dateutil"
	"github.com/alnah/go-md2docx/internal/diagram"
)

// Exit codes for the md2docx CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Headless browser fallback could not start
	ExitDiagram = 5 // Document written, but no diagram could be rendered
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, diagram.ErrBrowserConnect) {
		return ExitBrowser
	}

	// Diagram toolchain (exit 5)
	if errors.Is(err, md2docx.ErrDiagramToolchain) {
		return ExitDiagram
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, md2docx.ErrInvalidCacheDir) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrOutOfRange) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, md2docx.ErrEmptyMarkdown) ||
		errors.Is(err, md2docx.ErrInvalidCoverDate) ||
		errors.Is(err, md2docx.ErrInvalidAssetPath) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidPageSize) ||
		errors.Is(err, ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}
