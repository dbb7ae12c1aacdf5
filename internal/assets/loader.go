// Package assets provides the built-in preview stylesheet and diagram tool
// configuration.
//
// Assets are embedded at compile time. A Resolver can be pointed at a
// directory laid out the same way to override individual files:
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css     # HTML preview stylesheet
//	└── diagram/
//	    └── {name}.json    # diagram tool configuration
//
// Names are validated so they cannot escape the base path, and symlinks are
// resolved before the containment check.
package assets

import (
	"fmt"
	"strings"
)

// Built-in asset names.
const (
	DefaultStyle         = "preview"
	DefaultDiagramConfig = "mermaid"
)

// Loader loads named assets.
type Loader interface {
	// LoadStyle returns a stylesheet by name (without .css).
	// Returns ErrStyleNotFound if it does not exist.
	LoadStyle(name string) (string, error)

	// LoadDiagramConfig returns a diagram tool configuration by name
	// (without .json). Returns ErrDiagramConfigNotFound if it does not exist.
	LoadDiagramConfig(name string) ([]byte, error)
}

// ValidateAssetName rejects empty names and names with separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads an embedded stylesheet.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadDiagramConfig loads an embedded diagram tool configuration.
func LoadDiagramConfig(name string) ([]byte, error) {
	return defaultLoader.LoadDiagramConfig(name)
}
