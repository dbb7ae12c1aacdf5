package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*
var styles embed.FS

//go:embed diagram/*
var diagramConfigs embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads an embedded stylesheet by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// LoadDiagramConfig loads an embedded diagram configuration by name.
func (e *EmbeddedLoader) LoadDiagramConfig(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	content, err := diagramConfigs.ReadFile("diagram/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrDiagramConfigNotFound, name)
	}
	return content, nil
}

var _ Loader = (*EmbeddedLoader)(nil)
