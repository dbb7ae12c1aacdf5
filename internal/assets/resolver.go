package assets

import "errors"

// Resolver tries an optional override directory first and falls back to the
// embedded assets when a file is not found there.
type Resolver struct {
	custom   Loader // nil without an override directory
	embedded Loader
}

// NewResolver creates a Resolver. An empty customBasePath uses embedded
// assets only.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if customBasePath != "" {
		fs, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fs
	}
	return r, nil
}

// LoadStyle loads a stylesheet, custom first.
func (r *Resolver) LoadStyle(name string) (string, error) {
	if r.custom != nil {
		s, err := r.custom.LoadStyle(name)
		if err == nil || !isNotFound(err) {
			return s, err
		}
	}
	return r.embedded.LoadStyle(name)
}

// LoadDiagramConfig loads a diagram configuration, custom first.
func (r *Resolver) LoadDiagramConfig(name string) ([]byte, error) {
	if r.custom != nil {
		b, err := r.custom.LoadDiagramConfig(name)
		if err == nil || !isNotFound(err) {
			return b, err
		}
	}
	return r.embedded.LoadDiagramConfig(name)
}

// HasCustomLoader reports whether an override directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Only "not found" falls back; validation and I/O errors surface.
func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrDiagramConfigNotFound)
}

var _ Loader = (*Resolver)(nil)
