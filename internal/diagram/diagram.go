// Package diagram renders diagram source into vector and raster images.
//
// Rendering walks two ordered strategy chains. The vector chain stops at the
// first strategy that produces an SVG; the raster chain then runs on its own
// and may use that SVG as input. A result is usable when either chain
// succeeded. Results are cached under the SHA-256 of the source, and
// concurrent requests for the same source share a single render.
package diagram

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Sentinel errors for diagram rendering.
var (
	// ErrCacheMiss indicates the store holds no complete entry for a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidKey indicates a cache key that is not a content hash.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrStageTimeout indicates an external tool exceeded its time budget.
	ErrStageTimeout = errors.New("render stage timed out")

	// ErrToolFailed indicates an external tool exited with an error.
	ErrToolFailed = errors.New("render tool failed")

	// ErrNoOutput indicates a tool succeeded but left no output file.
	ErrNoOutput = errors.New("render tool produced no output")

	// ErrNoVector indicates a raster strategy needs an SVG that is missing.
	ErrNoVector = errors.New("no vector image to rasterize")
)

// Hash returns the content hash of a diagram source. It is the cache key
// and is stable across runs.
func Hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Rendered is the outcome of one diagram render. The zero value (apart
// from Hash) means every strategy failed.
type Rendered struct {
	Hash       string
	Vector     []byte // SVG
	Raster     []byte // PNG
	VectorPath string // set when the SVG is cached on disk
	RasterPath string
	Width      int // pixels, from the raster when present
	Height     int
}

// OK reports whether at least one image was produced.
func (r Rendered) OK() bool {
	return len(r.Vector) > 0 || len(r.Raster) > 0
}

// HasRaster reports whether a PNG is available.
func (r Rendered) HasRaster() bool {
	return len(r.Raster) > 0
}
