package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrStyleNotFound indicates the requested stylesheet does not exist.
	ErrStyleNotFound = errors.New("style not found")

	// ErrDiagramConfigNotFound indicates the requested diagram tool
	// configuration does not exist.
	ErrDiagramConfigNotFound = errors.New("diagram config not found")

	// ErrInvalidAssetName indicates the asset name contains path separators,
	// dots or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the override directory is not usable.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates an attempt to read outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)
