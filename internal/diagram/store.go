package diagram

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// Entry holds the artifacts cached for one hash.
type Entry struct {
	Vector     []byte
	Raster     []byte
	VectorPath string
	RasterPath string
}

// Complete reports whether both artifacts are present.
func (e Entry) Complete() bool {
	return len(e.Vector) > 0 && len(e.Raster) > 0
}

// Store is a content-addressed artifact cache.
type Store interface {
	// Get returns the entry for key, or ErrCacheMiss unless both the vector
	// and the raster artifact are present.
	Get(key string) (Entry, error)
	// Put stores whichever artifacts e carries and returns the entry with
	// any paths the store assigned.
	Put(key string, e Entry) (Entry, error)
}

var hexKey = regexp.MustCompile(`^[0-9a-f]{16,128}$`)

func validateKey(key string) error {
	if !hexKey.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// FileStore keeps {hash}.svg and {hash}.png in a directory.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) paths(key string) (svg, png string) {
	base := filepath.Join(s.Dir, key)
	return base + ".svg", base + ".png"
}

// Get reads both artifacts for key.
func (s *FileStore) Get(key string) (Entry, error) {
	if err := validateKey(key); err != nil {
		return Entry{}, err
	}
	svgPath, pngPath := s.paths(key)
	vector, err := os.ReadFile(svgPath) // #nosec G304 -- key is a validated hex digest
	if err != nil {
		return Entry{}, missOr(err)
	}
	raster, err := os.ReadFile(pngPath) // #nosec G304 -- key is a validated hex digest
	if err != nil {
		return Entry{}, missOr(err)
	}
	e := Entry{Vector: vector, Raster: raster, VectorPath: svgPath, RasterPath: pngPath}
	if !e.Complete() {
		return Entry{}, ErrCacheMiss
	}
	return e, nil
}

func missOr(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return ErrCacheMiss
	}
	return fmt.Errorf("reading cache: %w", err)
}

// Put writes the artifacts present in e atomically.
func (s *FileStore) Put(key string, e Entry) (Entry, error) {
	if err := validateKey(key); err != nil {
		return e, err
	}
	svgPath, pngPath := s.paths(key)
	if len(e.Vector) > 0 {
		if err := fileutil.WriteFileAtomic(svgPath, e.Vector, 0o644); err != nil {
			return e, fmt.Errorf("writing cache: %w", err)
		}
		e.VectorPath = svgPath
	}
	if len(e.Raster) > 0 {
		if err := fileutil.WriteFileAtomic(pngPath, e.Raster, 0o644); err != nil {
			return e, fmt.Errorf("writing cache: %w", err)
		}
		e.RasterPath = pngPath
	}
	return e, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Get returns a complete entry or ErrCacheMiss.
func (s *MemoryStore) Get(key string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !e.Complete() {
		return Entry{}, ErrCacheMiss
	}
	return e, nil
}

// Put merges e into any existing entry for key.
func (s *MemoryStore) Put(key string, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.entries[key]
	if len(e.Vector) > 0 {
		cur.Vector = e.Vector
	}
	if len(e.Raster) > 0 {
		cur.Raster = e.Raster
	}
	s.entries[key] = cur
	return e, nil
}

// Len returns the number of keys stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
