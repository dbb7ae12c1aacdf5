package diagram

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// Renderer renders diagram sources through the vector and raster chains and
// caches the results. It is safe for concurrent use.
type Renderer struct {
	store   Store
	vector  []VectorStrategy
	raster  []RasterStrategy
	logger  *slog.Logger
	workers int
	tempDir string

	flights singleflight.Group
	// partial memoizes results carrying a single artifact, which the store
	// never reports as hits.
	partial sync.Map // hash -> Rendered
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStore sets the artifact cache. The default is a MemoryStore.
func WithStore(s Store) Option {
	return func(r *Renderer) { r.store = s }
}

// WithVectorStrategies replaces the vector chain.
func WithVectorStrategies(s ...VectorStrategy) Option {
	return func(r *Renderer) { r.vector = s }
}

// WithRasterStrategies replaces the raster chain.
func WithRasterStrategies(s ...RasterStrategy) Option {
	return func(r *Renderer) { r.raster = s }
}

// WithLogger sets the logger for cache hits and degraded stages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithWorkers bounds RenderAll parallelism.
func WithWorkers(n int) Option {
	return func(r *Renderer) { r.workers = n }
}

// WithTempDir sets where per-job scratch directories are created.
func WithTempDir(dir string) Option {
	return func(r *Renderer) { r.tempDir = dir }
}

// NewRenderer creates a Renderer. Without strategy options it uses
// DefaultStrategies over a zero Toolchain.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	if r.vector == nil && r.raster == nil {
		r.vector, r.raster = DefaultStrategies(&Toolchain{})
	}
	if r.store == nil {
		r.store = NewMemoryStore()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.workers <= 0 {
		r.workers = max(1, runtime.GOMAXPROCS(0)/2)
	}
	return r
}

// Render returns the images for source. It never fails: when every strategy
// fails the result has OK() == false.
func (r *Renderer) Render(ctx context.Context, source string) Rendered {
	hash := Hash(source)
	if out, ok := r.cached(hash); ok {
		return out
	}
	v, _, _ := r.flights.Do(hash, func() (any, error) {
		// A flight that just finished may have filled the cache.
		if out, ok := r.cached(hash); ok {
			return out, nil
		}
		return r.render(ctx, source, hash), nil
	})
	return v.(Rendered)
}

// RenderAll renders sources concurrently and returns results in input
// order.
func (r *Renderer) RenderAll(ctx context.Context, sources []string) []Rendered {
	out := make([]Rendered, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, src := range sources {
		g.Go(func() error {
			out[i] = r.Render(gctx, src)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Renderer) cached(hash string) (Rendered, bool) {
	if v, ok := r.partial.Load(hash); ok {
		r.logger.Debug("diagram partial hit", "hash", short(hash))
		return v.(Rendered), true
	}
	e, err := r.store.Get(hash)
	if err != nil {
		return Rendered{}, false
	}
	r.logger.Debug("diagram cache hit", "hash", short(hash))
	return r.result(hash, e), true
}

func (r *Renderer) render(ctx context.Context, source, hash string) Rendered {
	dir, err := os.MkdirTemp(r.tempDir, "md2docx-diagram-*")
	if err != nil {
		r.logger.Warn("diagram scratch dir", "hash", short(hash), "error", err)
		return Rendered{Hash: hash}
	}
	defer func() { _ = os.RemoveAll(dir) }()

	input, _, err := fileutil.WriteTempFile(dir, source, "mmd")
	if err != nil {
		r.logger.Warn("diagram source write", "hash", short(hash), "error", err)
		return Rendered{Hash: hash}
	}
	job := Job{Source: source, Hash: hash, Dir: dir, Input: input}

	var e Entry
	for _, s := range r.vector {
		if ctx.Err() != nil {
			break
		}
		v, err := s.Vector(ctx, job)
		if err == nil {
			e.Vector = v
			break
		}
		r.logger.Warn("vector stage failed", "hash", short(hash), "stage", s.Name(), "error", err)
	}
	for _, s := range r.raster {
		if ctx.Err() != nil {
			break
		}
		p, err := s.Raster(ctx, job, e.Vector)
		if err == nil {
			e.Raster = p
			break
		}
		r.logger.Warn("raster stage failed", "hash", short(hash), "stage", s.Name(), "error", err)
	}

	if len(e.Vector) == 0 && len(e.Raster) == 0 {
		r.logger.Warn("diagram render failed", "hash", short(hash), "error", fmt.Errorf("all %d strategies failed", len(r.vector)+len(r.raster)))
		return Rendered{Hash: hash}
	}
	stored, err := r.store.Put(hash, e)
	if err != nil {
		r.logger.Warn("diagram cache write", "hash", short(hash), "error", err)
		stored = e
	}
	out := r.result(hash, stored)
	if !e.Complete() && ctx.Err() == nil {
		r.partial.Store(hash, out)
	}
	return out
}

func (r *Renderer) result(hash string, e Entry) Rendered {
	out := Rendered{
		Hash:       hash,
		Vector:     e.Vector,
		Raster:     e.Raster,
		VectorPath: e.VectorPath,
		RasterPath: e.RasterPath,
	}
	if w, h, ok := PNGSize(e.Raster); ok {
		out.Width, out.Height = w, h
	} else if w, h, ok := SVGSize(e.Vector); ok {
		out.Width, out.Height = w, h
	}
	return out
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
