package diagram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/contrast"
	"github.com/alnah/go-md2docx/internal/fileutil"
)

// Toolchain defaults.
const (
	DefaultTool       = "mmdc"
	DefaultFlattener  = "rsvg-convert"
	DefaultWidth      = 1600
	DefaultBlockWidth = 480
	DefaultScale      = 2.0
	DefaultBackground = "white"
)

// DefaultFlattenerArgs makes rsvg-convert emit SVG with text as paths.
var DefaultFlattenerArgs = []string{"-f", "svg"}

// Job is one render request. Dir is a scratch directory owned by the
// renderer; Input is the diagram source written inside it.
type Job struct {
	Source string
	Hash   string
	Dir    string
	Input  string
}

// VectorStrategy produces an SVG for a job.
type VectorStrategy interface {
	Name() string
	Vector(ctx context.Context, job Job) ([]byte, error)
}

// RasterStrategy produces a PNG for a job. vector is the output of the vector
// chain and may be nil.
type RasterStrategy interface {
	Name() string
	Raster(ctx context.Context, job Job, vector []byte) ([]byte, error)
}

// Toolchain describes the external diagram tool and flattener. Zero fields
// take the package defaults.
type Toolchain struct {
	Runner        Runner
	Tool          string
	Flattener     string
	FlattenerArgs []string
	Width         int
	BlockWidth    int
	Scale         float64
	Background    string
	Config        []byte // diagram tool JSON configuration
}

func (t *Toolchain) runner() Runner {
	if t.Runner == nil {
		return ExecRunner{}
	}
	return t.Runner
}

func (t *Toolchain) tool() string      { return or(t.Tool, DefaultTool) }
func (t *Toolchain) flattener() string { return or(t.Flattener, DefaultFlattener) }

func (t *Toolchain) background() string { return or(t.Background, DefaultBackground) }

func (t *Toolchain) flattenerArgs() []string {
	if len(t.FlattenerArgs) == 0 {
		return DefaultFlattenerArgs
	}
	return t.FlattenerArgs
}

// RasterWidth returns the raster width for source: narrow for block
// diagrams, wide otherwise.
func (t *Toolchain) RasterWidth(source string) int {
	if IsBlockDiagram(source) {
		if t.BlockWidth > 0 {
			return t.BlockWidth
		}
		return DefaultBlockWidth
	}
	if t.Width > 0 {
		return t.Width
	}
	return DefaultWidth
}

func (t *Toolchain) scale() float64 {
	if t.Scale > 0 {
		return t.Scale
	}
	return DefaultScale
}

// configFile writes the tool configuration into the job directory.
func (t *Toolchain) configFile(job Job) (string, error) {
	cfg := t.Config
	if len(cfg) == 0 {
		var err error
		if cfg, err = assets.LoadDiagramConfig(assets.DefaultDiagramConfig); err != nil {
			return "", err
		}
	}
	path := filepath.Join(job.Dir, "config.json")
	if err := os.WriteFile(path, cfg, 0o600); err != nil {
		return "", fmt.Errorf("writing diagram config: %w", err)
	}
	return path, nil
}

// render runs the diagram tool writing to out and returns the path the tool
// actually wrote.
func (t *Toolchain) render(ctx context.Context, job Job, out string, extra ...string) (string, error) {
	cfg, err := t.configFile(job)
	if err != nil {
		return "", err
	}
	args := []string{"-i", job.Input, "-o", out, "-c", cfg, "-b", t.background(), "-q"}
	args = append(args, extra...)
	if err := t.runner().Run(ctx, t.tool(), args...); err != nil {
		return "", err
	}
	return LocateOutput(out)
}

// LocateOutput finds the file a tool wrote for expected. Some tools append
// a suffix ("out.svg.svg", "out-1.svg"); the file found is renamed to
// expected.
func LocateOutput(expected string) (string, error) {
	ext := filepath.Ext(expected)
	stem := strings.TrimSuffix(expected, ext)
	candidates := []string{expected, expected + ext, stem + "-1" + ext}
	if matches, err := filepath.Glob(stem + "*" + ext); err == nil {
		candidates = append(candidates, matches...)
	}
	for _, c := range candidates {
		if !fileutil.FileExists(c) {
			continue
		}
		if c != expected {
			if err := os.Rename(c, expected); err != nil {
				return "", fmt.Errorf("normalizing %s: %w", filepath.Base(c), err)
			}
		}
		return expected, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutput, filepath.Base(expected))
}

func readOutput(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path inside the job directory
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoOutput, filepath.Base(path))
	}
	return data, nil
}

// FlattenedVector renders an intermediate SVG with native text labels,
// fixes text contrast, then converts text to paths with the flattener.
type FlattenedVector struct{ *Toolchain }

// Name implements VectorStrategy.
func (FlattenedVector) Name() string { return "flattened-vector" }

// Vector implements VectorStrategy.
func (s FlattenedVector) Vector(ctx context.Context, job Job) ([]byte, error) {
	mid, err := s.render(ctx, job, filepath.Join(job.Dir, "intermediate.svg"))
	if err != nil {
		return nil, err
	}
	raw, err := readOutput(mid)
	if err != nil {
		return nil, err
	}
	fixed := contrast.Apply(string(raw), job.Source)
	if err := os.WriteFile(mid, []byte(fixed), 0o600); err != nil {
		return nil, fmt.Errorf("writing intermediate svg: %w", err)
	}

	final := filepath.Join(job.Dir, "flattened.svg")
	args := append(append([]string{}, s.flattenerArgs()...), "-o", final, mid)
	if err := s.runner().Run(ctx, s.flattener(), args...); err != nil {
		return nil, err
	}
	final, err = LocateOutput(final)
	if err != nil {
		return nil, err
	}
	return readOutput(final)
}

// DirectVector asks the diagram tool for the final SVG.
type DirectVector struct{ *Toolchain }

// Name implements VectorStrategy.
func (DirectVector) Name() string { return "direct-vector" }

// Vector implements VectorStrategy.
func (s DirectVector) Vector(ctx context.Context, job Job) ([]byte, error) {
	out, err := s.render(ctx, job, filepath.Join(job.Dir, "direct.svg"))
	if err != nil {
		return nil, err
	}
	raw, err := readOutput(out)
	if err != nil {
		return nil, err
	}
	return []byte(contrast.Apply(string(raw), job.Source)), nil
}

// ToolRaster asks the diagram tool for a PNG.
type ToolRaster struct{ *Toolchain }

// Name implements RasterStrategy.
func (ToolRaster) Name() string { return "tool-raster" }

// Raster implements RasterStrategy.
func (s ToolRaster) Raster(ctx context.Context, job Job, _ []byte) ([]byte, error) {
	out, err := s.render(ctx, job, filepath.Join(job.Dir, "raster.png"),
		"-w", strconv.Itoa(s.RasterWidth(job.Source)),
		"-s", strconv.FormatFloat(s.scale(), 'f', -1, 64))
	if err != nil {
		return nil, err
	}
	data, err := readOutput(out)
	if err != nil {
		return nil, err
	}
	if _, _, ok := PNGSize(data); !ok {
		return nil, errors.New("raster output is not a PNG")
	}
	return data, nil
}

// IsBlockDiagram reports whether the first statement of source declares a
// block layout diagram. Front matter and %% comments are skipped.
func IsBlockDiagram(source string) bool {
	inFrontMatter := false
	for i, line := range strings.Split(source, "\n") {
		t := strings.TrimSpace(line)
		switch {
		case t == "---" && (i == 0 || inFrontMatter):
			inFrontMatter = !inFrontMatter
			continue
		case inFrontMatter, t == "", strings.HasPrefix(t, "%%"):
			continue
		}
		kind := strings.Fields(t)[0]
		return kind == "block" || kind == "block-beta"
	}
	return false
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// DefaultStrategies returns the standard chains for tc: flattened then direct
// vector, and tool raster.
func DefaultStrategies(tc *Toolchain) ([]VectorStrategy, []RasterStrategy) {
	return []VectorStrategy{FlattenedVector{tc}, DirectVector{tc}},
		[]RasterStrategy{ToolRaster{tc}}
}
