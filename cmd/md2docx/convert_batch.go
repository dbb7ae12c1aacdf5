package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	coverDate string
	html      bool
}

// ConversionResult holds the outcome of a single conversion. A result can
// carry both an output path and an error when the document was written in
// degraded form.
type ConversionResult struct {
	InputPath   string
	OutputPath  string
	HTMLPath    string
	Diagnostics []md2docx.Diagnostic
	Diagrams    md2docx.DiagramStats
	Err         error
	Duration    time.Duration
}

// batchError reports failed conversions. It unwraps to every failure so
// exitCodeFor sees the underlying causes.
type batchError struct {
	failed int
	errs   []error
}

func (e *batchError) Error() string   { return fmt.Sprintf("%d conversion(s) failed", e.failed) }
func (e *batchError) Unwrap() []error { return e.errs }

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, cfg *config.Config, pool Pool, env *Environment) error {
	// Resolve "auto" date once for entire batch
	coverDate, err := resolveCoverDate(cfg.Document.Date, env.Now)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", inputPath)
	}

	params := &conversionParams{coverDate: coverDate, html: cfg.Output.HTML}
	results := convertBatch(ctx, pool, files, params)

	return printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
}

// convertBatch processes files concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))
	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark the jobs this worker takes as failed
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("initializing converter: %w", err),
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) (result ConversionResult) {
	start := time.Now()
	result.InputPath = f.InputPath
	defer func() { result.Duration = time.Since(start) }()

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrReadMarkdown, err)
		return result
	}

	out, convErr := conv.Convert(ctx, md2docx.Input{
		Markdown:  string(content),
		BaseDir:   filepath.Dir(f.InputPath),
		CoverDate: params.coverDate,
		HTML:      params.html,
	})
	// A toolchain failure still carries a complete document.
	if out == nil {
		result.Err = convErr
		return result
	}
	result.Diagnostics = out.Diagnostics
	result.Diagrams = out.Diagrams

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: creating output directory: %w%s", ErrWriteOutput, err, hints.ForOutputDirectory())
		return result
	}
	// #nosec G306 -- documents are meant to be readable
	if err := fileutil.WriteFileAtomic(f.OutputPath, out.DOCX, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrWriteOutput, err)
		return result
	}
	result.OutputPath = f.OutputPath

	if params.html && out.HTML != nil {
		htmlPath := htmlOutputPath(f.OutputPath)
		// #nosec G306 -- HTML files are meant to be readable
		if err := fileutil.WriteFileAtomic(htmlPath, out.HTML, filePermissions); err != nil {
			result.Err = fmt.Errorf("%w: %w", ErrWriteOutput, err)
			return result
		}
		result.HTMLPath = htmlPath
	}

	result.Err = convErr
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results and returns a
// *batchError when any conversion failed.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) error {
	summary := countResults(results)
	var errs []error

	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			if r.OutputPath != "" {
				fmt.Fprintf(env.Stderr, "  written with degraded content: %s\n", r.OutputPath)
			}
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v, diagrams %d/%d)\n", r.InputPath, r.OutputPath,
				r.Duration.Round(time.Millisecond), r.Diagrams.Rendered, r.Diagrams.Total)
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.HTMLPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.HTMLPath)
		}
		for _, d := range r.Diagnostics {
			fmt.Fprintf(env.Stderr, "  warning %s:%d: %s\n", r.InputPath, d.Line, d.Message)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if len(errs) == 0 {
		return nil
	}
	return &batchError{failed: summary.Failed, errs: errs}
}
