// Package md2docx compiles a structured Markdown dialect into DOCX.
//
// # Quick Start
//
//	conv, err := md2docx.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, md2docx.Input{
//	    Markdown: content,
//	    BaseDir:  "/path/to/markdown", // for relative image paths
//	})
//	if err != nil && !errors.Is(err, md2docx.ErrDiagramToolchain) {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.docx", result.DOCX, 0o644)
//
// ErrDiagramToolchain comes with a complete result: every diagram was
// replaced by its source, so the document is still usable.
//
// # Conversion Pipeline
//
//  1. Decomposition into cover, table of contents, revision history and body
//  2. Concurrent rendering of every Mermaid diagram in the body through the
//     external toolchain (flattened SVG, direct SVG, then PNG), with a
//     content-addressed cache
//  3. Single-pass block parsing: numbered headings, page-break heuristics,
//     tables with computed column widths, requirement records, images
//  4. DOCX layout via go-docx, and optionally an HTML preview via goldmark
//
// # Configuration
//
//	conv, err := md2docx.NewConverter(
//	    md2docx.WithTimeout(2 * time.Minute),
//	    md2docx.WithCacheDir("/var/cache/md2docx"),
//	    md2docx.WithPageSize("letter"),
//	)
//
// # Parallel Processing
//
// ConverterPool hands out one Converter per worker for batch jobs:
//
//	pool := md2docx.NewConverterPool(md2docx.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv := pool.Acquire()
//	defer pool.Release(conv)
package md2docx
