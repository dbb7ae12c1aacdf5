package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// diagramFlags holds diagram toolchain flags.
type diagramFlags struct {
	tool      string
	flattener string
	timeout   string
	cacheDir  string
	browser   bool
	noCache   bool
}

// documentFlags holds output document flags.
type documentFlags struct {
	pageSize  string
	date      string
	codeStyle string
}

// assetFlags holds asset override flags.
type assetFlags struct {
	assetPath string
	style     string
}

// paginationFlags disables individual page-break rules.
type paginationFlags struct {
	noSectionBreaks bool
	noOrphanGroups  bool
	noStranded      bool
	noSuppression   bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	timeout    string
	html       bool
	diagram    diagramFlags
	document   documentFlags
	assets     assetFlags
	pagination paginationFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addDiagramFlags adds diagram toolchain flags to a FlagSet.
func addDiagramFlags(fs *flag.FlagSet, f *diagramFlags) {
	fs.StringVar(&f.tool, "mmdc", "", "diagram tool binary (default: mmdc)")
	fs.StringVar(&f.flattener, "flattener", "", "SVG flattener binary (default: rsvg-convert)")
	fs.StringVar(&f.timeout, "diagram-timeout", "", "timeout per diagram tool run (e.g., 30s)")
	fs.StringVar(&f.cacheDir, "cache-dir", "", "persistent diagram cache directory")
	fs.BoolVar(&f.browser, "browser", false, "rasterize diagrams with headless Chrome as a last resort")
	fs.BoolVar(&f.noCache, "no-cache", false, "ignore any configured diagram cache directory")
}

// addDocumentFlags adds document flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVarP(&f.pageSize, "page-size", "p", "", "page size: a4, letter")
	fs.StringVar(&f.date, "date", "", "cover date (\"auto\" = today)")
	fs.StringVar(&f.codeStyle, "code-style", "", "syntax highlighting style (default: github)")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.style, "style", "", "HTML preview stylesheet name")
}

// addPaginationFlags adds page-break rule flags to a FlagSet.
func addPaginationFlags(fs *flag.FlagSet, f *paginationFlags) {
	fs.BoolVar(&f.noSectionBreaks, "no-section-breaks", false, "do not start top-level sections on a new page")
	fs.BoolVar(&f.noOrphanGroups, "no-orphan-groups", false, "do not break before heading groups")
	fs.BoolVar(&f.noStranded, "no-stranded", false, "do not break before stranded headings")
	fs.BoolVar(&f.noSuppression, "no-suppression", false, "keep breaks right after a parent heading")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.html, "html", false, "also write an HTML preview")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addDiagramFlags(fs, &f.diagram)
	addDocumentFlags(fs, &f.document)
	addAssetFlags(fs, &f.assets)
	addPaginationFlags(fs, &f.pagination)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
