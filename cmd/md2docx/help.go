package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert markdown files to DOCX")
	fmt.Fprintln(w, "  doctor     Check the diagram toolchain and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2docx help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to DOCX. Directories are walked recursively;")
	fmt.Fprintln(w, "paths listed in a .md2docxignore file at the directory root are skipped.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>           Per-document timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --html                  Also write an HTML preview")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -p, --page-size <s>         Page size: a4, letter")
	fmt.Fprintln(w, "      --date <s>              Cover date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                              Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                              Presets (case-insensitive): iso, european, us, long")
	fmt.Fprintln(w, "      --code-style <s>        Syntax highlighting style (default: github)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagrams:")
	fmt.Fprintln(w, "      --mmdc <path>           Diagram tool binary (env MD2DOCX_MMDC)")
	fmt.Fprintln(w, "      --flattener <path>      SVG flattener binary (env MD2DOCX_FLATTENER)")
	fmt.Fprintln(w, "      --diagram-timeout <d>   Timeout per tool run")
	fmt.Fprintln(w, "      --cache-dir <dir>       Persistent diagram cache (env MD2DOCX_CACHE_DIR)")
	fmt.Fprintln(w, "      --no-cache              Ignore the configured cache directory")
	fmt.Fprintln(w, "      --browser               Headless Chrome raster fallback")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pagination:")
	fmt.Fprintln(w, "      --no-section-breaks     Keep top-level sections on the same page")
	fmt.Fprintln(w, "      --no-orphan-groups      No break before heading groups")
	fmt.Fprintln(w, "      --no-stranded           No break before stranded headings")
	fmt.Fprintln(w, "      --no-suppression        Keep breaks right after a parent heading")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assets:")
	fmt.Fprintln(w, "      --asset-path <dir>      Custom asset directory")
	fmt.Fprintln(w, "      --style <name>          HTML preview stylesheet")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show detailed timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 general, 2 usage, 3 I/O, 4 browser, 5 diagram toolchain")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx doctor [--json] [--show-config] [-c config]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the diagram tool, the flattener, Chrome and the diagram cache.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json          Machine-readable output")
	fmt.Fprintln(w, "      --show-config   Print the effective configuration as YAML and exit")
	fmt.Fprintln(w, "  -c, --config <name> Config file name or path")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2docx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2docx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
