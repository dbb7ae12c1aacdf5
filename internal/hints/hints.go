// Package hints appends actionable advice to error messages.
// Every hint renders as "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// IsInContainer reports whether we run inside Docker. Tests replace it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

func inCI() bool {
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect advises on the in-process browser fallback.
func ForBrowserConnect() string {
	var out []string
	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		out = append(out, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		out = append(out, "set ROD_BROWSER_BIN to use a custom Chrome")
	}
	return formatHints(out)
}

// ForDiagramToolchain explains how to get mmdc and the flattener on PATH.
// missing lists the tool names that could not be found.
func ForDiagramToolchain(missing []string) string {
	var out []string
	for _, m := range missing {
		switch m {
		case "mmdc":
			out = append(out, "npm install -g @mermaid-js/mermaid-cli or set MD2DOCX_MMDC")
		case "rsvg-convert":
			out = append(out, "install librsvg (rsvg-convert) or set MD2DOCX_FLATTENER")
		}
	}
	if len(out) == 0 {
		out = append(out, "run md2docx doctor to inspect the diagram toolchain")
	}
	return formatHints(out)
}

// ForTimeout suggests raising the per-stage diagram timeout.
func ForTimeout() string {
	return format("for large diagrams, raise --diagram-timeout")
}

// ForConfigNotFound suggests --config or a user config location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-md2docx") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory is attached to output directory creation failures.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForImageFormat is attached to diagnostics for images that cannot be embedded.
func ForImageFormat() string {
	return format("convert the image to PNG or JPEG, the only formats DOCX embedding supports")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
