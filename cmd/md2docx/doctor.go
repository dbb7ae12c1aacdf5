package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/hints"
	"github.com/alnah/go-md2docx/internal/yamlutil"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// versionProbeTimeout bounds each "--version" probe.
const versionProbeTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string     `json:"status"`
	Tool      toolInfo   `json:"diagram_tool"`
	Flattener toolInfo   `json:"flattener"`
	Chrome    chromeInfo `json:"chrome"`
	Cache     cacheInfo  `json:"cache"`
	Env       envInfo    `json:"environment"`
	System    systemInfo `json:"system"`
	Warnings  []string   `json:"warnings,omitempty"`
	Errors    []string   `json:"errors,omitempty"`
}

// toolInfo holds detection results for an external binary.
type toolInfo struct {
	Name    string `json:"name"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Sandbox  bool   `json:"sandbox"`
}

// cacheInfo holds diagram cache directory results.
type cacheInfo struct {
	Dir      string `json:"dir,omitempty"`
	Writable bool   `json:"writable"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	jsonOutput := fs.Bool("json", false, "machine-readable output")
	configName := fs.StringP("config", "c", "", "config file name or path")
	showConfig := fs.Bool("show-config", false, "print the effective configuration as YAML and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	cfg := config.DefaultConfig()
	if *configName != "" {
		loaded, err := config.LoadConfig(*configName)
		if err != nil {
			fmt.Fprintln(env.Stderr, describeError(err, nil, *configName))
			return exitCodeFor(err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv(env.Getenv)

	if *showConfig {
		out, err := yamlutil.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(env.Stderr, err)
			return ExitGeneral
		}
		_, _ = env.Stdout.Write(out)
		return ExitSuccess
	}

	result := runDoctor(cfg, env.Getenv)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, getenv func(string) string) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  getenv("ROD_NO_SANDBOX"),
			BrowserBin: getenv("ROD_BROWSER_BIN"),
		},
	}

	checkTools(result, cfg)
	checkChrome(result, cfg.Diagram.Browser)
	checkCache(result, cfg.Diagram.CacheDir)
	checkEnvironment(result, getenv)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkTools locates the diagram tool and the flattener. A missing tool
// only degrades diagrams, so it is a warning.
func checkTools(result *doctorResult, cfg *config.Config) {
	var missing []string
	for _, t := range []struct {
		info       *toolInfo
		configured string
		name       string
	}{
		{&result.Tool, cfg.Diagram.Tool, diagram.DefaultTool},
		{&result.Flattener, cfg.Diagram.Flattener, diagram.DefaultFlattener},
	} {
		bin := t.configured
		if bin == "" {
			bin = t.name
		}
		t.info.Name = bin
		path, err := diagram.LookPath(bin)
		if err != nil {
			missing = append(missing, t.name)
			continue
		}
		t.info.Found = true
		t.info.Path = path
		t.info.Version = probeVersion(path)
	}
	if len(missing) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Diagram tools not found: %s; diagrams will be shown as source%s",
				strings.Join(missing, ", "), hints.ForDiagramToolchain(missing)))
	}
}

// probeVersion returns the first line of "bin --version", or "".
func probeVersion(bin string) string {
	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, bin, "--version").Output() // #nosec G204 -- resolved tool path
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line
}

// checkChrome detects Chrome/Chromium. It is only an error when the browser
// raster fallback is enabled.
func checkChrome(result *doctorResult, required bool) {
	result.Chrome.Required = required
	report := func(msg string) {
		if required {
			result.Errors = append(result.Errors, msg+hints.ForBrowserConnect())
		}
	}

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			report("Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(chromePath); err != nil {
		report(fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkCache verifies the diagram cache directory can be created and written.
func checkCache(result *doctorResult, dir string) {
	if dir == "" {
		return
	}
	result.Cache.Dir = dir
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cache directory not usable: %v", err))
		return
	}
	if !probeWrite(dir) {
		result.Errors = append(result.Errors, fmt.Sprintf("Cache directory not writable: %s", dir))
		return
	}
	result.Cache.Writable = true
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Required && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("MD2DOCX_CONTAINER") == "1" {
		return true, "MD2DOCX_CONTAINER=1"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for diagram scratch files.
func checkSystem(result *doctorResult) {
	if probeWrite(os.TempDir()) {
		result.System.TempWritable = true
		return
	}
	result.Errors = append(result.Errors,
		fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
}

func probeWrite(dir string) bool {
	f, err := os.CreateTemp(dir, "md2docx-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(filepath.Clean(name))
	return true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2docx doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Diagram toolchain")
	for _, t := range []toolInfo{r.Tool, r.Flattener} {
		if !t.Found {
			fmt.Fprintf(w, "  [WARN] %s: not found\n", t.Name)
			continue
		}
		fmt.Fprintf(w, "  [OK] %s: %s\n", t.Name, t.Path)
		if t.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", t.Version)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	switch {
	case r.Chrome.Found:
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	case r.Chrome.Required:
		fmt.Fprintln(w, "  [ERROR] Not found")
	default:
		fmt.Fprintln(w, "  [OK] Not found (browser fallback disabled)")
	}
	fmt.Fprintln(w)

	if r.Cache.Dir != "" {
		fmt.Fprintln(w, "Diagram cache")
		if r.Cache.Writable {
			fmt.Fprintf(w, "  [OK] %s: writable\n", r.Cache.Dir)
		} else {
			fmt.Fprintf(w, "  [ERROR] %s: not writable\n", r.Cache.Dir)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
