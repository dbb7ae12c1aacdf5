package assets

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestValidateAssetName
// ---------------------------------------------------------------------------

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "preview", false},
		{"dash", "dark-mode", false},
		{"empty", "", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"dot", "preview.css", true},
		{"traversal", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateAssetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAssetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("error = %v, want ErrInvalidAssetName", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEmbeddedLoader
// ---------------------------------------------------------------------------

func TestEmbeddedLoader(t *testing.T) {
	t.Parallel()

	css, err := LoadStyle(DefaultStyle)
	if err != nil || !strings.Contains(css, "table") {
		t.Errorf("LoadStyle(%q) = %d bytes, %v", DefaultStyle, len(css), err)
	}

	raw, err := LoadDiagramConfig(DefaultDiagramConfig)
	if err != nil {
		t.Fatalf("LoadDiagramConfig() error = %v", err)
	}
	var cfg struct {
		HTMLLabels *bool `json:"htmlLabels"`
		Flowchart  struct {
			HTMLLabels *bool `json:"htmlLabels"`
		} `json:"flowchart"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("embedded diagram config is not JSON: %v", err)
	}
	if cfg.HTMLLabels == nil || *cfg.HTMLLabels || cfg.Flowchart.HTMLLabels == nil || *cfg.Flowchart.HTMLLabels {
		t.Error("diagram config must disable HTML labels at both levels")
	}

	if _, err := LoadStyle("nope"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(nope) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := LoadDiagramConfig("nope"); !errors.Is(err, ErrDiagramConfigNotFound) {
		t.Errorf("LoadDiagramConfig(nope) error = %v, want ErrDiagramConfigNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolver
// ---------------------------------------------------------------------------

func TestResolver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "styles", "preview.css"), []byte("body{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := NewResolver(dir)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	if !r.HasCustomLoader() {
		t.Error("HasCustomLoader() = false")
	}

	t.Run("custom wins", func(t *testing.T) {
		t.Parallel()
		got, err := r.LoadStyle("preview")
		if err != nil || got != "body{}" {
			t.Errorf("LoadStyle() = %q, %v", got, err)
		}
	})

	t.Run("falls back to embedded", func(t *testing.T) {
		t.Parallel()
		got, err := r.LoadDiagramConfig(DefaultDiagramConfig)
		if err != nil || len(got) == 0 {
			t.Errorf("LoadDiagramConfig() = %d bytes, %v", len(got), err)
		}
	})

	t.Run("invalid name does not fall back", func(t *testing.T) {
		t.Parallel()
		if _, err := r.LoadStyle("../x"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("error = %v, want ErrInvalidAssetName", err)
		}
	})

	t.Run("missing base path", func(t *testing.T) {
		t.Parallel()
		if _, err := NewResolver(filepath.Join(dir, "absent")); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("embedded only", func(t *testing.T) {
		t.Parallel()
		r, err := NewResolver("")
		if err != nil || r.HasCustomLoader() {
			t.Fatalf("NewResolver(\"\") = %v, %v", r, err)
		}
	})
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.css")
	if err := os.WriteFile(secret, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(secret, filepath.Join(base, "styles", "evil.css")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	l, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadStyle("evil"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(evil) error = %v, want ErrPathTraversal", err)
	}
}
