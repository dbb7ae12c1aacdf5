package dateutil_test

import (
	"errors"
	"testing"
	"time"

	"github.com/alnah/go-md2docx/internal/dateutil"
)

var fixed = time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// TestLayout - Token translation
// ---------------------------------------------------------------------------

func TestLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "iso", format: "YYYY-MM-DD", want: "2006-01-02"},
		{name: "long", format: "MMMM D, YYYY", want: "January 2, 2006"},
		{name: "short year", format: "DD.MM.YY", want: "02.01.06"},
		{name: "bracket literal", format: "[Rev] YYYY", want: "Rev 2006"},
		{name: "unclosed bracket", format: "[Rev YYYY", wantErr: true},
		{name: "empty", format: "", wantErr: true},
		{name: "too long", format: string(make([]byte, dateutil.MaxDateFormatLength+1)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := dateutil.Layout(tt.format)
			if tt.wantErr {
				if !errors.Is(err, dateutil.ErrInvalidDateFormat) {
					t.Fatalf("Layout(%q) error = %v, want ErrInvalidDateFormat", tt.format, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Layout(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("Layout(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolve - auto, presets, passthrough
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "passthrough", value: "12 March 2025", want: "12 March 2025"},
		{name: "empty passthrough", value: "", want: ""},
		{name: "auto", value: "auto", want: "2026-03-07"},
		{name: "auto uppercase", value: "AUTO", want: "2026-03-07"},
		{name: "preset", value: "auto:European", want: "07/03/2026"},
		{name: "custom", value: "auto:MMMM YYYY", want: "March 2026"},
		{name: "empty format", value: "auto:", wantErr: true},
		{name: "bad syntax", value: "automatic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := dateutil.Resolve(tt.value, fixed)
			if tt.wantErr {
				if !errors.Is(err, dateutil.ErrInvalidDateFormat) {
					t.Fatalf("Resolve(%q) error = %v, want ErrInvalidDateFormat", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
