package tablelayout_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/alnah/go-md2docx/internal/tablelayout"
)

// ---------------------------------------------------------------------------
// TestDisplayWidth - East Asian width
// ---------------------------------------------------------------------------

func TestDisplayWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"Login", 5},
		{"用户登录", 8},
		{"ID 编号", 7},
		{"ＡＢ", 4}, // fullwidth latin
		{"café", 4},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := tablelayout.DisplayWidth(tt.in); got != tt.want {
				t.Errorf("DisplayWidth(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsIDValue / TestDetectNoWrap - Identifier columns
// ---------------------------------------------------------------------------

func TestIsIDValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"SRS-AUTH-001", true},
		{"REQ-FUNC-12", true},
		{"TC-UI-LOGIN-3", true},
		{" **NFR-PERF-002** ", true},
		{"`HWR-IO-7`", true},
		{"srs-auth-001", false},
		{"SRS-001", false},
		{"TOOLONGX-AUTH-001", false},
		{"SRS-AUTH-001 extra", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := tablelayout.IsIDValue(tt.in); got != tt.want {
				t.Errorf("IsIDValue(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectNoWrap(t *testing.T) {
	t.Parallel()

	headers := []string{"ID", "Name", "Ref", "Empty"}
	rows := [][]string{
		{"SRS-AUTH-001", "Login", "SYS-CORE-1", ""},
		{"SRS-AUTH-002", "Logout", "n/a", ""},
		{"", "Audit"},
	}

	got := tablelayout.DetectNoWrap(headers, rows)
	want := []bool{true, false, false, false}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("DetectNoWrap() = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestLayout - Allocation scenarios
// ---------------------------------------------------------------------------

func TestLayout_IDColumnScenario(t *testing.T) {
	t.Parallel()

	headers := []string{"ID", "Name", "Description"}
	rows := [][]string{{"SRS-AUTH-001", "Login", "User can log in with email and password"}}
	spec := tablelayout.Spec{Headers: headers, Rows: rows, NoWrap: tablelayout.DetectNoWrap(headers, rows)}

	if !spec.NoWrap[0] {
		t.Fatal("column 0 not detected as an ID column")
	}

	got := tablelayout.DefaultEngine().Layout(spec)

	if got.Sum() != tablelayout.DefaultTotal {
		t.Fatalf("Sum() = %d, want %d (widths %v)", got.Sum(), tablelayout.DefaultTotal, got)
	}
	if got[0] < tablelayout.DefaultBands().Medium.IDMin {
		t.Errorf("ID width = %d, want >= %d", got[0], tablelayout.DefaultBands().Medium.IDMin)
	}
	if got[2] <= got[1] {
		t.Errorf("Description width %d should exceed Name width %d", got[2], got[1])
	}
	want := tablelayout.Widths{2005, 1200, 6155}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Layout() = %v, want %v", got, want)
	}
}

func TestLayout_CompressesNonIDFirst(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 20)
	spec := tablelayout.Spec{
		Headers: []string{"ID", "A", "B", "C", "D"},
		Rows:    [][]string{{"REQ-FUNC-001", long, long, long, long}},
		NoWrap:  []bool{true, false, false, false, false},
	}

	got := tablelayout.DefaultEngine().Layout(spec)

	if got.Sum() != tablelayout.DefaultTotal {
		t.Fatalf("Sum() = %d, want %d (widths %v)", got.Sum(), tablelayout.DefaultTotal, got)
	}
	if got[0] != tablelayout.DefaultBands().Narrow.IDMin {
		t.Errorf("ID width = %d, want protected minimum %d", got[0], tablelayout.DefaultBands().Narrow.IDMin)
	}
	for i, w := range got[1:] {
		if w < tablelayout.DefaultBands().Narrow.Min {
			t.Errorf("column %d width %d below minimum", i+1, w)
		}
	}
}

func TestLayout_AllIDColumns(t *testing.T) {
	t.Parallel()

	spec := tablelayout.Spec{
		Headers: []string{"From", "To"},
		Rows:    [][]string{{"REQ-A-1", "TC-A-1"}},
		NoWrap:  []bool{true, true},
	}
	got := tablelayout.DefaultEngine().Layout(spec)

	if got.Sum() != tablelayout.DefaultTotal {
		t.Fatalf("Sum() = %d, want %d", got.Sum(), tablelayout.DefaultTotal)
	}
	for i, w := range got {
		if w < tablelayout.DefaultBands().Wide.IDMin {
			t.Errorf("ID column %d width %d below protected minimum", i, w)
		}
	}
}

func TestLayout_Degenerate(t *testing.T) {
	t.Parallel()

	headers := make([]string, 14)
	for i := range headers {
		headers[i] = fmt.Sprintf("Column %d", i)
	}
	got := tablelayout.DefaultEngine().Layout(tablelayout.Spec{Headers: headers})

	if len(got) != 14 {
		t.Fatalf("len = %d, want 14", len(got))
	}
	if got.Sum() != tablelayout.DefaultTotal {
		t.Errorf("Sum() = %d, want %d", got.Sum(), tablelayout.DefaultTotal)
	}
}

func TestLayout_Empty(t *testing.T) {
	t.Parallel()

	if got := tablelayout.DefaultEngine().Layout(tablelayout.Spec{}); len(got) != 0 {
		t.Errorf("Layout(empty) = %v, want empty", got)
	}
}

func TestLayout_CustomTotal(t *testing.T) {
	t.Parallel()

	e := tablelayout.Engine{Total: 6000, Bands: tablelayout.DefaultBands()}
	got := e.Layout(tablelayout.Spec{Headers: []string{"Key", "Value"}, Rows: [][]string{{"a", "b"}}})
	if got.Sum() != 6000 {
		t.Errorf("Sum() = %d, want 6000", got.Sum())
	}
}

// ---------------------------------------------------------------------------
// TestLayout_Exactness - Sum and ID protection over many shapes
// ---------------------------------------------------------------------------

func TestLayout_Exactness(t *testing.T) {
	t.Parallel()

	engine := tablelayout.DefaultEngine()
	bands := tablelayout.DefaultBands()
	cellTexts := []string{"x", "Login", "REQ-FUNC-001", "用户可以使用邮箱和密码登录系统", strings.Repeat("long text ", 15)}

	for cols := 1; cols <= 11; cols++ {
		for seed := 0; seed < len(cellTexts)*3; seed++ {
			headers := make([]string, cols)
			row := make([]string, cols)
			noWrap := make([]bool, cols)
			for c := 0; c < cols; c++ {
				headers[c] = fmt.Sprintf("H%d", c)
				row[c] = cellTexts[(seed+c*7)%len(cellTexts)]
				noWrap[c] = tablelayout.IsIDValue(row[c])
			}
			spec := tablelayout.Spec{Headers: headers, Rows: [][]string{row}, NoWrap: noWrap}
			got := engine.Layout(spec)

			if got.Sum() != tablelayout.DefaultTotal {
				t.Fatalf("cols=%d seed=%d: Sum() = %d, want %d (%v)", cols, seed, got.Sum(), tablelayout.DefaultTotal, got)
			}
			band := bands.For(cols)
			minSum := 0
			for c := range noWrap {
				if noWrap[c] {
					minSum += band.IDMin
				} else {
					minSum += band.Min
				}
			}
			if minSum > tablelayout.DefaultTotal {
				continue // minimums cannot all fit; scaled proportionally
			}
			for c, w := range got {
				if noWrap[c] && w < band.IDMin {
					t.Errorf("cols=%d seed=%d: ID column %d width %d < %d", cols, seed, c, w, band.IDMin)
				}
			}
		}
	}
}
