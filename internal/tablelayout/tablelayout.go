// Package tablelayout allocates table column widths in twips.
//
// Widths are derived from the display length of each column, where East Asian
// wide and fullwidth characters count double. Identifier columns (values such
// as "SRS-AUTH-001") get a protected minimum so they never wrap, and the
// allocation always sums exactly to the configured total.
package tablelayout

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// DefaultTotal is the usable width of an A4 portrait page with 1" margins.
const DefaultTotal = 9360

var idPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,5}-[A-Z][A-Z0-9]*(-[A-Z][A-Z0-9]*)*-\d+$`)

// Spec is a parsed pipe table ready for layout.
type Spec struct {
	Headers []string
	Rows    [][]string
	NoWrap  []bool // NoWrap[i] marks column i as an identifier column
}

// Columns returns the number of columns, taken from the header row.
func (s Spec) Columns() int { return len(s.Headers) }

// Widths holds one width per column, in twips.
type Widths []int

// Sum returns the total width.
func (w Widths) Sum() int {
	total := 0
	for _, v := range w {
		total += v
	}
	return total
}

// Band bounds column widths for a class of tables.
type Band struct {
	Min   int
	Max   int
	IDMin int
}

// Bands selects a Band by column count.
type Bands struct {
	Wide   Band // up to 2 columns
	Medium Band // 3 or 4 columns
	Narrow Band // 5 columns or more
}

// DefaultBands returns the stock width bands.
func DefaultBands() Bands {
	return Bands{
		Wide:   Band{Min: 1800, Max: 7200, IDMin: 2400},
		Medium: Band{Min: 1200, Max: 5000, IDMin: 2000},
		Narrow: Band{Min: 800, Max: 3600, IDMin: 1600},
	}
}

// For returns the band for a table with n columns.
func (b Bands) For(n int) Band {
	switch {
	case n <= 2:
		return b.Wide
	case n <= 4:
		return b.Medium
	default:
		return b.Narrow
	}
}

// DisplayWidth returns the number of display cells s occupies.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// IsIDValue reports whether a cell holds an identifier like "REQ-FUNC-001".
// Surrounding emphasis or code markers are ignored.
func IsIDValue(cell string) bool {
	return idPattern.MatchString(unwrapCell(cell))
}

func unwrapCell(cell string) string {
	s := strings.TrimSpace(cell)
	for _, m := range []string{"**", "`"} {
		if len(s) > 2*len(m) && strings.HasPrefix(s, m) && strings.HasSuffix(s, m) {
			s = strings.TrimSpace(s[len(m) : len(s)-len(m)])
		}
	}
	return s
}

// DetectNoWrap marks identifier columns. A column qualifies when it has at
// least one non-empty data cell and every non-empty data cell is an ID.
func DetectNoWrap(headers []string, rows [][]string) []bool {
	out := make([]bool, len(headers))
	for col := range headers {
		seen := false
		ok := true
		for _, row := range rows {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			seen = true
			if !IsIDValue(row[col]) {
				ok = false
				break
			}
		}
		out[col] = seen && ok
	}
	return out
}

// Engine computes column widths.
type Engine struct {
	Total int
	Bands Bands
}

// DefaultEngine returns an engine with the stock total and bands.
func DefaultEngine() Engine {
	return Engine{Total: DefaultTotal, Bands: DefaultBands()}
}

type column struct {
	length int
	id     bool
	min    int
	max    int
	width  int
}

// Layout returns widths for s that sum exactly to e.Total.
func (e Engine) Layout(s Spec) Widths {
	n := s.Columns()
	if n == 0 {
		return Widths{}
	}
	total := e.Total
	if total <= 0 {
		total = DefaultTotal
	}

	cols := e.measure(s)

	lengthSum := 0
	for _, c := range cols {
		lengthSum += c.length
	}
	for i := range cols {
		c := &cols[i]
		c.width = clamp(total*c.length/lengthSum, c.min, c.max)
	}

	if sumWidths(cols) > total {
		compress(cols, total)
	}

	distributeResidual(cols, total)

	out := make(Widths, n)
	for i, c := range cols {
		out[i] = c.width
	}
	return out
}

func (e Engine) measure(s Spec) []column {
	n := s.Columns()
	band := e.Bands.For(n)
	if band == (Band{}) {
		band = DefaultBands().For(n)
	}
	idMin := band.IDMin
	if idMin <= band.Min {
		idMin = band.Min + band.Min/2
	}

	cols := make([]column, n)
	for i := range cols {
		c := &cols[i]
		c.length = DisplayWidth(strings.TrimSpace(s.Headers[i]))
		for _, row := range s.Rows {
			if i < len(row) {
				c.length = max(c.length, DisplayWidth(strings.TrimSpace(row[i])))
			}
		}
		c.length = max(c.length, 1)
		c.id = i < len(s.NoWrap) && s.NoWrap[i]
		c.min, c.max = band.Min, band.Max
		if c.id {
			c.min = idMin
			c.max = max(band.Max, idMin)
		}
	}
	return cols
}

// compress shrinks columns until they fit total. Non-ID columns give way
// first, proportionally and never below their minimum. ID columns only shrink
// toward their protected minimum once every non-ID column is at its floor.
// If even the minimums overflow, everything is scaled proportionally.
func compress(cols []column, total int) {
	if shrink(cols, total, func(c column) bool { return !c.id }) {
		return
	}
	if shrink(cols, total, func(c column) bool { return c.id }) {
		return
	}

	minSum := 0
	for _, c := range cols {
		minSum += c.min
	}
	for i := range cols {
		cols[i].width = cols[i].min * total / minSum
	}
}

// shrink scales the selected columns down so the table fits total, pinning
// columns that hit their minimum and repeating until stable. It reports
// whether the table fits.
func shrink(cols []column, total int, selected func(column) bool) bool {
	for {
		fixed, flexible := 0, 0
		for _, c := range cols {
			if selected(c) && c.width > c.min {
				flexible += c.width
			} else {
				fixed += c.width
			}
		}
		if fixed+flexible <= total {
			return true
		}
		if flexible == 0 || fixed >= total {
			for i := range cols {
				if selected(cols[i]) {
					cols[i].width = cols[i].min
				}
			}
			return sumWidths(cols) <= total
		}

		budget := total - fixed
		pinned := false
		for i := range cols {
			c := &cols[i]
			if !selected(*c) || c.width <= c.min {
				continue
			}
			w := c.width * budget / flexible
			if w < c.min {
				w = c.min
				pinned = true
			}
			c.width = w
		}
		if !pinned {
			return sumWidths(cols) <= total
		}
	}
}

// distributeResidual makes the sum exact by adjusting the widest non-ID
// column, or the last column when every column is an ID column.
func distributeResidual(cols []column, total int) {
	diff := total - sumWidths(cols)
	if diff == 0 {
		return
	}
	target := -1
	for i, c := range cols {
		if c.id {
			continue
		}
		if target < 0 || c.width > cols[target].width {
			target = i
		}
	}
	if target < 0 {
		target = len(cols) - 1
	}
	cols[target].width += diff
}

func sumWidths(cols []column) int {
	total := 0
	for _, c := range cols {
		total += c.width
	}
	return total
}

func clamp(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
