// Package contrast keeps diagram labels legible on explicitly coloured nodes.
//
// Mermaid lets authors set a node or class fill without choosing a text
// colour. ParseFills reads those directives from the diagram source, TextColor
// picks black or white for each fill, and Apply injects scoped CSS overrides
// into the rendered SVG without touching its geometry.
package contrast

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Foreground colours returned by TextColor.
const (
	Dark  = "#000000"
	Light = "#FFFFFF"
)

// Fill is a fill colour declared for a node id or a class.
type Fill struct {
	Target string // node id or class name
	Class  bool   // true for classDef directives
	Color  string // normalised "#rrggbb"
}

var (
	styleDirective    = regexp.MustCompile(`^\s*style\s+(\S+)\s+(.+?)\s*;?\s*$`)
	classDefDirective = regexp.MustCompile(`^\s*classDef\s+(\S+)\s+(.+?)\s*;?\s*$`)
	safeIdent         = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

// namedColors covers the CSS names authors commonly use in diagrams.
var namedColors = map[string]string{
	"black":      "#000000",
	"white":      "#ffffff",
	"red":        "#ff0000",
	"green":      "#008000",
	"blue":       "#0000ff",
	"yellow":     "#ffff00",
	"orange":     "#ffa500",
	"purple":     "#800080",
	"gray":       "#808080",
	"grey":       "#808080",
	"lightgray":  "#d3d3d3",
	"lightgrey":  "#d3d3d3",
	"lightblue":  "#add8e6",
	"lightgreen": "#90ee90",
	"pink":       "#ffc0cb",
	"navy":       "#000080",
	"teal":       "#008080",
	"maroon":     "#800000",
	"darkgreen":  "#006400",
	"darkblue":   "#00008b",
	"gold":       "#ffd700",
	"cyan":       "#00ffff",
	"magenta":    "#ff00ff",
}

// knownText maps frequently used palette fills to a tested text colour.
// Entries here win over the luminance rule.
var knownText = map[string]string{
	"#ffffff": Dark,
	"#000000": Light,
	"#ff0000": Light,
	"#008000": Light,
	"#0000ff": Light,
	"#ffff00": Dark,
	"#ffa500": Dark,
	"#ff99ff": Dark,
	"#bbbbff": Dark,
	"#333333": Light,
	"#4caf50": Light, // material green
	"#2196f3": Light, // material blue
	"#f44336": Light, // material red
	"#ff9800": Dark,  // material orange
	"#9c27b0": Light, // material purple
	"#607d8b": Light, // material blue grey
	"#e1f5fe": Dark,
	"#fff3e0": Dark,
	"#e8f5e9": Dark,
	"#fce4ec": Dark,
}

// NormalizeColor converts "#abc", "#aabbcc" or a known colour name to
// lowercase "#rrggbb". ok is false for anything else.
func NormalizeColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if named, ok := namedColors[s]; ok {
		return named, true
	}
	if !strings.HasPrefix(s, "#") {
		return "", false
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return "", false
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", false
	}
	return "#" + hex, true
}

// TextColor returns a legible foreground for fill. Unparseable fills get Dark.
func TextColor(fill string) string {
	c, ok := NormalizeColor(fill)
	if !ok {
		return Dark
	}
	if text, ok := knownText[c]; ok {
		return text
	}
	r, _ := strconv.ParseUint(c[1:3], 16, 8)
	g, _ := strconv.ParseUint(c[3:5], 16, 8)
	b, _ := strconv.ParseUint(c[5:7], 16, 8)
	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if luminance > 0.5 {
		return Dark
	}
	return Light
}

// ParseFills extracts fill declarations from diagram source. Directives that
// already set a text colour are skipped.
func ParseFills(source string) []Fill {
	var fills []Fill
	for _, line := range strings.Split(source, "\n") {
		var targets, props string
		class := false
		if m := styleDirective.FindStringSubmatch(line); m != nil {
			targets, props = m[1], m[2]
		} else if m := classDefDirective.FindStringSubmatch(line); m != nil {
			targets, props, class = m[1], m[2], true
		} else {
			continue
		}

		fill, explicitText := parseProps(props)
		if explicitText || fill == "" {
			continue
		}
		color, ok := NormalizeColor(fill)
		if !ok {
			continue
		}
		for _, target := range strings.Split(targets, ",") {
			target = strings.TrimSpace(target)
			if !safeIdent.MatchString(target) {
				continue
			}
			fills = append(fills, Fill{Target: target, Class: class, Color: color})
		}
	}
	return fills
}

func parseProps(props string) (fill string, explicitText bool) {
	for _, p := range strings.Split(props, ",") {
		key, value, ok := strings.Cut(p, ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "fill":
			fill = strings.TrimSpace(value)
		case "color":
			explicitText = true
		}
	}
	return fill, explicitText
}

// Stylesheet renders CSS rules that recolour label text inside each target.
// Later declarations for the same target win, matching Mermaid.
func Stylesheet(fills []Fill) string {
	if len(fills) == 0 {
		return ""
	}

	last := make(map[Fill]string, len(fills))
	var order []Fill
	for _, f := range fills {
		key := Fill{Target: f.Target, Class: f.Class}
		if _, seen := last[key]; !seen {
			order = append(order, key)
		}
		last[key] = TextColor(f.Color)
	}
	sort.SliceStable(order, func(i, j int) bool { return !order[i].Class && order[j].Class })

	var b strings.Builder
	for _, key := range order {
		var scopes []string
		if key.Class {
			scopes = []string{"." + key.Target}
		} else {
			scopes = []string{fmt.Sprintf(`g[id^="flowchart-%s-"]`, key.Target), "#" + key.Target}
		}
		var selectors []string
		for _, s := range scopes {
			selectors = append(selectors, s+" text", s+" tspan")
		}
		fmt.Fprintf(&b, "%s{fill:%s !important;}\n", strings.Join(selectors, ","), last[key])
	}
	return b.String()
}

// Apply injects the stylesheet for source's fills right after the root <svg>
// start tag. svg is returned unchanged when there is nothing to inject or no
// root element can be found.
func Apply(svg, source string) string {
	css := Stylesheet(ParseFills(source))
	if css == "" {
		return svg
	}
	end := rootTagEnd(svg)
	if end < 0 {
		return svg
	}
	return svg[:end] + "<style>" + strings.ReplaceAll(css, "</", `<\/`) + "</style>" + svg[end:]
}

// rootTagEnd returns the offset just past the '>' that closes the first <svg
// start tag, honouring quoted attribute values, or -1.
func rootTagEnd(doc string) int {
	lower := strings.ToLower(doc)
	start := -1
	for i := 0; ; {
		idx := strings.Index(lower[i:], "<svg")
		if idx < 0 {
			return -1
		}
		idx += i
		next := idx + len("<svg")
		if next < len(lower) && strings.ContainsRune(" \t\r\n>/", rune(lower[next])) {
			start = next
			break
		}
		i = next
	}

	var quote byte
	for i := start; i < len(doc); i++ {
		c := doc[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			if doc[i-1] == '/' {
				return -1 // self-closing root has no children
			}
			return i + 1
		}
	}
	return -1
}
