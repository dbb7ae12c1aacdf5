package diagram

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// PNGSize reads the pixel dimensions from a PNG IHDR chunk.
func PNGSize(data []byte) (width, height int, ok bool) {
	if len(data) < 24 || !bytes.HasPrefix(data, pngSignature) || string(data[12:16]) != "IHDR" {
		return 0, 0, false
	}
	w := binary.BigEndian.Uint32(data[16:20])
	h := binary.BigEndian.Uint32(data[20:24])
	if w == 0 || h == 0 || w > math.MaxInt32 || h > math.MaxInt32 {
		return 0, 0, false
	}
	return int(w), int(h), true
}

// SVGSize reads the size of the root <svg> element from its width and height
// attributes, falling back to the viewBox. Percentages are ignored.
func SVGSize(data []byte) (width, height int, ok bool) {
	z := html.NewTokenizer(bytes.NewReader(data))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return 0, 0, false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "svg" {
				continue
			}
			var w, h float64
			var viewBox string
			for _, a := range tok.Attr {
				switch a.Key {
				case "width":
					w = parseLength(a.Val)
				case "height":
					h = parseLength(a.Val)
				case "viewbox":
					viewBox = a.Val
				}
			}
			if w <= 0 || h <= 0 {
				vw, vh := parseViewBox(viewBox)
				if w <= 0 {
					w = vw
				}
				if h <= 0 {
					h = vh
				}
			}
			if w <= 0 || h <= 0 {
				return 0, 0, false
			}
			return int(math.Round(w)), int(math.Round(h)), true
		}
	}
}

func parseLength(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0
	}
	s = strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseViewBox(s string) (w, h float64) {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	if len(f) != 4 {
		return 0, 0
	}
	w, _ = strconv.ParseFloat(f[2], 64)
	h, _ = strconv.ParseFloat(f[3], 64)
	return w, h
}
