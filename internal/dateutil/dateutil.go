// Package dateutil resolves cover-page dates written as "auto" or
// "auto:FORMAT" into concrete strings.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an unusable date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds user-supplied format strings.
const MaxDateFormatLength = 50

// DefaultDateFormat applies to a bare "auto".
const DefaultDateFormat = "YYYY-MM-DD"

// Longest tokens first so "MMMM" wins over "MM".
var tokens = [...]struct{ user, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named formats accepted after "auto:".
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Layout translates a YYYY/MM/DD style format into a time.Format layout.
// Text inside square brackets is copied verbatim.
func Layout(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(format) > MaxDateFormatLength:
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d",
					ErrInvalidDateFormat, len(format)-len(rest))
			}
			b.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		n := 1
		out := rest[:1]
		for _, tok := range tokens {
			if strings.HasPrefix(rest, tok.user) {
				n, out = len(tok.user), tok.layout
				break
			}
		}
		b.WriteString(out)
		rest = rest[n:]
	}
	return b.String(), nil
}

// Resolve returns value unchanged unless it starts with "auto"
// (case-insensitive), in which case now is formatted with the default,
// a preset or a custom format.
func Resolve(value string, now time.Time) (string, error) {
	if !strings.HasPrefix(strings.ToLower(value), "auto") {
		return value, nil
	}

	format := DefaultDateFormat
	switch suffix := value[len("auto"):]; {
	case suffix == "":
	case suffix[0] != ':':
		return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	case len(suffix) == 1:
		return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
	default:
		format = suffix[1:]
		if preset, ok := Presets[strings.ToLower(format)]; ok {
			format = preset
		}
	}

	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return now.Format(layout), nil
}
