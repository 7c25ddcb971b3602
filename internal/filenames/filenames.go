// Package filenames derives filesystem-safe names from free-form prompt text.
//
// A prompt may carry a line such as "Server name: Alpha-1". ExtractLabel pulls
// the value out of that line, Sanitize reduces it to [A-Za-z0-9_-], and Derive
// chains the two, falling back to common.FallbackLabel whenever nothing usable
// is left.
package filenames

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/gophforge/internal/common"
)

// labelPattern matches the marker anywhere in a line; the captured value runs
// to the end of that line only.
var labelPattern = regexp.MustCompile(`(?i)server[ \t]+name[ \t]*:[ \t]*([^\r\n]*)`)

// ExtractLabel returns the trimmed value following the first "Server name:"
// marker in text, or common.FallbackLabel if there is no marker or the value
// is blank.
func ExtractLabel(text string) string {
	m := labelPattern.FindStringSubmatch(text)
	if m == nil {
		return common.FallbackLabel
	}
	label := strings.TrimSpace(m[1])
	if label == "" {
		return common.FallbackLabel
	}
	return label
}

// Sanitize turns every whitespace rune into '_' and drops every rune outside
// ASCII letters, digits, '_' and '-'. The result may be empty.
func Sanitize(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r == '_' || r == '-',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Derive extracts and sanitizes the label of text. It never returns "".
func Derive(text string) string {
	stem := Sanitize(ExtractLabel(text))
	if stem == "" {
		return common.FallbackLabel
	}
	return stem
}

// Filename appends the image extension to stem.
func Filename(stem string) string {
	return stem + common.ImageExtension
}
