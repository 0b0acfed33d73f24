// Package refs extracts cross-item references from free text. Comment
// fields frequently point at another line item ("vedi voce n. 2280", "#123",
// "[789]"); the resolver pulls the referenced progressive number out so the
// parser can link the two items.
package refs

import (
	"regexp"
	"strconv"
)

// pattern pairs a name (for diagnostics) with one extraction rule. The
// rules are tried in declaration order and the first match wins.
type pattern struct {
	name string
	re   *regexp.Regexp
}

var patterns = []pattern{
	{"voce", regexp.MustCompile(`(?i)\bvoce\s*(?:n(?:\.|°|um\.?|umero)?\s*)?(\d+)`)},
	{"hash", regexp.MustCompile(`#(\d+)`)},
	{"arrow", regexp.MustCompile(`(?:→|->)\s*(\d+)`)},
	{"brackets", regexp.MustCompile(`\[(\d+)\]`)},
	{"angles", regexp.MustCompile(`<(\d+)>`)},
}

// Reference is one extracted cross-item reference.
type Reference struct {
	Number  int    // referenced progressive number
	Pattern string // name of the rule that matched
	Raw     string // matched source text
}

// Extract returns the first reference found in text, trying each pattern in
// priority order. The second result is false when no pattern matches.
func Extract(text string) (Reference, bool) {
	if text == "" {
		return Reference{}, false
	}
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return Reference{Number: n, Pattern: p.name, Raw: m[0]}, true
	}
	return Reference{}, false
}
