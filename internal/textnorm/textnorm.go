// Package textnorm tokenizes free-text item descriptions for the matching
// heuristics. Tokens are lowercased, accent-folded and filtered against a
// fixed Italian construction-domain stopword list.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords holds Italian function words and multi-letter units of measure
// that carry no matching signal. Single-letter unit tokens ("h", "m") are
// deliberately not listed: the tokenizer has always retained them, and the
// matching heuristics depend on that behavior.
var stopwords = map[string]bool{
	"a": true, "ad": true, "al": true, "agli": true, "ai": true, "alla": true,
	"alle": true, "allo": true, "anche": true, "che": true, "chi": true,
	"come": true, "con": true, "cui": true, "da": true, "dagli": true,
	"dai": true, "dal": true, "dalla": true, "dalle": true, "dallo": true,
	"degli": true, "dei": true, "del": true, "della": true, "delle": true,
	"dello": true, "di": true, "e": true, "ed": true, "fra": true,
	"gli": true, "i": true, "il": true, "in": true, "la": true, "le": true,
	"lo": true, "nei": true, "nel": true, "nella": true, "nelle": true,
	"nello": true, "non": true, "o": true, "od": true, "ogni": true,
	"per": true, "piu": true, "su": true, "sugli": true, "sui": true,
	"sul": true, "sulla": true, "sulle": true, "sullo": true, "tra": true,
	"un": true, "una": true, "uno": true,
	// multi-letter units of measure
	"cad": true, "cadauno": true, "kg": true, "mc": true, "ml": true,
	"mq": true, "nr": true, "pz": true, "ton": true,
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes combining diacritical marks ("qualità" → "qualita").
func StripAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

// Tokenize splits a description into matching tokens: lowercase,
// accent-folded, split on non-alphanumeric boundaries, with pure numeric
// tokens and stopwords removed.
func Tokenize(text string) []string {
	folded := StripAccents(strings.ToLower(text))

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" || isNumeric(f) || stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
