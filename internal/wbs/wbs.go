// Package wbs maps source-specific Work-Breakdown-Structure hierarchies
// onto the fixed seven-level canonical scheme used by the estimate model.
package wbs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"estimatex/internal/textnorm"
	"estimatex/pkg/contracts/domain"
)

// MaxLevels is the depth of the canonical scheme. No item ever carries more
// than seven levels; deeper source hierarchies collapse into the last one.
const MaxLevels = 7

// Canonical level codes, "01" (coarsest) through "07" (finest).
const (
	LevelLot        = "01"
	LevelZone       = "02"
	LevelCategory   = "03"
	LevelSubcat     = "04"
	LevelWorkBody   = "05"
	LevelWorkType   = "06"
	LevelPriceGroup = "07"
)

var descriptions = map[string]string{
	LevelLot:        "Lotto/Edificio",
	LevelZone:       "Piano/Zona",
	LevelCategory:   "Categoria",
	LevelSubcat:     "Sottocategoria",
	LevelWorkBody:   "Corpo d'opera",
	LevelWorkType:   "Lavorazione",
	LevelPriceGroup: "Gruppo elenco prezzi",
}

// labelAliases maps normalized label keywords to the canonical level they
// denote. Labels that match nothing here classify as Custom.
var labelAliases = map[string]string{
	"lotto":          LevelLot,
	"edificio":       LevelLot,
	"fabbricato":     LevelLot,
	"piano":          LevelZone,
	"zona":           LevelZone,
	"livello":        LevelZone,
	"categoria":      LevelCategory,
	"capitolo":       LevelCategory,
	"sottocategoria": LevelSubcat,
	"subcategoria":   LevelSubcat,
	"corpo":          LevelWorkBody,
	"opera":          LevelWorkBody,
	"lavorazione":    LevelWorkType,
	"gruppo":         LevelPriceGroup,
	"prezzi":         LevelPriceGroup,
	"tariffa":        LevelPriceGroup,
}

var reCanonicalCode = regexp.MustCompile(`^0[1-7]$`)

// IsCanonicalCode reports whether raw already is a valid canonical level
// code. Used to avoid double-normalization of codes that arrive normalized.
func IsCanonicalCode(raw string) bool {
	return reCanonicalCode.MatchString(strings.TrimSpace(raw))
}

// Description returns the fixed human description of a canonical level
// code, or "Custom" for anything outside the scheme.
func Description(code string) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Custom"
}

// Classify resolves a raw level label to a canonical level code. The second
// result is false when no canonical match exists and the level must be
// treated as Custom.
func Classify(label string) (string, bool) {
	for _, tok := range textnorm.Tokenize(label) {
		if code, ok := labelAliases[tok]; ok {
			return code, true
		}
	}
	return "", false
}

// NormalizeCode converts a source level code into the canonical alphabet.
// Already-canonical codes pass through untouched; bare level numbers from
// the 6-level and 7-level source numbering schemes are zero-padded; codes
// past the seventh level clamp to "07". position is the zero-based depth of
// the level within its source path and decides the code when the raw value
// is not numeric.
func NormalizeCode(raw string, position int) string {
	raw = strings.TrimSpace(raw)
	if IsCanonicalCode(raw) {
		return raw
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
		if n > MaxLevels {
			n = MaxLevels
		}
		return fmt.Sprintf("%02d", n)
	}
	n := position + 1
	if n > MaxLevels {
		n = MaxLevels
	}
	return fmt.Sprintf("%02d", n)
}

// Fragment is one raw hierarchy level attached to a source line item.
type Fragment struct {
	Code  string
	Label string
}

// NormalizePath maps a raw hierarchy path of arbitrary depth onto at most
// seven canonical levels. Levels beyond the seventh are merged into the
// price-list group level rather than dropped. The second result lists the
// labels that classified as Custom, for diagnostic reporting.
func NormalizePath(fragments []Fragment) ([]domain.WbsLevel, []string) {
	if len(fragments) == 0 {
		return nil, nil
	}

	var custom []string
	levels := make([]domain.WbsLevel, 0, MaxLevels)

	for i, frag := range fragments {
		if i >= MaxLevels {
			// Merge the overflow into the deepest level.
			last := &levels[MaxLevels-1]
			last.Description = strings.TrimSpace(last.Description + " / " + labelOrCode(frag))
			continue
		}

		code := ""
		if IsCanonicalCode(frag.Code) {
			code = strings.TrimSpace(frag.Code)
		} else if c, ok := Classify(frag.Label); ok {
			code = c
		} else {
			code = NormalizeCode(frag.Code, i)
			if frag.Label != "" {
				custom = append(custom, frag.Label)
			}
		}

		desc := frag.Label
		if desc == "" {
			desc = Description(code)
		}

		var parent *string
		if len(levels) > 0 {
			p := levels[len(levels)-1].LevelCode
			parent = &p
		}
		levels = append(levels, domain.WbsLevel{
			LevelCode:   code,
			Description: desc,
			ParentCode:  parent,
		})
	}

	return dedupeCodes(levels), custom
}

// dedupeCodes guarantees unique level codes within one path: when two
// fragments resolve to the same code the later one shifts to the next free
// canonical slot, overflowing into "07".
func dedupeCodes(levels []domain.WbsLevel) []domain.WbsLevel {
	seen := make(map[string]bool, len(levels))
	for i := range levels {
		code := levels[i].LevelCode
		for seen[code] && code < LevelPriceGroup {
			n, _ := strconv.Atoi(code)
			code = fmt.Sprintf("%02d", n+1)
		}
		levels[i].LevelCode = code
		seen[code] = true
	}
	return levels
}

// BuildVoceCode builds the global composite item code by concatenating the
// item's resolved level codes in canonical order. The result is the stable
// cross-reference key for the item.
func BuildVoceCode(codes []string) string {
	ordered := make([]string, len(codes))
	copy(ordered, codes)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j] < ordered[j-1]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return strings.Join(ordered, ".")
}

func labelOrCode(f Fragment) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Code
}
