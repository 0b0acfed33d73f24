// Package six parses the hierarchical SIX XML interchange format into the
// canonical estimate model. The document is scanned once as a token stream;
// each "preventivo" element opens an estimate section and each nested
// "voce" yields one line item. Cross-item textual references are resolved
// after the scan completes.
package six

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "estimatex/internal/errors"
	"estimatex/internal/money"
	"estimatex/internal/refs"
	"estimatex/internal/wbs"
	"estimatex/pkg/contracts/domain"
)

// Parse consumes a raw SIX document and returns the normalized estimate.
// Recoverable findings ride back as diagnostics; a malformed document
// aborts with a structural error and no estimate. filename is used for
// logging only.
func Parse(data []byte, filename string) (*domain.NormalizedEstimate, apperrors.Diagnostics, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		project     rawProject
		preventivi  []rawPreventivo
		units       = map[string]string{}
		priceLists  = map[string]string{}
		groupValues = map[string]string{}
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apperrors.Structural(
				fmt.Sprintf("malformed SIX document at byte %d", dec.InputOffset()), err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "progetto":
			if err := dec.DecodeElement(&project, &start); err != nil {
				return nil, nil, apperrors.Structural("malformed progetto element", err)
			}
		case "preventivo":
			var p rawPreventivo
			if err := dec.DecodeElement(&p, &start); err != nil {
				return nil, nil, apperrors.Structural("malformed preventivo element", err)
			}
			preventivi = append(preventivi, p)
		case "unitaDiMisura":
			var u rawUnit
			if err := dec.DecodeElement(&u, &start); err != nil {
				return nil, nil, apperrors.Structural("malformed unitaDiMisura element", err)
			}
			units[u.ID] = u.Simbolo
		case "prezzario":
			var pl rawPriceList
			if err := dec.DecodeElement(&pl, &start); err != nil {
				return nil, nil, apperrors.Structural("malformed prezzario element", err)
			}
			priceLists[pl.ID] = pl.Nome
		case "raggruppamento":
			var g rawGroupValue
			if err := dec.DecodeElement(&g, &start); err != nil {
				return nil, nil, apperrors.Structural("malformed raggruppamento element", err)
			}
			groupValues[g.ID] = g.Valore
		}
	}

	b := newBuilder(project.Name)
	for i := range preventivi {
		b.addPreventivo(&preventivi[i])
	}
	b.resolveReferences()

	slog.Debug("parsed SIX document",
		slog.String("filename", filename),
		slog.Int("preventivi", len(b.estimate.Preventivi)),
		slog.Int("items", len(b.estimate.Items)),
		slog.Int("units", len(units)),
		slog.Int("price_lists", len(priceLists)),
		slog.Int("group_values", len(groupValues)),
		slog.Int("diagnostics", len(b.diags)))

	return b.estimate, b.diags, nil
}

// builder is the transient accumulator for one Parse call. It owns the
// estimate under construction plus the per-section bookkeeping needed for
// reference resolution; nothing in it survives the call.
type builder struct {
	estimate *domain.NormalizedEstimate
	diags    apperrors.Diagnostics

	levelSeen map[string]bool
	// sectionOf maps item index → index of its preventivo, so references
	// can prefer a same-section match.
	sectionOf []int
	// pending references discovered while scanning, resolved at the end.
	pending []pendingRef
}

type pendingRef struct {
	itemIdx int
	ref     refs.Reference
	locator string
}

func newBuilder(projectName string) *builder {
	return &builder{
		estimate: &domain.NormalizedEstimate{
			ProjectName: projectName,
			Preventivi:  []domain.Preventivo{},
			Items:       []domain.Item{},
			WbsLevels:   []domain.WbsLevel{},
		},
		levelSeen: map[string]bool{},
	}
}

func (b *builder) addPreventivo(p *rawPreventivo) {
	id := p.ID
	if id == "" {
		id = "preventivo-" + uuid.NewString()[:8]
		slog.Warn("preventivo has no id, synthesized a fallback",
			slog.Int("section", len(b.estimate.Preventivi)),
			slog.String("fallback_id", id))
	}
	sectionIdx := len(b.estimate.Preventivi)
	b.estimate.Preventivi = append(b.estimate.Preventivi, domain.Preventivo{ID: id, Name: p.Breve})

	for i := range p.Voci {
		b.addVoce(&p.Voci[i], sectionIdx, id, i)
	}
}

func (b *builder) addVoce(v *rawVoce, sectionIdx int, sectionID string, ordinal int) {
	locator := fmt.Sprintf("preventivo[%s]/voce[%d]", sectionID, ordinal)

	progressive := v.Progressivo
	if progressive == 0 {
		progressive = len(b.estimate.Items) + 1
	}

	quantity := b.resolveQuantity(v, locator)
	price := b.coerceOptional(v.Prezzo, locator, "prezzoUnitario")

	var amount *decimal.Decimal
	if price != nil {
		q, a := money.CalculateLineAmount(&quantity, price)
		quantity, amount = *q, a
	}

	levels, custom := wbs.NormalizePath(fragments(v.Wbs))
	for _, label := range custom {
		b.diags.Add(apperrors.KindUnknownWbsLevel, locator,
			"wbs level %q has no canonical classification, treated as Custom", label)
	}

	wbsIDs := make([]string, 0, len(levels))
	for _, l := range levels {
		wbsIDs = append(wbsIDs, l.LevelCode)
		if !b.levelSeen[l.LevelCode] {
			b.levelSeen[l.LevelCode] = true
			b.estimate.WbsLevels = append(b.estimate.WbsLevels, l)
		}
	}

	code := v.Codice
	if code == "" && len(wbsIDs) > 0 {
		code = wbs.BuildVoceCode(wbsIDs)
	}

	itemIdx := len(b.estimate.Items)
	b.estimate.Items = append(b.estimate.Items, domain.Item{
		ProgressiveID: progressive,
		Code:          code,
		Description:   v.Descrizione,
		Quantity:      quantity,
		UnitPrice:     price,
		Amount:        amount,
		WbsIDs:        wbsIDs,
	})
	b.sectionOf = append(b.sectionOf, sectionIdx)

	// References may sit in the comment or, failing that, the description.
	if ref, found := refs.Extract(v.Commento); found {
		b.pending = append(b.pending, pendingRef{itemIdx: itemIdx, ref: ref, locator: locator})
	} else if ref, found := refs.Extract(v.Descrizione); found {
		b.pending = append(b.pending, pendingRef{itemIdx: itemIdx, ref: ref, locator: locator})
	}
}

// resolveQuantity prefers the voce's explicit quantity and falls back to
// summing its rilevazioni rows.
func (b *builder) resolveQuantity(v *rawVoce, locator string) decimal.Decimal {
	if v.Quantita != "" {
		d, ok := money.CoerceDecimal(v.Quantita)
		if !ok {
			b.diags.Add(apperrors.KindNumericCoercion, locator,
				"quantity %q is not numeric, treated as zero", v.Quantita)
			return decimal.Zero
		}
		return d
	}

	total := decimal.Zero
	for i, r := range v.Rilevazioni {
		d, ok := money.CoerceDecimal(r.Quantita)
		if !ok {
			b.diags.Add(apperrors.KindNumericCoercion, fmt.Sprintf("%s/rilevazione[%d]", locator, i),
				"measurement quantity %q is not numeric, ignored", r.Quantita)
			continue
		}
		total = total.Add(d)
	}
	return total
}

func (b *builder) coerceOptional(raw, locator, field string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, ok := money.CoerceDecimal(raw)
	if !ok {
		b.diags.Add(apperrors.KindNumericCoercion, locator,
			"%s %q is not numeric, treated as absent", field, raw)
		return nil
	}
	return &d
}

// resolveReferences links every pending reference to a target item,
// preferring a progressive-number match within the same section before
// falling back to a global match. A dangling reference never aborts the
// parse; it is recorded as a diagnostic.
func (b *builder) resolveReferences() {
	for _, p := range b.pending {
		target := b.findTarget(p.itemIdx, p.ref.Number)
		if target < 0 {
			b.diags.Add(apperrors.KindUnresolvedReference, p.locator,
				"reference %q matches no item", p.ref.Raw)
			continue
		}
		id := b.estimate.Items[target].ProgressiveID
		b.estimate.Items[p.itemIdx].RelatedItemID = &id
	}
}

func (b *builder) findTarget(fromIdx, number int) int {
	section := b.sectionOf[fromIdx]
	global := -1
	for i := range b.estimate.Items {
		if i == fromIdx || b.estimate.Items[i].ProgressiveID != number {
			continue
		}
		if b.sectionOf[i] == section {
			return i
		}
		if global < 0 {
			global = i
		}
	}
	return global
}

func fragments(raw []rawWbsFragment) []wbs.Fragment {
	out := make([]wbs.Fragment, 0, len(raw))
	for _, f := range raw {
		out = append(out, wbs.Fragment{Code: f.Codice, Label: strings.TrimSpace(f.Label)})
	}
	return out
}
