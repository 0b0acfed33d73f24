package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WbsLevel is one canonical Work-Breakdown-Structure level of an estimate.
// LevelCode is always a zero-padded two-digit string in "01".."07"; codes
// outside that range never appear in normalized output.
type WbsLevel struct {
	LevelCode   string  `json:"level_code" db:"level_code" validate:"required,len=2"`
	Description string  `json:"description" db:"description" validate:"required"`
	ParentCode  *string `json:"parent_code,omitempty" db:"parent_code"`
}

// Item is a single normalized estimate line item ("voce").
// Quantity is always present (zero when the source carried none); UnitPrice
// and Amount are nil when the source row did not price the item.
type Item struct {
	ProgressiveID int              `json:"progressive_id" db:"progressive_id" validate:"min=0"`
	Code          string           `json:"code" db:"code"`
	Description   string           `json:"description" db:"description"`
	Quantity      decimal.Decimal  `json:"quantity" db:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty" db:"unit_price"`
	Amount        *decimal.Decimal `json:"amount,omitempty" db:"amount"`
	WbsIDs        []string         `json:"wbs_ids" db:"wbs_ids" validate:"max=7,dive,len=2"`
	RelatedItemID *int             `json:"related_item_id,omitempty" db:"related_item_id"`
}

// Preventivo is one estimate section of the source document.
type Preventivo struct {
	ID   string `json:"id" db:"id" validate:"required"`
	Name string `json:"name" db:"name"`
}

// NormalizedEstimate is the canonical, format-agnostic output of every
// parser. It is immutable once returned; ownership transfers entirely to
// the caller.
type NormalizedEstimate struct {
	ProjectName string       `json:"project_name,omitempty"`
	Preventivi  []Preventivo `json:"preventivi" validate:"dive"`
	Items       []Item       `json:"items" validate:"dive"`
	WbsLevels   []WbsLevel   `json:"wbs_levels" validate:"dive"`
}

// Validate checks the structural invariants of the aggregate: WBS level
// codes are unique, every item's WbsIDs resolve to declared levels, no item
// carries more than seven levels, and stored amounts equal the recomputed
// quantity*price rounded to two places.
func (e *NormalizedEstimate) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("estimate failed structural validation: %w", err)
	}

	levels := make(map[string]bool, len(e.WbsLevels))
	for _, l := range e.WbsLevels {
		if levels[l.LevelCode] {
			return fmt.Errorf("duplicate wbs level code %q", l.LevelCode)
		}
		levels[l.LevelCode] = true
	}

	progressives := make(map[int]bool, len(e.Items))
	for _, it := range e.Items {
		progressives[it.ProgressiveID] = true
	}

	for _, it := range e.Items {
		if len(it.WbsIDs) > 7 {
			return fmt.Errorf("item %d: %d wbs levels exceeds maximum of 7", it.ProgressiveID, len(it.WbsIDs))
		}
		for _, id := range it.WbsIDs {
			if !levels[id] {
				return fmt.Errorf("item %d: wbs id %q not declared in wbs_levels", it.ProgressiveID, id)
			}
		}
		if it.UnitPrice != nil && it.Amount != nil {
			want := it.Quantity.Mul(*it.UnitPrice).Round(2)
			if !want.Equal(*it.Amount) {
				return fmt.Errorf("item %d: amount %s does not match quantity*price %s",
					it.ProgressiveID, it.Amount.String(), want.String())
			}
		}
		if it.RelatedItemID != nil && !progressives[*it.RelatedItemID] {
			return fmt.Errorf("item %d: related item %d does not exist", it.ProgressiveID, *it.RelatedItemID)
		}
	}
	return nil
}

// ItemByProgressive returns the item with the given progressive id, or nil.
func (e *NormalizedEstimate) ItemByProgressive(id int) *Item {
	for i := range e.Items {
		if e.Items[i].ProgressiveID == id {
			return &e.Items[i]
		}
	}
	return nil
}
