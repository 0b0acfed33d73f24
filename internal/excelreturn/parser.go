// Package excelreturn parses vendor Excel return sheets (the LX and MX
// layouts) into the canonical estimate model. Returns frequently split one
// logical item across several physical rows: the head row carries the code
// and description, blank-code continuation rows add quantity, and the row
// carrying the price closes the span. MX is LX with rows sharing a code
// combined into one aggregated item.
package excelreturn

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "estimatex/internal/errors"
	"estimatex/internal/money"
	"estimatex/pkg/contracts/domain"
)

// ColumnHints names the workbook columns by header text. Candidate code
// and description columns are tried in order; the first one holding a
// non-empty value for a row wins. The price column is mandatory.
type ColumnHints struct {
	Sheet              string   `yaml:"sheet"`
	CodeColumns        []string `yaml:"code_columns"`
	DescriptionColumns []string `yaml:"description_columns"`
	PriceColumn        string   `yaml:"price_column"`
	QuantityColumn     string   `yaml:"quantity_column"`
	ProgressiveColumn  string   `yaml:"progressive_column"`
}

// Parse reads the hinted sheet of an open workbook and returns the
// normalized estimate. combineTotals selects MX semantics: rows sharing a
// resolved code merge into one item instead of emitting duplicates.
func Parse(f *excelize.File, hints ColumnHints, combineTotals bool) (*domain.NormalizedEstimate, apperrors.Diagnostics, error) {
	sheet, err := resolveSheet(f, hints.Sheet)
	if err != nil {
		return nil, nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, apperrors.Structural(fmt.Sprintf("cannot read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, nil, apperrors.MissingColumn(hints.PriceColumn)
	}

	cols, err := resolveColumns(rows[0], hints)
	if err != nil {
		return nil, nil, err
	}

	p := &parser{rows: rows, cols: cols, sheet: sheet}
	items := p.scan()
	if combineTotals {
		items = p.combineByCode(items)
	}

	slog.Debug("parsed excel return",
		slog.String("sheet", sheet),
		slog.Bool("combine_totals", combineTotals),
		slog.Int("items", len(items)),
		slog.Int("diagnostics", len(p.diags)))

	return &domain.NormalizedEstimate{
		Preventivi: []domain.Preventivo{{ID: sheet, Name: sheet}},
		Items:      items,
		WbsLevels:  []domain.WbsLevel{},
	}, p.diags, nil
}

// resolveSheet picks the hinted sheet, falling back to the workbook's
// active sheet when the hint is absent or unknown.
func resolveSheet(f *excelize.File, hinted string) (string, error) {
	sheets := f.GetSheetList()
	for _, s := range sheets {
		if hinted != "" && strings.EqualFold(s, hinted) {
			return s, nil
		}
	}
	if active := f.GetSheetName(f.GetActiveSheetIndex()); active != "" {
		if hinted != "" {
			slog.Warn("hinted sheet not found, using active sheet",
				slog.String("hinted", hinted),
				slog.String("active", active))
		}
		return active, nil
	}
	return "", apperrors.SheetNotFound(hinted)
}

// columns holds the resolved zero-based column indices. Optional columns
// are -1 when not hinted or not present.
type columns struct {
	code        []int
	description []int
	price       int
	quantity    int
	progressive int
}

func resolveColumns(header []string, hints ColumnHints) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	find := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[strings.ToLower(strings.TrimSpace(name))]; ok {
			return i
		}
		return -1
	}

	cols := columns{
		price:       find(hints.PriceColumn),
		quantity:    find(hints.QuantityColumn),
		progressive: find(hints.ProgressiveColumn),
	}
	if cols.price < 0 {
		return columns{}, apperrors.MissingColumn(hints.PriceColumn)
	}
	for _, name := range hints.CodeColumns {
		if i := find(name); i >= 0 {
			cols.code = append(cols.code, i)
		}
	}
	for _, name := range hints.DescriptionColumns {
		if i := find(name); i >= 0 {
			cols.description = append(cols.description, i)
		}
	}
	return cols, nil
}

// parser is the transient state of one workbook scan.
type parser struct {
	rows  [][]string
	cols  columns
	sheet string
	diags apperrors.Diagnostics
}

// scan walks the data rows, opening a head/tail span at every row with a
// resolved code or description and consuming the span's rows so they are
// never reprocessed as independent items.
func (p *parser) scan() []domain.Item {
	items := []domain.Item{}
	consumed := make([]bool, len(p.rows))

	for i := 1; i < len(p.rows); i++ {
		if consumed[i] {
			continue
		}
		code := p.firstNonEmpty(p.rows[i], p.cols.code)
		desc := p.firstNonEmpty(p.rows[i], p.cols.description)
		if code == "" && desc == "" {
			// Continuation row not owned by any head; nothing to emit.
			continue
		}

		span := accumulateQuantity(p.rows, i, p.cols.quantity, p.cols.price, p.isContinuation)
		for _, bad := range span.badCells {
			p.diags.Add(apperrors.KindNumericCoercion, p.locator(bad),
				"quantity %q is not numeric, treated as zero",
				cellAt(p.rows[bad], p.cols.quantity))
		}

		var quantity decimal.Decimal
		var price *decimal.Decimal
		if span.tailRow >= 0 {
			if span.ok {
				quantity = span.quantity
			}
			price = p.coercePrice(span.tailRow)
			for j := i; j <= span.tailRow; j++ {
				consumed[j] = true
			}
		} else {
			// The terminating price was never reached: the head row stands
			// alone with whatever quantity it carries itself.
			quantity = p.headQuantity(i)
			consumed[i] = true
		}

		var amount *decimal.Decimal
		if price != nil {
			q, a := money.CalculateLineAmount(&quantity, price)
			quantity, amount = *q, a
		}

		items = append(items, domain.Item{
			ProgressiveID: p.progressive(i, len(items)+1),
			Code:          code,
			Description:   desc,
			Quantity:      quantity,
			UnitPrice:     price,
			Amount:        amount,
			WbsIDs:        []string{},
		})
	}
	return items
}

// isContinuation reports whether row i carries neither code nor
// description and therefore belongs to the span opened above it.
func (p *parser) isContinuation(i int) bool {
	return p.firstNonEmpty(p.rows[i], p.cols.code) == "" &&
		p.firstNonEmpty(p.rows[i], p.cols.description) == ""
}

func (p *parser) firstNonEmpty(row []string, cols []int) string {
	for _, c := range cols {
		if v := strings.TrimSpace(cellAt(row, c)); v != "" {
			return v
		}
	}
	return ""
}

func (p *parser) coercePrice(row int) *decimal.Decimal {
	raw := strings.TrimSpace(cellAt(p.rows[row], p.cols.price))
	d, ok := money.CoerceDecimal(raw)
	if !ok {
		p.diags.Add(apperrors.KindNumericCoercion, p.locator(row),
			"price %q is not numeric, treated as absent", raw)
		return nil
	}
	return &d
}

func (p *parser) headQuantity(row int) decimal.Decimal {
	raw := strings.TrimSpace(cellAt(p.rows[row], p.cols.quantity))
	if raw == "" {
		return decimal.Zero
	}
	d, ok := money.CoerceDecimal(raw)
	if !ok {
		p.diags.Add(apperrors.KindNumericCoercion, p.locator(row),
			"quantity %q is not numeric, treated as zero", raw)
		return decimal.Zero
	}
	return d
}

func (p *parser) progressive(row, fallback int) int {
	raw := strings.TrimSpace(cellAt(p.rows[row], p.cols.progressive))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.diags.Add(apperrors.KindNumericCoercion, p.locator(row),
			"progressive %q is not numeric, assigned %d", raw, fallback)
		return fallback
	}
	return n
}

// locator renders a 1-based cell locator the way the sheet displays it.
func (p *parser) locator(row int) string {
	return fmt.Sprintf("%s!row %d", p.sheet, row+1)
}

// combineByCode merges items sharing a resolved code into one aggregated
// item (MX semantics). Quantities sum; the amount is recomputed from the
// summed quantity when every merged row priced the item identically, and
// degrades to a summed amount with no unit price when they did not.
func (p *parser) combineByCode(items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	index := make(map[string]int, len(items))

	for _, it := range items {
		if it.Code == "" {
			out = append(out, it)
			continue
		}
		j, seen := index[it.Code]
		if !seen {
			index[it.Code] = len(out)
			out = append(out, it)
			continue
		}

		merged := &out[j]
		merged.Quantity = merged.Quantity.Add(it.Quantity)
		switch {
		case merged.UnitPrice != nil && it.UnitPrice != nil && merged.UnitPrice.Equal(*it.UnitPrice):
			q, a := money.CalculateLineAmount(&merged.Quantity, merged.UnitPrice)
			merged.Quantity, merged.Amount = *q, a
		case merged.Amount != nil || it.Amount != nil:
			sum := decimal.Zero
			if merged.Amount != nil {
				sum = sum.Add(*merged.Amount)
			}
			if it.Amount != nil {
				sum = sum.Add(*it.Amount)
			}
			merged.UnitPrice = nil
			merged.Amount = &sum
		default:
			merged.UnitPrice = nil
		}
	}
	return out
}
