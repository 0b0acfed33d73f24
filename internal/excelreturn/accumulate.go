package excelreturn

import (
	"strings"

	"github.com/shopspring/decimal"

	"estimatex/internal/money"
)

// spanResult is the outcome of one head-to-tail scan: the accumulated
// quantity, the index of the tail row that carried the price, and whether a
// usable quantity was produced at all.
type spanResult struct {
	quantity decimal.Decimal
	tailRow  int
	ok       bool
	badCells []int // rows whose quantity failed numeric coercion
}

// accumulateQuantity reconstructs a quantity that is split across
// consecutive physical rows. Starting at head, it sums the quantity column
// over the head row and its continuation rows (rows where isContinuation
// reports true), stopping at the first row that supplies a non-empty price
// value; that row's quantity, if any, still counts. The scan yields no
// result when the terminating price is never reached, or when it is reached
// before any quantity value was seen.
func accumulateQuantity(rows [][]string, head, qtyCol, priceCol int, isContinuation func(i int) bool) spanResult {
	total := decimal.Zero
	sawQuantity := false
	var badCells []int

	for i := head; i < len(rows); i++ {
		if i > head && !isContinuation(i) {
			break
		}

		if raw := strings.TrimSpace(cellAt(rows[i], qtyCol)); raw != "" {
			if d, ok := money.CoerceDecimal(raw); ok {
				total = total.Add(d)
				sawQuantity = true
			} else {
				badCells = append(badCells, i)
			}
		}

		if strings.TrimSpace(cellAt(rows[i], priceCol)) != "" {
			return spanResult{quantity: total, tailRow: i, ok: sawQuantity, badCells: badCells}
		}
	}

	return spanResult{tailRow: -1, badCells: badCells}
}

// cellAt returns the cell at col, tolerating the ragged rows excelize
// produces when trailing cells are empty.
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
