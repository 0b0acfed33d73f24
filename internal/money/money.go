// Package money implements the fixed-point arithmetic used for every
// monetary and quantity value in the estimate model. All rounding is
// decimal round-half-up; binary floating point never enters an amount.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the scale of every monetary amount.
const CurrencyPlaces = 2

// RoundHalfUp rounds d to the given number of decimal places with
// round-half-up tie semantics. decimal.Round ties away from zero, which is
// half-up on the non-negative quantities and prices this model carries.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// CalculateLineAmount derives the effective quantity and the line amount of
// an item. Both results are nil when either operand is absent; a zero
// quantity short-circuits to (0, 0) so no rounding artifact can appear on
// unpriced rows. The returned amount is quantity*price rounded half-up to
// two places. The function is pure: identical inputs always yield identical
// outputs.
func CalculateLineAmount(quantity, price *decimal.Decimal) (*decimal.Decimal, *decimal.Decimal) {
	if quantity == nil || price == nil {
		return nil, nil
	}
	if quantity.IsZero() {
		zero := decimal.Zero
		return &zero, &zero
	}
	amount := quantity.Mul(*price).Round(CurrencyPlaces)
	qty := *quantity
	return &qty, &amount
}

var (
	rePlainDecimal   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	reThousandsDot   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3}){2,}$`)
	reThousandsComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
)

// CoerceDecimal parses a human-entered numeric cell value into a decimal.
// It tolerates thousand separators and the comma decimal mark common in
// Italian spreadsheets ("1.234,50" and "1,234.50" both parse to 1234.5,
// "1.234.567" to 1234567). Returns false when the value cannot be read as
// a number.
func CoerceDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, " ", " "))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	switch {
	case rePlainDecimal.MatchString(s):
		// "10.005" is ten point zero zero five, never ten thousand five:
		// a lone dot group reads as the decimal mark.
	case reThousandsDot.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	case reThousandsComma.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// 1.234,50 – dot groups thousands, comma is the decimal mark
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// FromFloat converts a float (for example an excelize cell value) to a
// decimal without accumulating binary representation error.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
