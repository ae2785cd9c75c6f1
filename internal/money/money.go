// Package money holds the currency arithmetic shared by orders, reports and
// receipts. Amounts are shopspring decimals; rounding to cents happens only
// at persist/display boundaries so intermediate sums never lose precision.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places stored for every currency amount.
const Places int32 = 2

var hundred = decimal.NewFromInt(100)

// LineSubtotal returns price × quantity, unrounded.
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Round rounds half away from zero to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// IsCents reports whether d has no fraction of a cent. Stored prices must,
// otherwise per-line rounding and header rounding disagree.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(Round(d))
}

// Sum adds all amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarginPct returns (revenue - cost) / revenue * 100 rounded to cents,
// or zero when there is no revenue.
func MarginPct(revenue, cost decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return Round(revenue.Sub(cost).Div(revenue).Mul(hundred))
}

// FormatBRL renders an amount as Brazilian reais: "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	s := Round(d).StringFixed(Places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
