// Package currencyutils provides display formatting for monetary amounts.
package currencyutils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formats a decimal amount for display with the configured
// currency glyph and thousands separators, e.g. "₱1,234.56". Negative
// amounts render as "-₱1,234.56".
func FormatAmount(amount decimal.Decimal, glyph string) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(fixed, ".")
	grouped := groupThousands(whole)

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString(glyph)
	b.WriteString(grouped)
	b.WriteString(".")
	b.WriteString(frac)
	return b.String()
}

// FormatPercent formats a percentage value to one decimal place, e.g. "12.5%".
// Unbounded ("new") comparisons are rendered by the caller, not here.
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(1) + "%"
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
