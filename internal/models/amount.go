package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// characters stripped from raw amount strings before decimal parsing:
// thousands separators, quoting left over from CSV round-trips, and the
// currency glyphs the dashboard supports.
var amountNoise = strings.NewReplacer(
	",", "",
	"\"", "",
	"'", "",
	" ", "",
	"$", "",
	"€", "",
	"£", "",
	"¥", "",
	"₱", "",
)

// ParseSignedAmount parses a raw cell value into a non-negative magnitude
// and a flag reporting whether the original value was negative. The sign is
// consumed here and never stored on the transaction.
func ParseSignedAmount(raw string) (amount decimal.Decimal, negative bool, err error) {
	cleaned := amountNoise.Replace(strings.TrimSpace(raw))

	// Accounting notation: (12.34) means -12.34.
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + strings.Trim(cleaned, "()")
	}

	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false, err
	}
	return dec.Abs(), dec.IsNegative(), nil
}
