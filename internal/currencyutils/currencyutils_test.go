package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		glyph  string
		want   string
	}{
		{name: "plain", amount: "1234.56", glyph: "₱", want: "₱1,234.56"},
		{name: "millions", amount: "1234567.8", glyph: "₱", want: "₱1,234,567.80"},
		{name: "no grouping needed", amount: "999.99", glyph: "$", want: "$999.99"},
		{name: "exact thousand", amount: "1000", glyph: "₱", want: "₱1,000.00"},
		{name: "zero", amount: "0", glyph: "₱", want: "₱0.00"},
		{name: "negative", amount: "-1234.56", glyph: "₱", want: "-₱1,234.56"},
		{name: "rounds to cents", amount: "10.005", glyph: "₱", want: "₱10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(decimal.RequireFromString(tt.amount), tt.glyph)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.5%", FormatPercent(decimal.RequireFromString("12.5")))
	assert.Equal(t, "-3.3%", FormatPercent(decimal.RequireFromString("-3.25")))
	assert.Equal(t, "0.0%", FormatPercent(decimal.Zero))
}
