package aggregate

import (
	"sort"

	"pisopatrol/dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// ComparisonBasis selects what a month's per-group totals are compared
// against in the insight tables.
type ComparisonBasis int

const (
	// BasisPreviousMonth compares against the previous calendar month.
	BasisPreviousMonth ComparisonBasis = iota
	// BasisFirstMonthOfYear compares against January-equivalent: the first
	// month of the selected month's calendar year.
	BasisFirstMonthOfYear
	// BasisTrailingAverage compares against the average of the trailing N
	// months, excluding the selected month itself.
	BasisTrailingAverage
)

// Insight is one group's comparison row. When the basis value is zero and
// the current value is positive the change is "new" rather than a division
// fault: IsNew is set and PctChange is meaningless.
type Insight struct {
	Group     string          `json:"group" yaml:"group"`
	Current   decimal.Decimal `json:"current" yaml:"current"`
	Basis     decimal.Decimal `json:"basis" yaml:"basis"`
	PctChange decimal.Decimal `json:"pct_change" yaml:"pct_change"`
	IsNew     bool            `json:"is_new" yaml:"is_new"`
}

// MonthInsights compares per-group totals of the selected month against the
// chosen basis. The subset passed in should already be classified and
// filtered (the same rule serves expense and income insights). trailingN is
// only consulted for BasisTrailingAverage.
func MonthInsights(txs []models.Transaction, month models.Month, basis ComparisonBasis, trailingN int, groupBy GroupBy) []Insight {
	current := monthGroupSums(txs, month, groupBy)
	base := basisGroupSums(txs, month, basis, trailingN, groupBy)

	groups := make(map[string]struct{})
	for g := range current {
		groups[g] = struct{}{}
	}
	for g := range base {
		groups[g] = struct{}{}
	}

	out := make([]Insight, 0, len(groups))
	for g := range groups {
		cur := current[g]
		b := base[g]

		ins := Insight{Group: g, Current: cur, Basis: b}
		if b.IsPositive() {
			ins.PctChange = cur.Sub(b).Div(b).Mul(decimal.NewFromInt(100))
		} else if cur.IsPositive() {
			ins.IsNew = true
		}
		out = append(out, ins)
	}

	sort.Slice(out, func(i, j int) bool {
		// "New" groups sort last, mirroring an unbounded percentage.
		if out[i].IsNew != out[j].IsNew {
			return !out[i].IsNew
		}
		if !out[i].PctChange.Equal(out[j].PctChange) {
			return out[i].PctChange.LessThan(out[j].PctChange)
		}
		return out[i].Group < out[j].Group
	})
	return out
}

func monthGroupSums(txs []models.Transaction, month models.Month, groupBy GroupBy) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for i := range txs {
		if txs[i].Month() == month {
			key := groupBy.Key(&txs[i])
			sums[key] = sums[key].Add(txs[i].Amount)
		}
	}
	return sums
}

func basisGroupSums(txs []models.Transaction, month models.Month, basis ComparisonBasis, trailingN int, groupBy GroupBy) map[string]decimal.Decimal {
	switch basis {
	case BasisFirstMonthOfYear:
		first := models.Month{Year: month.Year, Month: 1}
		return monthGroupSums(txs, first, groupBy)

	case BasisTrailingAverage:
		if trailingN < 1 {
			trailingN = 1
		}
		sums := make(map[string]decimal.Decimal)
		for n := 1; n <= trailingN; n++ {
			for g, v := range monthGroupSums(txs, month.Add(-n), groupBy) {
				sums[g] = sums[g].Add(v)
			}
		}
		div := decimal.NewFromInt(int64(trailingN))
		for g := range sums {
			sums[g] = sums[g].Div(div)
		}
		return sums

	default: // BasisPreviousMonth
		return monthGroupSums(txs, month.Prev(), groupBy)
	}
}

// YTDMonthlyAverage computes the year-to-date monthly average for one group
// item: the item's total across months strictly before the selected month
// within the same calendar year, divided by the number of distinct months in
// which the item had any activity. Months with zero activity for the item do
// not dilute its average.
func YTDMonthlyAverage(txs []models.Transaction, groupBy GroupBy, item string, month models.Month) decimal.Decimal {
	total := decimal.Zero
	activeMonths := make(map[models.Month]struct{})

	for i := range txs {
		if groupBy.Key(&txs[i]) != item {
			continue
		}
		m := txs[i].Month()
		if m.Year != month.Year || !m.Before(month) {
			continue
		}
		total = total.Add(txs[i].Amount)
		activeMonths[m] = struct{}{}
	}

	if len(activeMonths) == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(len(activeMonths))))
}
