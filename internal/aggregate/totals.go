// Package aggregate computes period totals, cumulative series, group-by
// breakdowns and comparative statistics over classified transaction subsets.
// Every function here is pure: nothing mutates the canonical table.
package aggregate

import (
	"sort"
	"time"

	"pisopatrol/dashboard/internal/classify"
	"pisopatrol/dashboard/internal/dateutils"
	"pisopatrol/dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// Totals holds the period sums per class. Net savings treats stash
// contributions as savings rather than spending:
// NetSavings = Income + Stash - Expense.
type Totals struct {
	Income     decimal.Decimal `json:"income" yaml:"income"`
	Expense    decimal.Decimal `json:"expense" yaml:"expense"`
	Stash      decimal.Decimal `json:"stash" yaml:"stash"`
	NetSavings decimal.Decimal `json:"net_savings" yaml:"net_savings"`
}

// ComputeTotals sums the amounts of each class over the subset.
func ComputeTotals(txs []models.Transaction, goals models.StashGoalSet) Totals {
	p := classify.Split(txs, goals)

	t := Totals{
		Income:  sumAmounts(p.Income),
		Expense: sumAmounts(p.Expense),
		Stash:   sumAmounts(p.Stash),
	}
	t.NetSavings = t.Income.Add(t.Stash).Sub(t.Expense)
	return t
}

func sumAmounts(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		total = total.Add(txs[i].Amount)
	}
	return total
}

// SeriesPoint is one day of the cumulative series.
type SeriesPoint struct {
	Date       time.Time       `json:"date" yaml:"date"`
	Income     decimal.Decimal `json:"income" yaml:"income"`
	Expense    decimal.Decimal `json:"expense" yaml:"expense"`
	Stash      decimal.Decimal `json:"stash" yaml:"stash"`
	NetSavings decimal.Decimal `json:"net_savings" yaml:"net_savings"`
}

// CumulativeSeries resamples the subset to daily running totals per class,
// aligned on consecutive days from the earliest to the latest transaction
// date, zero-filling days without activity. Cumulative net savings is
// derived from the class running totals at each date.
func CumulativeSeries(txs []models.Transaction, goals models.StashGoalSet) []SeriesPoint {
	if len(txs) == 0 {
		return nil
	}

	type daily struct{ income, expense, stash decimal.Decimal }
	perDay := make(map[time.Time]*daily)

	minDate := dateutils.Truncate(txs[0].Date)
	maxDate := minDate
	for i := range txs {
		day := dateutils.Truncate(txs[i].Date)
		if day.Before(minDate) {
			minDate = day
		}
		if day.After(maxDate) {
			maxDate = day
		}

		d, ok := perDay[day]
		if !ok {
			d = &daily{income: decimal.Zero, expense: decimal.Zero, stash: decimal.Zero}
			perDay[day] = d
		}
		switch classify.Classify(&txs[i], goals) {
		case classify.ClassIncome:
			d.income = d.income.Add(txs[i].Amount)
		case classify.ClassExpense:
			d.expense = d.expense.Add(txs[i].Amount)
		case classify.ClassStash:
			d.stash = d.stash.Add(txs[i].Amount)
		}
	}

	var series []SeriesPoint
	income, expense, stash := decimal.Zero, decimal.Zero, decimal.Zero
	for day := minDate; !day.After(maxDate); day = day.AddDate(0, 0, 1) {
		if d, ok := perDay[day]; ok {
			income = income.Add(d.income)
			expense = expense.Add(d.expense)
			stash = stash.Add(d.stash)
		}
		series = append(series, SeriesPoint{
			Date:       day,
			Income:     income,
			Expense:    expense,
			Stash:      stash,
			NetSavings: income.Add(stash).Sub(expense),
		})
	}
	return series
}

// GroupBy selects the grouping key for breakdowns and insights.
type GroupBy int

const (
	ByCategory GroupBy = iota
	BySubcategory
)

// Key returns the grouping value of a transaction.
func (g GroupBy) Key(t *models.Transaction) string {
	if g == BySubcategory {
		return t.Subcategory
	}
	return t.Category
}

// String names the grouping for reports.
func (g GroupBy) String() string {
	if g == BySubcategory {
		return "subcategory"
	}
	return "category"
}

// GroupTotal is one row of a breakdown.
type GroupTotal struct {
	Group  string          `json:"group" yaml:"group"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// Breakdown sums amounts by category or subcategory, sorted descending by
// amount (ties broken by name for a stable order).
func Breakdown(txs []models.Transaction, groupBy GroupBy) []GroupTotal {
	sums := make(map[string]decimal.Decimal)
	for i := range txs {
		key := groupBy.Key(&txs[i])
		sums[key] = sums[key].Add(txs[i].Amount)
	}

	out := make([]GroupTotal, 0, len(sums))
	for group, amount := range sums {
		out = append(out, GroupTotal{Group: group, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Group < out[j].Group
	})
	return out
}
