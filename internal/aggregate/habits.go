package aggregate

import (
	"sort"
	"strconv"
	"time"

	"pisopatrol/dashboard/internal/dateutils"
	"pisopatrol/dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// PeriodKPIs are the headline numbers for one classified subset over a
// date range.
type PeriodKPIs struct {
	Total        decimal.Decimal `json:"total" yaml:"total"`
	Count        int             `json:"count" yaml:"count"`
	Largest      decimal.Decimal `json:"largest" yaml:"largest"`
	AverageDaily decimal.Decimal `json:"average_daily" yaml:"average_daily"`
	PeriodDays   int             `json:"period_days" yaml:"period_days"`
}

// ComputePeriodKPIs summarizes a subset over the inclusive [from, to] range.
func ComputePeriodKPIs(txs []models.Transaction, from, to time.Time) PeriodKPIs {
	kpis := PeriodKPIs{
		Total:        decimal.Zero,
		Largest:      decimal.Zero,
		AverageDaily: decimal.Zero,
	}
	for i := range txs {
		kpis.Total = kpis.Total.Add(txs[i].Amount)
		kpis.Count++
		if txs[i].Amount.GreaterThan(kpis.Largest) {
			kpis.Largest = txs[i].Amount
		}
	}

	kpis.PeriodDays = dateutils.DaysBetween(from, to)
	if kpis.PeriodDays > 0 {
		kpis.AverageDaily = kpis.Total.Div(decimal.NewFromInt(int64(kpis.PeriodDays)))
	}
	return kpis
}

// HabitStats summarizes one group's activity: how much, how often, how
// recently.
type HabitStats struct {
	Group      string          `json:"group" yaml:"group"`
	Total      decimal.Decimal `json:"total" yaml:"total"`
	Count      int             `json:"count" yaml:"count"`
	Average    decimal.Decimal `json:"average" yaml:"average"`
	MostRecent time.Time       `json:"most_recent" yaml:"most_recent"`
}

// Habits aggregates per-group habit statistics, sorted descending by total.
func Habits(txs []models.Transaction, groupBy GroupBy) []HabitStats {
	byGroup := make(map[string]*HabitStats)
	for i := range txs {
		key := groupBy.Key(&txs[i])
		h, ok := byGroup[key]
		if !ok {
			h = &HabitStats{Group: key, Total: decimal.Zero, Average: decimal.Zero}
			byGroup[key] = h
		}
		h.Total = h.Total.Add(txs[i].Amount)
		h.Count++
		if txs[i].Date.After(h.MostRecent) {
			h.MostRecent = txs[i].Date
		}
	}

	out := make([]HabitStats, 0, len(byGroup))
	for _, h := range byGroup {
		h.Average = h.Total.Div(decimal.NewFromInt(int64(h.Count)))
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Group < out[j].Group
	})
	return out
}

// TrendBucket is one bar of a trend chart: a label and the per-group sums
// under it.
type TrendBucket struct {
	Label  string                     `json:"label" yaml:"label"`
	Groups map[string]decimal.Decimal `json:"groups" yaml:"groups"`
}

// TrendDimension selects how transactions are bucketed over time.
type TrendDimension int

const (
	TrendByWeekday TrendDimension = iota
	TrendByWeekOfMonth
	TrendByMonth
)

// Trend buckets the subset along the chosen dimension, each bucket holding
// per-group sums. Buckets come back in natural order (Monday first, week 1
// first, earliest month first).
func Trend(txs []models.Transaction, dim TrendDimension, groupBy GroupBy) []TrendBucket {
	type keyed struct {
		order int
		label string
	}
	buckets := make(map[keyed]map[string]decimal.Decimal)

	for i := range txs {
		var k keyed
		switch dim {
		case TrendByWeekday:
			// Monday-first ordering.
			wd := int(txs[i].Date.Weekday())
			if wd == 0 {
				wd = 7
			}
			k = keyed{order: wd, label: txs[i].Date.Weekday().String()}
		case TrendByWeekOfMonth:
			week := dateutils.WeekOfMonth(txs[i].Date)
			k = keyed{order: week, label: "Week " + strconv.Itoa(week)}
		default: // TrendByMonth
			m := txs[i].Month()
			k = keyed{order: m.Index(), label: m.String()}
		}

		groups, ok := buckets[k]
		if !ok {
			groups = make(map[string]decimal.Decimal)
			buckets[k] = groups
		}
		key := groupBy.Key(&txs[i])
		groups[key] = groups[key].Add(txs[i].Amount)
	}

	keys := make([]keyed, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].order < keys[j].order })

	out := make([]TrendBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, TrendBucket{Label: k.label, Groups: buckets[k]})
	}
	return out
}
