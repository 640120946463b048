package session

import (
	"fmt"
	"time"

	"pisopatrol/dashboard/internal/dateutils"
	"pisopatrol/dashboard/internal/models"
)

// RangeOption names the preset date ranges offered by the dashboard.
type RangeOption string

const (
	RangeAllTime     RangeOption = "all-time"
	RangeThisWeek    RangeOption = "this-week"
	RangeThisMonth   RangeOption = "this-month"
	RangeLast30Days  RangeOption = "last-30-days"
	RangeThisQuarter RangeOption = "this-quarter"
	RangeYearToDate  RangeOption = "year-to-date"
	RangeCustom      RangeOption = "custom"
)

// Filter selects a subset of the canonical table. Nil date bounds mean
// unbounded; nil membership slices mean "all".
type Filter struct {
	From          *time.Time
	To            *time.Time
	Accounts      []string
	Categories    []string
	Subcategories []string
}

// Resolve computes the concrete date bounds for a preset range. The data's
// own min/max dates anchor the all-time option; today anchors the rest.
// RangeCustom has no preset bounds: callers supply From/To on the Filter
// directly, so resolving it is an error.
func Resolve(option RangeOption, today, dataMin, dataMax time.Time) (from, to time.Time, err error) {
	today = dateutils.Truncate(today)
	switch option {
	case RangeAllTime:
		return dateutils.Truncate(dataMin), dateutils.Truncate(dataMax), nil
	case RangeThisWeek:
		return dateutils.StartOfWeek(today), today, nil
	case RangeThisMonth:
		return dateutils.StartOfMonth(today), today, nil
	case RangeLast30Days:
		return today.AddDate(0, 0, -30), today, nil
	case RangeThisQuarter:
		return dateutils.StartOfQuarter(today), today, nil
	case RangeYearToDate:
		return dateutils.StartOfYear(today), today, nil
	case RangeCustom:
		return time.Time{}, time.Time{}, fmt.Errorf("custom range has no preset bounds: set From and To on the filter")
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown date range option: %s", option)
	}
}

// Matches reports whether a transaction passes the filter.
func (f *Filter) Matches(t *models.Transaction) bool {
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Date.After(*f.To) {
		return false
	}
	if !matchesSet(f.Accounts, t.Account) {
		return false
	}
	if !matchesSet(f.Categories, t.Category) {
		return false
	}
	return matchesSet(f.Subcategories, t.Subcategory)
}

func matchesSet(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
