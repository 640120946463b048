// Package dateutils provides common date operations used throughout the application.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date format constants used throughout the application.
const (
	DateLayoutISO   = "2006-01-02"
	DateLayoutFull  = "2006-01-02 15:04:05"
	DateLayoutUS    = "01/02/2006"
	DateLayoutHuman = "Jan 02, 2006"
)

// commonFormats is the list of layouts tried by ParseDateString, in order.
// Day-first layouts come before their US twins because ambiguous dates in
// financial exports are more often day-first.
var commonFormats = []string{
	DateLayoutISO,
	DateLayoutFull,
	time.RFC3339,
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	DateLayoutUS,
	"02-01-2006",
	"01-02-2006",
	"2006/01/02",
	"January 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
	DateLayoutHuman,
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
	"01/2006",
	"2006/01",
}

var multiSpace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace in a raw date string.
func CleanDateString(dateStr string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseDateString attempts to parse a date string using multiple common
// formats, returning the date truncated to midnight UTC. Time-of-day in the
// input is discarded.
func ParseDateString(dateStr string) (time.Time, error) {
	cleaned := CleanDateString(dateStr)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	for _, format := range commonFormats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return Truncate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// Truncate drops the time-of-day component, keeping midnight UTC.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD).
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}

// StartOfMonth returns the first day of the month for a given date.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfYear returns January 1 of the date's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// StartOfQuarter returns the first day of the calendar quarter.
func StartOfQuarter(t time.Time) time.Time {
	quarterMonth := (int(t.Month())-1)/3*3 + 1
	return time.Date(t.Year(), time.Month(quarterMonth), 1, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday of the date's week.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return Truncate(t).AddDate(0, 0, -(weekday - 1))
}

// AddMonths advances a date by n calendar months.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// WeekOfMonth returns the 1-based week bucket of the date within its month
// (days 1-7 are week 1, days 8-14 week 2, and so on).
func WeekOfMonth(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

// DaysBetween returns the inclusive day count between two dates.
func DaysBetween(from, to time.Time) int {
	return int(Truncate(to).Sub(Truncate(from)).Hours()/24) + 1
}
