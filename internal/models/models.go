// Package models provides the data structures used throughout the application.
package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. Every canonical row carries exactly one of these;
// free-text edits may introduce other values, which the classifier
// excludes from all buckets.
const (
	TypeIncome  = "Income"
	TypeExpense = "Expense"
	TypeStash   = "Stash"
)

// Sentinel values applied during cleaning.
const (
	DefaultAccount        = "Default Account"
	CategoryUncategorized = "Uncategorized"
)

// Transaction is the canonical unit of the dashboard. Amount is always a
// non-negative magnitude; polarity is carried by Type, never by sign.
type Transaction struct {
	ID          string          `csv:"ID"`          // Stable synthetic identifier assigned at ingestion
	Date        time.Time       `csv:"Date"`        // Calendar date, time-of-day discarded
	Amount      decimal.Decimal `csv:"Amount"`      // Non-negative magnitude
	Category    string          `csv:"Category"`    // Trimmed, never empty after cleaning
	Subcategory string          `csv:"Subcategory"` // Defaults to Category when absent
	Type        string          `csv:"Type"`        // Income, Expense or Stash
	Account     string          `csv:"Account"`     // Defaults to DefaultAccount
}

// IsRecognizedType reports whether Type is one of the three canonical types.
func (t *Transaction) IsRecognizedType() bool {
	switch t.Type {
	case TypeIncome, TypeExpense, TypeStash:
		return true
	}
	return false
}

// Month returns the calendar month the transaction falls in.
func (t *Transaction) Month() Month {
	return MonthOf(t.Date)
}

// StashGoal is a user-maintained savings target for one subcategory.
type StashGoal struct {
	Subcategory string          `yaml:"subcategory"`
	Goal        decimal.Decimal `yaml:"goal"`
	Glyph       string          `yaml:"glyph"`
}

// StashGoalSet maps subcategory name to its goal definition. Membership in
// this set is what reclassifies Expense rows into Stash at query time.
type StashGoalSet map[string]StashGoal

// Subcategories returns the goal subcategory names in sorted order.
func (s StashGoalSet) Subcategories() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether the subcategory has a goal defined.
func (s StashGoalSet) Contains(subcategory string) bool {
	_, ok := s[subcategory]
	return ok
}

// RejectedRow captures an input row excluded during cleaning, with its
// verbatim pre-coercion values for user review.
type RejectedRow struct {
	Line   int               // 1-based data row number in the source table
	Fields map[string]string // Raw header -> raw cell value
	Reason string            // Which required field failed coercion
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month a date falls in.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the previous calendar month.
func (m Month) Prev() Month {
	return m.Add(-1)
}

// Add advances the month by n (n may be negative).
func (m Month) Add(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Index returns the month as a monotonic integer so that elapsed-month
// arithmetic is a plain subtraction.
func (m Month) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	return m.Index() < other.Index()
}

// String renders the month as "January 2006".
func (m Month) String() string {
	return m.Start().Format("January 2006")
}
