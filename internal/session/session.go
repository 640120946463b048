// Package session holds the explicit per-session state: the canonical
// transaction table, the stash goal definitions, and the rejected rows from
// the last ingestion. State is threaded through operations as a value; no
// package-level mutable table exists. A Session is not safe for concurrent
// use and does not need to be: each user interaction runs to completion
// before the next is accepted.
package session

import (
	"sort"
	"time"

	"pisopatrol/dashboard/internal/cleaner"
	"pisopatrol/dashboard/internal/editor"
	"pisopatrol/dashboard/internal/logging"
	"pisopatrol/dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// Session owns one user's canonical table and goal definitions.
type Session struct {
	Transactions []models.Transaction
	Goals        models.StashGoalSet
	Rejected     []models.RejectedRow

	log logging.Logger
}

// New creates an empty session.
func New(log logging.Logger) *Session {
	if log == nil {
		log = logging.GetLogger()
	}
	return &Session{Goals: models.StashGoalSet{}, log: log}
}

// HasData reports whether a canonical table has been ingested.
func (s *Session) HasData() bool {
	return len(s.Transactions) > 0
}

// Ingest replaces the canonical table with a freshly cleaned result. Goal
// definitions survive re-ingestion; only Clear removes them.
func (s *Session) Ingest(result cleaner.Result) {
	s.Transactions = result.Transactions
	s.Rejected = result.Rejected
	s.log.Info("Ingested canonical table",
		logging.F("rows", len(result.Transactions)),
		logging.F("rejected", len(result.Rejected)))
}

// Clear deletes the canonical table. Goal definitions have no independent
// existence and are wiped with it.
func (s *Session) Clear() {
	s.Transactions = nil
	s.Rejected = nil
	s.Goals = models.StashGoalSet{}
	s.log.Info("Cleared session state")
}

// SetGoal creates or updates a stash goal definition.
func (s *Session) SetGoal(subcategory string, goal decimal.Decimal, glyph string) {
	if glyph == "" {
		glyph = "🏦"
	}
	s.Goals[subcategory] = models.StashGoal{
		Subcategory: subcategory,
		Goal:        goal,
		Glyph:       glyph,
	}
}

// RemoveGoal deletes a stash goal definition. Historical rows tagged with
// the subcategory immediately classify as plain expenses again.
func (s *Session) RemoveGoal(subcategory string) {
	delete(s.Goals, subcategory)
}

// Filtered returns the transactions passing the filter, preserving table order.
func (s *Session) Filtered(f *Filter) []models.Transaction {
	if f == nil {
		out := make([]models.Transaction, len(s.Transactions))
		copy(out, s.Transactions)
		return out
	}
	var out []models.Transaction
	for i := range s.Transactions {
		if f.Matches(&s.Transactions[i]) {
			out = append(out, s.Transactions[i])
		}
	}
	return out
}

// VisibleIDs returns the ID set of the filtered view, for the edit/merge
// engine.
func (s *Session) VisibleIDs(f *Filter) map[string]bool {
	ids := make(map[string]bool)
	for _, tx := range s.Filtered(f) {
		ids[tx.ID] = true
	}
	return ids
}

// ApplyEdits merges an edited view of the filtered subset back into the
// canonical table. Invalid edits are surfaced on the result and not applied.
func (s *Session) ApplyEdits(f *Filter, edits []editor.RowEdit) editor.MergeResult {
	result := editor.Merge(s.Transactions, s.VisibleIDs(f), edits, s.log)
	s.Transactions = result.Transactions
	return result
}

// DateBounds returns the earliest and latest transaction dates, used to
// anchor the all-time range.
func (s *Session) DateBounds() (min, max time.Time, ok bool) {
	if len(s.Transactions) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = s.Transactions[0].Date, s.Transactions[0].Date
	for i := range s.Transactions {
		if s.Transactions[i].Date.Before(min) {
			min = s.Transactions[i].Date
		}
		if s.Transactions[i].Date.After(max) {
			max = s.Transactions[i].Date
		}
	}
	return min, max, true
}

// Accounts returns the distinct account names in the table, sorted.
func (s *Session) Accounts() []string {
	return s.distinct(func(t *models.Transaction) string { return t.Account })
}

// Categories returns the distinct categories in the table, sorted.
func (s *Session) Categories() []string {
	return s.distinct(func(t *models.Transaction) string { return t.Category })
}

// Subcategories returns the distinct subcategories in the table, sorted.
func (s *Session) Subcategories() []string {
	return s.distinct(func(t *models.Transaction) string { return t.Subcategory })
}

// StashCandidates returns the subcategories eligible for a goal definition:
// those appearing on Expense- or Stash-typed rows.
func (s *Session) StashCandidates() []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range s.Transactions {
		t := &s.Transactions[i]
		if t.Type != models.TypeExpense && t.Type != models.TypeStash {
			continue
		}
		if _, ok := seen[t.Subcategory]; ok {
			continue
		}
		seen[t.Subcategory] = struct{}{}
		out = append(out, t.Subcategory)
	}
	sort.Strings(out)
	return out
}

func (s *Session) distinct(key func(*models.Transaction) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range s.Transactions {
		k := key(&s.Transactions[i])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
