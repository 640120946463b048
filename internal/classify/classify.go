// Package classify repartitions canonical transactions into Income, Expense
// and Stash buckets for analysis. Classification is a view computed fresh on
// every query: redefining a stash goal retroactively reclassifies historical
// Expense rows without touching their stored fields.
package classify

import (
	"pisopatrol/dashboard/internal/models"
)

// Class is the analytical bucket a transaction belongs to.
type Class int

const (
	// ClassNone marks rows whose stored Type is outside the canonical set;
	// they belong to no bucket and count toward no total.
	ClassNone Class = iota
	ClassIncome
	ClassExpense
	ClassStash
)

// String returns the display name of the class.
func (c Class) String() string {
	switch c {
	case ClassIncome:
		return models.TypeIncome
	case ClassExpense:
		return models.TypeExpense
	case ClassStash:
		return models.TypeStash
	}
	return "None"
}

// Classify assigns a transaction to exactly one bucket. A row is Stash when
// its type is Stash, or when it is an Expense whose subcategory has a goal
// defined. Goal membership is matched against Subcategory, never Category.
func Classify(t *models.Transaction, goals models.StashGoalSet) Class {
	switch t.Type {
	case models.TypeStash:
		return ClassStash
	case models.TypeExpense:
		if goals.Contains(t.Subcategory) {
			return ClassStash
		}
		return ClassExpense
	case models.TypeIncome:
		return ClassIncome
	}
	return ClassNone
}

// Partition splits transactions into the three disjoint buckets. Rows with
// unrecognized types appear in none of them.
type Partition struct {
	Income  []models.Transaction
	Expense []models.Transaction
	Stash   []models.Transaction
}

// Split partitions the given transactions under the current goal set.
func Split(txs []models.Transaction, goals models.StashGoalSet) Partition {
	var p Partition
	for i := range txs {
		switch Classify(&txs[i], goals) {
		case ClassIncome:
			p.Income = append(p.Income, txs[i])
		case ClassExpense:
			p.Expense = append(p.Expense, txs[i])
		case ClassStash:
			p.Stash = append(p.Stash, txs[i])
		}
	}
	return p
}

// StashOnly returns just the Stash bucket; used by the projection engine,
// which needs all-time contributions per subcategory.
func StashOnly(txs []models.Transaction, goals models.StashGoalSet) []models.Transaction {
	var out []models.Transaction
	for i := range txs {
		if Classify(&txs[i], goals) == ClassStash {
			out = append(out, txs[i])
		}
	}
	return out
}
