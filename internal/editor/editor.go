// Package editor applies user row edits back into the canonical table.
// Edits are keyed on the stable transaction ID assigned at ingestion, never
// on positional index, so rows outside the active filter are untouchable by
// construction.
package editor

import (
	"errors"
	"fmt"
	"strings"

	"pisopatrol/dashboard/internal/cleaner"
	"pisopatrol/dashboard/internal/dasherror"
	"pisopatrol/dashboard/internal/dateutils"
	"pisopatrol/dashboard/internal/logging"
	"pisopatrol/dashboard/internal/models"

	"github.com/google/uuid"
)

// RowEdit is one row of the edited view, as raw text from the presentation
// layer. An empty ID marks a newly added row; a known ID overwrites that
// canonical row.
type RowEdit struct {
	ID          string `csv:"ID"`
	Date        string `csv:"Date"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
	Subcategory string `csv:"Subcategory"`
	Type        string `csv:"Type"`
	Account     string `csv:"Account"`
}

// MergeResult reports the outcome of one merge.
type MergeResult struct {
	Transactions []models.Transaction // the new canonical table
	Updated      int
	Added        int
	Deleted      int
	// Invalid holds edits that failed re-validation; they were not applied
	// and must be re-surfaced rather than silently coerced.
	Invalid []models.RejectedRow
}

// Merge applies an edited view of a filtered subset back into the canonical
// table. visible is the set of canonical IDs the user was shown: rows in it
// that are absent from the edit are deleted; rows outside it are never
// touched. Edited rows are re-validated with the ingestion coercion rules
// before being applied.
func Merge(canonical []models.Transaction, visible map[string]bool, edits []RowEdit, log logging.Logger) MergeResult {
	if log == nil {
		log = logging.GetLogger()
	}

	updates := make(map[string]models.Transaction)
	var updateOrder []string
	var additions []models.Transaction
	var invalid []models.RejectedRow
	editedIDs := make(map[string]bool)

	for i, edit := range edits {
		tx, err := coerceEdit(edit)
		if err != nil {
			editErr := &dasherror.EditError{RowID: edit.ID, Field: failedField(err), Err: err}
			log.Debug("Row edit failed validation", logging.F("error", editErr.Error()))
			invalid = append(invalid, models.RejectedRow{
				Line:   i + 1,
				Fields: edit.fields(),
				Reason: cleaner.RejectionReason(err),
			})
			// The row keeps its canonical form (updates) or is dropped
			// entirely (additions); it still counts as present so an
			// invalid edit never turns into a deletion.
			if edit.ID != "" {
				editedIDs[edit.ID] = true
			}
			continue
		}

		if edit.ID == "" {
			tx.ID = uuid.NewString()
			additions = append(additions, tx)
			continue
		}
		editedIDs[edit.ID] = true
		if _, seen := updates[edit.ID]; !seen {
			updateOrder = append(updateOrder, edit.ID)
		}
		updates[edit.ID] = tx
	}

	result := MergeResult{Invalid: invalid}
	applied := make(map[string]bool)
	for i := range canonical {
		id := canonical[i].ID
		if visible[id] && !editedIDs[id] {
			result.Deleted++
			continue
		}
		if tx, ok := updates[id]; ok {
			result.Transactions = append(result.Transactions, tx)
			result.Updated++
			applied[id] = true
			continue
		}
		result.Transactions = append(result.Transactions, canonical[i])
	}

	// An edit whose ID matches no canonical row is a new row; it gets a
	// fresh identity and is appended instead of being dropped.
	for _, id := range updateOrder {
		if applied[id] {
			continue
		}
		tx := updates[id]
		tx.ID = uuid.NewString()
		additions = append(additions, tx)
	}

	result.Transactions = append(result.Transactions, additions...)
	result.Added = len(additions)

	log.Info("Merged row edits",
		logging.F("updated", result.Updated),
		logging.F("added", result.Added),
		logging.F("deleted", result.Deleted),
		logging.F("invalid", len(result.Invalid)))
	return result
}

// coerceEdit re-validates an edited row with the same rules ingestion uses.
func coerceEdit(edit RowEdit) (models.Transaction, error) {
	date, err := dateutils.ParseDateString(edit.Date)
	if err != nil {
		return models.Transaction{}, &dasherror.ParseError{Field: "Date", Value: edit.Date, Err: err}
	}

	amount, negative, err := models.ParseSignedAmount(edit.Amount)
	if err != nil {
		return models.Transaction{}, &dasherror.ParseError{Field: "Amount", Value: edit.Amount, Err: err}
	}

	category := strings.TrimSpace(edit.Category)
	if category == "" {
		category = models.CategoryUncategorized
	}

	subcategory := strings.TrimSpace(edit.Subcategory)
	if subcategory == "" {
		subcategory = category
	}

	txType := strings.TrimSpace(edit.Type)
	if txType == "" {
		if negative {
			txType = models.TypeExpense
		} else {
			txType = models.TypeIncome
		}
	}

	account := strings.TrimSpace(edit.Account)
	if account == "" {
		account = models.DefaultAccount
	}

	return models.Transaction{
		ID:          edit.ID,
		Date:        date,
		Amount:      amount,
		Category:    category,
		Subcategory: subcategory,
		Type:        txType,
		Account:     account,
	}, nil
}

func failedField(err error) string {
	var perr *dasherror.ParseError
	if errors.As(err, &perr) {
		return perr.Field
	}
	return ""
}

func (e RowEdit) fields() map[string]string {
	return map[string]string{
		"ID":          e.ID,
		"Date":        e.Date,
		"Amount":      e.Amount,
		"Category":    e.Category,
		"Subcategory": e.Subcategory,
		"Type":        e.Type,
		"Account":     e.Account,
	}
}

// EditOf renders a canonical row as an editable view row, the inverse of
// coerceEdit for round-tripping through the presentation layer.
func EditOf(t *models.Transaction) RowEdit {
	return RowEdit{
		ID:          t.ID,
		Date:        dateutils.ToISODate(t.Date),
		Amount:      t.Amount.StringFixed(2),
		Category:    t.Category,
		Subcategory: t.Subcategory,
		Type:        t.Type,
		Account:     t.Account,
	}
}

// Validate sanity-checks a merge result against the expected row-count
// identity: len(after) = len(before) + added - deleted.
func Validate(before int, r *MergeResult) error {
	expected := before + r.Added - r.Deleted
	if len(r.Transactions) != expected {
		return fmt.Errorf("merge row count mismatch: got %d, expected %d", len(r.Transactions), expected)
	}
	return nil
}
