// Package cleaner coerces raw table rows into canonical transactions. It
// owns date and amount coercion, optional-field defaulting, type inference
// from amount sign, and the collection of rejected rows.
package cleaner

import (
	"errors"
	"strings"

	"pisopatrol/dashboard/internal/dasherror"
	"pisopatrol/dashboard/internal/dateutils"
	"pisopatrol/dashboard/internal/loader"
	"pisopatrol/dashboard/internal/logging"
	"pisopatrol/dashboard/internal/models"
	"pisopatrol/dashboard/internal/schemamap"

	"github.com/google/uuid"
)

// Rejection reasons recorded on RejectedRow.
const (
	ReasonBadDate   = "unparsable date"
	ReasonBadAmount = "unparsable amount"
)

// Result is the outcome of cleaning one raw table.
type Result struct {
	Transactions []models.Transaction
	Rejected     []models.RejectedRow
}

// Clean validates and coerces every row of the raw table according to the
// field mapping. A row is rejected iff its date or amount cannot be coerced;
// rejected rows keep their verbatim pre-coercion values. The output table is
// guaranteed to have no zero dates and no negative amounts.
func Clean(table *loader.RawTable, mapping schemamap.Mapping, log logging.Logger) Result {
	if log == nil {
		log = logging.GetLogger()
	}
	mapping = mapping.Normalize()

	var result Result
	for i := range table.Rows {
		tx, err := cleanRow(table, mapping, i)
		if err != nil {
			log.Debug("Row rejected", logging.F("line", i+1), logging.F("error", err.Error()))
			result.Rejected = append(result.Rejected, models.RejectedRow{
				Line:   i + 1,
				Fields: table.RowMap(i),
				Reason: RejectionReason(err),
			})
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	if len(result.Rejected) > 0 {
		log.Warn("Rows rejected during cleaning",
			logging.F("rejected", len(result.Rejected)),
			logging.F("accepted", len(result.Transactions)))
	} else {
		log.Info("Cleaned raw table", logging.F("rows", len(result.Transactions)))
	}
	return result
}

// RejectionReason maps a coercion error to its user-facing rejection reason.
func RejectionReason(err error) string {
	var perr *dasherror.ParseError
	if errors.As(err, &perr) && perr.Field == "Amount" {
		return ReasonBadAmount
	}
	return ReasonBadDate
}

func cleanRow(table *loader.RawTable, mapping schemamap.Mapping, row int) (models.Transaction, error) {
	rawDate, _ := table.Cell(row, mapping.Date)
	date, err := dateutils.ParseDateString(rawDate)
	if err != nil {
		return models.Transaction{}, &dasherror.ParseError{Field: "Date", Value: rawDate, Err: err}
	}

	rawAmount, _ := table.Cell(row, mapping.Amount)
	amount, negative, err := models.ParseSignedAmount(rawAmount)
	if err != nil {
		return models.Transaction{}, &dasherror.ParseError{Field: "Amount", Value: rawAmount, Err: err}
	}

	rawCategory, _ := table.Cell(row, mapping.Category)
	category := strings.TrimSpace(rawCategory)
	if category == "" {
		category = models.CategoryUncategorized
	}

	subcategory := category
	if raw, ok := table.Cell(row, mapping.Subcategory); ok {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			subcategory = trimmed
		}
	}

	txType := inferType(table, mapping, row, negative)

	account := models.DefaultAccount
	if mapping.Account != schemamap.None {
		if raw, ok := table.Cell(row, mapping.Account); ok {
			if trimmed := strings.TrimSpace(raw); trimmed != "" {
				account = trimmed
			}
		}
	}

	return models.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Amount:      amount,
		Category:    category,
		Subcategory: subcategory,
		Type:        txType,
		Account:     account,
	}, nil
}

// inferType resolves the transaction type. With a mapped Type column the raw
// value wins and missing cells default to Expense. Without one, polarity is
// derived from the pre-absolute-value sign: negative is Expense, everything
// else (zero included) is Income.
func inferType(table *loader.RawTable, mapping schemamap.Mapping, row int, negative bool) string {
	if mapping.Type != schemamap.None {
		if raw, ok := table.Cell(row, mapping.Type); ok {
			if trimmed := strings.TrimSpace(raw); trimmed != "" {
				return trimmed
			}
		}
		return models.TypeExpense
	}

	if negative {
		return models.TypeExpense
	}
	return models.TypeIncome
}
