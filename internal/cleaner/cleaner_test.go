package cleaner

import (
	"testing"

	"pisopatrol/dashboard/internal/loader"
	"pisopatrol/dashboard/internal/logging"
	"pisopatrol/dashboard/internal/models"
	"pisopatrol/dashboard/internal/schemamap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardTable(rows [][]string) *loader.RawTable {
	return &loader.RawTable{
		Headers: []string{"Date", "Amount", "Category", "Subcategory", "Type", "Account"},
		Rows:    rows,
	}
}

func standardMapping(t *testing.T) schemamap.Mapping {
	t.Helper()
	m, err := schemamap.AutoMap([]string{"Date", "Amount", "Category", "Subcategory", "Type", "Account"})
	require.NoError(t, err)
	return m
}

func TestCleanHappyPath(t *testing.T) {
	table := standardTable([][]string{
		{"2025-07-01", "1,500.00", "Salary", "", "Income", "Checking"},
		{"2025-07-02", "-250.50", "Food", "Groceries", "Expense", "Checking"},
	})

	result := Clean(table, standardMapping(t), logging.NewMockLogger())
	require.Len(t, result.Transactions, 2)
	assert.Empty(t, result.Rejected)

	salary := result.Transactions[0]
	assert.Equal(t, "Salary", salary.Category)
	assert.Equal(t, "Salary", salary.Subcategory, "empty subcategory falls back to category")
	assert.Equal(t, "1500", salary.Amount.String())
	assert.Equal(t, models.TypeIncome, salary.Type)
	assert.Equal(t, "Checking", salary.Account)

	food := result.Transactions[1]
	assert.Equal(t, "Groceries", food.Subcategory)
	assert.False(t, food.Amount.IsNegative(), "amounts are stored as magnitudes")
	assert.Equal(t, "250.5", food.Amount.String())
}

func TestCleanRejectsOnlyBadRows(t *testing.T) {
	table := standardTable([][]string{
		{"2025-07-01", "100", "A", "", "Expense", ""},
		{"2025-07-02", "200", "B", "", "Expense", ""},
		{"not-a-date", "300", "C", "", "Expense", ""},
		{"2025-07-04", "400", "D", "", "Expense", ""},
		{"2025-07-05", "500", "E", "", "Expense", ""},
	})

	result := Clean(table, standardMapping(t), logging.NewMockLogger())

	assert.Len(t, result.Transactions, 4)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 3, result.Rejected[0].Line)
	assert.Equal(t, ReasonBadDate, result.Rejected[0].Reason)
	assert.Equal(t, "not-a-date", result.Rejected[0].Fields["Date"], "rejected rows keep verbatim values")

	// Good and rejected counts partition the input.
	assert.Equal(t, len(table.Rows), len(result.Transactions)+len(result.Rejected))
}

func TestCleanRejectsBadAmount(t *testing.T) {
	table := standardTable([][]string{
		{"2025-07-01", "twelve", "A", "", "Expense", ""},
	})

	result := Clean(table, standardMapping(t), logging.NewMockLogger())
	assert.Empty(t, result.Transactions)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, ReasonBadAmount, result.Rejected[0].Reason)
}

func TestCleanEmptyCategorySentinel(t *testing.T) {
	table := standardTable([][]string{
		{"2025-07-01", "10", "  ", "", "Expense", ""},
	})

	result := Clean(table, standardMapping(t), logging.NewMockLogger())
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, models.CategoryUncategorized, result.Transactions[0].Category)
	assert.Equal(t, models.CategoryUncategorized, result.Transactions[0].Subcategory)
}

func TestCleanDefaultAccount(t *testing.T) {
	table := standardTable([][]string{
		{"2025-07-01", "10", "A", "", "Expense", "  "},
	})

	result := Clean(table, standardMapping(t), logging.NewMockLogger())
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, models.DefaultAccount, result.Transactions[0].Account)
}

func TestCleanTypeInferenceWithoutTypeColumn(t *testing.T) {
	table := &loader.RawTable{
		Headers: []string{"Date", "Amount", "Category"},
		Rows: [][]string{
			{"2025-07-01", "-50", "Food"},
			{"2025-07-02", "50", "Salary"},
			{"2025-07-03", "0", "Adjustment"},
		},
	}
	m, err := schemamap.AutoMap(table.Headers)
	require.NoError(t, err)

	result := Clean(table, m, logging.NewMockLogger())
	require.Len(t, result.Transactions, 3)
	assert.Equal(t, models.TypeExpense, result.Transactions[0].Type)
	assert.Equal(t, models.TypeIncome, result.Transactions[1].Type)
	// Zero is non-negative, so it lands on the income side of the split.
	assert.Equal(t, models.TypeIncome, result.Transactions[2].Type)
}

func TestCleanMappedTypeColumnWins(t *testing.T) {
	table := standardTable([][]string{
		{"2025-07-01", "-500", "Savings", "Vacation Fund", "Stash", ""},
		{"2025-07-02", "100", "Misc", "", "", ""},
	})

	result := Clean(table, standardMapping(t), logging.NewMockLogger())
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, models.TypeStash, result.Transactions[0].Type, "explicit type beats sign inference")
	assert.Equal(t, models.TypeExpense, result.Transactions[1].Type, "blank cell in a mapped type column defaults to Expense")
}

func TestCleanAssignsUniqueStableIDs(t *testing.T) {
	table := standardTable([][]string{
		{"2025-07-01", "10", "A", "", "Expense", ""},
		{"2025-07-01", "10", "A", "", "Expense", ""},
	})

	result := Clean(table, standardMapping(t), logging.NewMockLogger())
	require.Len(t, result.Transactions, 2)
	assert.NotEmpty(t, result.Transactions[0].ID)
	assert.NotEqual(t, result.Transactions[0].ID, result.Transactions[1].ID,
		"identical rows still get distinct identifiers")
}

// Cleaning an already-clean table must be a no-op: formatting the canonical
// values back to text and re-cleaning yields the same dates, amounts and
// fields.
func TestCleanIdempotence(t *testing.T) {
	table := standardTable([][]string{
		{"2025-07-01", "$1,234.56", "Food", "Groceries", "Expense", "Checking"},
		{"19.07.2025", "(42.00)", "", "", "", ""},
	})

	first := Clean(table, standardMapping(t), logging.NewMockLogger())
	require.Len(t, first.Transactions, 2)

	second := standardTable(nil)
	for _, tx := range first.Transactions {
		second.Rows = append(second.Rows, []string{
			tx.Date.Format("2006-01-02"), tx.Amount.String(),
			tx.Category, tx.Subcategory, tx.Type, tx.Account,
		})
	}

	recleaned := Clean(second, standardMapping(t), logging.NewMockLogger())
	require.Len(t, recleaned.Transactions, 2)
	for i := range first.Transactions {
		assert.True(t, first.Transactions[i].Date.Equal(recleaned.Transactions[i].Date))
		assert.True(t, first.Transactions[i].Amount.Equal(recleaned.Transactions[i].Amount))
		assert.Equal(t, first.Transactions[i].Category, recleaned.Transactions[i].Category)
		assert.Equal(t, first.Transactions[i].Subcategory, recleaned.Transactions[i].Subcategory)
		assert.Equal(t, first.Transactions[i].Type, recleaned.Transactions[i].Type)
		assert.Equal(t, first.Transactions[i].Account, recleaned.Transactions[i].Account)
	}
}
