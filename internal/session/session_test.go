package session

import (
	"testing"
	"time"

	"pisopatrol/dashboard/internal/cleaner"
	"pisopatrol/dashboard/internal/editor"
	"pisopatrol/dashboard/internal/logging"
	"pisopatrol/dashboard/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id, date, typ, category, subcategory, account string, amount int64) models.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		ID:          id,
		Date:        d,
		Amount:      decimal.NewFromInt(amount),
		Category:    category,
		Subcategory: subcategory,
		Type:        typ,
		Account:     account,
	}
}

func TestIngestReplacesTableKeepsGoals(t *testing.T) {
	s := New(logging.NewMockLogger())
	s.SetGoal("Vacation Fund", decimal.NewFromInt(1000), "")

	s.Ingest(cleaner.Result{
		Transactions: []models.Transaction{tx("a", "2025-07-01", "Income", "Salary", "Salary", "Main", 100)},
	})
	require.True(t, s.HasData())
	assert.True(t, s.Goals.Contains("Vacation Fund"), "goal definitions survive re-ingestion")

	s.Ingest(cleaner.Result{
		Transactions: []models.Transaction{tx("b", "2025-08-01", "Income", "Salary", "Salary", "Main", 200)},
	})
	require.Len(t, s.Transactions, 1)
	assert.Equal(t, "b", s.Transactions[0].ID, "ingestion replaces, never appends")
	assert.True(t, s.Goals.Contains("Vacation Fund"))
}

func TestClearWipesEverything(t *testing.T) {
	s := New(logging.NewMockLogger())
	s.SetGoal("Vacation Fund", decimal.NewFromInt(1000), "")
	s.Ingest(cleaner.Result{
		Transactions: []models.Transaction{tx("a", "2025-07-01", "Income", "Salary", "Salary", "Main", 100)},
		Rejected:     []models.RejectedRow{{Line: 2, Reason: "unparsable date"}},
	})

	s.Clear()
	assert.False(t, s.HasData())
	assert.Empty(t, s.Rejected)
	assert.False(t, s.Goals.Contains("Vacation Fund"), "goals have no existence apart from the table")
}

func TestSetGoalDefaultGlyph(t *testing.T) {
	s := New(logging.NewMockLogger())
	s.SetGoal("Vacation Fund", decimal.NewFromInt(1000), "")
	assert.Equal(t, "🏦", s.Goals["Vacation Fund"].Glyph)

	s.SetGoal("Vacation Fund", decimal.NewFromInt(2000), "🏖️")
	assert.Equal(t, "🏖️", s.Goals["Vacation Fund"].Glyph)
	assert.True(t, s.Goals["Vacation Fund"].Goal.Equal(decimal.NewFromInt(2000)))
}

func TestResolvePresetRanges(t *testing.T) {
	// 2025-07-19 is a Saturday.
	today := time.Date(2025, 7, 19, 15, 4, 5, 0, time.UTC)
	dataMin := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	dataMax := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		option RangeOption
		from   time.Time
		to     time.Time
	}{
		{RangeAllTime, dataMin, dataMax},
		{RangeThisWeek, time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)},
		{RangeThisMonth, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)},
		{RangeLast30Days, time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)},
		{RangeThisQuarter, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)},
		{RangeYearToDate, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.option), func(t *testing.T) {
			from, to, err := Resolve(tt.option, today, dataMin, dataMax)
			require.NoError(t, err)
			assert.True(t, from.Equal(tt.from), "from: got %s, want %s", from, tt.from)
			assert.True(t, to.Equal(tt.to), "to: got %s, want %s", to, tt.to)
		})
	}
}

func TestResolveUnknownOption(t *testing.T) {
	_, _, err := Resolve("fortnight", time.Now(), time.Now(), time.Now())
	assert.Error(t, err)
}

func TestResolveCustomHasNoPresetBounds(t *testing.T) {
	_, _, err := Resolve(RangeCustom, time.Now(), time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom range")
}

func TestFilteredByDateAndDimensions(t *testing.T) {
	s := New(logging.NewMockLogger())
	s.Transactions = []models.Transaction{
		tx("a", "2025-07-01", "Expense", "Food", "Groceries", "Main", 100),
		tx("b", "2025-07-15", "Expense", "Food", "Dining", "Main", 200),
		tx("c", "2025-08-01", "Expense", "Transport", "Fuel", "Cash", 300),
	}

	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	july := s.Filtered(&Filter{From: &from, To: &to})
	assert.Len(t, july, 2)

	food := s.Filtered(&Filter{Categories: []string{"Food"}})
	assert.Len(t, food, 2)

	cash := s.Filtered(&Filter{Accounts: []string{"Cash"}})
	require.Len(t, cash, 1)
	assert.Equal(t, "c", cash[0].ID)

	all := s.Filtered(nil)
	assert.Len(t, all, 3)
}

func TestVisibleIDs(t *testing.T) {
	s := New(logging.NewMockLogger())
	s.Transactions = []models.Transaction{
		tx("a", "2025-07-01", "Expense", "Food", "Groceries", "Main", 100),
		tx("b", "2025-08-01", "Expense", "Food", "Dining", "Main", 200),
	}

	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	ids := s.VisibleIDs(&Filter{From: &from, To: &to})
	assert.Equal(t, map[string]bool{"a": true}, ids)
}

func TestApplyEditsRespectsFilter(t *testing.T) {
	s := New(logging.NewMockLogger())
	s.Transactions = []models.Transaction{
		tx("a", "2025-07-01", "Expense", "Food", "Groceries", "Main", 100),
		tx("b", "2025-08-01", "Expense", "Food", "Dining", "Main", 200),
	}

	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	// Empty edit set over the July view deletes the July row only.
	result := s.ApplyEdits(&Filter{From: &from, To: &to}, nil)
	assert.Equal(t, 1, result.Deleted)
	require.Len(t, s.Transactions, 1)
	assert.Equal(t, "b", s.Transactions[0].ID)
}

func TestApplyEditsUpdates(t *testing.T) {
	s := New(logging.NewMockLogger())
	s.Transactions = []models.Transaction{
		tx("a", "2025-07-01", "Expense", "Food", "Groceries", "Main", 100),
	}

	edit := editor.EditOf(&s.Transactions[0])
	edit.Amount = "999"
	result := s.ApplyEdits(nil, []editor.RowEdit{edit})

	assert.Equal(t, 1, result.Updated)
	assert.True(t, s.Transactions[0].Amount.Equal(decimal.NewFromInt(999)))
}

func TestDateBounds(t *testing.T) {
	s := New(logging.NewMockLogger())
	_, _, ok := s.DateBounds()
	assert.False(t, ok)

	s.Transactions = []models.Transaction{
		tx("a", "2025-07-15", "Expense", "Food", "Groceries", "Main", 100),
		tx("b", "2025-07-01", "Expense", "Food", "Dining", "Main", 200),
		tx("c", "2025-08-02", "Expense", "Transport", "Fuel", "Cash", 300),
	}

	min, max, ok := s.DateBounds()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), min)
	assert.Equal(t, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), max)
}

func TestDistinctDimensions(t *testing.T) {
	s := New(logging.NewMockLogger())
	s.Transactions = []models.Transaction{
		tx("a", "2025-07-01", "Expense", "Food", "Groceries", "Main", 100),
		tx("b", "2025-07-02", "Expense", "Food", "Dining", "Main", 200),
		tx("c", "2025-07-03", "Income", "Salary", "Salary", "Cash", 300),
	}

	assert.Equal(t, []string{"Cash", "Main"}, s.Accounts())
	assert.Equal(t, []string{"Food", "Salary"}, s.Categories())
	assert.Equal(t, []string{"Dining", "Groceries", "Salary"}, s.Subcategories())
}

func TestStashCandidates(t *testing.T) {
	s := New(logging.NewMockLogger())
	s.Transactions = []models.Transaction{
		tx("a", "2025-07-01", "Expense", "Savings", "Vacation Fund", "Main", 100),
		tx("b", "2025-07-02", "Stash", "Savings", "Emergency Fund", "Main", 200),
		tx("c", "2025-07-03", "Income", "Salary", "Salary", "Main", 300),
	}

	assert.Equal(t, []string{"Emergency Fund", "Vacation Fund"}, s.StashCandidates())
}
