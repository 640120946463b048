package aggregate

import (
	"testing"
	"time"

	"pisopatrol/dashboard/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month) models.Month {
	return models.Month{Year: y, Month: m}
}

func TestMonthInsightsPreviousMonth(t *testing.T) {
	txs := []models.Transaction{
		tx("2025-06-10", models.TypeExpense, "Food", "Groceries", "200"),
		tx("2025-07-05", models.TypeExpense, "Food", "Groceries", "300"),
		tx("2025-07-06", models.TypeExpense, "Transport", "Fuel", "100"),
	}

	rows := MonthInsights(txs, month(2025, time.July), BasisPreviousMonth, 0, ByCategory)
	require.Len(t, rows, 2)

	var food, transport Insight
	for _, r := range rows {
		switch r.Group {
		case "Food":
			food = r
		case "Transport":
			transport = r
		}
	}

	assert.True(t, food.Current.Equal(decimal.NewFromInt(300)))
	assert.True(t, food.Basis.Equal(decimal.NewFromInt(200)))
	assert.True(t, food.PctChange.Equal(decimal.NewFromInt(50)))
	assert.False(t, food.IsNew)

	// Transport had no June activity: flagged new, not a division fault.
	assert.True(t, transport.IsNew)
	assert.True(t, transport.Basis.IsZero())
}

func TestMonthInsightsNewGroupsSortLast(t *testing.T) {
	txs := []models.Transaction{
		tx("2025-06-10", models.TypeExpense, "Food", "Groceries", "200"),
		tx("2025-07-05", models.TypeExpense, "Food", "Groceries", "100"),
		tx("2025-07-06", models.TypeExpense, "Transport", "Fuel", "50"),
	}

	rows := MonthInsights(txs, month(2025, time.July), BasisPreviousMonth, 0, ByCategory)
	require.Len(t, rows, 2)
	assert.Equal(t, "Food", rows[0].Group)
	assert.Equal(t, "Transport", rows[1].Group)
	assert.True(t, rows[1].IsNew)
}

func TestMonthInsightsFirstMonthOfYear(t *testing.T) {
	txs := []models.Transaction{
		tx("2025-01-15", models.TypeIncome, "Salary", "Salary", "1000"),
		tx("2025-07-15", models.TypeIncome, "Salary", "Salary", "1500"),
	}

	rows := MonthInsights(txs, month(2025, time.July), BasisFirstMonthOfYear, 0, ByCategory)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Basis.Equal(decimal.NewFromInt(1000)))
	assert.True(t, rows[0].PctChange.Equal(decimal.NewFromInt(50)))
}

func TestMonthInsightsTrailingAverage(t *testing.T) {
	txs := []models.Transaction{
		tx("2025-04-10", models.TypeExpense, "Food", "Groceries", "100"),
		tx("2025-05-10", models.TypeExpense, "Food", "Groceries", "200"),
		tx("2025-06-10", models.TypeExpense, "Food", "Groceries", "300"),
		tx("2025-07-10", models.TypeExpense, "Food", "Groceries", "400"),
	}

	rows := MonthInsights(txs, month(2025, time.July), BasisTrailingAverage, 3, ByCategory)
	require.Len(t, rows, 1)
	// (100+200+300)/3, the selected month itself excluded.
	assert.True(t, rows[0].Basis.Equal(decimal.NewFromInt(200)))
	assert.True(t, rows[0].PctChange.Equal(decimal.NewFromInt(100)))
}

func TestYTDMonthlyAverageSkipsInactiveMonths(t *testing.T) {
	txs := []models.Transaction{
		tx("2025-01-10", models.TypeExpense, "Food", "Groceries", "100"),
		// February: no activity for Food.
		tx("2025-03-10", models.TypeExpense, "Food", "Groceries", "300"),
		tx("2025-04-10", models.TypeExpense, "Food", "Groceries", "999"), // selected month, excluded
	}

	avg := YTDMonthlyAverage(txs, ByCategory, "Food", month(2025, time.April))
	// (100+300)/2 active months, not /3 elapsed months.
	assert.True(t, avg.Equal(decimal.NewFromInt(200)), "got %s", avg)
}

func TestYTDMonthlyAverageExcludesOtherYears(t *testing.T) {
	txs := []models.Transaction{
		tx("2024-12-10", models.TypeExpense, "Food", "Groceries", "500"),
		tx("2025-01-10", models.TypeExpense, "Food", "Groceries", "100"),
	}

	avg := YTDMonthlyAverage(txs, ByCategory, "Food", month(2025, time.February))
	assert.True(t, avg.Equal(decimal.NewFromInt(100)))
}

func TestYTDMonthlyAverageNoHistory(t *testing.T) {
	avg := YTDMonthlyAverage(nil, ByCategory, "Food", month(2025, time.January))
	assert.True(t, avg.IsZero())
}
