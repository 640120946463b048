package projection

import (
	"sort"

	"pisopatrol/dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// GoalProgress is one savings-goal card: all-time progress and projection
// plus the contribution metrics for the currently filtered period.
type GoalProgress struct {
	Subcategory string          `json:"subcategory" yaml:"subcategory"`
	Glyph       string          `json:"glyph" yaml:"glyph"`
	Goal        decimal.Decimal `json:"goal" yaml:"goal"`

	TotalSaved    decimal.Decimal `json:"total_saved" yaml:"total_saved"`
	AttainmentPct decimal.Decimal `json:"attainment_pct" yaml:"attainment_pct"`
	Forecast      string          `json:"forecast" yaml:"forecast"`

	PeriodTotal   decimal.Decimal `json:"period_total" yaml:"period_total"`
	PeriodCount   int             `json:"period_count" yaml:"period_count"`
	PeriodAverage decimal.Decimal `json:"period_average" yaml:"period_average"`
}

// BuildProgress computes one card per defined goal. allTime must be the
// unfiltered stash-classified transactions (the progress bar and forecast
// ignore the date filter); period is the filtered stash subset. Every
// defined goal gets a card, even one with zero contributions.
func BuildProgress(allTime, period []models.Transaction, goals models.StashGoalSet) []GoalProgress {
	byGoal := func(txs []models.Transaction, sub string) []models.Transaction {
		var out []models.Transaction
		for i := range txs {
			if txs[i].Subcategory == sub {
				out = append(out, txs[i])
			}
		}
		return out
	}

	cards := make([]GoalProgress, 0, len(goals))
	for _, sub := range goals.Subcategories() {
		goal := goals[sub]
		all := byGoal(allTime, sub)
		result := Project(all, goal.Goal)

		card := GoalProgress{
			Subcategory:   sub,
			Glyph:         goal.Glyph,
			Goal:          goal.Goal,
			TotalSaved:    result.TotalSaved,
			AttainmentPct: decimal.Zero,
			Forecast:      result.String(),
			PeriodTotal:   decimal.Zero,
			PeriodAverage: decimal.Zero,
		}
		if goal.Goal.IsPositive() {
			card.AttainmentPct = result.TotalSaved.Div(goal.Goal).Mul(decimal.NewFromInt(100))
		}

		for _, tx := range byGoal(period, sub) {
			card.PeriodTotal = card.PeriodTotal.Add(tx.Amount)
			card.PeriodCount++
		}
		if card.PeriodCount > 0 {
			card.PeriodAverage = card.PeriodTotal.Div(decimal.NewFromInt(int64(card.PeriodCount)))
		}

		cards = append(cards, card)
	}

	sort.Slice(cards, func(i, j int) bool { return cards[i].Subcategory < cards[j].Subcategory })
	return cards
}
