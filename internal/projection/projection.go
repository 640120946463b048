// Package projection forecasts stash goal completion dates from historical
// contribution velocity.
package projection

import (
	"time"

	"pisopatrol/dashboard/internal/dateutils"
	"pisopatrol/dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// farFutureMonths bounds the forecast horizon. Anything beyond a century is
// reported as "decades away" instead of a date nobody will live to verify.
const farFutureMonths = 1200

// State describes the outcome of a projection.
type State int

const (
	StateNoContributions State = iota
	StateGoalMet
	StateUnreachable
	StateProjected
	StateFarFuture
)

// Result is the forecast for one stash subcategory.
type Result struct {
	State           State
	TotalSaved      decimal.Decimal
	AvgMonthlyRate  decimal.Decimal
	MonthsRemaining int
	CompletionDate  time.Time
}

// Project forecasts when a goal will be met given its all-time stash
// contributions. The average monthly rate is taken over the inclusive span
// from first to last contribution month (minimum one month), and the
// projection anchors on the last contribution date rather than today, so a
// dormant stash still yields a forecast relative to when money was actually
// added.
func Project(contribs []models.Transaction, goal decimal.Decimal) Result {
	if len(contribs) == 0 {
		return Result{State: StateNoContributions, TotalSaved: decimal.Zero, AvgMonthlyRate: decimal.Zero}
	}

	total := decimal.Zero
	first := contribs[0].Date
	last := contribs[0].Date
	for i := range contribs {
		total = total.Add(contribs[i].Amount)
		if contribs[i].Date.Before(first) {
			first = contribs[i].Date
		}
		if contribs[i].Date.After(last) {
			last = contribs[i].Date
		}
	}

	if total.GreaterThanOrEqual(goal) {
		return Result{State: StateGoalMet, TotalSaved: total, AvgMonthlyRate: decimal.Zero}
	}

	elapsed := models.MonthOf(last).Index() - models.MonthOf(first).Index() + 1
	if elapsed < 1 {
		elapsed = 1
	}
	rate := total.Div(decimal.NewFromInt(int64(elapsed)))

	if !rate.IsPositive() {
		return Result{State: StateUnreachable, TotalSaved: total, AvgMonthlyRate: rate}
	}

	remaining := goal.Sub(total)
	months := int(remaining.Div(rate).Ceil().IntPart())
	if months < 1 {
		months = 1
	}

	result := Result{
		State:           StateProjected,
		TotalSaved:      total,
		AvgMonthlyRate:  rate,
		MonthsRemaining: months,
	}
	if months > farFutureMonths {
		result.State = StateFarFuture
		return result
	}

	result.CompletionDate = dateutils.AddMonths(last, months)
	return result
}

// String renders the forecast in the dashboard's display form.
func (r Result) String() string {
	switch r.State {
	case StateNoContributions:
		return "No contributions yet"
	case StateGoalMet:
		return "Goal met"
	case StateUnreachable:
		return "Unreachable at current rate"
	case StateFarFuture:
		return "Decades away"
	default:
		return "Est. " + r.CompletionDate.Format(dateutils.DateLayoutHuman)
	}
}
