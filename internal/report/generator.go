// Package report renders aggregation and projection results for the CLI in
// machine-readable formats.
package report

import (
	"encoding/json"
	"fmt"

	"pisopatrol/dashboard/internal/aggregate"
	"pisopatrol/dashboard/internal/logging"
	"pisopatrol/dashboard/internal/models"
	"pisopatrol/dashboard/internal/projection"

	"gopkg.in/yaml.v3"
)

// SummaryReport is the overview page's data: headline totals, the
// cumulative series, and breakdowns per class.
type SummaryReport struct {
	From   string           `json:"from" yaml:"from"`
	To     string           `json:"to" yaml:"to"`
	Totals aggregate.Totals `json:"totals" yaml:"totals"`

	Series []aggregate.SeriesPoint `json:"series,omitempty" yaml:"series,omitempty"`

	ExpenseBreakdown []aggregate.GroupTotal `json:"expense_breakdown" yaml:"expense_breakdown"`
	IncomeBreakdown  []aggregate.GroupTotal `json:"income_breakdown" yaml:"income_breakdown"`
	StashBreakdown   []aggregate.GroupTotal `json:"stash_breakdown" yaml:"stash_breakdown"`

	ExpenseKPIs *aggregate.PeriodKPIs `json:"expense_kpis,omitempty" yaml:"expense_kpis,omitempty"`

	Habits       []aggregate.HabitStats  `json:"habits,omitempty" yaml:"habits,omitempty"`
	WeekdayTrend []aggregate.TrendBucket `json:"weekday_trend,omitempty" yaml:"weekday_trend,omitempty"`
}

// InsightReport is one month's comparison table, with each group's
// year-to-date monthly average alongside.
type InsightReport struct {
	Month       string                 `json:"month" yaml:"month"`
	Class       string                 `json:"class" yaml:"class"`
	GroupBy     string                 `json:"group_by" yaml:"group_by"`
	Rows        []aggregate.Insight    `json:"rows" yaml:"rows"`
	YTDAverages []aggregate.GroupTotal `json:"ytd_averages,omitempty" yaml:"ytd_averages,omitempty"`
}

// StashReport is the savings-goals page: one card per defined goal.
type StashReport struct {
	Goals []projection.GoalProgress `json:"goals" yaml:"goals"`
}

// RejectedReport surfaces the rows dropped by the last ingestion.
type RejectedReport struct {
	Count int                  `json:"count" yaml:"count"`
	Rows  []models.RejectedRow `json:"rows" yaml:"rows"`
}

// Generator renders reports in the configured format.
type Generator struct {
	log logging.Logger
}

// NewGenerator creates a report generator.
func NewGenerator(log logging.Logger) *Generator {
	if log == nil {
		log = logging.GetLogger()
	}
	return &Generator{log: log}
}

// Generate renders a report in the given format ("json" or "yaml").
func (g *Generator) Generate(report interface{}, format string) ([]byte, error) {
	switch format {
	case "json":
		return g.generateJSON(report)
	case "yaml":
		return g.generateYAML(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) generateJSON(report interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.log.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return data, nil
}

func (g *Generator) generateYAML(report interface{}) ([]byte, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		g.log.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return data, nil
}
