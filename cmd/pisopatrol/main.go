// Package main provides the entry point for the pisopatrol CLI dashboard.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"time"

	"pisopatrol/dashboard/internal/aggregate"
	"pisopatrol/dashboard/internal/classify"
	"pisopatrol/dashboard/internal/cleaner"
	"pisopatrol/dashboard/internal/config"
	"pisopatrol/dashboard/internal/currencyutils"
	"pisopatrol/dashboard/internal/dasherror"
	"pisopatrol/dashboard/internal/dateutils"
	"pisopatrol/dashboard/internal/editor"
	"pisopatrol/dashboard/internal/loader"
	"pisopatrol/dashboard/internal/logging"
	"pisopatrol/dashboard/internal/models"
	"pisopatrol/dashboard/internal/projection"
	"pisopatrol/dashboard/internal/report"
	"pisopatrol/dashboard/internal/schemamap"
	"pisopatrol/dashboard/internal/session"
	"pisopatrol/dashboard/internal/store"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log logging.Logger

	// load flags
	csvFile   string
	sheetURL  string
	sheetName string
	useSample bool

	mapDate        string
	mapAmount      string
	mapCategory    string
	mapSubcategory string
	mapType        string
	mapAccount     string

	// filter flags (shared by summary, insights, stash, edit)
	rangeOption   string
	fromDate      string
	toDate        string
	accounts      []string
	categories    []string
	subcategories []string

	// summary flags
	withSeries bool
	withHabits bool

	// insights flags
	insightMonth string
	insightClass string
	insightGroup string
	insightBasis string
	trailingN    int

	// stash flags
	stashSet    string
	stashGoal   string
	stashGlyph  string
	stashRemove string

	// edit flags
	editsFile string

	// output
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "pisopatrol",
	Short: "A personal-finance dashboard over CSV and spreadsheet transaction data.",
	Long: `pisopatrol ingests tabular transaction data, maps it onto a canonical
schema, classifies transactions as Income, Expense or Stash, and reports
totals, trends, breakdowns and savings-goal projections.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to pisopatrol!")
		fmt.Println("Use --help to see available commands")
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Ingest transaction data from a CSV file, public spreadsheet, or sample data",
	Long: `Load raw tabular data, resolve its columns onto the canonical schema
(automatically by header match, or via the --map-* flags), clean and type
every row, and persist the resulting canonical table. Rows with unparsable
dates or amounts are excluded and listed for review.`,
	RunE: loadFunc,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show period totals, breakdowns and the cumulative series",
	RunE:  summaryFunc,
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Compare a month's per-group totals against a basis month",
	RunE:  insightsFunc,
}

var stashCmd = &cobra.Command{
	Use:   "stashes",
	Short: "Manage savings goals and show progress projections",
	Long: `Without flags, prints one card per defined goal: all-time progress,
forecast completion date, and the contribution metrics for the filtered
period. Use --set/--goal/--glyph to define or update a goal, or --remove to
delete one; changing goals retroactively reclassifies matching Expense rows.`,
	RunE: stashFunc,
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Apply row edits from a CSV file back into the canonical table",
	Long: `Read an edited view (as produced by 'summary --format json' consumers or
hand-written) and merge it: rows with a known ID are overwritten, rows with
an empty ID are appended, and rows in the filtered view missing from the
file are deleted. Rows outside the filter are never touched.`,
	RunE: editFunc,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the canonical table and all stash goal definitions",
	RunE:  clearFunc,
}

func init() {
	loadCmd.Flags().StringVarP(&csvFile, "file", "f", "", "Path to a delimited file with a header row")
	loadCmd.Flags().StringVar(&sheetURL, "sheet-url", "", "Public spreadsheet share URL")
	loadCmd.Flags().StringVar(&sheetName, "sheet-name", "", "Exact sheet name within the spreadsheet")
	loadCmd.Flags().BoolVar(&useSample, "sample", false, "Load the bundled sample dataset")
	loadCmd.Flags().StringVar(&mapDate, "map-date", "", "Raw column for the Date field")
	loadCmd.Flags().StringVar(&mapAmount, "map-amount", "", "Raw column for the Amount field")
	loadCmd.Flags().StringVar(&mapCategory, "map-category", "", "Raw column for the Category field")
	loadCmd.Flags().StringVar(&mapSubcategory, "map-subcategory", "", "Raw column for the Subcategory field")
	loadCmd.Flags().StringVar(&mapType, "map-type", "", "Raw column for the Type field")
	loadCmd.Flags().StringVar(&mapAccount, "map-account", "", "Raw column for the Account field")

	for _, cmd := range []*cobra.Command{summaryCmd, insightsCmd, stashCmd, editCmd} {
		cmd.Flags().StringVar(&rangeOption, "range", string(session.RangeAllTime), "Date range preset (all-time, this-week, this-month, last-30-days, this-quarter, year-to-date, custom)")
		cmd.Flags().StringVar(&fromDate, "from", "", "Custom range start (YYYY-MM-DD)")
		cmd.Flags().StringVar(&toDate, "to", "", "Custom range end (YYYY-MM-DD)")
		cmd.Flags().StringSliceVar(&accounts, "account", nil, "Restrict to these accounts")
		cmd.Flags().StringSliceVar(&categories, "category", nil, "Restrict to these categories")
		cmd.Flags().StringSliceVar(&subcategories, "subcategory", nil, "Restrict to these subcategories")
	}

	summaryCmd.Flags().BoolVar(&withSeries, "series", false, "Include the daily cumulative series in the report")
	summaryCmd.Flags().BoolVar(&withHabits, "habits", false, "Include per-subcategory habit stats and the weekday trend")

	insightsCmd.Flags().StringVar(&insightMonth, "month", "", "Month to analyze (YYYY-MM), defaults to the latest month with data")
	insightsCmd.Flags().StringVar(&insightClass, "class", "expense", "Class to analyze (expense or income)")
	insightsCmd.Flags().StringVar(&insightGroup, "group", "category", "Grouping key (category or subcategory)")
	insightsCmd.Flags().StringVar(&insightBasis, "basis", "previous", "Comparison basis (previous, first-of-year, trailing)")
	insightsCmd.Flags().IntVar(&trailingN, "trailing", 3, "Window size for the trailing basis")

	stashCmd.Flags().StringVar(&stashSet, "set", "", "Define or update a goal for this subcategory")
	stashCmd.Flags().StringVar(&stashGoal, "goal", "0", "Goal amount for --set")
	stashCmd.Flags().StringVar(&stashGlyph, "glyph", "🏦", "Display glyph for --set")
	stashCmd.Flags().StringVar(&stashRemove, "remove", "", "Remove the goal for this subcategory")

	editCmd.Flags().StringVarP(&editsFile, "file", "f", "", "CSV file with the edited view")

	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Report format (json or yaml), defaults to the configured format")

	rootCmd.AddCommand(loadCmd, summaryCmd, insightsCmd, stashCmd, editCmd, clearCmd)
}

func main() {
	var err error
	cfg, err = config.InitializeConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	logging.SetLogger(log)
	config.LoadEnv(log)

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func loadFunc(cmd *cobra.Command, args []string) error {
	l := loader.New(cfg.Delimiter(), log)

	var (
		table *loader.RawTable
		err   error
	)
	switch {
	case useSample:
		table, err = l.LoadSample()
	case sheetURL != "":
		if sheetName == "" {
			return fmt.Errorf("--sheet-name is required with --sheet-url")
		}
		timeout := time.Duration(cfg.Sheet.TimeoutSeconds) * time.Second
		table, err = l.FetchSheet(context.Background(), sheetURL, sheetName, timeout)
	case csvFile != "":
		table, err = l.LoadCSVFile(csvFile)
	default:
		return fmt.Errorf("one of --file, --sheet-url or --sample is required")
	}
	if err != nil {
		// Ingestion failures leave the previous canonical table unchanged.
		return err
	}

	mapping, err := resolveMapping(table)
	if err != nil {
		return err
	}

	sess := session.New(log)
	st := store.New(cfg.Data.Directory, cfg.Delimiter(), log)
	sess.Ingest(cleaner.Clean(table, mapping, log))
	if !sess.HasData() {
		return fmt.Errorf("no valid rows found: all %d rows were rejected", len(sess.Rejected))
	}

	if err := st.SaveTransactions(sess.Transactions); err != nil {
		return err
	}

	fmt.Printf("Loaded %d transactions (%d rejected)\n", len(sess.Transactions), len(sess.Rejected))
	if len(sess.Rejected) > 0 {
		return printReport(&report.RejectedReport{Count: len(sess.Rejected), Rows: sess.Rejected})
	}
	return nil
}

// resolveMapping tries automatic exact-header mapping first; when that
// fails it falls back to manual mode, seeded with best-guess suggestions
// and overridden by any --map-* flags.
func resolveMapping(table *loader.RawTable) (schemamap.Mapping, error) {
	mapping, err := schemamap.AutoMap(table.Headers)
	if err == nil {
		log.Info("Automatically mapped standard columns")
		return mapping, nil
	}

	var mapErr *dasherror.MappingError
	if !useManualFlags() {
		if errors.As(err, &mapErr) {
			return schemamap.Mapping{}, fmt.Errorf(
				"%w; supply --map-date/--map-amount/--map-category (suggested: %+v)",
				err, schemamap.Suggest(table.Headers))
		}
		return schemamap.Mapping{}, err
	}

	mapping = schemamap.Suggest(table.Headers)
	if mapDate != "" {
		mapping.Date = mapDate
	}
	if mapAmount != "" {
		mapping.Amount = mapAmount
	}
	if mapCategory != "" {
		mapping.Category = mapCategory
	}
	if mapSubcategory != "" {
		mapping.Subcategory = mapSubcategory
	}
	if mapType != "" {
		mapping.Type = mapType
	}
	if mapAccount != "" {
		mapping.Account = mapAccount
	}

	if !mapping.Complete() {
		return schemamap.Mapping{}, fmt.Errorf("manual mapping incomplete: date, amount and category columns are required")
	}
	return mapping.Normalize(), nil
}

func useManualFlags() bool {
	return mapDate != "" || mapAmount != "" || mapCategory != "" ||
		mapSubcategory != "" || mapType != "" || mapAccount != ""
}

func summaryFunc(cmd *cobra.Command, args []string) error {
	sess, err := loadSession()
	if err != nil {
		return err
	}

	filter, err := buildFilter(sess)
	if err != nil {
		return err
	}
	subset := sess.Filtered(filter)

	p := classify.Split(subset, sess.Goals)
	rep := &report.SummaryReport{
		Totals:           aggregate.ComputeTotals(subset, sess.Goals),
		ExpenseBreakdown: aggregate.Breakdown(p.Expense, aggregate.ByCategory),
		IncomeBreakdown:  aggregate.Breakdown(p.Income, aggregate.ByCategory),
		StashBreakdown:   aggregate.Breakdown(p.Stash, aggregate.BySubcategory),
	}
	if filter.From != nil {
		rep.From = dateutils.ToISODate(*filter.From)
	}
	if filter.To != nil {
		rep.To = dateutils.ToISODate(*filter.To)
	}
	if filter.From != nil && filter.To != nil {
		kpis := aggregate.ComputePeriodKPIs(p.Expense, *filter.From, *filter.To)
		rep.ExpenseKPIs = &kpis
	}
	if withSeries {
		rep.Series = aggregate.CumulativeSeries(subset, sess.Goals)
	}
	if withHabits {
		rep.Habits = aggregate.Habits(p.Expense, aggregate.BySubcategory)
		rep.WeekdayTrend = aggregate.Trend(p.Expense, aggregate.TrendByWeekday, aggregate.ByCategory)
	}

	fmt.Printf("Net savings: %s\n", currencyutils.FormatAmount(rep.Totals.NetSavings, cfg.Currency.Glyph))
	return printReport(rep)
}

func insightsFunc(cmd *cobra.Command, args []string) error {
	sess, err := loadSession()
	if err != nil {
		return err
	}

	filter, err := buildFilter(sess)
	if err != nil {
		return err
	}
	subset := sess.Filtered(filter)
	p := classify.Split(subset, sess.Goals)

	var class []models.Transaction
	switch insightClass {
	case "income":
		class = p.Income
	case "expense":
		class = p.Expense
	default:
		return fmt.Errorf("unsupported insight class: %s", insightClass)
	}

	month, err := resolveMonth(class)
	if err != nil {
		return err
	}

	basis, err := parseBasis(insightBasis)
	if err != nil {
		return err
	}

	groupBy := parseGroupBy(insightGroup)
	rep := &report.InsightReport{
		Month:   month.String(),
		Class:   insightClass,
		GroupBy: insightGroup,
		Rows:    aggregate.MonthInsights(class, month, basis, trailingN, groupBy),
	}
	for _, row := range rep.Rows {
		rep.YTDAverages = append(rep.YTDAverages, aggregate.GroupTotal{
			Group:  row.Group,
			Amount: aggregate.YTDMonthlyAverage(class, groupBy, row.Group, month),
		})
	}
	return printReport(rep)
}

func stashFunc(cmd *cobra.Command, args []string) error {
	sess, err := loadSession()
	if err != nil {
		return err
	}
	st := store.New(cfg.Data.Directory, cfg.Delimiter(), log)

	if stashSet != "" {
		goal, err := decimal.NewFromString(stashGoal)
		if err != nil || goal.IsNegative() {
			return fmt.Errorf("invalid goal amount: %s", stashGoal)
		}
		sess.SetGoal(stashSet, goal, stashGlyph)
		if err := st.SaveGoals(sess.Goals); err != nil {
			return err
		}
		fmt.Printf("Saved goal for %q: %s\n", stashSet, currencyutils.FormatAmount(goal, cfg.Currency.Glyph))
	}

	if stashRemove != "" {
		sess.RemoveGoal(stashRemove)
		if err := st.SaveGoals(sess.Goals); err != nil {
			return err
		}
		fmt.Printf("Removed goal for %q\n", stashRemove)
	}

	if len(sess.Goals) == 0 {
		fmt.Println("No stash goals defined. Candidates:", sess.StashCandidates())
		return nil
	}

	filter, err := buildFilter(sess)
	if err != nil {
		return err
	}

	allTime := classify.StashOnly(sess.Transactions, sess.Goals)
	period := classify.StashOnly(sess.Filtered(filter), sess.Goals)
	rep := &report.StashReport{Goals: projection.BuildProgress(allTime, period, sess.Goals)}
	return printReport(rep)
}

func editFunc(cmd *cobra.Command, args []string) error {
	if editsFile == "" {
		return fmt.Errorf("--file is required")
	}

	sess, err := loadSession()
	if err != nil {
		return err
	}

	file, err := os.Open(editsFile)
	if err != nil {
		return fmt.Errorf("error opening edits file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = cfg.Delimiter()
	var edits []editor.RowEdit
	if err := gocsv.UnmarshalCSV(reader, &edits); err != nil {
		return fmt.Errorf("error parsing edits file: %w", err)
	}

	filter, err := buildFilter(sess)
	if err != nil {
		return err
	}

	before := len(sess.Transactions)
	result := sess.ApplyEdits(filter, edits)
	if err := editor.Validate(before, &result); err != nil {
		return err
	}

	st := store.New(cfg.Data.Directory, cfg.Delimiter(), log)
	if err := st.SaveTransactions(sess.Transactions); err != nil {
		return err
	}

	fmt.Printf("Applied edits: %d updated, %d added, %d deleted\n", result.Updated, result.Added, result.Deleted)
	if len(result.Invalid) > 0 {
		fmt.Printf("%d edit(s) failed validation and were not applied:\n", len(result.Invalid))
		return printReport(&report.RejectedReport{Count: len(result.Invalid), Rows: result.Invalid})
	}
	return nil
}

func clearFunc(cmd *cobra.Command, args []string) error {
	st := store.New(cfg.Data.Directory, cfg.Delimiter(), log)
	if err := st.Clear(); err != nil {
		return err
	}
	fmt.Println("Cleared all data and stash goals")
	return nil
}

func loadSession() (*session.Session, error) {
	st := store.New(cfg.Data.Directory, cfg.Delimiter(), log)

	txs, err := st.LoadTransactions()
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("no data loaded yet; run 'pisopatrol load' first")
	}

	goals, err := st.LoadGoals()
	if err != nil {
		return nil, err
	}

	sess := session.New(log)
	sess.Transactions = txs
	sess.Goals = goals
	return sess, nil
}

func buildFilter(sess *session.Session) (*session.Filter, error) {
	filter := &session.Filter{
		Accounts:      accounts,
		Categories:    categories,
		Subcategories: subcategories,
	}

	if session.RangeOption(rangeOption) == session.RangeCustom || fromDate != "" || toDate != "" {
		if fromDate != "" {
			from, err := dateutils.ParseDateString(fromDate)
			if err != nil {
				return nil, err
			}
			filter.From = &from
		}
		if toDate != "" {
			to, err := dateutils.ParseDateString(toDate)
			if err != nil {
				return nil, err
			}
			filter.To = &to
		}
		return filter, nil
	}

	dataMin, dataMax, ok := sess.DateBounds()
	if !ok {
		return filter, nil
	}
	from, to, err := session.Resolve(session.RangeOption(rangeOption), time.Now(), dataMin, dataMax)
	if err != nil {
		return nil, err
	}
	filter.From = &from
	filter.To = &to
	return filter, nil
}

func resolveMonth(txs []models.Transaction) (models.Month, error) {
	if insightMonth != "" {
		t, err := time.Parse("2006-01", insightMonth)
		if err != nil {
			return models.Month{}, fmt.Errorf("invalid month %q, expected YYYY-MM", insightMonth)
		}
		return models.MonthOf(t), nil
	}

	if len(txs) == 0 {
		return models.Month{}, fmt.Errorf("no transactions to analyze")
	}
	latest := txs[0].Month()
	for i := range txs {
		if latest.Before(txs[i].Month()) {
			latest = txs[i].Month()
		}
	}
	return latest, nil
}

func parseGroupBy(s string) aggregate.GroupBy {
	if s == "subcategory" {
		return aggregate.BySubcategory
	}
	return aggregate.ByCategory
}

func parseBasis(s string) (aggregate.ComparisonBasis, error) {
	switch s {
	case "previous":
		return aggregate.BasisPreviousMonth, nil
	case "first-of-year":
		return aggregate.BasisFirstMonthOfYear, nil
	case "trailing":
		return aggregate.BasisTrailingAverage, nil
	}
	return 0, fmt.Errorf("unsupported comparison basis: %s", s)
}

func printReport(rep interface{}) error {
	format := outputFormat
	if format == "" {
		format = cfg.Report.Format
	}

	data, err := report.NewGenerator(log).Generate(rep, format)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
