package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/logging"
	"github.com/raoabdulhannan/College-Data-Pipeline/internal/reports"
	"github.com/raoabdulhannan/College-Data-Pipeline/internal/tui"
	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize loaded data by state or Census region",
	Long: `Report runs aggregate queries over the loaded tables: average tuition,
share of Pell Grant recipients, and 3-year cohort default rates, grouped
by state or rolled up into the four US Census regions. It also prints a
coverage summary of loaded row counts for the year.

Examples:
  collegeload report -d college_data --year 2022
  collegeload report -d college_data --year 2022 --by-region
  collegeload report -d college_data --year 2022 --states CA,NY,TX`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

type reportFlagValues struct {
	conn     connFlagValues
	year     int
	byRegion bool
	states   []string
}

var reportFlags reportFlagValues

func init() {
	rootCmd.AddCommand(reportCmd)
	registerConnFlags(reportCmd, &reportFlags.conn)

	reportCmd.Flags().IntVar(&reportFlags.year, "year", 0, "Scorecard year to report on (required)")
	reportCmd.Flags().BoolVar(&reportFlags.byRegion, "by-region", false, "Roll state averages up into US Census regions")
	reportCmd.Flags().StringSliceVar(&reportFlags.states, "states", nil, "Restrict to these state codes (comma-separated)")
	_ = reportCmd.MarkFlagRequired("year")
}

func runReport(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	_ = godotenv.Load()

	if reportFlags.year <= 0 {
		return fmt.Errorf("--year must be a positive year: %w", collegedata.ErrInvalidConfig)
	}

	projectConfig, err := loadProjectConfig()
	if err != nil {
		return err
	}

	connCfg, err := resolveConnection(&reportFlags.conn, projectConfig)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, cleanup, err := openPool(ctx, connCfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	reporter := reports.New(pool)
	year := reportFlags.year
	states := reportFlags.states

	coverage, err := reporter.LoadedCoverage(ctx, year)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, heading(fmt.Sprintf("Coverage for %d", year)))
	fmt.Fprintf(w, "  institutions\t%d\n", coverage.Institutions)
	fmt.Fprintf(w, "  crosswalks\t%d\n", coverage.Crosswalks)
	fmt.Fprintf(w, "  college_scorecard_annual\t%d\n", coverage.ScorecardRows)
	fmt.Fprintf(w, "  financial_data\t%d\n\n", coverage.FinancialRows)

	tuition, err := reporter.TuitionByState(ctx, year, states)
	if err != nil {
		return err
	}
	pell, err := reporter.PellByState(ctx, year, states)
	if err != nil {
		return err
	}
	cdr3, err := reporter.CDR3ByState(ctx, year, states)
	if err != nil {
		return err
	}

	if reportFlags.byRegion {
		printRegionReport(w, tuition, pell, cdr3)
		return nil
	}

	fmt.Fprintln(w, heading("By state"))
	fmt.Fprintln(w, "State\tAvg in-state\tAvg out-of-state\tPell share\tCDR3")
	pellByState := metricIndex(pell)
	cdr3ByState := metricIndex(cdr3)
	for _, row := range tuition {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.State,
			money(row.AvgInTuition),
			money(row.AvgOutTuition),
			rate(pellByState[row.State]),
			rate(cdr3ByState[row.State]),
		)
	}
	return nil
}

func printRegionReport(w *tabwriter.Writer, tuition []reports.TuitionRow, pell, cdr3 []reports.MetricRow) {
	inState := make([]reports.MetricRow, 0, len(tuition))
	outState := make([]reports.MetricRow, 0, len(tuition))
	for _, row := range tuition {
		inState = append(inState, reports.MetricRow{State: row.State, Avg: row.AvgInTuition})
		outState = append(outState, reports.MetricRow{State: row.State, Avg: row.AvgOutTuition})
	}

	inByRegion := reports.RollupByRegion(inState)
	outByRegion := reports.RollupByRegion(outState)
	pellByRegion := reports.RollupByRegion(pell)
	cdr3ByRegion := reports.RollupByRegion(cdr3)

	fmt.Fprintln(w, heading("By region"))
	fmt.Fprintln(w, "Region\tAvg in-state\tAvg out-of-state\tPell share\tCDR3")
	for i := range inByRegion {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			inByRegion[i].Region,
			money(inByRegion[i].Avg),
			money(outByRegion[i].Avg),
			rate(pellByRegion[i].Avg),
			rate(cdr3ByRegion[i].Avg),
		)
	}
}

// heading styles a section title when a human is watching. Styling stays
// out of tab-separated rows, where escape codes would skew column widths.
func heading(s string) string {
	if tui.IsInteractive() {
		return tui.TableStyle.Render(s)
	}
	return s
}

func metricIndex(rows []reports.MetricRow) map[string]*float64 {
	m := make(map[string]*float64, len(rows))
	for _, row := range rows {
		m[row.State] = row.Avg
	}
	return m
}

func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.0f", *v)
}

func rate(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}
