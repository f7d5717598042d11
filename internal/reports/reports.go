// Package reports runs the aggregate queries behind the report command:
// tuition, Pell share, and cohort default rates by state, with optional
// rollup into US Census regions.
package reports

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/region"
)

// Reporter runs read-only aggregate queries against the loaded schema.
type Reporter struct {
	pool *pgxpool.Pool
}

// New creates a Reporter. Panics if pool is nil.
func New(pool *pgxpool.Pool) *Reporter {
	if pool == nil {
		panic("pool cannot be nil")
	}
	return &Reporter{pool: pool}
}

// TuitionRow is the average in-state and out-of-state tuition for one state.
// Averages are nil when no institution in the state reported the figure.
type TuitionRow struct {
	State         string   `db:"state"`
	AvgInTuition  *float64 `db:"avg_in_state_tuition"`
	AvgOutTuition *float64 `db:"avg_out_state_tuition"`
}

// MetricRow is one state's average for a single metric (Pell share, CDR3).
type MetricRow struct {
	State string   `db:"state"`
	Avg   *float64 `db:"avg_value"`
}

// Coverage counts the loaded rows per table for one Scorecard year.
type Coverage struct {
	Institutions  int64 `db:"institutions"`
	Crosswalks    int64 `db:"crosswalks"`
	ScorecardRows int64 `db:"scorecard_rows"`
	FinancialRows int64 `db:"financial_rows"`
}

// States lists the distinct state codes present in the institution table.
func (r *Reporter) States(ctx context.Context) ([]string, error) {
	var states []string
	query := `SELECT DISTINCT UPPER(TRIM(stabbr)) AS state FROM institutions WHERE stabbr IS NOT NULL ORDER BY state`
	if err := pgxscan.Select(ctx, r.pool, &states, query); err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	return states, nil
}

// TuitionByState averages in-state and out-of-state tuition per state for
// the given year. An empty states slice means all states.
func (r *Reporter) TuitionByState(ctx context.Context, year int, states []string) ([]TuitionRow, error) {
	query := `
		SELECT UPPER(stabbr) AS state,
		       AVG(tuitionfee_in)  AS avg_in_state_tuition,
		       AVG(tuitionfee_out) AS avg_out_state_tuition
		FROM financial_data
		JOIN institutions ON financial_data.unitid = institutions.unitid
		WHERE year = $1 AND ($2::text[] IS NULL OR UPPER(stabbr) = ANY($2))
		GROUP BY UPPER(stabbr)
		ORDER BY state`

	var rows []TuitionRow
	if err := pgxscan.Select(ctx, r.pool, &rows, query, year, nilIfEmpty(states)); err != nil {
		return nil, fmt.Errorf("failed to query tuition averages: %w", err)
	}
	return rows, nil
}

// PellByState averages the share of Pell Grant recipients per state.
func (r *Reporter) PellByState(ctx context.Context, year int, states []string) ([]MetricRow, error) {
	return r.metricByState(ctx, "pctpell", year, states)
}

// CDR3ByState averages the 3-year cohort default rate per state.
func (r *Reporter) CDR3ByState(ctx context.Context, year int, states []string) ([]MetricRow, error) {
	return r.metricByState(ctx, "cdr3", year, states)
}

func (r *Reporter) metricByState(ctx context.Context, column string, year int, states []string) ([]MetricRow, error) {
	// column is one of a fixed set chosen by the exported wrappers,
	// never user input.
	query := fmt.Sprintf(`
		SELECT UPPER(stabbr) AS state,
		       AVG(%s) AS avg_value
		FROM financial_data
		JOIN institutions ON financial_data.unitid = institutions.unitid
		WHERE year = $1 AND ($2::text[] IS NULL OR UPPER(stabbr) = ANY($2))
		GROUP BY UPPER(stabbr)
		ORDER BY state`, column)

	var rows []MetricRow
	if err := pgxscan.Select(ctx, r.pool, &rows, query, year, nilIfEmpty(states)); err != nil {
		return nil, fmt.Errorf("failed to query %s averages: %w", column, err)
	}
	return rows, nil
}

// LoadedCoverage counts rows per table for the given Scorecard year.
func (r *Reporter) LoadedCoverage(ctx context.Context, year int) (*Coverage, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM institutions) AS institutions,
		       (SELECT COUNT(*) FROM crosswalks)   AS crosswalks,
		       (SELECT COUNT(*) FROM college_scorecard_annual WHERE year = $1) AS scorecard_rows,
		       (SELECT COUNT(*) FROM financial_data WHERE year = $1)           AS financial_rows`

	var c Coverage
	if err := pgxscan.Get(ctx, r.pool, &c, query, year); err != nil {
		return nil, fmt.Errorf("failed to query coverage: %w", err)
	}
	return &c, nil
}

// RegionAverage is one region's mean of its member states' averages.
type RegionAverage struct {
	Region region.Region
	Avg    *float64
}

// RollupByRegion averages the per-state averages within each Census region,
// matching how the state rows are grouped for regional views. States that
// map to no region are dropped.
func RollupByRegion(rows []MetricRow) []RegionAverage {
	sums := make(map[region.Region]float64)
	counts := make(map[region.Region]int)
	for _, row := range rows {
		if row.Avg == nil {
			continue
		}
		reg := region.FromState(row.State)
		if reg == region.Other {
			continue
		}
		sums[reg] += *row.Avg
		counts[reg]++
	}

	var out []RegionAverage
	for _, reg := range region.All() {
		if counts[reg] == 0 {
			out = append(out, RegionAverage{Region: reg})
			continue
		}
		avg := sums[reg] / float64(counts[reg])
		out = append(out, RegionAverage{Region: reg, Avg: &avg})
	}
	return out
}

// nilIfEmpty turns an empty state filter into SQL NULL so the query's
// ANY clause is skipped.
func nilIfEmpty(states []string) any {
	if len(states) == 0 {
		return nil
	}
	return states
}
