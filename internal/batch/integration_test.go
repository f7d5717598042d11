package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/batch"
	"github.com/raoabdulhannan/College-Data-Pipeline/internal/dataset"
	"github.com/raoabdulhannan/College-Data-Pipeline/internal/db"
	"github.com/raoabdulhannan/College-Data-Pipeline/internal/loader"
	"github.com/raoabdulhannan/College-Data-Pipeline/internal/logging"
	testhelper "github.com/raoabdulhannan/College-Data-Pipeline/internal/testing"
	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

const ipedsHeader = "UNITID,INSTNM,ADDR,CITY,STABBR,ZIP,LATITUDE,LONGITUD,CONTROL,OBEREG,CCBASIC,CBSA,CSA,COUNTYCD,OPEID"

const scorecardHeader = "UNITID,ACCREDAGENCY,PREDDEG,HIGHDEG,ADM_RATE,C150_4,C200_4,AVGFACSAL," +
	"OPEID,TUITIONFEE_IN,TUITIONFEE_OUT,TUITIONFEE_PROG,NPT4_PUB,PCTPELL,DEBT_MDN,RPY_3YR_RT,CDR2,CDR3,MD_EARN_WNE_P8"

func writeCSV(t *testing.T, name, header string, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	content := header + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func ipedsRow(unitid, name, state, opeid string) string {
	return strings.Join([]string{
		unitid, name, "123 Main St", "Springfield", state, "12345",
		"34.78", "-86.57", "1", "5", "15", "26620", "290", "1089", opeid,
	}, ",")
}

func scorecardRow(unitid, opeid, tuitionIn string) string {
	return strings.Join([]string{
		unitid, "SACSCOC", "3", "4", "0.71", "0.29", "0.33", "7017",
		opeid, tuitionIn, "17496", "", "15529", "0.7115", "15000", "0.25", "0.1", "0.12", "35000",
	}, ",")
}

// loadDataset clears prior rows and loads every table of the dataset,
// returning the per-table summaries.
func loadDataset(t *testing.T, ctx context.Context, mgr *batch.Manager, ds *dataset.Dataset, path string) []*collegedata.LoadSummary {
	t.Helper()

	if err := mgr.Clear(ctx, ds); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	var summaries []*collegedata.LoadSummary
	for i := range ds.Tables {
		table := &ds.Tables[i]
		rows, err := loader.Open(path, table, ds.Year)
		if err != nil {
			t.Fatalf("Open %s: %v", table.Name, err)
		}
		summary, err := mgr.LoadTable(ctx, table, rows, nil)
		rows.Close()
		if err != nil {
			t.Fatalf("LoadTable %s: %v", table.Name, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func countRows(t *testing.T, ctx context.Context, pool *pgxpool.Pool, table string) int64 {
	t.Helper()
	var n int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func newManager(pool *pgxpool.Pool, opts batch.Options) *batch.Manager {
	return batch.New(db.NewPoolAdapter(pool), logging.NewNullLogger(), opts)
}

func TestIntegration_FullPipeline(t *testing.T) {
	pool := testhelper.RequireMigratedPool(t)
	ctx := context.Background()

	ipedsPath := writeCSV(t, "hd2022.csv", ipedsHeader,
		ipedsRow("100654", "Alabama A&M University", "AL", "00100200"),
		ipedsRow("100663", "University of Alabama at Birmingham", "AL", "00105200"),
		ipedsRow("110635", "University of California-Berkeley", "CA", "00131200"),
	)
	ipedsDS, err := dataset.Detect(ipedsPath)
	if err != nil {
		t.Fatal(err)
	}

	mgr := newManager(pool, batch.Options{BatchSize: 2})
	summaries := loadDataset(t, ctx, mgr, ipedsDS, ipedsPath)
	for _, s := range summaries {
		if s.Failed() {
			t.Fatalf("%s load failed: %v", s.Table, s.Violations)
		}
	}

	if n := countRows(t, ctx, pool, "institutions"); n != 3 {
		t.Errorf("institutions = %d, want 3", n)
	}
	if n := countRows(t, ctx, pool, "crosswalks"); n != 3 {
		t.Errorf("crosswalks = %d, want 3", n)
	}

	scorecardPath := writeCSV(t, "MERGED2021_22_PP.csv", scorecardHeader,
		scorecardRow("100654", "00100200", "9744"),
		scorecardRow("100663", "00105200", "8568"),
		scorecardRow("110635", "00131200", "14226"),
	)
	scorecardDS, err := dataset.Detect(scorecardPath)
	if err != nil {
		t.Fatal(err)
	}

	summaries = loadDataset(t, ctx, mgr, scorecardDS, scorecardPath)
	for _, s := range summaries {
		if s.Failed() {
			t.Fatalf("%s load failed: %v", s.Table, s.Violations)
		}
	}

	if n := countRows(t, ctx, pool, "college_scorecard_annual"); n != 3 {
		t.Errorf("college_scorecard_annual = %d, want 3", n)
	}
	if n := countRows(t, ctx, pool, "financial_data"); n != 3 {
		t.Errorf("financial_data = %d, want 3", n)
	}

	var tuition float64
	err = pool.QueryRow(ctx,
		"SELECT tuitionfee_in FROM financial_data WHERE unitid = 100654 AND year = 2022").Scan(&tuition)
	if err != nil {
		t.Fatalf("query tuition: %v", err)
	}
	if tuition != 9744 {
		t.Errorf("tuitionfee_in = %v, want 9744", tuition)
	}
}

func TestIntegration_RerunReplacesData(t *testing.T) {
	pool := testhelper.RequireMigratedPool(t)
	ctx := context.Background()

	path := writeCSV(t, "hd2022.csv", ipedsHeader,
		ipedsRow("200654", "First College", "NY", "00200300"),
		ipedsRow("200663", "Second College", "NY", "00205300"),
	)
	ds, err := dataset.Detect(path)
	if err != nil {
		t.Fatal(err)
	}

	mgr := newManager(pool, batch.Options{})
	loadDataset(t, ctx, mgr, ds, path)
	loadDataset(t, ctx, mgr, ds, path)

	// A second run replaces rather than duplicates.
	if n := countRows(t, ctx, pool, "institutions"); n != 2 {
		t.Errorf("institutions after rerun = %d, want 2", n)
	}
	if n := countRows(t, ctx, pool, "crosswalks"); n != 2 {
		t.Errorf("crosswalks after rerun = %d, want 2", n)
	}
}

func TestIntegration_ForeignKeyViolationRollsBackBatch(t *testing.T) {
	pool := testhelper.RequireMigratedPool(t)
	ctx := context.Background()

	ipedsPath := writeCSV(t, "hd2022.csv", ipedsHeader,
		ipedsRow("300654", "Known College", "TX", "00300400"),
	)
	ipedsDS, _ := dataset.Detect(ipedsPath)
	mgr := newManager(pool, batch.Options{})
	loadDataset(t, ctx, mgr, ipedsDS, ipedsPath)

	// 999999 is not in institutions; its batch must roll back whole.
	scorecardPath := writeCSV(t, "MERGED2021_22_PP.csv", scorecardHeader,
		scorecardRow("300654", "00300400", "9744"),
		scorecardRow("999999", "00999900", "8000"),
	)
	scorecardDS, _ := dataset.Detect(scorecardPath)

	contMgr := newManager(pool, batch.Options{BatchSize: 2, OnViolation: collegedata.ViolationContinue})
	summaries := loadDataset(t, ctx, contMgr, scorecardDS, scorecardPath)

	annual := summaries[0]
	if !annual.Failed() {
		t.Fatal("expected a foreign key violation")
	}
	v := annual.Violations[0]
	if v.Kind != collegedata.ConstraintForeignKey {
		t.Errorf("Kind = %v, want foreign key", v.Kind)
	}
	// Header is line 1; the offending record is the second data row.
	if v.Line != 3 {
		t.Errorf("Line = %d, want 3", v.Line)
	}
	if v.BatchFirst != 2 || v.BatchLast != 3 {
		t.Errorf("batch span = %d-%d, want 2-3", v.BatchFirst, v.BatchLast)
	}

	// Both rows shared the batch, so neither landed.
	if n := countRows(t, ctx, pool, "college_scorecard_annual"); n != 0 {
		t.Errorf("college_scorecard_annual = %d, want 0 (batch rolled back)", n)
	}
}

func TestIntegration_NegativeTuitionRejectedByCheck(t *testing.T) {
	pool := testhelper.RequireMigratedPool(t)
	ctx := context.Background()

	ipedsPath := writeCSV(t, "hd2022.csv", ipedsHeader,
		ipedsRow("400654", "Check College", "WA", "00400500"),
		ipedsRow("400663", "Other College", "WA", "00405500"),
	)
	ipedsDS, _ := dataset.Detect(ipedsPath)
	mgr := newManager(pool, batch.Options{})
	loadDataset(t, ctx, mgr, ipedsDS, ipedsPath)

	// The negative amount reaches the database unclamped and the check
	// constraint rejects it there.
	scorecardPath := writeCSV(t, "MERGED2021_22_PP.csv", scorecardHeader,
		scorecardRow("400654", "00400500", "-500"),
		scorecardRow("400663", "00405500", "9000"),
	)
	scorecardDS, _ := dataset.Detect(scorecardPath)

	contMgr := newManager(pool, batch.Options{BatchSize: 1, OnViolation: collegedata.ViolationContinue})
	summaries := loadDataset(t, ctx, contMgr, scorecardDS, scorecardPath)

	financial := summaries[1]
	if !financial.Failed() {
		t.Fatal("expected a check violation")
	}
	v := financial.Violations[0]
	if v.Kind != collegedata.ConstraintCheck {
		t.Errorf("Kind = %v, want check", v.Kind)
	}
	if v.Column != "tuitionfee_in" {
		t.Errorf("Column = %q, want tuitionfee_in", v.Column)
	}
	if v.Value != "-500" {
		t.Errorf("Value = %q, want -500", v.Value)
	}
	if !strings.Contains(v.Constraint, "tuitionfee_in") {
		t.Errorf("Constraint = %q, want the named check constraint", v.Constraint)
	}

	// With batch size 1 and continue policy, the clean row still loads.
	if financial.RowsCommitted != 1 {
		t.Errorf("RowsCommitted = %d, want 1", financial.RowsCommitted)
	}
	var n int64
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM financial_data WHERE unitid = 400663 AND year = 2022").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("clean row count = %d, want 1", n)
	}
}

func TestIntegration_HaltStopsRemainingTables(t *testing.T) {
	pool := testhelper.RequireMigratedPool(t)
	ctx := context.Background()

	ipedsPath := writeCSV(t, "hd2022.csv", ipedsHeader,
		ipedsRow("500654", "Halt College", "OR", "00500600"),
	)
	ipedsDS, _ := dataset.Detect(ipedsPath)
	mgr := newManager(pool, batch.Options{})
	loadDataset(t, ctx, mgr, ipedsDS, ipedsPath)

	scorecardPath := writeCSV(t, "MERGED2021_22_PP.csv", scorecardHeader,
		scorecardRow("888888", "00888800", "9000"),
	)
	scorecardDS, _ := dataset.Detect(scorecardPath)

	haltMgr := newManager(pool, batch.Options{OnViolation: collegedata.ViolationHalt})
	if err := haltMgr.Clear(ctx, scorecardDS); err != nil {
		t.Fatal(err)
	}

	table := &scorecardDS.Tables[0]
	rows, err := loader.Open(scorecardPath, table, scorecardDS.Year)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	summary, err := haltMgr.LoadTable(ctx, table, rows, nil)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if !summary.Failed() {
		t.Fatal("expected failure on unknown institution")
	}
	if summary.RowsCommitted != 0 {
		t.Errorf("RowsCommitted = %d, want 0", summary.RowsCommitted)
	}
}
