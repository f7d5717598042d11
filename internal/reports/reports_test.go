package reports

import (
	"testing"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/region"
)

func fp(v float64) *float64 { return &v }

func TestRollupByRegion(t *testing.T) {
	rows := []MetricRow{
		{State: "NY", Avg: fp(20000)},
		{State: "PA", Avg: fp(10000)},
		{State: "CA", Avg: fp(30000)},
		{State: "TX", Avg: fp(8000)},
		{State: "PR", Avg: fp(5000)}, // territory, dropped
		{State: "OH", Avg: nil},      // no data, dropped
	}

	out := RollupByRegion(rows)
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}

	byRegion := make(map[region.Region]*float64)
	for _, r := range out {
		byRegion[r.Region] = r.Avg
	}

	if got := byRegion[region.Northeast]; got == nil || *got != 15000 {
		t.Errorf("Northeast = %v, want 15000", got)
	}
	if got := byRegion[region.West]; got == nil || *got != 30000 {
		t.Errorf("West = %v, want 30000", got)
	}
	if got := byRegion[region.South]; got == nil || *got != 8000 {
		t.Errorf("South = %v, want 8000", got)
	}
	// The only Midwest row carried no value.
	if got := byRegion[region.Midwest]; got != nil {
		t.Errorf("Midwest = %v, want nil", *got)
	}
}

func TestRollupByRegion_Empty(t *testing.T) {
	out := RollupByRegion(nil)
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	for _, r := range out {
		if r.Avg != nil {
			t.Errorf("%s = %v, want nil", r.Region, *r.Avg)
		}
	}
}

func TestRollupByRegion_AveragesStatesNotInstitutions(t *testing.T) {
	// The rollup is a mean of state means, so a state with many
	// institutions counts once.
	rows := []MetricRow{
		{State: "CA", Avg: fp(100)},
		{State: "WA", Avg: fp(300)},
	}
	out := RollupByRegion(rows)
	for _, r := range out {
		if r.Region == region.West {
			if r.Avg == nil || *r.Avg != 200 {
				t.Errorf("West = %v, want 200", r.Avg)
			}
		}
	}
}

func TestNew_PanicsOnNilPool(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic with nil pool")
		}
	}()
	New(nil)
}
