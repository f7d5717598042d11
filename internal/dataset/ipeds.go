package dataset

import "github.com/raoabdulhannan/College-Data-Pipeline/internal/coerce"

// ipeds maps an IPEDS institutional characteristics extract (hd<year>.csv)
// into the institutions and crosswalks tables. One source file feeds both:
// the crosswalk pairs each unit ID with its OPE ID for joining Scorecard
// financial rows later.
func ipeds(year int) *Dataset {
	return &Dataset{
		Name: "ipeds",
		Year: year,
		Tables: []Table{
			{
				Name: "institutions",
				Columns: []coerce.Column{
					{Source: "UNITID", Target: "unitid", Kind: coerce.KindInteger},
					{Source: "INSTNM", Target: "instnm", Kind: coerce.KindText},
					{Source: "ADDR", Target: "addr", Kind: coerce.KindText},
					{Source: "CITY", Target: "city", Kind: coerce.KindText},
					{Source: "STABBR", Target: "stabbr", Kind: coerce.KindCode},
					{Source: "ZIP", Target: "zip", Kind: coerce.KindCode},
					{Source: "LATITUDE", Target: "latitude", Kind: coerce.KindDecimal},
					{Source: "LONGITUD", Target: "longitude", Kind: coerce.KindDecimal},
					{Source: "CONTROL", Target: "control", Kind: coerce.KindInteger},
					{Source: "OBEREG", Target: "obereg", Kind: coerce.KindInteger},
					{Source: "CCBASIC", Target: "ccbasic", Kind: coerce.KindInteger},
					{Source: "CBSA", Target: "cbsa", Kind: coerce.KindInteger},
					{Source: "CSA", Target: "csa", Kind: coerce.KindInteger},
					{Source: "COUNTYCD", Target: "countycd", Kind: coerce.KindInteger},
				},
				DropIfNull: []string{"UNITID"},
			},
			{
				Name: "crosswalks",
				Columns: []coerce.Column{
					{Source: "UNITID", Target: "unitid", Kind: coerce.KindInteger},
					{Source: "OPEID", Target: "opeid", Kind: coerce.KindCode},
				},
				DropIfNull: []string{"UNITID", "OPEID"},
			},
		},
		// A new IPEDS file replaces the institution universe, so every
		// referencing table is cleared first to keep foreign keys intact.
		ClearSQL: []ClearStatement{
			{SQL: "DELETE FROM crosswalks"},
			{SQL: "DELETE FROM college_scorecard_annual"},
			{SQL: "DELETE FROM financial_data"},
			{SQL: "DELETE FROM institutions"},
		},
	}
}
