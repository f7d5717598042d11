package dataset

import "github.com/raoabdulhannan/College-Data-Pipeline/internal/coerce"

// scorecard maps a College Scorecard merged extract (MERGED<yyyy>_<yy>_PP.csv)
// into the college_scorecard_annual and financial_data tables. The extract
// carries one row per institution-program, so both tables deduplicate to
// their first occurrence per key.
func scorecard(year int) *Dataset {
	return &Dataset{
		Name: "scorecard",
		Year: year,
		Tables: []Table{
			{
				Name: "college_scorecard_annual",
				Columns: []coerce.Column{
					{Source: "UNITID", Target: "unitid", Kind: coerce.KindInteger},
					{Source: "ACCREDAGENCY", Target: "accredagency", Kind: coerce.KindText},
					{Source: "PREDDEG", Target: "preddeg", Kind: coerce.KindInteger},
					{Source: "HIGHDEG", Target: "highdeg", Kind: coerce.KindInteger},
					{Source: "ADM_RATE", Target: "adm_rate", Kind: coerce.KindDecimal},
					{Source: "C150_4", Target: "c150_4", Kind: coerce.KindDecimal},
					{Source: "C200_4", Target: "c200_4", Kind: coerce.KindDecimal},
					{Source: "AVGFACSAL", Target: "avgfacsal", Kind: coerce.KindCurrency, Sign: coerce.SignPositive},
				},
				YearColumn: true,
				DedupOn:    "UNITID",
				DropIfNull: []string{"UNITID"},
			},
			{
				Name: "financial_data",
				Columns: []coerce.Column{
					{Source: "UNITID", Target: "unitid", Kind: coerce.KindInteger},
					{Source: "OPEID", Target: "opeid", Kind: coerce.KindCode},
					{Source: "TUITIONFEE_IN", Target: "tuitionfee_in", Kind: coerce.KindCurrency, Sign: coerce.SignPositive},
					{Source: "TUITIONFEE_OUT", Target: "tuitionfee_out", Kind: coerce.KindCurrency, Sign: coerce.SignPositive},
					{Source: "TUITIONFEE_PROG", Target: "tuitionfee_prog", Kind: coerce.KindCurrency, Sign: coerce.SignPositive},
					{Source: "NPT4_PUB", Target: "npt4_pub", Kind: coerce.KindCurrency, Sign: coerce.SignNonNegative},
					{Source: "PCTPELL", Target: "pctpell", Kind: coerce.KindDecimal},
					{Source: "DEBT_MDN", Target: "debt_mdn", Kind: coerce.KindCurrency, Sign: coerce.SignNonNegative},
					{Source: "RPY_3YR_RT", Target: "rpy_3yr_rt", Kind: coerce.KindDecimal},
					{Source: "CDR2", Target: "cdr2", Kind: coerce.KindDecimal},
					{Source: "CDR3", Target: "cdr3", Kind: coerce.KindDecimal},
					{Source: "MD_EARN_WNE_P8", Target: "md_earn_wne_p8", Kind: coerce.KindCurrency, Sign: coerce.SignNonNegative},
				},
				YearColumn: true,
				DedupOn:    "UNITID",
				DropIfNull: []string{"UNITID", "OPEID"},
			},
		},
		// Scorecard data is versioned by academic year; only that year's
		// rows are replaced.
		ClearSQL: []ClearStatement{
			{SQL: "DELETE FROM college_scorecard_annual WHERE year = $1", NeedsYear: true},
			{SQL: "DELETE FROM financial_data WHERE year = $1", NeedsYear: true},
		},
	}
}
