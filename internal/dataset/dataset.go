// Package dataset declares how each source extract maps into the schema.
//
// A Dataset is pure data: table names, column-to-type mappings consulted
// by the coercion layer, dedup and drop rules, and the clear statements
// that make a re-run idempotent. Adding or renaming a column is an edit
// here, not a change to the loader or the batch manager.
package dataset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/coerce"
	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

// Table maps a subset of the source file's columns into one database table.
type Table struct {
	// Name is the target table.
	Name string

	// Columns lists the source-to-target mappings in insert order.
	Columns []coerce.Column

	// YearColumn appends the file's year as a trailing "year" column.
	YearColumn bool

	// DedupOn keeps only the first occurrence per value of this source
	// column (the source extracts repeat institutions per program row).
	// Empty means no deduplication.
	DedupOn string

	// DropIfNull drops a row silently when any of these source columns
	// coerces to null. Used for identity columns the schema cannot accept
	// as NULL (a dropped row is not an error, matching the source data's
	// documented gaps).
	DropIfNull []string
}

// Targets returns the database column names in insert order, including
// the trailing year column when present.
func (t *Table) Targets() []string {
	targets := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		targets = append(targets, c.Target)
	}
	if t.YearColumn {
		targets = append(targets, "year")
	}
	return targets
}

// InsertSQL builds the parameterized insert statement for this table.
func (t *Table) InsertSQL() string {
	targets := t.Targets()
	placeholders := make([]byte, 0, len(targets)*4)
	for i := range targets {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '$')
		placeholders = strconv.AppendInt(placeholders, int64(i+1), 10)
	}
	cols := ""
	for i, c := range targets {
		if i > 0 {
			cols += ", "
		}
		cols += c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name, cols, placeholders)
}

// ClearStatement is one pre-load delete that removes a prior run's rows.
type ClearStatement struct {
	SQL       string
	NeedsYear bool // bind the file's year as $1
}

// Dataset describes one source extract end to end.
type Dataset struct {
	// Name identifies the source ("ipeds" or "scorecard").
	Name string

	// Year extracted from the filename. For Scorecard files this is the
	// end of the academic year span (MERGED2018_19 loads as 2019).
	Year int

	// Tables are loaded in declaration order; referential dependencies
	// (institutions before crosswalks) are honored by that order.
	Tables []Table

	// ClearSQL runs in its own transaction before the first batch,
	// in declaration order, so a re-run replaces rather than collides.
	ClearSQL []ClearStatement
}

var (
	ipedsFilename     = regexp.MustCompile(`^hd(\d{4})\.csv$`)
	scorecardFilename = regexp.MustCompile(`^MERGED(\d{4})_(\d{2})_PP\.csv$`)
)

// Detect identifies the dataset from the source filename and extracts the
// data year. Unrecognized filenames are a source format error, reported
// before any database interaction.
//
//	hd2019.csv            -> IPEDS, year 2019
//	MERGED2018_19_PP.csv  -> Scorecard, year 2019 (end of academic span)
func Detect(path string) (*Dataset, error) {
	base := filepath.Base(path)

	if m := ipedsFilename.FindStringSubmatch(base); m != nil {
		year, _ := strconv.Atoi(m[1])
		return ipeds(year), nil
	}

	if m := scorecardFilename.FindStringSubmatch(base); m != nil {
		start, _ := strconv.Atoi(m[1])
		return scorecard(start + 1), nil
	}

	return nil, fmt.Errorf(
		"unrecognized source filename %q (want hd<year>.csv or MERGED<yyyy>_<yy>_PP.csv): %w",
		base, collegedata.ErrSourceFormat)
}

// SourceColumns returns the union of source column names required across
// all tables of the dataset, in first-seen order.
func (d *Dataset) SourceColumns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, t := range d.Tables {
		for _, c := range t.Columns {
			if _, ok := seen[c.Source]; ok {
				continue
			}
			seen[c.Source] = struct{}{}
			cols = append(cols, c.Source)
		}
	}
	return cols
}
