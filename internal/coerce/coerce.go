// Package coerce maps raw CSV field values to schema-valid typed values.
//
// Coercion is advisory: a value that parses but will violate a database
// check constraint (for example a negative tuition amount) is passed
// through unmodified. The database is the authority on sign constraints;
// this layer never clamps.
package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

// Kind is the semantic target type of a column.
type Kind int

const (
	KindInteger  Kind = iota // whole-number codes and identifiers
	KindDecimal              // rates and ratios
	KindCurrency             // monetary amounts, may carry $ and thousands separators
	KindCode                 // fixed-length codes (state abbreviation, zip), trimmed only
	KindText                 // free text, trimmed only
)

// Sign records the documented sign constraint of a numeric column.
// It is advisory metadata consulted by reports and tests; enforcement
// happens in the database.
type Sign int

const (
	SignAny         Sign = iota
	SignPositive         // > 0 check constraint
	SignNonNegative      // >= 0 check constraint
)

// Column declares how one source column maps into the schema. Adding a
// dataset column is a data change in the dataset definition, not a code
// change here.
type Column struct {
	Source string // CSV header name
	Target string // database column name
	Kind   Kind
	Sign   Sign
}

// Sentinels the source datasets use for "not reported". Scorecard uses
// PrivacySuppressed for small-cell suppression; IPEDS uses -999.
var missingSentinels = map[string]struct{}{
	"-999":              {},
	"NULL":              {},
	"PrivacySuppressed": {},
}

// IsMissing reports whether a raw field denotes missing data.
func IsMissing(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	_, ok := missingSentinels[trimmed]
	return ok
}

// Value coerces one raw field into its target type, or nil for missing or
// unparseable data. An unparseable field additionally yields a warning so
// operators can audit the occurrence; it never fails the load.
//
// Numeric zeros map to nil: the source extracts use 0 interchangeably
// with "not reported" for metric columns.
func Value(raw string, col Column, line int64) (any, *collegedata.CoercionWarning) {
	trimmed := strings.TrimSpace(raw)
	if IsMissing(trimmed) {
		return nil, nil
	}

	switch col.Kind {
	case KindInteger:
		v, err := parseInteger(trimmed)
		if err != nil {
			return nil, warn(line, col, raw, "not an integer")
		}
		if v == 0 {
			return nil, nil
		}
		return v, nil

	case KindDecimal, KindCurrency:
		v, err := parseNumeric(trimmed)
		if err != nil {
			return nil, warn(line, col, raw, "not a number")
		}
		if v == 0 {
			return nil, nil
		}
		return v, nil

	case KindCode, KindText:
		return trimmed, nil

	default:
		return nil, warn(line, col, raw, fmt.Sprintf("unknown kind %d", col.Kind))
	}
}

// parseInteger parses a whole number. Extracts occasionally render
// integer codes in decimal notation ("3.0"), so an integral float is
// accepted too.
func parseInteger(s string) (int64, error) {
	s = stripFormatting(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("non-integral value %q", s)
	}
	return int64(f), nil
}

func parseNumeric(s string) (float64, error) {
	return strconv.ParseFloat(stripFormatting(s), 64)
}

// stripFormatting removes currency symbols and thousands separators
// before numeric parsing. The sign is preserved: "-$500" parses to -500
// so that the database check constraint, not this layer, rejects it.
func stripFormatting(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if neg {
		s = "-" + s
	}
	return s
}

func warn(line int64, col Column, raw, reason string) *collegedata.CoercionWarning {
	return &collegedata.CoercionWarning{
		Line:   line,
		Column: col.Source,
		Value:  raw,
		Reason: reason,
	}
}
