package coerce

import (
	"testing"
)

func TestIsMissing(t *testing.T) {
	missing := []string{"", "   ", "\t", "-999", "NULL", "PrivacySuppressed", "  -999  "}
	for _, raw := range missing {
		if !IsMissing(raw) {
			t.Errorf("IsMissing(%q) = false, want true", raw)
		}
	}

	present := []string{"0", "42", "privacysuppressed", "null", "-998", "N/A"}
	for _, raw := range present {
		if IsMissing(raw) {
			t.Errorf("IsMissing(%q) = true, want false", raw)
		}
	}
}

func TestValue_Integer(t *testing.T) {
	col := Column{Source: "UNITID", Target: "unitid", Kind: KindInteger}

	tests := []struct {
		name     string
		raw      string
		want     any
		wantWarn bool
	}{
		{"plain integer", "100654", int64(100654), false},
		{"integral float notation", "3.0", int64(3), false},
		{"whitespace trimmed", "  42 ", int64(42), false},
		{"zero maps to null", "0", nil, false},
		{"sentinel maps to null", "-999", nil, false},
		{"empty maps to null", "", nil, false},
		{"negative preserved", "-5", int64(-5), false},
		{"garbage warns", "abc", nil, true},
		{"fractional warns", "3.7", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warn := Value(tt.raw, col, 7)
			if got != tt.want {
				t.Errorf("Value(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if (warn != nil) != tt.wantWarn {
				t.Errorf("Value(%q) warning = %v, wantWarn %v", tt.raw, warn, tt.wantWarn)
			}
			if warn != nil {
				if warn.Line != 7 {
					t.Errorf("warning line = %d, want 7", warn.Line)
				}
				if warn.Column != "UNITID" {
					t.Errorf("warning column = %q, want UNITID", warn.Column)
				}
			}
		})
	}
}

func TestValue_Currency(t *testing.T) {
	col := Column{Source: "TUITIONFEE_IN", Target: "tuitionfee_in", Kind: KindCurrency, Sign: SignPositive}

	tests := []struct {
		name     string
		raw      string
		want     any
		wantWarn bool
	}{
		{"plain amount", "9500", float64(9500), false},
		{"dollar sign stripped", "$9,500", float64(9500), false},
		{"dollar sign with cents", "$1,234.56", float64(1234.56), false},
		{"zero maps to null", "0", nil, false},
		{"zero dollars maps to null", "$0", nil, false},
		{"privacy suppressed maps to null", "PrivacySuppressed", nil, false},
		{"garbage warns", "N/A", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warn := Value(tt.raw, col, 3)
			if got != tt.want {
				t.Errorf("Value(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if (warn != nil) != tt.wantWarn {
				t.Errorf("Value(%q) warning = %v, wantWarn %v", tt.raw, warn, tt.wantWarn)
			}
		})
	}
}

// Negative amounts must survive coercion untouched so the database check
// constraint is what rejects them.
func TestValue_NegativeCurrencyNotClamped(t *testing.T) {
	col := Column{Source: "TUITIONFEE_IN", Target: "tuitionfee_in", Kind: KindCurrency, Sign: SignPositive}

	for raw, want := range map[string]float64{
		"-500":    -500,
		"-$500":   -500,
		"-$1,250": -1250,
	} {
		got, warn := Value(raw, col, 1)
		if warn != nil {
			t.Fatalf("Value(%q) unexpected warning: %v", raw, warn)
		}
		if got != want {
			t.Errorf("Value(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestValue_Decimal(t *testing.T) {
	col := Column{Source: "ADM_RATE", Target: "adm_rate", Kind: KindDecimal}

	got, warn := Value("0.6587", col, 1)
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	if got != 0.6587 {
		t.Errorf("Value(0.6587) = %v", got)
	}

	if got, _ := Value("0.0", col, 1); got != nil {
		t.Errorf("Value(0.0) = %v, want nil", got)
	}
}

func TestValue_CodeAndText(t *testing.T) {
	code := Column{Source: "STABBR", Target: "stabbr", Kind: KindCode}
	text := Column{Source: "INSTNM", Target: "instnm", Kind: KindText}

	if got, _ := Value("  PA ", code, 1); got != "PA" {
		t.Errorf("code value = %v, want PA", got)
	}
	// Codes keep leading zeros; they are not numbers.
	if got, _ := Value("00574100", code, 1); got != "00574100" {
		t.Errorf("code value = %v, want 00574100", got)
	}
	if got, _ := Value(" Alabama A & M University ", text, 1); got != "Alabama A & M University" {
		t.Errorf("text value = %v", got)
	}
	if got, _ := Value("NULL", text, 1); got != nil {
		t.Errorf("text NULL = %v, want nil", got)
	}
}
