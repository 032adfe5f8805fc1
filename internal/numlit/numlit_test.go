package numlit

import "testing"

func TestParseInt(t *testing.T) {
	tests := []struct {
		lit  string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"1_000", 1000},
		{"0xFF", 255},
		{"0b1010", 10},
		{"0o17", 15},
	}
	for _, tt := range tests {
		got, err := ParseInt(tt.lit)
		if err != nil || got != tt.want {
			t.Fatalf("ParseInt(%q) = %d, %v; want %d", tt.lit, got, err, tt.want)
		}
	}

	bad := map[string]string{
		"0x_ff":                "invalid integer literal: underscores must separate digits",
		"1__0":                 "invalid integer literal: underscores must separate digits",
		"12ab":                 "invalid integer literal: invalid digit 'a' for base 10",
		"0b102":                "invalid integer literal: invalid digit '2' for base 2",
		"0x":                   "invalid integer literal: digits required",
		"99999999999999999999": "integer literal out of range",
	}
	for lit, want := range bad {
		if _, err := ParseInt(lit); err == nil || err.Error() != want {
			t.Fatalf("ParseInt(%q) err = %v, want %q", lit, err, want)
		}
	}
}

func TestParseFloat(t *testing.T) {
	good := map[string]float64{
		"2.5":     2.5,
		"1_0.2_5": 10.25,
		"1e3":     1000,
		"1.5E-1":  0.15,
	}
	for lit, want := range good {
		got, err := ParseFloat(lit)
		if err != nil || got != want {
			t.Fatalf("ParseFloat(%q) = %g, %v; want %g", lit, got, err, want)
		}
	}

	bad := map[string]string{
		"1e":    "exponent requires digits",
		"1e+":   "exponent requires digits",
		"0x1.5": "float literal cannot use base prefix",
		"1.5x":  "invalid float literal: invalid digit 'x' for base 10",
	}
	for lit, want := range bad {
		if _, err := ParseFloat(lit); err == nil || err.Error() != want {
			t.Fatalf("ParseFloat(%q) err = %v, want %q", lit, err, want)
		}
	}
}
