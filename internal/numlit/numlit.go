// Package numlit parses numeric literals: decimal, 0x, 0b and 0o integers,
// decimal floats with an optional exponent, and _ digit separators.
package numlit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseInt parses an integer literal.
func ParseInt(lit string) (int64, error) {
	base, digits := splitBase(lit)
	if err := validateDigits(digits, base); err != nil {
		return 0, fmt.Errorf("invalid integer literal: %w", err)
	}
	v, err := strconv.ParseInt(stripUnderscores(digits), base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, errors.New("integer literal out of range")
		}
		return 0, errors.New("invalid integer literal")
	}
	return v, nil
}

// ParseFloat parses a float literal. Base prefixes are not allowed.
func ParseFloat(lit string) (float64, error) {
	if base, _ := splitBase(lit); base != 10 {
		return 0, errors.New("float literal cannot use base prefix")
	}

	mantissa, exp, hasExp := lit, "", false
	if i := strings.IndexAny(lit, "eE"); i >= 0 {
		mantissa, exp, hasExp = lit[:i], lit[i+1:], true
	}

	norm, err := normalizeMantissa(mantissa)
	if err != nil {
		return 0, err
	}
	if hasExp {
		sign := ""
		if exp != "" && (exp[0] == '+' || exp[0] == '-') {
			sign, exp = exp[:1], exp[1:]
		}
		if exp == "" {
			return 0, errors.New("exponent requires digits")
		}
		if err := validateDigits(exp, 10); err != nil {
			return 0, fmt.Errorf("invalid float literal: %w", err)
		}
		norm += "e" + sign + stripUnderscores(exp)
	}

	v, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, errors.New("float literal out of range")
		}
		return 0, errors.New("invalid float literal")
	}
	return v, nil
}

func splitBase(lit string) (int, string) {
	if len(lit) >= 2 && lit[0] == '0' {
		switch lit[1] {
		case 'x', 'X':
			return 16, lit[2:]
		case 'b', 'B':
			return 2, lit[2:]
		case 'o', 'O':
			return 8, lit[2:]
		}
	}
	return 10, lit
}

func normalizeMantissa(m string) (string, error) {
	whole, frac, dotted := strings.Cut(m, ".")
	if whole == "" || (dotted && frac == "") {
		return "", errors.New("float literal requires digits on both sides of decimal point")
	}
	if err := validateDigits(whole, 10); err != nil {
		return "", fmt.Errorf("invalid float literal: %w", err)
	}
	if !dotted {
		return stripUnderscores(whole), nil
	}
	if err := validateDigits(frac, 10); err != nil {
		return "", fmt.Errorf("invalid float literal: %w", err)
	}
	return stripUnderscores(whole) + "." + stripUnderscores(frac), nil
}

// validateDigits checks s against base; underscores may only separate
// digits.
func validateDigits(s string, base int) error {
	if s == "" {
		return errors.New("digits required")
	}
	prevUnderscore, seenDigit := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '_' {
			if !seenDigit || prevUnderscore {
				return errors.New("underscores must separate digits")
			}
			prevUnderscore = true
			continue
		}
		if !isDigitForBase(ch, base) {
			return fmt.Errorf("invalid digit %q for base %d", ch, base)
		}
		seenDigit, prevUnderscore = true, false
	}
	if prevUnderscore {
		return errors.New("underscores must separate digits")
	}
	return nil
}

func isDigitForBase(ch byte, base int) bool {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch-'0') < base
	case base == 16 && ch >= 'a' && ch <= 'f':
		return true
	case base == 16 && ch >= 'A' && ch <= 'F':
		return true
	}
	return false
}

func stripUnderscores(s string) string {
	if strings.IndexByte(s, '_') < 0 {
		return s
	}
	return strings.ReplaceAll(s, "_", "")
}
