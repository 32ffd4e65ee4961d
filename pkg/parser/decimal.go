package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyPrice   = errors.New("empty price")
	ErrInvalidPrice = errors.New("invalid price")

	canonicalDecimal = regexp.MustCompile(`^\d+(\.\d+)?$`)
	thousandsOnly    = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
)

// NormalizeEUDecimal converts a number written with "." as thousands
// separator and "," as decimal separator into canonical notation, e.g.
// "1.234,56" -> "1234.56". Already canonical input ("1234.56") is returned
// unchanged, so the conversion can be applied repeatedly. Input without a
// comma is only rewritten when it is made of thousands groups ("1.000");
// anything else with a single dot ("4.50") is taken as already canonical.
func NormalizeEUDecimal(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ",") && !thousandsOnly.MatchString(s) {
		return s
	}
	s = strings.ReplaceAll(s, ".", "")  // Remove thousand separators
	s = strings.ReplaceAll(s, ",", ".") // Convert decimal separator
	return s
}

// ParseEUDecimal parses an EU formatted, non-negative amount.
func ParseEUDecimal(s string) (decimal.Decimal, error) {
	norm := NormalizeEUDecimal(s)
	if norm == "" {
		return decimal.Zero, ErrEmptyPrice
	}
	if !canonicalDecimal.MatchString(norm) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidPrice, s, err)
	}
	return d, nil
}
