// Package formatting converts between byte counts and human-readable sizes
// and recovers JSON documents from model output.
package formatting

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Base-1024 units, smallest first.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

var kibi = decimal.NewFromInt(1024)

// FormatBytes renders n with the largest unit that keeps the value at or
// above one. Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}
	precision = max(precision, 0)

	v := decimal.NewFromInt(n)
	i := 0
	for i < len(units)-1 && v.Abs().GreaterThanOrEqual(kibi) {
		v = v.Div(kibi)
		i++
	}

	return v.StringFixed(int32(precision)) + " " + units[i]
}

// ParseBytes parses sizes such as "50MB", "1.5 gb" or "1024". Units are
// case-insensitive; a bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := decimal.NewFromString(number)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit = strings.ToUpper(unit)
	if unit == "" {
		unit = "B"
	}
	idx := slices.Index(units, unit)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	for range idx {
		value = value.Mul(kibi)
	}
	return value.IntPart(), nil
}
