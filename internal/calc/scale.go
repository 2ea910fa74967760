package calc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Factor is the fixed-point multiplier used for every monetary and
// measurement quantity stored on the ledger.
const Factor = 100

var hundred = decimal.NewFromInt(Factor)

// groupedPattern matches dot-grouped thousands without a fraction ("20.000").
var groupedPattern = regexp.MustCompile(`^-?[0-9]{1,3}(\.[0-9]{3})+$`)

var (
	ErrNegative   = errors.New("value must not be negative")
	ErrNotANumber = errors.New("not a number")
)

// Scale converts a display value into its ledger integer (x100, rounded half away from zero).
func Scale(v decimal.Decimal) int64 {
	return v.Mul(hundred).Round(0).IntPart()
}

// Descale converts a ledger integer back into its display value.
func Descale(raw int64) decimal.Decimal {
	return decimal.New(raw, -2)
}

// ParseDecimal reads a user-typed number. Both "1234.5" and the Indonesian
// "1.234,5" notations are accepted. Dots in front of exact 3-digit groups
// are thousands separators, so "20.000" is twenty thousand.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrNotANumber)
	}
	if strings.Contains(s, ",") || groupedPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	return d, nil
}

// ParseScaled parses a non-negative display value and returns its ledger integer.
func ParseScaled(s string) (uint64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, ErrNegative
	}
	return uint64(Scale(d)), nil
}

// FormatScaled renders a ledger integer as a plain decimal string suitable
// for pre-filling an input ("1234.5", "12", "0.25").
func FormatScaled(raw int64) string {
	return Descale(raw).String()
}
