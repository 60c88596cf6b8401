package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountDigits is the precision of every amount column, numeric(78,0), which holds any uint256
const MaxAmountDigits = 78

// ParseAmount parses an on-chain integer amount in base units.
// Only plain decimal digits or 0x-prefixed hex digits are accepted, and the value must fit
// MaxAmountDigits. Signs, fractions and exponents are rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidEvent)
	}

	digits, base := raw, 10
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		digits, base = raw[2:], 16
	}
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return !isDigit(r, base) }) >= 0 {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrInvalidEvent, raw)
	}

	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrInvalidEvent, raw)
	}
	if len(v.String()) > MaxAmountDigits {
		return decimal.Zero, fmt.Errorf("%w: amount %q exceeds %d digits", ErrInvalidEvent, raw, MaxAmountDigits)
	}

	return decimal.NewFromBigInt(v, 0), nil
}

func isDigit(r rune, base int) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case base == 16:
		return (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
	default:
		return false
	}
}
