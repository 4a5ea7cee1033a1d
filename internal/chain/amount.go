package chain

import (
	"math/big"
	"strings"

	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// ParseDecimalAmount parses a decimal string into the smallest unit with the
// given number of decimals. "0.1" with 18 decimals is 100000000000000000 exactly.
// More fractional digits than decimals is rejected rather than rounded.
//
//nolint:gocognit,gocyclo // Decimal parsing requires sequential validation steps
func ParseDecimalAmount(amount string, decimals int) (*big.Int, error) {
	invalid := func() error {
		return presaleerr.WithDetails(presaleerr.ErrInvalidAmount, map[string]string{"amount": amount})
	}

	s := strings.TrimSpace(amount)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, invalid()
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return nil, invalid()
	}
	if intPart == "" && (!hasDot || fracPart == "") {
		return nil, invalid()
	}
	if len(fracPart) > decimals {
		return nil, invalid()
	}
	for _, part := range []string{intPart, fracPart} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return nil, invalid()
			}
		}
	}

	digits := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, invalid()
	}
	return v, nil
}

// ParsePositiveAmount is ParseDecimalAmount that also rejects zero.
func ParsePositiveAmount(amount string, decimals int) (*big.Int, error) {
	v, err := ParseDecimalAmount(amount, decimals)
	if err != nil {
		return nil, err
	}
	if v.Sign() <= 0 {
		return nil, presaleerr.WithDetails(presaleerr.ErrInvalidAmount, map[string]string{"amount": amount})
	}
	return v, nil
}

// FormatDecimalAmount renders a smallest-unit amount with the given decimals,
// trimming trailing zeros: 1500000000000000000 with 18 decimals is "1.5".
func FormatDecimalAmount(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	if amount.Sign() < 0 {
		return "-" + FormatDecimalAmount(new(big.Int).Abs(amount), decimals)
	}
	if decimals <= 0 {
		return amount.String()
	}

	str := amount.String()
	if len(str) <= decimals {
		str = strings.Repeat("0", decimals-len(str)+1) + str
	}
	point := len(str) - decimals
	whole, frac := str[:point], strings.TrimRight(str[point:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// FormatWithSymbol renders an amount followed by its unit symbol.
func FormatWithSymbol(amount *big.Int, decimals int, symbol string) string {
	s := FormatDecimalAmount(amount, decimals)
	if symbol == "" {
		return s
	}
	return s + " " + symbol
}

// IsPositive reports whether v is non-nil and greater than zero.
func IsPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}

// OrZero returns v, or a fresh zero for nil.
func OrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
