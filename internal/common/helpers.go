package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	TRXDecimals = 6 // TRX has 6 decimals (sun)
	SOLDecimals = 9 // SOL has 9 decimals (lamports)
)

var (
	ErrEmptyAmount     = errors.New("empty amount")
	ErrInvalidAmount   = errors.New("invalid decimal format")
	ErrTooManyDecimals = errors.New("too many decimal places")
)

// FormatUnits converts base units to a decimal string without float precision loss
// Example: FormatUnits(24981836, 9) = "0.024981836"
func FormatUnits(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)
	if decimals == 0 {
		return s
	}

	// Pad with leading zeros if needed
	for len(s) <= decimals {
		s = "0" + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// HumanUnits is FormatUnits with trailing fractional zeros removed ("1.500000" -> "1.5")
func HumanUnits(value uint64, decimals int) string {
	s := FormatUnits(value, decimals)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ParseUnits converts a decimal string to base units.
// Unlike a float conversion it rejects more fractional digits than the asset supports.
// Example: ParseUnits("0.024981836", 9) = 24981836
func ParseUnits(s string, decimals int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, ErrInvalidAmount
	}

	if len(frac) > decimals {
		return 0, fmt.Errorf("%w: at most %d", ErrTooManyDecimals, decimals)
	}
	// Pad fractional part to exact decimals
	frac += strings.Repeat("0", decimals-len(frac))

	n, err := strconv.ParseUint(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return n, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
