// Package money implements the pt-BR masked currency codec shared by every
// calculator: digits typed by the user are interpreted as cents and
// re-rendered with `.` thousands and `,` decimal separators on each change.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a parsed monetary value. Set distinguishes an empty input from a
// real zero: both compute as zero, but only a real zero renders "0,00".
type Amount struct {
	Value decimal.Decimal
	Set   bool
}

var oneHundred = decimal.NewFromInt(100)

// ParseTypedDigits strips every non-digit rune from raw, interprets the
// remaining digit string as an integer number of cents and returns the
// amount together with the masked display string that becomes the new input
// state. An input with no digits yields an unset amount and an empty display.
func ParseTypedDigits(raw string) (Amount, string) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return Amount{Value: decimal.Zero}, ""
	}

	cents, err := decimal.NewFromString(digits.String())
	if err != nil {
		// Cannot happen for a pure digit string; treat as unset.
		return Amount{Value: decimal.Zero}, ""
	}
	value := cents.Div(oneHundred)
	return Amount{Value: value, Set: true}, FormatMasked(value)
}

// ParseDisplay is the inverse direction: it removes thousands separators,
// swaps the decimal comma for a dot and parses the result. An empty string
// parses as zero.
func ParseDisplay(display string) decimal.Decimal {
	s := strings.TrimSpace(display)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatMasked renders a value with exactly two decimal places, `.` thousands
// separators and a `,` decimal separator (no currency symbol).
func FormatMasked(value decimal.Decimal) string {
	fixed := value.StringFixed(2) // e.g. "-1500.00"

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// FormatBRL renders a computed result value in the fixed display format used
// across the site: "R$" followed by a non-breaking space and the masked value.
func FormatBRL(value decimal.Decimal) string {
	return "R$ " + FormatMasked(value)
}
