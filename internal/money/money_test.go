package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypedDigits(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantSet     bool
		wantValue   string
		wantDisplay string
	}{
		{"six digits", "150000", true, "1500", "1.500,00"},
		{"single digit", "5", true, "0.05", "0,05"},
		{"three digits", "123", true, "1.23", "1,23"},
		{"already masked", "1.500,00", true, "1500", "1.500,00"},
		{"mixed garbage", "R$ 2a5b0", true, "2.5", "2,50"},
		{"zero digits typed", "000", true, "0", "0,00"},
		{"empty", "", false, "0", ""},
		{"no digits at all", "abc,.", false, "0", ""},
		{"millions", "123456789", true, "1234567.89", "1.234.567,89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amt, display := ParseTypedDigits(tt.raw)
			assert.Equal(t, tt.wantSet, amt.Set)
			assert.True(t, amt.Value.Equal(decimal.RequireFromString(tt.wantValue)),
				"value = %s, want %s", amt.Value, tt.wantValue)
			assert.Equal(t, tt.wantDisplay, display)
		})
	}
}

// Formatting then re-parsing must give back the cent-exact value of the
// typed digits, with no drift across repeated keystrokes.
func TestRoundTrip(t *testing.T) {
	inputs := []string{"1", "10", "100", "999", "150000", "123456789", "7000000001"}
	for _, in := range inputs {
		amt, display := ParseTypedDigits(in)
		require.True(t, amt.Set)

		back := ParseDisplay(display)
		assert.True(t, back.Equal(amt.Value), "%s: %s != %s", in, back, amt.Value)

		// Re-feeding the display through the mask must be stable.
		again, display2 := ParseTypedDigits(display)
		assert.True(t, again.Value.Equal(amt.Value))
		assert.Equal(t, display, display2)
	}
}

func TestParseDisplay(t *testing.T) {
	assert.True(t, ParseDisplay("").IsZero())
	assert.True(t, ParseDisplay("  ").IsZero())
	assert.True(t, ParseDisplay("1.500,00").Equal(decimal.NewFromInt(1500)))
	assert.True(t, ParseDisplay("0,05").Equal(decimal.RequireFromString("0.05")))
	assert.True(t, ParseDisplay("not a number").IsZero())
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatBRL(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "R$ 0,00", FormatBRL(decimal.Zero))
	assert.Equal(t, "R$ -10,00", FormatBRL(decimal.NewFromInt(-10)))
}
