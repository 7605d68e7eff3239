package formatter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	assert.NoError(t, err)
	return d
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"5", "5.00"},
		{"1234.5", "1,234.50"},
		{"1234567.89", "1,234,567.89"},
		{"-999999.99", "-999,999.99"},
		{"100", "100.00"},
		{"1000", "1,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(dec(t, tt.in)), "Money(%s)", tt.in)
	}
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Jan", MonthName(1))
	assert.Equal(t, "Dec", MonthName(12))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{{"one", "two"}, {"three", "four"}})
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "four")
	assert.Contains(t, out, "─")
}
