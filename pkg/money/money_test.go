package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsRoundsHalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10.00"},
		{"10.995", "11.00"},
		{"0.004999", "0.00"},
		{"157.50", "157.50"},
	}

	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, Format(Cents(d)), "rounding %s", tc.in)
	}
}

func TestMonthlyRate(t *testing.T) {
	// 18% APR -> 0.015 monthly.
	rate := MonthlyRate(decimal.NewFromInt(18))
	assert.True(t, rate.Equal(decimal.RequireFromString("0.015")), "got %s", rate)

	// 0% APR -> 0.
	assert.True(t, MonthlyRate(decimal.Zero).IsZero())

	// 7% APR keeps at least six fractional digits: 0.00583333.
	rate = MonthlyRate(decimal.NewFromInt(7))
	assert.Equal(t, "0.00583333", rate.String())
}

func TestParse(t *testing.T) {
	d, err := Parse("1250.505")
	require.NoError(t, err)
	assert.Equal(t, "1250.51", Format(d))

	_, err = Parse("not-money")
	assert.Error(t, err)
}

func TestMin(t *testing.T) {
	a := decimal.NewFromInt(5)
	b := decimal.NewFromInt(7)
	assert.True(t, Min(a, b).Equal(a))
	assert.True(t, Min(b, a).Equal(a))
}
