package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeriveTermZeroRate(t *testing.T) {
	// 10,000 financed at 0% with a $300 payment: plain ceiling division.
	quote, err := DeriveTerm(dec("10000"), dec("0"), dec("0"), dec("0"), dec("300"))
	require.NoError(t, err)

	assert.Equal(t, "10000.00", money.Format(quote.LoanAmount))
	assert.Equal(t, 34, quote.TermMonths) // ceil(10000/300)
	assert.Equal(t, "10200.00", money.Format(quote.TotalAmount))
	assert.True(t, quote.TotalAmount.GreaterThanOrEqual(quote.LoanAmount))
}

func TestDeriveTermWithInterest(t *testing.T) {
	// price=$10,000, down=$0, fee=$500, 18% APR, $200 payment.
	quote, err := DeriveTerm(dec("10000"), dec("0"), dec("500"), dec("18"), dec("200"))
	require.NoError(t, err)

	assert.Equal(t, "10500.00", money.Format(quote.LoanAmount))
	assert.Greater(t, quote.TermMonths, 0)
	assert.True(t, quote.TotalAmount.GreaterThanOrEqual(dec("10500")))
}

// TestDeriveTermIsSmallestAmortizingTerm simulates the schedule and checks
// the derived term is the smallest T whose simulated balance reaches zero.
func TestDeriveTermIsSmallestAmortizingTerm(t *testing.T) {
	cases := []struct {
		price, down, fee, rate, payment string
	}{
		{"10000", "0", "500", "18", "200"},
		{"25000", "5000", "250", "9.5", "450"},
		{"8000", "1000", "0", "12", "150"},
		{"60000", "12000", "500", "6", "600"},
	}

	for _, tc := range cases {
		quote, err := DeriveTerm(dec(tc.price), dec(tc.down), dec(tc.fee), dec(tc.rate), dec(tc.payment))
		require.NoError(t, err, "case %+v", tc)

		rate := money.MonthlyRate(dec(tc.rate))
		payment := dec(tc.payment)

		balanceAfter := func(months int) decimal.Decimal {
			balance := quote.LoanAmount
			for i := 0; i < months; i++ {
				interest := money.Cents(balance.Mul(rate))
				balance = balance.Sub(payment.Sub(interest))
				if balance.LessThanOrEqual(decimal.Zero) {
					return balance
				}
			}
			return balance
		}

		assert.True(t, balanceAfter(quote.TermMonths).LessThanOrEqual(decimal.Zero),
			"case %+v: balance after term %d should be <= 0", tc, quote.TermMonths)
		assert.True(t, balanceAfter(quote.TermMonths-1).GreaterThan(decimal.Zero),
			"case %+v: balance after term-1 should still be positive", tc)
	}
}

// TestDeriveTermRoundedInterestStall covers the feasibility boundary where
// the unrounded first-period interest sits a hair below the payment but the
// cent-rounded charge equals it: such a loan would never amortize, so the
// payment must be rejected.
func TestDeriveTermRoundedInterestStall(t *testing.T) {
	// 99,999.99 at 12% APR: unrounded interest is 999.9999, rounded 1000.00.
	_, err := DeriveTerm(dec("99999.99"), dec("0"), dec("0"), dec("12"), dec("1000"))
	require.Error(t, err)

	var tooLow *PaymentTooLowError
	require.ErrorAs(t, err, &tooLow)

	// A cent more of payment clears the boundary and amortizes.
	quote, err := DeriveTerm(dec("99999.99"), dec("0"), dec("0"), dec("12"), dec("1000.01"))
	require.NoError(t, err)
	assert.Greater(t, quote.TermMonths, 0)
}

// TestDeriveTermLongScheduleRounding pins terms where per-period cent
// rounding pushes the schedule a month past the closed-form annuity solution.
func TestDeriveTermLongScheduleRounding(t *testing.T) {
	cases := []struct {
		price, payment string
		wantTerm       int
	}{
		{"35000", "50", 1052},
		{"50000", "50", 2152},
	}

	for _, tc := range cases {
		quote, err := DeriveTerm(dec(tc.price), dec("0"), dec("0"), dec("1"), dec(tc.payment))
		require.NoError(t, err, "price %s", tc.price)
		assert.Equal(t, tc.wantTerm, quote.TermMonths, "price %s", tc.price)

		// The derived term must leave no residual when the schedule is walked
		// with cent-rounded interest.
		rate := money.MonthlyRate(dec("1"))
		balance := quote.LoanAmount
		for i := 0; i < quote.TermMonths; i++ {
			interest := money.Cents(balance.Mul(rate))
			balance = balance.Sub(dec(tc.payment).Sub(interest))
		}
		assert.True(t, balance.LessThanOrEqual(decimal.Zero),
			"price %s: residual %s after %d months", tc.price, balance.String(), quote.TermMonths)
	}
}

func TestDeriveTermPaymentTooLow(t *testing.T) {
	// $50,000 at 18%: first month's interest is $750, far above a $50 payment.
	_, err := DeriveTerm(dec("50000"), dec("0"), dec("0"), dec("18"), dec("50"))
	require.Error(t, err)

	var tooLow *PaymentTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.True(t, tooLow.MinimumPayment.GreaterThan(dec("50")),
		"suggested minimum %s should exceed the rejected payment", money.Format(tooLow.MinimumPayment))
	// The 30-year floor must at least cover first-period interest.
	assert.True(t, tooLow.MinimumPayment.GreaterThan(dec("750")))
}

func TestDeriveTermInvalidInputs(t *testing.T) {
	var invalid *InvalidInputError

	// Down payment swallows the whole price.
	_, err := DeriveTerm(dec("5000"), dec("5000"), dec("0"), dec("10"), dec("100"))
	require.ErrorAs(t, err, &invalid)

	// Non-positive price.
	_, err = DeriveTerm(dec("0"), dec("0"), dec("0"), dec("10"), dec("100"))
	require.ErrorAs(t, err, &invalid)

	// Non-positive payment.
	_, err = DeriveTerm(dec("5000"), dec("0"), dec("0"), dec("10"), dec("0"))
	require.ErrorAs(t, err, &invalid)

	// Negative rate.
	_, err = DeriveTerm(dec("5000"), dec("0"), dec("0"), dec("-1"), dec("100"))
	require.ErrorAs(t, err, &invalid)
}

func TestDeriveTermSinglePayment(t *testing.T) {
	// Payment covers the whole financed amount: one-month term.
	quote, err := DeriveTerm(dec("400"), dec("0"), dec("0"), dec("0"), dec("500"))
	require.NoError(t, err)
	assert.Equal(t, 1, quote.TermMonths)
}
