package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

func TestCureAmountFeesAndInstallments(t *testing.T) {
	state := activeState("9000", "18", "250")
	state.LateFeeOwed = dec("25")
	state.NoticeFeeOwed = dec("75")
	state.PostalFeeOwed = dec("8.45")

	// 20 days overdue implies one missed installment.
	cure := CureAmount(state, 20)
	assert.Equal(t, "358.45", money.Format(cure))

	// 45 days implies two.
	cure = CureAmount(state, 45)
	assert.Equal(t, "608.45", money.Format(cure))

	// The cure never balloons into the full balance.
	assert.True(t, cure.LessThan(state.Balance))
}

func TestCureAmountCurrentLoan(t *testing.T) {
	state := activeState("9000", "18", "250")
	assert.True(t, CureAmount(state, 0).IsZero())

	// Fees outstanding on a technically current loan still need paying.
	state.LateFeeOwed = dec("25")
	assert.Equal(t, "25.00", money.Format(CureAmount(state, 0)))
}

func TestResolveDefaultNetRecovery(t *testing.T) {
	// 3000 paid, 1200 acquisition, 400 recovery costs -> 1400.
	net, err := ResolveDefault(DefaultInput{
		TotalPaid:       dec("3000"),
		AcquisitionCost: dec("1200"),
		RecoveryCosts:   dec("400"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1400.00", money.Format(net))
}

func TestResolveDefaultLoss(t *testing.T) {
	net, err := ResolveDefault(DefaultInput{
		TotalPaid:       dec("500"),
		AcquisitionCost: dec("1200"),
		RecoveryCosts:   dec("400"),
	})
	require.NoError(t, err)
	assert.Equal(t, "-1100.00", money.Format(net))
}

func TestResolveDefaultRecomputeGuard(t *testing.T) {
	in := DefaultInput{
		TotalPaid:       dec("3000"),
		AcquisitionCost: dec("1200"),
		RecoveryCosts:   dec("400"),
		AlreadyResolved: true,
	}

	_, err := ResolveDefault(in)
	assert.ErrorIs(t, err, ErrIrreversibleAction)

	in.Recompute = true
	net, err := ResolveDefault(in)
	require.NoError(t, err)
	assert.Equal(t, "1400.00", money.Format(net))
}

func TestResolveDefaultRejectsNegativeTotals(t *testing.T) {
	var invalid *InvalidInputError
	_, err := ResolveDefault(DefaultInput{
		TotalPaid:       dec("-1"),
		AcquisitionCost: dec("0"),
		RecoveryCosts:   dec("0"),
	})
	require.ErrorAs(t, err, &invalid)
}
