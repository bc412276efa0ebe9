package engine

import (
	"github.com/shopspring/decimal"

	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// CureAmount is the sum that brings an overdue loan back to current: every
// outstanding fee bucket plus the monthly installments implied by the days
// overdue. It is never the full remaining balance.
func CureAmount(state LoanState, daysOverdue int) decimal.Decimal {
	cure := money.Cents(state.LateFeeOwed).
		Add(money.Cents(state.NoticeFeeOwed)).
		Add(money.Cents(state.PostalFeeOwed))

	if daysOverdue > 0 {
		missed := int64((daysOverdue + 29) / 30)
		cure = cure.Add(state.MonthlyPayment.Mul(decimal.NewFromInt(missed)))
	}
	return money.Cents(cure)
}

// DefaultInput carries the accumulated totals for resolving an administrative
// default. AlreadyResolved guards against silently recomputing a recorded net
// recovery; Recompute makes the recomputation explicit.
type DefaultInput struct {
	TotalPaid       decimal.Decimal
	AcquisitionCost decimal.Decimal
	RecoveryCosts   decimal.Decimal
	AlreadyResolved bool
	Recompute       bool
}

// ResolveDefault computes the net recovery for a defaulted loan:
//
//	totalPaid - acquisitionCost - recoveryCosts
//
// The result may be negative (a loss). The remaining balance is written off,
// not added back. A second resolution for the same default event requires an
// explicit recompute.
func ResolveDefault(in DefaultInput) (decimal.Decimal, error) {
	if in.AlreadyResolved && !in.Recompute {
		return decimal.Zero, ErrIrreversibleAction
	}
	if in.TotalPaid.IsNegative() || in.AcquisitionCost.IsNegative() || in.RecoveryCosts.IsNegative() {
		return decimal.Zero, &InvalidInputError{Field: "default_totals", Reason: "totals must not be negative"}
	}

	net := in.TotalPaid.Sub(in.AcquisitionCost).Sub(in.RecoveryCosts)
	return money.Cents(net), nil
}
