package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// Sentinel errors for lifecycle violations. Callers match these with
// errors.Is and decide the user-facing message.
var (
	// ErrAlreadyPaidOff is returned when a payment is attempted on a loan
	// whose balance already reached zero.
	ErrAlreadyPaidOff = errors.New("loan is already paid off")

	// ErrLoanNotActive is returned when an operation requires an active loan.
	ErrLoanNotActive = errors.New("loan is not active")

	// ErrIrreversibleAction is returned for a second default resolution
	// without an explicit recompute, or an un-delete attempt.
	ErrIrreversibleAction = errors.New("action already applied and is irreversible")
)

// InvalidInputError reports loan parameters that cannot produce a valid loan,
// such as a non-positive financed amount.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PaymentTooLowError reports a target monthly payment that never covers the
// interest accruing on the financed amount, so amortization cannot converge.
// MinimumPayment carries a 30-year-equivalent sustaining payment as guidance.
type PaymentTooLowError struct {
	TargetPayment  decimal.Decimal
	MinimumPayment decimal.Decimal
}

func (e *PaymentTooLowError) Error() string {
	return fmt.Sprintf("monthly payment %s never amortizes the loan; minimum sustaining payment is %s",
		money.Format(e.TargetPayment), money.Format(e.MinimumPayment))
}

// PaymentBelowMinimumError reports a payment smaller than the loan's monthly
// payment that is not an exact payoff.
type PaymentBelowMinimumError struct {
	Amount         decimal.Decimal
	MonthlyPayment decimal.Decimal
}

func (e *PaymentBelowMinimumError) Error() string {
	return fmt.Sprintf("payment %s is below the monthly payment %s",
		money.Format(e.Amount), money.Format(e.MonthlyPayment))
}

// PaymentExceedsBalanceError reports an overpayment attempt.
type PaymentExceedsBalanceError struct {
	Amount  decimal.Decimal
	Balance decimal.Decimal
}

func (e *PaymentExceedsBalanceError) Error() string {
	return fmt.Sprintf("payment %s exceeds remaining balance %s",
		money.Format(e.Amount), money.Format(e.Balance))
}
