package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// PaymentMethod identifies how a payment arrived. Gateway payments carry a
// processing fee and keep due-day-of-month scheduling; manual methods skip
// the processing fee and advance the due date a flat 30 days.
type PaymentMethod string

const (
	MethodGateway    PaymentMethod = "gateway"
	MethodCash       PaymentMethod = "cash"
	MethodCheck      PaymentMethod = "check"
	MethodMoneyOrder PaymentMethod = "money_order"
)

// Manual reports whether the method is an admin-recorded payment rather than
// a gateway settlement.
func (m PaymentMethod) Manual() bool {
	return m != MethodGateway
}

// LoanState is the pre-payment snapshot the allocation runs against. The
// caller loads it under a per-loan lock; the engine never reads storage.
type LoanState struct {
	Status            LoanStatus
	Balance           decimal.Decimal
	AnnualRatePercent decimal.Decimal
	MonthlyPayment    decimal.Decimal
	NextDueDate       time.Time
	DueDay            int // 1 or 15

	// Escrow schedule for the property backing the loan.
	MonthlyTaxPortion decimal.Decimal
	MonthlyHOAFee     decimal.Decimal

	// Outstanding flagged fees.
	LateFeeOwed       decimal.Decimal
	NoticeFeeOwed     decimal.Decimal
	PostalFeeOwed     decimal.Decimal
	ProcessingFeeOwed decimal.Decimal
}

// Allocation is the per-bucket split of one payment plus the resulting loan
// state changes.
type Allocation struct {
	NoticeFee     decimal.Decimal `json:"notice_fee"`
	PostalFee     decimal.Decimal `json:"postal_fee"`
	LateFee       decimal.Decimal `json:"late_fee"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	Interest      decimal.Decimal `json:"interest"`
	TaxEscrow     decimal.Decimal `json:"tax_escrow"`
	HOAEscrow     decimal.Decimal `json:"hoa_escrow"`
	Principal     decimal.Decimal `json:"principal"`

	NewBalance  decimal.Decimal `json:"new_balance"`
	NextDueDate time.Time       `json:"next_due_date"`
	PaidOff     bool            `json:"paid_off"`
}

// Allocate splits a payment across the fee, interest, escrow, and principal
// buckets in fixed priority order, each bucket capped at its owed amount with
// the remainder cascading down. Interest is simple per-period interest on the
// pre-payment balance. Whatever survives the cascade, including any residual
// cent from rounding, lands on principal.
func Allocate(amount decimal.Decimal, paidAt time.Time, method PaymentMethod, state LoanState) (*Allocation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, &InvalidInputError{Field: "amount", Reason: "must be positive"}
	}
	if state.Status == StatusPaidOff {
		return nil, ErrAlreadyPaidOff
	}
	if state.Status != StatusActive {
		return nil, ErrLoanNotActive
	}

	amount = money.Cents(amount)
	if amount.GreaterThan(state.Balance) {
		return nil, &PaymentExceedsBalanceError{Amount: amount, Balance: state.Balance}
	}
	// The exact-payoff payment is exempt from the monthly minimum.
	if amount.LessThan(state.MonthlyPayment) && !amount.Equal(state.Balance) {
		return nil, &PaymentBelowMinimumError{Amount: amount, MonthlyPayment: state.MonthlyPayment}
	}

	alloc := &Allocation{}

	// An exact-payoff payment retires the balance in full: everything goes to
	// principal so the loan converges to exactly zero, with no trailing
	// interest cent. Fee buckets stay flagged; they are tracked separately
	// and never folded into the principal balance.
	if amount.Equal(state.Balance) {
		alloc.Principal = amount
		alloc.NewBalance = decimal.Zero
		alloc.PaidOff = true
		alloc.NextDueDate = nextDueDate(paidAt, method, state)
		return alloc, nil
	}

	remaining := amount

	take := func(owed decimal.Decimal) decimal.Decimal {
		portion := money.Min(remaining, money.Cents(owed))
		if portion.IsNegative() {
			portion = decimal.Zero
		}
		remaining = remaining.Sub(portion)
		return portion
	}

	alloc.NoticeFee = take(state.NoticeFeeOwed)
	alloc.PostalFee = take(state.PostalFeeOwed)
	alloc.LateFee = take(state.LateFeeOwed)
	if !method.Manual() {
		alloc.ProcessingFee = take(state.ProcessingFeeOwed)
	}

	interest := money.Cents(state.Balance.Mul(money.MonthlyRate(state.AnnualRatePercent)))
	alloc.Interest = take(interest)

	alloc.TaxEscrow = take(state.MonthlyTaxPortion)
	alloc.HOAEscrow = take(state.MonthlyHOAFee)

	// Residual goes to principal, never back to a fee or interest bucket.
	alloc.Principal = remaining
	alloc.NewBalance = state.Balance.Sub(alloc.Principal)
	if alloc.NewBalance.IsNegative() {
		return nil, &PaymentExceedsBalanceError{Amount: amount, Balance: state.Balance}
	}
	alloc.PaidOff = alloc.NewBalance.IsZero()
	alloc.NextDueDate = nextDueDate(paidAt, method, state)

	return alloc, nil
}

// nextDueDate preserves both observed scheduling behaviors: manual payments
// advance a flat 30 calendar days from the payment date, gateway payments
// keep the due-day-of-month convention.
func nextDueDate(paidAt time.Time, method PaymentMethod, state LoanState) time.Time {
	if method.Manual() {
		return paidAt.AddDate(0, 0, 30)
	}
	return advanceDueDate(state.NextDueDate, state.DueDay)
}

// advanceDueDate moves the due date one month forward, keeping the loan's
// due-day-of-month convention (1st or 15th).
func advanceDueDate(current time.Time, dueDay int) time.Time {
	if dueDay != 1 && dueDay != 15 {
		dueDay = 1
	}
	next := current.AddDate(0, 1, 0)
	return time.Date(next.Year(), next.Month(), dueDay, 0, 0, 0, 0, next.Location())
}
