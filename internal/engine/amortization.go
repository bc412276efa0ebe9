// Package engine implements the loan financial engine: term derivation,
// delinquency classification, payment allocation, and default resolution.
// Every function is a pure computation over its inputs; persistence and
// per-loan serialization belong to the callers.
package engine

import (
	"math"

	"github.com/shopspring/decimal"

	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// thirtyYearMonths is the horizon used to suggest a minimum sustaining
// payment when the requested payment never amortizes the loan.
const thirtyYearMonths = 360

// TermQuote is the result of deriving a loan's schedule from a target
// monthly payment.
type TermQuote struct {
	// LoanAmount is the financed principal: price - down payment + processing fee.
	LoanAmount decimal.Decimal `json:"loan_amount"`

	// TermMonths is the smallest integer term that fully amortizes LoanAmount
	// at the target payment. The final payment may be a smaller balloon.
	TermMonths int `json:"term_months"`

	// TotalAmount is targetMonthlyPayment * TermMonths.
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// DeriveTerm computes the financed amount and the smallest whole-month term
// that amortizes it at the given annual rate and target monthly payment.
//
// With a zero rate the term is a plain ceiling division. Otherwise the term
// comes from walking the schedule month by month with the same cent-rounded
// interest charge payments are allocated against; the closed-form annuity
// solution n = -ln(1 - L*r/p)/ln(1+r) drifts off that schedule by a month or
// two on long terms, so it is not used. The payment must exceed the first
// period's rounded interest or the balance never moves.
func DeriveTerm(purchasePrice, downPayment, processingFee, annualRatePercent, targetMonthlyPayment decimal.Decimal) (*TermQuote, error) {
	if purchasePrice.LessThanOrEqual(decimal.Zero) {
		return nil, &InvalidInputError{Field: "purchase_price", Reason: "must be positive"}
	}
	if downPayment.IsNegative() || processingFee.IsNegative() || annualRatePercent.IsNegative() {
		return nil, &InvalidInputError{Field: "loan_terms", Reason: "down payment, processing fee and rate must not be negative"}
	}
	if targetMonthlyPayment.LessThanOrEqual(decimal.Zero) {
		return nil, &InvalidInputError{Field: "monthly_payment", Reason: "must be positive"}
	}

	loanAmount := money.Cents(purchasePrice.Sub(downPayment).Add(processingFee))
	if loanAmount.LessThanOrEqual(decimal.Zero) {
		return nil, &InvalidInputError{Field: "loan_amount", Reason: "down payment covers or exceeds the price plus fees"}
	}

	rate := money.MonthlyRate(annualRatePercent)

	var termMonths int
	if rate.IsZero() {
		termMonths = int(loanAmount.Div(targetMonthlyPayment).Ceil().IntPart())
	} else {
		// Feasibility against the rounded interest actually charged. The
		// unrounded condition p > L*r is not enough: when the rounded
		// first-period interest consumes the whole payment, every payment is
		// pure interest and the balance never decreases.
		firstInterest := money.Cents(loanAmount.Mul(rate))
		if firstInterest.GreaterThanOrEqual(targetMonthlyPayment) {
			return nil, &PaymentTooLowError{
				TargetPayment:  targetMonthlyPayment,
				MinimumPayment: minimumSustainingPayment(loanAmount, rate),
			}
		}
		termMonths = amortizedTerm(loanAmount, rate, targetMonthlyPayment)
	}

	if termMonths < 1 {
		termMonths = 1
	}

	return &TermQuote{
		LoanAmount:  loanAmount,
		TermMonths:  termMonths,
		TotalAmount: money.Cents(targetMonthlyPayment.Mul(decimal.NewFromInt(int64(termMonths)))),
	}, nil
}

// amortizedTerm walks the schedule charging each period's interest rounded to
// cents, the way payment allocation will, and returns the month the balance
// clears. The final month may be a smaller balloon. The caller has already
// checked the first period's rounded interest is below the payment, so every
// period retires at least a cent of principal and the walk terminates.
func amortizedTerm(loanAmount, monthlyRate, payment decimal.Decimal) int {
	balance := loanAmount
	months := 0
	for balance.IsPositive() {
		interest := money.Cents(balance.Mul(monthlyRate))
		balance = balance.Sub(payment.Sub(interest))
		months++
	}
	return months
}

// minimumSustainingPayment returns the payment that amortizes the loan over a
// 30-year horizon: L*r / (1 - (1+r)^-360).
func minimumSustainingPayment(loanAmount, monthlyRate decimal.Decimal) decimal.Decimal {
	rateF := monthlyRate.InexactFloat64()
	denom := 1 - math.Pow(1+rateF, -thirtyYearMonths)
	min := loanAmount.Mul(monthlyRate).Div(decimal.NewFromFloat(denom))
	return money.Cents(min)
}
