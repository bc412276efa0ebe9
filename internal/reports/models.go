package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevenueSummary aggregates collected payments over a window. Escrow
// collections pass through to taxing authorities and HOAs, so they are
// excluded from net revenue.
type RevenueSummary struct {
	From time.Time `json:"from" db:"-"`
	To   time.Time `json:"to" db:"-"`

	TotalCollected decimal.Decimal `json:"total_collected" db:"total_collected"`
	Interest       decimal.Decimal `json:"interest" db:"interest"`
	Principal      decimal.Decimal `json:"principal" db:"principal"`
	LateFees       decimal.Decimal `json:"late_fees" db:"late_fees"`
	NoticeFees     decimal.Decimal `json:"notice_fees" db:"notice_fees"`
	PostalFees     decimal.Decimal `json:"postal_fees" db:"postal_fees"`
	ProcessingFees decimal.Decimal `json:"processing_fees" db:"processing_fees"`
	EscrowHeld     decimal.Decimal `json:"escrow_held" db:"escrow_held"`
	NetRevenue     decimal.Decimal `json:"net_revenue" db:"net_revenue"`
	PaymentCount   int64           `json:"payment_count" db:"payment_count"`
}

// EscrowSummary reports held and disbursed escrow across all accounts.
type EscrowSummary struct {
	Accounts     int64           `json:"accounts" db:"accounts"`
	TaxCollected decimal.Decimal `json:"tax_collected" db:"tax_collected"`
	TaxPaidOut   decimal.Decimal `json:"tax_paid_out" db:"tax_paid_out"`
	TaxHeld      decimal.Decimal `json:"tax_held" db:"tax_held"`
	HOACollected decimal.Decimal `json:"hoa_collected" db:"hoa_collected"`
}

// PortfolioSummary is the dashboard view of the loan book.
type PortfolioSummary struct {
	ActiveLoans    int64 `json:"active_loans" db:"active_loans"`
	PaidOffLoans   int64 `json:"paid_off_loans" db:"paid_off_loans"`
	DefaultedLoans int64 `json:"defaulted_loans" db:"defaulted_loans"`
	ArchivedLoans  int64 `json:"archived_loans" db:"archived_loans"`

	OutstandingBalance decimal.Decimal `json:"outstanding_balance" db:"outstanding_balance"`
	TotalCollected     decimal.Decimal `json:"total_collected" db:"total_collected"`

	// Delinquency buckets over active loans.
	CurrentLoans   int64 `json:"current_loans" db:"current_loans"`
	OverdueLoans   int64 `json:"overdue_loans" db:"overdue_loans"`
	NoticeEligible int64 `json:"notice_eligible" db:"notice_eligible"`
}

// DefaultSummary aggregates resolved defaults and their recoveries.
type DefaultSummary struct {
	Count              int64           `json:"count" db:"count"`
	TotalWrittenOff    decimal.Decimal `json:"total_written_off" db:"total_written_off"`
	TotalRecoveryCosts decimal.Decimal `json:"total_recovery_costs" db:"total_recovery_costs"`
	NetRecovery        decimal.Decimal `json:"net_recovery" db:"net_recovery"`
}

// MonthlyTrend is a point-in-time snapshot of a month's collections, written
// by the trend worker so historical charts survive loan deletion.
type MonthlyTrend struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Month     time.Time       `json:"month" db:"month"`
	Collected decimal.Decimal `json:"collected" db:"collected"`
	Interest  decimal.Decimal `json:"interest" db:"interest"`
	Principal decimal.Decimal `json:"principal" db:"principal"`
	Fees      decimal.Decimal `json:"fees" db:"fees"`
	Escrow    decimal.Decimal `json:"escrow" db:"escrow"`
	Payments  int64           `json:"payments" db:"payments"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
