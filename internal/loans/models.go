package loans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
)

// Loan is the persisted land-contract loan record. The balance only ever
// moves down; fee accruals are tracked in the owed columns and never folded
// back into the principal balance.
type Loan struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PropertyID  uuid.UUID `json:"property_id" gorm:"type:uuid;not null;index"`
	CustomerKey string    `json:"customer_key" gorm:"not null;index"`

	// Origination terms.
	PurchasePrice     decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2);not null"`
	DownPayment       decimal.Decimal `json:"down_payment" gorm:"type:decimal(12,2);default:0"`
	ProcessingFee     decimal.Decimal `json:"processing_fee" gorm:"type:decimal(12,2);default:0"`
	LoanAmount        decimal.Decimal `json:"loan_amount" gorm:"type:decimal(12,2);not null"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" gorm:"type:decimal(6,3);not null"`
	TermMonths        int             `json:"term_months" gorm:"not null"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment" gorm:"type:decimal(12,2);not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`

	// Schedule.
	DueDay      int       `json:"due_day" gorm:"not null"` // 1 or 15
	NextDueDate time.Time `json:"next_due_date" gorm:"type:date;not null;index"`

	// Live state.
	BalanceRemaining decimal.Decimal   `json:"balance_remaining" gorm:"type:decimal(12,2);not null"`
	TotalCollected   decimal.Decimal   `json:"total_collected" gorm:"type:decimal(12,2);default:0"`
	Status           engine.LoanStatus `json:"status" gorm:"default:'active';index"`
	AlertsDisabled   bool              `json:"alerts_disabled" gorm:"default:false"`

	// Outstanding flagged fees, cleared as payments satisfy them.
	LateFeeOwed   decimal.Decimal `json:"late_fee_owed" gorm:"type:decimal(10,2);default:0"`
	NoticeFeeOwed decimal.Decimal `json:"notice_fee_owed" gorm:"type:decimal(10,2);default:0"`
	PostalFeeOwed decimal.Decimal `json:"postal_fee_owed" gorm:"type:decimal(10,2);default:0"`

	// Delinquency bookkeeping.
	NoticeSentAt    *time.Time `json:"notice_sent_at"`
	LateFeeFlaggedAt *time.Time `json:"late_fee_flagged_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	DefaultRecord *DefaultRecord `json:"default_record,omitempty" gorm:"foreignKey:LoanID"`
}

func (Loan) TableName() string { return "loans" }

// DefaultRecord captures the financial outcome of an administrative default.
// Created once when the loan transitions to defaulted; immutable once the
// loan is archived.
type DefaultRecord struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LoanID uuid.UUID `json:"loan_id" gorm:"type:uuid;not null;uniqueIndex"`

	DefaultedAt     time.Time       `json:"defaulted_at" gorm:"not null"`
	TotalCollected  decimal.Decimal `json:"total_collected" gorm:"type:decimal(12,2);not null"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost" gorm:"type:decimal(12,2);not null"`
	RecoveryCosts   decimal.Decimal `json:"recovery_costs" gorm:"type:decimal(12,2);not null"`
	NetRecovery     decimal.Decimal `json:"net_recovery" gorm:"type:decimal(12,2);not null"`
	BalanceWrittenOff decimal.Decimal `json:"balance_written_off" gorm:"type:decimal(12,2);not null"`

	Notes    string         `json:"notes"`
	Metadata datatypes.JSON `json:"metadata" gorm:"default:'{}'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (DefaultRecord) TableName() string { return "default_records" }

// LoanDetail is a loan plus its derived, never-persisted delinquency state.
type LoanDetail struct {
	Loan        Loan               `json:"loan"`
	Delinquency engine.Delinquency `json:"delinquency"`
	CureAmount  decimal.Decimal    `json:"cure_amount"`
}
