package settings

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeePolicy is the singleton business-policy record the engine's callers
// feed into allocation and delinquency handling. Amounts here are
// configuration inputs, not engine logic.
type FeePolicy struct {
	ID uint `json:"-" gorm:"primary_key"`

	// LateFee is assessed once when a loan crosses into overdue.
	LateFee decimal.Decimal `json:"late_fee" gorm:"type:decimal(10,2);not null"`

	// NoticeFee is the fixed charge recorded when a default/cure notice is sent.
	NoticeFee decimal.Decimal `json:"notice_fee" gorm:"type:decimal(10,2);not null"`

	// MinMonthlyPayment is the floor for a target monthly payment at origination.
	MinMonthlyPayment decimal.Decimal `json:"min_monthly_payment" gorm:"type:decimal(10,2);not null"`

	// ProcessingFeePct is the gateway convenience fee percentage.
	ProcessingFeePct decimal.Decimal `json:"processing_fee_pct" gorm:"type:decimal(5,2);not null"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (FeePolicy) TableName() string { return "fee_policies" }
