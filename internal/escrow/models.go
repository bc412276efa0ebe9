package escrow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account accumulates, per property, the tax and HOA amounts collected with
// payments versus disbursed to the taxing authority. Collected funds are a
// pass-through liability, not income; reporting must keep them out of
// taxable revenue.
type Account struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PropertyID uuid.UUID `json:"property_id" gorm:"type:uuid;not null;uniqueIndex"`

	// Schedule.
	AnnualTaxAmount   decimal.Decimal `json:"annual_tax_amount" gorm:"type:decimal(12,2);default:0"`
	MonthlyTaxPortion decimal.Decimal `json:"monthly_tax_portion" gorm:"type:decimal(12,2);default:0"`
	MonthlyHOAFee     decimal.Decimal `json:"monthly_hoa_fee" gorm:"type:decimal(12,2);default:0"`

	// Cumulative counters. Collected counters move only inside a payment
	// transaction; TaxPaidOut moves only via the taxes-paid admin action.
	TaxCollected decimal.Decimal `json:"tax_collected" gorm:"type:decimal(12,2);default:0"`
	TaxPaidOut   decimal.Decimal `json:"tax_paid_out" gorm:"type:decimal(12,2);default:0"`
	HOACollected decimal.Decimal `json:"hoa_collected" gorm:"type:decimal(12,2);default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Account) TableName() string { return "escrow_accounts" }
