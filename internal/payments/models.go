package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment is an applied payment with its full allocation breakdown. Rows are
// immutable once written; corrections happen through new activity, not edits.
type Payment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LoanID     uuid.UUID `json:"loan_id" gorm:"type:uuid;not null;index"`
	PropertyID uuid.UUID `json:"property_id" gorm:"type:uuid;not null;index"`

	Amount decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method string          `json:"method" gorm:"type:varchar(20);not null"`
	PaidAt time.Time       `json:"paid_at" gorm:"not null;index"`

	// Allocation buckets, in application order.
	NoticeFee     decimal.Decimal `json:"notice_fee" gorm:"type:decimal(12,2);default:0"`
	PostalFee     decimal.Decimal `json:"postal_fee" gorm:"type:decimal(12,2);default:0"`
	LateFee       decimal.Decimal `json:"late_fee" gorm:"type:decimal(12,2);default:0"`
	ProcessingFee decimal.Decimal `json:"processing_fee" gorm:"type:decimal(12,2);default:0"`
	Interest      decimal.Decimal `json:"interest" gorm:"type:decimal(12,2);default:0"`
	TaxEscrow     decimal.Decimal `json:"tax_escrow" gorm:"type:decimal(12,2);default:0"`
	HOAEscrow     decimal.Decimal `json:"hoa_escrow" gorm:"type:decimal(12,2);default:0"`
	Principal     decimal.Decimal `json:"principal" gorm:"type:decimal(12,2);default:0"`

	BalanceAfter decimal.Decimal `json:"balance_after" gorm:"type:decimal(12,2);not null"`
	DueDateAfter time.Time       `json:"due_date_after" gorm:"not null"`

	// GatewayTransactionID dedupes webhook retries; null for manual entries.
	GatewayTransactionID *string        `json:"gateway_transaction_id,omitempty" gorm:"type:varchar(100);uniqueIndex"`
	RecordedBy           string         `json:"recorded_by,omitempty" gorm:"type:varchar(100)"`
	Metadata             datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
