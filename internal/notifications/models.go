package notifications

import (
	"time"

	"github.com/google/uuid"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
)

// Alert is a persisted delinquency alert raised by the scan worker. Alerts
// stay visible until an admin acknowledges them.
type Alert struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LoanID      uuid.UUID       `json:"loan_id" gorm:"type:uuid;not null;index"`
	PropertyID  uuid.UUID       `json:"property_id" gorm:"type:uuid;not null"`
	CustomerKey string          `json:"customer_key" gorm:"type:varchar(100)"`
	Tier        engine.FeeTier  `json:"tier" gorm:"type:varchar(20);not null"`
	DaysOverdue int             `json:"days_overdue" gorm:"not null"`
	Message     string          `json:"message" gorm:"type:text"`

	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TableName specifies the table name for Alert
func (Alert) TableName() string {
	return "delinquency_alerts"
}

// Message is the envelope pushed to connected dashboard clients.
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
