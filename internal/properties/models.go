package properties

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyStatus is the sale state of a property.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusSold      PropertyStatus = "sold"
)

// Property is the parcel a loan finances. Catalog CRUD lives elsewhere; this
// service only reads properties and flips their status when a loan is
// originated, defaulted, or deleted.
type Property struct {
	ID      uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Address string         `json:"address" gorm:"not null"`
	City    string         `json:"city"`
	State   string         `json:"state"`
	Zip     string         `json:"zip"`
	Status  PropertyStatus `json:"status" gorm:"default:'available';index"`

	// AcquisitionCost feeds the net-recovery computation on default.
	AcquisitionCost decimal.Decimal `json:"acquisition_cost" gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Property) TableName() string { return "properties" }
