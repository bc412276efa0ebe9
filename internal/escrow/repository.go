package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines escrow data access. Credit takes the surrounding
// payment transaction so counter updates commit atomically with the loan.
type Repository interface {
	GetByProperty(ctx context.Context, propertyID uuid.UUID) (*Account, error)
	UpsertSchedule(ctx context.Context, propertyID uuid.UUID, annualTax, monthlyTax, monthlyHOA decimal.Decimal) (*Account, error)
	Credit(tx *gorm.DB, propertyID uuid.UUID, tax, hoa decimal.Decimal) error
	RecordTaxPayout(ctx context.Context, propertyID uuid.UUID, amount decimal.Decimal) (*Account, error)
}

// GormRepository implements Repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new escrow repository.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetByProperty(ctx context.Context, propertyID uuid.UUID) (*Account, error) {
	var account Account
	if err := r.db.WithContext(ctx).First(&account, "property_id = ?", propertyID).Error; err != nil {
		return nil, fmt.Errorf("escrow account not found for property %s: %w", propertyID, err)
	}
	return &account, nil
}

func (r *GormRepository) UpsertSchedule(ctx context.Context, propertyID uuid.UUID, annualTax, monthlyTax, monthlyHOA decimal.Decimal) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&account, "property_id = ?", propertyID).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			account = Account{ID: uuid.New(), PropertyID: propertyID}
		}
		account.AnnualTaxAmount = annualTax
		account.MonthlyTaxPortion = monthlyTax
		account.MonthlyHOAFee = monthlyHOA
		return tx.Save(&account).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert escrow schedule: %w", err)
	}
	return &account, nil
}

func (r *GormRepository) Credit(tx *gorm.DB, propertyID uuid.UUID, tax, hoa decimal.Decimal) error {
	if tax.IsZero() && hoa.IsZero() {
		return nil
	}
	result := tx.Model(&Account{}).Where("property_id = ?", propertyID).Updates(map[string]any{
		"tax_collected": gorm.Expr("tax_collected + ?", tax),
		"hoa_collected": gorm.Expr("hoa_collected + ?", hoa),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to credit escrow counters: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no escrow account for property %s", propertyID)
	}
	return nil
}

func (r *GormRepository) RecordTaxPayout(ctx context.Context, propertyID uuid.UUID, amount decimal.Decimal) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, "property_id = ?", propertyID).Error; err != nil {
			return fmt.Errorf("escrow account not found: %w", err)
		}
		account.TaxPaidOut = account.TaxPaidOut.Add(amount)
		return tx.Save(&account).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}
