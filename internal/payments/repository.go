package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateTransaction marks a gateway webhook replay; the original
// payment already applied.
var ErrDuplicateTransaction = errors.New("gateway transaction already recorded")

// Repository handles payment persistence. Create runs inside the caller's
// loan-locking transaction.
type Repository interface {
	Create(tx *gorm.DB, payment *Payment) error
	GetByGatewayTransaction(ctx context.Context, transactionID string) (*Payment, error)
	ListByLoan(ctx context.Context, loanID uuid.UUID, limit, offset int) ([]*Payment, error)
}

// GormRepository implements Repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new payments repository.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(tx *gorm.DB, payment *Payment) error {
	if err := tx.Create(payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

func (r *GormRepository) GetByGatewayTransaction(ctx context.Context, transactionID string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("gateway_transaction_id = ?", transactionID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *GormRepository) ListByLoan(ctx context.Context, loanID uuid.UUID, limit, offset int) ([]*Payment, error) {
	var payments []*Payment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("paid_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
