package settings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository handles fee-policy persistence.
type Repository interface {
	GetPolicy(ctx context.Context) (*FeePolicy, error)
	SavePolicy(ctx context.Context, policy *FeePolicy) error
}

// GormRepository implements Repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetPolicy(ctx context.Context) (*FeePolicy, error) {
	var policy FeePolicy
	err := r.db.WithContext(ctx).Order("id").First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fee policy not seeded: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load fee policy: %w", err)
	}
	return &policy, nil
}

func (r *GormRepository) SavePolicy(ctx context.Context, policy *FeePolicy) error {
	if err := r.db.WithContext(ctx).Save(policy).Error; err != nil {
		return fmt.Errorf("failed to save fee policy: %w", err)
	}
	return nil
}
