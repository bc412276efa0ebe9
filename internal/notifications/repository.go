package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles alert persistence.
type Repository interface {
	Create(ctx context.Context, alert *Alert) error
	ListUnacknowledged(ctx context.Context, limit int) ([]*Alert, error)
	Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error
	HasOpenAlert(ctx context.Context, loanID uuid.UUID, tier string) (bool, error)
	PruneAcknowledged(ctx context.Context, olderThan time.Time) (int64, error)
}

// GormRepository implements Repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new notifications repository.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, alert *Alert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *GormRepository) ListUnacknowledged(ctx context.Context, limit int) ([]*Alert, error) {
	var alerts []*Alert
	err := r.db.WithContext(ctx).
		Where("acknowledged_at IS NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *GormRepository) Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&Alert{}).
		Where("id = ? AND acknowledged_at IS NULL", id).
		Update("acknowledged_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepository) HasOpenAlert(ctx context.Context, loanID uuid.UUID, tier string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Alert{}).
		Where("loan_id = ? AND tier = ? AND acknowledged_at IS NULL", loanID, tier).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check open alerts: %w", err)
	}
	return count > 0, nil
}

func (r *GormRepository) PruneAcknowledged(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("acknowledged_at IS NOT NULL AND acknowledged_at < ?", olderThan).
		Delete(&Alert{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune alerts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
