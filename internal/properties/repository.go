package properties

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines property data access. SetStatus takes the surrounding
// transaction: status flips ride inside the loan writes that cause them, so a
// failed loan write never strands the property in the wrong state.
type Repository interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*Property, error)
	SetStatus(tx *gorm.DB, id uuid.UUID, status PropertyStatus) error
}

// GormRepository implements Repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new property repository.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetProperty(ctx context.Context, id uuid.UUID) (*Property, error) {
	var property Property
	if err := r.db.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("property not found: %w", err)
	}
	return &property, nil
}

func (r *GormRepository) SetStatus(tx *gorm.DB, id uuid.UUID, status PropertyStatus) error {
	result := tx.Model(&Property{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update property status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("property %s not found", id)
	}
	return nil
}
