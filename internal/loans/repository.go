package loans

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
)

// Repository defines loan data access. Create, GetForUpdate, Save, and
// DeleteWithPayments take the surrounding transaction: the payment flow holds
// a row lock across its read-modify-write, and loan writes commit atomically
// with the property-status flips they imply.
type Repository interface {
	Create(tx *gorm.DB, loan *Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	GetForUpdate(tx *gorm.DB, id uuid.UUID) (*Loan, error)
	Save(tx *gorm.DB, loan *Loan) error
	Update(ctx context.Context, loan *Loan) error
	List(ctx context.Context, filters *ListFilters) ([]*Loan, error)
	ListActive(ctx context.Context, limit, offset int) ([]*Loan, error)
	CreateDefaultRecord(tx *gorm.DB, record *DefaultRecord) error
	GetDefaultRecord(ctx context.Context, loanID uuid.UUID) (*DefaultRecord, error)
	SaveDefaultRecord(ctx context.Context, record *DefaultRecord) error
	DeleteWithPayments(tx *gorm.DB, id uuid.UUID) error
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ListFilters narrows loan listings. OverdueAsOf restricts to active loans
// whose next due date has passed the given instant.
type ListFilters struct {
	Status      *engine.LoanStatus
	CustomerKey *string
	OverdueAsOf *time.Time
	Page        int
	PageSize    int
}

// GormRepository implements Repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new loan repository.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(tx *gorm.DB, loan *Loan) error {
	if err := tx.Create(loan).Error; err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

func (r *GormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Loan, error) {
	var loan Loan
	err := r.db.WithContext(ctx).Preload("DefaultRecord").First(&loan, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("loan not found: %w", err)
	}
	return &loan, nil
}

// GetForUpdate loads a loan under a row lock. Two payments against the same
// loan serialize here; allocation reads the pre-payment balance.
func (r *GormRepository) GetForUpdate(tx *gorm.DB, id uuid.UUID) (*Loan, error) {
	var loan Loan
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&loan, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("loan not found: %w", err)
	}
	return &loan, nil
}

func (r *GormRepository) Save(tx *gorm.DB, loan *Loan) error {
	if err := tx.Save(loan).Error; err != nil {
		return fmt.Errorf("failed to save loan: %w", err)
	}
	return nil
}

func (r *GormRepository) Update(ctx context.Context, loan *Loan) error {
	return r.Save(r.db.WithContext(ctx), loan)
}

func (r *GormRepository) List(ctx context.Context, filters *ListFilters) ([]*Loan, error) {
	query := r.db.WithContext(ctx).Model(&Loan{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CustomerKey != nil {
		query = query.Where("customer_key = ?", *filters.CustomerKey)
	}
	if filters.OverdueAsOf != nil {
		query = query.Where("status = ? AND next_due_date < ?", engine.StatusActive, *filters.OverdueAsOf)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var loans []*Loan
	err := query.Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

func (r *GormRepository) ListActive(ctx context.Context, limit, offset int) ([]*Loan, error) {
	var loans []*Loan
	err := r.db.WithContext(ctx).
		Where("status = ?", engine.StatusActive).
		Order("next_due_date").
		Limit(limit).Offset(offset).
		Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active loans: %w", err)
	}
	return loans, nil
}

func (r *GormRepository) CreateDefaultRecord(tx *gorm.DB, record *DefaultRecord) error {
	if err := tx.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create default record: %w", err)
	}
	return nil
}

func (r *GormRepository) GetDefaultRecord(ctx context.Context, loanID uuid.UUID) (*DefaultRecord, error) {
	var record DefaultRecord
	err := r.db.WithContext(ctx).First(&record, "loan_id = ?", loanID).Error
	if err != nil {
		return nil, fmt.Errorf("default record not found: %w", err)
	}
	return &record, nil
}

func (r *GormRepository) SaveDefaultRecord(ctx context.Context, record *DefaultRecord) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to save default record: %w", err)
	}
	return nil
}

// DeleteWithPayments purges the loan, its payment history, and any default
// record inside the caller's transaction. Destructive and confirmed-only at
// the service boundary.
func (r *GormRepository) DeleteWithPayments(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Exec("DELETE FROM payments WHERE loan_id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to purge payment history: %w", err)
	}
	if err := tx.Where("loan_id = ?", id).Delete(&DefaultRecord{}).Error; err != nil {
		return fmt.Errorf("failed to purge default record: %w", err)
	}
	if err := tx.Delete(&Loan{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	return nil
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
