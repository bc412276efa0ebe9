package escrow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockRepository is a mock implementation of the escrow Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByProperty(ctx context.Context, propertyID uuid.UUID) (*Account, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockRepository) UpsertSchedule(ctx context.Context, propertyID uuid.UUID, annualTax, monthlyTax, monthlyHOA decimal.Decimal) (*Account, error) {
	args := m.Called(ctx, propertyID, annualTax, monthlyTax, monthlyHOA)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockRepository) Credit(tx *gorm.DB, propertyID uuid.UUID, tax, hoa decimal.Decimal) error {
	args := m.Called(tx, propertyID, tax, hoa)
	return args.Error(0)
}

func (m *MockRepository) RecordTaxPayout(ctx context.Context, propertyID uuid.UUID, amount decimal.Decimal) (*Account, error) {
	args := m.Called(ctx, propertyID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConfigureDerivesMonthlyPortion(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	propertyID := uuid.New()
	// 1400 / 12 = 116.666..., rounded half-up to cents.
	mockRepo.On("UpsertSchedule", ctx, propertyID, dec("1400.00"), dec("116.67"), dec("30.00")).
		Return(&Account{
			PropertyID:        propertyID,
			AnnualTaxAmount:   dec("1400.00"),
			MonthlyTaxPortion: dec("116.67"),
			MonthlyHOAFee:     dec("30.00"),
		}, nil)

	summary, err := service.Configure(ctx, propertyID, &ConfigureRequest{
		AnnualTaxAmount: "1400.00",
		MonthlyHOAFee:   "30.00",
	})

	assert.NoError(t, err)
	assert.True(t, summary.MonthlyTaxPortion.Equal(dec("116.67")))
	mockRepo.AssertExpectations(t)
}

func TestConfigureRejectsNegativeTax(t *testing.T) {
	service := NewService(new(MockRepository), zap.NewNop())

	_, err := service.Configure(context.Background(), uuid.New(), &ConfigureRequest{
		AnnualTaxAmount: "-100.00",
	})

	assert.ErrorContains(t, err, "must not be negative")
}

func TestGetAccountDerivesHeldFunds(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	propertyID := uuid.New()
	mockRepo.On("GetByProperty", ctx, propertyID).Return(&Account{
		PropertyID:   propertyID,
		TaxCollected: dec("700.00"),
		TaxPaidOut:   dec("450.00"),
		HOACollected: dec("180.00"),
	}, nil)

	summary, err := service.GetAccount(ctx, propertyID)

	assert.NoError(t, err)
	assert.True(t, summary.TaxHeld.Equal(dec("250.00")))
}

func TestMarkTaxesPaid(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	propertyID := uuid.New()
	mockRepo.On("RecordTaxPayout", ctx, propertyID, dec("450.00")).Return(&Account{
		PropertyID:   propertyID,
		TaxCollected: dec("700.00"),
		TaxPaidOut:   dec("450.00"),
	}, nil)

	summary, err := service.MarkTaxesPaid(ctx, propertyID, dec("450.00"))

	assert.NoError(t, err)
	assert.True(t, summary.TaxHeld.Equal(dec("250.00")))
	mockRepo.AssertExpectations(t)
}

func TestMarkTaxesPaidRejectsNonPositive(t *testing.T) {
	service := NewService(new(MockRepository), zap.NewNop())

	_, err := service.MarkTaxesPaid(context.Background(), uuid.New(), decimal.Zero)

	assert.ErrorContains(t, err, "must be positive")
}
