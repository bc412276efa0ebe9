package workers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
	"land-ledger/loan-portal/loan-portal-backend/internal/loans"
	"land-ledger/loan-portal/loan-portal-backend/internal/notifications"
	"land-ledger/loan-portal/loan-portal-backend/internal/properties"
	"land-ledger/loan-portal/loan-portal-backend/internal/settings"
)

// MockLoanRepository is a mock implementation of loans.Repository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(tx *gorm.DB, loan *loans.Loan) error {
	args := m.Called(tx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*loans.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loans.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetForUpdate(tx *gorm.DB, id uuid.UUID) (*loans.Loan, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loans.Loan), args.Error(1)
}

func (m *MockLoanRepository) Save(tx *gorm.DB, loan *loans.Loan) error {
	args := m.Called(tx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *loans.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) List(ctx context.Context, filters *loans.ListFilters) ([]*loans.Loan, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*loans.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListActive(ctx context.Context, limit, offset int) ([]*loans.Loan, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*loans.Loan), args.Error(1)
}

func (m *MockLoanRepository) CreateDefaultRecord(tx *gorm.DB, record *loans.DefaultRecord) error {
	args := m.Called(tx, record)
	return args.Error(0)
}

func (m *MockLoanRepository) GetDefaultRecord(ctx context.Context, loanID uuid.UUID) (*loans.DefaultRecord, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loans.DefaultRecord), args.Error(1)
}

func (m *MockLoanRepository) SaveDefaultRecord(ctx context.Context, record *loans.DefaultRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockLoanRepository) DeleteWithPayments(tx *gorm.DB, id uuid.UUID) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

func (m *MockLoanRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}

// MockPropertyRepository is a mock implementation of properties.Repository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) GetProperty(ctx context.Context, id uuid.UUID) (*properties.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*properties.Property), args.Error(1)
}

func (m *MockPropertyRepository) SetStatus(tx *gorm.DB, id uuid.UUID, status properties.PropertyStatus) error {
	args := m.Called(tx, id, status)
	return args.Error(0)
}

// MockAlertRepository is a mock implementation of notifications.Repository
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Create(ctx context.Context, alert *notifications.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) ListUnacknowledged(ctx context.Context, limit int) ([]*notifications.Alert, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*notifications.Alert), args.Error(1)
}

func (m *MockAlertRepository) Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockAlertRepository) HasOpenAlert(ctx context.Context, loanID uuid.UUID, tier string) (bool, error) {
	args := m.Called(ctx, loanID, tier)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) PruneAcknowledged(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockPolicyRepository is a mock implementation of settings.Repository
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) GetPolicy(ctx context.Context) (*settings.FeePolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.FeePolicy), args.Error(1)
}

func (m *MockPolicyRepository) SavePolicy(ctx context.Context, policy *settings.FeePolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func TestDelinquencyScan(t *testing.T) {
	mockLoans := new(MockLoanRepository)
	mockProps := new(MockPropertyRepository)
	mockAlerts := new(MockAlertRepository)
	mockPolicy := new(MockPolicyRepository)
	logger := zap.NewNop()

	policyService := settings.NewService(mockPolicy, logger)
	loanService := loans.NewService(mockLoans, mockProps, policyService, logger)
	alertService := notifications.NewService(mockAlerts, notifications.NewHub(logger), logger)
	scanner := NewDelinquencyScanner(mockLoans, loanService, alertService, logger, 200)

	ctx := context.Background()
	now := time.Date(2026, 3, 25, 6, 0, 0, 0, time.UTC)

	overdueLoan := &loans.Loan{
		ID:               uuid.New(),
		PropertyID:       uuid.New(),
		CustomerKey:      "cust-late",
		MonthlyPayment:   decimal.RequireFromString("300.00"),
		NextDueDate:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		BalanceRemaining: decimal.RequireFromString("5000.00"),
		Status:           engine.StatusActive,
	}
	currentLoan := &loans.Loan{
		ID:               uuid.New(),
		PropertyID:       uuid.New(),
		CustomerKey:      "cust-current",
		MonthlyPayment:   decimal.RequireFromString("300.00"),
		NextDueDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		BalanceRemaining: decimal.RequireFromString("5000.00"),
		Status:           engine.StatusActive,
	}

	mockLoans.On("ListActive", ctx, 200, 0).Return([]*loans.Loan{overdueLoan, currentLoan}, nil)
	mockPolicy.On("GetPolicy", ctx).Return(&settings.FeePolicy{
		LateFee:           decimal.RequireFromString("25.00"),
		NoticeFee:         decimal.RequireFromString("75.00"),
		MinMonthlyPayment: decimal.RequireFromString("50.00"),
	}, nil)
	mockLoans.On("Update", ctx, overdueLoan).Return(nil)
	mockAlerts.On("HasOpenAlert", ctx, overdueLoan.ID, string(engine.TierLateWaivable)).Return(false, nil)
	mockAlerts.On("Create", ctx, mock.AnythingOfType("*notifications.Alert")).Return(nil)

	err := scanner.Scan(ctx, now)

	assert.NoError(t, err)
	assert.True(t, overdueLoan.LateFeeOwed.Equal(decimal.RequireFromString("25.00")))
	assert.NotNil(t, overdueLoan.LateFeeFlaggedAt)
	assert.True(t, currentLoan.LateFeeOwed.IsZero())
	mockLoans.AssertExpectations(t)
	mockAlerts.AssertExpectations(t)
}

func TestDelinquencyScanSkipsAlertDisabledLoans(t *testing.T) {
	mockLoans := new(MockLoanRepository)
	mockAlerts := new(MockAlertRepository)
	mockPolicy := new(MockPolicyRepository)
	logger := zap.NewNop()

	policyService := settings.NewService(mockPolicy, logger)
	loanService := loans.NewService(mockLoans, new(MockPropertyRepository), policyService, logger)
	alertService := notifications.NewService(mockAlerts, notifications.NewHub(logger), logger)
	scanner := NewDelinquencyScanner(mockLoans, loanService, alertService, logger, 200)

	ctx := context.Background()
	muted := &loans.Loan{
		ID:               uuid.New(),
		PropertyID:       uuid.New(),
		MonthlyPayment:   decimal.RequireFromString("300.00"),
		NextDueDate:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		BalanceRemaining: decimal.RequireFromString("5000.00"),
		Status:           engine.StatusActive,
		AlertsDisabled:   true,
	}
	mockLoans.On("ListActive", ctx, 200, 0).Return([]*loans.Loan{muted}, nil)

	err := scanner.Scan(ctx, time.Date(2026, 3, 25, 6, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.True(t, muted.LateFeeOwed.IsZero())
	mockAlerts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
