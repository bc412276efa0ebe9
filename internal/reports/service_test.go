package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the reports Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetRevenueSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RevenueSummary), args.Error(1)
}

func (m *MockRepository) GetEscrowSummary(ctx context.Context) (*EscrowSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EscrowSummary), args.Error(1)
}

func (m *MockRepository) GetPortfolioSummary(ctx context.Context, asOf time.Time) (*PortfolioSummary, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PortfolioSummary), args.Error(1)
}

func (m *MockRepository) GetDefaultSummary(ctx context.Context) (*DefaultSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DefaultSummary), args.Error(1)
}

func (m *MockRepository) ComputeMonthlyTrend(ctx context.Context, monthStart, monthEnd time.Time) (*MonthlyTrend, error) {
	args := m.Called(ctx, monthStart, monthEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MonthlyTrend), args.Error(1)
}

func (m *MockRepository) UpsertMonthlyTrend(ctx context.Context, trend *MonthlyTrend) error {
	args := m.Called(ctx, trend)
	return args.Error(0)
}

func (m *MockRepository) ListMonthlyTrends(ctx context.Context, months int) ([]*MonthlyTrend, error) {
	args := m.Called(ctx, months)
	return args.Get(0).([]*MonthlyTrend), args.Error(1)
}

func TestRevenueDefaultsToCurrentMonth(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	expected := &RevenueSummary{TotalCollected: decimal.RequireFromString("1200.00")}
	mockRepo.On("GetRevenueSummary", ctx, monthStart, monthStart.AddDate(0, 1, 0)).Return(expected, nil)

	summary, err := service.Revenue(ctx, time.Time{}, time.Time{})

	assert.NoError(t, err)
	assert.True(t, summary.TotalCollected.Equal(decimal.RequireFromString("1200.00")))
	mockRepo.AssertExpectations(t)
}

func TestRevenueRejectsInvertedRange(t *testing.T) {
	service := NewService(new(MockRepository), zap.NewNop())

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := service.Revenue(context.Background(), from, from.AddDate(0, -1, 0))

	assert.ErrorContains(t, err, "end must be after start")
}

func TestCaptureMonthlyTrendSnapsToMonthBounds(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	monthStart := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	trend := &MonthlyTrend{
		ID:        uuid.New(),
		Month:     monthStart,
		Collected: decimal.RequireFromString("4800.00"),
		Payments:  16,
	}
	mockRepo.On("ComputeMonthlyTrend", ctx, monthStart, monthStart.AddDate(0, 1, 0)).Return(trend, nil)
	mockRepo.On("UpsertMonthlyTrend", ctx, trend).Return(nil)

	captured, err := service.CaptureMonthlyTrend(ctx, time.Date(2026, 7, 19, 14, 30, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.Equal(t, monthStart, captured.Month)
	mockRepo.AssertExpectations(t)
}

func TestTrendsClampsMonths(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("ListMonthlyTrends", ctx, 12).Return([]*MonthlyTrend{}, nil)

	_, err := service.Trends(ctx, -3)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestExportWorkbook(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetPortfolioSummary", ctx, mock.AnythingOfType("time.Time")).Return(&PortfolioSummary{ActiveLoans: 3}, nil)
	mockRepo.On("GetRevenueSummary", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(&RevenueSummary{TotalCollected: decimal.RequireFromString("900.00")}, nil)
	mockRepo.On("ListMonthlyTrends", ctx, 24).Return([]*MonthlyTrend{
		{Month: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Collected: decimal.RequireFromString("4800.00")},
	}, nil)

	var buf bytes.Buffer
	err := service.ExportWorkbook(ctx, &buf, time.Time{}, time.Time{})

	assert.NoError(t, err)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}
