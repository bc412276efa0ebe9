package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
)

// MockRepository is a mock implementation of the notifications Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, alert *Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockRepository) ListUnacknowledged(ctx context.Context, limit int) ([]*Alert, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*Alert), args.Error(1)
}

func (m *MockRepository) Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockRepository) HasOpenAlert(ctx context.Context, loanID uuid.UUID, tier string) (bool, error) {
	args := m.Called(ctx, loanID, tier)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) PruneAcknowledged(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func TestRaiseAlertBroadcasts(t *testing.T) {
	mockRepo := new(MockRepository)
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	service := NewService(mockRepo, hub, zap.NewNop())
	ctx := context.Background()

	in := AlertInput{
		LoanID:      uuid.New(),
		PropertyID:  uuid.New(),
		CustomerKey: "cust-100",
		Tier:        engine.TierNoticeEligible,
		DaysOverdue: 31,
	}
	mockRepo.On("HasOpenAlert", ctx, in.LoanID, "notice_eligible").Return(false, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*notifications.Alert")).Return(nil)

	alert, err := service.Raise(ctx, in)

	assert.NoError(t, err)
	assert.NotNil(t, alert)
	assert.Equal(t, 31, alert.DaysOverdue)
	assert.Contains(t, alert.Message, "eligible for a default notice")
	mockRepo.AssertExpectations(t)
}

func TestRaiseAlertDedupes(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, NewHub(zap.NewNop()), zap.NewNop())
	ctx := context.Background()

	in := AlertInput{LoanID: uuid.New(), Tier: engine.TierLate, DaysOverdue: 3}
	mockRepo.On("HasOpenAlert", ctx, in.LoanID, string(engine.TierLate)).Return(true, nil)

	alert, err := service.Raise(ctx, in)

	assert.NoError(t, err)
	assert.Nil(t, alert)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPrune(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, NewHub(zap.NewNop()), zap.NewNop())
	ctx := context.Background()

	mockRepo.On("PruneAcknowledged", ctx, mock.AnythingOfType("time.Time")).Return(int64(4), nil)

	assert.NoError(t, service.Prune(ctx, 30*24*time.Hour))
	mockRepo.AssertExpectations(t)
}
