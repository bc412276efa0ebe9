package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
)

// Service raises delinquency alerts, persisting them and pushing them to
// connected dashboard clients.
type Service struct {
	repo   Repository
	hub    *Hub
	logger *zap.Logger
}

// NewService creates a new notifications service.
func NewService(repo Repository, hub *Hub, logger *zap.Logger) *Service {
	return &Service{repo: repo, hub: hub, logger: logger}
}

// AlertInput identifies the loan and its delinquency state for a new alert.
type AlertInput struct {
	LoanID      uuid.UUID
	PropertyID  uuid.UUID
	CustomerKey string
	Tier        engine.FeeTier
	DaysOverdue int
}

// Raise creates an alert unless an unacknowledged one for the same loan and
// tier is already open, so the daily scan does not stack duplicates.
func (s *Service) Raise(ctx context.Context, in AlertInput) (*Alert, error) {
	open, err := s.repo.HasOpenAlert(ctx, in.LoanID, string(in.Tier))
	if err != nil {
		return nil, err
	}
	if open {
		return nil, nil
	}

	alert := &Alert{
		ID:          uuid.New(),
		LoanID:      in.LoanID,
		PropertyID:  in.PropertyID,
		CustomerKey: in.CustomerKey,
		Tier:        in.Tier,
		DaysOverdue: in.DaysOverdue,
		Message:     alertMessage(in),
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.hub.Broadcast(Message{
		Type:      "delinquency_alert",
		Payload:   alert,
		Timestamp: alert.CreatedAt,
	})

	s.logger.Info("Delinquency alert raised",
		zap.String("loan_id", in.LoanID.String()),
		zap.String("tier", string(in.Tier)),
		zap.Int("days_overdue", in.DaysOverdue))
	return alert, nil
}

// List returns open alerts, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*Alert, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.repo.ListUnacknowledged(ctx, limit)
}

// Acknowledge closes an alert.
func (s *Service) Acknowledge(ctx context.Context, id uuid.UUID) error {
	return s.repo.Acknowledge(ctx, id, time.Now())
}

// Prune removes acknowledged alerts older than the retention window.
func (s *Service) Prune(ctx context.Context, retention time.Duration) error {
	pruned, err := s.repo.PruneAcknowledged(ctx, time.Now().Add(-retention))
	if err != nil {
		return err
	}
	if pruned > 0 {
		s.logger.Info("Pruned acknowledged alerts", zap.Int64("count", pruned))
	}
	return nil
}

func alertMessage(in AlertInput) string {
	switch in.Tier {
	case engine.TierNoticeEligible:
		return fmt.Sprintf("Loan for %s is %d days overdue and eligible for a default notice", in.CustomerKey, in.DaysOverdue)
	default:
		return fmt.Sprintf("Loan for %s is %d days overdue", in.CustomerKey, in.DaysOverdue)
	}
}
