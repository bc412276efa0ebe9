package reports

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service provides portfolio reporting and trend snapshots.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new reports service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Revenue returns collections between from and to (to exclusive). A zero
// range defaults to the current calendar month.
func (s *Service) Revenue(ctx context.Context, from, to time.Time) (*RevenueSummary, error) {
	if from.IsZero() || to.IsZero() {
		now := time.Now().UTC()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("report range end must be after start")
	}
	return s.repo.GetRevenueSummary(ctx, from, to)
}

// Escrow returns the aggregate escrow position.
func (s *Service) Escrow(ctx context.Context) (*EscrowSummary, error) {
	return s.repo.GetEscrowSummary(ctx)
}

// Portfolio returns the loan book summary as of now.
func (s *Service) Portfolio(ctx context.Context) (*PortfolioSummary, error) {
	return s.repo.GetPortfolioSummary(ctx, time.Now().UTC())
}

// Defaults returns the aggregate default-resolution summary.
func (s *Service) Defaults(ctx context.Context) (*DefaultSummary, error) {
	return s.repo.GetDefaultSummary(ctx)
}

// Trends returns up to months of monthly snapshots, newest first.
func (s *Service) Trends(ctx context.Context, months int) ([]*MonthlyTrend, error) {
	if months < 1 || months > 120 {
		months = 12
	}
	return s.repo.ListMonthlyTrends(ctx, months)
}

// CaptureMonthlyTrend snapshots the month containing the given time. The
// worker calls it for the previous month; re-running replaces the snapshot.
func (s *Service) CaptureMonthlyTrend(ctx context.Context, anyDay time.Time) (*MonthlyTrend, error) {
	monthStart := time.Date(anyDay.Year(), anyDay.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	trend, err := s.repo.ComputeMonthlyTrend(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertMonthlyTrend(ctx, trend); err != nil {
		return nil, err
	}

	s.logger.Info("Monthly trend captured",
		zap.Time("month", trend.Month),
		zap.Int64("payments", trend.Payments))
	return trend, nil
}
