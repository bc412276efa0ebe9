package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
	"land-ledger/loan-portal/loan-portal-backend/internal/loans"
	"land-ledger/loan-portal/loan-portal-backend/internal/notifications"
)

// DelinquencyScanner walks the active loan book, assesses late fees on
// newly-overdue loans, and raises alerts for the dashboard.
type DelinquencyScanner struct {
	loanRepo    loans.Repository
	loanService *loans.Service
	alerts      *notifications.Service
	logger      *zap.Logger
	batchSize   int
}

// NewDelinquencyScanner creates a new scanner.
func NewDelinquencyScanner(loanRepo loans.Repository, loanService *loans.Service, alerts *notifications.Service, logger *zap.Logger, batchSize int) *DelinquencyScanner {
	if batchSize < 1 {
		batchSize = 200
	}
	return &DelinquencyScanner{
		loanRepo:    loanRepo,
		loanService: loanService,
		alerts:      alerts,
		logger:      logger,
		batchSize:   batchSize,
	}
}

// Scan processes every active loan once. Safe to re-run: fee assessment is
// once per delinquency episode and alerts dedupe per loan and tier.
func (s *DelinquencyScanner) Scan(ctx context.Context, now time.Time) error {
	var scanned, overdue, flagged int

	for offset := 0; ; offset += s.batchSize {
		batch, err := s.loanRepo.ListActive(ctx, s.batchSize, offset)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		for _, loan := range batch {
			scanned++
			d := engine.Classify(loan.NextDueDate, now, loan.AlertsDisabled, loan.Status, loan.NoticeSentAt != nil)
			if !d.IsOverdue {
				continue
			}
			overdue++

			if loan.LateFeeOwed.IsZero() && loan.LateFeeFlaggedAt == nil {
				if err := s.loanService.FlagLateFee(ctx, loan, now); err != nil {
					s.logger.Error("Failed to flag late fee",
						zap.String("loan_id", loan.ID.String()), zap.Error(err))
					continue
				}
				flagged++
			}

			if _, err := s.alerts.Raise(ctx, notifications.AlertInput{
				LoanID:      loan.ID,
				PropertyID:  loan.PropertyID,
				CustomerKey: loan.CustomerKey,
				Tier:        d.Tier,
				DaysOverdue: d.DaysOverdue,
			}); err != nil {
				s.logger.Error("Failed to raise alert",
					zap.String("loan_id", loan.ID.String()), zap.Error(err))
			}
		}

		if len(batch) < s.batchSize {
			break
		}
	}

	s.logger.Info("Delinquency scan complete",
		zap.Int("scanned", scanned),
		zap.Int("overdue", overdue),
		zap.Int("late_fees_flagged", flagged))
	return nil
}
