package settings

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"land-ledger/loan-portal/loan-portal-backend/internal/config"
	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// Service provides fee-policy access for the loan and payment services and
// the admin settings endpoints.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new settings service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Seed writes the configured defaults if no policy record exists yet.
func (s *Service) Seed(ctx context.Context, defaults config.PolicyConfig) error {
	if _, err := s.repo.GetPolicy(ctx); err == nil {
		return nil
	}

	lateFee, err := money.Parse(defaults.LateFee)
	if err != nil {
		return fmt.Errorf("invalid late fee default: %w", err)
	}
	noticeFee, err := money.Parse(defaults.NoticeFee)
	if err != nil {
		return fmt.Errorf("invalid notice fee default: %w", err)
	}
	minPayment, err := money.Parse(defaults.MinMonthlyPayment)
	if err != nil {
		return fmt.Errorf("invalid minimum payment default: %w", err)
	}

	policy := &FeePolicy{
		LateFee:           lateFee,
		NoticeFee:         noticeFee,
		MinMonthlyPayment: minPayment,
		ProcessingFeePct:  decimal.NewFromFloat(defaults.ProcessingFeePct).Round(2),
	}
	if err := s.repo.SavePolicy(ctx, policy); err != nil {
		return err
	}

	s.logger.Info("Seeded fee policy defaults",
		zap.String("late_fee", money.Format(policy.LateFee)),
		zap.String("notice_fee", money.Format(policy.NoticeFee)))
	return nil
}

// GetPolicy returns the current fee policy.
func (s *Service) GetPolicy(ctx context.Context) (*FeePolicy, error) {
	return s.repo.GetPolicy(ctx)
}

// UpdatePolicyRequest carries admin edits to the fee policy.
type UpdatePolicyRequest struct {
	LateFee           *string `json:"late_fee"`
	NoticeFee         *string `json:"notice_fee"`
	MinMonthlyPayment *string `json:"min_monthly_payment"`
	ProcessingFeePct  *string `json:"processing_fee_pct"`
}

// UpdatePolicy applies the provided fields to the stored policy.
func (s *Service) UpdatePolicy(ctx context.Context, req *UpdatePolicyRequest) (*FeePolicy, error) {
	policy, err := s.repo.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}

	setAmount := func(dst *decimal.Decimal, raw *string, field string) error {
		if raw == nil {
			return nil
		}
		amount, err := money.Parse(*raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
		if amount.IsNegative() {
			return fmt.Errorf("%s must not be negative", field)
		}
		*dst = amount
		return nil
	}

	if err := setAmount(&policy.LateFee, req.LateFee, "late_fee"); err != nil {
		return nil, err
	}
	if err := setAmount(&policy.NoticeFee, req.NoticeFee, "notice_fee"); err != nil {
		return nil, err
	}
	if err := setAmount(&policy.MinMonthlyPayment, req.MinMonthlyPayment, "min_monthly_payment"); err != nil {
		return nil, err
	}
	if err := setAmount(&policy.ProcessingFeePct, req.ProcessingFeePct, "processing_fee_pct"); err != nil {
		return nil, err
	}

	if err := s.repo.SavePolicy(ctx, policy); err != nil {
		return nil, err
	}

	s.logger.Info("Fee policy updated",
		zap.String("late_fee", money.Format(policy.LateFee)),
		zap.String("notice_fee", money.Format(policy.NoticeFee)),
		zap.String("min_monthly_payment", money.Format(policy.MinMonthlyPayment)))
	return policy, nil
}
