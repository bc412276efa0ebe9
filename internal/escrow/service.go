package escrow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// Service provides escrow business logic: reading per-property balances and
// recording administrative tax disbursements.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new escrow service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AccountSummary is the per-property escrow view: schedule, counters, and
// the funds still held for each bucket.
type AccountSummary struct {
	Account
	TaxHeld decimal.Decimal `json:"tax_held"`
}

// GetAccount returns the escrow account for a property with its held-funds
// derivation.
func (s *Service) GetAccount(ctx context.Context, propertyID uuid.UUID) (*AccountSummary, error) {
	account, err := s.repo.GetByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return &AccountSummary{
		Account: *account,
		TaxHeld: account.TaxCollected.Sub(account.TaxPaidOut),
	}, nil
}

// ConfigureRequest sets a property's escrow schedule. The monthly tax
// portion derives from the annual amount; the HOA fee is set directly.
type ConfigureRequest struct {
	AnnualTaxAmount string `json:"annual_tax_amount" binding:"required"`
	MonthlyHOAFee   string `json:"monthly_hoa_fee"`
}

// Configure creates or updates the escrow schedule for a property.
func (s *Service) Configure(ctx context.Context, propertyID uuid.UUID, req *ConfigureRequest) (*AccountSummary, error) {
	annualTax, err := money.Parse(req.AnnualTaxAmount)
	if err != nil {
		return nil, err
	}
	if annualTax.IsNegative() {
		return nil, fmt.Errorf("annual tax amount must not be negative")
	}

	monthlyHOA := decimal.Zero
	if req.MonthlyHOAFee != "" {
		if monthlyHOA, err = money.Parse(req.MonthlyHOAFee); err != nil {
			return nil, err
		}
		if monthlyHOA.IsNegative() {
			return nil, fmt.Errorf("monthly HOA fee must not be negative")
		}
	}

	monthlyTax := money.Cents(annualTax.Div(decimal.NewFromInt(12)))
	account, err := s.repo.UpsertSchedule(ctx, propertyID, annualTax, monthlyTax, monthlyHOA)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Escrow schedule configured",
		zap.String("property_id", propertyID.String()),
		zap.String("monthly_tax_portion", money.Format(account.MonthlyTaxPortion)),
		zap.String("monthly_hoa_fee", money.Format(account.MonthlyHOAFee)))

	return &AccountSummary{
		Account: *account,
		TaxHeld: account.TaxCollected.Sub(account.TaxPaidOut),
	}, nil
}

// MarkTaxesPaid records an administrative disbursement of collected tax
// funds. The payment engine never touches tax_paid_out.
func (s *Service) MarkTaxesPaid(ctx context.Context, propertyID uuid.UUID, amount decimal.Decimal) (*AccountSummary, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("tax payout amount must be positive")
	}
	amount = money.Cents(amount)

	account, err := s.repo.RecordTaxPayout(ctx, propertyID, amount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Recorded property tax payout",
		zap.String("property_id", propertyID.String()),
		zap.String("amount", money.Format(amount)),
		zap.String("tax_paid_out", money.Format(account.TaxPaidOut)))

	return &AccountSummary{
		Account: *account,
		TaxHeld: account.TaxCollected.Sub(account.TaxPaidOut),
	}, nil
}
