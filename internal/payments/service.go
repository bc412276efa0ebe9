package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
	"land-ledger/loan-portal/loan-portal-backend/internal/escrow"
	"land-ledger/loan-portal/loan-portal-backend/internal/loans"
	"land-ledger/loan-portal/loan-portal-backend/internal/settings"
	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// Service applies payments against loans. Each application locks the loan
// row for the read-allocate-write cycle, so concurrent payments on the same
// loan serialize.
type Service struct {
	repo       Repository
	loanRepo   loans.Repository
	escrowRepo escrow.Repository
	policy     *settings.Service
	logger     *zap.Logger
}

// NewService creates a new payments service.
func NewService(repo Repository, loanRepo loans.Repository, escrowRepo escrow.Repository, policy *settings.Service, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		loanRepo:   loanRepo,
		escrowRepo: escrowRepo,
		policy:     policy,
		logger:     logger,
	}
}

// GatewayPaymentRequest is the payload delivered by the card gateway's
// completion webhook.
type GatewayPaymentRequest struct {
	LoanID        uuid.UUID `json:"loan_id" binding:"required"`
	Amount        string    `json:"amount" binding:"required"`
	TransactionID string    `json:"transaction_id" binding:"required"`
	PaidAt        time.Time `json:"paid_at"`
}

// ManualPaymentRequest records an offline payment entered by an admin.
type ManualPaymentRequest struct {
	LoanID     uuid.UUID `json:"loan_id" binding:"required"`
	Amount     string    `json:"amount" binding:"required"`
	Method     string    `json:"method" binding:"required"`
	PaidAt     time.Time `json:"paid_at"`
	RecordedBy string    `json:"recorded_by"`
}

// RecordGateway applies a gateway payment. The transaction ID makes webhook
// delivery idempotent: a replay returns the originally recorded payment.
func (s *Service) RecordGateway(ctx context.Context, req *GatewayPaymentRequest) (*Payment, error) {
	existing, err := s.repo.GetByGatewayTransaction(ctx, req.TransactionID)
	if err == nil {
		s.logger.Info("Gateway webhook replay ignored",
			zap.String("transaction_id", req.TransactionID),
			zap.String("payment_id", existing.ID.String()))
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		// A transient lookup failure must not be mistaken for a fresh
		// transaction; the gateway will redeliver.
		return nil, fmt.Errorf("failed to check gateway transaction: %w", err)
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, err
	}

	policy, err := s.policy.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}
	// The gateway surcharge rides on top of the payment and is collected
	// out of it before interest.
	processingFee := money.Cents(amount.Mul(policy.ProcessingFeePct).Div(decimal.NewFromInt(100)))

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	payment, err := s.apply(ctx, req.LoanID, amount, engine.MethodGateway, paidAt, processingFee, &req.TransactionID, "")
	if errors.Is(err, ErrDuplicateTransaction) {
		// Lost the race against a concurrent delivery of the same webhook.
		return s.repo.GetByGatewayTransaction(ctx, req.TransactionID)
	}
	return payment, err
}

// RecordManual applies a cash, check, or money order payment. Manual
// payments skip the gateway processing fee and push the next due date a
// flat thirty days out.
func (s *Service) RecordManual(ctx context.Context, req *ManualPaymentRequest) (*Payment, error) {
	method := engine.PaymentMethod(req.Method)
	switch method {
	case engine.MethodCash, engine.MethodCheck, engine.MethodMoneyOrder:
	default:
		return nil, &engine.InvalidInputError{Field: "method", Reason: "must be cash, check, or money_order"}
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, err
	}

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return s.apply(ctx, req.LoanID, amount, method, paidAt, decimal.Zero, nil, req.RecordedBy)
}

func (s *Service) apply(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, method engine.PaymentMethod, paidAt time.Time, processingFee decimal.Decimal, transactionID *string, recordedBy string) (*Payment, error) {
	var payment *Payment

	err := s.loanRepo.Transaction(ctx, func(tx *gorm.DB) error {
		loan, err := s.loanRepo.GetForUpdate(tx, loanID)
		if err != nil {
			return fmt.Errorf("failed to lock loan: %w", err)
		}

		account, err := s.escrowRepo.GetByProperty(ctx, loan.PropertyID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		state := loans.StateFor(loan, account, processingFee)
		alloc, err := engine.Allocate(amount, paidAt, method, state)
		if err != nil {
			return err
		}

		payment = &Payment{
			ID:            uuid.New(),
			LoanID:        loan.ID,
			PropertyID:    loan.PropertyID,
			Amount:        amount,
			Method:        string(method),
			PaidAt:        paidAt,
			NoticeFee:     alloc.NoticeFee,
			PostalFee:     alloc.PostalFee,
			LateFee:       alloc.LateFee,
			ProcessingFee: alloc.ProcessingFee,
			Interest:      alloc.Interest,
			TaxEscrow:     alloc.TaxEscrow,
			HOAEscrow:     alloc.HOAEscrow,
			Principal:     alloc.Principal,
			BalanceAfter:  alloc.NewBalance,
			DueDateAfter:  alloc.NextDueDate,

			GatewayTransactionID: transactionID,
			RecordedBy:           recordedBy,
		}
		payment.Metadata = allocationSnapshot(alloc)
		if err := s.repo.Create(tx, payment); err != nil {
			return err
		}

		loan.BalanceRemaining = alloc.NewBalance
		loan.NextDueDate = alloc.NextDueDate
		loan.TotalCollected = loan.TotalCollected.Add(amount)
		loan.NoticeFeeOwed = loan.NoticeFeeOwed.Sub(alloc.NoticeFee)
		loan.PostalFeeOwed = loan.PostalFeeOwed.Sub(alloc.PostalFee)
		loan.LateFeeOwed = loan.LateFeeOwed.Sub(alloc.LateFee)

		// A payment that brings the schedule current closes the
		// delinquency episode; the next one starts fresh.
		if alloc.NextDueDate.After(paidAt) {
			loan.LateFeeFlaggedAt = nil
			loan.NoticeSentAt = nil
		}
		if alloc.PaidOff {
			loan.Status = engine.StatusPaidOff
		}
		if err := s.loanRepo.Save(tx, loan); err != nil {
			return err
		}

		if alloc.TaxEscrow.IsPositive() || alloc.HOAEscrow.IsPositive() {
			if err := s.escrowRepo.Credit(tx, loan.PropertyID, alloc.TaxEscrow, alloc.HOAEscrow); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment applied",
		zap.String("payment_id", payment.ID.String()),
		zap.String("loan_id", loanID.String()),
		zap.String("method", string(method)),
		zap.String("amount", money.Format(amount)),
		zap.String("principal", money.Format(payment.Principal)),
		zap.String("balance_after", money.Format(payment.BalanceAfter)))
	return payment, nil
}

// allocationSnapshot freezes the breakdown as it was computed, independent of
// the typed columns, so the ledger view survives later schema changes.
func allocationSnapshot(alloc *engine.Allocation) datatypes.JSON {
	raw, err := json.Marshal(map[string]string{
		"notice_fee":     money.Format(alloc.NoticeFee),
		"postal_fee":     money.Format(alloc.PostalFee),
		"late_fee":       money.Format(alloc.LateFee),
		"processing_fee": money.Format(alloc.ProcessingFee),
		"interest":       money.Format(alloc.Interest),
		"tax_escrow":     money.Format(alloc.TaxEscrow),
		"hoa_escrow":     money.Format(alloc.HOAEscrow),
		"principal":      money.Format(alloc.Principal),
		"balance_after":  money.Format(alloc.NewBalance),
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// History returns a loan's payments, newest first.
func (s *Service) History(ctx context.Context, loanID uuid.UUID, page, pageSize int) ([]*Payment, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListByLoan(ctx, loanID, pageSize, (page-1)*pageSize)
}
