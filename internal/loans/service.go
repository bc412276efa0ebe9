package loans

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"land-ledger/loan-portal/loan-portal-backend/internal/engine"
	"land-ledger/loan-portal/loan-portal-backend/internal/escrow"
	"land-ledger/loan-portal/loan-portal-backend/internal/properties"
	"land-ledger/loan-portal/loan-portal-backend/internal/settings"
	"land-ledger/loan-portal/loan-portal-backend/pkg/money"
)

// deletionProposalTTL bounds how long a delete proposal stays confirmable.
const deletionProposalTTL = 10 * time.Minute

// Service provides loan origination and administration on top of the
// financial engine.
type Service struct {
	repo         Repository
	propertyRepo properties.Repository
	policy       *settings.Service
	logger       *zap.Logger

	// Pending two-step deletion proposals, keyed by token.
	proposalsMu sync.Mutex
	proposals   map[uuid.UUID]deletionProposal
}

type deletionProposal struct {
	loanID    uuid.UUID
	expiresAt time.Time
}

// NewService creates a new loan service.
func NewService(repo Repository, propertyRepo properties.Repository, policy *settings.Service, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		propertyRepo: propertyRepo,
		policy:       policy,
		logger:       logger,
		proposals:    make(map[uuid.UUID]deletionProposal),
	}
}

// StateFor builds the engine's pre-payment snapshot for a loan and its
// property's escrow schedule.
func StateFor(loan *Loan, account *escrow.Account, processingFeeOwed decimal.Decimal) engine.LoanState {
	state := engine.LoanState{
		Status:            loan.Status,
		Balance:           loan.BalanceRemaining,
		AnnualRatePercent: loan.AnnualRatePercent,
		MonthlyPayment:    loan.MonthlyPayment,
		NextDueDate:       loan.NextDueDate,
		DueDay:            loan.DueDay,
		LateFeeOwed:       loan.LateFeeOwed,
		NoticeFeeOwed:     loan.NoticeFeeOwed,
		PostalFeeOwed:     loan.PostalFeeOwed,
		ProcessingFeeOwed: processingFeeOwed,
	}
	if account != nil {
		state.MonthlyTaxPortion = account.MonthlyTaxPortion
		state.MonthlyHOAFee = account.MonthlyHOAFee
	}
	return state
}

// OriginateRequest carries the terms for a new loan, whether from a customer
// purchase flow or an admin custom loan.
type OriginateRequest struct {
	PropertyID           uuid.UUID `json:"property_id" binding:"required"`
	CustomerKey          string    `json:"customer_key" binding:"required"`
	PurchasePrice        string    `json:"purchase_price" binding:"required"`
	DownPayment          string    `json:"down_payment"`
	ProcessingFee        string    `json:"processing_fee"`
	AnnualRatePercent    string    `json:"annual_rate_percent" binding:"required"`
	TargetMonthlyPayment string    `json:"target_monthly_payment" binding:"required"`
	DueDay               int       `json:"due_day" binding:"required"`
}

// Originate derives the loan's schedule from the target payment and persists
// the new record, marking the property sold.
func (s *Service) Originate(ctx context.Context, req *OriginateRequest) (*Loan, error) {
	if req.DueDay != 1 && req.DueDay != 15 {
		return nil, fmt.Errorf("due day must be 1 or 15")
	}

	price, err := money.Parse(req.PurchasePrice)
	if err != nil {
		return nil, err
	}
	down, err := parseOrZero(req.DownPayment)
	if err != nil {
		return nil, err
	}
	fee, err := parseOrZero(req.ProcessingFee)
	if err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(req.AnnualRatePercent)
	if err != nil {
		return nil, fmt.Errorf("invalid annual rate: %w", err)
	}
	target, err := money.Parse(req.TargetMonthlyPayment)
	if err != nil {
		return nil, err
	}

	policy, err := s.policy.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if target.LessThan(policy.MinMonthlyPayment) {
		return nil, &engine.InvalidInputError{
			Field:  "target_monthly_payment",
			Reason: fmt.Sprintf("below the minimum of %s", money.Format(policy.MinMonthlyPayment)),
		}
	}

	property, err := s.propertyRepo.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != properties.StatusAvailable {
		return nil, fmt.Errorf("property %s is not available", property.ID)
	}

	quote, err := engine.DeriveTerm(price, down, fee, rate, target)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	loan := &Loan{
		ID:                uuid.New(),
		PropertyID:        req.PropertyID,
		CustomerKey:       req.CustomerKey,
		PurchasePrice:     price,
		DownPayment:       down,
		ProcessingFee:     fee,
		LoanAmount:        quote.LoanAmount,
		AnnualRatePercent: rate,
		TermMonths:        quote.TermMonths,
		MonthlyPayment:    target,
		TotalAmount:       quote.TotalAmount,
		DueDay:            req.DueDay,
		NextDueDate:       firstDueDate(now, req.DueDay),
		BalanceRemaining:  quote.LoanAmount,
		TotalCollected:    decimal.Zero,
		Status:            engine.StatusActive,
	}

	// Loan creation and the property's sold flip commit together; a failure
	// in either leaves the property available for another origination.
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Create(tx, loan); err != nil {
			return err
		}
		return s.propertyRepo.SetStatus(tx, property.ID, properties.StatusSold)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan originated",
		zap.String("loan_id", loan.ID.String()),
		zap.String("property_id", property.ID.String()),
		zap.String("loan_amount", money.Format(loan.LoanAmount)),
		zap.Int("term_months", loan.TermMonths))

	return loan, nil
}

// Get returns a loan with its live delinquency state and cure amount.
func (s *Service) Get(ctx context.Context, id uuid.UUID, now time.Time) (*LoanDetail, error) {
	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(loan, now), nil
}

// List returns loans matching the filters, each with derived delinquency.
func (s *Service) List(ctx context.Context, filters *ListFilters, now time.Time) ([]*LoanDetail, error) {
	loans, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	details := make([]*LoanDetail, len(loans))
	for i, loan := range loans {
		details[i] = s.detail(loan, now)
	}
	return details, nil
}

func (s *Service) detail(loan *Loan, now time.Time) *LoanDetail {
	d := engine.Classify(loan.NextDueDate, now, loan.AlertsDisabled, loan.Status, loan.NoticeSentAt != nil)
	state := StateFor(loan, nil, decimal.Zero)
	return &LoanDetail{
		Loan:        *loan,
		Delinquency: d,
		CureAmount:  engine.CureAmount(state, d.DaysOverdue),
	}
}

// SetDueDay changes the due-day-of-month convention for future schedule
// advancement. The current next-due date keeps its day until the next payment.
func (s *Service) SetDueDay(ctx context.Context, id uuid.UUID, day int) (*Loan, error) {
	if day != 1 && day != 15 {
		return nil, fmt.Errorf("due day must be 1 or 15")
	}
	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.DueDay = day
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// SetAlertsDisabled toggles delinquency alerting for a loan.
func (s *Service) SetAlertsDisabled(ctx context.Context, id uuid.UUID, disabled bool) (*Loan, error) {
	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.AlertsDisabled = disabled
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// RecordNotice registers that a formal default/cure notice went out, fixing
// the notice fee and the actual postal cost as owed. Only notice-eligible
// loans (>= 30 days overdue, no prior notice) qualify.
func (s *Service) RecordNotice(ctx context.Context, id uuid.UUID, postalCost decimal.Decimal, now time.Time) (*Loan, error) {
	if postalCost.IsNegative() {
		return nil, fmt.Errorf("postal cost must not be negative")
	}

	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d := engine.Classify(loan.NextDueDate, now, loan.AlertsDisabled, loan.Status, loan.NoticeSentAt != nil)
	if d.Tier != engine.TierNoticeEligible {
		return nil, fmt.Errorf("loan is not eligible for a default notice (tier %s)", d.Tier)
	}

	policy, err := s.policy.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}

	loan.NoticeSentAt = &now
	loan.NoticeFeeOwed = policy.NoticeFee
	loan.PostalFeeOwed = money.Cents(postalCost)
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}

	s.logger.Info("Default notice recorded",
		zap.String("loan_id", loan.ID.String()),
		zap.String("notice_fee", money.Format(loan.NoticeFeeOwed)),
		zap.String("postal_fee", money.Format(loan.PostalFeeOwed)))
	return loan, nil
}

// WaiveLateFee clears an outstanding late fee. Only allowed past the grace
// threshold, where the tier marks the fee waivable.
func (s *Service) WaiveLateFee(ctx context.Context, id uuid.UUID, now time.Time) (*Loan, error) {
	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.LateFeeOwed.IsZero() {
		return nil, fmt.Errorf("no late fee outstanding")
	}

	d := engine.Classify(loan.NextDueDate, now, loan.AlertsDisabled, loan.Status, loan.NoticeSentAt != nil)
	if d.Tier != engine.TierLateWaivable && d.Tier != engine.TierNoticeEligible {
		return nil, fmt.Errorf("late fee is not waivable at %d days overdue", d.DaysOverdue)
	}

	loan.LateFeeOwed = decimal.Zero
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}

	s.logger.Info("Late fee waived", zap.String("loan_id", loan.ID.String()))
	return loan, nil
}

// FlagLateFee assesses the policy late fee on a newly-overdue loan. One fee
// per delinquency episode; the flag resets when the loan comes current.
func (s *Service) FlagLateFee(ctx context.Context, loan *Loan, now time.Time) error {
	if !loan.LateFeeOwed.IsZero() || loan.LateFeeFlaggedAt != nil {
		return nil
	}

	policy, err := s.policy.GetPolicy(ctx)
	if err != nil {
		return err
	}

	loan.LateFeeOwed = policy.LateFee
	loan.LateFeeFlaggedAt = &now
	if err := s.repo.Update(ctx, loan); err != nil {
		return err
	}

	s.logger.Info("Late fee assessed",
		zap.String("loan_id", loan.ID.String()),
		zap.String("late_fee", money.Format(policy.LateFee)))
	return nil
}

// DefaultRequest carries the admin-entered recovery figures for marking a
// loan defaulted, or recomputing an existing default's recovery.
type DefaultRequest struct {
	RecoveryCosts string `json:"recovery_costs" binding:"required"`
	Notes         string `json:"notes"`
	Recompute     bool   `json:"recompute"`
}

// MarkDefaulted transitions an active loan to defaulted, computing and
// recording the net recovery. The balance is written off and the property
// reverts to available. A second call requires Recompute.
func (s *Service) MarkDefaulted(ctx context.Context, id uuid.UUID, req *DefaultRequest) (*DefaultRecord, error) {
	recoveryCosts, err := money.Parse(req.RecoveryCosts)
	if err != nil {
		return nil, err
	}

	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.Status == engine.StatusDefaulted || loan.Status == engine.StatusArchived {
		return s.recomputeDefault(ctx, loan, recoveryCosts, req)
	}
	if loan.Status != engine.StatusActive {
		return nil, engine.ErrLoanNotActive
	}

	property, err := s.propertyRepo.GetProperty(ctx, loan.PropertyID)
	if err != nil {
		return nil, err
	}

	net, err := engine.ResolveDefault(engine.DefaultInput{
		TotalPaid:       loan.TotalCollected,
		AcquisitionCost: property.AcquisitionCost,
		RecoveryCosts:   recoveryCosts,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &DefaultRecord{
		ID:                uuid.New(),
		LoanID:            loan.ID,
		DefaultedAt:       now,
		TotalCollected:    loan.TotalCollected,
		AcquisitionCost:   property.AcquisitionCost,
		RecoveryCosts:     recoveryCosts,
		NetRecovery:       net,
		BalanceWrittenOff: loan.BalanceRemaining,
		Notes:             req.Notes,
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.GetForUpdate(tx, loan.ID)
		if err != nil {
			return err
		}
		if locked.Status != engine.StatusActive {
			return engine.ErrIrreversibleAction
		}
		locked.Status = engine.StatusDefaulted
		if err := s.repo.Save(tx, locked); err != nil {
			return err
		}
		if err := s.repo.CreateDefaultRecord(tx, record); err != nil {
			return err
		}
		return s.propertyRepo.SetStatus(tx, property.ID, properties.StatusAvailable)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan defaulted",
		zap.String("loan_id", loan.ID.String()),
		zap.String("net_recovery", money.Format(net)),
		zap.String("balance_written_off", money.Format(record.BalanceWrittenOff)))
	return record, nil
}

func (s *Service) recomputeDefault(ctx context.Context, loan *Loan, recoveryCosts decimal.Decimal, req *DefaultRequest) (*DefaultRecord, error) {
	record, err := s.repo.GetDefaultRecord(ctx, loan.ID)
	if err != nil {
		return nil, err
	}

	net, err := engine.ResolveDefault(engine.DefaultInput{
		TotalPaid:       record.TotalCollected,
		AcquisitionCost: record.AcquisitionCost,
		RecoveryCosts:   recoveryCosts,
		AlreadyResolved: true,
		Recompute:       req.Recompute,
	})
	if err != nil {
		return nil, err
	}

	record.RecoveryCosts = recoveryCosts
	record.NetRecovery = net
	if req.Notes != "" {
		record.Notes = req.Notes
	}
	if err := s.repo.SaveDefaultRecord(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Default recovery recomputed",
		zap.String("loan_id", loan.ID.String()),
		zap.String("net_recovery", money.Format(net)))
	return record, nil
}

// Archive moves a defaulted loan into the archived state, preserving records.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.toggleArchive(ctx, id, engine.StatusDefaulted, engine.StatusArchived)
}

// Unarchive moves an archived loan back to defaulted.
func (s *Service) Unarchive(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.toggleArchive(ctx, id, engine.StatusArchived, engine.StatusDefaulted)
}

func (s *Service) toggleArchive(ctx context.Context, id uuid.UUID, from, to engine.LoanStatus) (*Loan, error) {
	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != from {
		return nil, fmt.Errorf("loan is %s, expected %s", loan.Status, from)
	}
	loan.Status = to
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// ProposeDeletion starts the two-step hard delete and returns a confirmation
// token. Deletion purges payment history; modal confirm dialogs are replaced
// by this propose/confirm pair at the API boundary.
func (s *Service) ProposeDeletion(ctx context.Context, id uuid.UUID) (uuid.UUID, time.Time, error) {
	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	if loan.Status == engine.StatusActive {
		return uuid.Nil, time.Time{}, fmt.Errorf("active loans cannot be deleted; default or pay off first")
	}

	token := uuid.New()
	expires := time.Now().Add(deletionProposalTTL)

	s.proposalsMu.Lock()
	s.proposals[token] = deletionProposal{loanID: id, expiresAt: expires}
	s.proposalsMu.Unlock()

	s.logger.Warn("Loan deletion proposed",
		zap.String("loan_id", id.String()),
		zap.Time("expires_at", expires))
	return token, expires, nil
}

// ConfirmDeletion completes a proposed hard delete: the loan, its payment
// history, and any default record are purged, and the property reverts to
// available. Terminal; there is no un-delete.
func (s *Service) ConfirmDeletion(ctx context.Context, id uuid.UUID, token uuid.UUID) error {
	s.proposalsMu.Lock()
	proposal, ok := s.proposals[token]
	if ok {
		delete(s.proposals, token)
	}
	s.proposalsMu.Unlock()

	if !ok || proposal.loanID != id {
		return fmt.Errorf("no matching deletion proposal; propose first")
	}
	if time.Now().After(proposal.expiresAt) {
		return fmt.Errorf("deletion proposal expired; propose again")
	}

	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteWithPayments(tx, id); err != nil {
			return err
		}
		return s.propertyRepo.SetStatus(tx, loan.PropertyID, properties.StatusAvailable)
	})
	if err != nil {
		return err
	}

	s.logger.Warn("Loan deleted with full payment history",
		zap.String("loan_id", id.String()),
		zap.String("property_id", loan.PropertyID.String()))
	return nil
}

// firstDueDate is the next occurrence of the loan's due day strictly after
// origination. Building the candidate from the month index rather than
// AddDate keeps end-of-month originations (Jan 29-31) from overflowing past
// February; time.Date normalizes month 13 into January of the next year.
func firstDueDate(originated time.Time, dueDay int) time.Time {
	due := time.Date(originated.Year(), originated.Month(), dueDay, 0, 0, 0, 0, time.UTC)
	if !due.After(originated) {
		due = time.Date(originated.Year(), originated.Month()+1, dueDay, 0, 0, 0, 0, time.UTC)
	}
	return due
}

func parseOrZero(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return money.Parse(raw)
}
