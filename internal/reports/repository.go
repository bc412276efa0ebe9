package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines the interface for reporting data access
type Repository interface {
	GetRevenueSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error)
	GetEscrowSummary(ctx context.Context) (*EscrowSummary, error)
	GetPortfolioSummary(ctx context.Context, asOf time.Time) (*PortfolioSummary, error)
	GetDefaultSummary(ctx context.Context) (*DefaultSummary, error)

	ComputeMonthlyTrend(ctx context.Context, monthStart, monthEnd time.Time) (*MonthlyTrend, error)
	UpsertMonthlyTrend(ctx context.Context, trend *MonthlyTrend) error
	ListMonthlyTrends(ctx context.Context, months int) ([]*MonthlyTrend, error)
}

// PostgresRepository implements Repository using PostgreSQL aggregate queries
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL reports repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetRevenueSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount), 0)                                 AS total_collected,
			COALESCE(SUM(interest), 0)                               AS interest,
			COALESCE(SUM(principal), 0)                              AS principal,
			COALESCE(SUM(late_fee), 0)                               AS late_fees,
			COALESCE(SUM(notice_fee), 0)                             AS notice_fees,
			COALESCE(SUM(postal_fee), 0)                             AS postal_fees,
			COALESCE(SUM(processing_fee), 0)                         AS processing_fees,
			COALESCE(SUM(tax_escrow + hoa_escrow), 0)                AS escrow_held,
			COALESCE(SUM(amount - tax_escrow - hoa_escrow), 0)       AS net_revenue,
			COUNT(*)                                                 AS payment_count
		FROM payments
		WHERE paid_at >= $1 AND paid_at < $2
	`

	var summary RevenueSummary
	if err := r.db.GetContext(ctx, &summary, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to get revenue summary: %w", err)
	}
	summary.From = from
	summary.To = to
	return &summary, nil
}

func (r *PostgresRepository) GetEscrowSummary(ctx context.Context) (*EscrowSummary, error) {
	query := `
		SELECT
			COUNT(*)                                      AS accounts,
			COALESCE(SUM(tax_collected), 0)               AS tax_collected,
			COALESCE(SUM(tax_paid_out), 0)                AS tax_paid_out,
			COALESCE(SUM(tax_collected - tax_paid_out), 0) AS tax_held,
			COALESCE(SUM(hoa_collected), 0)               AS hoa_collected
		FROM escrow_accounts
	`

	var summary EscrowSummary
	if err := r.db.GetContext(ctx, &summary, query); err != nil {
		return nil, fmt.Errorf("failed to get escrow summary: %w", err)
	}
	return &summary, nil
}

func (r *PostgresRepository) GetPortfolioSummary(ctx context.Context, asOf time.Time) (*PortfolioSummary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'active')    AS active_loans,
			COUNT(*) FILTER (WHERE status = 'paid_off')  AS paid_off_loans,
			COUNT(*) FILTER (WHERE status = 'defaulted') AS defaulted_loans,
			COUNT(*) FILTER (WHERE status = 'archived')  AS archived_loans,
			COALESCE(SUM(balance_remaining) FILTER (WHERE status = 'active'), 0) AS outstanding_balance,
			COALESCE(SUM(total_collected), 0)            AS total_collected,
			COUNT(*) FILTER (WHERE status = 'active' AND next_due_date >= $1) AS current_loans,
			COUNT(*) FILTER (WHERE status = 'active' AND next_due_date < $1)  AS overdue_loans,
			COUNT(*) FILTER (
				WHERE status = 'active'
				  AND next_due_date < $1 - INTERVAL '30 days'
				  AND notice_sent_at IS NULL
			) AS notice_eligible
		FROM loans
	`

	var summary PortfolioSummary
	if err := r.db.GetContext(ctx, &summary, query, asOf); err != nil {
		return nil, fmt.Errorf("failed to get portfolio summary: %w", err)
	}
	return &summary, nil
}

func (r *PostgresRepository) GetDefaultSummary(ctx context.Context) (*DefaultSummary, error) {
	query := `
		SELECT
			COUNT(*)                                  AS count,
			COALESCE(SUM(balance_written_off), 0)     AS total_written_off,
			COALESCE(SUM(recovery_costs), 0)          AS total_recovery_costs,
			COALESCE(SUM(net_recovery), 0)            AS net_recovery
		FROM default_records
	`

	var summary DefaultSummary
	if err := r.db.GetContext(ctx, &summary, query); err != nil {
		return nil, fmt.Errorf("failed to get default summary: %w", err)
	}
	return &summary, nil
}

func (r *PostgresRepository) ComputeMonthlyTrend(ctx context.Context, monthStart, monthEnd time.Time) (*MonthlyTrend, error) {
	query := `
		SELECT
			COALESCE(SUM(amount), 0)                                            AS collected,
			COALESCE(SUM(interest), 0)                                          AS interest,
			COALESCE(SUM(principal), 0)                                         AS principal,
			COALESCE(SUM(late_fee + notice_fee + postal_fee + processing_fee), 0) AS fees,
			COALESCE(SUM(tax_escrow + hoa_escrow), 0)                           AS escrow,
			COUNT(*)                                                            AS payments
		FROM payments
		WHERE paid_at >= $1 AND paid_at < $2
	`

	trend := &MonthlyTrend{ID: uuid.New(), Month: monthStart}
	if err := r.db.GetContext(ctx, trend, query, monthStart, monthEnd); err != nil {
		return nil, fmt.Errorf("failed to compute monthly trend: %w", err)
	}
	return trend, nil
}

func (r *PostgresRepository) UpsertMonthlyTrend(ctx context.Context, trend *MonthlyTrend) error {
	query := `
		INSERT INTO monthly_trends (id, month, collected, interest, principal, fees, escrow, payments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (month) DO UPDATE SET
			collected = EXCLUDED.collected,
			interest = EXCLUDED.interest,
			principal = EXCLUDED.principal,
			fees = EXCLUDED.fees,
			escrow = EXCLUDED.escrow,
			payments = EXCLUDED.payments
	`

	_, err := r.db.ExecContext(ctx, query,
		trend.ID, trend.Month, trend.Collected, trend.Interest,
		trend.Principal, trend.Fees, trend.Escrow, trend.Payments,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly trend: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListMonthlyTrends(ctx context.Context, months int) ([]*MonthlyTrend, error) {
	query := `
		SELECT id, month, collected, interest, principal, fees, escrow, payments, created_at
		FROM monthly_trends
		ORDER BY month DESC
		LIMIT $1
	`

	var trends []*MonthlyTrend
	if err := r.db.SelectContext(ctx, &trends, query, months); err != nil {
		return nil, fmt.Errorf("failed to list monthly trends: %w", err)
	}
	return trends, nil
}
