package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"land-ledger/loan-portal/loan-portal-backend/internal/config"
	"land-ledger/loan-portal/loan-portal-backend/internal/notifications"
	"land-ledger/loan-portal/loan-portal-backend/internal/reports"
)

// alertRetention is how long acknowledged alerts are kept before pruning.
const alertRetention = 90 * 24 * time.Hour

// Scheduler runs the recurring portal jobs: the daily delinquency scan and
// the monthly trend snapshot.
type Scheduler struct {
	cron    *cron.Cron
	scanner *DelinquencyScanner
	reports *reports.Service
	alerts  *notifications.Service
	cfg     config.WorkerConfig
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new scheduler.
func NewScheduler(scanner *DelinquencyScanner, reportService *reports.Service, alerts *notifications.Service, cfg config.WorkerConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		scanner: scanner,
		reports: reportService,
		alerts:  alerts,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.cfg.DelinquencyScanCron, func() {
		if err := s.scanner.Scan(ctx, time.Now()); err != nil {
			s.logger.Error("Delinquency scan failed", zap.Error(err))
		}
		if err := s.alerts.Prune(ctx, alertRetention); err != nil {
			s.logger.Error("Alert pruning failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to register delinquency scan: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.TrendSnapshotCron, func() {
		// Snapshot the month that just closed.
		previousMonth := time.Now().UTC().AddDate(0, -1, 0)
		if _, err := s.reports.CaptureMonthlyTrend(ctx, previousMonth); err != nil {
			s.logger.Error("Trend snapshot failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to register trend snapshot: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("Worker scheduler started",
		zap.String("delinquency_scan", s.cfg.DelinquencyScanCron),
		zap.String("trend_snapshot", s.cfg.TrendSnapshotCron))
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false
	s.logger.Info("Worker scheduler stopped")
}
