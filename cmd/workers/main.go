package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"land-ledger/loan-portal/loan-portal-backend/internal/config"
	"land-ledger/loan-portal/loan-portal-backend/internal/loans"
	"land-ledger/loan-portal/loan-portal-backend/internal/notifications"
	"land-ledger/loan-portal/loan-portal-backend/internal/properties"
	"land-ledger/loan-portal/loan-portal-backend/internal/reports"
	"land-ledger/loan-portal/loan-portal-backend/internal/settings"
	"land-ledger/loan-portal/loan-portal-backend/internal/workers"
)

// One-shot job runner. The API process schedules these jobs itself; this
// binary exists for manual runs and backfills:
//
//	workers -job=delinquency-scan
//	workers -job=trend-snapshot -month=2026-07
func main() {
	job := flag.String("job", "", "job to run: delinquency-scan or trend-snapshot")
	month := flag.String("month", "", "month (YYYY-MM) for trend-snapshot, default previous month")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()
	dbURL := cfg.Database.GetDatabaseURL()

	switch *job {
	case "delinquency-scan":
		gormDB, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{TranslateError: true})
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}

		loanRepo := loans.NewRepository(gormDB)
		propertyRepo := properties.NewRepository(gormDB)
		settingsService := settings.NewService(settings.NewRepository(gormDB), logger)
		loanService := loans.NewService(loanRepo, propertyRepo, settingsService, logger)

		hub := notifications.NewHub(logger)
		go hub.Run()
		defer hub.Stop()
		alertService := notifications.NewService(notifications.NewRepository(gormDB), hub, logger)

		scanner := workers.NewDelinquencyScanner(loanRepo, loanService, alertService, logger, cfg.Worker.ScanBatchSize)
		if err := scanner.Scan(ctx, time.Now()); err != nil {
			logger.Fatal("Delinquency scan failed", zap.Error(err))
		}

	case "trend-snapshot":
		target := time.Now().UTC().AddDate(0, -1, 0)
		if *month != "" {
			if target, err = time.Parse("2006-01", *month); err != nil {
				logger.Fatal("Invalid month", zap.String("month", *month), zap.Error(err))
			}
		}

		sqlxDB, err := sqlx.Connect("postgres", dbURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer sqlxDB.Close()

		reportsService := reports.NewService(reports.NewPostgresRepository(sqlxDB), logger)
		if _, err := reportsService.CaptureMonthlyTrend(ctx, target); err != nil {
			logger.Fatal("Trend snapshot failed", zap.Error(err))
		}

	default:
		fmt.Fprintln(os.Stderr, "usage: workers -job=delinquency-scan|trend-snapshot [-month=YYYY-MM]")
		os.Exit(2)
	}
}
