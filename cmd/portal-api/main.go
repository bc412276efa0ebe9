package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"land-ledger/loan-portal/loan-portal-backend/internal/config"
	"land-ledger/loan-portal/loan-portal-backend/internal/escrow"
	"land-ledger/loan-portal/loan-portal-backend/internal/loans"
	"land-ledger/loan-portal/loan-portal-backend/internal/notifications"
	"land-ledger/loan-portal/loan-portal-backend/internal/payments"
	"land-ledger/loan-portal/loan-portal-backend/internal/properties"
	"land-ledger/loan-portal/loan-portal-backend/internal/reports"
	"land-ledger/loan-portal/loan-portal-backend/internal/settings"
	"land-ledger/loan-portal/loan-portal-backend/internal/workers"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	dbURL := cfg.Database.GetDatabaseURL()

	gormDB, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&properties.Property{},
		&escrow.Account{},
		&settings.FeePolicy{},
		&loans.Loan{},
		&loans.DefaultRecord{},
		&payments.Payment{},
		&notifications.Alert{},
	); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// Reporting runs raw aggregate SQL through sqlx on a second pool.
	sqlxDB, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect reporting pool", zap.Error(err))
	}
	defer sqlxDB.Close()
	sqlxDB.SetMaxOpenConns(cfg.Database.MaxConnections)
	sqlxDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// Repositories
	propertyRepo := properties.NewRepository(gormDB)
	escrowRepo := escrow.NewRepository(gormDB)
	settingsRepo := settings.NewRepository(gormDB)
	loanRepo := loans.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)
	alertRepo := notifications.NewRepository(gormDB)
	reportsRepo := reports.NewPostgresRepository(sqlxDB)

	// Services
	settingsService := settings.NewService(settingsRepo, logger)
	if err := settingsService.Seed(context.Background(), cfg.Policy); err != nil {
		logger.Fatal("Failed to seed fee policy", zap.Error(err))
	}

	hub := notifications.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	escrowService := escrow.NewService(escrowRepo, logger)
	loanService := loans.NewService(loanRepo, propertyRepo, settingsService, logger)
	paymentService := payments.NewService(paymentRepo, loanRepo, escrowRepo, settingsService, logger)
	alertService := notifications.NewService(alertRepo, hub, logger)
	reportsService := reports.NewService(reportsRepo, logger)

	// Background jobs
	scanner := workers.NewDelinquencyScanner(loanRepo, loanService, alertService, logger, cfg.Worker.ScanBatchSize)
	scheduler := workers.NewScheduler(scanner, reportsService, alertService, cfg.Worker, logger)
	if err := scheduler.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start worker scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// Setup Router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	{
		loans.NewHandler(loanService, logger).RegisterRoutes(api)
		payments.NewHandler(paymentService, logger).RegisterRoutes(api)
		escrow.NewHandler(escrowService, logger).RegisterRoutes(api)
		settings.NewHandler(settingsService, logger).RegisterRoutes(api)
		reports.NewHandler(reportsService, logger).RegisterRoutes(api)
		notifications.NewHandler(alertService, hub, logger).RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
