package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/microfin/loanbook/internal/application/usecase"
	"github.com/microfin/loanbook/internal/infrastructure/config"
	"github.com/microfin/loanbook/internal/infrastructure/messaging"
	pgRepo "github.com/microfin/loanbook/internal/infrastructure/persistence/postgres"
	"github.com/microfin/loanbook/internal/presentation/rest"
	"github.com/microfin/loanbook/pkg/auth"
	pkgkafka "github.com/microfin/loanbook/pkg/kafka"
	"github.com/microfin/loanbook/pkg/observability"
	pkgpostgres "github.com/microfin/loanbook/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()
	cfg.Validate()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: "json",
	})
	slog.SetDefault(logger)

	logger.Info("starting loanbook",
		"http_port", cfg.HTTPPort,
		"sweep_interval", cfg.SweepInterval.String(),
	)

	// Initialize tracing when an OTLP endpoint is configured.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(ctx) }() //nolint:errcheck
		}
	}

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(ctx) }() //nolint:errcheck

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	if migErr := pkgpostgres.RunMigrations(pgCfg.DSN(), "file://internal/infrastructure/persistence/postgres/migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Wire infrastructure adapters.
	loanRepo := pgRepo.NewLoanRepo(pool)
	customerRepo := pgRepo.NewCustomerRepo(pool)
	sequenceRepo := pgRepo.NewSequenceRepo(pool)

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
	})
	defer kafkaProducer.Close()
	publisher := messaging.NewKafkaEventPublisher(kafkaProducer, getEnv("KAFKA_TOPIC", messaging.DefaultTopic), logger)

	// Wire use cases.
	createLoanUC := usecase.NewCreateLoanUseCase(loanRepo, customerRepo, sequenceRepo, publisher)
	updateLoanUC := usecase.NewUpdateLoanUseCase(loanRepo, customerRepo, publisher)
	getLoanUC := usecase.NewGetLoanUseCase(loanRepo)
	listLoansUC := usecase.NewListLoansUseCase(loanRepo)
	deleteLoanUC := usecase.NewDeleteLoanUseCase(loanRepo)
	getScheduleUC := usecase.NewGetScheduleUseCase(loanRepo)
	loanStatsUC := usecase.NewLoanStatsUseCase(loanRepo)
	payInstallmentUC := usecase.NewPayInstallmentUseCase(loanRepo, publisher)
	bulkPaymentUC := usecase.NewBulkPaymentUseCase(loanRepo, publisher)
	addPaymentUC := usecase.NewAddPaymentUseCase(loanRepo, publisher)
	overrideUC := usecase.NewOverrideInstallmentUseCase(loanRepo, publisher)
	markDefaultedUC := usecase.NewMarkDefaultedUseCase(loanRepo, publisher)
	sweepUC := usecase.NewSweepOverdueUseCase(loanRepo, publisher)

	createCustomerUC := usecase.NewCreateCustomerUseCase(customerRepo, sequenceRepo, publisher)
	updateCustomerUC := usecase.NewUpdateCustomerUseCase(customerRepo)
	getCustomerUC := usecase.NewGetCustomerUseCase(customerRepo)
	listCustomersUC := usecase.NewListCustomersUseCase(customerRepo)

	// HTTP surface.
	loanHandler := rest.NewLoanHandler(
		createLoanUC, updateLoanUC, getLoanUC, listLoansUC, deleteLoanUC,
		getScheduleUC, loanStatsUC,
		payInstallmentUC, bulkPaymentUC, addPaymentUC,
		overrideUC, markDefaultedUC, sweepUC,
		logger,
	)
	customerHandler := rest.NewCustomerHandler(
		createCustomerUC, updateCustomerUC, getCustomerUC, listCustomersUC,
		logger,
	)
	healthHandler := rest.NewHealthHandler(pool, logger)

	middleware := []func(http.Handler) http.Handler{
		rest.LoggingMiddleware(logger),
	}
	if cfg.Auth.Enabled {
		jwtSvc, jwtErr := auth.NewJWTService(auth.JWTConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: getEnv("JWT_ISSUER", "loanbook"),
		})
		if jwtErr != nil {
			logger.Error("failed to initialize JWT service", "error", jwtErr)
			os.Exit(1)
		}
		middleware = append(middleware, auth.Middleware(jwtSvc, []string{"/healthz", "/readyz", "/metrics"}))
	}

	router := rest.NewRouter(rest.RouterConfig{
		Loans:      loanHandler,
		Customers:  customerHandler,
		Health:     healthHandler,
		Metrics:    metricsHandler,
		Middleware: middleware,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Periodic overdue sweep.
	go runSweepLoop(ctx, sweepUC, cfg.SweepInterval, logger)

	// Start server.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("loanbook stopped")
}

// runSweepLoop runs the overdue sweep once at startup and then on every tick
// until the context is cancelled.
func runSweepLoop(ctx context.Context, sweep *usecase.SweepOverdueUseCase, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp, err := sweep.Execute(ctx)
		if err != nil {
			logger.Error("overdue sweep failed", "error", err)
		} else if resp.Updated > 0 {
			logger.Info("overdue sweep", "scanned", resp.Scanned, "updated", resp.Updated)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
