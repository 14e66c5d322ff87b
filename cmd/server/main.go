package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kickzshop/checkout/internal"
	"github.com/kickzshop/checkout/internal/events"
	"github.com/kickzshop/checkout/internal/handler"
	"github.com/kickzshop/checkout/internal/middleware"
	"github.com/kickzshop/checkout/internal/payment"
	"github.com/kickzshop/checkout/internal/postgres"
	"github.com/kickzshop/checkout/internal/router"
	"github.com/kickzshop/checkout/internal/service"
	"github.com/kickzshop/checkout/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize storage
	store := postgres.New(pool)
	txManager := postgres.NewTxManager(pool)

	// Initialize payment providers
	providers := payment.NewFactory()
	if cfg.Cashfree.ClientID != "" && cfg.Cashfree.ClientSecret != "" {
		cashfree, err := payment.NewCashfreeProvider(payment.CashfreeConfig{
			ClientID:     cfg.Cashfree.ClientID,
			ClientSecret: cfg.Cashfree.ClientSecret,
			BaseURL:      cfg.Cashfree.BaseURL,
			APIVersion:   cfg.Cashfree.APIVersion,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cashfree provider: %w", err)
		}
		providers.Register(payment.GatewayCashfree, cashfree)
	}
	if cfg.Stripe.SecretKey != "" {
		stripe, err := payment.NewStripeProvider(payment.StripeConfig{APIKey: cfg.Stripe.SecretKey})
		if err != nil {
			return fmt.Errorf("failed to initialize Stripe provider: %w", err)
		}
		providers.Register(payment.GatewayStripe, stripe)
	}
	if len(providers.Gateways()) == 0 {
		logger.Warn("No payment gateway configured; order creation will reject every gateway")
	} else {
		logger.Info("Payment providers initialized", "gateways", providers.Gateways())
	}

	// Initialize event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.Enabled {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("NATS publisher initialized", "url", cfg.NATS.URL, "subject", cfg.NATS.Subject)
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := telemetry.NewMetrics(registry)
	httpMetrics := middleware.NewMetrics(registry)

	// Initialize order service
	orderService := service.NewOrderService(service.OrderServiceParams{
		Store:          store,
		Tx:             txManager,
		Providers:      providers,
		Publisher:      publisher,
		Metrics:        checkoutMetrics,
		Logger:         logger,
		FrontendOrigin: cfg.FrontendOrigin,
	})

	// Initialize handlers
	orderHandler := handler.NewOrderHandler(orderService)
	healthHandler := handler.NewHealthHandler(pool)

	// Rate limiters
	apiLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer apiLimiter.Stop()
	checkoutLimiter := middleware.NewRateLimiter(middleware.CheckoutRateLimiterConfig())
	defer checkoutLimiter.Stop()

	// Build routes
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		httpMetrics.Middleware,
		router.CORS([]string{cfg.FrontendOrigin}),
		router.Logger(logger),
	)

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	api := r.Group(
		apiLimiter.Middleware,
		middleware.Auth(cfg.JWTSecret),
		middleware.WithRequestLogger(logger),
	)
	api.Post("/api/orders", orderHandler.CreateOrder, checkoutLimiter.Middleware)
	api.Get("/api/orders/{code}", orderHandler.GetOrder)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
