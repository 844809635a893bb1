package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/remitchain-core/internal/api_gateway"
	"github.com/remitchain-core/internal/api_gateway/service"
	"github.com/remitchain-core/internal/config"
	"github.com/remitchain-core/internal/data/mongo"
	"github.com/remitchain-core/internal/data/postgres"
	"github.com/remitchain-core/internal/domain/audit"
	"github.com/remitchain-core/internal/fraud"
	"github.com/remitchain-core/internal/fx"
	"github.com/remitchain-core/internal/logger"
	"github.com/remitchain-core/internal/platform/messaging/producers"
	"github.com/remitchain-core/internal/platform/persistence"
	"github.com/remitchain-core/internal/quote"
	"github.com/remitchain-core/internal/verifier"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for API Gateway (publishes payout requests)
	kafkaProducer, err := producers.NewPayoutReqMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize API Gateway Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	intentRepo := postgres.NewIntentRepository(log, postgresDB)
	receiptRepo := postgres.NewReceiptRepository(log, postgresDB)
	cashoutRepo := postgres.NewCashoutRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())
	recorder := audit.NewRecorder(log, auditRepo)

	// Initialize the live FX provider chain. Always built, because clients
	// may request a live rate per quote even when config pricing is the
	// default; providers without credentials are left out of the chain.
	client := &http.Client{Timeout: cfg.Fx.ProviderTimeout}
	fxProviders := []fx.Provider{fx.NewExchangeRateAPI(client)}
	if cfg.Fx.FixerAPIKey != "" {
		fxProviders = append(fxProviders, fx.NewFixer(cfg.Fx.FixerAPIKey, client))
	}
	if cfg.Fx.OpenExchangeAppID != "" {
		fxProviders = append(fxProviders, fx.NewOpenExchangeRates(cfg.Fx.OpenExchangeAppID, client))
	}
	var rateFetcher quote.RateFetcher = fx.NewService(fxProviders, cfg.Fx.CacheTTL, log)

	quoteEngine, err := quote.NewEngine(
		cfg.Fx.FeeBps,
		cfg.Fx.BaseRate,
		cfg.Fx.Spread,
		cfg.Fx.LiveSpreadPct,
		cfg.Fx.UseLiveRates,
		rateFetcher,
		log,
	)
	if err != nil {
		log.Error("Failed to initialize quote engine", "error", err)
		os.Exit(1)
	}

	// Initialize the settlement verifier
	var settlementVerifier verifier.Verifier
	if cfg.Verifier.SandboxMode {
		log.Info("Settlement verification running in sandbox mode")
		settlementVerifier = verifier.NewSandbox(cfg.Verifier.TokenAddress, log)
	} else {
		settlementVerifier = verifier.NewChain(
			cfg.Verifier.RPCURL,
			cfg.Verifier.HubAddress,
			cfg.Verifier.TokenAddress,
			cfg.Verifier.Timeout,
			log,
		)
	}

	// Initialize services
	quoteService := service.NewQuoteService(log, quoteEngine)
	remitService := service.NewRemitService(log, intentRepo, receiptRepo, quoteEngine, settlementVerifier, fraud.NewEngine(log), recorder)
	cashoutService := service.NewCashoutService(log, cashoutRepo, intentRepo, kafkaProducer, recorder, cfg.Cashout.QueuedDelay)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, quoteService, remitService, cashoutService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
