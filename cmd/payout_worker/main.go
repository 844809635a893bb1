package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/remitchain-core/internal/config"
	"github.com/remitchain-core/internal/data/mongo"
	"github.com/remitchain-core/internal/data/postgres"
	"github.com/remitchain-core/internal/domain/audit"
	"github.com/remitchain-core/internal/logger"
	"github.com/remitchain-core/internal/payout_worker/consumer"
	"github.com/remitchain-core/internal/payout_worker/service"
	"github.com/remitchain-core/internal/payout_worker/sweeper"
	"github.com/remitchain-core/internal/platform/messaging/consumers"
	"github.com/remitchain-core/internal/platform/messaging/producers"
	"github.com/remitchain-core/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("payout_worker")
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

	// Initialize repositories
	intentRepo := postgres.NewIntentRepository(log, postgresDB)
	cashoutRepo := postgres.NewCashoutRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())
	recorder := audit.NewRecorder(log, auditRepo)

	// Initialize Kafka consumer and DLQ producer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ producer", "error", err)
		os.Exit(1)
	}

	// Initialize processing service with worker pool
	baseProcessingService := service.NewProcessingService(log, cashoutRepo, recorder, &cfg.Cashout)
	processingService, err := service.NewWorkerPoolProcessingService(
		baseProcessingService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize message handler
	eventHandler := consumer.NewPayoutEventHandler(log, processingService, dlqProducer)

	// Initialize sweeper for expiring stale intents and re-driving stuck cash-outs
	recoverySweeper := sweeper.NewSweeper(&cfg.Sweep, intentRepo, cashoutRepo, baseProcessingService, log)

	// Create error channel and wait group for background goroutines
	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	// Start Kafka consumer in goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.PayoutTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.PayoutTopic, cfg.Kafka.ConsumerGroup, eventHandler.HandleMessage); err != nil {
			if appCtx.Err() == nil {
				errChan <- fmt.Errorf("kafka consumer error: %w", err)
			}
		}
	}()

	// Start sweeper in goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		recoverySweeper.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var workerErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Worker error occurred", "error", err)
		workerErr = err
	}

	// Cancel the application context to stop consumer and sweeper
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for background goroutines to finish
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
		log.Info("Background goroutines stopped")
	case <-shutdownCtx.Done():
		log.Warn("Timed out waiting for background goroutines")
	}

	// Shutdown the worker pool, letting in-flight payouts drain
	processingService.Shutdown()

	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ producer", "error", err)
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if workerErr != nil {
		log.Error("Payout worker shutdown with errors", "error", workerErr)
	} else {
		log.Info("Payout worker shutdown completed successfully")
	}
}
