package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"insurance-ledger/internal/claims"
	"insurance-ledger/internal/config"
	"insurance-ledger/internal/contract"
	"insurance-ledger/internal/database/minio"
	"insurance-ledger/internal/database/postgres"
	"insurance-ledger/internal/database/redis"
	"insurance-ledger/internal/event"
	"insurance-ledger/internal/handlers"
	"insurance-ledger/internal/ledger"
	"insurance-ledger/internal/oracle"
	"insurance-ledger/internal/repository"
	"insurance-ledger/internal/scheduler"
	"insurance-ledger/internal/services"

	"github.com/gofiber/fiber/v3"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/insurance", "log", "ledger_service")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(file, nil)))

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	db, err := postgres.Connect(cfg.PostgresCfg)
	if err != nil {
		log.Fatalf("error connect to database: %s", err)
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisCfg)
	if err != nil {
		slog.Warn("redis unavailable, weather series caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	minioClient, err := minio.NewClient(cfg.MinioCfg)
	if err != nil {
		slog.Warn("minio unavailable, document uploads disabled", "error", err)
		minioClient = nil
	}

	var publisher *event.Publisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("rabbitmq unavailable, ledger events disabled", "error", err)
	} else {
		defer rabbitConn.Close()
		publisher, err = event.NewPublisher(rabbitConn)
		if err != nil {
			slog.Warn("failed to set up event publisher", "error", err)
			publisher = nil
		}
	}

	store := ledger.NewStore()
	validator := contract.NewValidator()
	engine := claims.NewEngine(cfg.ClaimCfg.RecheckInterval)
	oracleClient := oracle.NewClient(cfg.WeatherCfg, redisClient)

	proposalRepo := repository.NewProposalRepository(db)
	productRepo := repository.NewProductRepository(db)
	policyRepo := repository.NewPolicyRepository(db)

	productService := services.NewProductService(store, validator, proposalRepo, productRepo, publisher, cfg.PartyCfg)
	policyService := services.NewPolicyService(store, validator, engine, policyRepo, publisher)
	autoClaimService := services.NewAutoClaimService(store, validator, engine, oracleClient, policyRepo, publisher, cfg.PartyCfg)
	documentService := services.NewDocumentService(minioClient)

	claimScheduler := scheduler.New(store, autoClaimService, cfg.ClaimCfg.SchedulerSpec)
	if err := claimScheduler.Start(); err != nil {
		log.Fatalf("Failed to start claim scheduler: %v", err)
	}

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Insurance ledger service is healthy")
	})

	handlers.NewProductHandler(productService, documentService).Register(app)
	handlers.NewPolicyHandler(policyService, autoClaimService).Register(app)

	go func() {
		slog.Info("starting insurance ledger service", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down insurance ledger service")
	claimScheduler.Stop()
	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}
