// API server entry point for the EUDR compliance engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agroledger/eudr-engine/internal/application/compliance"
	"github.com/agroledger/eudr-engine/internal/application/telemetry"
	"github.com/agroledger/eudr-engine/internal/config"
	"github.com/agroledger/eudr-engine/internal/infrastructure/database/postgres"
	"github.com/agroledger/eudr-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/agroledger/eudr-engine/internal/infrastructure/database/redis"
	"github.com/agroledger/eudr-engine/internal/infrastructure/messaging/kafka"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/prometheus"
	"github.com/agroledger/eudr-engine/internal/infrastructure/storage/minio"
	httpserver "github.com/agroledger/eudr-engine/internal/interfaces/http"
	"github.com/agroledger/eudr-engine/internal/interfaces/http/handlers"
	"github.com/agroledger/eudr-engine/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("api server failed", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting eudr-engine api server",
		logging.Int("port", cfg.Server.Port),
		logging.String("mode", cfg.Server.Mode))

	// PostgreSQL.
	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	// Redis. The report cache is an optimization; a missing Redis degrades
	// every lookup to a miss instead of blocking startup.
	var cacheOpt []compliance.ServiceOption
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, validation reports will not be cached", logging.Err(err))
	} else {
		defer redisClient.Close()
		cacheOpt = append(cacheOpt, compliance.WithReportCache(
			redis.NewReportCache(redisClient, cfg.Engine.ReportCacheTTL, logger)))
	}

	// Kafka.
	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()

	// MinIO.
	minioClient, err := minio.NewClient(ctx, cfg.MinIO, logger)
	if err != nil {
		return fmt.Errorf("connecting to minio: %w", err)
	}
	docStore := minio.NewDocumentStore(minioClient, logger)

	// Metrics.
	collector := prometheus.NewCollector()

	// Application services.
	assembler := compliance.NewAssembler(
		compliance.NewValidator(compliance.ValidatorConfig{
			MinPrecision: cfg.Engine.MinPrecision,
			LargePlotHa:  cfg.Engine.LargePlotHa,
		}),
		compliance.NewAssessor(),
		compliance.AssemblerConfig{MaxInputBytes: cfg.Engine.MaxInputBytes},
		logger,
	)
	statementRepo := repositories.NewStatementRepository(pool.Raw(), logger)
	complianceSvc := compliance.NewService(assembler, statementRepo, docStore, logger,
		append(cacheOpt,
			compliance.WithEventPublisher(producer),
			compliance.WithMetrics(collector))...)
	telemetrySvc := telemetry.NewService(telemetry.NewStore(), producer, logger)

	// HTTP interface.
	checks := []handlers.DependencyCheck{
		{Name: "postgres", Check: pool.Ping},
	}
	if redisClient != nil {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Check: redisClient.Ping})
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ComplianceHandler: handlers.NewComplianceHandler(complianceSvc, logger),
		StatementHandler:  handlers.NewStatementHandler(complianceSvc, logger),
		TelemetryHandler:  handlers.NewTelemetryHandler(telemetrySvc, logger),
		HealthHandler:     handlers.NewHealthHandler(checks, logger),
		MetricsHandler:    collector.Handler(),
		MetricsMiddleware: middleware.Metrics(collector),
		Logger:            logger,
		MaxBodySize:       cfg.Server.MaxBodySize,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("api server stopped")
	return nil
}

// loadConfig loads from the config file when it exists, falling back to
// environment variables only.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "config file %s not found, using environment\n", path)
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// newLogger translates the application log config into the logging package's
// zap-backed configuration.
func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	format := "json"
	if cfg.Format == "text" {
		format = "console"
	}
	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      format,
		OutputPaths: []string{output},
	})
}
