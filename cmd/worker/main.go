// Anchoring worker entry point: consumes generated-statement events and
// anchors their geolocation hashes on the configured ledger.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agroledger/eudr-engine/internal/config"
	"github.com/agroledger/eudr-engine/internal/infrastructure/database/postgres"
	"github.com/agroledger/eudr-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/agroledger/eudr-engine/internal/infrastructure/ledger"
	"github.com/agroledger/eudr-engine/internal/infrastructure/messaging/kafka"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/agroledger/eudr-engine/pkg/errors"
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultHealthPort = 8081
)

// generatedPayload is the portion of a dds.generated event the worker needs.
type generatedPayload struct {
	Reference       string `json:"reference"`
	GeolocationHash string `json:"geolocation_hash"`
}

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	healthPort := flag.Int("health-port", defaultHealthPort, "health and metrics listen port")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("worker")

	if err := run(cfg, *healthPort, logger); err != nil {
		logger.Error("worker failed", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, healthPort int, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting anchoring worker",
		logging.String("network", cfg.Ledger.Network),
		logging.Int("concurrency", cfg.Worker.Concurrency))

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()

	collector := prometheus.NewCollector()
	anchorRepo := repositories.NewAnchorRepository(pool.Raw(), logger)
	anchorer := ledger.NewAnchorer(anchorRepo, producer, cfg.Ledger.Network, logger)

	handle := func(ctx context.Context, env kafka.EventEnvelope) error {
		var payload generatedPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}

		rec, err := anchorer.Anchor(ctx, payload.Reference, payload.GeolocationHash)
		if err != nil {
			// A statement already anchored by a previous delivery is done,
			// not a failure. Surface the original receipt's tx ref.
			if apperrors.GetCode(err) == apperrors.ErrCodeConflict {
				if prev, lookupErr := anchorer.Receipt(ctx, payload.Reference); lookupErr == nil {
					logger.Info("statement already anchored",
						logging.String("reference", payload.Reference),
						logging.String("tx_ref", prev.TxRef))
				} else {
					logger.Info("statement already anchored",
						logging.String("reference", payload.Reference))
				}
				return nil
			}
			collector.ObserveAnchor(false)
			return err
		}

		collector.ObserveAnchor(true)
		logger.Info("statement anchored",
			logging.String("reference", rec.Reference),
			logging.String("tx_ref", rec.TxRef))
		return nil
	}

	// Health and metrics endpoint for probes and scraping.
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"up"}`))
	})
	healthMux.Handle("/metrics", collector.Handler())
	healthSrv := &http.Server{Addr: fmt.Sprintf(":%d", healthPort), Handler: healthMux}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health endpoint failed", logging.Err(err))
		}
	}()

	// One consumer per concurrency slot; the group shares the consumer
	// group's partition assignment.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Worker, kafka.TopicStatementGenerated, logger)
		g.Go(func() error {
			defer consumer.Close()
			return consumer.Run(gctx, handle)
		})
	}

	err = g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	healthSrv.Shutdown(shutdownCtx)

	if err != nil {
		return err
	}
	logger.Info("anchoring worker stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "config file %s not found, using environment\n", path)
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

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
