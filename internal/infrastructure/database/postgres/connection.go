// Package postgres manages the PostgreSQL connection pool, schema
// migrations, and the statement and anchor repositories.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agroledger/eudr-engine/internal/config"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// Pool wraps a pgx connection pool with engine logging and health checks.
type Pool struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPool establishes a PostgreSQL connection pool from config and verifies
// connectivity with a bounded ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*Pool, error) {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("postgres")

	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to parse database config")
	}
	pcfg.MaxConns = int32(cfg.MaxConns)
	pcfg.MinConns = int32(cfg.MinConns)
	pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	pcfg.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	log.Info("database pool established",
		logging.String("host", cfg.Host),
		logging.Int("max_conns", cfg.MaxConns))
	return &Pool{pool: pool, logger: log}, nil
}

// Raw exposes the underlying pgx pool for repository construction.
func (p *Pool) Raw() *pgxpool.Pool {
	return p.pool
}

// Ping verifies the pool can reach the database.
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database ping failed")
	}
	return nil
}

// Close drains and closes the pool.
func (p *Pool) Close() {
	p.pool.Close()
	p.logger.Info("database pool closed")
}
