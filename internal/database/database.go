// Package database owns the PostgreSQL connection pool.
//
// The pool is built once at startup from the configured connection
// string and injected into the layers that need it; nothing in the
// application reaches for a global handle. Checkout goes through
// Acquire, which bounds the wait so saturated pools surface as errors
// instead of stalled workers. Query tracing (pgx tracelog, optional New
// Relic) is attached at pool construction.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/hollmark/staffd/internal/config"
	loggerPkg "github.com/hollmark/staffd/internal/logger"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Database wraps the pgx connection pool.
type Database struct {
	Pool *pgxpool.Pool

	log            *zerolog.Logger
	acquireTimeout time.Duration
}

// multiTracer chains tracers into pgx's single Tracer slot, so New
// Relic instrumentation and local SQL logging can coexist.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// DatabasePingTimeout is the number of seconds to wait for the startup
// ping before treating the database as unreachable.
const DatabasePingTimeout = 10

// New creates the connection pool from cfg.Database.URL and verifies it
// with a ping. Any failure here is a startup error: the caller must
// abort before serving traffic.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	// Unset knobs keep the pgx parse defaults.
	if cfg.Database.MaxConns > 0 {
		pgxPoolConfig.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		pgxPoolConfig.MinConns = cfg.Database.MinConns
	}
	if cfg.Database.MaxConnLifetime > 0 {
		pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.MaxConnLifetime) * time.Second
	}
	if cfg.Database.MaxConnIdleTime > 0 {
		pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.MaxConnIdleTime) * time.Second
	}
	if cfg.Database.HealthCheckPeriod > 0 {
		pgxPoolConfig.HealthCheckPeriod = time.Duration(cfg.Database.HealthCheckPeriod) * time.Second
	}

	if loggerService != nil && loggerService.GetApplication() != nil {
		pgxPoolConfig.ConnConfig.Tracer = nrpgx5.NewTracer()
	}

	// SQL statement logging is noisy, so it stays out of production.
	if !cfg.Observability.IsProduction() {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerPkg.NewPgxLogger(globalLevel)

		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: tracelog.LogLevel(loggerPkg.GetPgxTraceLogLevel(globalLevel)),
		}

		if pgxPoolConfig.ConnConfig.Tracer != nil {
			pgxPoolConfig.ConnConfig.Tracer = &multiTracer{
				tracers: []any{pgxPoolConfig.ConnConfig.Tracer, localTracer},
			}
		} else {
			pgxPoolConfig.ConnConfig.Tracer = localTracer
		}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	database := &Database{
		Pool:           pool,
		log:            logger,
		acquireTimeout: time.Duration(cfg.Database.AcquireTimeout) * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Int32("max_conns", cfg.Database.MaxConns).
		Msg("connected to the database")

	return database, nil
}

// Acquire checks a connection out of the pool, waiting at most the
// configured acquire timeout. The timeout bounds acquisition only;
// statements on the returned connection run under the caller's context.
// Callers own the connection exclusively until they Release it.
func (db *Database) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx := ctx
	if db.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, db.acquireTimeout)
		defer cancel()
	}

	conn, err := db.Pool.Acquire(acquireCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}

	return conn, nil
}

// Close closes the connection pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}
