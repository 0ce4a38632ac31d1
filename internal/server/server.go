// Package server defines the application container.
//
// Server holds the shared resources every layer needs: config, loggers,
// the database pool, the optional Redis client, and the blocking-call
// executor. It is constructed once at startup and injected downward;
// none of these resources exist as globals. It also owns the http.Server
// lifecycle, including graceful shutdown of the whole stack.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hollmark/staffd/internal/config"
	"github.com/hollmark/staffd/internal/database"
	loggerPkg "github.com/hollmark/staffd/internal/logger"
	"github.com/hollmark/staffd/internal/offload"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisPingTimeout = 5 * time.Second

// Server is the application container. It is not the HTTP listener
// itself; that is configured by SetupHTTPServer and run by Start.
type Server struct {
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService holds the optional New Relic application.
	LoggerService *loggerPkg.LoggerService

	// DB holds the PostgreSQL pool wrapper.
	DB *database.Database

	// Redis backs the employee read cache. Nil when no address is
	// configured or the initial ping fails; callers must handle nil.
	Redis *redis.Client

	// Executor runs blocking database work off the request goroutines.
	Executor *offload.Executor

	httpServer *http.Server
}

// New constructs the container and initializes core dependencies. A
// database failure aborts startup; a Redis failure only disables the
// cache.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Address,
		})

		if loggerService != nil && loggerService.GetApplication() != nil {
			redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error().Err(err).Msg("failed to connect to redis, continuing without employee cache")
			_ = redisClient.Close()
			redisClient = nil
		}
	}

	executor := offload.New(
		cfg.Offload.Workers,
		cfg.Offload.QueueDepth,
		time.Duration(cfg.Offload.SubmitWait)*time.Second,
		*logger,
	)

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Executor:      executor,
	}, nil
}

// SetupHTTPServer configures the internal net/http server around the
// given handler (the echo router).
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(s.Config.Server.Host, s.Config.Server.Port),
		Handler: handler,

		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the listener stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("addr", s.httpServer.Addr).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the stack in dependency order: the listener first so
// no new work arrives, then the executor so queued database work
// drains, then the pool and cache underneath it.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.Executor.Close()

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}

	s.LoggerService.Shutdown(5 * time.Second)

	return nil
}
