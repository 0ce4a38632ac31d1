package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hollmark/staffd/internal/config"
	"github.com/hollmark/staffd/internal/handler"
	"github.com/hollmark/staffd/internal/logger"
	"github.com/hollmark/staffd/internal/middleware"
	"github.com/hollmark/staffd/internal/repository"
	"github.com/hollmark/staffd/internal/router"
	"github.com/hollmark/staffd/internal/server"
	"github.com/hollmark/staffd/internal/service"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	loggerService, err := logger.NewLoggerService(cfg)
	if err != nil {
		return errors.Wrap(err, "init logger service")
	}

	log := logger.New(cfg, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		return errors.Wrap(err, "init server")
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		return errors.Wrap(err, "init services")
	}

	handlers := handler.NewHandlers(srv, services)
	middlewares := middleware.NewMiddlewares(srv)

	srv.SetupHTTPServer(router.New(srv, middlewares, handlers))

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "server stopped")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}
