package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"jan-server/services/proposal-api/internal/config"
	"jan-server/services/proposal-api/internal/domain/proposal"
	"jan-server/services/proposal-api/internal/infrastructure/crontab"
	"jan-server/services/proposal-api/internal/infrastructure/logger"
	"jan-server/services/proposal-api/internal/infrastructure/observability"
	"jan-server/services/proposal-api/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	crontab    *crontab.Crontab
	finalizer  *proposal.Finalizer
	config     *config.Config
	logger     zerolog.Logger
}

// @title Jan Server Proposal API
// @version 1.0
// @description Quota-gated proposal and outreach message generation with streaming support.
// @contact.name Jan Server Team
// @contact.url https://github.com/janhq/jan-server
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func (application *Application) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return application.crontab.Run(ctx)
	})
	eg.Go(func() error {
		return application.httpServer.Run(ctx)
	})
	err := eg.Wait()

	// streamed proposals still being written get the shutdown budget to finish
	waitCtx, cancel := context.WithTimeout(context.Background(), application.config.ShutdownTimeout)
	defer cancel()
	if waitErr := application.finalizer.Wait(waitCtx); waitErr != nil {
		application.logger.Error().
			Err(waitErr).
			Int64("in_flight", application.finalizer.InFlight()).
			Msg("shutdown before every proposal was finalized")
	}
	return err
}

func main() {
	loadEnvFiles()
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := CreateApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("create application")
	}
	log = application.logger

	otelShutdown, err := observability.Setup(ctx, application.config, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	if err := application.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}
	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
