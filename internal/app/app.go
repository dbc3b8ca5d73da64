// Package app runs the service components and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runner is a long-lived component that serves until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler is started alongside the server and stopped on shutdown.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// App represents the application and its components.
type App struct {
	logger    *slog.Logger
	server    Runner
	scheduler Scheduler
}

// New creates an App. scheduler may be nil.
func New(log *slog.Logger, server Runner, scheduler Scheduler) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		logger:    log.With("component", "app_orchestrator"),
		server:    server,
		scheduler: scheduler,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails, then stops the rest.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting application...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting HTTP server...")
		if err := a.server.Run(gCtx); err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		a.logger.Info("HTTP server stopped.")

		if gCtx.Err() == nil {
			return fmt.Errorf("http server stopped unexpectedly")
		}
		return nil
	})

	if a.scheduler != nil {
		g.Go(func() error {
			a.logger.Info("Starting scheduler...")
			if err := a.scheduler.Start(gCtx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			a.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := a.scheduler.Stop(); err != nil {
				a.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	a.logger.Info("Application running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Application stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Application stopped gracefully.")
	return nil
}
