// Package main contains the entrypoint for the book recommendation service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgard/bookrec/internal/app"
	"github.com/edgard/bookrec/internal/catalog"
	"github.com/edgard/bookrec/internal/config"
	"github.com/edgard/bookrec/internal/health"
	"github.com/edgard/bookrec/internal/llm"
	"github.com/edgard/bookrec/internal/logger"
	"github.com/edgard/bookrec/internal/metrics"
	"github.com/edgard/bookrec/internal/recommend"
	"github.com/edgard/bookrec/internal/scheduler"
	"github.com/edgard/bookrec/internal/scheduler/tasks"
	"github.com/edgard/bookrec/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, catalog client, generator, pipeline, HTTP server
// and scheduler, and blocks until shutdown. It returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	m := metrics.New()

	catalogClient, err := catalog.NewClient(cfg.Catalog, log)
	if err != nil {
		log.Error("Failed to initialize catalog client", "error", err)
		return 1
	}

	generator, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		log.Error("Failed to initialize text generator", "error", err)
		return 1
	}

	engine := recommend.NewEngine(generator, recommend.EngineConfig{
		MaxTokens:     cfg.LLM.MaxTokens,
		MaxConcurrent: cfg.LLM.MaxConcurrent,
	}, m, log)
	pipeline := recommend.NewPipeline(catalogClient, engine, cfg.Catalog.MaxResults, m, log)

	hDeps := server.HandlerDeps{
		Logger:         log,
		Recommender:    pipeline,
		Metrics:        m,
		RequestTimeout: cfg.Server.RequestTimeout,
	}

	tDeps := tasks.TaskDeps{
		Logger:       log,
		Generator:    generator,
		Metrics:      m,
		ProbeTimeout: cfg.LLM.Timeout,
	}
	// Readiness follows the model probe; without it the service reports ready.
	if probe, ok := cfg.Scheduler.Tasks[config.ModelProbeTask]; ok && probe.Enabled {
		readiness := &health.Readiness{}
		hDeps.Readiness = readiness
		tDeps.Readiness = readiness
	}

	sched, err := scheduler.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps), m)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	srv := server.New(cfg.Server, server.NewRouter(hDeps), log)
	application := app.New(log, srv, sched)

	log.Info("Starting book recommendation service...", "addr", cfg.Server.Addr, "generator", generator.Name())
	runErr := application.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Service stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Service stopped gracefully.")
	return 0
}
