package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gpustats/handlers"
	"gpustats/metrics"
	"gpustats/middleware"
	"gpustats/scheduler"
)

const (
	runQueueSize  = 8
	runRetention  = 24 * time.Hour
	shutdownGrace = 10 * time.Second
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog API and run sources on a schedule",
		Long: `Serve exposes the catalog and run control over HTTP and, when the schedule is
enabled, submits a run of every enabled source on the configured cron spec.
Runs from the API and the schedule share one queue and never overlap.

Endpoints:
  GET  /health
  GET  /metrics
  GET  /api/v1/products
  GET  /api/v1/products/{name}
  POST /api/v1/runs
  GET  /api/v1/runs
  GET  /api/v1/runs/{id}`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().Bool("no-schedule", false, "Disable scheduled runs")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	recorder := metrics.NewRecorder()
	pipeline := scheduler.NewPipeline(cfg, repo, fetcherOpener(cfg, logger), newPacer(cfg), logger, recorder)
	manager := scheduler.NewRunManager(pipeline.Run, runQueueSize, runRetention, logger, recorder)

	var schedule *scheduler.Schedule
	if noSchedule, _ := cmd.Flags().GetBool("no-schedule"); cfg.Schedule.Enabled && !noSchedule {
		schedule, err = scheduler.NewSchedule(cfg.Schedule.Cron, manager, logger)
		if err != nil {
			return err
		}
	}

	names := make([]string, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		names = append(names, s.Name)
	}
	h := handlers.NewHandlers(repo, manager, names, recorder.Handler())

	router := h.Router()
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.Server.RequestsPerSecond))

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           middleware.CORS(cfg.Server.AllowedOrigins)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return manager.Start(gctx)
	})

	if schedule != nil {
		schedule.Start()
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		if schedule != nil {
			schedule.Stop()
		}
		manager.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
