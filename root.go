package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gpustats/config"
	"gpustats/database"
	"gpustats/repository"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gpustats",
		Short: "Collect GPU prices, performance and specs into a catalog",
		Long: `gpustats refreshes the attributes of every GPU in the catalog from web sources:
new and used marketplace prices, relative performance scores and spec sheets.

Products are never created here; the catalog table is seeded separately and
each run resets and refills the columns its sources own.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file (default: search ./gpustats.yaml, $XDG_CONFIG_HOME/gpustats, /etc/gpustats)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewSourcesCmd())

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config selected by the persistent flags and builds the logger
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg.Log, verbose, cmd.ErrOrStderr())
	return cfg, logger, nil
}

// newLogger builds the process logger from log.level and log.format
func newLogger(cfg config.LogConfig, verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore connects to the catalog and makes sure the product table exists
func openStore(ctx context.Context, cfg *config.Config) (*database.DB, *repository.ProductRepository, error) {
	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}

	if err := db.CreateTables(ctx, cfg.Database.Table); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	repo, err := repository.NewProductRepository(db, cfg.Database.Table)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}
