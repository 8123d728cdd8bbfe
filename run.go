package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gpustats/config"
	"gpustats/models"
	"gpustats/scheduler"
	"gpustats/scraper"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [source...]",
		Short: "Refresh catalog attributes from sources",
		Long: `Run refreshes the catalog from the named sources, or from every enabled
source when none are given. Sources run one after another; each resets its
columns, then processes the catalog one product at a time.

Examples:
  # Refresh everything that is enabled
  gpustats run

  # Only marketplace prices
  gpustats run amazon ebay`,
		RunE: runRunCmd,
	}

	cmd.Flags().Bool("no-delay", false, "Disable the delay between requests")

	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if _, err := cfg.SelectSources(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var pacer scheduler.Waiter
	if noDelay, _ := cmd.Flags().GetBool("no-delay"); !noDelay {
		pacer = newPacer(cfg)
	}

	pipeline := scheduler.NewPipeline(cfg, repo, fetcherOpener(cfg, logger), pacer, logger, nil)
	summaries, err := pipeline.Run(ctx, args)
	printSummaries(cmd.OutOrStdout(), summaries)
	return err
}

// fetcherOpener opens fetchers from the browser and fetch settings
func fetcherOpener(cfg *config.Config, logger *slog.Logger) scheduler.FetcherOpener {
	return func(kind string) (scraper.Fetcher, error) {
		return scraper.OpenFetcher(kind, scraper.BrowserOptions{
			Bin:       cfg.Browser.Bin,
			Headless:  cfg.Browser.Headless,
			NoSandbox: cfg.Browser.NoSandbox,
			UserAgent: cfg.Fetch.UserAgent,
		}, cfg.Fetch.Timeout, logger)
	}
}

func newPacer(cfg *config.Config) *scraper.Pacer {
	return scraper.NewPacer(cfg.Pacing.MinDelay, cfg.Pacing.MaxDelay, cfg.Pacing.RequestsPerMinute)
}

func printSummaries(w io.Writer, summaries []models.RunSummary) {
	if len(summaries) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tPRODUCTS\tUPDATED\tNO DATA\tFETCH ERRORS\tMATCH MISSES\tSTORE ERRORS\tDURATION")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			s.Source, s.Products, s.Updated, s.NoData, s.FetchErrors, s.MatchMisses, s.StoreErrors,
			s.Duration.Round(time.Second))
	}
	tw.Flush()
}
