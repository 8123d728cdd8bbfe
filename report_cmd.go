package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gpustats/report"
)

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the catalog",
		Long: `Report prints every product with all of its attributes. Missing values are
shown as "no data" in markdown and null in JSON.

Examples:
  gpustats report
  gpustats report --format json -o catalog.json`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("format", "f", report.FormatMarkdown, "Output format: markdown or json")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	writer, err := report.NewWriter(format, out)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, repo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	attrs, err := repo.Attributes(ctx)
	if err != nil {
		return err
	}
	products, err := repo.Products(ctx)
	if err != nil {
		return err
	}

	return writer.Write(&report.Catalog{
		GeneratedAt: time.Now(),
		Attributes:  attrs,
		Products:    products,
	})
}
