package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"gpustats/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Init writes the default configuration, including every built-in source, as
YAML so it can be edited.

Examples:
  # Write $XDG_CONFIG_HOME/gpustats/gpustats.yaml
  gpustats init

  # Write to a custom path, replacing an existing file
  gpustats init -o ./gpustats.yaml --force`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", defaultConfigPath(), "Output file path")
	cmd.Flags().BoolP("force", "f", false, "Overwrite existing file")

	return cmd
}

func defaultConfigPath() string {
	return filepath.Join(config.ConfigDir(), config.AppName+".yaml")
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if err := config.WriteFile(output, config.Default(), force); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", output)
	return nil
}
