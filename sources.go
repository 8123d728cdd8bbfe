package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewSourcesCmd creates the sources command
func NewSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tFETCHER\tENABLED\tATTRIBUTES")
			for _, s := range cfg.Sources {
				attrs := make([]string, 0, len(s.Fields)+1)
				for _, a := range s.Attributes() {
					attrs = append(attrs, a.Name)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", s.Name, s.Kind, s.Fetcher, s.Enabled, strings.Join(attrs, ","))
			}
			return tw.Flush()
		},
	}
}
