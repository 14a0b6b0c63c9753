package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/posrecon/internal/app"
)

func (c *cli) newVendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors",
		Short: "List the vendor profiles used to parse and enrich rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, vendors, err := app.NewImporter(c.cfg.Ingest.MappingFile, c.logger)
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("PREFIX", "NAME", "DATE ORDER", "ENRICHED")

			for _, p := range vendors.Profiles() {
				t.Row(p.Prefix, p.Name, string(p.DateOrder), strings.ToLower(fmt.Sprint(p.Enrich != nil)))
			}

			fmt.Fprintln(cmd.OutOrStdout(), t.Render())

			return nil
		},
	}
}
