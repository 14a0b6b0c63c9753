package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/posrecon/internal/app"
	"github.com/MrJamesThe3rd/posrecon/internal/config"
)

// cli carries state shared by every subcommand once the root has run.
type cli struct {
	cfg     *config.Config
	logger  *slog.Logger
	mapping string
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "posrecon",
		Short:         "Ingest POS exports and reconcile them into the canonical store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if c.verbose {
				cfg.App.LogLevel = "debug"
			}

			if cmd.Flags().Changed("mapping") {
				cfg.Ingest.MappingFile = c.mapping
			}

			c.cfg = cfg
			c.logger = app.NewLogger(cfg, os.Stderr)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.mapping, "mapping", "", "vendor and header mapping file (overrides INGEST_MAPPING_FILE)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.newIngestCmd(),
		c.newReconcileCmd(),
		c.newMigrateCmd(),
		c.newVendorsCmd(),
	)

	return root
}

// connect wires the canonical store and staging for commands that need them.
func (c *cli) connect(ctx context.Context) (*app.App, error) {
	return app.New(ctx, c.cfg, c.logger)
}
