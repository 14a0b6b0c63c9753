package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/posrecon/internal/scheduler"
)

func (c *cli) newReconcileCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass from staging into the canonical store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("batch-size") {
				batchSize = c.cfg.Sync.BatchSize
			}

			sched, err := scheduler.New(scheduler.Params{
				Logger:      c.logger,
				Reconciler:  a.Reconciler,
				Tracker:     a.Tracker,
				PassTimeout: c.cfg.Sync.PassTimeout,
				BatchSize:   batchSize,
			})
			if err != nil {
				return err
			}

			result, err := sched.RunOnce(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "synced: %d  errors: %d\n", result.Synced, result.Errors)

			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "maximum records per pass (defaults to SYNC_BATCH_SIZE)")

	return cmd
}
