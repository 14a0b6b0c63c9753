package main

import (
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/posrecon/internal/database"
)

func (c *cli) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version|redo|reset]",
		Short:     "Apply canonical store migrations",
		Args:      cobra.RangeArgs(0, 2),
		ValidArgs: []string{"up", "down", "status", "version", "redo", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) > 0 {
				command = args[0]
			}

			db, err := database.New(cmd.Context(), c.cfg.ConnectionString(), database.PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1})
			if err != nil {
				return err
			}
			defer db.Close()

			return database.Migrate(cmd.Context(), db, command, args[min(len(args), 1):]...)
		},
	}
}
