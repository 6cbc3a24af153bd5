package cmd

import (
	"context"
	"fmt"

	"cvsync/feature/nautobot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var autoMigrate bool

// migrateCmd seeds the Nautobot database for the sync.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the Nautobot database for the sync",
	Long: `Creates the manufacturer and the arista_* custom field definitions the sync
writes to, then reports columns the sync expects but the database lacks.

Nautobot owns its schema; --auto-migrate creates the tables from the sync's
models and is meant for empty development databases only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		store := nautobot.NewStore(rt.db, rt.cfg.Nautobot, rt.logger)
		res, err := nautobot.Provision(context.Background(), store, rt.cfg.Sync.TagPolicy(), autoMigrate, rt.logger)
		if err != nil {
			return fmt.Errorf("failed to provision: %w", err)
		}

		rt.logger.Info("Custom fields ready", zap.Strings("fields", res.Fields))
		if len(res.Missing) == 0 {
			rt.logger.Info("Schema check passed")
			return nil
		}
		for table, cols := range res.Missing {
			rt.logger.Error("Missing columns", zap.String("table", table), zap.Strings("columns", cols))
		}
		return fmt.Errorf("%d tables are missing columns", len(res.Missing))
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Create missing tables and columns")
	RootCmd.AddCommand(migrateCmd)
}
