package main

import (
	"fmt"

	"github.com/psrec/psrec/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		if !cfg.UsesDatabase() {
			return fmt.Errorf("database_url is not set")
		}
		db, err := database.Connect(cmd.Context(), log, cfg.DatabaseURL, database.DefaultCLIOptions())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		log.Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
