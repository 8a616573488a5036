package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Apply pending SQLite migrations, the PostgreSQL schema, or the MongoDB
indexes, depending on the configured driver. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("Schema is up to date (%s).\n", cfg.Database.Driver)
		return nil
	},
}
