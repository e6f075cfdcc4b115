package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"shop-admin/internal/config"
	"shop-admin/internal/shared/infra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Apply the idempotent schema for the configured driver (sqlite or postgres).

Examples:
  shopctl migrate
  DATABASE_URL=postgres://... shopctl migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := infra.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.DatabaseDriver)
			return nil
		},
	}
}
