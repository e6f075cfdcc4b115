package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shop-admin/internal/apiserver/audit"
	"shop-admin/internal/config"
	"shop-admin/internal/shared/infra"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Manage admin audit logs",
	}

	var days int
	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Delete audit log rows older than N days",
		Long: `Delete admin audit log rows strictly older than now minus N days.

Examples:
  shopctl logs sweep              # use audit.retention_days from config
  shopctl logs sweep --days 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Audit.RetentionDays
			}
			store, err := infra.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := audit.PurgeOlderThan(cmd.Context(), store, time.Now().UTC(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d audit log rows older than %d days\n", deleted, days)
			return nil
		},
	}
	sweep.Flags().IntVar(&days, "days", 0, "Retention in days (default: audit.retention_days)")

	cmd.AddCommand(sweep)
	return cmd
}
