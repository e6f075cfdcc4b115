package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shop-admin/internal/config"
)

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:   "shopctl",
		Short: "shop-admin maintenance tool",
		Long: `shopctl runs maintenance tasks against the shop-admin database.

Configuration is loaded the same way as the API server:
.env.{env}, then {env}.yaml, then environment variables (APP_ENV selects the env).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configDir != "" {
				config.SetConfigDir(configDir)
			}
		},
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory containing {env}.yaml")

	root.AddCommand(newMigrateCmd(), newLogsCmd(), newAdminCmd())
	return root
}

// Execute 运行根命令
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
