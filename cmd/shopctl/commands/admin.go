package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/config"
	"shop-admin/internal/shared/infra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create or promote a super admin",
		Long: `Create a super admin account, or promote and reactivate an existing account.
The password is read from SUPERADMIN_PASSWORD and never passed on the command line.

Examples:
  SUPERADMIN_PASSWORD=... shopctl admin create --email root@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("SUPERADMIN_PASSWORD")
			if email == "" || password == "" {
				return fmt.Errorf("--email and SUPERADMIN_PASSWORD are required")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := infra.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := auth.EnsureSuperAdmin(cmd.Context(), store, email, password, cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "super admin %s (id=%d) ready\n", user.Email, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "Account email")

	cmd.AddCommand(create)
	return cmd
}
