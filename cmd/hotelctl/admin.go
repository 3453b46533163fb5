package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hotel_booking/internal/app"
	"hotel_booking/internal/shared"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

func createAdminCmd(cfg shared.Config) *cobra.Command {
	var reg app.Registration
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote an existing one",
		Long: `Create an admin account, or promote an existing one.

--password accepts plaintext or a bcrypt hash; a hash is stored as given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reg.Email == "" || reg.Password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			// emails are never sent from the CLI
			accounts := app.NewAccountService(mysqlrepo.New(db), nil, cfg.FrontendURL, cfg.ResetTTL)
			u, created, err := accounts.EnsureAdmin(cmd.Context(), reg)
			if err != nil {
				return err
			}
			verb := "promoted"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s: %s (%s)\n", verb, u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password or bcrypt hash")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "User", "last name")
	return cmd
}
